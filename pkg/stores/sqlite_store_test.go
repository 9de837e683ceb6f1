package stores

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "inventory.db")
	store, err := NewSQLiteStore(Config{Path: dbPath})
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(name string) *DeviceRecord {
	user := "admin"
	now := time.Now()
	return &DeviceRecord{
		ID:         uuid.New().String(),
		Name:       name,
		Host:       "192.0.2.10",
		Vendor:     "huawei_vrp8",
		DeviceType: "router",
		Username:   &user,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestUpsertAndGetDevice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("core-r1")
	if err := store.UpsertDevice(ctx, rec); err != nil {
		t.Fatalf("UpsertDevice failed: %v", err)
	}

	got, err := store.GetDeviceByName(ctx, "core-r1")
	if err != nil {
		t.Fatalf("GetDeviceByName failed: %v", err)
	}
	if got.Host != rec.Host {
		t.Errorf("host = %q, want %q", got.Host, rec.Host)
	}
	if got.Vendor != rec.Vendor {
		t.Errorf("vendor = %q, want %q", got.Vendor, rec.Vendor)
	}
	if got.Username == nil || *got.Username != "admin" {
		t.Errorf("username = %v, want admin", got.Username)
	}
}

func TestUpsertDeviceUpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("core-r1")
	if err := store.UpsertDevice(ctx, rec); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	updated := testRecord("core-r1")
	updated.Host = "192.0.2.20"
	if err := store.UpsertDevice(ctx, updated); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := store.GetDeviceByName(ctx, "core-r1")
	if err != nil {
		t.Fatalf("GetDeviceByName failed: %v", err)
	}
	if got.Host != "192.0.2.20" {
		t.Errorf("host = %q, want updated address", got.Host)
	}

	records, err := store.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestListDevicesOrderedByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"sw-b", "sw-a", "sw-c"} {
		if err := store.UpsertDevice(ctx, testRecord(name)); err != nil {
			t.Fatalf("UpsertDevice(%s) failed: %v", name, err)
		}
	}

	records, err := store.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	want := []string{"sw-a", "sw-b", "sw-c"}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, name := range want {
		if records[i].Name != name {
			t.Errorf("records[%d].Name = %q, want %q", i, records[i].Name, name)
		}
	}
}

func TestDeleteDevice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertDevice(ctx, testRecord("core-r1")); err != nil {
		t.Fatalf("UpsertDevice failed: %v", err)
	}
	if err := store.DeleteDevice(ctx, "core-r1"); err != nil {
		t.Fatalf("DeleteDevice failed: %v", err)
	}
	if _, err := store.GetDeviceByName(ctx, "core-r1"); err == nil {
		t.Fatal("expected error for deleted device")
	}
	if err := store.DeleteDevice(ctx, "core-r1"); err == nil {
		t.Fatal("expected error deleting missing device")
	}
}

func TestToDevice(t *testing.T) {
	tmpl := "bgp-base"
	rec := testRecord("core-r1")
	rec.Template = &tmpl

	dev := rec.ToDevice()
	if dev.Name != "core-r1" || dev.Host != "192.0.2.10" {
		t.Errorf("unexpected device identity: %+v", dev)
	}
	if dev.Username != "admin" {
		t.Errorf("username = %q, want admin", dev.Username)
	}
	if dev.Template != "bgp-base" {
		t.Errorf("template = %q, want bgp-base", dev.Template)
	}
}

func TestHealthCheck(t *testing.T) {
	store := newTestStore(t)
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	uninit := &SQLiteStore{path: "x.db"}
	if err := uninit.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized store")
	}
}
