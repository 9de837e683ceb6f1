package render

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/netforge/netforge/pkg/catalog"
	"github.com/netforge/netforge/pkg/inventory"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testDevice() inventory.Device {
	return inventory.Device{
		Name:       "r1",
		Host:       "10.0.0.1",
		Vendor:     "huawei_vrp8",
		DeviceType: "huawei",
		Interfaces: []inventory.Interface{
			{
				Name:  "GigabitEthernet0/0/1",
				IP:    "192.168.1.1",
				Mask:  "255.255.255.0",
				Extra: map[string]interface{}{"description": "uplink"},
			},
		},
		Vars: map[string]interface{}{"domain": "lab.example"},
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.j2")
	writeFile(t, path, `{#
description: interface config
safe: true
#}
sysname {{ hostname }}.{{ domain }}
{% for iface in interfaces %}
interface {{ iface.name }}
 description {{ iface.description }}
 ip address {{ iface.ip }} {{ iface.mask }}
{% endfor %}
`)

	tpl := catalog.TemplateInfo{Name: "default", Vendor: "huawei_vrp8", Path: path, Safe: true}
	rc, err := NewRenderer().Render(tpl, testDevice())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := []string{
		"sysname r1.lab.example",
		"interface GigabitEthernet0/0/1",
		"description uplink",
		"ip address 192.168.1.1 255.255.255.0",
	}
	if !reflect.DeepEqual(rc.Lines, want) {
		t.Errorf("unexpected lines:\n got %q\nwant %q", rc.Lines, want)
	}
	if rc.DeviceName != "r1" || rc.TemplateName != "default" || rc.Vendor != "huawei_vrp8" {
		t.Errorf("identity fields wrong: %+v", rc)
	}
	if !rc.Safe || rc.ChangesHostname {
		t.Errorf("safety flags not carried through: %+v", rc)
	}
}

func TestRenderSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.j2")
	writeFile(t, path, "{% for %}")

	tpl := catalog.TemplateInfo{Name: "broken", Vendor: "huawei_vrp8", Path: path}
	_, err := NewRenderer().Render(tpl, testDevice())

	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RenderError, got %v", err)
	}
	if re.Template != "broken" || re.Unwrap() == nil {
		t.Errorf("unexpected RenderError: %+v", re)
	}
}

func TestRenderMissingFile(t *testing.T) {
	tpl := catalog.TemplateInfo{Name: "ghost", Vendor: "x", Path: filepath.Join(t.TempDir(), "ghost.j2")}
	var re *RenderError
	if _, err := NewRenderer().Render(tpl, testDevice()); !errors.As(err, &re) {
		t.Fatalf("expected *RenderError, got %v", err)
	}
}
