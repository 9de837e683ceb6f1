package stores

import (
	"context"
	"time"

	"github.com/netforge/netforge/pkg/inventory"
)

// DeviceRecord is one device row in the inventory database. It mirrors
// the fields of an inventory file entry plus bookkeeping timestamps.
type DeviceRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Host       string    `json:"host"`
	Vendor     string    `json:"vendor"`
	Model      *string   `json:"model,omitempty"`
	DeviceType string    `json:"device_type"`
	Username   *string   `json:"username,omitempty"`
	Password   *string   `json:"password,omitempty"`
	Template   *string   `json:"template,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToDevice converts a stored record into an inventory device usable by
// the orchestration engine.
func (r *DeviceRecord) ToDevice() inventory.Device {
	dev := inventory.Device{
		Name:       r.Name,
		Host:       r.Host,
		Vendor:     r.Vendor,
		DeviceType: r.DeviceType,
	}
	if r.Username != nil {
		dev.Username = *r.Username
	}
	if r.Password != nil {
		dev.Password = *r.Password
	}
	if r.Template != nil {
		dev.Template = *r.Template
	}
	return dev
}

// Store defines the interface for the device inventory persistence layer.
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Device operations
	UpsertDevice(ctx context.Context, rec *DeviceRecord) error
	GetDeviceByName(ctx context.Context, name string) (*DeviceRecord, error)
	ListDevices(ctx context.Context) ([]*DeviceRecord, error)
	DeleteDevice(ctx context.Context, name string) error

	// Utility
	HealthCheck(ctx context.Context) error
}
