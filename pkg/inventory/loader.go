// Package inventory loads and validates the device inventory consumed by
// the orchestration engine. The canonical source is a YAML file with a
// top-level "devices" list; a SQLite-backed store (pkg/stores) can serve
// as an alternative backend.
package inventory

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is shared across loads; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

type inventoryFile struct {
	Devices []Device `yaml:"devices"`
}

// Load reads the inventory file at path and returns the validated
// device list. A missing or malformed file is fatal to the whole run.
func Load(path string) ([]Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates inventory YAML.
func Parse(data []byte) ([]Device, error) {
	var file inventoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse inventory: %w", err)
	}

	seen := make(map[string]bool, len(file.Devices))
	for i, dev := range file.Devices {
		if err := validate.Struct(dev); err != nil {
			return nil, fmt.Errorf("invalid device at index %d (%q): %w", i, dev.Name, err)
		}
		if seen[dev.Name] {
			return nil, fmt.Errorf("duplicate device name %q", dev.Name)
		}
		seen[dev.Name] = true
	}

	return file.Devices, nil
}

// FilterByName returns the devices whose names appear in names. When
// names is empty the full list is returned. Unknown names are an error
// so a typo never silently plans an empty run.
func FilterByName(devices []Device, names []string) ([]Device, error) {
	if len(names) == 0 {
		return devices, nil
	}

	byName := make(map[string]Device, len(devices))
	for _, d := range devices {
		byName[d.Name] = d
	}

	out := make([]Device, 0, len(names))
	for _, name := range names {
		d, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("device %q not found in inventory", name)
		}
		out = append(out, d)
	}
	return out, nil
}
