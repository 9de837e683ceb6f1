package inventory

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Device is a single inventory entry describing a managed network device.
// Devices are loaded once per invocation and are read-only afterwards.
type Device struct {
	// Name is the unique device identifier. It is also exposed to
	// templates as the "hostname" variable.
	Name string `yaml:"name" json:"name" validate:"required"`

	// Host is the management address (IP or FQDN).
	Host string `yaml:"host" json:"host" validate:"required"`

	// Vendor selects the configuration driver (e.g. "huawei_vrp8").
	Vendor string `yaml:"vendor" json:"vendor" validate:"required"`

	// DeviceType is the transport hint for the management session
	// (e.g. "huawei", "mikrotik_routeros").
	DeviceType string `yaml:"device_type" json:"device_type" validate:"required"`

	// Username and Password authenticate the management session.
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password,omitempty"`

	// Port is the SSH port. Zero means the default (22).
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// KeyPath optionally points at an SSH private key used instead of,
	// or in addition to, the password.
	KeyPath string `yaml:"key_path,omitempty" json:"key_path,omitempty"`

	// Template optionally pins the device to a specific template name.
	// A trailing ".j2" extension is tolerated and stripped on lookup.
	Template string `yaml:"template,omitempty" json:"template,omitempty"`

	// LogPath and SessionLog control per-device session transcript
	// logging. SessionLog is the file name, LogPath the directory.
	LogPath    string `yaml:"log_path,omitempty" json:"log_path,omitempty"`
	SessionLog string `yaml:"session_log,omitempty" json:"session_log,omitempty"`

	// Interfaces are exposed to templates under the "interfaces" binding.
	Interfaces []Interface `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`

	// Vars are device-level custom fields merged verbatim into the
	// template bindings. Nothing is dropped or renamed.
	Vars map[string]interface{} `yaml:"vars,omitempty" json:"vars,omitempty"`
}

// Interface describes one network interface of a device. Besides the
// required name/ip/mask fields, arbitrary vendor-specific keys are
// preserved in Extra and passed through to templates unmodified.
type Interface struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
	Mask string `json:"mask"`

	// Extra holds any additional keys found in the inventory entry.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// UnmarshalYAML decodes an interface entry while keeping unknown keys.
func (i *Interface) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	take := func(key string) string {
		v, ok := raw[key]
		if !ok {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Sprintf("%v", v)
		}
		return s
	}

	i.Name = take("name")
	i.IP = take("ip")
	i.Mask = take("mask")

	delete(raw, "name")
	delete(raw, "ip")
	delete(raw, "mask")
	if len(raw) > 0 {
		i.Extra = raw
	}
	return nil
}

// Bindings returns the interface as a flat map suitable for template
// rendering: name/ip/mask plus every extra key.
func (i Interface) Bindings() map[string]interface{} {
	m := make(map[string]interface{}, 3+len(i.Extra))
	for k, v := range i.Extra {
		m[k] = v
	}
	m["name"] = i.Name
	m["ip"] = i.IP
	m["mask"] = i.Mask
	return m
}

// Address returns the host:port dial address for the device.
func (d Device) Address() string {
	port := d.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", d.Host, port)
}

// SessionLogFile returns the resolved transcript file path, or "" when
// transcript logging is not configured for the device.
func (d Device) SessionLogFile() string {
	if d.SessionLog == "" {
		return ""
	}
	if d.LogPath == "" {
		return d.SessionLog
	}
	return filepath.Join(d.LogPath, d.SessionLog)
}

// TemplateName returns the inventory-pinned template name without the
// ".j2" extension, or "" when the device does not pin one.
func (d Device) TemplateName() string {
	if d.Template == "" {
		return ""
	}
	name := d.Template
	if ext := filepath.Ext(name); ext == ".j2" {
		name = name[:len(name)-len(ext)]
	}
	return name
}
