package engine

import "fmt"

// ResolveError reports that a device's effective template name did not
// match any discovered template. It is device-scoped: the affected
// device is skipped and the run continues.
type ResolveError struct {
	Device   string
	Vendor   string
	Template string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("device %s: template %q not available for vendor %q", e.Device, e.Template, e.Vendor)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
