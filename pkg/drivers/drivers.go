// Package drivers implements per-vendor submission of rendered
// configuration over a management session. Vendors differ in how
// configuration becomes durable (commit vs. save vs. immediate) and in
// how reliably their firmware echoes prompts, so each driver is one of a
// small closed set of variants behind a single Dispatch contract.
// Adding a vendor means registering a new variant, never changing
// dispatch logic.
package drivers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/netforge/netforge/pkg/session"
)

// Driver submits configuration lines to a device and interprets the
// outcome. Drivers never parse device output beyond a small fixed
// vocabulary of failure indicators; everything else is opaque
// transcript text.
type Driver interface {
	// Vendor returns the registry key this driver serves.
	Vendor() string

	// Dispatch pushes the configuration and performs the vendor's
	// persistence step. It returns the combined session transcript, or
	// a *DriverError carrying whatever transcript was captured.
	Dispatch(ctx context.Context, sess session.Session, lines []string) (*Result, error)
}

// ConfigExporter is implemented by drivers whose platform can export its
// running configuration for backups. RemoteFile is non-empty when the
// export lands in a file that must be fetched over SFTP; otherwise
// Output already contains the configuration text.
type ConfigExporter interface {
	ExportConfig(ctx context.Context, sess session.Session) (output string, remoteFile string, err error)
}

// Result is a successful dispatch.
type Result struct {
	// Output is the combined session transcript.
	Output string

	// Persisted reports that the vendor's persistence step completed.
	Persisted bool
}

// DriverError reports a failed submission or persistence step. Output
// carries the transcript captured up to the failure so operators can see
// exactly what the device echoed.
type DriverError struct {
	Vendor string
	Output string
	Err    error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver %s: %v", e.Vendor, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// UnknownVendorError reports a dispatch for a vendor with no registered
// driver. It is returned before any session is opened.
type UnknownVendorError struct {
	Vendor string
}

func (e *UnknownVendorError) Error() string {
	return fmt.Sprintf("no driver registered for vendor %q", e.Vendor)
}

// errorIndicator returns the first failure indicator found in out, or ""
// when none match. Matching is case-insensitive.
func errorIndicator(out string, indicators []string) string {
	lower := strings.ToLower(out)
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			return ind
		}
	}
	return ""
}

// sleep waits for d or until ctx is cancelled. Timing-based drivers use
// it to pace per-line submission.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
