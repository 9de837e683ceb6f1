package drivers

import (
	"context"
	"fmt"
	"strings"

	"github.com/netforge/netforge/pkg/session"
)

// routerosFailureIndicators is the fixed vocabulary RouterOS prints when
// it rejects a command.
var routerosFailureIndicators = []string{"bad command", "syntax error", "failure:", "expected end of command"}

// routerosExportFile is where the backup export lands on the device,
// relative to the flash root. RouterOS appends the .rsc extension.
const routerosExportFile = "netforge-backup"

// RouterOS7 drives MikroTik RouterOS v7 devices. RouterOS applies and
// persists each command immediately, so submission is pattern-confirmed
// with no separate persistence step and no rollback: a rejected command
// is reported with the captured transcript and the device keeps whatever
// it accepted before the rejection.
type RouterOS7 struct{}

// NewRouterOS7 creates the RouterOS driver.
func NewRouterOS7() *RouterOS7 {
	return &RouterOS7{}
}

// Vendor implements Driver.
func (d *RouterOS7) Vendor() string {
	return "routeros7"
}

// Dispatch implements Driver.
func (d *RouterOS7) Dispatch(ctx context.Context, sess session.Session, lines []string) (*Result, error) {
	out, err := sess.SendBlock(ctx, lines)
	if err != nil {
		return nil, &DriverError{Vendor: d.Vendor(), Output: out,
			Err: fmt.Errorf("configuration block not acknowledged: %w; %s", err, untrustedStateNote)}
	}

	if ind := errorIndicator(out, routerosFailureIndicators); ind != "" {
		return nil, &DriverError{Vendor: d.Vendor(), Output: out,
			Err: fmt.Errorf("device reported %q; %s", ind, untrustedStateNote)}
	}

	return &Result{Output: out, Persisted: true}, nil
}

// ExportConfig implements ConfigExporter. RouterOS exports to a file on
// flash, which the caller fetches over SFTP.
func (d *RouterOS7) ExportConfig(ctx context.Context, sess session.Session) (string, string, error) {
	out, err := sess.SendLine(ctx, "/export file="+routerosExportFile)
	if err != nil {
		return "", "", fmt.Errorf("export command failed: %w", err)
	}
	if ind := errorIndicator(out, routerosFailureIndicators); ind != "" {
		return "", "", fmt.Errorf("device reported %q during export: %s", ind, strings.TrimSpace(out))
	}
	return out, "/" + routerosExportFile + ".rsc", nil
}
