package drivers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/netforge/netforge/pkg/session"
)

var vrp5FailureIndicators = []string{"error", "failed"}

// untrustedStateNote is appended to every mid-sequence VRP5 failure:
// without a transaction there is no rollback, so the device is left with
// whatever subset of lines it accepted.
const untrustedStateNote = "device state must be treated as untrusted"

// HuaweiVRP5 drives Huawei VRP5 devices. Their firmware echoes prompts
// unreliably after configuration commands, so submission is timing-based:
// each line is sent individually with a fixed settling delay and the
// echoes are accumulated. Persistence is an explicit save at the end;
// there is no transactional rollback.
type HuaweiVRP5 struct {
	// LineDelay is the settling pause between configuration lines.
	LineDelay time.Duration
}

// NewHuaweiVRP5 creates the VRP5 driver with its default pacing.
func NewHuaweiVRP5() *HuaweiVRP5 {
	return &HuaweiVRP5{LineDelay: time.Second}
}

// Vendor implements Driver.
func (d *HuaweiVRP5) Vendor() string {
	return "huawei_vrp5"
}

// Dispatch implements Driver.
func (d *HuaweiVRP5) Dispatch(ctx context.Context, sess session.Session, lines []string) (*Result, error) {
	var transcript strings.Builder

	out, err := sess.SendLine(ctx, "system-view")
	transcript.WriteString(out)
	if err != nil {
		return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
			Err: fmt.Errorf("failed to enter system-view: %w", err)}
	}

	for i, line := range lines {
		out, err := sess.SendLine(ctx, line)
		fmt.Fprintf(&transcript, "[%d] %s\n%s", i+1, line, out)
		if err != nil {
			return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
				Err: fmt.Errorf("command %d (%q) failed: %w; %s", i+1, line, err, untrustedStateNote)}
		}
		if err := sleep(ctx, d.LineDelay); err != nil {
			return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
				Err: fmt.Errorf("cancelled between commands: %w; %s", err, untrustedStateNote)}
		}
	}

	out, err = sess.SendLine(ctx, "return")
	transcript.WriteString(out)
	if err != nil {
		return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
			Err: fmt.Errorf("failed to leave system-view: %w; %s", err, untrustedStateNote)}
	}

	saveOut, err := sess.SendLine(ctx, "save")
	transcript.WriteString(saveOut)
	if err != nil {
		return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
			Err: fmt.Errorf("save failed: %w; %s", err, untrustedStateNote)}
	}

	// VRP5 asks for confirmation before writing the startup config.
	if strings.Contains(strings.ToLower(saveOut), "[y/n]") {
		confirmOut, err := sess.SendLine(ctx, "Y")
		transcript.WriteString(confirmOut)
		if err != nil {
			return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
				Err: fmt.Errorf("save confirmation failed: %w; %s", err, untrustedStateNote)}
		}
		saveOut += confirmOut
	}

	if ind := errorIndicator(saveOut, vrp5FailureIndicators); ind != "" {
		return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
			Err: fmt.Errorf("device reported %q during save; %s", ind, untrustedStateNote)}
	}

	if hasSysname(lines) {
		fmt.Fprintf(&transcript, "\nprompt after save: %s\n", sess.Prompt())
	}

	return &Result{Output: transcript.String(), Persisted: true}, nil
}

// ExportConfig implements ConfigExporter.
func (d *HuaweiVRP5) ExportConfig(ctx context.Context, sess session.Session) (string, string, error) {
	out, err := sess.SendLine(ctx, "display current-configuration")
	if err != nil {
		return "", "", fmt.Errorf("failed to read running configuration: %w", err)
	}
	return out, "", nil
}
