package drivers

import (
	"context"
	"fmt"
	"strings"

	"github.com/netforge/netforge/pkg/session"
)

// vrp8FailureIndicators is the fixed vocabulary that marks a failed
// commit on VRP8. Anything else in the transcript is passed through
// uninterpreted.
var vrp8FailureIndicators = []string{"error", "failed"}

// HuaweiVRP8 drives Huawei VRP8 devices, which stage candidate
// configuration and require an explicit commit. Submission is
// pattern-confirmed: the full block is sent and the prompt awaited, then
// commit is issued. On a commit failure the driver rolls the candidate
// back, so from its perspective the device is never left mid-transaction:
// either committed output is returned, or a rollback was attempted and
// the error reports both outcomes.
type HuaweiVRP8 struct{}

// NewHuaweiVRP8 creates the VRP8 driver.
func NewHuaweiVRP8() *HuaweiVRP8 {
	return &HuaweiVRP8{}
}

// Vendor implements Driver.
func (d *HuaweiVRP8) Vendor() string {
	return "huawei_vrp8"
}

// Dispatch implements Driver.
func (d *HuaweiVRP8) Dispatch(ctx context.Context, sess session.Session, lines []string) (*Result, error) {
	var transcript strings.Builder

	out, err := sess.SendLine(ctx, "system-view")
	transcript.WriteString(out)
	if err != nil {
		return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
			Err: fmt.Errorf("failed to enter system-view: %w", err)}
	}

	out, err = sess.SendBlock(ctx, lines)
	transcript.WriteString(out)
	if err != nil {
		return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
			Err: fmt.Errorf("configuration block not acknowledged: %w", err)}
	}

	commitOut, commitErr := sess.SendLine(ctx, "commit")
	transcript.WriteString(commitOut)

	failure := ""
	if commitErr != nil {
		failure = commitErr.Error()
	} else if ind := errorIndicator(commitOut, vrp8FailureIndicators); ind != "" {
		failure = fmt.Sprintf("device reported %q during commit: %s", ind, strings.TrimSpace(commitOut))
	}

	if failure != "" {
		rollbackOut, rollbackErr := sess.SendLine(ctx, "rollback configuration last 1")
		transcript.WriteString(rollbackOut)

		rollback := "rollback attempted and acknowledged"
		if rollbackErr != nil {
			rollback = fmt.Sprintf("rollback attempt failed: %v", rollbackErr)
		} else if ind := errorIndicator(rollbackOut, vrp8FailureIndicators); ind != "" {
			rollback = fmt.Sprintf("rollback attempt reported %q", ind)
		}

		// Best effort: leave configuration mode either way.
		if out, err := sess.SendLine(ctx, "return"); err == nil {
			transcript.WriteString(out)
		}

		return nil, &DriverError{
			Vendor: d.Vendor(),
			Output: transcript.String(),
			Err:    fmt.Errorf("commit failed: %s; %s", failure, rollback),
		}
	}

	out, err = sess.SendLine(ctx, "return")
	transcript.WriteString(out)
	if err != nil {
		return nil, &DriverError{Vendor: d.Vendor(), Output: transcript.String(),
			Err: fmt.Errorf("committed but failed to leave system-view: %w", err)}
	}

	// A sysname change moves the prompt; record what it looks like now.
	if hasSysname(lines) {
		transcript.WriteString(fmt.Sprintf("\nprompt after commit: %s\n", sess.Prompt()))
	}

	return &Result{Output: transcript.String(), Persisted: true}, nil
}

// ExportConfig implements ConfigExporter.
func (d *HuaweiVRP8) ExportConfig(ctx context.Context, sess session.Session) (string, string, error) {
	out, err := sess.SendLine(ctx, "display current-configuration")
	if err != nil {
		return "", "", fmt.Errorf("failed to read running configuration: %w", err)
	}
	return out, "", nil
}

func hasSysname(lines []string) bool {
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "sysname ") {
			return true
		}
	}
	return false
}
