// Package engine orchestrates the plan/apply workflow over inventory
// devices: template resolution, rendering, safety analysis, the apply
// confirmation gate, and driver dispatch. Devices are processed strictly
// sequentially and every per-device failure is isolated; the run always
// continues to the next device.
package engine

import (
	"time"

	"github.com/netforge/netforge/pkg/safety"
)

// Status is the terminal outcome of one device in a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// State labels a device's position in the per-device state machine. The
// terminal state is recorded on the OperationResult so operators can see
// exactly how far a device got.
type State string

const (
	StateSelected            State = "Selected"
	StateTemplateResolved    State = "TemplateResolved"
	StateRendered            State = "Rendered"
	StateAnalyzed            State = "Analyzed"
	StatePlanComplete        State = "PlanComplete"
	StateConfirmationPending State = "ConfirmationPending"
	StateConfirmed           State = "Confirmed"
	StateDispatched          State = "Dispatched"
	StateApplied             State = "Applied"
	StateDriverFailed        State = "DriverFailed"
	StateConnectFailed       State = "ConnectFailed"
	StateSkippedNoTemplate   State = "SkippedNoTemplate"
	StateRenderFailed        State = "RenderFailed"
	StateResolveFailed       State = "ResolveFailed"

	// Connectivity check and backup terminal states.
	StateConnected      State = "Connected"
	StateBackupComplete State = "BackupComplete"
)

// OperationResult is the final report for one device in one run. Results
// are the process's output and are never persisted.
type OperationResult struct {
	Device   string `json:"device"`
	Vendor   string `json:"vendor"`
	Template string `json:"template,omitempty"`

	State  State  `json:"state"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`

	// Lines is the rendered configuration preview (plan and apply).
	Lines []string `json:"lines,omitempty"`

	// Verdict is the safety classification of the rendered configuration.
	Verdict *safety.Verdict `json:"verdict,omitempty"`

	// Transcript is the device session output captured during dispatch.
	Transcript string `json:"transcript,omitempty"`

	Duration time.Duration `json:"duration"`
}

// RunSummary aggregates the per-device outcomes of a run.
type RunSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Report is the complete outcome of one run.
type Report struct {
	RunID     string            `json:"run_id"`
	Operation string            `json:"operation"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	Results   []OperationResult `json:"results"`
	Summary   RunSummary        `json:"summary"`
}

// Failed reports whether at least one device failed. It drives the
// process exit code; per-device failures never abort the run itself.
func (r *Report) Failed() bool {
	return r.Summary.Failed > 0
}

func (r *Report) add(res OperationResult) {
	r.Results = append(r.Results, res)
	r.Summary.Total++
	switch res.Status {
	case StatusSuccess:
		r.Summary.Succeeded++
	case StatusFailed:
		r.Summary.Failed++
	case StatusSkipped:
		r.Summary.Skipped++
	}
}
