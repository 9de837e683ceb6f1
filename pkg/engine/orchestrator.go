package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/netforge/netforge/pkg/catalog"
	"github.com/netforge/netforge/pkg/drivers"
	"github.com/netforge/netforge/pkg/inventory"
	"github.com/netforge/netforge/pkg/render"
	"github.com/netforge/netforge/pkg/safety"
	"github.com/netforge/netforge/pkg/session"
	"github.com/netforge/netforge/pkg/telemetry"
)

// Confirmer gates a run's dispatch phase. Confirm receives the pending
// plan results (with safety verdicts) and returns whether the operator
// approved the push. One confirmation covers the whole run.
type Confirmer interface {
	Confirm(ctx context.Context, pending []OperationResult) (bool, error)
}

// Options configures an Orchestrator. Telemetry may be nil, in which
// case a disabled bundle is used.
type Options struct {
	Catalog   *catalog.Catalog
	Renderer  *render.Renderer
	Registry  *drivers.Registry
	Dialer    session.Dialer
	Confirmer Confirmer
	Telemetry *telemetry.Telemetry
}

// Orchestrator runs the plan/apply workflow. Devices are processed one
// at a time; sessions are opened only during apply, check, and backup,
// never during plan.
type Orchestrator struct {
	catalog   *catalog.Catalog
	renderer  *render.Renderer
	registry  *drivers.Registry
	dialer    session.Dialer
	confirmer Confirmer
	tel       *telemetry.Telemetry
	log       *telemetry.Logger
}

// New creates an orchestrator from opts.
func New(opts Options) *Orchestrator {
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.Nop()
	}
	return &Orchestrator{
		catalog:   opts.Catalog,
		renderer:  opts.Renderer,
		registry:  opts.Registry,
		dialer:    opts.Dialer,
		confirmer: opts.Confirmer,
		tel:       tel,
		log:       tel.Logger.NewComponentLogger("engine"),
	}
}

// Plan resolves, renders, and analyzes the configuration for each
// device without touching any device. overrideTemplate, when non-empty,
// wins over per-device template pins.
func (o *Orchestrator) Plan(ctx context.Context, devices []inventory.Device, overrideTemplate string) (*Report, error) {
	report := o.newReport("plan")
	ctx, span := o.tel.Tracer.StartRunSpan(ctx, "plan", report.RunID)
	defer span.End()

	for _, dev := range devices {
		item, err := o.planDevice(ctx, dev, overrideTemplate)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if item.pending {
			item.res.State = StatePlanComplete
			item.res.Status = StatusSuccess
			item.res.Detail = verdictDetail(item.res.Verdict)
			item.res.Duration = time.Since(item.start)
		}
		o.record(report, item.res)
	}

	o.finish(report)
	return report, nil
}

// Apply plans every device, gates the run on the confirmer unless force
// is set, and dispatches the confirmed configurations. Each device ends
// in exactly one terminal status; connection and driver failures are
// recorded and the run continues.
func (o *Orchestrator) Apply(ctx context.Context, devices []inventory.Device, overrideTemplate string, force bool) (*Report, error) {
	report := o.newReport("apply")
	ctx, span := o.tel.Tracer.StartRunSpan(ctx, "apply", report.RunID)
	defer span.End()

	var items []planItem
	for _, dev := range devices {
		item, err := o.planDevice(ctx, dev, overrideTemplate)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		items = append(items, item)
	}

	confirmed := force
	if !confirmed {
		pending := make([]OperationResult, 0, len(items))
		for _, item := range items {
			if item.pending {
				res := item.res
				res.State = StateConfirmationPending
				pending = append(pending, res)
			}
		}
		if len(pending) > 0 {
			if o.confirmer == nil {
				return nil, fmt.Errorf("apply requires confirmation and no confirmer is configured (use force to override)")
			}
			ok, err := o.confirmer.Confirm(ctx, pending)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, fmt.Errorf("confirmation failed: %w", err)
			}
			confirmed = ok
		}
	}

	for _, item := range items {
		if !item.pending {
			o.record(report, item.res)
			continue
		}
		if !confirmed {
			item.res.State = StateConfirmationPending
			item.res.Status = StatusSkipped
			item.res.Detail = "apply not confirmed"
			item.res.Duration = time.Since(item.start)
			o.record(report, item.res)
			continue
		}
		o.record(report, o.dispatch(ctx, item))
	}

	o.finish(report)
	return report, nil
}

// Check probes management connectivity for each device: open a session,
// read the prompt, close. No configuration is sent.
func (o *Orchestrator) Check(ctx context.Context, devices []inventory.Device) (*Report, error) {
	report := o.newReport("check")
	ctx, span := o.tel.Tracer.StartRunSpan(ctx, "check", report.RunID)
	defer span.End()

	for _, dev := range devices {
		start := time.Now()
		res := OperationResult{Device: dev.Name, Vendor: dev.Vendor, State: StateSelected}

		sess, err := o.open(ctx, dev)
		if err != nil {
			res.State = StateConnectFailed
			res.Status = StatusFailed
			res.Detail = err.Error()
			res.Duration = time.Since(start)
			o.record(report, res)
			continue
		}

		prompt := sess.Prompt()
		_ = sess.Close()

		res.State = StateConnected
		res.Status = StatusSuccess
		res.Detail = fmt.Sprintf("prompt: %s", prompt)
		res.Duration = time.Since(start)
		o.record(report, res)
	}

	o.finish(report)
	return report, nil
}

// Backup exports each device's running configuration into dir. Drivers
// that export to a remote file have it fetched over the session; others
// return the configuration text directly.
func (o *Orchestrator) Backup(ctx context.Context, devices []inventory.Device, dir string) (*Report, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	report := o.newReport("backup")
	ctx, span := o.tel.Tracer.StartRunSpan(ctx, "backup", report.RunID)
	defer span.End()

	for _, dev := range devices {
		o.record(report, o.backupDevice(ctx, dev, dir))
	}

	o.finish(report)
	return report, nil
}

// planItem carries a device through the plan phase into dispatch.
type planItem struct {
	dev   inventory.Device
	start time.Time
	res   OperationResult

	// pending is true when the device reached plan completion and is
	// eligible for dispatch.
	pending bool
}

// planDevice runs one device through resolution, rendering, and safety
// analysis. A returned error is run-fatal (unreadable template root);
// everything device-scoped lands in the result instead.
func (o *Orchestrator) planDevice(ctx context.Context, dev inventory.Device, override string) (planItem, error) {
	_, span := o.tel.Tracer.StartDeviceSpan(ctx, dev.Name, dev.Vendor)
	defer span.End()

	item := planItem{
		dev:   dev,
		start: time.Now(),
		res:   OperationResult{Device: dev.Name, Vendor: dev.Vendor, State: StateSelected},
	}
	log := o.log.WithDevice(dev.Name)

	name := effectiveTemplateName(dev, override)
	item.res.Template = name

	tpl, err := o.catalog.Find(dev.Vendor, name)
	if err != nil {
		var notFound *catalog.NotFoundError
		if errors.As(err, &notFound) {
			resolveErr := &ResolveError{Device: dev.Name, Vendor: dev.Vendor, Template: name, Err: err}
			telemetry.RecordError(span, resolveErr)
			log.Warnf("no template %q for vendor %q, skipping", name, dev.Vendor)

			item.res.State = StateSkippedNoTemplate
			item.res.Status = StatusSkipped
			item.res.Detail = resolveErr.Error()
			item.res.Duration = time.Since(item.start)
			return item, nil
		}
		return planItem{}, err
	}
	item.res.State = StateTemplateResolved

	cfg, err := o.renderer.Render(tpl, dev)
	if err != nil {
		telemetry.RecordError(span, err)
		log.WithError(err).Error("template rendering failed")

		item.res.State = StateRenderFailed
		item.res.Status = StatusFailed
		item.res.Detail = err.Error()
		item.res.Duration = time.Since(item.start)
		return item, nil
	}
	item.res.State = StateRendered
	item.res.Lines = cfg.Lines

	verdict := safety.Analyze(cfg)
	item.res.State = StateAnalyzed
	item.res.Verdict = &verdict
	item.pending = true

	log.Debugf("planned %d lines from template %q (safe=%t)", len(cfg.Lines), name, verdict.IsSafe)
	return item, nil
}

// dispatch pushes one planned configuration to its device.
func (o *Orchestrator) dispatch(ctx context.Context, item planItem) OperationResult {
	ctx, span := o.tel.Tracer.StartDeviceSpan(ctx, item.dev.Name, item.dev.Vendor)
	defer span.End()

	res := item.res
	res.State = StateConfirmed
	log := o.log.WithDevice(item.dev.Name)

	// Resolve the driver before opening any session so an unknown
	// vendor costs nothing.
	driver, err := o.registry.Lookup(item.dev.Vendor)
	if err != nil {
		telemetry.RecordError(span, err)
		res.State = StateDriverFailed
		res.Status = StatusFailed
		res.Detail = err.Error()
		res.Duration = time.Since(item.start)
		return res
	}

	sess, err := o.open(ctx, item.dev)
	if err != nil {
		telemetry.RecordError(span, err)
		log.WithError(err).Error("connection failed")

		res.State = StateConnectFailed
		res.Status = StatusFailed
		res.Detail = err.Error()
		res.Duration = time.Since(item.start)
		return res
	}
	defer sess.Close()

	res.State = StateDispatched
	result, err := driver.Dispatch(ctx, sess, res.Lines)
	if err != nil {
		telemetry.RecordError(span, err)
		log.WithError(err).Error("dispatch failed")

		res.State = StateDriverFailed
		res.Status = StatusFailed
		res.Detail = err.Error()
		var driverErr *drivers.DriverError
		if errors.As(err, &driverErr) {
			res.Transcript = driverErr.Output
		}
		res.Duration = time.Since(item.start)
		return res
	}

	res.State = StateApplied
	res.Status = StatusSuccess
	res.Transcript = result.Output
	if result.Persisted {
		res.Detail = "configuration applied and persisted"
	} else {
		res.Detail = "configuration applied"
	}
	res.Duration = time.Since(item.start)

	log.Infof("applied %d lines", len(res.Lines))
	return res
}

func (o *Orchestrator) backupDevice(ctx context.Context, dev inventory.Device, dir string) OperationResult {
	ctx, span := o.tel.Tracer.StartDeviceSpan(ctx, dev.Name, dev.Vendor)
	defer span.End()

	start := time.Now()
	res := OperationResult{Device: dev.Name, Vendor: dev.Vendor, State: StateSelected}

	driver, err := o.registry.Lookup(dev.Vendor)
	if err != nil {
		res.State = StateDriverFailed
		res.Status = StatusFailed
		res.Detail = err.Error()
		res.Duration = time.Since(start)
		return res
	}
	exporter, ok := driver.(drivers.ConfigExporter)
	if !ok {
		res.State = StateSkippedNoTemplate
		res.Status = StatusSkipped
		res.Detail = fmt.Sprintf("vendor %q does not support configuration export", dev.Vendor)
		res.Duration = time.Since(start)
		return res
	}

	sess, err := o.open(ctx, dev)
	if err != nil {
		telemetry.RecordError(span, err)
		res.State = StateConnectFailed
		res.Status = StatusFailed
		res.Detail = err.Error()
		res.Duration = time.Since(start)
		return res
	}
	defer sess.Close()

	output, remoteFile, err := exporter.ExportConfig(ctx, sess)
	if err != nil {
		telemetry.RecordError(span, err)
		res.State = StateDriverFailed
		res.Status = StatusFailed
		res.Detail = err.Error()
		res.Duration = time.Since(start)
		return res
	}

	localPath := filepath.Join(dir, dev.Name+".cfg")
	if remoteFile != "" {
		localPath = filepath.Join(dir, dev.Name+filepath.Ext(remoteFile))
		err = sess.Fetch(ctx, remoteFile, localPath)
	} else {
		err = os.WriteFile(localPath, []byte(output), 0o600)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		res.State = StateDriverFailed
		res.Status = StatusFailed
		res.Detail = fmt.Sprintf("failed to store backup: %v", err)
		res.Duration = time.Since(start)
		return res
	}

	res.State = StateBackupComplete
	res.Status = StatusSuccess
	res.Detail = fmt.Sprintf("saved to %s", localPath)
	res.Duration = time.Since(start)
	return res
}

func (o *Orchestrator) open(ctx context.Context, dev inventory.Device) (session.Session, error) {
	sess, err := o.dialer.Open(ctx, dev)
	if err != nil {
		o.tel.Metrics.RecordSessionConnect("error")
		return nil, err
	}
	o.tel.Metrics.RecordSessionConnect("success")
	return sess, nil
}

func (o *Orchestrator) newReport(operation string) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		Operation: operation,
		StartedAt: time.Now(),
	}
}

func (o *Orchestrator) record(report *Report, res OperationResult) {
	report.add(res)
	o.tel.Metrics.RecordDevice(res.Vendor, report.Operation, string(res.Status), res.Duration)
}

func (o *Orchestrator) finish(report *Report) {
	report.Duration = time.Since(report.StartedAt)

	status := "success"
	if report.Failed() {
		status = "failed"
	}
	o.tel.Metrics.RecordRunCompleted(report.Operation, status)
	o.log.WithRunID(report.RunID).Infof("%s finished: %d total, %d succeeded, %d failed, %d skipped",
		report.Operation, report.Summary.Total, report.Summary.Succeeded,
		report.Summary.Failed, report.Summary.Skipped)
}

// effectiveTemplateName applies the resolution priority: CLI override,
// then the device's inventory pin, then the default template.
func effectiveTemplateName(dev inventory.Device, override string) string {
	if override != "" {
		return strings.TrimSuffix(override, catalog.TemplateExt)
	}
	if name := dev.TemplateName(); name != "" {
		return name
	}
	return catalog.DefaultTemplateName
}

func verdictDetail(v *safety.Verdict) string {
	if v == nil {
		return ""
	}
	if v.IsSafe {
		return "safe to apply"
	}
	return strings.Join(v.Reasons, "; ")
}
