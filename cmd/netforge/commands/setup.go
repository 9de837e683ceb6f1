package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/netforge/netforge/pkg/catalog"
	"github.com/netforge/netforge/pkg/drivers"
	"github.com/netforge/netforge/pkg/engine"
	"github.com/netforge/netforge/pkg/inventory"
	"github.com/netforge/netforge/pkg/render"
	"github.com/netforge/netforge/pkg/session"
	"github.com/netforge/netforge/pkg/telemetry"
)

// newTelemetry builds the observability bundle for one CLI invocation.
// Tracing and the metrics listener stay off unless requested through the
// environment, so a plain run produces only console logs.
func newTelemetry() (*telemetry.Telemetry, error) {
	cfg := telemetry.DefaultConfig()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if addr := os.Getenv("NETFORGE_METRICS_ADDR"); addr != "" {
		cfg.Metrics.ListenAddress = addr
	}
	if exporter := os.Getenv("NETFORGE_TRACE_EXPORTER"); exporter != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Exporter = exporter
		cfg.Tracing.Endpoint = os.Getenv("NETFORGE_TRACE_ENDPOINT")
		cfg.Tracing.Insecure = true
	}
	return telemetry.New(cfg)
}

// newOrchestrator wires the engine from the global flags.
func newOrchestrator(tel *telemetry.Telemetry, confirmer engine.Confirmer) *engine.Orchestrator {
	return engine.New(engine.Options{
		Catalog:   catalog.New(templatesDir),
		Renderer:  render.NewRenderer(),
		Registry:  drivers.Default(),
		Dialer:    session.NewSSHDialer(session.DefaultOptions()),
		Confirmer: confirmer,
		Telemetry: tel,
	})
}

// loadDevices loads the inventory and narrows it to the named devices.
// An empty names list selects every device.
func loadDevices(names []string) ([]inventory.Device, error) {
	devices, err := inventory.Load(inventoryPath)
	if err != nil {
		return nil, err
	}
	return inventory.FilterByName(devices, names)
}

// promptConfirmer asks the operator to approve a pending apply on the
// terminal. Only the literal answer "yes" confirms.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func newPromptConfirmer() *promptConfirmer {
	return &promptConfirmer{in: os.Stdin, out: os.Stdout}
}

func (c *promptConfirmer) Confirm(ctx context.Context, pending []engine.OperationResult) (bool, error) {
	fmt.Fprintf(c.out, "\nAbout to apply configuration to %d device(s):\n", len(pending))
	for _, res := range pending {
		note := "safe"
		if res.Verdict != nil && !res.Verdict.IsSafe {
			note = strings.Join(res.Verdict.Reasons, "; ")
		}
		fmt.Fprintf(c.out, "  %s  template=%s  %d lines  [%s]\n", res.Device, res.Template, len(res.Lines), note)
	}
	fmt.Fprint(c.out, "\nOnly 'yes' will be accepted to approve.\nEnter a value: ")

	answerCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(c.in)
		line, err := reader.ReadString('\n')
		if err != nil {
			errCh <- err
			return
		}
		answerCh <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errCh:
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	case answer := <-answerCh:
		return answer == "yes", nil
	}
}
