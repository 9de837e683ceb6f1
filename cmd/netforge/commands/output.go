package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/netforge/netforge/pkg/engine"
)

var (
	successColor = color.New(color.FgGreen)
	failedColor  = color.New(color.FgRed)
	skippedColor = color.New(color.FgYellow)
	headerColor  = color.New(color.Bold)
)

// printReport writes the run report as JSON or colored text. It returns
// an error when at least one device failed, which drives the process
// exit code; per-device failures never abort the run itself.
func printReport(report *engine.Report, showLines bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printTextReport(report, showLines)
	}

	if report.Failed() {
		return fmt.Errorf("%d of %d device(s) failed", report.Summary.Failed, report.Summary.Total)
	}
	return nil
}

func printTextReport(report *engine.Report, showLines bool) {
	headerColor.Printf("Run %s (%s)\n\n", report.RunID, report.Operation)

	for _, res := range report.Results {
		statusColor(res.Status).Printf("%-8s", res.Status)
		fmt.Printf(" %s  state=%s", res.Device, res.State)
		if res.Template != "" {
			fmt.Printf("  template=%s", res.Template)
		}
		fmt.Println()
		if res.Detail != "" {
			fmt.Printf("         %s\n", res.Detail)
		}

		if showLines && len(res.Lines) > 0 {
			for _, line := range res.Lines {
				fmt.Printf("       + %s\n", line)
			}
		}
		if verbose && res.Transcript != "" {
			fmt.Println("         transcript:")
			fmt.Println(indent(res.Transcript, "           "))
		}
	}

	s := report.Summary
	fmt.Printf("\nTotal: %d  Succeeded: %d  Failed: %d  Skipped: %d\n",
		s.Total, s.Succeeded, s.Failed, s.Skipped)
}

func statusColor(status engine.Status) *color.Color {
	switch status {
	case engine.StatusSuccess:
		return successColor
	case engine.StatusFailed:
		return failedColor
	default:
		return skippedColor
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
