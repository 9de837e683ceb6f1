package commands

import (
	"github.com/spf13/cobra"
)

func newPlanCommand() *cobra.Command {
	var templateOverride string

	cmd := &cobra.Command{
		Use:   "plan [device...]",
		Short: "Render and classify configuration changes without touching any device",
		Long: `Render each device's template, analyze the result for safety, and print
the configuration that an apply would push. Plan never opens a management
session.

Template resolution per device: --template override, then the device's
inventory "template" field, then "default".`,
		Example: `  # Plan every inventory device
  netforge plan

  # Plan two specific devices with a template override
  netforge plan core-r1 core-r2 --template ntp-baseline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tel, err := newTelemetry()
			if err != nil {
				return err
			}
			defer tel.Shutdown(cmd.Context())

			devices, err := loadDevices(args)
			if err != nil {
				return err
			}

			report, err := newOrchestrator(tel, nil).Plan(cmd.Context(), devices, templateOverride)
			if err != nil {
				return err
			}
			return printReport(report, true)
		},
	}

	cmd.Flags().StringVar(&templateOverride, "template", "", "template name overriding per-device pins")

	return cmd
}
