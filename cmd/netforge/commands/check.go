package commands

import (
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [device...]",
		Short: "Probe management connectivity",
		Long: `Open a management session to each device, read its prompt, and close.
No configuration is sent.`,
		Example: `  # Check every inventory device
  netforge check

  # Check one device
  netforge check core-r1`,
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

			report, err := newOrchestrator(tel, nil).Check(cmd.Context(), devices)
			if err != nil {
				return err
			}
			return printReport(report, false)
		},
	}

	return cmd
}
