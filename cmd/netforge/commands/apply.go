package commands

import (
	"github.com/spf13/cobra"
)

func newApplyCommand() *cobra.Command {
	var (
		templateOverride string
		force            bool
	)

	cmd := &cobra.Command{
		Use:   "apply [device...]",
		Short: "Push rendered configuration to devices",
		Long: `Plan every selected device, show the pending changes, and push them over
the management session after a single per-run confirmation. Unsafe and
hostname-changing plans are called out in the confirmation summary.

A failing device never stops the run: its error is recorded and the next
device proceeds. The exit code is 1 when at least one device failed.`,
		Example: `  # Apply with interactive confirmation
  netforge apply

  # Apply a hostname-changing template without prompting
  netforge apply core-r1 --template rename --force`,
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

			orch := newOrchestrator(tel, newPromptConfirmer())
			report, err := orch.Apply(cmd.Context(), devices, templateOverride, force)
			if err != nil {
				return err
			}
			return printReport(report, false)
		},
	}

	cmd.Flags().StringVar(&templateOverride, "template", "", "template name overriding per-device pins")
	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")

	return cmd
}
