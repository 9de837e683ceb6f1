package commands

import (
	"github.com/spf13/cobra"
)

func newBackupCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup [device...]",
		Short: "Export device configurations to local files",
		Long: `Run each vendor's configuration export and save the result under the
backup directory. Vendors that export to a file on the device (RouterOS)
have it fetched over SFTP; the others return the configuration text over
the session.`,
		Example: `  # Back up every inventory device into ./backups
  netforge backup

  # Back up one device into a custom directory
  netforge backup core-r1 --dir /var/backups/network`,
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

			report, err := newOrchestrator(tel, nil).Backup(cmd.Context(), devices, dir)
			if err != nil {
				return err
			}
			return printReport(report, false)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "backups", "directory to store configuration exports")

	return cmd
}
