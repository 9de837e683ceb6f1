package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	inventoryPath string
	templatesDir  string
	verbose       bool
	jsonOutput    bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "netforge",
		Short: "netforge - network device configuration orchestration",
		Long: `netforge renders vendor configuration templates against an inventory of
network devices, previews the result, and pushes it over a management SSH
session on explicit confirmation.

Workflow:
  - plan      render and classify changes without touching any device
  - apply     push rendered configuration after a per-run confirmation
  - check     probe management connectivity
  - backup    export device configurations to local files
  - templates list discovered templates and their metadata
  - devices   inspect the inventory or manage the device database`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "i", "devices.yaml", "inventory file path")
	rootCmd.PersistentFlags().StringVarP(&templatesDir, "templates", "t", "templates", "template root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newBackupCommand())
	rootCmd.AddCommand(newTemplatesCommand())
	rootCmd.AddCommand(newDevicesCommand())

	return rootCmd
}
