package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/netforge/netforge/pkg/inventory"
	"github.com/netforge/netforge/pkg/stores"
)

func newDevicesCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Inspect the inventory or manage the device database",
		Long: `Without a subcommand, list the devices from the YAML inventory file.
The import/list/rm subcommands manage the SQLite device database, an
alternative inventory backend for environments that outgrow a flat file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printInventoryDevices()
		},
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "netforge.db", "device database path")

	cmd.AddCommand(newDevicesImportCommand(&dbPath))
	cmd.AddCommand(newDevicesListCommand(&dbPath))
	cmd.AddCommand(newDevicesRmCommand(&dbPath))

	return cmd
}

func printInventoryDevices() error {
	devices, err := inventory.Load(inventoryPath)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	fmt.Printf("%-20s %-18s %-14s %-14s %s\n", "NAME", "HOST", "VENDOR", "TYPE", "TEMPLATE")
	for _, dev := range devices {
		tpl := dev.TemplateName()
		if tpl == "" {
			tpl = "-"
		}
		fmt.Printf("%-20s %-18s %-14s %-14s %s\n", dev.Name, dev.Host, dev.Vendor, dev.DeviceType, tpl)
	}
	return nil
}

func newDevicesImportCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import the YAML inventory into the device database",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := inventory.Load(inventoryPath)
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			now := time.Now()
			for _, dev := range devices {
				rec := &stores.DeviceRecord{
					ID:         uuid.New().String(),
					Name:       dev.Name,
					Host:       dev.Host,
					Vendor:     dev.Vendor,
					DeviceType: dev.DeviceType,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				if dev.Username != "" {
					rec.Username = &dev.Username
				}
				if dev.Password != "" {
					rec.Password = &dev.Password
				}
				if dev.Template != "" {
					rec.Template = &dev.Template
				}
				if err := store.UpsertDevice(cmd.Context(), rec); err != nil {
					return err
				}
			}

			fmt.Printf("Imported %d device(s) into %s\n", len(devices), *dbPath)
			return nil
		},
	}
}

func newDevicesListCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List devices stored in the device database",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListDevices(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			fmt.Printf("%-20s %-18s %-14s %-14s %s\n", "NAME", "HOST", "VENDOR", "TYPE", "UPDATED")
			for _, rec := range records {
				fmt.Printf("%-20s %-18s %-14s %-14s %s\n",
					rec.Name, rec.Host, rec.Vendor, rec.DeviceType,
					rec.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newDevicesRmCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a device from the device database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteDevice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed device %s\n", args[0])
			return nil
		},
	}
}

func openStore(ctx context.Context, path string) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(stores.Config{Path: path})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
