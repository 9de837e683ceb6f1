package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netforge/netforge/pkg/catalog"
)

func newTemplatesCommand() *cobra.Command {
	var (
		vendorFilter string
		summary      bool
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List discovered templates and their metadata",
		Long: `Discover the templates under the template root and print each one's
declared metadata. Templates without a metadata block are listed with the
conservative defaults (unsafe, no hostname change).`,
		Example: `  # All templates, grouped by vendor
  netforge templates

  # One vendor only
  netforge templates --vendor huawei_vrp8

  # Per-vendor counts
  netforge templates --summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.New(templatesDir)
			if summary {
				return printTemplateSummary(cat)
			}
			return printTemplates(cat, vendorFilter)
		},
	}

	cmd.Flags().StringVar(&vendorFilter, "vendor", "", "limit output to one vendor")
	cmd.Flags().BoolVar(&summary, "summary", false, "print per-vendor counts instead of the full list")

	return cmd
}

func printTemplates(cat *catalog.Catalog, vendorFilter string) error {
	byVendor, err := cat.Discover()
	if err != nil {
		return err
	}
	vendors, err := cat.Vendors()
	if err != nil {
		return err
	}

	if vendorFilter != "" {
		if _, ok := byVendor[vendorFilter]; !ok {
			return fmt.Errorf("no templates for vendor %q", vendorFilter)
		}
		vendors = []string{vendorFilter}
	}

	if jsonOutput {
		filtered := make(map[string][]catalog.TemplateInfo, len(vendors))
		for _, vendor := range vendors {
			filtered[vendor] = byVendor[vendor]
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	}

	for _, vendor := range vendors {
		headerColor.Printf("%s\n", vendor)
		for _, tpl := range byVendor[vendor] {
			flags := "unsafe"
			c := failedColor
			if tpl.Safe {
				flags = "safe"
				c = successColor
			}
			fmt.Printf("  %-24s ", tpl.Name)
			c.Printf("%-8s", flags)
			if tpl.ChangesHostname {
				skippedColor.Print(" changes-hostname")
			}
			if tpl.Description != "" {
				fmt.Printf("  %s", tpl.Description)
			}
			fmt.Println()
		}
	}
	return nil
}

func printTemplateSummary(cat *catalog.Catalog) error {
	summary, err := cat.Summary()
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	vendors, err := cat.Vendors()
	if err != nil {
		return err
	}
	fmt.Printf("%-16s %6s %6s %8s %18s\n", "VENDOR", "TOTAL", "SAFE", "UNSAFE", "CHANGES-HOSTNAME")
	for _, vendor := range vendors {
		s := summary[vendor]
		fmt.Printf("%-16s %6d %6d %8d %18d\n", vendor, s.Total, s.Safe, s.Unsafe, s.ChangesHostname)
	}
	return nil
}
