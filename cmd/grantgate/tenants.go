package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vestlane/grantgate/internal/schema"
)

var tenantsJSONOutput bool

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List tenants in the schema registry",
	Args:  cobra.NoArgs,
	RunE:  runTenants,
}

func init() {
	tenantsCmd.Flags().BoolVar(&tenantsJSONOutput, "json", false, "Output in JSON format")
}

func runTenants(cmd *cobra.Command, args []string) error {
	registry, err := schema.LoadFile(cfg.Schema.Path)
	if err != nil {
		return fmt.Errorf("load schema registry: %w", err)
	}

	keys := registry.Tenants()

	if tenantsJSONOutput {
		items := make([]map[string]any, 0, len(keys))
		for _, key := range keys {
			ts, err := registry.Resolve(key)
			if err != nil {
				return err
			}
			items = append(items, map[string]any{
				"key":               key,
				"plan_names":        ts.PlanCount(),
				"vesting_templates": ts.TemplateCount(),
			})
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"tenants": items,
			"total":   len(items),
		})
	}

	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tenants configured.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "TENANT\tPLANS\tTEMPLATES")
	for _, key := range keys {
		ts, err := registry.Resolve(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", key, ts.PlanCount(), ts.TemplateCount())
	}
	w.Flush()

	return nil
}
