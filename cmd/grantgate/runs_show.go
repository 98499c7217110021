package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vestlane/grantgate/internal/store"
)

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one validation run with its full report",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ledger, err := resolveLedger()
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	run, err := ledger.GetRun(args[0])
	if errors.Is(err, store.ErrRunNotFound) {
		return fmt.Errorf("run %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	if runsJSONOutput {
		return printJSON(cmd.OutOrStdout(), run)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:      %s\n", run.ID)
	fmt.Fprintf(out, "Tenant:  %s\n", run.TenantKey)
	fmt.Fprintf(out, "File:    %s\n", run.FileName)
	fmt.Fprintf(out, "Status:  %s\n", run.Status)
	fmt.Fprintf(out, "Rows:    %s\n", formatRows(run.RowsTotal, run.RowsFailed))
	fmt.Fprintf(out, "Created: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))

	var pretty map[string]any
	if err := json.Unmarshal(run.Report, &pretty); err == nil {
		fmt.Fprintln(out, "Report:")
		if err := printJSON(out, pretty); err != nil {
			return err
		}
	}
	return nil
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := resolveLedger()
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer ledger.Close()

		stats, err := ledger.Stats()
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		if runsJSONOutput {
			return printJSON(cmd.OutOrStdout(), stats)
		}

		w := newTabWriter(cmd.OutOrStdout())
		fmt.Fprintln(w, "TOTAL\tVALID\tHAS ERRORS\tFATAL")
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", stats.TotalRuns, stats.Valid, stats.HasErrors, stats.Fatal)
		w.Flush()
		return nil
	},
}
