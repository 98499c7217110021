package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsListLimit int

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent validation runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

func init() {
	runsListCmd.Flags().IntVar(&runsListLimit, "limit", 20, "Maximum number of runs to show")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	ledger, err := resolveLedger()
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	runs, err := ledger.ListRuns(runsListLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if runsJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"runs":  runs,
			"total": len(runs),
		})
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tTENANT\tFILE\tSTATUS\tROWS\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.TenantKey,
			r.FileName,
			r.Status,
			formatRows(r.RowsTotal, r.RowsFailed),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	return nil
}
