package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vestlane/grantgate/internal/store"
)

var (
	runsLedgerOverride string
	runsJSONOutput     bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the validation run ledger",
	Long:  "List and inspect recorded validation runs without re-validating anything.",
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsLedgerOverride, "ledger", "",
		"Ledger database path (overrides config and GRANTGATE_LEDGER_PATH)")
	runsCmd.PersistentFlags().BoolVar(&runsJSONOutput, "json", false,
		"Output in JSON format")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
}

// resolveLedger opens the run ledger with the optional --ledger override.
func resolveLedger() (*store.SQLiteStore, error) {
	path := runsLedgerOverride
	if path == "" {
		path = cfg.Ledger.Path
	}
	return store.NewSQLiteStore(path)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func formatRows(total, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("%d", total)
	}
	return fmt.Sprintf("%d (%d failed)", total, failed)
}
