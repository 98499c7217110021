package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vestlane/grantgate/internal/dates"
	"github.com/vestlane/grantgate/internal/engine"
	"github.com/vestlane/grantgate/internal/schema"
	"github.com/vestlane/grantgate/internal/sheet"
	"github.com/vestlane/grantgate/internal/store"
)

var (
	validateTenant   string
	validateDryRun   bool
	validateFormat   string
	validateNoLedger bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate and normalize a grant import document",
	Long: "Runs the full validation pipeline on an .xlsx or .csv document. " +
		"On success the document is normalized in place; otherwise the error " +
		"report is printed and the file is left untouched.",
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateTenant, "tenant", "", "Tenant key (required)")
	validateCmd.Flags().BoolVar(&validateDryRun, "dry-run", false,
		"Validate without writing the document back")
	validateCmd.Flags().StringVar(&validateFormat, "format", "table",
		"Report output format: table or json")
	validateCmd.Flags().BoolVar(&validateNoLedger, "no-ledger", false,
		"Skip recording the run in the ledger")
	validateCmd.MarkFlagRequired("tenant")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	registry, err := schema.LoadFile(cfg.Schema.Path)
	if err != nil {
		return fmt.Errorf("load schema registry: %w", err)
	}

	doc, err := sheet.Open(path)
	if err != nil {
		return err
	}
	rowsTotal := doc.Rows() - 1
	if rowsTotal < 0 {
		rowsTotal = 0
	}

	v := engine.New(registry,
		engine.WithWorkers(cfg.Validator.Workers),
		engine.WithDryRun(validateDryRun),
		engine.WithNormalizer(&dates.Normalizer{TwoDigitYearBase: cfg.Validator.TwoDigitYearBase}),
	)

	report, err := v.Validate(cmd.Context(), doc, validateTenant)
	if err != nil {
		return err
	}

	if !validateNoLedger {
		recordRun(doc.Name(), report, rowsTotal)
	}

	switch validateFormat {
	case "json":
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	default:
		renderReport(cmd.OutOrStdout(), report)
	}

	if !report.Valid() {
		return fmt.Errorf("document is not valid: %s", report.Status)
	}
	return nil
}

// recordRun appends the outcome to the run ledger. Ledger failures are
// logged, never surfaced: the validation outcome stands on its own.
func recordRun(fileName string, report *engine.Report, rowsTotal int) {
	ledger, err := store.NewSQLiteStore(cfg.Ledger.Path)
	if err != nil {
		slog.Warn("ledger unavailable", "error", err)
		return
	}
	defer ledger.Close()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		slog.Warn("ledger record skipped", "error", err)
		return
	}
	if _, err := ledger.RecordRun(store.Run{
		TenantKey:  validateTenant,
		FileName:   fileName,
		Status:     string(report.Status),
		Report:     reportJSON,
		RowsTotal:  rowsTotal,
		RowsFailed: report.RowsFailed(),
	}); err != nil {
		slog.Warn("ledger record failed", "error", err)
	}
}

// renderReport prints a human-readable validation report.
func renderReport(out io.Writer, report *engine.Report) {
	fmt.Fprintf(out, "Status: %s\n", report.Status)

	for _, msg := range report.FileErrors {
		fmt.Fprintf(out, "File error: %s\n", msg)
	}
	if len(report.RowErrors) == 0 {
		return
	}

	rowNums := make([]int, 0, len(report.RowErrors))
	for row := range report.RowErrors {
		rowNums = append(rowNums, row)
	}
	sort.Ints(rowNums)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tFIELD\tERROR")
	for _, row := range rowNums {
		errs := report.RowErrors[row]
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(w, "%d\t%s\t%s\n", row, f, errs[f])
		}
	}
	w.Flush()
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
