// Package engine orchestrates document validation: header resolution,
// tenant schema lookup, the parallel row scan, and the all-or-nothing
// commit of normalized values.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vestlane/grantgate/internal/dates"
	"github.com/vestlane/grantgate/internal/rules"
	"github.com/vestlane/grantgate/internal/schema"
	"github.com/vestlane/grantgate/internal/sheet"
)

// Validator validates tabular import documents against per-tenant
// schemas. It holds no per-document state, so one Validator may serve
// concurrent runs.
type Validator struct {
	registry *schema.Registry
	norm     *dates.Normalizer
	workers  int
	dryRun   bool
	logger   *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithWorkers bounds the row-scan worker pool. Values below 1 fall
// back to the number of CPUs.
func WithWorkers(n int) Option {
	return func(v *Validator) { v.workers = n }
}

// WithNormalizer replaces the default date normalizer.
func WithNormalizer(n *dates.Normalizer) Option {
	return func(v *Validator) { v.norm = n }
}

// WithDryRun makes the validator discard documents instead of
// committing them, even when validation succeeds.
func WithDryRun(dry bool) Option {
	return func(v *Validator) { v.dryRun = dry }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// New builds a Validator over an explicit schema registry.
func New(registry *schema.Registry, opts ...Option) *Validator {
	v := &Validator{
		registry: registry,
		norm:     dates.NewNormalizer(),
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.workers < 1 {
		v.workers = runtime.GOMAXPROCS(0)
	}
	return v
}

// Validate runs the full pipeline on one document. The returned error
// covers only infrastructure failures (unreadable or unwritable
// documents, cancellation); validation failures are expressed through
// the report. The document is committed exactly once, and only when
// the report is Valid.
func (v *Validator) Validate(ctx context.Context, doc sheet.Document, tenantKey string) (*Report, error) {
	report := newReport()
	log := v.logger.With("file", doc.Name(), "tenant", tenantKey)

	// Header check. If any mandatory header is missing no row is
	// processed and the document is rejected outright.
	cols := columnMap(doc.Headers())
	for _, h := range rules.MandatoryHeaders {
		if _, ok := cols[h]; !ok {
			report.addFileError("Missing mandatory column header: " + h)
		}
	}
	if len(report.FileErrors) > 0 {
		doc.Discard()
		log.Warn("document rejected", "stage", "header_check", "missing", len(report.FileErrors))
		return report, nil
	}

	// Schema resolve. Failure here is fatal: a configuration problem,
	// not bad data.
	tenant, err := v.registry.Resolve(tenantKey)
	if err != nil {
		if !errors.Is(err, schema.ErrUnknownTenant) {
			doc.Discard()
			return nil, err
		}
		report.Status = StatusFatal
		report.FileErrors = append(report.FileErrors, "Tenant key not found in schema registry: "+tenantKey)
		doc.Discard()
		log.Error("document rejected", "stage", "schema_resolve", "error", err)
		return report, nil
	}

	// Row scan. Rows read only their own cells plus the read-only
	// schema and column map, so they validate in parallel; mutations
	// are staged afterwards from a single goroutine.
	rowValidator := rules.NewValidator(tenant, v.norm)
	firstRow, lastRow := 2, doc.Rows()
	results := make([]rules.Result, lastRow-firstRow+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for row := firstRow; row <= lastRow; row++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			view := rowView{doc: doc, row: row, cols: cols}
			results[row-firstRow] = rowValidator.ValidateRow(view)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		doc.Discard()
		return nil, err
	}

	for i := range results {
		report.addRowErrors(firstRow+i, results[i].Errors)
	}
	if len(report.RowErrors) > 0 {
		doc.Discard()
		log.Warn("document rejected", "stage", "row_scan",
			"rows", lastRow-1, "rows_failed", report.RowsFailed())
		return report, nil
	}

	// Commit. Stage every normalized date, then apply in one pass.
	if v.dryRun {
		doc.Discard()
		log.Info("document valid", "rows", lastRow-1, "committed", false)
		return report, nil
	}
	for i, res := range results {
		row := firstRow + i
		for field, d := range res.Dates {
			format := rules.DateFormats[field]
			doc.Stage(sheet.DatePatch{
				Row:    row,
				Col:    cols[field],
				Date:   d,
				NumFmt: format.NumFmt,
				Layout: format.Layout,
			})
		}
	}
	if err := doc.Commit(); err != nil {
		return nil, fmt.Errorf("commit document: %w", err)
	}
	log.Info("document valid", "rows", lastRow-1, "committed", true)
	return report, nil
}

// ValidateFile opens the document at path and validates it.
func (v *Validator) ValidateFile(ctx context.Context, path, tenantKey string) (*Report, error) {
	doc, err := sheet.Open(path)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, doc, tenantKey)
}

// columnMap maps each trimmed, non-empty header to its 1-based column.
// The first occurrence wins when a header repeats.
func columnMap(headers []string) map[string]int {
	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if _, ok := cols[h]; !ok {
			cols[h] = i + 1
		}
	}
	return cols
}

// rowView adapts one document row to the rules.RowView contract.
type rowView struct {
	doc  sheet.Document
	row  int
	cols map[string]int
}

func (r rowView) Value(field string) (sheet.Value, bool) {
	col, ok := r.cols[field]
	if !ok {
		return sheet.Value{}, false
	}
	return r.doc.Cell(r.row, col), true
}
