// Package sheet provides the tabular document abstraction the
// validation engine runs against: cells addressed by 1-based row and
// column, the header row first, with date mutations staged during the
// scan and applied in a single commit pass.
package sheet

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vestlane/grantgate/internal/dates"
)

// Kind tags the shape of a raw cell value.
type Kind int

const (
	Empty Kind = iota
	Number
	Text
	DateTime
)

// Value is a raw cell value classified once at the document boundary.
// Raw always holds the original display text so error reports can be
// presented against recognizable content.
type Value struct {
	Kind   Kind
	Number float64
	Time   time.Time
	Raw    string
}

// String returns the original display text of the value.
func (v Value) String() string { return v.Raw }

// Trimmed returns the display text with surrounding whitespace removed.
func (v Value) Trimmed() string { return strings.TrimSpace(v.Raw) }

// IsBlank reports whether the value is empty or whitespace-only.
func (v Value) IsBlank() bool { return v.Kind == Empty || v.Trimmed() == "" }

// DateInput converts the value into a tagged input for the date
// normalizer.
func (v Value) DateInput() dates.Input {
	switch {
	case v.IsBlank():
		return dates.Missing()
	case v.Kind == Number:
		return dates.Serial(v.Number)
	case v.Kind == DateTime:
		return dates.Structured(v.Time)
	default:
		return dates.Text(v.Trimmed())
	}
}

// Classify builds a Value from raw cell text: blank, numeric, or text.
func Classify(raw string) Value {
	if strings.TrimSpace(raw) == "" {
		return Value{Kind: Empty, Raw: raw}
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return Value{Kind: Number, Number: f, Raw: raw}
	}
	return Value{Kind: Text, Raw: raw}
}

// DatePatch is one staged cell mutation: a normalized date destined
// for a cell, with its spreadsheet number format and the text layout
// used by plain-text documents.
type DatePatch struct {
	Row    int
	Col    int
	Date   dates.Date
	NumFmt string
	Layout string
}

// Document is a tabular document open for validation. Cell reads are
// safe for concurrent use; Stage, Commit, and Discard must be called
// from a single goroutine after the scan completes.
type Document interface {
	// Name is the document's file name, for reports and logs.
	Name() string
	// Headers returns the trimmed values of the header row in column
	// order; index 0 is column 1.
	Headers() []string
	// Rows returns the total row count including the header row.
	Rows() int
	// Cell returns the value at a 1-based row and column. Out-of-range
	// coordinates yield an Empty value.
	Cell(row, col int) Value
	// Stage records a date mutation without touching the document.
	Stage(p DatePatch)
	// Commit applies all staged mutations and persists the document.
	Commit() error
	// Discard drops staged mutations and releases the document without
	// writing anything back.
	Discard()
}

// Open opens a document by file extension: .xlsx/.xlsm via the Excel
// reader, .csv via the CSV reader.
func Open(path string) (Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return OpenXLSX(path)
	case ".csv":
		return OpenCSV(path)
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

func trimHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}
