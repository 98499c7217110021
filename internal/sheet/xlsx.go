package sheet

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSX is an Excel workbook open for in-place validation. Only staged
// cells are touched on commit; every other cell, style, and sheet is
// preserved by the round-trip.
type XLSX struct {
	path    string
	file    *excelize.File
	sheet   string
	rows    [][]string
	patches []DatePatch
	styles  map[string]int
}

// OpenXLSX opens the first worksheet of an Excel workbook. Cell values
// are read raw, so dates stored as serials surface as Number values.
func OpenXLSX(path string) (*XLSX, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	name := f.GetSheetName(0)
	if name == "" {
		f.Close()
		return nil, errors.New("workbook has no worksheets")
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read worksheet %q: %w", name, err)
	}

	return &XLSX{
		path:   path,
		file:   f,
		sheet:  name,
		rows:   rows,
		styles: make(map[string]int),
	}, nil
}

func (x *XLSX) Name() string { return filepath.Base(x.path) }

func (x *XLSX) Headers() []string {
	if len(x.rows) == 0 {
		return nil
	}
	return trimHeaders(x.rows[0])
}

func (x *XLSX) Rows() int { return len(x.rows) }

func (x *XLSX) Cell(row, col int) Value {
	if row < 1 || row > len(x.rows) {
		return Value{Kind: Empty}
	}
	cells := x.rows[row-1]
	if col < 1 || col > len(cells) {
		return Value{Kind: Empty}
	}
	return Classify(cells[col-1])
}

func (x *XLSX) Stage(p DatePatch) {
	x.patches = append(x.patches, p)
}

// Commit writes every staged date into its cell with the requested
// number format, then saves the workbook back to its original path.
func (x *XLSX) Commit() error {
	defer x.file.Close()

	for _, p := range x.patches {
		cell, err := excelize.CoordinatesToCellName(p.Col, p.Row)
		if err != nil {
			return fmt.Errorf("cell name (%d,%d): %w", p.Col, p.Row, err)
		}
		if err := x.file.SetCellValue(x.sheet, cell, p.Date.Time()); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
		styleID, err := x.styleFor(p.NumFmt)
		if err != nil {
			return err
		}
		if err := x.file.SetCellStyle(x.sheet, cell, cell, styleID); err != nil {
			return fmt.Errorf("style cell %s: %w", cell, err)
		}
	}

	if err := x.file.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (x *XLSX) Discard() {
	x.patches = nil
	x.file.Close()
}

// styleFor returns a cached style ID for a custom number format.
func (x *XLSX) styleFor(numFmt string) (int, error) {
	if id, ok := x.styles[numFmt]; ok {
		return id, nil
	}
	fmtCopy := numFmt
	id, err := x.file.NewStyle(&excelize.Style{CustomNumFmt: &fmtCopy})
	if err != nil {
		return 0, fmt.Errorf("number format %q: %w", numFmt, err)
	}
	x.styles[numFmt] = id
	return id, nil
}
