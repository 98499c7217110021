package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CSV is a comma-separated document open for validation. Records are
// held in memory; commit rewrites the file with staged dates rendered
// as text.
type CSV struct {
	path    string
	records [][]string
	patches []DatePatch
}

// OpenCSV reads a CSV file into memory. Variable field counts and lazy
// quoting are tolerated; real-world exports are rarely strict.
func OpenCSV(path string) (*CSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errors.New("empty file: no header row found")
	}

	return &CSV{path: path, records: records}, nil
}

func (c *CSV) Name() string { return filepath.Base(c.path) }

func (c *CSV) Headers() []string {
	return trimHeaders(c.records[0])
}

func (c *CSV) Rows() int { return len(c.records) }

func (c *CSV) Cell(row, col int) Value {
	if row < 1 || row > len(c.records) {
		return Value{Kind: Empty}
	}
	cells := c.records[row-1]
	if col < 1 || col > len(cells) {
		return Value{Kind: Empty}
	}
	return Classify(cells[col-1])
}

func (c *CSV) Stage(p DatePatch) {
	c.patches = append(c.patches, p)
}

// Commit applies staged dates as formatted text and rewrites the file.
// Untouched cells keep their original values.
func (c *CSV) Commit() error {
	for _, p := range c.patches {
		if p.Row < 1 || p.Row > len(c.records) {
			return fmt.Errorf("patch row %d out of range", p.Row)
		}
		cells := c.records[p.Row-1]
		if p.Col < 1 || p.Col > len(cells) {
			return fmt.Errorf("patch column %d out of range on row %d", p.Col, p.Row)
		}
		cells[p.Col-1] = p.Date.Format(p.Layout)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(c.records); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func (c *CSV) Discard() {
	c.patches = nil
}
