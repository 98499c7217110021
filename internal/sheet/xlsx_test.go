package sheet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vestlane/grantgate/internal/dates"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grants.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Employee Id")
	f.SetCellValue("Sheet1", "B1", "Date Of Grant")
	f.SetCellValue("Sheet1", "A2", "E-1")
	f.SetCellValue("Sheet1", "B2", "31/01/2024")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenXLSX(t *testing.T) {
	path := writeWorkbook(t)

	doc, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("OpenXLSX error: %v", err)
	}
	defer doc.Discard()

	headers := doc.Headers()
	if len(headers) != 2 || headers[0] != "Employee Id" || headers[1] != "Date Of Grant" {
		t.Errorf("Headers() = %v", headers)
	}
	if doc.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", doc.Rows())
	}
	if v := doc.Cell(2, 2); v.Kind != Text || v.Trimmed() != "31/01/2024" {
		t.Errorf("Cell(2,2) = %+v, want text 31/01/2024", v)
	}
}

func TestXLSX_CommitWritesDateWithFormat(t *testing.T) {
	path := writeWorkbook(t)

	doc, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("OpenXLSX error: %v", err)
	}
	doc.Stage(DatePatch{
		Row:    2,
		Col:    2,
		Date:   dates.Date{Year: 2024, Month: time.January, Day: 31},
		NumFmt: "D/M/YYYY",
		Layout: "2/1/2006",
	})
	if err := doc.Commit(); err != nil {
		t.Fatalf("Commit error: %v", err)
	}

	// Reopen and confirm the cell now holds a date serial and the
	// untouched cell survived.
	reopened, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Discard()

	if v := reopened.Cell(2, 1); v.Trimmed() != "E-1" {
		t.Errorf("untouched cell = %q, want E-1", v.Trimmed())
	}
	v := reopened.Cell(2, 2)
	if v.Kind != Number {
		t.Fatalf("committed cell kind = %v, want Number (date serial)", v.Kind)
	}
	d, err := dates.NewNormalizer().Normalize(v.DateInput())
	if err != nil {
		t.Fatalf("normalize committed serial: %v", err)
	}
	want := dates.Date{Year: 2024, Month: time.January, Day: 31}
	if d != want {
		t.Errorf("committed serial normalizes to %v, want %v", d, want)
	}
}
