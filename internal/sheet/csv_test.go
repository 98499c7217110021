package sheet

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vestlane/grantgate/internal/dates"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grants.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenCSV(t *testing.T) {
	path := writeCSV(t, "Employee Id , Options Granted\nE-1,1000\nE-2,500\n")

	doc, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV error: %v", err)
	}

	if got, want := doc.Headers(), []string{"Employee Id", "Options Granted"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Headers() = %v, want %v (trimmed)", got, want)
	}
	if doc.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3", doc.Rows())
	}
	if v := doc.Cell(2, 2); v.Kind != Number || v.Number != 1000 {
		t.Errorf("Cell(2,2) = %+v, want Number 1000", v)
	}
	if doc.Name() != "grants.csv" {
		t.Errorf("Name() = %q, want grants.csv", doc.Name())
	}
}

func TestOpenCSV_Empty(t *testing.T) {
	path := writeCSV(t, "")
	if _, err := OpenCSV(path); err == nil {
		t.Error("OpenCSV(empty) = nil error, want error")
	}
}

func TestCSV_RaggedRows(t *testing.T) {
	path := writeCSV(t, "A,B,C\nonly-one\n")

	doc, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV error: %v", err)
	}

	if v := doc.Cell(2, 1); v.Trimmed() != "only-one" {
		t.Errorf("Cell(2,1) = %q, want only-one", v.Trimmed())
	}
	if v := doc.Cell(2, 3); v.Kind != Empty {
		t.Errorf("Cell(2,3).Kind = %v, want Empty for short row", v.Kind)
	}
	if v := doc.Cell(99, 1); v.Kind != Empty {
		t.Errorf("out-of-range cell kind = %v, want Empty", v.Kind)
	}
}

func TestCSV_CommitRewritesOnlyPatchedCells(t *testing.T) {
	path := writeCSV(t, "Date Of Grant,Plan Name,Notes\n31/01/2024,ESOP-A,keep me\n")

	doc, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV error: %v", err)
	}

	doc.Stage(DatePatch{
		Row:    2,
		Col:    1,
		Date:   dates.Date{Year: 2024, Month: time.January, Day: 31},
		Layout: "2/1/2006",
	})
	if err := doc.Commit(); err != nil {
		t.Fatalf("Commit error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[1] != "31/1/2024,ESOP-A,keep me" {
		t.Errorf("committed row = %q, want %q", lines[1], "31/1/2024,ESOP-A,keep me")
	}
}

func TestCSV_DiscardLeavesFileUntouched(t *testing.T) {
	content := "Date Of Grant,Plan Name\n31/01/2024,ESOP-A\n"
	path := writeCSV(t, content)

	doc, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV error: %v", err)
	}
	doc.Stage(DatePatch{Row: 2, Col: 1, Date: dates.Date{Year: 2024, Month: time.January, Day: 31}, Layout: "2/1/2006"})
	doc.Discard()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Error("Discard must not modify the source file")
	}
}
