package rules

import (
	"testing"

	"github.com/vestlane/grantgate/internal/dates"
	"github.com/vestlane/grantgate/internal/schema"
	"github.com/vestlane/grantgate/internal/sheet"
)

// mapRow is a RowView over literal cell text, the way a document
// surfaces raw values.
type mapRow map[string]string

func (m mapRow) Value(field string) (sheet.Value, bool) {
	raw, ok := m[field]
	if !ok {
		return sheet.Value{}, false
	}
	return sheet.Classify(raw), true
}

func testValidator(t *testing.T) *Validator {
	t.Helper()
	reg := schema.New(map[string]schema.Entry{
		"acme": {
			PlanNames:        []string{"ESOP-A"},
			VestingTemplates: []string{"Standard"},
		},
	})
	ts, err := reg.Resolve("acme")
	if err != nil {
		t.Fatal(err)
	}
	return NewValidator(ts, dates.NewNormalizer())
}

func validRow() mapRow {
	return mapRow{
		FieldEmployeeID:       "E-100",
		FieldOptionsGranted:   "1000",
		FieldPlanName:         "ESOP-A",
		FieldDateOfGrant:      "31/01/2024",
		FieldGrantPrice:       "12.50",
		FieldVestingTemplate:  "Standard",
		FieldVestingDateType:  "GrantDate",
		FieldVestingDate:      "",
		FieldActualVestingDay: "",
	}
}

func TestValidateRow_Valid(t *testing.T) {
	v := testValidator(t)

	res := v.ValidateRow(validRow())
	if len(res.Errors) != 0 {
		t.Fatalf("valid row produced errors: %v", res.Errors)
	}
	if _, ok := res.Dates[FieldDateOfGrant]; !ok {
		t.Error("valid row did not stage a normalized grant date")
	}
}

func TestValidateRow_SingleFieldFailures(t *testing.T) {
	// Changing exactly one field must add exactly one error keyed by
	// that field, with no cross-contamination.
	tests := []struct {
		name    string
		field   string
		value   string
		wantMsg string
	}{
		{"empty employee id", FieldEmployeeID, "", "Field is empty."},
		{"nan employee id", FieldEmployeeID, "nan", "Field is empty."},
		{"none employee id", FieldEmployeeID, "None", "Field is empty."},
		{"fractional options", FieldOptionsGranted, "10.5", "Must be whole number > 0."},
		{"negative options", FieldOptionsGranted, "-5", "Must be whole number > 0."},
		{"zero options", FieldOptionsGranted, "0", "Must be whole number > 0."},
		{"non-numeric options", FieldOptionsGranted, "many", "Invalid number."},
		{"empty options", FieldOptionsGranted, "", "Invalid number."},
		{"empty plan", FieldPlanName, "", "Field is empty."},
		{"unknown plan", FieldPlanName, "ESOP-B", "Invalid Plan."},
		{"plan case mismatch", FieldPlanName, "esop-a", "Invalid Plan."},
		{"empty grant date", FieldDateOfGrant, "", "Date is empty"},
		{"bad grant date", FieldDateOfGrant, "soon", "Invalid date format: soon"},
		{"non-numeric price", FieldGrantPrice, "free", "Must be number."},
		{"empty price", FieldGrantPrice, "", "Must be number."},
		{"empty template", FieldVestingTemplate, "", "Field is empty."},
		{"unknown template", FieldVestingTemplate, "Aggressive", "Invalid Template."},
		{"bad vesting type", FieldVestingDateType, "SomeDay", "Invalid Type."},
		{"empty vesting type", FieldVestingDateType, "", "Invalid Type."},
		{"bad actual vesting day", FieldActualVestingDay, "WHENEVER", "Invalid Option."},
	}

	v := testValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			row[tt.field] = tt.value

			res := v.ValidateRow(row)
			if len(res.Errors) != 1 {
				t.Fatalf("errors = %v, want exactly one entry for %q", res.Errors, tt.field)
			}
			if got := res.Errors[tt.field]; got != tt.wantMsg {
				t.Errorf("errors[%q] = %q, want %q", tt.field, got, tt.wantMsg)
			}
		})
	}
}

func TestValidateRow_NegativePriceAllowed(t *testing.T) {
	// The price rule only requires a number; no sign constraint.
	v := testValidator(t)
	row := validRow()
	row[FieldGrantPrice] = "-3.25"

	res := v.ValidateRow(row)
	if msg, ok := res.Errors[FieldGrantPrice]; ok {
		t.Errorf("negative price rejected: %q", msg)
	}
}

func TestValidateRow_ConditionalVestingDate(t *testing.T) {
	v := testValidator(t)

	t.Run("custom date with empty vesting date fails", func(t *testing.T) {
		row := validRow()
		row[FieldVestingDateType] = "CustomDate"
		row[FieldVestingDate] = ""

		res := v.ValidateRow(row)
		if got := res.Errors[FieldVestingDate]; got != "Invalid/Empty Date." {
			t.Errorf("errors[Vesting Date] = %q, want Invalid/Empty Date.", got)
		}
	})

	t.Run("custom date with valid vesting date passes", func(t *testing.T) {
		row := validRow()
		row[FieldVestingDateType] = "CustomDate"
		row[FieldVestingDate] = "15/06/2025"

		res := v.ValidateRow(row)
		if len(res.Errors) != 0 {
			t.Fatalf("unexpected errors: %v", res.Errors)
		}
		if _, ok := res.Dates[FieldVestingDate]; !ok {
			t.Error("valid custom vesting date was not staged")
		}
	})

	t.Run("grant date type with empty vesting date passes", func(t *testing.T) {
		row := validRow()
		row[FieldVestingDateType] = "GrantDate"
		row[FieldVestingDate] = ""

		res := v.ValidateRow(row)
		if _, ok := res.Errors[FieldVestingDate]; ok {
			t.Errorf("errors = %v; absent vesting date must not fail for GrantDate", res.Errors)
		}
	})

	t.Run("grant date type with supplied bad vesting date fails", func(t *testing.T) {
		row := validRow()
		row[FieldVestingDateType] = "GrantDate"
		row[FieldVestingDate] = "sometime"

		res := v.ValidateRow(row)
		if got := res.Errors[FieldVestingDate]; got != "Invalid/Empty Date." {
			t.Errorf("errors[Vesting Date] = %q, want Invalid/Empty Date.", got)
		}
	})

	t.Run("custom date with missing column fails", func(t *testing.T) {
		row := validRow()
		row[FieldVestingDateType] = "CustomDate"
		delete(row, FieldVestingDate)

		res := v.ValidateRow(row)
		if got := res.Errors[FieldVestingDate]; got != "Invalid/Empty Date." {
			t.Errorf("errors[Vesting Date] = %q, want Invalid/Empty Date.", got)
		}
	})
}

func TestValidateRow_AccumulatesAllFailures(t *testing.T) {
	v := testValidator(t)
	row := mapRow{
		FieldEmployeeID:      "",
		FieldOptionsGranted:  "zero",
		FieldPlanName:        "Unknown",
		FieldDateOfGrant:     "bad",
		FieldGrantPrice:      "bad",
		FieldVestingTemplate: "Unknown",
		FieldVestingDateType: "Unknown",
	}

	res := v.ValidateRow(row)
	if len(res.Errors) != 7 {
		t.Errorf("errors = %v, want one entry per failing field (7)", res.Errors)
	}
}

func TestValidateRow_SerialGrantDate(t *testing.T) {
	v := testValidator(t)
	row := validRow()
	row[FieldDateOfGrant] = "45323"

	res := v.ValidateRow(row)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	d := res.Dates[FieldDateOfGrant]
	if d.String() != "2024-02-01" {
		t.Errorf("serial 45323 normalized to %v, want 2024-02-01", d)
	}
}

func TestValidateRow_ActualVestingDayOptions(t *testing.T) {
	v := testValidator(t)

	for _, opt := range ActualVestingDayOpts {
		row := validRow()
		row[FieldActualVestingDay] = opt

		res := v.ValidateRow(row)
		if _, ok := res.Errors[FieldActualVestingDay]; ok {
			t.Errorf("option %q rejected: %v", opt, res.Errors)
		}
	}
}
