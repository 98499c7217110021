// Package rules validates one equity-grant record at a time against a
// tenant's schema. All field failures for a record are accumulated;
// validation never stops at the first one.
package rules

import (
	"math"
	"strconv"
	"strings"

	"github.com/vestlane/grantgate/internal/dates"
	"github.com/vestlane/grantgate/internal/schema"
	"github.com/vestlane/grantgate/internal/sheet"
)

// Canonical field names. These must match the spreadsheet headers
// exactly for interoperability with downstream consumers.
const (
	FieldEmployeeID       = "Employee Id"
	FieldOptionsGranted   = "Options Granted"
	FieldPlanName         = "Plan Name"
	FieldDateOfGrant      = "Date Of Grant"
	FieldGrantPrice       = "Grant Price"
	FieldVestingTemplate  = "Vesting Template"
	FieldVestingDateType  = "Vesting Date Type"
	FieldVestingDate      = "Vesting Date"
	FieldActualVestingDay = "Actual Vesting Day"
)

// VestingTypeCustomDate is the vesting date type that makes the
// Vesting Date field mandatory.
const VestingTypeCustomDate = "CustomDate"

// MandatoryHeaders are the columns every import document must carry.
var MandatoryHeaders = []string{
	FieldEmployeeID,
	FieldOptionsGranted,
	FieldPlanName,
	FieldDateOfGrant,
	FieldGrantPrice,
	FieldVestingTemplate,
	FieldVestingDateType,
}

// VestingDateTypeOpts is the fixed vesting date type enumeration.
var VestingDateTypeOpts = []string{"GrantDate", "CustomDate", "EmployeeJoiningDate"}

// ActualVestingDayOpts is the fixed actual-vesting-day enumeration.
var ActualVestingDayOpts = []string{
	"SAME_DAY",
	"NEXT_DAY",
	"PREVIOUS_DAY",
	"STARTING_OF_MONTH",
	"END_OF_MONTH",
}

// DateFormat pairs a spreadsheet number format with the equivalent
// text layout for plain-text documents.
type DateFormat struct {
	NumFmt string
	Layout string
}

// DateFormats maps each date field to its canonical display format.
var DateFormats = map[string]DateFormat{
	FieldDateOfGrant: {NumFmt: "D/M/YYYY", Layout: "2/1/2006"},
	FieldVestingDate: {NumFmt: "d-m-yyyy", Layout: "02-01-2006"},
}

// RowErrors maps a field name to its human-readable failure reason for
// exactly one row. Empty means the row is valid.
type RowErrors map[string]string

// RowView exposes one record's cells by field name. The second return
// is false when the document has no column for the field.
type RowView interface {
	Value(field string) (sheet.Value, bool)
}

// Result is the outcome of validating one record: accumulated failures
// plus the normalized dates for fields that passed. Dates are staged,
// not written; the document validator applies them only when the whole
// document is clean.
type Result struct {
	Errors RowErrors
	Dates  map[string]dates.Date
}

// Validator applies the field-rule table for one tenant.
type Validator struct {
	tenant *schema.TenantSchema
	norm   *dates.Normalizer
}

// NewValidator builds a row validator for a resolved tenant schema.
func NewValidator(tenant *schema.TenantSchema, norm *dates.Normalizer) *Validator {
	if norm == nil {
		norm = dates.NewNormalizer()
	}
	return &Validator{tenant: tenant, norm: norm}
}

// ValidateRow applies every field rule independently and returns the
// accumulated result. The row itself is never mutated.
func (v *Validator) ValidateRow(row RowView) Result {
	res := Result{Errors: RowErrors{}, Dates: map[string]dates.Date{}}

	v.checkIdentifier(row, res.Errors)
	v.checkOptionsGranted(row, res.Errors)
	v.checkPlanName(row, res.Errors)
	v.checkDate(row, FieldDateOfGrant, &res)
	v.checkGrantPrice(row, res.Errors)
	v.checkVestingTemplate(row, res.Errors)
	vtype := v.checkVestingDateType(row, res.Errors)
	v.checkVestingDate(row, vtype, &res)
	v.checkActualVestingDay(row, res.Errors)

	return res
}

// checkIdentifier rejects blank employee ids, including the literal
// "nan"/"none" artifacts that dataframe exports leave behind.
func (v *Validator) checkIdentifier(row RowView, errs RowErrors) {
	val, ok := row.Value(FieldEmployeeID)
	if !ok {
		return
	}
	s := val.Trimmed()
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		errs[FieldEmployeeID] = "Field is empty."
	}
}

func (v *Validator) checkOptionsGranted(row RowView, errs RowErrors) {
	val, ok := row.Value(FieldOptionsGranted)
	if !ok {
		return
	}
	f, ok := asNumber(val)
	if !ok {
		errs[FieldOptionsGranted] = "Invalid number."
		return
	}
	if f <= 0 || f != math.Trunc(f) {
		errs[FieldOptionsGranted] = "Must be whole number > 0."
	}
}

func (v *Validator) checkPlanName(row RowView, errs RowErrors) {
	val, ok := row.Value(FieldPlanName)
	if !ok {
		return
	}
	s := val.Trimmed()
	switch {
	case s == "":
		errs[FieldPlanName] = "Field is empty."
	case !v.tenant.HasPlan(s):
		errs[FieldPlanName] = "Invalid Plan."
	}
}

// checkDate normalizes a date field, propagating the normalizer's own
// message on failure and staging the canonical date on success.
func (v *Validator) checkDate(row RowView, field string, res *Result) {
	val, ok := row.Value(field)
	if !ok {
		return
	}
	d, err := v.norm.Normalize(val.DateInput())
	if err != nil {
		res.Errors[field] = err.Error()
		return
	}
	res.Dates[field] = d
}

func (v *Validator) checkGrantPrice(row RowView, errs RowErrors) {
	val, ok := row.Value(FieldGrantPrice)
	if !ok {
		return
	}
	if _, ok := asNumber(val); !ok {
		errs[FieldGrantPrice] = "Must be number."
	}
}

func (v *Validator) checkVestingTemplate(row RowView, errs RowErrors) {
	val, ok := row.Value(FieldVestingTemplate)
	if !ok {
		return
	}
	s := val.Trimmed()
	switch {
	case s == "":
		errs[FieldVestingTemplate] = "Field is empty."
	case !v.tenant.HasTemplate(s):
		errs[FieldVestingTemplate] = "Invalid Template."
	}
}

func (v *Validator) checkVestingDateType(row RowView, errs RowErrors) string {
	val, ok := row.Value(FieldVestingDateType)
	if !ok {
		return ""
	}
	s := val.Trimmed()
	if !contains(VestingDateTypeOpts, s) {
		errs[FieldVestingDateType] = "Invalid Type."
	}
	return s
}

// checkVestingDate enforces the conditional rule: the field is
// mandatory when the vesting date type is CustomDate; for other types
// an absent value is fine but a supplied one must still parse.
func (v *Validator) checkVestingDate(row RowView, vtype string, res *Result) {
	val, ok := row.Value(FieldVestingDate)

	if vtype == VestingTypeCustomDate {
		if !ok || val.IsBlank() {
			res.Errors[FieldVestingDate] = "Invalid/Empty Date."
			return
		}
		v.normalizeVestingDate(val, res)
		return
	}

	if !ok || val.IsBlank() {
		return
	}
	v.normalizeVestingDate(val, res)
}

func (v *Validator) normalizeVestingDate(val sheet.Value, res *Result) {
	d, err := v.norm.Normalize(val.DateInput())
	if err != nil {
		res.Errors[FieldVestingDate] = "Invalid/Empty Date."
		return
	}
	res.Dates[FieldVestingDate] = d
}

func (v *Validator) checkActualVestingDay(row RowView, errs RowErrors) {
	val, ok := row.Value(FieldActualVestingDay)
	if !ok {
		return
	}
	s := val.Trimmed()
	if s != "" && !contains(ActualVestingDayOpts, s) {
		errs[FieldActualVestingDay] = "Invalid Option."
	}
}

// asNumber extracts a numeric value from a cell, accepting numeric
// cells directly and text cells that parse as a number.
func asNumber(v sheet.Value) (float64, bool) {
	switch v.Kind {
	case sheet.Number:
		return v.Number, true
	case sheet.Text:
		f, err := strconv.ParseFloat(v.Trimmed(), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
