// Package dates converts raw spreadsheet cell values into canonical
// calendar dates. It has no dependency on the rest of the engine.
package dates

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is day 0 of the 1900 date system used by spreadsheet
// serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Date is a calendar date with no time-of-day component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime truncates t to its calendar date.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Format renders the date using a time.Parse reference layout.
func (d Date) Format(layout string) string {
	return d.Time().Format(layout)
}

// String returns the date in ISO form, for logs and diagnostics.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// InvalidDateError is returned when a raw value cannot be normalized.
// Raw is empty when the value was missing or blank.
type InvalidDateError struct {
	Raw string
}

func (e *InvalidDateError) Error() string {
	if e.Raw == "" {
		return "Date is empty"
	}
	return "Invalid date format: " + e.Raw
}

// Kind discriminates the three input shapes a cell can carry.
type Kind int

const (
	KindMissing Kind = iota
	KindSerial
	KindStructured
	KindText
)

// Input is a tagged raw cell value, decided once at the document
// boundary rather than probed during normalization.
type Input struct {
	kind   Kind
	serial float64
	t      time.Time
	text   string
}

// Missing represents an absent or blank cell.
func Missing() Input { return Input{kind: KindMissing} }

// Serial wraps a numeric spreadsheet serial date.
func Serial(v float64) Input { return Input{kind: KindSerial, serial: v} }

// Structured wraps an already-parsed date/time value.
func Structured(t time.Time) Input { return Input{kind: KindStructured, t: t} }

// Text wraps a free-form date string.
func Text(s string) Input { return Input{kind: KindText, text: s} }

// Kind returns the input's shape tag.
func (in Input) Kind() Kind { return in.kind }

// Normalizer converts tagged inputs into canonical dates.
// TwoDigitYearBase is added to parsed years below 100, projecting them
// into a century; the conventional default is 2000.
type Normalizer struct {
	TwoDigitYearBase int
}

// NewNormalizer returns a Normalizer with the 2000s two-digit-year
// projection.
func NewNormalizer() *Normalizer {
	return &Normalizer{TwoDigitYearBase: 2000}
}

var (
	// Separator normalization: slashes, dots, and embedded spaces all
	// become dashes before parsing, then dash runs collapse to one.
	separators = strings.NewReplacer("/", "-", ".", "-", " ", "-")
	dashRuns   = regexp.MustCompile(`-+`)
)

// Layouts with a named month, tried day-first before the general
// fallback set. twoDigitYear marks layouts whose parsed year needs the
// century projection applied.
type textLayout struct {
	layout       string
	twoDigitYear bool
}

var dayFirstLayouts = []textLayout{
	{"2-Jan-2006", false},
	{"2-January-2006", false},
	{"2-Jan-06", true},
}

var fallbackLayouts = []textLayout{
	{"2006-1-2", false},
	{"2006-Jan-2", false},
	{"Jan-2-2006", false},
	{"Jan-2-06", true},
}

// Normalize converts a tagged raw value into a canonical calendar date
// or fails with *InvalidDateError.
func (n *Normalizer) Normalize(in Input) (Date, error) {
	switch in.kind {
	case KindSerial:
		return n.fromSerial(in.serial)
	case KindStructured:
		return FromTime(in.t), nil
	case KindText:
		return n.fromText(in.text)
	default:
		return Date{}, &InvalidDateError{}
	}
}

// fromSerial interprets v as a day count from the 1900-system epoch.
// Fractional day parts (time-of-day) are discarded.
func (n *Normalizer) fromSerial(v float64) (Date, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Date{}, &InvalidDateError{Raw: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	days := int(math.Floor(v))
	return FromTime(serialEpoch.AddDate(0, 0, days)), nil
}

func (n *Normalizer) fromText(raw string) (Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, &InvalidDateError{}
	}

	norm := dashRuns.ReplaceAllString(separators.Replace(s), "-")
	norm = strings.Trim(norm, "-")

	if d, ok := n.numericDayFirst(norm); ok {
		return d, nil
	}
	for _, tl := range dayFirstLayouts {
		if d, ok := n.parseLayout(tl, norm); ok {
			return d, nil
		}
	}
	for _, tl := range fallbackLayouts {
		if d, ok := n.parseLayout(tl, norm); ok {
			return d, nil
		}
	}
	return Date{}, &InvalidDateError{Raw: raw}
}

// numericDayFirst parses a fully numeric three-part value with
// day-first precedence. A four-digit leading part is treated as
// year-first instead. When the middle position cannot be a month but
// the first can, the two are swapped, mirroring lenient month-first
// fallback in general-purpose date parsers.
func (n *Normalizer) numericDayFirst(s string) (Date, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return Date{}, false
		}
		nums[i] = v
	}

	if len(parts[0]) == 4 {
		return makeDate(nums[0], nums[1], nums[2])
	}

	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += n.twoDigitYearBase()
	}
	if month > 12 && day <= 12 {
		day, month = month, day
	}
	return makeDate(year, month, day)
}

func (n *Normalizer) parseLayout(tl textLayout, s string) (Date, bool) {
	t, err := time.Parse(tl.layout, s)
	if err != nil {
		return Date{}, false
	}
	d := FromTime(t)
	// time.Parse resolves two-digit years on a 1969 pivot; the engine's
	// convention projects every two-digit year into the same century.
	if tl.twoDigitYear && d.Year < n.twoDigitYearBase() {
		d.Year = n.twoDigitYearBase() + d.Year%100
	}
	return d, true
}

func (n *Normalizer) twoDigitYearBase() int {
	if n.TwoDigitYearBase > 0 {
		return n.TwoDigitYearBase
	}
	return 2000
}

// makeDate validates component ranges by round-tripping through
// time.Date, which silently normalizes out-of-range values.
func makeDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}
