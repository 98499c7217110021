package engine

import "github.com/vestlane/grantgate/internal/rules"

// Status is the file-level outcome of a validation run.
type Status string

const (
	// StatusValid means every check passed and the document was (or may
	// be) committed.
	StatusValid Status = "Valid"
	// StatusHasErrors means structural or row-level failures were found;
	// the document was not written.
	StatusHasErrors Status = "Has Errors"
	// StatusFatal means row-by-row validation was impossible, e.g. the
	// tenant schema could not be resolved.
	StatusFatal Status = "Fatal Error"
)

// Report is the complete, addressable outcome of one validation run.
// Row keys are 1-based document positions including the header offset,
// so the first data row is 2. The invariant holds that Status is Valid
// exactly when both FileErrors and RowErrors are empty.
type Report struct {
	Status     Status                  `json:"file_status"`
	FileErrors []string                `json:"file_errors"`
	RowErrors  map[int]rules.RowErrors `json:"row_errors"`
}

func newReport() *Report {
	return &Report{
		Status:     StatusValid,
		FileErrors: []string{},
		RowErrors:  map[int]rules.RowErrors{},
	}
}

// Valid reports whether the document passed every check.
func (r *Report) Valid() bool {
	return r.Status == StatusValid
}

// RowsFailed returns the number of rows carrying at least one error.
func (r *Report) RowsFailed() int {
	return len(r.RowErrors)
}

func (r *Report) addFileError(msg string) {
	r.FileErrors = append(r.FileErrors, msg)
	if r.Status == StatusValid {
		r.Status = StatusHasErrors
	}
}

func (r *Report) addRowErrors(row int, errs rules.RowErrors) {
	if len(errs) == 0 {
		return
	}
	r.RowErrors[row] = errs
	if r.Status == StatusValid {
		r.Status = StatusHasErrors
	}
}
