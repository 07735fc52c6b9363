package operations

import (
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"tabprofile/internal/analytics"
	apperrors "tabprofile/internal/errors"
	"tabprofile/internal/table"
)

// State is the position of a record in the pipeline
type State string

const (
	StateStart             State = "START"
	StateLoaded            State = "LOADED"
	StateHeadersExtracted  State = "HEADERS_EXTRACTED"
	StateHeadersNormalized State = "HEADERS_NORMALIZED"
	StateDone              State = "DONE"
)

// HeaderMapping maps original headers to normalized ones in original order
type HeaderMapping = orderedmap.OrderedMap[string, string]

// Statistics maps normalized headers to column statistics in column order
type Statistics = orderedmap.OrderedMap[string, analytics.ColumnStats]

// Record accumulates the outputs of one run. Fields of a step are absent
// until that step succeeds; once Error is set no field is populated again.
type Record struct {
	RunID           string         `json:"run_id"`
	FilePath        string         `json:"file_path"`
	State           State          `json:"state"`
	Table           *table.Table   `json:"-"`
	OriginalHeaders []string       `json:"original_headers,omitempty"`
	HeaderMapping   *HeaderMapping `json:"header_mapping,omitempty"`
	Statistics      *Statistics    `json:"statistics,omitempty"`
	Error           string         `json:"error,omitempty"`
	Steps           []*StepState   `json:"steps"`

	// Err keeps the typed error behind Error
	Err error `json:"-"`
}

// Update holds the fields produced by one step. Nil fields are left alone.
type Update struct {
	Table           *table.Table
	OriginalHeaders []string
	HeaderMapping   *HeaderMapping
	Statistics      *Statistics
}

// NewRecord creates a record in state START
func NewRecord(path string) *Record {
	return &Record{
		FilePath: path,
		State:    StateStart,
	}
}

// Failed reports whether the run has failed
func (r *Record) Failed() bool {
	return r.Error != ""
}

// Step returns the state of the step with the given id, or nil
func (r *Record) Step(id string) *StepState {
	for _, s := range r.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// apply merges an update. It is a no-op on a failed record.
func (r *Record) apply(u Update, next State) {
	if r.Failed() {
		return
	}
	if u.Table != nil {
		r.Table = u.Table
	}
	if u.OriginalHeaders != nil {
		r.OriginalHeaders = u.OriginalHeaders
	}
	if u.HeaderMapping != nil {
		r.HeaderMapping = u.HeaderMapping
	}
	if u.Statistics != nil {
		r.Statistics = u.Statistics
	}
	r.State = next
}

// fail records the first error of the run; later errors are ignored
func (r *Record) fail(stepID string, err error) {
	if r.Failed() || err == nil {
		return
	}
	var perr *apperrors.PipelineError
	if errors.As(err, &perr) && stepID != "" {
		err = perr.WithStage(stepID)
	}
	r.Err = err
	r.Error = err.Error()
	if r.Error == "" {
		r.Error = "unknown error"
	}
}
