package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a pipeline failure
type Kind string

const (
	KindLoad              Kind = "load"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindNormalization     Kind = "normalization"
	KindMissingTable      Kind = "missing_table"
)

// PipelineError is a terminal failure of a profiling run. Its message is the
// text surfaced on the result record, so it must be deterministic for a given
// input.
type PipelineError struct {
	Kind    Kind   `json:"kind"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another PipelineError of the same kind, so sentinel-style checks
// like errors.Is(err, &PipelineError{Kind: KindLoad}) work.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok || e == nil {
		return false
	}
	return t.Kind == e.Kind
}

// WithStage returns a copy of the error attributed to a stage
func (e *PipelineError) WithStage(stage string) *PipelineError {
	cp := *e
	cp.Stage = stage
	return &cp
}

// NewLoadError reports a file that is missing, unreadable, unparsable or empty
func NewLoadError(message string, cause error) *PipelineError {
	return &PipelineError{Kind: KindLoad, Message: message, Cause: cause}
}

// NewUnsupportedFormatError reports an extension no loader is registered for
func NewUnsupportedFormatError(ext string) *PipelineError {
	return &PipelineError{
		Kind:    KindUnsupportedFormat,
		Message: fmt.Sprintf("Unsupported file format: %s. Use CSV or Excel files.", ext),
	}
}

// NewNormalizationError reports a structural header/column inconsistency
func NewNormalizationError(message string) *PipelineError {
	return &PipelineError{Kind: KindNormalization, Message: message}
}

// NewMissingTableError reports a stage invoked before a table was loaded
func NewMissingTableError() *PipelineError {
	return &PipelineError{Kind: KindMissingTable, Message: "No table available"}
}

// KindOf returns the kind of the first PipelineError in err's chain, or ""
func KindOf(err error) Kind {
	var pErr *PipelineError
	if stderrors.As(err, &pErr) {
		return pErr.Kind
	}
	return ""
}

// IsLoadError reports whether err is a load failure
func IsLoadError(err error) bool { return KindOf(err) == KindLoad }

// IsUnsupportedFormat reports whether err is an unsupported format failure
func IsUnsupportedFormat(err error) bool { return KindOf(err) == KindUnsupportedFormat }

// IsNormalizationError reports whether err is a normalization failure
func IsNormalizationError(err error) bool { return KindOf(err) == KindNormalization }

// IsMissingTable reports whether err is a missing table failure
func IsMissingTable(err error) bool { return KindOf(err) == KindMissingTable }
