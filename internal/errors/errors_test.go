package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want string
	}{
		{
			name: "message only",
			err:  NewNormalizationError("No headers found"),
			want: "No headers found",
		},
		{
			name: "with cause",
			err:  NewLoadError("Error loading file", fmt.Errorf("record on line 3: wrong number of fields")),
			want: "Error loading file: record on line 3: wrong number of fields",
		},
		{
			name: "unsupported format",
			err:  NewUnsupportedFormatError(".txt"),
			want: "Unsupported file format: .txt. Use CSV or Excel files.",
		},
		{
			name: "missing table",
			err:  NewMissingTableError(),
			want: "No table available",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *PipelineError
	assert.Equal(t, "unknown pipeline error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestKindHelpers(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := fmt.Errorf("stage load: %w", NewLoadError("Error loading file", cause))

	assert.Equal(t, KindLoad, KindOf(wrapped))
	assert.True(t, IsLoadError(wrapped))
	assert.False(t, IsNormalizationError(wrapped))
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.True(t, stderrors.Is(wrapped, &PipelineError{Kind: KindLoad}))
	assert.False(t, stderrors.Is(wrapped, &PipelineError{Kind: KindNormalization}))

	assert.True(t, IsUnsupportedFormat(NewUnsupportedFormatError(".json")))
	assert.True(t, IsNormalizationError(NewNormalizationError("x")))
	assert.True(t, IsMissingTable(NewMissingTableError()))
	assert.Equal(t, Kind(""), KindOf(cause))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestWithStageCopies(t *testing.T) {
	orig := NewNormalizationError("mismatch")
	staged := orig.WithStage("normalize_headers")

	assert.Equal(t, "normalize_headers", staged.Stage)
	assert.Empty(t, orig.Stage)
	assert.Equal(t, orig.Message, staged.Message)
}
