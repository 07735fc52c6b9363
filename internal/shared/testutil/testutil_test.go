package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBufferedSlogHandlerKeepsDerivedAttrs(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.With("component", "pipeline").Info("stage_completed", slog.String("step", "load_file"))
	logger.Error("stage_failed")

	require.Equal(t, 2, handler.Count())
	assert.Equal(t, []string{"stage_completed", "stage_failed"}, handler.Messages())
	AssertLogAttr(t, handler, "component", "pipeline")
	AssertLogAttr(t, handler, "step", "load_file")
	AssertLogContains(t, handler, slog.LevelError, "stage_failed")
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
	assert.False(t, handler.ContainsMessage("pipeline_completed"))

	handler.Clear()
	assert.Zero(t, handler.Count())
	AssertNoErrors(t, handler)
}

func TestWriteSheet(t *testing.T) {
	path := WriteSheet(t, "book.xlsx", [][]any{
		{"name", "score"},
		{"ann", 3},
	})

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "score"}, {"ann", "3"}}, rows)
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "a.csv", "x\n1\n")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(content))
}
