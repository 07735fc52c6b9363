package validation

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tabprofile/internal/errors"
)

func quietValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))
}

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "readable csv",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.WriteFile(file, []byte("a,b\n1,2\n"), 0644))
				return file
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.csv")
			},
			wantErr:       true,
			errorContains: "File not found: ",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "office lock file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$book.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupFunc(t)
			err := quietValidator().ValidateInputFile(context.Background(), path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsLoadError(err))
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := quietValidator()

	nested := filepath.Join(t.TempDir(), "out", "reports")
	require.NoError(t, v.ValidateOutputDirectory(nested))
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(nested)
	require.NoError(t, err)
	assert.Empty(t, entries, "write test file is removed")

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(file, "sub")))
}

func TestIsTemporaryFile(t *testing.T) {
	assert.True(t, IsTemporaryFile("/tmp/~$report.xlsx"))
	assert.False(t, IsTemporaryFile("/tmp/report.xlsx"))
	assert.False(t, IsTemporaryFile("a~$b.csv"))
}
