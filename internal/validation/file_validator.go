package validation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "tabprofile/internal/errors"
)

// FileValidator checks input and output paths before they are read or written
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path names an existing, readable regular
// file. Failures are LoadErrors carrying the user-facing message.
func (v *FileValidator) ValidateInputFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.DebugContext(ctx, "input_missing", slog.String("file", path))
		return apperrors.NewLoadError(fmt.Sprintf("File not found: %s", path), nil)
	}
	if err != nil {
		v.logger.DebugContext(ctx, "input_stat_failed",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewLoadError("Error loading file", err)
	}
	if info.IsDir() {
		return apperrors.NewLoadError(fmt.Sprintf("Error loading file: %s is a directory", path), nil)
	}
	if IsTemporaryFile(path) {
		return apperrors.NewLoadError(fmt.Sprintf("Error loading file: %s is a temporary Excel file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewLoadError("Error loading file", err)
	}
	file.Close()

	v.logger.DebugContext(ctx, "input_validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	file, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := file.Name()
	file.Close()
	os.Remove(name)

	return nil
}

// IsTemporaryFile reports whether path is an Office lock file such as ~$book.xlsx
func IsTemporaryFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}
