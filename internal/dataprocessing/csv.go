package dataprocessing

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "tabprofile/internal/errors"
	"tabprofile/internal/infrastructure"
	"tabprofile/internal/table"
	"tabprofile/internal/validation"
)

const utf8BOM = "\ufeff"

// CSVLoader reads delimited text files. The first record is the header row.
type CSVLoader struct {
	opts   Options
	files  *validation.FileValidator
	logger *slog.Logger
}

// NewCSVLoader creates a CSV loader
func NewCSVLoader(opts Options, logger *slog.Logger) *CSVLoader {
	if logger == nil {
		logger = infrastructure.WithComponent(nil, "loader")
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &CSVLoader{opts: opts, files: validation.NewFileValidator(logger), logger: logger}
}

// Load reads path into a table
func (l *CSVLoader) Load(ctx context.Context, path string) (*table.Table, error) {
	if err := l.files.ValidateInputFile(ctx, path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("Error loading file", err)
	}
	defer file.Close()

	tbl, err := l.read(ctx, bufio.NewReader(file))
	if err != nil {
		var perr *apperrors.PipelineError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, apperrors.NewLoadError("Error loading file", err)
	}
	return tbl, nil
}

func (l *CSVLoader) read(ctx context.Context, r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.opts.Delimiter
	reader.LazyQuotes = l.opts.LazyQuotes
	// row width is checked below so short rows can be padded
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewLoadError("Error loading file", errors.New("no columns to parse from file"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	for i := range headers {
		headers[i] = l.opts.cell(headers[i])
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(record) > len(headers) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(headers), len(record))
		}
		rows = append(rows, record)
	}

	l.logger.DebugContext(ctx, "csv_parsed",
		slog.Int("columns", len(headers)),
		slog.Int("rows", len(rows)))

	return buildTable(headers, rows, l.opts, nil)
}
