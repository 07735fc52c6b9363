package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	apperrors "tabprofile/internal/errors"
	"tabprofile/internal/infrastructure"
	"tabprofile/internal/table"
	"tabprofile/internal/validation"
)

var (
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipSignature = []byte("PK\x03\x04")
)

// XLSLoader reads legacy BIFF workbooks through extrame/xls. Cells arrive as
// display strings, so column types come from string inference. A .xls file
// that is really an OOXML archive is handed to the excelize loader.
type XLSLoader struct {
	opts   Options
	ooxml  *ExcelLoader
	files  *validation.FileValidator
	logger *slog.Logger
}

// NewXLSLoader creates a legacy Excel loader
func NewXLSLoader(opts Options, logger *slog.Logger) *XLSLoader {
	if logger == nil {
		logger = infrastructure.WithComponent(nil, "loader")
	}
	return &XLSLoader{
		opts:   opts,
		ooxml:  NewExcelLoader(opts, logger),
		files:  validation.NewFileValidator(logger),
		logger: logger,
	}
}

// Load reads path into a table
func (l *XLSLoader) Load(ctx context.Context, path string) (*table.Table, error) {
	if err := l.files.ValidateInputFile(ctx, path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("Error loading file", err)
	}
	defer file.Close()

	magic := make([]byte, len(oleSignature))
	n, _ := io.ReadFull(file, magic)
	magic = magic[:n]
	if bytes.HasPrefix(magic, zipSignature) {
		l.logger.DebugContext(ctx, "xls_is_ooxml", slog.String("path", path))
		return l.ooxml.Load(ctx, path)
	}
	if !bytes.Equal(magic, oleSignature) {
		return nil, apperrors.NewLoadError("Error loading file",
			errors.New("unsupported workbook file format"))
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.NewLoadError("Error loading file", err)
	}

	sheet, rows, err := l.readSheet(file)
	if err != nil {
		return nil, apperrors.NewLoadError("Error loading file", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, apperrors.NewLoadError("Error loading file",
			fmt.Errorf("no columns to parse from sheet %q", sheet))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headers, data := sheetTable(rows, l.opts)

	l.logger.DebugContext(ctx, "sheet_parsed",
		slog.String("sheet", sheet),
		slog.String("format", "biff"),
		slog.Int("columns", len(headers)),
		slog.Int("rows", len(data)))

	tbl, err := buildTable(headers, data, l.opts, nil)
	if err != nil {
		return nil, apperrors.NewLoadError("Error loading file", err)
	}
	return tbl, nil
}

// readSheet parses the workbook and returns the selected sheet's rows. The
// BIFF reader panics on some malformed records; those come back as errors.
func (l *XLSLoader) readSheet(r io.ReadSeeker) (name string, rows [][]string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed workbook: %v", p)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return "", nil, err
	}
	if wb == nil {
		return "", nil, errors.New("workbook stream not found")
	}

	sheet, err := l.sheet(wb)
	if err != nil {
		return "", nil, err
	}
	return sheet.Name, sheetRows(sheet), nil
}

func (l *XLSLoader) sheet(wb *xls.WorkBook) (*xls.WorkSheet, error) {
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	if l.opts.Sheet == "" {
		return wb.GetSheet(0), nil
	}
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil && s.Name == l.opts.Sheet {
			return s, nil
		}
	}
	return nil, excelize.ErrSheetNotExist{SheetName: l.opts.Sheet}
}

// sheetRows returns every row up to the last non-empty one
func sheetRows(sheet *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		rows = append(rows, rowCells(sheet, i))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// rowCells returns a row's cells up to its last non-empty one. The reader
// dereferences nil for rows with no records; those read as empty.
func rowCells(sheet *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := sheet.Row(i)
	last := row.LastCol()
	for c := 0; c <= last || row.Col(c) != ""; c++ {
		cells = append(cells, row.Col(c))
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
