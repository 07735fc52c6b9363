package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "tabprofile/internal/errors"
	"tabprofile/internal/infrastructure"
	"tabprofile/internal/table"
	"tabprofile/internal/validation"
)

// ExcelLoader reads OOXML workbooks through excelize. The configured sheet,
// or the first sheet in the workbook, is loaded with row 1 as the header row.
type ExcelLoader struct {
	opts   Options
	files  *validation.FileValidator
	logger *slog.Logger
}

// NewExcelLoader creates an Excel loader
func NewExcelLoader(opts Options, logger *slog.Logger) *ExcelLoader {
	if logger == nil {
		logger = infrastructure.WithComponent(nil, "loader")
	}
	return &ExcelLoader{opts: opts, files: validation.NewFileValidator(logger), logger: logger}
}

// Load reads path into a table
func (l *ExcelLoader) Load(ctx context.Context, path string) (*table.Table, error) {
	if err := l.files.ValidateInputFile(ctx, path); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewLoadError("Error loading file", err)
	}
	defer f.Close()

	sheet, err := l.sheetName(f)
	if err != nil {
		return nil, apperrors.NewLoadError("Error loading file", err)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
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
	hints := l.columnHints(f, sheet, len(headers), data)

	l.logger.DebugContext(ctx, "sheet_parsed",
		slog.String("sheet", sheet),
		slog.Int("columns", len(headers)),
		slog.Int("rows", len(data)))

	tbl, err := buildTable(headers, data, l.opts, hints)
	if err != nil {
		return nil, apperrors.NewLoadError("Error loading file", err)
	}
	return tbl, nil
}

func (l *ExcelLoader) sheetName(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if l.opts.Sheet == "" {
		if len(sheets) == 0 {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == l.opts.Sheet {
			return s, nil
		}
	}
	return "", excelize.ErrSheetNotExist{SheetName: l.opts.Sheet}
}

// columnHints inspects the first non-null data cell of every column. Boolean
// cells and cells with a date number format decide the column type before
// string inference.
func (l *ExcelLoader) columnHints(f *excelize.File, sheet string, width int, data [][]string) []columnHint {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	nulls := l.opts.nullSet()
	hints := make([]columnHint, width)
	for col := 0; col < width; col++ {
		hints[col].date1904 = date1904
		for r, row := range data {
			if col >= len(row) {
				continue
			}
			if _, isNull := nulls[l.opts.cell(row[col])]; isNull {
				continue
			}
			// data rows start at spreadsheet row 2
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				break
			}
			typ, err := f.GetCellType(sheet, cell)
			switch {
			case err != nil:
			case typ == excelize.CellTypeBool:
				hints[col].boolean = true
			case typ == excelize.CellTypeDate:
				hints[col].date = true
			default:
				hints[col].date = l.isDateCell(f, sheet, cell)
			}
			break
		}
	}
	return hints
}

func (l *ExcelLoader) isDateCell(f *excelize.File, sheet, cell string) bool {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	return builtInDateFormat(style.NumFmt)
}

// excelSerialToTime converts a serial date, falling back to the 1900 epoch
// arithmetic when excelize rejects the value.
func excelSerialToTime(serial float64, date1904 bool) time.Time {
	if ts, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
		return ts
	}
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	return epoch.Add(time.Duration(serial * float64(24*time.Hour)))
}
