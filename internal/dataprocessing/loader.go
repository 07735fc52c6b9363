package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"tabprofile/internal/config"
	apperrors "tabprofile/internal/errors"
	"tabprofile/internal/infrastructure"
	"tabprofile/internal/table"
)

// Loader reads one file into a table
type Loader interface {
	Load(ctx context.Context, path string) (*table.Table, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context, path string) (*table.Table, error)

// Load calls f
func (f LoaderFunc) Load(ctx context.Context, path string) (*table.Table, error) {
	return f(ctx, path)
}

// Options configures parsing for all loaders
type Options struct {
	Delimiter  rune
	Sheet      string
	NullValues []string
	TrimSpace  bool
	LazyQuotes bool
}

// DefaultNullValues are the cell contents read as null
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultOptions returns comma-delimited, space-trimming options
func DefaultOptions() Options {
	return Options{
		Delimiter:  ',',
		NullValues: DefaultNullValues,
		TrimSpace:  true,
	}
}

// OptionsFromConfig maps the loader section of the application config
func OptionsFromConfig(cfg config.LoaderConfig) Options {
	opts := Options{
		Delimiter:  cfg.DelimiterRune(),
		Sheet:      cfg.Sheet,
		NullValues: cfg.NullValues,
		TrimSpace:  cfg.TrimSpace,
		LazyQuotes: cfg.LazyQuotes,
	}
	if len(opts.NullValues) == 0 {
		opts.NullValues = DefaultNullValues
	}
	return opts
}

// nullSet builds the lookup used to detect null cells. The empty string is
// always null.
func (o Options) nullSet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.NullValues)+1)
	set[""] = struct{}{}
	for _, v := range o.NullValues {
		set[v] = struct{}{}
	}
	return set
}

// cell applies the TrimSpace option to one raw cell
func (o Options) cell(v string) string {
	if o.TrimSpace {
		return strings.TrimSpace(v)
	}
	return v
}

// Registry maps lowercase file extensions to loaders
type Registry struct {
	loaders map[string]Loader
	logger  *slog.Logger
}

// NewRegistry creates a registry with the CSV and Excel loaders registered
func NewRegistry(opts Options, logger *slog.Logger) *Registry {
	logger = infrastructure.WithComponent(logger, "loader")
	r := &Registry{
		loaders: make(map[string]Loader),
		logger:  logger,
	}
	r.Register(".csv", NewCSVLoader(opts, logger))
	r.Register(".xlsx", NewExcelLoader(opts, logger))
	r.Register(".xls", NewXLSLoader(opts, logger))
	return r
}

// Register adds or replaces the loader for an extension
func (r *Registry) Register(ext string, l Loader) {
	r.loaders[strings.ToLower(ext)] = l
}

// Extensions returns the registered extensions, sorted
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Resolve returns the loader for path's extension or an
// UnsupportedFormatError.
func (r *Registry) Resolve(path string) (Loader, error) {
	ext := filepath.Ext(path)
	l, ok := r.loaders[strings.ToLower(ext)]
	if !ok {
		return nil, apperrors.NewUnsupportedFormatError(ext)
	}
	return l, nil
}

// Load resolves and runs the loader for path
func (r *Registry) Load(ctx context.Context, path string) (*table.Table, error) {
	l, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}
	tbl, err := l.Load(ctx, path)
	if err != nil {
		infrastructure.WithError(r.logger, err).WarnContext(ctx, "load_failed",
			slog.String("path", path))
		return nil, err
	}
	r.logger.InfoContext(ctx, "table_loaded",
		slog.String("path", path),
		slog.Int("rows", tbl.NumRows()),
		slog.Int("columns", tbl.NumColumns()))
	return tbl, nil
}

// buildTable converts a header row and raw string rows into a typed table.
// Short rows are padded with nulls. hints may carry a per-column type decided
// from spreadsheet metadata; nil entries fall back to string inference.
func buildTable(headers []string, rows [][]string, opts Options, hints []columnHint) (*table.Table, error) {
	nulls := opts.nullSet()
	cols := make([]table.Column, len(headers))
	for i, name := range headers {
		raw := make([]*string, len(rows))
		for r, row := range rows {
			if i >= len(row) {
				continue
			}
			v := opts.cell(row[i])
			if _, isNull := nulls[v]; isNull {
				continue
			}
			raw[r] = &v
		}

		var hint columnHint
		if i < len(hints) {
			hint = hints[i]
		}
		dtype, values := convertColumn(raw, hint)
		cols[i] = table.Column{Name: name, DType: dtype, Values: values}
	}
	return table.New(cols...)
}

// sheetTable splits spreadsheet rows into the header row and data rows. A
// non-null data cell past the header row's width widens it with blank names,
// which the normalizer turns into positional column_<i> names.
func sheetTable(rows [][]string, opts Options) ([]string, [][]string) {
	data := rows[1:]
	nulls := opts.nullSet()

	width := len(rows[0])
	for _, row := range data {
		for i := len(row) - 1; i >= width; i-- {
			if _, isNull := nulls[opts.cell(row[i])]; !isNull {
				width = i + 1
				break
			}
		}
	}

	headers := make([]string, width)
	for i, h := range rows[0] {
		headers[i] = opts.cell(h)
	}
	return headers, data
}
