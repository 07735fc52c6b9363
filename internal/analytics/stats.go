package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	apperrors "tabprofile/internal/errors"
	"tabprofile/internal/infrastructure"
	"tabprofile/internal/table"
)

// Options controls how Compute schedules column work
type Options struct {
	// Workers bounds concurrent column computations; values below 1 run
	// columns one at a time.
	Workers int
	Logger  *slog.Logger
}

// Compute returns the statistics of every column keyed by column name, in
// column order. It only fails when t is nil or ctx is cancelled; column-level
// problems are folded into the affected entry.
func Compute(ctx context.Context, t *table.Table, opts Options) (*orderedmap.OrderedMap[string, ColumnStats], error) {
	if t == nil {
		return nil, apperrors.NewMissingTableError()
	}
	logger := infrastructure.WithComponent(opts.Logger, "analytics")

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]ColumnStats, len(t.Columns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, col := range t.Columns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = describeSafe(gctx, col, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := orderedmap.New[string, ColumnStats](len(results))
	for i, col := range t.Columns {
		out.Set(col.Name, results[i])
	}
	return out, nil
}

// describeSafe contains a panic to the column that raised it
func describeSafe(ctx context.Context, col table.Column, logger *slog.Logger) (stats ColumnStats) {
	defer func() {
		if r := recover(); r != nil {
			stats = placeholder(col, fmt.Sprintf("statistics failed: %v", r))
			logger.WarnContext(ctx, "column_anomaly",
				slog.String("column", col.Name),
				slog.String("anomaly", stats.Anomaly))
		}
	}()
	return Describe(col)
}

// placeholder keeps the common counts, which cannot fail
func placeholder(col table.Column, anomaly string) ColumnStats {
	count := 0
	for _, v := range col.Values {
		if v != nil {
			count++
		}
	}
	kind := KindCategorical
	if col.DType.IsNumeric() {
		kind = KindNumeric
	}
	return ColumnStats{
		Kind:      kind,
		DType:     col.DType,
		Count:     count,
		NullCount: col.Len() - count,
		Anomaly:   anomaly,
	}
}

// Describe computes the statistic set for a single column
func Describe(col table.Column) ColumnStats {
	nonNull := make([]any, 0, len(col.Values))
	unique := make(map[any]struct{})
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		nonNull = append(nonNull, v)
		unique[v] = struct{}{}
	}

	stats := ColumnStats{
		DType:       col.DType,
		Count:       len(nonNull),
		NullCount:   col.Len() - len(nonNull),
		UniqueCount: len(unique),
	}

	if col.DType.IsNumeric() {
		stats.Kind = KindNumeric
		stats.Numeric = describeNumeric(toFloats(nonNull))
		return stats
	}
	stats.Kind = KindCategorical
	stats.Categorical = describeCategorical(nonNull)
	return stats
}

func toFloats(values []any) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		switch n := v.(type) {
		case int64:
			out = append(out, float64(n))
		case int:
			out = append(out, float64(n))
		case float64:
			out = append(out, n)
		default:
			panic(fmt.Sprintf("non-numeric value %T in numeric column", v))
		}
	}
	return out
}

// describeNumeric summarizes the non-null values of a numeric column
//
// Parameters:
//   - values: non-null values, any order
//
// Returns: every field nil when values is empty; Std nil below two values
func describeNumeric(values []float64) *NumericStats {
	out := &NumericStats{}
	if len(values) == 0 {
		return out
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	out.Min = finite(sorted[0])
	out.Max = finite(sorted[len(sorted)-1])
	out.Mean = finite(mean)
	out.Median = finite(Quantile(sorted, 0.5))
	out.Q25 = finite(Quantile(sorted, 0.25))
	out.Q75 = finite(Quantile(sorted, 0.75))
	if len(sorted) > 1 {
		out.Std = finite(std)
	}
	return out
}

// Quantile returns the p-quantile of ascending values using linear
// interpolation between the closest ranks at position p*(n-1).
//
// Parameters:
//   - sorted: values in ascending order, at least one
//   - p: quantile in [0, 1]
//
// Returns: the interpolated value
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func describeCategorical(values []any) *CategoricalStats {
	out := &CategoricalStats{}
	if len(values) == 0 {
		return out
	}

	counts := make(map[any]int, len(values))
	var order []any
	totalLen := 0
	out.MinLength = math.MaxInt
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++

		n := utf8.RuneCountInString(table.FormatValue(v))
		totalLen += n
		out.MinLength = min(out.MinLength, n)
		out.MaxLength = max(out.MaxLength, n)
	}

	// ties go to the value seen first
	var best any
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	mostCommon := table.FormatValue(best)
	out.MostCommon = &mostCommon
	out.AvgLength = float64(totalLen) / float64(len(values))
	return out
}
