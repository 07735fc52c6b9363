package exporter

import (
	"fmt"

	"tabprofile/internal/analytics"
	"tabprofile/internal/operations"
)

// StatisticsHeaders are the columns of the statistics CSV
var StatisticsHeaders = []string{
	"column", "original_header", "kind", "dtype",
	"count", "null_count", "unique_count",
	"min", "max", "mean", "median", "std", "q25", "q75",
	"most_common", "min_length", "max_length", "avg_length",
	"anomaly",
}

// StatisticsExporter writes per-column statistics as CSV
type StatisticsExporter struct {
	writer *CSVWriter
}

// NewStatisticsExporter creates a statistics exporter
func NewStatisticsExporter(writer *CSVWriter) *StatisticsExporter {
	return &StatisticsExporter{writer: writer}
}

// Export writes one row per profiled column to path. A failed record has no
// statistics to write and is rejected.
func (e *StatisticsExporter) Export(rec *operations.Record, path string) error {
	if rec == nil {
		return fmt.Errorf("no record to export")
	}
	if rec.Failed() {
		return fmt.Errorf("cannot export statistics of a failed run: %s", rec.Error)
	}
	return e.writer.WriteSimpleCSV(path, StatisticsHeaders, StatisticsRows(rec))
}

// StatisticsRows flattens the record's statistics in column order
func StatisticsRows(rec *operations.Record) [][]string {
	if rec == nil || rec.Statistics == nil {
		return nil
	}
	rows := make([][]string, 0, rec.Statistics.Len())
	i := 0
	for p := rec.Statistics.Oldest(); p != nil; p = p.Next() {
		original := ""
		if rec.Statistics.Len() == len(rec.OriginalHeaders) {
			original = rec.OriginalHeaders[i]
		}
		rows = append(rows, statisticsRow(p.Key, original, p.Value))
		i++
	}
	return rows
}

func statisticsRow(column, original string, s analytics.ColumnStats) []string {
	row := []string{
		column, original, string(s.Kind), string(s.DType),
		formatInt(s.Count), formatInt(s.NullCount), formatInt(s.UniqueCount),
	}

	numeric := make([]string, 7)
	if n := s.Numeric; n != nil {
		numeric = []string{
			formatExact(n.Min), formatExact(n.Max), formatExact(n.Mean),
			formatExact(n.Median), formatExact(n.Std), formatExact(n.Q25), formatExact(n.Q75),
		}
	}
	row = append(row, numeric...)

	categorical := make([]string, 4)
	if c := s.Categorical; c != nil {
		avg := c.AvgLength
		categorical = []string{
			formatString(c.MostCommon), formatInt(c.MinLength), formatInt(c.MaxLength), formatExact(&avg),
		}
	}
	row = append(row, categorical...)

	return append(row, s.Anomaly)
}
