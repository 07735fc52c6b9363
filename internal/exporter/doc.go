// Package exporter renders a finished profiling record.
//
// This package contains three outputs:
//
// WriteText: the human-readable report with headers, the header mapping and
// per-column statistics, or the error when the run failed.
//
// WriteJSON: the record as indented JSON. Header mapping and statistics keep
// their original order.
//
// StatisticsExporter: one CSV row per column, written through CSVWriter with a
// UTF-8 BOM for Excel compatibility.
//
// Example usage:
//
//	rec := pipeline.Run(ctx, path)
//	exporter.WriteText(os.Stdout, rec)
//
//	stats := exporter.NewStatisticsExporter(exporter.NewCSVWriter("", logger))
//	err := stats.Export(rec, "reports/profile.csv")
package exporter
