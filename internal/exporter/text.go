package exporter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tabprofile/internal/analytics"
	"tabprofile/internal/operations"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// WriteText writes the human-readable report
func WriteText(w io.Writer, rec *operations.Record) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\n%s\nPROFILE RESULTS\n%s\n", heavyRule, heavyRule)

	if rec == nil {
		fmt.Fprintf(bw, "\nERROR: no result\n")
		return bw.Flush()
	}
	if rec.Failed() {
		fmt.Fprintf(bw, "\nERROR: %s\n", rec.Error)
		return bw.Flush()
	}

	fmt.Fprintf(bw, "\nFile: %s\n", rec.FilePath)
	if shape := ShapeOf(rec); shape != nil {
		fmt.Fprintf(bw, "Shape: (%d, %d)\n", shape.Rows, shape.Columns)
	} else {
		fmt.Fprintf(bw, "Shape: N/A\n")
	}

	section(bw, "ORIGINAL HEADERS:")
	for _, h := range rec.OriginalHeaders {
		fmt.Fprintf(bw, "  * %s\n", h)
	}

	section(bw, "NORMALIZED HEADERS MAPPING:")
	if rec.HeaderMapping != nil {
		for p := rec.HeaderMapping.Oldest(); p != nil; p = p.Next() {
			fmt.Fprintf(bw, "  %-30s -> %s\n", p.Key, p.Value)
		}
	}

	section(bw, "COLUMN STATISTICS:")
	if rec.Statistics != nil {
		for p := rec.Statistics.Oldest(); p != nil; p = p.Next() {
			writeColumn(bw, p.Key, p.Value)
		}
	}

	fmt.Fprintf(bw, "\n%s\n", heavyRule)
	return bw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", lightRule, title, lightRule)
}

func writeColumn(w io.Writer, name string, s analytics.ColumnStats) {
	fmt.Fprintf(w, "\n%s\n", name)
	fmt.Fprintf(w, "   Type: %s\n", s.DType)
	fmt.Fprintf(w, "   Count: %d | Null: %d | Unique: %d\n", s.Count, s.NullCount, s.UniqueCount)

	switch {
	case s.Anomaly != "":
		fmt.Fprintf(w, "   Anomaly: %s\n", s.Anomaly)
	case s.Numeric != nil:
		n := s.Numeric
		fmt.Fprintf(w, "   Min: %s | Max: %s\n", formatOptional(n.Min), formatOptional(n.Max))
		fmt.Fprintf(w, "   Mean: %s | Median: %s\n", formatOptional(n.Mean), formatOptional(n.Median))
		fmt.Fprintf(w, "   Std: %s\n", formatOptional(n.Std))
		fmt.Fprintf(w, "   Q25: %s | Q75: %s\n", formatOptional(n.Q25), formatOptional(n.Q75))
	case s.Categorical != nil && s.Categorical.MostCommon != nil:
		c := s.Categorical
		fmt.Fprintf(w, "   Most Common: %s\n", *c.MostCommon)
		fmt.Fprintf(w, "   Length Range: %d - %d (avg: %.1f)\n", c.MinLength, c.MaxLength, c.AvgLength)
	}
}
