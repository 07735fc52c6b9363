package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a float64 value for display with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatOptional formats a nullable statistic for display, N/A when null
func formatOptional(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return formatFloat(*f)
}

// formatExact formats a nullable statistic for machine-readable output,
// keeping full precision; null becomes an empty cell
func formatExact(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
