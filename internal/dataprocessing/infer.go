package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"tabprofile/internal/table"
)

// columnHint carries type information known before string inference runs,
// typically from spreadsheet cell types and number formats.
type columnHint struct {
	boolean  bool
	date     bool
	date1904 bool
}

// convertColumn decides a column's type and converts its non-null raw cells.
// Priority follows the narrowest type every value satisfies:
// integer, boolean, float, then text. A column with no non-null values is text.
func convertColumn(raw []*string, hint columnHint) (table.DType, []any) {
	values := make([]any, len(raw))

	switch {
	case hint.date:
		if ok := convertAll(raw, values, func(s string) (any, bool) {
			return parseExcelDate(s, hint.date1904)
		}); ok {
			return table.DTypeOther, values
		}
	case hint.boolean:
		if ok := convertAll(raw, values, parseExcelBool); ok {
			return table.DTypeBoolean, values
		}
	}

	if !hasValue(raw) {
		return table.DTypeText, values
	}
	if convertAll(raw, values, parseInt) {
		return table.DTypeInteger, values
	}
	if convertAll(raw, values, parseBool) {
		return table.DTypeBoolean, values
	}
	if convertAll(raw, values, parseFloat) {
		return table.DTypeFloat, values
	}
	for i, v := range raw {
		if v == nil {
			values[i] = nil
			continue
		}
		values[i] = *v
	}
	return table.DTypeText, values
}

// convertAll fills values using parse and reports whether every non-null cell
// parsed.
func convertAll(raw []*string, values []any, parse func(string) (any, bool)) bool {
	for i, v := range raw {
		if v == nil {
			values[i] = nil
			continue
		}
		parsed, ok := parse(*v)
		if !ok {
			return false
		}
		values[i] = parsed
	}
	return true
}

func hasValue(raw []*string) bool {
	for _, v := range raw {
		if v != nil {
			return true
		}
	}
	return false
}

func parseInt(s string) (any, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

func parseFloat(s string) (any, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func parseBool(s string) (any, bool) {
	switch s {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return nil, false
}

// parseExcelBool accepts the raw 1/0 stored in boolean cells as well as the
// displayed TRUE/FALSE.
func parseExcelBool(s string) (any, bool) {
	switch s {
	case "1":
		return true, true
	case "0":
		return false, true
	}
	return parseBool(s)
}

// isoLayouts cover the ISO 8601 forms stored in date-typed cells
var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseExcelDate(s string, date1904 bool) (any, bool) {
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		for _, layout := range isoLayouts {
			if ts, terr := time.Parse(layout, s); terr == nil {
				return ts, true
			}
		}
		return nil, false
	}
	return excelSerialToTime(serial, date1904), true
}

// isDateFormat reports whether a custom number format renders dates or times.
// Quoted literals and bracketed sections are ignored so "[Red]0.00" or
// "0.0\" days\"" stay numeric.
func isDateFormat(format string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range format {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	stripped := strings.ToLower(b.String())
	return strings.ContainsAny(stripped, "ymdhs")
}

// builtInDateFormat reports whether a built-in number format id is a date or
// time format.
func builtInDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}
