// Package table holds the in-memory representation of a loaded tabular file:
// an ordered list of named columns, each carrying its inferred element type and
// its row values (nil marks a null cell).
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DType is the elemental type inferred for a column by the loader
type DType string

const (
	DTypeInteger DType = "integer"
	DTypeFloat   DType = "float"
	DTypeBoolean DType = "boolean"
	DTypeText    DType = "text"
	DTypeOther   DType = "other"
)

// IsNumeric reports whether statistics for the type use the numeric variant
func (d DType) IsNumeric() bool {
	return d == DTypeInteger || d == DTypeFloat
}

// Column is a named, typed sequence of values. Values are int64, float64,
// bool, string, time.Time or nil.
type Column struct {
	Name   string `json:"name"`
	DType  DType  `json:"dtype"`
	Values []any  `json:"-"`
}

// Len returns the number of rows in the column
func (c Column) Len() int {
	return len(c.Values)
}

// Table is an ordered collection of columns aligned by row index
type Table struct {
	Columns []Column `json:"columns"`
}

// New builds a table from columns, rejecting ragged input
func New(columns ...Column) (*Table, error) {
	if len(columns) > 0 {
		rows := columns[0].Len()
		for _, c := range columns[1:] {
			if c.Len() != rows {
				return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), rows)
			}
		}
	}
	return &Table{Columns: columns}, nil
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumRows returns the row count, 0 for a table without columns
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumColumns returns the column count
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Column looks a column up by name
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Renamed returns a copy of the table whose column names are replaced by
// names, position for position. Value slices are shared with the receiver,
// which is left untouched.
func (t *Table) Renamed(names []string) (*Table, error) {
	if len(names) != len(t.Columns) {
		return nil, fmt.Errorf("got %d names for %d columns", len(names), len(t.Columns))
	}
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = Column{Name: names[i], DType: c.DType, Values: c.Values}
	}
	return &Table{Columns: cols}, nil
}

// FormatValue renders a cell the way it is measured and displayed: integers
// in base 10, floats in their shortest round-trip form, booleans as
// True/False, times in RFC 3339.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
