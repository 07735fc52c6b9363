package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"tabprofile/internal/operations"
)

// Shape is the row and column count of the profiled table
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type recordJSON struct {
	Shape *Shape `json:"shape,omitempty"`
	*operations.Record
}

// ShapeOf returns the table shape, or nil when nothing was loaded
func ShapeOf(rec *operations.Record) *Shape {
	if rec == nil || rec.Table == nil {
		return nil
	}
	return &Shape{Rows: rec.Table.NumRows(), Columns: rec.Table.NumColumns()}
}

// WriteJSON writes the record as indented JSON
func WriteJSON(w io.Writer, rec *operations.Record) error {
	if rec == nil {
		return fmt.Errorf("no record to export")
	}
	data, err := json.MarshalIndent(recordJSON{Shape: ShapeOf(rec), Record: rec}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
