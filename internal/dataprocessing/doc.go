// Package dataprocessing loads tabular files into a table.Table.
//
// Loaders are selected by file extension through a Registry: ".csv" is read
// with encoding/csv, ".xlsx" with excelize and legacy ".xls" with a BIFF
// reader. Every loader infers one
// element type per column (integer, float, boolean, text or other) and turns
// NA tokens into nulls, so later stages never re-inspect raw strings.
//
// Basic usage:
//
//	reg := dataprocessing.NewRegistry(dataprocessing.DefaultOptions(), logger)
//	tbl, err := reg.Load(ctx, "employees.csv")
//	if err != nil {
//	    // errors.IsLoadError(err) or errors.IsUnsupportedFormat(err)
//	}
package dataprocessing
