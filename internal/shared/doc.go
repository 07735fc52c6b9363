// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler for asserting on
// structured log events, and fixture writers for CSV files and workbooks.
package shared
