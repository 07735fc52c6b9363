// Package analytics computes per-column descriptive statistics for a loaded
// table.
//
// Integer and float columns get the numeric variant (min, max, mean, median,
// sample standard deviation and the 25th/75th percentiles); every other
// column gets the categorical variant (most common value and string length
// summary). Columns are independent, so Compute may fan them out across a
// bounded worker pool while keeping the result in column order.
//
// A failure inside one column never fails the run: non-finite results become
// nulls and a panic yields a placeholder entry carrying an Anomaly message.
package analytics
