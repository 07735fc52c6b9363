// Package operations runs the profiling pipeline over one file.
//
// The pipeline is a fixed, ordered list of steps sharing a Record:
//
//	load_file -> extract_headers -> normalize_headers -> compute_statistics
//
// Core Components:
//
// Pipeline: a plain sequencing loop. Before each step it checks the record's
// Error; once set, every remaining step is marked skipped and the record
// passes through unchanged. The final record is always in state DONE.
//
// Step: a single unit of work. A step receives a copy of the record, treats
// it as read-only, and returns an Update holding only the fields it produces.
// The pipeline merges the update or, on error, sets Error.
//
// Registry: keeps steps in registration order; that order is the execution
// order and the input to Mermaid.
//
// Tracer: wraps spans and metrics around runs and steps. A nil Tracer is
// valid and records nothing.
//
// Example usage:
//
//	loaders := dataprocessing.NewRegistry(dataprocessing.DefaultOptions(), logger)
//	registry, err := operations.NewDefaultRegistry(loaders, analytics.Options{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	pipeline := operations.NewPipeline(registry, tracer, logger)
//	rec := pipeline.Run(ctx, "employees.csv")
//	if rec.Failed() {
//	    fmt.Println(rec.Error)
//	}
package operations
