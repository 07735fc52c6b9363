package operations

import (
	"context"
	"fmt"

	"tabprofile/internal/analytics"
	"tabprofile/internal/dataprocessing"
	"tabprofile/internal/headers"
)

// Step IDs
const (
	StepIDLoad              = "load_file"
	StepIDExtractHeaders    = "extract_headers"
	StepIDNormalizeHeaders  = "normalize_headers"
	StepIDComputeStatistics = "compute_statistics"
)

// formatResolver is satisfied by loaders that dispatch on file extension
type formatResolver interface {
	Resolve(path string) (dataprocessing.Loader, error)
}

// LoadStep reads the file into a table
type LoadStep struct {
	BaseStep
	loader dataprocessing.Loader
}

// NewLoadStep creates the load step
func NewLoadStep(loader dataprocessing.Loader) *LoadStep {
	return &LoadStep{
		BaseStep: NewBaseStep(StepIDLoad, "Load File", StateLoaded),
		loader:   loader,
	}
}

// Preflight rejects unsupported formats before the run starts
func (s *LoadStep) Preflight(path string) error {
	if r, ok := s.loader.(formatResolver); ok {
		_, err := r.Resolve(path)
		return err
	}
	return nil
}

// Execute loads rec.FilePath
func (s *LoadStep) Execute(ctx context.Context, rec Record) (Update, error) {
	if s.loader == nil {
		return Update{}, fmt.Errorf("no loader configured")
	}
	tbl, err := s.loader.Load(ctx, rec.FilePath)
	if err != nil {
		return Update{}, err
	}
	return Update{Table: tbl}, nil
}

// ExtractHeadersStep lists the loaded column names
type ExtractHeadersStep struct {
	BaseStep
}

// NewExtractHeadersStep creates the header extraction step
func NewExtractHeadersStep() *ExtractHeadersStep {
	return &ExtractHeadersStep{
		BaseStep: NewBaseStep(StepIDExtractHeaders, "Extract Headers", StateHeadersExtracted),
	}
}

// Execute extracts headers from rec.Table
func (s *ExtractHeadersStep) Execute(ctx context.Context, rec Record) (Update, error) {
	hdrs, err := headers.Extract(rec.Table)
	if err != nil {
		return Update{}, err
	}
	return Update{OriginalHeaders: hdrs}, nil
}

// NormalizeHeadersStep maps headers to canonical names and renames the table
type NormalizeHeadersStep struct {
	BaseStep
}

// NewNormalizeHeadersStep creates the header normalization step
func NewNormalizeHeadersStep() *NormalizeHeadersStep {
	return &NormalizeHeadersStep{
		BaseStep: NewBaseStep(StepIDNormalizeHeaders, "Normalize Headers", StateHeadersNormalized),
	}
}

// Execute normalizes rec.OriginalHeaders
func (s *NormalizeHeadersStep) Execute(ctx context.Context, rec Record) (Update, error) {
	mapping, renamed, err := headers.Normalize(rec.Table, rec.OriginalHeaders)
	if err != nil {
		return Update{}, err
	}
	return Update{HeaderMapping: mapping, Table: renamed}, nil
}

// ComputeStatisticsStep profiles every column of the renamed table
type ComputeStatisticsStep struct {
	BaseStep
	opts analytics.Options
}

// NewComputeStatisticsStep creates the statistics step
func NewComputeStatisticsStep(opts analytics.Options) *ComputeStatisticsStep {
	return &ComputeStatisticsStep{
		BaseStep: NewBaseStep(StepIDComputeStatistics, "Compute Statistics", StateDone),
		opts:     opts,
	}
}

// Execute computes statistics for rec.Table
func (s *ComputeStatisticsStep) Execute(ctx context.Context, rec Record) (Update, error) {
	stats, err := analytics.Compute(ctx, rec.Table, s.opts)
	if err != nil {
		return Update{}, err
	}
	return Update{Statistics: stats}, nil
}

// NewDefaultRegistry registers the four profiling steps in order
func NewDefaultRegistry(loader dataprocessing.Loader, statsOpts analytics.Options) (*Registry, error) {
	registry := NewRegistry()
	steps := []Step{
		NewLoadStep(loader),
		NewExtractHeadersStep(),
		NewNormalizeHeadersStep(),
		NewComputeStatisticsStep(statsOpts),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
