package operations_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"tabprofile/internal/analytics"
	"tabprofile/internal/dataprocessing"
	"tabprofile/internal/operations"
	"tabprofile/internal/shared/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	return testutil.WriteFile(t, name, content)
}

func defaultPipeline(t *testing.T, tracer *operations.Tracer) *operations.Pipeline {
	t.Helper()
	loaders := dataprocessing.NewRegistry(dataprocessing.DefaultOptions(), quietLogger())
	registry, err := operations.NewDefaultRegistry(loaders, analytics.Options{Workers: 2, Logger: quietLogger()})
	require.NoError(t, err)
	return operations.NewPipeline(registry, tracer, quietLogger())
}

// fakeStep is a configurable step for controller tests
type fakeStep struct {
	operations.BaseStep
	calls  int
	err    error
	update operations.Update
	seen   operations.Record
	mutate bool
}

func newFakeStep(id string, target operations.State) *fakeStep {
	return &fakeStep{BaseStep: operations.NewBaseStep(id, "Fake "+id, target)}
}

func (s *fakeStep) Execute(ctx context.Context, rec operations.Record) (operations.Update, error) {
	s.calls++
	s.seen = rec
	if s.mutate {
		rec.Error = "tampered"
		rec.State = operations.StateDone
	}
	return s.update, s.err
}

// preflightStep rejects every path
type preflightStep struct {
	*fakeStep
	err error
}

func (s *preflightStep) Preflight(path string) error {
	return s.err
}

func analyticsOptions() analytics.Options {
	return analytics.Options{Workers: 1, Logger: quietLogger()}
}
