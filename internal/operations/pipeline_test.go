package operations_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"tabprofile/internal/analytics"
	apperrors "tabprofile/internal/errors"
	"tabprofile/internal/infrastructure"
	"tabprofile/internal/operations"
	"tabprofile/internal/shared/testutil"
)

func stepStatuses(rec *operations.Record) []operations.StepStatus {
	out := make([]operations.StepStatus, len(rec.Steps))
	for i, s := range rec.Steps {
		out[i] = s.GetStatus()
	}
	return out
}

func TestPipelineEndToEnd(t *testing.T) {
	path := writeCSV(t, "employees.csv", "Employee ID,First Name\n1,Ann\n2,\n3,Cy\n")

	rec := defaultPipeline(t, nil).Run(context.Background(), path)

	require.False(t, rec.Failed(), rec.Error)
	assert.Equal(t, operations.StateDone, rec.State)
	assert.NotEmpty(t, rec.RunID)
	assert.Equal(t, path, rec.FilePath)
	assert.Equal(t, []string{"Employee ID", "First Name"}, rec.OriginalHeaders)

	require.NotNil(t, rec.HeaderMapping)
	assert.Equal(t, 2, rec.HeaderMapping.Len())
	assert.Equal(t, "employee_id", rec.HeaderMapping.Value("Employee ID"))
	assert.Equal(t, "first_name", rec.HeaderMapping.Value("First Name"))

	require.NotNil(t, rec.Statistics)
	assert.Equal(t, 2, rec.Statistics.Len())
	first, ok := rec.Statistics.Get("first_name")
	require.True(t, ok)
	assert.Equal(t, 1, first.NullCount)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, analytics.KindCategorical, first.Kind)

	id := rec.Statistics.Value("employee_id")
	assert.Equal(t, analytics.KindNumeric, id.Kind)
	assert.Equal(t, 2.0, *id.Numeric.Median)

	assert.Equal(t, []string{"employee_id", "first_name"}, rec.Table.Names())
	assert.Equal(t, []operations.StepStatus{
		operations.StepStatusCompleted,
		operations.StepStatusCompleted,
		operations.StepStatusCompleted,
		operations.StepStatusCompleted,
	}, stepStatuses(rec))
}

func TestPipelineUnsupportedFormat(t *testing.T) {
	rec := defaultPipeline(t, nil).Run(context.Background(), "notes.txt")

	assert.Equal(t, operations.StateDone, rec.State)
	assert.Equal(t, "Unsupported file format: .txt. Use CSV or Excel files.", rec.Error)
	assert.True(t, apperrors.IsUnsupportedFormat(rec.Err))
	assert.Nil(t, rec.Table)
	assert.Nil(t, rec.OriginalHeaders)
	assert.Nil(t, rec.HeaderMapping)
	assert.Nil(t, rec.Statistics)
	for _, status := range stepStatuses(rec) {
		assert.Equal(t, operations.StepStatusSkipped, status)
	}
}

func TestPipelineLoadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	pipeline := defaultPipeline(t, nil)

	rec := pipeline.Run(context.Background(), path)

	assert.Equal(t, operations.StateDone, rec.State)
	assert.Equal(t, "File not found: "+path, rec.Error)
	assert.True(t, apperrors.IsLoadError(rec.Err))
	var perr *apperrors.PipelineError
	require.True(t, errors.As(rec.Err, &perr))
	assert.Equal(t, operations.StepIDLoad, perr.Stage)

	assert.Nil(t, rec.Table)
	assert.Nil(t, rec.Statistics)
	assert.Equal(t, []operations.StepStatus{
		operations.StepStatusFailed,
		operations.StepStatusSkipped,
		operations.StepStatusSkipped,
		operations.StepStatusSkipped,
	}, stepStatuses(rec))

	again := pipeline.Run(context.Background(), path)
	assert.Equal(t, rec.Error, again.Error)
	assert.NotEqual(t, rec.RunID, again.RunID)
}

func TestPipelineKeepsRunIDFromContext(t *testing.T) {
	ctx := infrastructure.WithRunID(context.Background(), "run-123")
	rec := defaultPipeline(t, nil).Run(ctx, "notes.txt")
	assert.Equal(t, "run-123", rec.RunID)
}

func TestPipelineShortCircuit(t *testing.T) {
	first := newFakeStep("first", operations.StateLoaded)
	failing := newFakeStep("failing", operations.StateHeadersExtracted)
	failing.err = apperrors.NewNormalizationError("broken headers")
	last := newFakeStep("last", operations.StateDone)

	registry := operations.NewRegistry()
	for _, s := range []operations.Step{first, failing, last} {
		require.NoError(t, registry.Register(s))
	}

	logger, logs := testutil.NewTestLogger(t)
	rec := operations.NewPipeline(registry, nil, logger).Run(context.Background(), "x.csv")

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 0, last.calls)
	assert.Equal(t, "broken headers", rec.Error)
	assert.Equal(t, operations.StateDone, rec.State)
	assert.Equal(t, "failed", string(rec.Step("failing").Status))
	assert.Equal(t, "broken headers", rec.Step("failing").Error)
	assert.Equal(t, operations.StepStatusSkipped, rec.Step("last").GetStatus())
	assert.Nil(t, rec.Step("nope"))

	testutil.AssertLogContains(t, logs, slog.LevelError, "stage_failed")
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "stage_skipped")
	testutil.AssertLogAttr(t, logs, "step", "last")
	assert.True(t, logs.ContainsMessage("pipeline_failed"))
}

func TestPipelineStepsReceiveCopies(t *testing.T) {
	tamper := newFakeStep("tamper", operations.StateLoaded)
	tamper.mutate = true
	tamper.update = operations.Update{OriginalHeaders: []string{"a"}}
	next := newFakeStep("next", operations.StateHeadersExtracted)

	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(tamper))
	require.NoError(t, registry.Register(next))

	rec := operations.NewPipeline(registry, nil, quietLogger()).Run(context.Background(), "x.csv")

	assert.False(t, rec.Failed())
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, operations.StateLoaded, next.seen.State)
	assert.Equal(t, []string{"a"}, next.seen.OriginalHeaders)
	assert.Equal(t, []string{"a"}, rec.OriginalHeaders)
}

func TestPipelinePreflight(t *testing.T) {
	step := &preflightStep{
		fakeStep: newFakeStep("guarded", operations.StateLoaded),
		err:      apperrors.NewUnsupportedFormatError(".bin"),
	}
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(step))

	rec := operations.NewPipeline(registry, nil, quietLogger()).Run(context.Background(), "x.bin")

	assert.Equal(t, 0, step.calls)
	assert.True(t, apperrors.IsUnsupportedFormat(rec.Err))
	assert.Equal(t, operations.StepStatusSkipped, rec.Steps[0].GetStatus())
}

func TestPipelineTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	tracer, err := operations.NewTracer(&infrastructure.OTelProviders{
		Tracer: tp.Tracer("test"),
		Meter:  metricnoop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)

	path := writeCSV(t, "data.csv", "a,b\n1,x\n")
	rec := defaultPipeline(t, tracer).Run(context.Background(), path)
	require.False(t, rec.Failed())

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{
		"profile.step.load_file",
		"profile.step.extract_headers",
		"profile.step.normalize_headers",
		"profile.step.compute_statistics",
		"profile.run",
	}, names)

	_, err = operations.NewTracer(nil)
	assert.Error(t, err)
}

func TestPipelineMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	tracer, err := operations.NewTracer(providers)
	require.NoError(t, err)

	pipeline := defaultPipeline(t, tracer)
	pipeline.Run(context.Background(), writeCSV(t, "data.csv", "a,b\n1,x\n2,y\n"))
	pipeline.Run(context.Background(), "bad.txt")

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	assert.True(t, found["profile_runs_total"])
	assert.True(t, found["profile_steps_total"])
	assert.True(t, found["profile_rows_loaded_total"])
	assert.True(t, found["profile_columns_total"])
}
