package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"tabprofile/internal/analytics"
	"tabprofile/internal/infrastructure"
)

const (
	TracerName = "tabprofile.pipeline"
)

// Tracer provides OpenTelemetry instrumentation for pipeline runs. A nil
// *Tracer records nothing.
type Tracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.ProfileMetrics
}

// NewTracer creates a tracer from initialized providers
func NewTracer(providers *infrastructure.OTelProviders) (*Tracer, error) {
	if providers == nil {
		return nil, fmt.Errorf("otel providers are required")
	}
	metrics, err := infrastructure.CreateProfileMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile metrics: %w", err)
	}

	tracer := providers.Tracer
	if providers.TracerProvider != nil {
		tracer = providers.TracerProvider.Tracer(TracerName)
	}
	return &Tracer{tracer: tracer, metrics: metrics}, nil
}

func (t *Tracer) spanTracer() trace.Tracer {
	if t == nil || t.tracer == nil {
		return tracenoop.NewTracerProvider().Tracer(TracerName)
	}
	return t.tracer
}

// StartRun creates the root span of a run
func (t *Tracer) StartRun(ctx context.Context, rec *Record) (context.Context, trace.Span) {
	return t.spanTracer().Start(ctx, "profile.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", rec.RunID),
			attribute.String("file.path", rec.FilePath),
		),
	)
}

// EndRun records the outcome of a run and ends its span
func (t *Tracer) EndRun(ctx context.Context, span trace.Span, rec *Record, duration time.Duration) {
	defer span.End()

	status := "completed"
	if rec.Failed() {
		status = "failed"
		span.SetStatus(codes.Error, rec.Error)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(
		attribute.String("run.status", status),
		attribute.String("run.state", string(rec.State)),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
	)

	if rec.Statistics != nil {
		for p := rec.Statistics.Oldest(); p != nil; p = p.Next() {
			if p.Value.Anomaly != "" {
				infrastructure.AddSpanEvent(ctx, "column.anomaly", map[string]interface{}{
					"column": p.Key,
					"reason": p.Value.Anomaly,
				})
			}
		}
	}

	if t == nil || t.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	t.metrics.RunsTotal.Add(ctx, 1, attrs)
	t.metrics.RunDuration.Record(ctx, duration.Seconds(), attrs)

	if rec.Table != nil {
		t.metrics.RowsLoaded.Add(ctx, int64(rec.Table.NumRows()))
	}
	if rec.Statistics != nil {
		for p := rec.Statistics.Oldest(); p != nil; p = p.Next() {
			t.recordColumn(ctx, p.Value)
		}
	}
}

func (t *Tracer) recordColumn(ctx context.Context, stats analytics.ColumnStats) {
	t.metrics.ColumnsProfiled.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", string(stats.Kind))))
	if stats.Anomaly != "" {
		t.metrics.ColumnAnomalies.Add(ctx, 1)
	}
}

// StartStep creates a span for one step
func (t *Tracer) StartStep(ctx context.Context, rec *Record, step Step) (context.Context, trace.Span) {
	return t.spanTracer().Start(ctx, "profile.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", rec.RunID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// EndStep records a step outcome. span may be nil for skipped steps.
func (t *Tracer) EndStep(ctx context.Context, span trace.Span, step Step, status StepStatus, duration time.Duration, err error) {
	if span != nil {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.SetAttributes(attribute.String("step.status", string(status)))
		span.End()
	}

	if t == nil || t.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("step", step.ID()),
		attribute.String("status", string(status)),
	)
	t.metrics.StepsTotal.Add(ctx, 1, attrs)
	if status != StepStatusSkipped {
		t.metrics.StepDuration.Record(ctx, duration.Seconds(), attrs)
	}
}
