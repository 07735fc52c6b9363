package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tabprofile/internal/infrastructure"
)

// Pipeline runs registered steps in order over a shared Record
type Pipeline struct {
	registry *Registry
	tracer   *Tracer
	logger   *slog.Logger
}

// NewPipeline creates a pipeline. tracer may be nil.
func NewPipeline(registry *Registry, tracer *Tracer, logger *slog.Logger) *Pipeline {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Pipeline{
		registry: registry,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "pipeline"),
	}
}

// Steps returns the static step sequence
func (p *Pipeline) Steps() []Step {
	return p.registry.List()
}

// Run profiles the file at path. It never returns nil: failures are carried
// on the record's Error and the record always ends in state DONE.
func (p *Pipeline) Run(ctx context.Context, path string) *Record {
	ctx = infrastructure.EnsureRunID(ctx)
	rec := NewRecord(path)
	rec.RunID = infrastructure.GetRunID(ctx)

	steps := p.registry.List()
	for _, step := range steps {
		rec.Steps = append(rec.Steps, NewStepState(step.ID(), step.Name()))
	}

	start := time.Now()
	ctx, span := p.tracer.StartRun(ctx, rec)

	p.logger.InfoContext(ctx, "pipeline_start",
		slog.String("file_path", path),
		slog.Int("step_count", len(steps)))

	p.preflight(ctx, rec, steps)
	p.executeSequential(ctx, rec, steps)
	rec.State = StateDone

	duration := time.Since(start)
	if rec.Failed() {
		p.logger.ErrorContext(ctx, "pipeline_failed",
			slog.String("file_path", path),
			slog.String("error", rec.Error),
			slog.Duration("duration", duration))
	} else {
		columns := 0
		if rec.Statistics != nil {
			columns = rec.Statistics.Len()
		}
		p.logger.InfoContext(ctx, "pipeline_completed",
			slog.String("file_path", path),
			slog.Int("columns", columns),
			slog.Duration("duration", duration))
	}
	p.tracer.EndRun(ctx, span, rec, duration)
	return rec
}

// preflight lets steps reject the run before anything executes
func (p *Pipeline) preflight(ctx context.Context, rec *Record, steps []Step) {
	for _, step := range steps {
		check, ok := step.(Preflight)
		if !ok {
			continue
		}
		if err := check.Preflight(rec.FilePath); err != nil {
			p.logger.WarnContext(ctx, "preflight_rejected",
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			rec.fail(step.ID(), err)
			return
		}
	}
}

// executeSequential executes steps one by one, skipping the rest after the
// first failure
func (p *Pipeline) executeSequential(ctx context.Context, rec *Record, steps []Step) {
	for i, step := range steps {
		state := rec.Steps[i]

		if rec.Failed() {
			state.Skip(fmt.Sprintf("Skipped: %s", rec.Error))
			p.logger.InfoContext(ctx, "stage_skipped",
				slog.String("step", step.ID()),
				slog.Int("stage_number", i+1),
				slog.Int("total_stages", len(steps)))
			p.tracer.EndStep(ctx, nil, step, StepStatusSkipped, 0, nil)
			continue
		}

		p.logger.InfoContext(ctx, "executing_stage",
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		p.executeStep(ctx, rec, step, state)
	}
}

func (p *Pipeline) executeStep(ctx context.Context, rec *Record, step Step, state *StepState) {
	stepCtx, span := p.tracer.StartStep(ctx, rec, step)
	state.Start()
	startTime := time.Now()

	update, err := step.Execute(stepCtx, *rec)
	duration := time.Since(startTime)

	if err != nil {
		state.Fail(err)
		rec.fail(step.ID(), err)
		p.logger.ErrorContext(ctx, "stage_failed",
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		p.tracer.EndStep(stepCtx, span, step, StepStatusFailed, duration, err)
		return
	}

	rec.apply(update, step.Target())
	state.Complete()
	p.logger.InfoContext(ctx, "stage_completed",
		slog.String("step", step.ID()),
		slog.String("state", string(rec.State)),
		slog.Duration("duration", duration))
	p.tracer.EndStep(stepCtx, span, step, StepStatusCompleted, duration, nil)
}
