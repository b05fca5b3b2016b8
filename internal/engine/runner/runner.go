// Package runner provides the sequential execution engine for running gates.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/engine/gate"
	"github.com/irahardianto/stopgate/internal/platform/logger"
)

// Executor runs a single gate to completion. It never fails: every problem
// is expressed in the returned outcome.
type Executor interface {
	Execute(ctx context.Context, spec gate.Spec) formatter.GateOutcome
}

// RunOptions controls one RunAll invocation.
type RunOptions struct {
	// FailFast skips every remaining blocking gate once a blocking gate has failed.
	FailFast bool
}

// Engine orchestrates sequential gate execution.
type Engine struct {
	executor Executor
	// Sink is an optional progress observer. If nil, no events are emitted.
	Sink gate.Sink

	now   func() time.Time
	newID func() string
}

// NewEngine creates a new execution engine.
func NewEngine(executor Executor) *Engine {
	return &Engine{
		executor: executor,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// NewEngineWithSink creates a new execution engine with progress tracking.
func NewEngineWithSink(executor Executor, sink gate.Sink) *Engine {
	e := NewEngine(executor)
	e.Sink = sink
	return e
}

// RunAll executes gates one at a time in the given order and aggregates
// their outcomes. Gates must already be sorted; an invalid list (missing
// name or command, duplicate names) is rejected before anything runs.
//
// The returned summary always holds one outcome per input gate.
func (e *Engine) RunAll(ctx context.Context, gates []gate.Spec, opts RunOptions) (*formatter.RunSummary, error) {
	log := logger.FromContext(ctx)

	if err := gate.Validate(gates); err != nil {
		return nil, fmt.Errorf("invalid gate list: %w", err)
	}

	log.Info("Engine.RunAll started", "gates", len(gates), "fail_fast", opts.FailFast)
	start := e.now()

	results := make([]formatter.GateOutcome, 0, len(gates))
	warnings := []string{}
	firstFailure := -1

	for _, spec := range gates {
		if opts.FailFast && firstFailure >= 0 && spec.Blocking {
			log.Debug("fail-fast: skipping gate", "gate", spec.Name)
			outcome := formatter.Skip(spec.Name, spec.Blocking)
			results = append(results, outcome)
			e.notify(ctx, "complete", func() { e.Sink.OnComplete(outcome) })
			continue
		}

		e.notify(ctx, "start", func() { e.Sink.OnStart(spec.Name) })
		outcome := e.executor.Execute(ctx, spec)
		results = append(results, outcome)
		e.notify(ctx, "complete", func() { e.Sink.OnComplete(outcome) })

		if outcome.Passed {
			continue
		}
		if spec.Blocking {
			if firstFailure < 0 {
				firstFailure = len(results) - 1
				log.Info("blocking gate failed", "gate", spec.Name, "exit_code", outcome.ExitCode.String())
			}
		} else {
			warnings = append(warnings, spec.Name)
		}
	}

	summary := &formatter.RunSummary{
		RunID:           e.newID(),
		Passed:          firstFailure < 0,
		Timestamp:       start.UTC(),
		TotalDurationMs: max(e.now().Sub(start).Milliseconds(), 0),
		Results:         results,
		Warnings:        warnings,
	}
	if firstFailure >= 0 {
		summary.FirstFailure = &summary.Results[firstFailure]
	}

	if f, ok := e.Sink.(interface{ Finish() }); ok {
		e.notify(ctx, "finish", f.Finish)
	}

	log.Info("Engine.RunAll completed",
		"run_id", summary.RunID,
		"passed", summary.Passed,
		"duration_ms", summary.TotalDurationMs,
		"warnings", len(summary.Warnings))
	return summary, nil
}

func (e *Engine) notify(ctx context.Context, event string, fn func()) {
	if e.Sink == nil {
		return
	}
	gate.Notify(logger.FromContext(ctx), event, fn)
}
