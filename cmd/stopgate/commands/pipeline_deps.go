package commands

import (
	"context"

	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/engine/gate"
	"github.com/irahardianto/stopgate/internal/engine/runner"
)

// GateRunner abstracts sequential execution of gates.
type GateRunner interface {
	RunAll(ctx context.Context, gates []gate.Spec, opts runner.RunOptions) (*formatter.RunSummary, error)
}

// RunnerFactory builds the runner for one invocation. The execution context
// and progress sink are only known once config has been loaded.
type RunnerFactory func(ec gate.ExecContext, sink gate.Sink) GateRunner

// newShellRunner is the production RunnerFactory.
func newShellRunner(ec gate.ExecContext, sink gate.Sink) GateRunner {
	return runner.NewEngineWithSink(gate.NewShellExecutor(ec, sink), sink)
}
