// Package report persists run summaries so a later invocation can inspect
// the most recent run.
package report

import (
	"context"
	"errors"

	"github.com/irahardianto/stopgate/internal/engine/formatter"
)

// ErrNoRun is returned by Load when no run has been recorded yet.
var ErrNoRun = errors.New("no recorded run")

// Store saves and loads the most recent run summary.
type Store interface {
	Save(ctx context.Context, summary *formatter.RunSummary) error
	Load(ctx context.Context) (*formatter.RunSummary, error)
}
