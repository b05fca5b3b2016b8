package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/irahardianto/stopgate/internal/engine/config"
	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/engine/gate"
	"github.com/irahardianto/stopgate/internal/engine/report"
	"github.com/irahardianto/stopgate/internal/engine/runner"
	"github.com/irahardianto/stopgate/internal/platform/logger"
)

// PipelineOpts holds per-invocation options for the pipeline.
type PipelineOpts struct {
	// Decision writes the decision payload to Stdout after the run.
	Decision   bool
	Verbose    bool
	NoColor    bool
	NoFailFast bool
	Stream     bool
	Skip       []string
	// SARIFPath, if set, receives a SARIF report of the run.
	SARIFPath string
	// RequireRecord turns a failure to persist the run into an error,
	// reported after the console summary.
	RequireRecord bool
}

// Pipeline orchestrates one stopgate run with injected dependencies.
// This struct enables testing the orchestration logic without real infrastructure.
type Pipeline struct {
	// LoadConfig loads the project-level gates.yaml.
	LoadConfig func(ctx context.Context, path string) (*config.StopgateConfig, error)

	// GlobalConfig holds the pre-loaded user configuration (~/.config/stopgate/).
	GlobalConfig *config.GlobalConfig

	// ExecContext snapshots the environment gates run in.
	ExecContext func(shell string, stream bool) (gate.ExecContext, error)

	// NewRunner builds the gate runner for this invocation.
	NewRunner RunnerFactory

	// Store persists the summary of the run.
	Store report.Store

	// FS writes the SARIF report.
	FS config.FileSystem

	// ConfigPath is the path to the gates.yaml file.
	ConfigPath string

	// Stdout receives the decision payload and nothing else.
	Stdout io.Writer

	// Stderr receives progress and the console summary.
	Stderr io.Writer

	// IsTerminal reports whether w is an interactive terminal.
	IsTerminal func(w io.Writer) bool
}

// Execute runs every configured gate and reports the outcome. The returned
// summary is nil only when the run could not start.
func (p *Pipeline) Execute(ctx context.Context, opts PipelineOpts) (*formatter.RunSummary, error) {
	log := logger.FromContext(ctx)
	log.Info("stopgate pipeline started", "config", p.ConfigPath)

	// 1. Load project configuration.
	cfg, err := p.LoadConfig(ctx, p.ConfigPath)
	if err != nil {
		return nil, err
	}
	if p.GlobalConfig == nil {
		return nil, fmt.Errorf("global config not loaded")
	}

	// 2. Resolve the ordered gate list.
	specs, err := gate.FromConfig(cfg, opts.Skip)
	if err != nil {
		return nil, err
	}

	// 3. Snapshot the execution context shared by every gate.
	stream := opts.Stream || p.GlobalConfig.OutputStream
	ec, err := p.ExecContext(p.GlobalConfig.Shell, stream)
	if err != nil {
		return nil, fmt.Errorf("capturing execution context: %w", err)
	}

	// 4. Run.
	interactive := p.IsTerminal(p.Stderr)
	progress := runner.NewProgress(p.Stderr, !(stream || interactive), len(specs))
	summary, err := p.NewRunner(ec, progress).RunAll(ctx, specs, runner.RunOptions{
		FailFast: cfg.FailFast() && !opts.NoFailFast,
	})
	if err != nil {
		return nil, err
	}

	// 5. Persist before reporting so 'stopgate last' always matches what was reported.
	var saveErr error
	if err := p.Store.Save(ctx, summary); err != nil {
		log.Warn("could not persist run", "error", err)
		if opts.RequireRecord {
			saveErr = fmt.Errorf("persisting run: %w", err)
		}
	}

	budget := p.budget(cfg)

	if opts.SARIFPath != "" {
		sf := formatter.NewSARIFFormatter()
		sf.Budget = budget
		if err := p.FS.WriteFile(opts.SARIFPath, []byte(sf.Format(*summary)), 0o644); err != nil { // #nosec G306 -- report file, not sensitive
			return summary, fmt.Errorf("writing SARIF report: %w", err)
		}
		log.Info("SARIF report written", "path", opts.SARIFPath)
	}

	// 6. Console summary on stderr.
	color := p.GlobalConfig.OutputColor && !opts.NoColor && interactive
	cf := formatter.NewCLIFormatter(color, opts.Verbose || p.GlobalConfig.OutputVerbose)
	cf.Budget = budget
	fmt.Fprint(p.Stderr, cf.Format(*summary))

	// 7. Decision payload on stdout.
	if opts.Decision {
		data, err := formatter.Decide(*summary, budget).JSON()
		if err != nil {
			return summary, fmt.Errorf("encoding decision: %w", err)
		}
		fmt.Fprintln(p.Stdout, string(data))
	}

	log.Info("stopgate pipeline completed", "run_id", summary.RunID, "passed", summary.Passed)
	return summary, saveErr
}

// budget picks the output truncation budget: the user override wins over
// the project setting.
func (p *Pipeline) budget(cfg *config.StopgateConfig) int {
	if p.GlobalConfig.OutputLimit > 0 {
		return p.GlobalConfig.OutputLimit
	}
	return cfg.OutputLimit()
}
