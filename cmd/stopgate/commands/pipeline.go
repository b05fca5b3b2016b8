package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/irahardianto/stopgate/internal/engine/config"
	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/engine/gate"
	"github.com/irahardianto/stopgate/internal/engine/report"
	"github.com/irahardianto/stopgate/internal/platform/logger"
	"golang.org/x/term"
)

// ErrGatesFailed is returned when a blocking gate fails and the command
// reports that through its exit status.
var ErrGatesFailed = errors.New("gates failed")

// getwd is a variable for testability (defaults to os.Getwd).
var getwd = os.Getwd

// runPipeline wires real infrastructure and delegates to Pipeline.Execute.
// This is the composition root: it instantiates production dependencies.
func runPipeline(ctx context.Context, stdout, stderr io.Writer, opts PipelineOpts) (*formatter.RunSummary, error) {
	log := logger.FromContext(ctx)

	projectDir, err := getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	globalCfg, err := config.LoadGlobalConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	pipeline := &Pipeline{
		LoadConfig:   config.Load,
		GlobalConfig: globalCfg,
		ExecContext:  gate.ContextFromEnv,
		NewRunner:    newShellRunner,
		Store:        report.NewFileStore(resultsPath(projectDir)),
		FS:           &config.RealFileSystem{},
		ConfigPath:   configPath(projectDir),
		Stdout:       stdout,
		Stderr:       stderr,
		IsTerminal:   isTerminal,
	}

	summary, err := pipeline.Execute(ctx, opts)
	if err != nil {
		log.Error("pipeline failed", "error", err)
	}
	return summary, err
}

// configPath returns the gates.yaml path, honouring --config.
func configPath(projectDir string) string {
	if flagConfigPath != "" {
		return flagConfigPath
	}
	return filepath.Join(projectDir, config.Dir, config.GatesFile)
}

// resultsPath returns where the last run is recorded.
func resultsPath(projectDir string) string {
	return filepath.Join(projectDir, config.Dir, config.ResultsFile)
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
