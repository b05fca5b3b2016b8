package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/irahardianto/stopgate/internal/platform/logger"
)

// StarterYAML is the gates.yaml written by 'stopgate init'.
const StarterYAML = `# stopgate configuration
# Gates run in ascending 'order' (ties keep file order) before the agent may finish.
# A failing blocking gate stops the agent; a failing non-blocking gate is a warning.
version: 1

defaults:
  blocking: true
  fail_fast: true
  output_limit: 4000

gates:
  # Example gates: uncomment and customize.
  # - name: lint
  #   command: "make lint"
  #   order: 10
  #
  # - name: test
  #   command: "make test"
  #   order: 50
  #
  # - name: audit
  #   command: "make audit"
  #   order: 90
  #   blocking: false
`

// WriteStarter creates dir/.stopgate/gates.yaml unless it already exists.
// Returns the config path and whether a file was written.
func WriteStarter(ctx context.Context, fsys FileSystem, projectDir string) (string, bool, error) {
	log := logger.FromContext(ctx)
	dir := filepath.Join(projectDir, Dir)
	path := filepath.Join(dir, GatesFile)

	if _, err := fsys.Stat(path); err == nil {
		log.Debug("config already exists", "path", path)
		return path, false, nil
	} else if !fsys.IsNotExist(err) {
		return "", false, fmt.Errorf("checking %s: %w", path, err)
	}

	if err := fsys.MkdirAll(dir, 0o750); err != nil {
		return "", false, fmt.Errorf("creating %s directory: %w", Dir, err)
	}
	if err := fsys.WriteFile(path, []byte(StarterYAML), 0o644); err != nil {
		return "", false, fmt.Errorf("writing %s: %w", GatesFile, err)
	}

	log.Info("starter config written", "path", path)
	return path, true, nil
}
