package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/irahardianto/stopgate/internal/platform/logger"
)

const (
	hookMarker = "# stopgate-managed"
	hookScript = `#!/bin/sh
# stopgate-managed
# Installed by 'stopgate init --hook'. Run 'stopgate teardown' to remove.
exec stopgate check
`
)

// InstallHook creates a pre-commit hook that runs 'stopgate check'.
// An existing hook not written by stopgate is left alone and reported as an error.
func (s *ExecService) InstallHook(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("installing pre-commit hook")

	hookPath, err := s.hookPath(ctx)
	if err != nil {
		return err
	}
	hooksDir := filepath.Dir(hookPath)

	if data, err := os.ReadFile(hookPath); err == nil { // #nosec G304 -- path is constructed from .git dir, not user input
		content := string(data)
		if strings.Contains(content, hookMarker) {
			log.Info("hook already installed, skipping")
			return nil
		}
		return fmt.Errorf("pre-commit hook already exists at %s: remove it first or back it up", hookPath)
	}

	if err := os.MkdirAll(hooksDir, 0o750); err != nil {
		return fmt.Errorf("creating hooks directory: %w", err)
	}

	if err := os.WriteFile(hookPath, []byte(hookScript), 0o755); err != nil { // #nosec G306 -- hook must be executable
		return fmt.Errorf("writing hook script: %w", err)
	}

	log.Info("pre-commit hook installed", "path", hookPath)
	return nil
}

// RemoveHook deletes the pre-commit hook if stopgate installed it.
// A missing hook is not an error; a foreign hook is.
func (s *ExecService) RemoveHook(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("removing pre-commit hook")

	hookPath, err := s.hookPath(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(hookPath) // #nosec G304 -- path is constructed from .git dir, not user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("no pre-commit hook found, nothing to remove")
			return nil
		}
		return fmt.Errorf("reading hook: %w", err)
	}

	if !strings.Contains(string(data), hookMarker) {
		return fmt.Errorf("pre-commit hook at %s was not installed by stopgate, will not remove", hookPath)
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("removing hook: %w", err)
	}

	log.Info("pre-commit hook removed", "path", hookPath)
	return nil
}

// hookPath resolves the pre-commit hook location via `git rev-parse --git-path`,
// which honours core.hooksPath and worktrees.
func (s *ExecService) hookPath(ctx context.Context) (string, error) {
	out, err := s.runGit(ctx, "rev-parse", "--git-path", "hooks/pre-commit")
	if err != nil {
		return "", fmt.Errorf("locating hooks directory: %w", err)
	}

	path := strings.TrimSpace(out)
	if !filepath.IsAbs(path) && s.WorkDir != "" {
		path = filepath.Join(s.WorkDir, path)
	}

	return path, nil
}
