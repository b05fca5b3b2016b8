package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/irahardianto/stopgate/internal/platform/logger"
)

// ExecService implements Service by running git commands via os/exec.
type ExecService struct {
	// WorkDir is the working directory for git commands.
	// If empty, the current directory is used.
	WorkDir string
}

// NewExecService creates a new ExecService with the given working directory.
func NewExecService(workDir string) *ExecService {
	return &ExecService{WorkDir: workDir}
}

// Root returns the top-level directory of the working tree.
func (s *ExecService) Root(ctx context.Context) (string, error) {
	logger.FromContext(ctx).Debug("resolving repository root")

	out, err := s.runGit(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}

	return strings.TrimSpace(out), nil
}

// runGit executes a git command and returns its stdout.
func (s *ExecService) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) // #nosec G204 -- args are controlled by the application, not user input
	cmd.Dir = s.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
