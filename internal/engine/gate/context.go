package gate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExecContext is the environment every gate of a run executes in.
// It is captured once per run and shared read-only by all gates.
type ExecContext struct {
	// Shell is the program the gate command is handed to.
	Shell string
	// Dir is the working directory of the child process.
	Dir string
	// Env is passed to the child verbatim.
	Env []string
	// Stream forwards output chunks to the Sink as they arrive.
	Stream bool
}

// ContextFromEnv snapshots the calling process: working directory, full
// environment and shell. A non-empty shell overrides $SHELL.
func ContextFromEnv(shell string, stream bool) (ExecContext, error) {
	dir, err := os.Getwd()
	if err != nil {
		return ExecContext{}, fmt.Errorf("getting working directory: %w", err)
	}
	if shell == "" {
		shell = DefaultShell(os.Getenv, runtime.GOOS)
	}
	return ExecContext{
		Shell:  shell,
		Dir:    dir,
		Env:    os.Environ(),
		Stream: stream,
	}, nil
}

// DefaultShell resolves the shell from the environment, falling back to
// the platform default.
func DefaultShell(getenv func(string) string, goos string) string {
	if goos == "windows" {
		if comspec := getenv("ComSpec"); comspec != "" {
			return comspec
		}
		return "cmd.exe"
	}
	if shell := getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

// shellArgs returns the argv that makes shell run command.
func shellArgs(shell, command string) []string {
	base := strings.ToLower(filepath.Base(shell))
	base = strings.TrimSuffix(base, ".exe")
	switch base {
	case "cmd":
		return []string{"/C", command}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command", command}
	default:
		return []string{"-c", command}
	}
}
