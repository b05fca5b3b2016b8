// Package git abstracts the git operations stopgate needs for project setup.
package git

import (
	"context"
)

// Service abstracts git operations for testability.
type Service interface {
	// Root returns the absolute path of the repository's top-level directory.
	Root(ctx context.Context) (string, error)

	// InstallHook creates a pre-commit hook script in .git/hooks/.
	InstallHook(ctx context.Context) error
	// RemoveHook removes the stopgate pre-commit hook.
	RemoveHook(ctx context.Context) error

	// EnsureIgnored appends entry to the repository's .gitignore unless an
	// equivalent line is already present. It reports whether the file changed.
	EnsureIgnored(ctx context.Context, entry string) (bool, error)
}
