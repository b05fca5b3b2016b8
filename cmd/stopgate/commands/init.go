package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/irahardianto/stopgate/internal/engine/config"
	"github.com/irahardianto/stopgate/internal/engine/git"
	"github.com/irahardianto/stopgate/internal/platform/logger"
	"github.com/spf13/cobra"
)

var flagInitHook bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stopgate in the current project",
	Long: `Write a starter .stopgate/gates.yaml, keep the run record out of version
control via .gitignore, and with --hook install a git pre-commit hook that
runs 'stopgate check'.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		log.Info("init started")

		projectDir, err := getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}

		gitSvc := git.NewExecService(projectDir)
		if err := initProject(ctx, projectDir, &config.RealFileSystem{}, gitSvc, cmd.OutOrStdout(), flagInitHook); err != nil {
			return err
		}

		log.Info("init completed")
		return nil
	},
}

// initProject performs the init workflow with injected dependencies for testability.
// Outside a git repository only the config is written, unless a hook was requested.
func initProject(ctx context.Context, projectDir string, fsys config.FileSystem, gitSvc git.Service, out io.Writer, hook bool) error {
	log := logger.FromContext(ctx)

	// 1. Starter config.
	path, written, err := config.WriteStarter(ctx, fsys, projectDir)
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintf(out, "📝 Created %s. Add your gates to it.\n", path)
	} else {
		fmt.Fprintf(out, "⚡ Config already exists at %s. Skipping generation.\n", path)
	}

	// 2. Keep the run record out of version control.
	root, err := gitSvc.Root(ctx)
	if err != nil {
		if hook {
			return fmt.Errorf("installing hook: %w", err)
		}
		log.Debug("not a git repository", "error", err)
		fmt.Fprintln(out, "ℹ️  Not a git repository. Skipping .gitignore and hook setup.")
		return nil
	}

	entry, err := ignoreEntry(root, projectDir)
	if err != nil {
		return err
	}
	added, err := gitSvc.EnsureIgnored(ctx, entry)
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	if added {
		fmt.Fprintf(out, "🙈 Added %s to .gitignore\n", entry)
	}

	// 3. Optional git pre-commit hook.
	if hook {
		if err := gitSvc.InstallHook(ctx); err != nil {
			return fmt.Errorf("installing hook: %w", err)
		}
		fmt.Fprintln(out, "🔒 Pre-commit hook installed")
	}

	fmt.Fprintln(out, "✅ Stopgate initialized")
	return nil
}

// ignoreEntry returns the results file path relative to the repository root,
// in the slash form .gitignore expects.
func ignoreEntry(root, projectDir string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(projectDir); err == nil {
		projectDir = resolved
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	rel, err := filepath.Rel(root, resultsPath(projectDir))
	if err != nil {
		return "", fmt.Errorf("locating results file: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func init() {
	initCmd.Flags().BoolVar(&flagInitHook, "hook", false, "Install a git pre-commit hook that runs 'stopgate check'")
	rootCmd.AddCommand(initCmd)
}
