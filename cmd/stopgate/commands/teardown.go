package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/irahardianto/stopgate/internal/engine/git"
	"github.com/irahardianto/stopgate/internal/platform/logger"
	"github.com/spf13/cobra"
)

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Stop running 'stopgate check' on commit",
	Long: `Remove the pre-commit hook installed by 'stopgate init --hook'.
Gates in .stopgate/gates.yaml and the last run record are kept, so
'stopgate run' keeps working for the agent.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		projectDir, err := getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		return teardownProject(cmd.Context(), git.NewExecService(projectDir), cmd.OutOrStdout())
	},
}

// teardownProject removes the stopgate pre-commit hook of the enclosing repository.
func teardownProject(ctx context.Context, gitSvc git.Service, out io.Writer) error {
	log := logger.FromContext(ctx)
	log.Info("teardown started")

	root, err := gitSvc.Root(ctx)
	if err != nil {
		return fmt.Errorf("no git repository to remove the hook from: %w", err)
	}
	if err := gitSvc.RemoveHook(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "🔓 Pre-commit hook removed from %s: commits no longer run 'stopgate check'\n", root)
	fmt.Fprintln(out, "ℹ️  .stopgate/ kept; delete it to drop gates and run history")
	log.Info("teardown completed", "root", root)
	return nil
}

func init() {
	rootCmd.AddCommand(teardownCmd)
}
