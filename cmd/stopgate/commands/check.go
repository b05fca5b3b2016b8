package commands

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run all gates and exit non-zero on a blocking failure",
	Long: `Execute all configured gates exactly like 'run', but print only the console
summary. Exit 1 if any blocking gate fails, 0 otherwise. Non-blocking gate
failures are reported but do not affect the exit code.

This is the form used by the git pre-commit hook and in CI. A run that
cannot be recorded for 'stopgate last' also fails.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := gateOpts(false)
		opts.RequireRecord = true
		summary, err := runPipeline(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		if err != nil {
			return err
		}
		if !summary.Passed {
			return ErrGatesFailed
		}
		return nil
	},
}

func init() {
	addGateFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}
