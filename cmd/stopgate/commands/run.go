package commands

import (
	"github.com/spf13/cobra"
)

var (
	flagNoFailFast bool
	flagStream     bool
	flagSkip       []string
	flagSARIF      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all gates and print the agent decision",
	Long: `Execute all configured gates in order. A console summary is written to
stderr and the decision payload to stdout:

  {"decision":"block","reason":"Gate 'test' failed (exit 1):\n..."}

The exit status is 0 whenever the run completed; the payload carries the verdict.
Use 'stopgate check' when the exit status should reflect the result.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := runPipeline(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), gateOpts(true))
		return err
	},
}

// gateOpts collects the flags shared by run and check.
func gateOpts(decision bool) PipelineOpts {
	return PipelineOpts{
		Decision:   decision,
		Verbose:    flagVerbose,
		NoColor:    flagNoColor,
		NoFailFast: flagNoFailFast,
		Stream:     flagStream,
		Skip:       flagSkip,
		SARIFPath:  flagSARIF,
	}
}

func addGateFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagNoFailFast, "no-fail-fast", false, "Run every gate even after a blocking failure")
	cmd.Flags().BoolVar(&flagStream, "stream", false, "Echo gate output to stderr while gates run")
	cmd.Flags().StringSliceVar(&flagSkip, "skip", nil, "Skip specific gates by name")
	cmd.Flags().StringVar(&flagSARIF, "sarif", "", "Also write a SARIF report to this path")
}

func init() {
	addGateFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
