// Package commands implements the CLI commands for stopgate.
package commands

import (
	"github.com/irahardianto/stopgate/internal/platform/logger"
	"github.com/spf13/cobra"
)

// Global flag values accessible to all commands.
var (
	flagVerbose    bool
	flagLogJSON    bool
	flagNoColor    bool
	flagConfigPath string
)

// rootCmd is the base command for the stopgate CLI.
var rootCmd = &cobra.Command{
	Use:   "stopgate",
	Short: "Pre-completion gate runner for coding agents",
	Long: `Stopgate runs an ordered list of shell commands ("gates") declared in
.stopgate/gates.yaml before a coding agent is allowed to finish.

Gates run one at a time. A failing blocking gate produces a block decision
on stdout carrying the gate's stderr, so the agent can fix the problem and
try again. A failing non-blocking gate is reported as a warning only.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		l := logger.New(flagVerbose, flagLogJSON)
		ctx := logger.WithContext(cmd.Context(), l)
		cmd.SetContext(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Show failing gate output and debug logs")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Emit logs as JSON on stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to gates.yaml (default .stopgate/gates.yaml)")
}

// Execute runs the root command. Returns an error if the command fails.
func Execute() error {
	return rootCmd.Execute()
}
