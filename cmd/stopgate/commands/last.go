package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/engine/report"
	"github.com/spf13/cobra"
)

var flagLastJSON bool

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the result of the most recent run",
	Long: `Print the summary recorded by the last 'stopgate run' or 'stopgate check'.
With --json the full record is printed, including every gate's captured output.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		projectDir, err := getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		store := report.NewFileStore(resultsPath(projectDir))
		color := !flagNoColor && isTerminal(cmd.OutOrStdout())
		return showLast(cmd.Context(), store, cmd.OutOrStdout(), flagLastJSON, color)
	},
}

// showLast renders the stored run with injected dependencies for testability.
func showLast(ctx context.Context, store report.Store, out io.Writer, asJSON, color bool) error {
	summary, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, report.ErrNoRun) {
			return fmt.Errorf("%w: run 'stopgate run' first", err)
		}
		return err
	}

	var f formatter.Formatter
	if asJSON {
		f = formatter.NewJSONFormatter()
	} else {
		f = formatter.NewCLIFormatter(color, flagVerbose)
		fmt.Fprintf(out, "Run %s at %s (%dms)\n", summary.RunID, summary.Timestamp.Local().Format("2006-01-02 15:04:05"), summary.TotalDurationMs)
	}
	fmt.Fprint(out, f.Format(*summary))
	return nil
}

func init() {
	lastCmd.Flags().BoolVar(&flagLastJSON, "json", false, "Print the full run record as JSON")
	rootCmd.AddCommand(lastCmd)
}
