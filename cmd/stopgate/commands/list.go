package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/irahardianto/stopgate/internal/engine/config"
	"github.com/irahardianto/stopgate/internal/engine/gate"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the gates a run would execute, in order",
	Long: `Load .stopgate/gates.yaml and print the resolved gate list: disabled gates
removed, the rest sorted by order. Nothing is executed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		projectDir, err := getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		return listGates(cmd.Context(), config.Load, configPath(projectDir), cmd.OutOrStdout())
	},
}

// listGates prints the resolved gate list with injected dependencies for testability.
func listGates(ctx context.Context, load func(context.Context, string) (*config.StopgateConfig, error), path string, out io.Writer) error {
	cfg, err := load(ctx, path)
	if err != nil {
		return err
	}
	specs, err := gate.FromConfig(cfg, nil)
	if err != nil {
		return err
	}

	if len(specs) == 0 {
		fmt.Fprintf(out, "No gates enabled in %s\n", path)
		return nil
	}

	failFast := "on"
	if !cfg.FailFast() {
		failFast = "off"
	}
	fmt.Fprintf(out, "%d gate(s), fail-fast %s, output limit %d\n\n", len(specs), failFast, cfg.OutputLimit())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tNAME\tBLOCKING\tCOMMAND")
	for _, s := range specs {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", s.Order, s.Name, s.Blocking, s.Command)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)
}
