package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and write all artifacts",
	Long: `Load the comment table, rebuild every thread, annotate depths, filter
threads by depth and write the thread, pair and statistics artifacts.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, loader.Config())
	if err != nil {
		return err
	}

	res, err := newEngine().Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%d ms)\n", res.RunID, res.DurationMs)
	fmt.Fprintf(out, "  Rows:           %d\n", res.Counts.Rows)
	fmt.Fprintf(out, "  Threads:        %d\n", res.Counts.Threads)
	fmt.Fprintf(out, "  Kept threads:   %d (min depth %d)\n", res.Counts.KeptThreads, cfg.Pipeline.MinDepth)
	fmt.Fprintf(out, "  Kept rows:      %d\n", res.Counts.KeptRows)
	fmt.Fprintf(out, "  Pairs:          %d\n", res.Counts.Pairs)
	if res.Counts.Unresolved > 0 {
		fmt.Fprintf(out, "  Unresolved:     %d\n", res.Counts.Unresolved)
	}
	if res.Counts.Ambiguities > 0 {
		fmt.Fprintf(out, "  Ambiguous:      %d\n", res.Counts.Ambiguities)
	}
	for _, w := range res.Artifacts {
		fmt.Fprintf(out, "  Wrote %-8s %s (%d rows)\n", w.Format, w.Path, w.Rows)
	}
	return nil
}
