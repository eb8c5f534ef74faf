package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/threadgraph/internal/engine"
	"github.com/gyaneshwarpardhi/threadgraph/internal/source"
	"github.com/gyaneshwarpardhi/threadgraph/internal/thread"
)

var (
	statsJSON bool
	statsTop  int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print thread statistics without writing artifacts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the summary as JSON")
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "number of deepest threads to list")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, loader.Config())
	if err != nil {
		return err
	}
	t, err := source.LoadFile(cfg.Input.Path)
	if err != nil {
		return err
	}
	res, err := engine.Process(cmd.Context(), cfg, t, engine.NewLogReporter(logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"counts":    res.Counts,
			"anomalies": res.Anomalies,
			"summary":   res.Summary,
		})
	}

	s := res.Summary
	fmt.Fprintf(out, "Threads:   %d\n", s.Threads)
	fmt.Fprintf(out, "Comments:  %d\n", s.Comments)
	fmt.Fprintf(out, "Edges:     %d\n", s.Edges)
	fmt.Fprintf(out, "Max depth: mean %.2f, stddev %.2f, median %.1f\n", s.MeanMaxDepth, s.StdDevMaxDepth, s.MedianMaxDepth)

	depths := make([]int, 0, len(s.Distribution))
	for d := range s.Distribution {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	fmt.Fprintln(out, "\nComments by depth:")
	for _, d := range depths {
		fmt.Fprintf(out, "  %3d  %d\n", d, s.Distribution[d])
	}

	if statsTop > 0 && res.Stats.Len() > 0 {
		fmt.Fprintf(out, "\nDeepest threads:\n")
		printDeepest(out, res.Stats.Rows, statsTop)
	}
	return nil
}

func printDeepest(out io.Writer, rows []thread.Stats, n int) {
	sorted := append([]thread.Stats(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MaxDepth > sorted[j].MaxDepth })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  LINK_ID\tCOMMENTS\tROOTS\tMAX_DEPTH")
	for _, st := range sorted {
		fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\n", st.LinkID, st.Comments, st.Roots, st.MaxDepth)
	}
	tw.Flush()
}
