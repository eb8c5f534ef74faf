package main

import (
	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/threadgraph/internal/config"
)

// overrides are command-line values that win over the config file and
// environment.
type overrides struct {
	input     string
	minDepth  int
	outDir    string
	formats   []string
	workers   int
	pairsFrom string
	where     string
	dedupe    bool
}

var flagValues = map[*cobra.Command]*overrides{}

func addOverrideFlags(cmd *cobra.Command) {
	o := &overrides{}
	flagValues[cmd] = o
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "input comment CSV")
	f.IntVar(&o.minDepth, "min-depth", 1, "keep threads whose maximum depth is at least this")
	f.StringVarP(&o.outDir, "out", "o", "", "output directory")
	f.StringSliceVar(&o.formats, "format", nil, "output formats (csv, sqlite)")
	f.IntVar(&o.workers, "workers", 0, "depth calculation workers")
	f.StringVar(&o.pairsFrom, "pairs-from", "", "pair source: all or filtered")
	f.StringVar(&o.where, "where", "", "row predicate applied before building threads")
	f.BoolVar(&o.dedupe, "dedupe", false, "collapse rater rows sharing an id")
}

// resolveConfig applies the flags the user set to a copy of base and
// validates the result.
func resolveConfig(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	cfg.Output.Formats = append([]string(nil), base.Output.Formats...)

	o := flagValues[cmd]
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.Input.Path = o.input
	}
	if f.Changed("min-depth") {
		cfg.Pipeline.MinDepth = o.minDepth
	}
	if f.Changed("out") {
		cfg.Output.Dir = o.outDir
	}
	if f.Changed("format") {
		cfg.Output.Formats = o.formats
	}
	if f.Changed("workers") {
		cfg.Pipeline.Workers = o.workers
	}
	if f.Changed("pairs-from") {
		cfg.Pipeline.PairsFrom = o.pairsFrom
	}
	if f.Changed("where") {
		cfg.Input.Where = o.where
	}
	if f.Changed("dedupe") {
		cfg.Input.DedupeRaters = o.dedupe
	}

	if err := config.Validate(&cfg, sinks.Formats()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
