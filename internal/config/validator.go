package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/threadgraph/internal/condition"
)

// Validate checks the config for:
//   - a supported version
//   - a non-negative depth threshold and a positive worker count
//   - a known pair source and at least one known output format
//   - a parseable input predicate
//
// Every problem is reported, not just the first.
func Validate(cfg *Config, knownFormats []string) error {
	var errs []string

	if cfg.Version != "v1" {
		errs = append(errs, fmt.Sprintf("version %q is not supported (want v1)", cfg.Version))
	}
	if cfg.Input.Path == "" {
		errs = append(errs, "input.path is required")
	}
	if cfg.Input.Where != "" {
		if _, err := condition.Parse(cfg.Input.Where); err != nil {
			errs = append(errs, fmt.Sprintf("input.where: %v", err))
		}
	}
	if cfg.Pipeline.MinDepth < 0 {
		errs = append(errs, fmt.Sprintf("pipeline.min_depth must be >= 0, got %d", cfg.Pipeline.MinDepth))
	}
	if cfg.Pipeline.Workers < 1 {
		errs = append(errs, fmt.Sprintf("pipeline.workers must be >= 1, got %d", cfg.Pipeline.Workers))
	}
	switch cfg.Pipeline.PairsFrom {
	case PairsFromAll, PairsFromFiltered:
	default:
		errs = append(errs, fmt.Sprintf("pipeline.pairs_from must be %q or %q, got %q", PairsFromAll, PairsFromFiltered, cfg.Pipeline.PairsFrom))
	}

	known := make(map[string]struct{}, len(knownFormats))
	for _, f := range knownFormats {
		known[f] = struct{}{}
	}
	if len(cfg.Output.Formats) == 0 {
		errs = append(errs, "output.formats must not be empty")
	}
	seen := make(map[string]struct{})
	for i, f := range cfg.Output.Formats {
		if _, ok := known[f]; !ok {
			errs = append(errs, fmt.Sprintf("output.formats[%d]: unknown format %q", i, f))
		}
		if _, dup := seen[f]; dup {
			errs = append(errs, fmt.Sprintf("output.formats[%d]: duplicate format %q", i, f))
		}
		seen[f] = struct{}{}
	}
	for key, name := range map[string]string{
		"threads_name": cfg.Output.ThreadsName,
		"pairs_name":   cfg.Output.PairsName,
		"stats_name":   cfg.Output.StatsName,
	} {
		if name == "" {
			errs = append(errs, fmt.Sprintf("output.%s is required", key))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
