package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/threadgraph/internal/config"
	"github.com/gyaneshwarpardhi/threadgraph/internal/engine"
	"github.com/gyaneshwarpardhi/threadgraph/internal/sink"
)

var (
	// Version is set by build flags.
	Version = "dev"

	cfgFile string
	verbose bool
	logger  *slog.Logger
	loader  *config.Loader
	sinks   = sink.Default()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "threadgraph",
	Short: "Rebuild Reddit comment threads from flat comment tables",
	Long: `threadgraph reconstructs reply trees from a flat table of comments,
annotates every comment with its depth, keeps threads that contain replies
and extracts parent/child comment pairs.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		var err error
		loader, err = config.NewLoader(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addOverrideFlags(runCmd)
	addOverrideFlags(statsCmd)
	addOverrideFlags(serveCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

func newEngine() *engine.Engine {
	return engine.New(logger, sinks)
}
