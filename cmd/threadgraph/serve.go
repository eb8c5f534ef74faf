package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/threadgraph/internal/api"
	"github.com/gyaneshwarpardhi/threadgraph/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest run over HTTP and re-run on config or input changes",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := resolveConfig(cmd, loader.Config())
	if err != nil {
		return err
	}
	eng := newEngine()

	// ── Re-run on change ──────────────────────────────────────────────────────
	rerun := make(chan *config.Config, 1)
	var pendingMu sync.Mutex
	loader.OnChange(func(newCfg *config.Config) {
		resolved, err := resolveConfig(cmd, newCfg)
		if err != nil {
			logger.Warn("re-run skipped: config invalid", "err", err)
			return
		}
		// Keep only the newest pending config.
		pendingMu.Lock()
		defer pendingMu.Unlock()
		select {
		case <-rerun:
		default:
		}
		rerun <- resolved
	})
	watch, err := loader.WatchInput(func(err error) {
		logger.Warn("reload failed", "err", err)
	}, cfg.Input.Path)
	if err != nil {
		logger.Warn("file watcher unavailable (re-run on change disabled)", "err", err)
	} else {
		defer watch.Stop()
	}

	go func() {
		if _, err := eng.Run(ctx, cfg); err != nil {
			logger.Warn("initial run failed", "err", err)
		}
		for {
			select {
			case next := <-rerun:
				if watch != nil {
					if err := watch.Follow(next.Input.Path); err != nil {
						logger.Warn("input watch not moved", "input", next.Input.Path, "err", err)
					}
				}
				if _, err := eng.Run(ctx, next); err != nil {
					logger.Warn("re-run failed", "err", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         serveAddr,
		Handler:      api.New(eng, loader, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", serveAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	logger.Info("goodbye")
	return nil
}
