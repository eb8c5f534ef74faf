package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/threadgraph/internal/config"
	"github.com/gyaneshwarpardhi/threadgraph/internal/engine"
)

// Runner executes pipeline runs and keeps the latest result.
type Runner interface {
	Run(ctx context.Context, cfg *config.Config) (*engine.Result, error)
	Latest() *engine.Result
	Formats() []string
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    Runner
	loader *config.Loader
	log    *slog.Logger
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng Runner, loader *config.Loader, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{eng: eng, loader: loader, log: log, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/runs", h.startRun)
	h.mux.HandleFunc("GET /v1/runs/latest", h.latestRun)
	h.mux.HandleFunc("GET /v1/threads/{link_id}", h.getThread)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(log, h.mux)
}

// runRequest overrides parts of the loaded config for a single run.
type runRequest struct {
	Input    string   `json:"input"`
	MinDepth *int     `json:"min_depth"`
	Formats  []string `json:"formats"`
	Where    *string  `json:"where"`
}

// errInputOutsideDir rejects input overrides that leave the directory of the
// configured input.
var errInputOutsideDir = errors.New("input must be inside the configured input directory")

func (req runRequest) apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	cfg.Output.Formats = append([]string(nil), base.Output.Formats...)
	if req.Input != "" {
		path, err := inputWithin(filepath.Dir(base.Input.Path), req.Input)
		if err != nil {
			return nil, err
		}
		cfg.Input.Path = path
	}
	if req.MinDepth != nil {
		cfg.Pipeline.MinDepth = *req.MinDepth
	}
	if len(req.Formats) > 0 {
		cfg.Output.Formats = req.Formats
	}
	if req.Where != nil {
		cfg.Input.Where = *req.Where
	}
	return &cfg, nil
}

// inputWithin resolves input against dir and rejects anything outside it.
// Relative inputs are taken relative to dir.
func inputWithin(dir, input string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	path := input
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errInputOutsideDir, input)
	}
	return path, nil
}

// POST /v1/runs: run the pipeline synchronously with optional overrides.
func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	cfg, err := req.apply(h.loader.Config())
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err := config.Validate(cfg, h.eng.Formats()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res, err := h.eng.Run(r.Context(), cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /v1/runs/latest: summary of the last successful run.
func (h *Handler) latestRun(w http.ResponseWriter, r *http.Request) {
	res := h.eng.Latest()
	if res == nil {
		writeError(w, http.StatusNotFound, "no completed run")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /v1/threads/{link_id}: one thread of the last successful run.
func (h *Handler) getThread(w http.ResponseWriter, r *http.Request) {
	res := h.eng.Latest()
	if res == nil {
		writeError(w, http.StatusNotFound, "no completed run")
		return
	}
	linkID := r.PathValue("link_id")
	v, ok := res.Thread(linkID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("thread %q not found", linkID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": res.RunID,
		"thread": v,
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 until a run has completed.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	res := h.eng.Latest()
	if res == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "warming_up",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"run_id": res.RunID,
	})
}
