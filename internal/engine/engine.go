package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
	"github.com/gyaneshwarpardhi/threadgraph/internal/condition"
	"github.com/gyaneshwarpardhi/threadgraph/internal/config"
	"github.com/gyaneshwarpardhi/threadgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/threadgraph/internal/refid"
	"github.com/gyaneshwarpardhi/threadgraph/internal/sink"
	"github.com/gyaneshwarpardhi/threadgraph/internal/source"
	"github.com/gyaneshwarpardhi/threadgraph/internal/thread"
)

// ErrUnknownField is returned when the row predicate names a column the
// input does not have.
var ErrUnknownField = errors.New("unknown field in where expression")

// Counts are the row and thread totals of one run.
type Counts struct {
	InputRows   int `json:"input_rows"`
	Rows        int `json:"rows"`
	Threads     int `json:"threads"`
	KeptThreads int `json:"kept_threads"`
	KeptRows    int `json:"kept_rows"`
	Pairs       int `json:"pairs"`
	Unresolved  int `json:"unresolved_parents"`
	Ambiguities int `json:"ambiguous_depths"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID      string         `json:"run_id"`
	Input      string         `json:"input"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMs int64          `json:"duration_ms"`
	Counts     Counts         `json:"counts"`
	Anomalies  map[string]int `json:"anomalies"`
	Summary    thread.Summary `json:"summary"`
	Artifacts  []sink.Written `json:"artifacts,omitempty"`

	Annotated *comment.Table     `json:"-"`
	Filtered  *comment.Table     `json:"-"`
	Pairs     *thread.PairTable  `json:"-"`
	Stats     *thread.StatsTable `json:"-"`
	Depths    thread.Depths      `json:"-"`
}

// ThreadView is the detail of one thread in a result.
type ThreadView struct {
	Stats       thread.Stats        `json:"stats"`
	Kept        bool                `json:"kept"`
	Ambiguities []thread.Ambiguity  `json:"ambiguities,omitempty"`
	Unreached   []string            `json:"unreached,omitempty"`
	Comments    []map[string]string `json:"comments"`
}

// Thread returns the view of linkID, or false if the run has no such thread.
func (r *Result) Thread(linkID string) (*ThreadView, bool) {
	st, ok := r.Stats.Lookup(linkID)
	if !ok {
		return nil, false
	}
	d := r.Depths[linkID]
	v := &ThreadView{
		Stats:       st,
		Ambiguities: d.Ambiguities,
		Unreached:   d.Unreached,
		Comments:    []map[string]string{},
	}
	cols := r.Annotated.Columns()
	for _, c := range r.Annotated.Rows {
		if c.LinkID != linkID {
			continue
		}
		row := make(map[string]string, len(cols))
		for i, val := range r.Annotated.RowValues(c) {
			row[cols[i]] = val
		}
		v.Comments = append(v.Comments, row)
	}
	for _, c := range r.Filtered.Rows {
		if c.LinkID == linkID {
			v.Kept = true
			break
		}
	}
	return v, true
}

// Engine runs the thread-graph pipeline and keeps the latest result.
type Engine struct {
	log    *slog.Logger
	sinks  *sink.Registry
	latest atomic.Pointer[Result]
	runMu  sync.Mutex
}

// New creates an Engine writing artifacts through sinks.
func New(log *slog.Logger, sinks *sink.Registry) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if sinks == nil {
		sinks = sink.Default()
	}
	return &Engine{log: log, sinks: sinks}
}

// Formats returns the output formats the engine can write.
func (e *Engine) Formats() []string {
	return e.sinks.Formats()
}

// Latest returns the most recent successful result, or nil.
func (e *Engine) Latest() *Result {
	return e.latest.Load()
}

// Run loads the configured input, processes it and writes every artifact.
// Runs are serialized; the result becomes Latest only when it fully succeeds.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	log := e.log.With("run_id", runID)
	log.Info("run started", "input", cfg.Input.Path)

	res, err := e.run(ctx, log, runID, cfg)
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		log.Error("run failed", "err", err)
		return nil, err
	}
	res.StartedAt = start
	res.DurationMs = time.Since(start).Milliseconds()
	metrics.RunsTotal.WithLabelValues("success").Inc()
	e.latest.Store(res)
	log.Info("run finished",
		"threads", res.Counts.Threads,
		"kept_threads", res.Counts.KeptThreads,
		"pairs", res.Counts.Pairs,
		"duration_ms", res.DurationMs)
	return res, nil
}

func (e *Engine) run(ctx context.Context, log *slog.Logger, runID string, cfg *config.Config) (*Result, error) {
	t, err := source.LoadFile(cfg.Input.Path)
	if err != nil {
		return nil, err
	}
	rep := NewLogReporter(log)
	res, err := Process(ctx, cfg, t, rep)
	if err != nil {
		return nil, err
	}
	res.RunID = runID
	res.Input = cfg.Input.Path

	artifacts := []sink.Artifact{
		{Name: cfg.Output.ThreadsName, Table: res.Filtered},
		{Name: cfg.Output.PairsName, Table: res.Pairs},
		{Name: cfg.Output.StatsName, Table: res.Stats},
	}
	written, err := e.sinks.WriteAll(ctx, cfg.Output.Dir, cfg.Output.Formats, artifacts)
	if err != nil {
		for _, f := range cfg.Output.Formats {
			metrics.ArtifactsWritten.WithLabelValues(f, "error").Inc()
		}
		return nil, err
	}
	for _, w := range written {
		metrics.ArtifactsWritten.WithLabelValues(w.Format, "success").Inc()
		log.Info("artifact written", "artifact", w.Artifact, "format", w.Format, "path", w.Path, "rows", w.Rows)
	}
	res.Artifacts = written
	return res, nil
}

// Process runs every pipeline stage over t in memory. t is modified in
// place by normalization and depth annotation.
func Process(ctx context.Context, cfg *config.Config, t *comment.Table, rep *LogReporter) (*Result, error) {
	if rep == nil {
		rep = NewLogReporter(nil)
	}
	res := &Result{Counts: Counts{InputRows: t.Len()}}
	rep.Stage("load", t.Len())

	if cfg.Input.Where != "" {
		filtered, err := applyWhere(t, cfg.Input.Where)
		if err != nil {
			return nil, err
		}
		t = filtered
		rep.Stage("where", t.Len())
	}
	if cfg.Input.DedupeRaters {
		t = comment.Dedupe(t, comment.DedupeOptions{
			NumericColumns: cfg.Input.NumericColumns,
			CountColumn:    cfg.Input.RaterCountColumn,
		})
		rep.Stage("dedupe", t.Len())
	}

	refid.Apply(t)
	rep.Stage("normalize", t.Len())

	forest := thread.Build(t, rep)
	metrics.ThreadsBuilt.Set(float64(forest.Len()))

	depths, err := computeDepths(ctx, forest, cfg.Pipeline.Workers, rep)
	if err != nil {
		return nil, err
	}
	thread.Annotate(t, depths, rep)

	filtered := thread.Filter(t, cfg.Pipeline.MinDepth)
	rep.Stage("filter", filtered.Len())

	pairSource := t
	if cfg.Pipeline.PairsFrom == config.PairsFromFiltered {
		pairSource = filtered
	}
	pairs := thread.Pairs(pairSource, rep)

	stats := thread.Statistics(forest, depths)
	rep.Stage("stats", stats.Len())

	res.Annotated = t
	res.Filtered = filtered
	res.Pairs = pairs
	res.Stats = stats
	res.Depths = depths
	res.Summary = stats.Summarize(depths)
	res.Anomalies = rep.Anomalies()
	res.Counts.Rows = t.Len()
	res.Counts.Threads = forest.Len()
	res.Counts.KeptRows = filtered.Len()
	res.Counts.KeptThreads = len(filtered.LinkIDs())
	res.Counts.Pairs = pairs.Len()
	res.Counts.Unresolved = pairs.Unresolved
	res.Counts.Ambiguities = rep.Ambiguities()
	return res, nil
}

// applyWhere keeps the rows matching the predicate src.
func applyWhere(t *comment.Table, src string) (*comment.Table, error) {
	expr, err := condition.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	cols := t.Columns()
	for _, path := range condition.Fields(expr) {
		if len(path) != 1 || !slices.Contains(cols, path[0]) {
			return nil, fmt.Errorf("%w: %v", ErrUnknownField, path)
		}
	}
	out := t.Derive()
	for _, c := range t.Rows {
		ok, err := condition.Evaluate(expr, c)
		if err != nil {
			return nil, fmt.Errorf("where: row %s: %w", c.ID, err)
		}
		if ok {
			out.Append(c)
		}
	}
	return out, nil
}
