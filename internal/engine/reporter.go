package engine

import (
	"log/slog"
	"sync"

	"github.com/gyaneshwarpardhi/threadgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/threadgraph/internal/thread"
)

// LogReporter logs pipeline events and mirrors them into Prometheus.
// It also tallies anomalies so a run can report them.
type LogReporter struct {
	log *slog.Logger

	mu          sync.Mutex
	anomalies   map[string]int
	ambiguities int
	stages      map[string]int
}

// NewLogReporter returns a reporter writing to log.
func NewLogReporter(log *slog.Logger) *LogReporter {
	if log == nil {
		log = slog.Default()
	}
	return &LogReporter{
		log:       log,
		anomalies: make(map[string]int),
		stages:    make(map[string]int),
	}
}

func (r *LogReporter) Stage(name string, rows int) {
	r.mu.Lock()
	r.stages[name] = rows
	r.mu.Unlock()
	metrics.StageRows.WithLabelValues(name).Set(float64(rows))
	r.log.Info("stage complete", "stage", name, "rows", rows)
}

func (r *LogReporter) Anomaly(kind, linkID string, count int) {
	r.mu.Lock()
	r.anomalies[kind] += count
	r.mu.Unlock()
	metrics.Anomalies.WithLabelValues(kind).Add(float64(count))
	if linkID == "" {
		r.log.Warn("data anomaly", "kind", kind, "count", count)
		return
	}
	r.log.Warn("data anomaly", "kind", kind, "link_id", linkID, "count", count)
}

func (r *LogReporter) Ambiguous(a thread.Ambiguity) {
	r.mu.Lock()
	r.ambiguities++
	r.mu.Unlock()
	metrics.AmbiguousDepths.Inc()
	r.log.Warn("ambiguous depth",
		"link_id", a.LinkID, "id", a.ID, "kept", a.Kept, "discarded", a.Discarded, "root", a.Root)
}

// Anomalies returns a copy of the anomaly tallies by kind.
func (r *LogReporter) Anomalies() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.anomalies))
	for k, v := range r.anomalies {
		out[k] = v
	}
	return out
}

// Ambiguities returns how many ambiguous depths were reported.
func (r *LogReporter) Ambiguities() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ambiguities
}

// StageRows returns the row count reported by a stage.
func (r *LogReporter) StageRows(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stages[name]
}
