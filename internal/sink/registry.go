// Package sink writes tabular pipeline artifacts in the configured formats.
package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// Sink is the interface all output formats must satisfy.
type Sink interface {
	// Format returns the name this sink is registered under.
	Format() string
	// Write stores t as the artifact name inside dir and returns its path.
	Write(ctx context.Context, dir, name string, t comment.Tabular) (string, error)
}

// Registry maps format names to sinks.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]Sink
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]Sink)}
}

// Default returns a registry with every built-in format.
func Default() *Registry {
	r := NewRegistry()
	r.Register(CSV{})
	r.Register(SQLite{})
	return r
}

// Register adds a sink. Panics on duplicate format to surface misconfiguration early.
func (r *Registry) Register(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sinks[s.Format()]; exists {
		panic(fmt.Sprintf("sink registry: duplicate format %q", s.Format()))
	}
	r.sinks[s.Format()] = s
}

// Get returns the sink for the given format.
func (r *Registry) Get(format string) (Sink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sinks[format]
	if !ok {
		return nil, fmt.Errorf("no sink registered for format %q", format)
	}
	return s, nil
}

// Formats returns all registered format names, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sinks))
	for k := range r.sinks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
