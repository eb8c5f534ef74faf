package sink

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// Artifact is one named table to persist.
type Artifact struct {
	Name  string
	Table comment.Tabular
}

// Written records where an artifact landed.
type Written struct {
	Artifact string `json:"artifact"`
	Format   string `json:"format"`
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
}

// WriteAll writes every artifact in every format concurrently. The first
// failure cancels the remaining writes.
func (r *Registry) WriteAll(ctx context.Context, dir string, formats []string, artifacts []Artifact) ([]Written, error) {
	sinks := make([]Sink, len(formats))
	for i, f := range formats {
		s, err := r.Get(f)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}

	out := make([]Written, len(sinks)*len(artifacts))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range sinks {
		for j, a := range artifacts {
			slot := i*len(artifacts) + j
			g.Go(func() error {
				path, err := s.Write(ctx, dir, a.Name, a.Table)
				if err != nil {
					return fmt.Errorf("write %s as %s: %w", a.Name, s.Format(), err)
				}
				out[slot] = Written{Artifact: a.Name, Format: s.Format(), Path: path, Rows: a.Table.Len()}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
