package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// CSV writes one header-first CSV file per artifact.
type CSV struct{}

func (CSV) Format() string { return "csv" }

func (CSV) Write(ctx context.Context, dir, name string, t comment.Tabular) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("csv: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".csv")
	tmp, err := os.CreateTemp(dir, name+".*.csv.tmp")
	if err != nil {
		return "", fmt.Errorf("csv: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Header()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("csv: header: %w", err)
	}
	for i := range t.Len() {
		if i%4096 == 0 && ctx.Err() != nil {
			tmp.Close()
			return "", ctx.Err()
		}
		if err := w.Write(t.Record(i)); err != nil {
			tmp.Close()
			return "", fmt.Errorf("csv: row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("csv: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("csv: rename: %w", err)
	}
	return path, nil
}
