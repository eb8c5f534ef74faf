package thread

import (
	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// MaxDepths returns the maximum row depth observed per link id.
func MaxDepths(t *comment.Table) map[string]int {
	out := make(map[string]int)
	for _, c := range t.Rows {
		if d, ok := out[c.LinkID]; !ok || c.Depth > d {
			out[c.LinkID] = c.Depth
		}
	}
	return out
}

// Filter keeps every row of the threads whose maximum depth is at least
// minDepth and drops the others whole. A threshold of 0 keeps everything.
func Filter(t *comment.Table, minDepth int) *comment.Table {
	deepest := MaxDepths(t)
	out := t.Derive()
	for _, c := range t.Rows {
		if deepest[c.LinkID] >= minDepth {
			out.Append(c)
		}
	}
	return out
}
