package thread

import (
	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// Build partitions t by link id and constructs one Graph per thread.
// Rows are expected to carry a normalized parent reference (see refid.Apply).
// A row whose parent does not resolve inside its own thread stays an
// edgeless root; that is how top-level comments and replies to deleted or
// external ancestors are encoded, not an error.
func Build(t *comment.Table, rep Reporter) *Forest {
	rep = reporterOrNop(rep)
	f := NewForest()

	members := make(map[string][]*comment.Comment)
	duplicates := make(map[string]int)
	for _, c := range t.Rows {
		g := f.Graph(c.LinkID)
		if !g.AddNode(c) {
			duplicates[c.LinkID]++
		}
		members[c.LinkID] = append(members[c.LinkID], c)
	}

	for _, g := range f.Graphs() {
		link := g.LinkID()
		if n := duplicates[link]; n > 0 {
			rep.Anomaly(AnomalyDuplicateID, link, n)
		}
		selfRefs := 0
		for _, c := range members[link] {
			parent := c.ParentIDClean
			if parent == "" {
				continue
			}
			if parent == c.ID {
				selfRefs++
				continue
			}
			if g.Has(parent) {
				g.AddEdge(parent, c.ID)
			}
		}
		if selfRefs > 0 {
			rep.Anomaly(AnomalySelfReference, link, selfRefs)
		}
	}

	rep.Stage("build", f.NodeCount())
	return f
}
