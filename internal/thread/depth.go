package thread

import (
	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// Ambiguity records a node reached from more than one root at different
// depths. The smaller depth is kept.
type Ambiguity struct {
	LinkID    string `json:"link_id"`
	ID        string `json:"id"`
	Kept      int    `json:"kept"`
	Discarded int    `json:"discarded"`
	Root      string `json:"root"` // root whose traversal produced Discarded
}

// DepthResult is the per-thread output of the depth calculation.
type DepthResult struct {
	LinkID      string
	Depth       map[string]int
	Roots       int
	MaxDepth    int
	Unreached   []string
	Ambiguities []Ambiguity
}

// Depths computes the hop count from the nearest root to every node with
// one breadth-first traversal per root. When two roots disagree the minimum
// depth wins. Nodes no traversal reaches (only possible on cyclic input)
// get depth 0 and are listed in Unreached.
func (g *Graph) Depths() DepthResult {
	res := DepthResult{
		LinkID: g.linkID,
		Depth:  make(map[string]int, len(g.nodes)),
	}
	roots := g.Roots()
	res.Roots = len(roots)

	dist := make(map[string]int)
	var queue, visited []string
	for _, root := range roots {
		visited = visited[:0]
		dist[root] = 0
		queue = append(queue[:0], root)
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			visited = append(visited, id)
			for _, child := range g.nodes[id].Children {
				if _, seen := dist[child]; seen {
					continue
				}
				dist[child] = dist[id] + 1
				queue = append(queue, child)
			}
		}

		for _, id := range visited {
			d := dist[id]
			prev, ok := res.Depth[id]
			switch {
			case !ok:
				res.Depth[id] = d
			case prev == d:
			case d < prev:
				res.Ambiguities = append(res.Ambiguities, Ambiguity{LinkID: g.linkID, ID: id, Kept: d, Discarded: prev, Root: root})
				res.Depth[id] = d
			default:
				res.Ambiguities = append(res.Ambiguities, Ambiguity{LinkID: g.linkID, ID: id, Kept: prev, Discarded: d, Root: root})
			}
		}
		// Reset only the keys this traversal set.
		for _, id := range visited {
			delete(dist, id)
		}
	}

	for _, id := range g.order {
		if _, ok := res.Depth[id]; !ok {
			res.Depth[id] = 0
			res.Unreached = append(res.Unreached, id)
		}
	}
	for _, d := range res.Depth {
		if d > res.MaxDepth {
			res.MaxDepth = d
		}
	}
	return res
}

// Depths maps a link id to its thread's depth result.
type Depths map[string]DepthResult

// Of returns the depth of a comment in its own thread, 0 if unknown.
func (d Depths) Of(linkID, id string) int {
	return d[linkID].Depth[id]
}

// ComputeDepths runs the depth calculation over every thread sequentially.
func ComputeDepths(f *Forest, rep Reporter) Depths {
	graphs := f.Graphs()
	results := make([]DepthResult, len(graphs))
	for i, g := range graphs {
		results[i] = g.Depths()
	}
	return MergeDepths(results, rep)
}

// MergeDepths combines per-thread results, reporting their anomalies in
// slice order. Link ids partition the input, so no two results collide.
func MergeDepths(results []DepthResult, rep Reporter) Depths {
	rep = reporterOrNop(rep)
	out := make(Depths, len(results))
	for _, r := range results {
		for _, a := range r.Ambiguities {
			rep.Ambiguous(a)
		}
		if n := len(r.Unreached); n > 0 {
			rep.Anomaly(AnomalyUnreached, r.LinkID, n)
		}
		out[r.LinkID] = r
	}
	return out
}

// Annotate sets the depth of every row from its own thread's result.
// Rows without a computed depth default to 0.
func Annotate(t *comment.Table, d Depths, rep Reporter) {
	for _, c := range t.Rows {
		c.Depth = d.Of(c.LinkID, c.ID)
	}
	t.HasDepth = true
	reporterOrNop(rep).Stage("depth", t.Len())
}
