package thread

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// Stats describes the shape of one thread.
type Stats struct {
	LinkID   string `json:"link_id"`
	Comments int    `json:"num_comments"`
	Roots    int    `json:"num_root_comments"`
	MaxDepth int    `json:"max_depth"`
	Edges    int    `json:"num_edges"`
}

// Summary aggregates Stats over a forest.
type Summary struct {
	Threads        int         `json:"threads"`
	Comments       int         `json:"comments"`
	Edges          int         `json:"edges"`
	MeanMaxDepth   float64     `json:"mean_max_depth"`
	StdDevMaxDepth float64     `json:"stddev_max_depth"`
	MedianMaxDepth float64     `json:"median_max_depth"`
	DeepestThread  string      `json:"deepest_thread,omitempty"`
	Distribution   map[int]int `json:"depth_distribution"` // depth → comments
}

// StatsTable is the per-thread statistics projection.
// It implements comment.Tabular.
type StatsTable struct {
	Rows []Stats
}

// Statistics returns one Stats per thread in forest order.
func Statistics(f *Forest, d Depths) *StatsTable {
	st := &StatsTable{}
	for _, g := range f.Graphs() {
		r := d[g.LinkID()]
		st.Rows = append(st.Rows, Stats{
			LinkID:   g.LinkID(),
			Comments: g.NodeCount(),
			Roots:    len(g.Roots()),
			MaxDepth: r.MaxDepth,
			Edges:    g.EdgeCount(),
		})
	}
	return st
}

// Summarize computes forest-wide figures. The distribution counts nodes,
// not rows, so duplicate ids are counted once.
func (st *StatsTable) Summarize(d Depths) Summary {
	s := Summary{Threads: len(st.Rows), Distribution: make(map[int]int)}
	if len(st.Rows) == 0 {
		return s
	}
	depths := make([]float64, len(st.Rows))
	deepest := -1
	for i, r := range st.Rows {
		s.Comments += r.Comments
		s.Edges += r.Edges
		depths[i] = float64(r.MaxDepth)
		if r.MaxDepth > deepest {
			deepest = r.MaxDepth
			s.DeepestThread = r.LinkID
		}
	}
	for _, r := range d {
		for _, depth := range r.Depth {
			s.Distribution[depth]++
		}
	}
	s.MeanMaxDepth, s.StdDevMaxDepth = stat.MeanStdDev(depths, nil)
	if len(depths) < 2 {
		s.StdDevMaxDepth = 0
	}
	sort.Float64s(depths)
	s.MedianMaxDepth = stat.Quantile(0.5, stat.Empirical, depths, nil)
	return s
}

// Lookup returns the stats of one thread.
func (st *StatsTable) Lookup(linkID string) (Stats, bool) {
	i := sort.Search(len(st.Rows), func(i int) bool { return st.Rows[i].LinkID >= linkID })
	if i < len(st.Rows) && st.Rows[i].LinkID == linkID {
		return st.Rows[i], true
	}
	return Stats{}, false
}

// Len implements comment.Tabular.
func (st *StatsTable) Len() int { return len(st.Rows) }

// Header implements comment.Tabular.
func (st *StatsTable) Header() []string {
	return []string{comment.ColLinkID, "num_comments", "num_root_comments", "max_depth", "num_edges"}
}

// Record implements comment.Tabular.
func (st *StatsTable) Record(i int) []string {
	r := st.Rows[i]
	return []string{
		r.LinkID,
		strconv.Itoa(r.Comments),
		strconv.Itoa(r.Roots),
		strconv.Itoa(r.MaxDepth),
		strconv.Itoa(r.Edges),
	}
}
