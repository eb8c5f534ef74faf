package thread

import (
	"strconv"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// Pair columns that are not role-suffixed attributes.
const (
	ColIDParent    = "id_parent"
	ColIDChild     = "id_child"
	ColDepthParent = "depth_parent"

	SuffixChild  = "_child"
	SuffixParent = "_parent"
)

// Pair is an adjacent parent→child relationship.
type Pair struct {
	Parent *comment.Comment
	Child  *comment.Comment
}

// PairTable is the joined parent/child projection of a comment table.
// It implements comment.Tabular.
type PairTable struct {
	Pairs []Pair
	// Candidates counts rows with a non-null normalized parent reference.
	Candidates int
	// Unresolved counts candidates whose parent id is not in the table.
	Unresolved int

	attrCols []string
}

// Pairs joins every row whose normalized parent reference resolves to a row
// id of t with that parent row. When an id occurs more than once the first
// row in table order is the parent. Rows whose parent does not resolve are
// left out and counted in Unresolved.
func Pairs(t *comment.Table, rep Reporter) *PairTable {
	byID := make(map[string]*comment.Comment, t.Len())
	for _, c := range t.Rows {
		if _, ok := byID[c.ID]; !ok {
			byID[c.ID] = c
		}
	}

	pt := &PairTable{}
	for _, col := range t.Columns() {
		if col == comment.ColID || col == comment.ColDepth {
			continue
		}
		pt.attrCols = append(pt.attrCols, col)
	}

	for _, c := range t.Rows {
		if !c.HasParent() {
			continue
		}
		pt.Candidates++
		p, ok := byID[c.ParentIDClean]
		if !ok {
			pt.Unresolved++
			continue
		}
		pt.Pairs = append(pt.Pairs, Pair{Parent: p, Child: c})
	}

	rep = reporterOrNop(rep)
	if pt.Unresolved > 0 {
		rep.Anomaly(AnomalyUnresolvedParent, "", pt.Unresolved)
	}
	rep.Stage("pairs", len(pt.Pairs))
	return pt
}

// Len implements comment.Tabular.
func (pt *PairTable) Len() int { return len(pt.Pairs) }

// Header implements comment.Tabular.
func (pt *PairTable) Header() []string {
	h := []string{ColIDParent, ColIDChild, comment.ColDepth, ColDepthParent}
	for _, col := range pt.attrCols {
		h = append(h, col+SuffixChild)
	}
	for _, col := range pt.attrCols {
		h = append(h, col+SuffixParent)
	}
	return h
}

// Record implements comment.Tabular.
func (pt *PairTable) Record(i int) []string {
	p := pt.Pairs[i]
	rec := make([]string, 0, 4+2*len(pt.attrCols))
	rec = append(rec, p.Parent.ID, p.Child.ID, strconv.Itoa(p.Child.Depth), strconv.Itoa(p.Parent.Depth))
	for _, col := range pt.attrCols {
		v, _ := p.Child.Value(col)
		rec = append(rec, v)
	}
	for _, col := range pt.attrCols {
		v, _ := p.Parent.Value(col)
		rec = append(rec, v)
	}
	return rec
}
