package thread

import (
	"github.com/tidwall/btree"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// Node is one comment in a thread graph.
type Node struct {
	Comment  *comment.Comment
	Children []string // ordered child ids
	Parents  []string // more than one only on corrupted input
}

// Graph holds the comments of one thread and their parent→child adjacency.
// It is immutable once built.
type Graph struct {
	linkID string
	nodes  map[string]*Node
	order  []string // node ids in insertion order
	edges  int
}

// NewGraph allocates an empty Graph for a thread.
func NewGraph(linkID string) *Graph {
	return &Graph{
		linkID: linkID,
		nodes:  make(map[string]*Node),
	}
}

// AddNode registers c by its id. It returns false when the id is already
// present; the first payload is kept.
func (g *Graph) AddNode(c *comment.Comment) bool {
	if _, ok := g.nodes[c.ID]; ok {
		return false
	}
	g.nodes[c.ID] = &Node{Comment: c}
	g.order = append(g.order, c.ID)
	return true
}

// AddEdge records child as a direct successor of parent. Both must be
// registered; self loops and repeated edges are ignored.
func (g *Graph) AddEdge(parentID, childID string) bool {
	if parentID == childID {
		return false
	}
	p, ok := g.nodes[parentID]
	if !ok {
		return false
	}
	c, ok := g.nodes[childID]
	if !ok {
		return false
	}
	for _, existing := range p.Children {
		if existing == childID {
			return false
		}
	}
	p.Children = append(p.Children, childID)
	c.Parents = append(c.Parents, parentID)
	g.edges++
	return true
}

// LinkID returns the thread identifier.
func (g *Graph) LinkID() string { return g.linkID }

// Node returns a node by id (nil if not found).
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Has reports whether id is a node of this thread.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Children returns the direct successors of a node.
func (g *Graph) Children(id string) []string {
	if n, ok := g.nodes[id]; ok {
		return n.Children
	}
	return nil
}

// InDegree returns the number of in-thread parents of a node.
func (g *Graph) InDegree(id string) int {
	if n, ok := g.nodes[id]; ok {
		return len(n.Parents)
	}
	return 0
}

// Roots returns the nodes with in-degree 0 in insertion order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.nodes[id].Parents) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// NodeIDs returns every node id in insertion order.
func (g *Graph) NodeIDs() []string { return g.order }

// NodeCount returns the total number of registered nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the total number of parent→child edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Forest is the set of thread graphs of one run, ordered by link id.
type Forest struct {
	threads btree.Map[string, *Graph]
}

// NewForest allocates an empty Forest.
func NewForest() *Forest { return &Forest{} }

// Graph returns the graph of a thread, creating it on first use.
func (f *Forest) Graph(linkID string) *Graph {
	if g, ok := f.threads.Get(linkID); ok {
		return g
	}
	g := NewGraph(linkID)
	f.threads.Set(linkID, g)
	return g
}

// Lookup returns the graph of a thread if it exists.
func (f *Forest) Lookup(linkID string) (*Graph, bool) {
	return f.threads.Get(linkID)
}

// Len returns the number of threads.
func (f *Forest) Len() int { return f.threads.Len() }

// Graphs returns every thread graph in ascending link id order.
func (f *Forest) Graphs() []*Graph {
	out := make([]*Graph, 0, f.threads.Len())
	f.threads.Scan(func(_ string, g *Graph) bool {
		out = append(out, g)
		return true
	})
	return out
}

// NodeCount returns the number of nodes across all threads.
func (f *Forest) NodeCount() int {
	n := 0
	f.threads.Scan(func(_ string, g *Graph) bool {
		n += g.NodeCount()
		return true
	})
	return n
}
