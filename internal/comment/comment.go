package comment

import (
	"strconv"
	"strings"
)

// Required and derived column names.
const (
	ColID            = "id"
	ColParentID      = "parent_id"
	ColLinkID        = "link_id"
	ColParentIDClean = "parent_id_clean"
	ColDepth         = "depth"
)

// RequiredColumns must be present in every input table.
var RequiredColumns = []string{ColID, ColParentID, ColLinkID}

// Comment is one input row. Everything other than the linkage fields is
// carried opaquely in Attrs. An empty ParentID is the null reference.
type Comment struct {
	ID            string
	ParentID      string
	ParentIDClean string
	LinkID        string
	Depth         int
	Attrs         map[string]string
}

// HasParent reports whether the normalized parent reference is non-null.
func (c *Comment) HasParent() bool { return c.ParentIDClean != "" }

// Value returns the raw string value of a column.
func (c *Comment) Value(col string) (string, bool) {
	switch col {
	case ColID:
		return c.ID, true
	case ColParentID:
		return c.ParentID, true
	case ColParentIDClean:
		return c.ParentIDClean, true
	case ColLinkID:
		return c.LinkID, true
	case ColDepth:
		return strconv.Itoa(c.Depth), true
	}
	v, ok := c.Attrs[col]
	return v, ok
}

// Resolve implements condition.EvalContext. Only single-segment paths are
// meaningful for a flat row; values that parse as numbers or booleans are
// returned typed so comparisons behave numerically.
func (c *Comment) Resolve(path []string) (interface{}, bool) {
	if len(path) != 1 {
		return nil, false
	}
	raw, ok := c.Value(path[0])
	if !ok {
		return nil, false
	}
	return coerce(raw), true
}

func coerce(raw string) interface{} {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

// Clone returns a deep copy of the comment.
func (c *Comment) Clone() *Comment {
	cp := *c
	cp.Attrs = make(map[string]string, len(c.Attrs))
	for k, v := range c.Attrs {
		cp.Attrs[k] = v
	}
	return &cp
}

// Tabular is the row-oriented view consumed by output sinks.
type Tabular interface {
	Header() []string
	Len() int
	Record(i int) []string
}

// Table is an ordered set of comments sharing one attribute schema.
type Table struct {
	// Attrs lists the opaque attribute columns in input order.
	Attrs []string
	Rows  []*Comment

	// Derived columns present in Header.
	HasClean bool
	HasDepth bool
}

// NewTable creates an empty table with the given attribute columns.
func NewTable(attrs []string) *Table {
	return &Table{Attrs: append([]string(nil), attrs...)}
}

// Derive returns an empty table with the same schema as t.
func (t *Table) Derive() *Table {
	out := NewTable(t.Attrs)
	out.HasClean = t.HasClean
	out.HasDepth = t.HasDepth
	return out
}

// Append adds rows to the table.
func (t *Table) Append(rows ...*Comment) {
	t.Rows = append(t.Rows, rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Columns returns every column name in output order.
func (t *Table) Columns() []string {
	cols := []string{ColID, ColParentID, ColLinkID}
	cols = append(cols, t.Attrs...)
	if t.HasClean {
		cols = append(cols, ColParentIDClean)
	}
	if t.HasDepth {
		cols = append(cols, ColDepth)
	}
	return cols
}

// Header implements Tabular.
func (t *Table) Header() []string { return t.Columns() }

// Record implements Tabular.
func (t *Table) Record(i int) []string {
	return t.RowValues(t.Rows[i])
}

// RowValues flattens a row following Columns order.
func (t *Table) RowValues(c *Comment) []string {
	cols := t.Columns()
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i], _ = c.Value(col)
	}
	return out
}

// LinkIDs returns the distinct thread identifiers in first-seen order.
func (t *Table) LinkIDs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range t.Rows {
		if _, ok := seen[c.LinkID]; ok {
			continue
		}
		seen[c.LinkID] = struct{}{}
		out = append(out, c.LinkID)
	}
	return out
}
