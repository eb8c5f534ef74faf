package comment

import (
	"slices"
	"strconv"
)

// DedupeOptions control the per-id aggregation.
type DedupeOptions struct {
	// NumericColumns are averaged across duplicate rows. When empty, every
	// attribute whose non-empty values all parse as numbers is treated as
	// numeric.
	NumericColumns []string
	// CountColumn receives the number of rows merged into each id.
	// Empty disables the count.
	CountColumn string
}

// Dedupe collapses rows sharing an id into one row, in first-seen order.
// Linkage and metadata columns keep the first value, numeric indicator
// columns become the mean of their non-empty values, and CountColumn holds
// the group size. It is a single pass over the rows.
func Dedupe(t *Table, opts DedupeOptions) *Table {
	numeric := opts.NumericColumns
	if len(numeric) == 0 {
		numeric = detectNumeric(t)
	}
	isNumeric := make(map[string]bool, len(numeric))
	for _, col := range numeric {
		isNumeric[col] = true
	}

	type group struct {
		first *Comment
		sums  map[string]float64
		n     map[string]int
		rows  int
	}
	groups := make(map[string]*group)
	var order []string

	for _, c := range t.Rows {
		g, ok := groups[c.ID]
		if !ok {
			g = &group{first: c, sums: make(map[string]float64), n: make(map[string]int)}
			groups[c.ID] = g
			order = append(order, c.ID)
		}
		g.rows++
		for col := range isNumeric {
			v, ok := c.Attrs[col]
			if !ok || v == "" {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			g.sums[col] += f
			g.n[col]++
		}
	}

	out := t.Derive()
	if opts.CountColumn != "" && !slices.Contains(out.Attrs, opts.CountColumn) {
		out.Attrs = append(out.Attrs, opts.CountColumn)
	}
	for _, id := range order {
		g := groups[id]
		row := g.first.Clone()
		for col := range isNumeric {
			if g.n[col] == 0 {
				continue
			}
			row.Attrs[col] = formatFloat(g.sums[col] / float64(g.n[col]))
		}
		if opts.CountColumn != "" {
			row.Attrs[opts.CountColumn] = strconv.Itoa(g.rows)
		}
		out.Append(row)
	}
	return out
}

func detectNumeric(t *Table) []string {
	var out []string
	for _, col := range t.Attrs {
		seen := false
		ok := true
		for _, c := range t.Rows {
			v := c.Attrs[col]
			if v == "" {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				ok = false
				break
			}
			seen = true
		}
		if ok && seen {
			out = append(out, col)
		}
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
