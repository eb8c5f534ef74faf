// Package refid normalizes prefixed reference identifiers such as "t1_abc".
package refid

import (
	"regexp"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// typeTag matches one letter, one or more digits and an underscore.
var typeTag = regexp.MustCompile(`^[A-Za-z][0-9]+_`)

// Normalize strips every leading type tag from raw. Inputs without a tag,
// including the empty (null) reference, are returned unchanged.
// Normalize(Normalize(r)) == Normalize(r) for every r.
func Normalize(raw string) string {
	for {
		loc := typeTag.FindStringIndex(raw)
		if loc == nil {
			return raw
		}
		raw = raw[loc[1]:]
	}
}

// Apply fills the derived parent_id_clean column of every row.
// The raw parent_id is left untouched.
func Apply(t *comment.Table) {
	for _, c := range t.Rows {
		c.ParentIDClean = Normalize(c.ParentID)
	}
	t.HasClean = true
}
