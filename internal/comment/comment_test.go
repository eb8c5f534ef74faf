package comment_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

func TestResolveCoercesValues(t *testing.T) {
	c := &comment.Comment{
		ID:     "a",
		LinkID: "t3_x",
		Attrs:  map[string]string{"joy": "1", "example_very_unclear": "False", "text": "hi"},
	}

	tests := []struct {
		path []string
		want interface{}
		ok   bool
	}{
		{[]string{"joy"}, float64(1), true},
		{[]string{"example_very_unclear"}, false, true},
		{[]string{"text"}, "hi", true},
		{[]string{"id"}, "a", true},
		{[]string{"depth"}, float64(0), true},
		{[]string{"missing"}, nil, false},
		{[]string{"text", "nested"}, nil, false},
	}
	for _, tt := range tests {
		got, ok := c.Resolve(tt.path)
		assert.Equal(t, tt.ok, ok, "%v", tt.path)
		assert.Equal(t, tt.want, got, "%v", tt.path)
	}
}

func TestTableColumns(t *testing.T) {
	tbl := comment.NewTable([]string{"text"})
	assert.Equal(t, []string{"id", "parent_id", "link_id", "text"}, tbl.Columns())

	tbl.HasClean = true
	tbl.HasDepth = true
	tbl.Append(&comment.Comment{ID: "b", ParentID: "t1_a", ParentIDClean: "a", LinkID: "t3_x", Depth: 1, Attrs: map[string]string{"text": "yo"}})
	assert.Equal(t, []string{"id", "parent_id", "link_id", "text", "parent_id_clean", "depth"}, tbl.Header())
	assert.Equal(t, []string{"b", "t1_a", "t3_x", "yo", "a", "1"}, tbl.Record(0))
}

func TestLinkIDsFirstSeenOrder(t *testing.T) {
	tbl := comment.NewTable(nil)
	for _, link := range []string{"t3_b", "t3_a", "t3_b", "t3_c"} {
		tbl.Append(&comment.Comment{LinkID: link})
	}
	assert.Equal(t, []string{"t3_b", "t3_a", "t3_c"}, tbl.LinkIDs())
}

func TestCloneIsDeep(t *testing.T) {
	c := &comment.Comment{ID: "a", Attrs: map[string]string{"text": "x"}}
	cp := c.Clone()
	cp.Attrs["text"] = "y"
	assert.Equal(t, "x", c.Attrs["text"])
}

func TestMissingColumnError(t *testing.T) {
	var err error = &comment.MissingColumnError{Column: "link_id"}
	assert.True(t, errors.Is(err, comment.ErrMissingColumn))
	assert.Contains(t, err.Error(), "link_id")
}

func TestDedupe(t *testing.T) {
	tbl := comment.NewTable([]string{"text", "joy", "anger", "rater_id"})
	rows := []struct{ id, text, joy, anger, rater string }{
		{"a", "first", "1", "0", "r1"},
		{"b", "other", "0", "1", "r1"},
		{"a", "first again", "0", "", "r2"},
		{"a", "first", "1", "1", "r3"},
	}
	for _, r := range rows {
		tbl.Append(&comment.Comment{
			ID:     r.id,
			LinkID: "t3_x",
			Attrs:  map[string]string{"text": r.text, "joy": r.joy, "anger": r.anger, "rater_id": r.rater},
		})
	}

	out := comment.Dedupe(tbl, comment.DedupeOptions{CountColumn: "rater_count"})
	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"text", "joy", "anger", "rater_id", "rater_count"}, out.Attrs)

	a := out.Rows[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "first", a.Attrs["text"])
	assert.Equal(t, "0.6666666666666666", a.Attrs["joy"])
	assert.Equal(t, "0.5", a.Attrs["anger"])
	assert.Equal(t, "r1", a.Attrs["rater_id"])
	assert.Equal(t, "3", a.Attrs["rater_count"])

	b := out.Rows[1]
	assert.Equal(t, "b", b.ID)
	assert.Equal(t, "1", b.Attrs["anger"])
	assert.Equal(t, "1", b.Attrs["rater_count"])

	// The input is untouched.
	assert.Equal(t, 4, tbl.Len())
	assert.Equal(t, "1", tbl.Rows[0].Attrs["joy"])
}

func TestDedupeExplicitNumericColumns(t *testing.T) {
	tbl := comment.NewTable([]string{"joy", "score"})
	tbl.Append(
		&comment.Comment{ID: "a", Attrs: map[string]string{"joy": "1", "score": "10"}},
		&comment.Comment{ID: "a", Attrs: map[string]string{"joy": "0", "score": "20"}},
	)

	out := comment.Dedupe(tbl, comment.DedupeOptions{NumericColumns: []string{"joy"}})
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "0.5", out.Rows[0].Attrs["joy"])
	assert.Equal(t, "10", out.Rows[0].Attrs["score"])
	assert.Equal(t, []string{"joy", "score"}, out.Attrs)
}
