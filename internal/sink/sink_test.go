package sink_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
	"github.com/gyaneshwarpardhi/threadgraph/internal/sink"
)

func sampleTable() *comment.Table {
	t := comment.NewTable([]string{"text", `odd "name"`})
	t.Append(
		&comment.Comment{ID: "a", LinkID: "t3_x", Attrs: map[string]string{"text": "hi, there", `odd "name"`: "1"}},
		&comment.Comment{ID: "b", ParentID: "t1_a", LinkID: "t3_x", Attrs: map[string]string{"text": "line\nbreak", `odd "name"`: "2"}},
	)
	return t
}

func TestRegistry(t *testing.T) {
	r := sink.Default()
	assert.Equal(t, []string{"csv", "sqlite"}, r.Formats())

	s, err := r.Get("csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", s.Format())

	_, err = r.Get("parquet")
	assert.Error(t, err)

	assert.Panics(t, func() { r.Register(sink.CSV{}) })
}

func TestCSVWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path, err := sink.CSV{}.Write(context.Background(), dir, "threads", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "threads.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "parent_id", "link_id", "text", `odd "name"`}, records[0])
	assert.Equal(t, []string{"b", "t1_a", "t3_x", "line\nbreak", "2"}, records[2])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestSQLiteWrite(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := sink.SQLite{}.Write(ctx, dir, "threads", sampleTable())
	require.NoError(t, err)
	// Rewriting replaces the table.
	path, err := sink.SQLite{}.Write(ctx, dir, "threads", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, sink.DatabaseName)+"#threads", path)

	db, err := sqlx.Connect("sqlite3", filepath.Join(dir, sink.DatabaseName))
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM threads`))
	assert.Equal(t, 2, count)

	var rows []struct {
		ID   string `db:"id"`
		Text string `db:"text"`
	}
	require.NoError(t, db.Select(&rows, `SELECT id, text FROM threads ORDER BY id`))
	require.Len(t, rows, 2)
	assert.Equal(t, "hi, there", rows[0].Text)
	assert.Equal(t, "line\nbreak", rows[1].Text)

	var odd string
	require.NoError(t, db.Get(&odd, `SELECT "odd ""name""" FROM threads WHERE id = 'b'`))
	assert.Equal(t, "2", odd)
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	r := sink.Default()
	artifacts := []sink.Artifact{
		{Name: "threads", Table: sampleTable()},
		{Name: "empty", Table: comment.NewTable(nil)},
	}

	written, err := r.WriteAll(context.Background(), dir, []string{"csv", "sqlite"}, artifacts)
	require.NoError(t, err)
	require.Len(t, written, 4)
	assert.Equal(t, sink.Written{Artifact: "threads", Format: "csv", Path: filepath.Join(dir, "threads.csv"), Rows: 2}, written[0])
	assert.Equal(t, "sqlite", written[3].Format)
	assert.Equal(t, 0, written[3].Rows)
	assert.FileExists(t, filepath.Join(dir, "empty.csv"))

	_, err = r.WriteAll(context.Background(), dir, []string{"xml"}, artifacts)
	assert.Error(t, err)
}
