package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// derived columns are recomputed every run and never read from input.
var derived = map[string]struct{}{
	comment.ColParentIDClean: {},
	comment.ColDepth:         {},
}

// LoadFile reads a comment table from a CSV file on disk.
func LoadFile(path string) (*comment.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses a header-first CSV stream into a Table.
// A missing id, parent_id or link_id column is fatal, and a stream with no
// header at all counts as missing id. A header with zero rows is a valid
// empty table.
func ReadCSV(r io.Reader) (*comment.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &comment.MissingColumnError{Column: comment.ColID}
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range comment.RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &comment.MissingColumnError{Column: col}
		}
	}

	var attrs []string
	attrIdx := make(map[string]int)
	for i, name := range header {
		switch name {
		case comment.ColID, comment.ColParentID, comment.ColLinkID:
			continue
		}
		if _, skip := derived[name]; skip {
			continue
		}
		if _, dup := attrIdx[name]; dup || name == "" {
			continue
		}
		attrIdx[name] = i
		attrs = append(attrs, name)
	}

	t := comment.NewTable(attrs)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c := &comment.Comment{
			ID:       field(rec, index[comment.ColID]),
			ParentID: field(rec, index[comment.ColParentID]),
			LinkID:   field(rec, index[comment.ColLinkID]),
			Attrs:    make(map[string]string, len(attrs)),
		}
		for _, name := range attrs {
			c.Attrs[name] = field(rec, attrIdx[name])
		}
		t.Append(c)
	}
	return t, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
