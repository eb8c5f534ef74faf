package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gyaneshwarpardhi/threadgraph/internal/comment"
)

// SQLite writes every artifact as a table of one database file per output
// directory. A table is dropped and recreated on each write.
type SQLite struct{}

// DatabaseName is the file created inside the output directory.
const DatabaseName = "threadgraph.db"

// writeMu serializes writers; artifacts of one run share a database file.
var writeMu sync.Mutex

func (SQLite) Format() string { return "sqlite" }

func (SQLite) Write(ctx context.Context, dir, name string, t comment.Tabular) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("sqlite: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, DatabaseName)

	writeMu.Lock()
	defer writeMu.Unlock()
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=10000&_txlock=immediate")
	if err != nil {
		return "", fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	defer db.Close()

	if err := writeTable(ctx, db, name, t); err != nil {
		return "", fmt.Errorf("sqlite: table %s: %w", name, err)
	}
	return path + "#" + name, nil
}

func writeTable(ctx context.Context, db *sqlx.DB, name string, t comment.Tabular) error {
	header := t.Header()
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		cols[i] = quoteIdent(h) + " TEXT"
		marks[i] = "?"
	}
	table := quoteIdent(name)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))); err != nil {
		return err
	}
	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(header))
	for i := range t.Len() {
		for j, v := range t.Record(i) {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
