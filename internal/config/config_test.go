package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var formats = []string{"csv", "sqlite"}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestNewLoader_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	l, err := NewLoader("")
	require.NoError(t, err)
	cfg := l.Config()
	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, 1, cfg.Pipeline.MinDepth)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, PairsFromAll, cfg.Pipeline.PairsFrom)
	assert.Equal(t, []string{"csv"}, cfg.Output.Formats)
	assert.Equal(t, "parent_child_pairs", cfg.Output.PairsName)
	assert.NoError(t, Validate(cfg, formats))
}

func TestNewLoader_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	p := writeFile(t, dir, "threadgraph.yaml", `
version: v1
input:
  path: comments.csv
  dedupe_raters: true
  where: 'subreddit == "AskReddit"'
pipeline:
  min_depth: 0
  workers: 2
  pairs_from: filtered
output:
  dir: out
  formats: [csv, sqlite]
`)
	l, err := NewLoader(p)
	require.NoError(t, err)
	cfg := l.Config()
	assert.Equal(t, "comments.csv", cfg.Input.Path)
	assert.True(t, cfg.Input.DedupeRaters)
	assert.Equal(t, "rater_count", cfg.Input.RaterCountColumn)
	assert.Equal(t, 0, cfg.Pipeline.MinDepth, "explicit zero must survive defaults")
	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Equal(t, PairsFromFiltered, cfg.Pipeline.PairsFrom)
	assert.Equal(t, []string{"csv", "sqlite"}, cfg.Output.Formats)
	assert.NoError(t, Validate(cfg, formats))
}

func TestNewLoader_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvMinDepth, "3")
	t.Setenv(EnvInput, "other.csv")
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvOutputDir, "elsewhere")

	l, err := NewLoader("")
	require.NoError(t, err)
	cfg := l.Config()
	assert.Equal(t, 3, cfg.Pipeline.MinDepth)
	assert.Equal(t, "other.csv", cfg.Input.Path)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, "elsewhere", cfg.Output.Dir)
}

func TestNewLoader_BadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvMinDepth, "deep")
	_, err := NewLoader("")
	assert.ErrorContains(t, err, EnvMinDepth)
}

func TestNewLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Version = "v9"
	cfg.Pipeline.MinDepth = -1
	cfg.Pipeline.Workers = 0
	cfg.Pipeline.PairsFrom = "some"
	cfg.Input.Where = "joy =="
	cfg.Output.Formats = []string{"parquet", "csv", "csv"}

	err := Validate(cfg, formats)
	require.Error(t, err)
	for _, want := range []string{
		`version "v9"`,
		"min_depth must be >= 0",
		"workers must be >= 1",
		"pairs_from",
		"input.where",
		`unknown format "parquet"`,
		`duplicate format "csv"`,
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoader_ReloadNotifies(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	p := writeFile(t, dir, "cfg.yaml", "version: v1\npipeline:\n  min_depth: 2\n")
	l, err := NewLoader(p)
	require.NoError(t, err)

	got := make(chan int, 1)
	l.OnChange(func(c *Config) { got <- c.Pipeline.MinDepth })

	writeFile(t, dir, "cfg.yaml", "version: v1\npipeline:\n  min_depth: 5\n")
	cfg, err := l.Reload()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Pipeline.MinDepth)
	assert.Equal(t, 5, <-got)
	assert.Equal(t, 5, l.Config().Pipeline.MinDepth)
}

func TestLoader_WatchPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	p := writeFile(t, dir, "cfg.yaml", "version: v1\n")
	input := writeFile(t, dir, "in.csv", "id,parent_id,link_id\n")
	l, err := NewLoader(p)
	require.NoError(t, err)

	changed := make(chan struct{}, 16)
	l.OnChange(func(*Config) { changed <- struct{}{} })
	stop, err := l.Watch(nil, input)
	require.NoError(t, err)
	defer stop()

	writeFile(t, dir, "in.csv", "id,parent_id,link_id\na,,T\n")
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after input change")
	}
}

func TestInputWatch_FollowsNewInput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "new"), 0o755))
	p := writeFile(t, dir, "cfg.yaml", "version: v1\n")
	oldInput := writeFile(t, dir, "old/in.csv", "id,parent_id,link_id\n")
	newInput := writeFile(t, dir, "new/in.csv", "id,parent_id,link_id\n")
	l, err := NewLoader(p)
	require.NoError(t, err)

	changed := make(chan struct{}, 16)
	l.OnChange(func(*Config) { changed <- struct{}{} })
	w, err := l.WatchInput(nil, oldInput)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Follow(oldInput))
	assert.Equal(t, oldInput, w.Path())

	require.NoError(t, w.Follow(newInput))
	assert.Equal(t, newInput, w.Path())

	writeFile(t, dir, "new/in.csv", "id,parent_id,link_id\na,,T\n")
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after change to the followed input")
	}

	assert.Error(t, w.Follow(filepath.Join(dir, "missing", "in.csv")))
	assert.Equal(t, newInput, w.Path(), "failed follow keeps the previous watch")
}
