package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file and before CLI flags.
const (
	EnvInput     = "THREADGRAPH_INPUT"
	EnvMinDepth  = "THREADGRAPH_MIN_DEPTH"
	EnvOutputDir = "THREADGRAPH_OUTPUT_DIR"
	EnvWorkers   = "THREADGRAPH_WORKERS"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := newConfig()
	applyDefaults(cfg)
	return cfg
}

// Loader reads a YAML config file and watches it, and optionally further
// files such as the input table, for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
}

// NewLoader creates a Loader and performs the initial load. An empty path
// yields the defaults plus environment overrides.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the config file path (may be empty).
func (l *Loader) Path() string { return l.path }

// Config returns the current (latest) configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that reloads the config when the config
// file or any of extra changes, then notifies OnChange callbacks. Load errors
// are passed to onErr and the previous config stays in effect.
// Call the returned stop function to clean up.
func (l *Loader) Watch(onErr func(error), extra ...string) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	var paths []string
	if l.path != "" {
		paths = append(paths, l.path)
	}
	paths = append(paths, extra...)
	for _, p := range paths {
		// Watch the directory so editors that replace the file are seen.
		if err := w.Add(filepath.Dir(p)); err != nil {
			w.Close()
			return nil, fmt.Errorf("config watcher add %s: %w", p, err)
		}
	}
	watched := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		watched[filepath.Clean(p)] = struct{}{}
	}
	if onErr == nil {
		onErr = func(error) {}
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if _, ok := watched[filepath.Clean(ev.Name)]; !ok {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						onErr(err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				onErr(err)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the config file.
func (l *Loader) Reload() (*Config, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*Config), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) load() (*Config, error) {
	// A missing .env is normal; existing variables win over the file.
	_ = godotenv.Load()

	cfg := newConfig()
	if l.path != "" {
		data, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", l.path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", l.path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// newConfig returns a Config holding the defaults whose zero value is
// meaningful, so that an explicit min_depth: 0 in the file survives.
func newConfig() *Config {
	return &Config{Pipeline: PipelineConf{MinDepth: 1}}
}

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "v1"
	}
	if cfg.Input.Path == "" {
		cfg.Input.Path = "data/goemotions_local.csv"
	}
	if cfg.Input.RaterCountColumn == "" {
		cfg.Input.RaterCountColumn = "rater_count"
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 8
	}
	if cfg.Pipeline.PairsFrom == "" {
		cfg.Pipeline.PairsFrom = PairsFromAll
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "data"
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{"csv"}
	}
	if cfg.Output.ThreadsName == "" {
		cfg.Output.ThreadsName = "threads_with_replies"
	}
	if cfg.Output.PairsName == "" {
		cfg.Output.PairsName = "parent_child_pairs"
	}
	if cfg.Output.StatsName == "" {
		cfg.Output.StatsName = "thread_stats"
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvInput); v != "" {
		cfg.Input.Path = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv(EnvMinDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinDepth, err)
		}
		cfg.Pipeline.MinDepth = n
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Pipeline.Workers = n
	}
	return nil
}

// InputWatch is a Watch over the config file and one input file that can be
// moved to a new input path when a reload changes it.
type InputWatch struct {
	l     *Loader
	onErr func(error)

	mu   sync.Mutex
	path string
	stop func()
}

// WatchInput starts a Watch covering the config file and input.
func (l *Loader) WatchInput(onErr func(error), input string) (*InputWatch, error) {
	w := &InputWatch{l: l, onErr: onErr}
	if err := w.Follow(input); err != nil {
		return nil, err
	}
	return w, nil
}

// Follow moves the watch to input. It is a no-op when input is already
// watched. On error the previous watch stays in effect.
func (w *InputWatch) Follow(input string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil && filepath.Clean(input) == filepath.Clean(w.path) {
		return nil
	}
	stop, err := w.l.Watch(w.onErr, input)
	if err != nil {
		return err
	}
	if w.stop != nil {
		w.stop()
	}
	w.path, w.stop = input, stop
	return nil
}

// Path returns the watched input path.
func (w *InputWatch) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Stop ends the watch.
func (w *InputWatch) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		w.stop()
		w.stop = nil
	}
}
