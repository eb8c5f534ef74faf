package config

// Config is the top-level YAML structure.
type Config struct {
	Version  string       `yaml:"version"`
	Input    InputConf    `yaml:"input"`
	Pipeline PipelineConf `yaml:"pipeline"`
	Output   OutputConf   `yaml:"output"`
}

// InputConf describes where comments come from and how they are prepared.
type InputConf struct {
	Path             string   `yaml:"path"`
	DedupeRaters     bool     `yaml:"dedupe_raters"`
	RaterCountColumn string   `yaml:"rater_count_column"`
	NumericColumns   []string `yaml:"numeric_columns"` // empty = auto-detect
	Where            string   `yaml:"where"`           // optional row predicate
}

// Pair sources.
const (
	PairsFromAll      = "all"
	PairsFromFiltered = "filtered"
)

// PipelineConf holds the thread-graph settings.
type PipelineConf struct {
	MinDepth  int    `yaml:"min_depth"`
	Workers   int    `yaml:"workers"`
	PairsFrom string `yaml:"pairs_from"`
}

// OutputConf controls which artifacts are written and where.
type OutputConf struct {
	Dir         string   `yaml:"dir"`
	Formats     []string `yaml:"formats"`
	ThreadsName string   `yaml:"threads_name"`
	PairsName   string   `yaml:"pairs_name"`
	StatsName   string   `yaml:"stats_name"`
}
