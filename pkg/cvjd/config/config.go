package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/cvjd/pkg/cvjd/featurize"
	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
)

// Config describes one batch invocation
type Config struct {
	Input       InputConfig             `yaml:"input"`
	Output      OutputConfig            `yaml:"output"`
	Log         LogConfig               `yaml:"log"`
	Stoplist    string                  `yaml:"stoplist"`
	Aliases     string                  `yaml:"aliases"`
	Parallelism int                     `yaml:"parallelism"`
	Columns     map[string]ColumnConfig `yaml:"columns"`
	Groups      []GroupConfig           `yaml:"groups"`
}

// InputConfig locates the record table
type InputConfig struct {
	Path     string `yaml:"path"`
	IDColumn string `yaml:"id_column"`
}

// OutputConfig controls where feature matrices go
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Database    string `yaml:"database"`
	Compress    bool   `yaml:"compress"`
	MetricsFile string `yaml:"metrics_file"`
}

// LogConfig selects log level and format
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ColumnConfig overrides how one column is prepared.
// Raw defaults to true for columns ending in "Tracks".
type ColumnConfig struct {
	Raw         *bool `yaml:"raw"`
	StripMarkup bool  `yaml:"strip_markup"`
}

// GroupConfig is a column group with its target dimension
type GroupConfig struct {
	Name      string   `yaml:"name"`
	Columns   []string `yaml:"columns"`
	Dimension int      `yaml:"dimension"`
}

// Default returns the configuration of the standard CV/JD feature run.
func Default() *Config {
	return &Config{
		Input:       InputConfig{Path: "data/all_sample.csv"},
		Output:      OutputConfig{Dir: "out"},
		Log:         LogConfig{Level: "info", Format: "text"},
		Parallelism: 1,
		Columns:     map[string]ColumnConfig{},
		Groups: []GroupConfig{
			{Name: "title_category_tags", Columns: []string{"title", "category_name", "tags"}, Dimension: 30},
			{Name: "description", Columns: []string{"description"}, Dimension: 70},
			{Name: "requirement", Columns: []string{"requirement"}, Dimension: 70},
			{Name: "position", Columns: []string{"currentPosition", "desiredPosition"}, Dimension: 40},
			{Name: "skills", Columns: []string{"skills"}, Dimension: 30},
		},
	}
}

// LoadConfig reads a YAML config on top of Default. An empty path returns
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.merge(file)

	return cfg, nil
}

// merge overlays the non-zero settings of other.
func (c *Config) merge(other Config) {
	if other.Input.Path != "" {
		c.Input.Path = other.Input.Path
	}
	if other.Input.IDColumn != "" {
		c.Input.IDColumn = other.Input.IDColumn
	}
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.Database != "" {
		c.Output.Database = other.Output.Database
	}
	if other.Output.MetricsFile != "" {
		c.Output.MetricsFile = other.Output.MetricsFile
	}
	c.Output.Compress = c.Output.Compress || other.Output.Compress
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
	if other.Stoplist != "" {
		c.Stoplist = other.Stoplist
	}
	if other.Aliases != "" {
		c.Aliases = other.Aliases
	}
	if other.Parallelism != 0 {
		c.Parallelism = other.Parallelism
	}
	for name, col := range other.Columns {
		c.Columns[name] = col
	}
	if len(other.Groups) > 0 {
		c.Groups = other.Groups
	}
}

// ApplyEnv overrides settings from CVJD_* environment variables, reading a
// .env file first when one exists.
func (c *Config) ApplyEnv() {
	// A missing .env is the normal case
	_ = godotenv.Load()

	if v := os.Getenv("CVJD_INPUT"); v != "" {
		c.Input.Path = v
	}
	if v := os.Getenv("CVJD_ID_COLUMN"); v != "" {
		c.Input.IDColumn = v
	}
	if v := os.Getenv("CVJD_OUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("CVJD_DB"); v != "" {
		c.Output.Database = v
	}
	if v := os.Getenv("CVJD_METRICS_FILE"); v != "" {
		c.Output.MetricsFile = v
	}
	if v := os.Getenv("CVJD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CVJD_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("CVJD_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Parallelism = n
		}
	}
}

// Validate checks the group definitions.
func (c *Config) Validate() error {
	if len(c.Groups) == 0 {
		return fmt.Errorf("%w: no groups configured", internalerr.ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		if err := g.toGroup().Validate(); err != nil {
			return err
		}
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("%w: duplicate group %q", internalerr.ErrInvalidConfig, g.Name)
		}
		seen[g.Name] = struct{}{}
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("%w: parallelism must not be negative", internalerr.ErrInvalidConfig)
	}
	return nil
}

// FeatureGroups returns the configured groups, optionally restricted to the
// named ones.
func (c *Config) FeatureGroups(only ...string) ([]featurize.Group, error) {
	want := make(map[string]bool, len(only))
	for _, name := range only {
		want[strings.TrimSpace(name)] = true
	}

	var groups []featurize.Group
	found := make(map[string]bool, len(want))
	for _, g := range c.Groups {
		if len(want) > 0 && !want[g.Name] {
			continue
		}
		found[g.Name] = true
		groups = append(groups, g.toGroup())
	}
	for _, name := range only {
		if name = strings.TrimSpace(name); !found[name] {
			return nil, fmt.Errorf("%w: unknown group %q", internalerr.ErrInvalidConfig, name)
		}
	}
	return groups, nil
}

func (g GroupConfig) toGroup() featurize.Group {
	return featurize.Group{Name: g.Name, Columns: g.Columns, Dimension: g.Dimension}
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// Dict represents the alias dictionary
type Dict struct {
	Entries []DictEntry
}

// DictEntry represents a dictionary entry
type DictEntry struct {
	Canonical string
	Variants  []string
}

// LoadDict loads the alias dictionary from a file
// Format: canonical|variant1|variant2
func LoadDict(path string) (*Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dict := &Dict{Entries: []DictEntry{}}
	lines := strings.Split(string(data), "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}

		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		dict.Entries = append(dict.Entries, DictEntry{
			Canonical: parts[0],
			Variants:  parts[1:],
		})
	}

	return dict, nil
}
