package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadStoplist(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stoplist.yaml", `terms:
  - 负责
  - 熟悉
  - 相关
`)

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("Failed to load stoplist: %v", err)
	}

	if len(sl.Terms) != 3 {
		t.Errorf("Expected 3 terms, got %d", len(sl.Terms))
	}

	expected := map[string]bool{"负责": true, "熟悉": true, "相关": true}
	for _, term := range sl.Terms {
		if !expected[term] {
			t.Errorf("Unexpected term: %s", term)
		}
	}
}

func TestLoadDict(t *testing.T) {
	path := writeFile(t, t.TempDir(), "aliases.txt", `# skill aliases
golang|go语言|go lang
machine learning|ml|机器学习

k8s
`)

	dict, err := LoadDict(path)
	if err != nil {
		t.Fatalf("Failed to load dict: %v", err)
	}

	if len(dict.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(dict.Entries))
	}

	first := dict.Entries[0]
	if first.Canonical != "golang" {
		t.Errorf("Expected canonical 'golang', got %q", first.Canonical)
	}
	if len(first.Variants) != 2 || first.Variants[1] != "go lang" {
		t.Errorf("Unexpected variants: %v", first.Variants)
	}
}

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Groups) != 5 {
		t.Fatalf("Expected 5 default groups, got %d", len(cfg.Groups))
	}

	dims := map[string]int{}
	for _, g := range cfg.Groups {
		dims[g.Name] = g.Dimension
	}
	want := map[string]int{
		"title_category_tags": 30,
		"description":         70,
		"requirement":         70,
		"position":            40,
		"skills":              30,
	}
	for name, d := range want {
		if dims[name] != d {
			t.Errorf("Group %s: expected dimension %d, got %d", name, d, dims[name])
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cvjd.yaml", `input:
  path: data/jobs.csv
  id_column: id
output:
  compress: true
parallelism: 3
columns:
  jobTracks:
    raw: false
  description:
    strip_markup: true
groups:
  - name: skills
    columns: [skills]
    dimension: 10
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Input.Path != "data/jobs.csv" || cfg.Input.IDColumn != "id" {
		t.Errorf("Input not overlaid: %+v", cfg.Input)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("Output dir should keep default, got %q", cfg.Output.Dir)
	}
	if !cfg.Output.Compress {
		t.Error("Compress should be set")
	}
	if cfg.Parallelism != 3 {
		t.Errorf("Expected parallelism 3, got %d", cfg.Parallelism)
	}
	if len(cfg.Groups) != 1 || cfg.Groups[0].Dimension != 10 {
		t.Errorf("Groups should be replaced, got %+v", cfg.Groups)
	}
	if !cfg.Columns["description"].StripMarkup {
		t.Error("description should strip markup once the overlay asks for it")
	}
	if _, ok := cfg.Columns["requirement"]; ok {
		t.Error("requirement was never configured and should carry no settings")
	}
	raw := cfg.Columns["jobTracks"].Raw
	if raw == nil || *raw {
		t.Error("jobTracks should be explicitly structured")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "groups: [unterminated")

	if _, err := LoadConfig(path); err == nil {
		t.Error("Should error on invalid YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CVJD_INPUT", "env.csv")
	t.Setenv("CVJD_LOG_LEVEL", "debug")
	t.Setenv("CVJD_PARALLELISM", "4")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Input.Path != "env.csv" {
		t.Errorf("Expected input from env, got %q", cfg.Input.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level from env, got %q", cfg.Log.Level)
	}
	if cfg.Parallelism != 4 {
		t.Errorf("Expected parallelism 4, got %d", cfg.Parallelism)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no groups", func(c *Config) { c.Groups = nil }},
		{"zero dimension", func(c *Config) { c.Groups[0].Dimension = 0 }},
		{"no columns", func(c *Config) { c.Groups[0].Columns = nil }},
		{"duplicate name", func(c *Config) { c.Groups[1].Name = c.Groups[0].Name }},
		{"negative parallelism", func(c *Config) { c.Parallelism = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFeatureGroups(t *testing.T) {
	cfg := Default()

	all, err := cfg.FeatureGroups()
	if err != nil {
		t.Fatalf("FeatureGroups failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Expected 5 groups, got %d", len(all))
	}

	some, err := cfg.FeatureGroups("skills", " description ")
	if err != nil {
		t.Fatalf("FeatureGroups failed: %v", err)
	}
	if len(some) != 2 || some[0].Name != "description" || some[1].Name != "skills" {
		t.Errorf("Expected description and skills in config order, got %+v", some)
	}

	if _, err := cfg.FeatureGroups("salary"); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown group, got %v", err)
	}
}
