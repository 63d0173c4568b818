// Package config holds the explicit configuration value threaded through the
// scan and analysis pipeline. Defaults describe the standard .claude project
// layout; a filegraph.yml file in the project root overrides any of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate for unusable configuration values.
var ErrInvalidConfig = errors.New("invalid config")

// Output filenames written into OutputDir.
const (
	GraphFile    = "filespace-graph.json"
	OrphansFile  = "filespace-orphans.txt"
	AnalysisFile = "filespace-analysis.json"
	ReportFile   = "filespace-analysis-report.md"
)

// LayerRule maps a path prefix to a layer name. Rules are evaluated in order.
type LayerRule struct {
	Prefix string `yaml:"prefix"`
	Layer  string `yaml:"layer"`
}

// AnalysisConfig tunes the graph analytics stage.
type AnalysisConfig struct {
	Damping               float64 `yaml:"damping,omitempty"`
	MaxIterations         int     `yaml:"maxIterations,omitempty"`
	PageRankTolerance     float64 `yaml:"pageRankTolerance,omitempty"`
	HITSTolerance         float64 `yaml:"hitsTolerance,omitempty"`
	ExactBetweennessLimit int     `yaml:"exactBetweennessLimit,omitempty"`
	BetweennessSamples    int     `yaml:"betweennessSamples,omitempty"`
	SampleSeed            uint64  `yaml:"sampleSeed,omitempty"`
	TopN                  int     `yaml:"topN,omitempty"`
	ReportTopN            int     `yaml:"reportTopN,omitempty"`
	BridgeLimit           int     `yaml:"bridgeLimit,omitempty"`
	BridgeSample          int     `yaml:"bridgeSample,omitempty"`
}

// Config is the full pipeline configuration.
type Config struct {
	ProjectDir string `yaml:"-"`
	OutputDir  string `yaml:"outputDir,omitempty"`

	ScanDirs         []string `yaml:"scanDirs,omitempty"`
	TextExtensions   []string `yaml:"textExtensions,omitempty"`
	RootExtensions   []string `yaml:"rootExtensions,omitempty"`
	SkipPatterns     []string `yaml:"skipPatterns,omitempty"`
	ExcludeFiles     []string `yaml:"excludeFiles,omitempty"`
	ExcludeDirs      []string `yaml:"excludeDirs,omitempty"`
	EntryPoints      []string `yaml:"entryPoints,omitempty"`
	RespectGitignore bool     `yaml:"respectGitignore,omitempty"`

	NamespacePrefix string   `yaml:"namespacePrefix,omitempty"`
	HomePrefix      string   `yaml:"homePrefix,omitempty"`
	SubtreePrefixes []string `yaml:"subtreePrefixes,omitempty"`
	IndexFiles      []string `yaml:"indexFiles,omitempty"`
	DirPrefixes     []string `yaml:"dirPrefixes,omitempty"`
	SettingsFiles   []string `yaml:"settingsFiles,omitempty"`
	SettingsSuffix  string   `yaml:"settingsSuffix,omitempty"`
	SentinelFiles   []string `yaml:"sentinelFiles,omitempty"`

	LayerRules   []LayerRule `yaml:"layerRules,omitempty"`
	DefaultLayer string      `yaml:"defaultLayer,omitempty"`

	Workers      int  `yaml:"workers,omitempty"`
	CodeLiterals bool `yaml:"codeLiterals,omitempty"`

	Analysis AnalysisConfig `yaml:"analysis,omitempty"`
}

// Default returns the built-in configuration for a project rooted at dir.
func Default(dir string) *Config {
	return &Config{
		ProjectDir: dir,
		OutputDir:  ".claude/context",
		ScanDirs: []string{
			".claude/context",
			".claude/skills",
			".claude/commands",
			".claude/agents",
			".claude/hooks",
			".claude/scripts",
			".claude/tests",
			".claude/state",
			".claude/plans",
			".claude/config",
			".claude/context/psyche",
			".claude/context/patterns",
			".claude/context/designs",
			".claude/context/components",
			".claude/context/knowledge",
			".claude/context/reference",
			".claude/context/troubleshooting",
			".claude/context/lessons",
			".claude/context/jicm",
			".claude/logs",
			".claude/evolution",
			"projects",
		},
		TextExtensions: []string{".md", ".yaml", ".yml", ".json", ".sh", ".js", ".py", ".txt", ".jsonl", ".xsd"},
		RootExtensions: []string{".md", ".yaml", ".json", ".txt"},
		SkipPatterns:   []string{".git", "node_modules", "__pycache__", ".DS_Store", "secrets"},
		ExcludeFiles: []string{
			".claude/logs/file-access.json",
			"jarvis_graph.md",
		},
		ExcludeDirs: []string{".claude/context/exports"},
		EntryPoints: []string{
			"CLAUDE.md",
			".claude/context/psyche/_index.md",
			".claude/context/psyche/nous-map.md",
			".claude/context/psyche/pneuma-map.md",
			".claude/context/psyche/soma-map.md",
			".claude/context/psyche/capability-map.yaml",
			".claude/context/components/orchestration-overview.md",
			".claude/context/current-priorities.md",
			".claude/context/session-state.md",
			".claude/skills/_index.md",
			".claude/commands/README.md",
			".claude/agents/README.md",
			".claude/context/patterns/_index.md",
			".claude/settings.json",
			".mcp.json",
		},
		NamespacePrefix: ".claude/",
		HomePrefix:      "~/.claude/",
		SubtreePrefixes: []string{"projects/"},
		IndexFiles:      []string{"_index.md", "README.md", "SKILL.md"},
		DirPrefixes: []string{
			".claude/",
			".claude/context/",
			".claude/skills/",
			".claude/agents/",
			"projects/",
			"projects/project-aion/",
		},
		SettingsFiles:  []string{".claude/settings.json"},
		SettingsSuffix: "settings.local.json",
		SentinelFiles:  []string{"CLAUDE.md", "VERSION"},
		LayerRules: []LayerRule{
			{Prefix: ".claude/context/", Layer: "nous"},
			{Prefix: ".claude/", Layer: "pneuma"},
			{Prefix: "projects/", Layer: "soma-projects"},
		},
		DefaultLayer: "root",
		Workers:      8,
		Analysis: AnalysisConfig{
			Damping:               0.85,
			MaxIterations:         200,
			PageRankTolerance:     1e-6,
			HITSTolerance:         1e-8,
			ExactBetweennessLimit: 200,
			BetweennessSamples:    100,
			SampleSeed:            42,
			TopN:                  30,
			ReportTopN:            20,
			BridgeLimit:           50,
			BridgeSample:          30,
		},
	}
}

// Load returns the defaults for dir overlaid with filegraph.yml or
// filegraph.yaml from that directory. A missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := Default(dir)
	for _, name := range []string{"filegraph.yml", "filegraph.yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if err := cfg.Overlay(data); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		break
	}
	return cfg, cfg.Validate()
}

// LoadFile overlays an explicit config file onto the defaults for dir.
func LoadFile(dir, file string) (*Config, error) {
	cfg := Default(dir)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Overlay(data); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return cfg, cfg.Validate()
}

// Overlay decodes YAML on top of the current values. Keys absent from data
// keep their current value; present lists replace the current list.
func (c *Config) Overlay(data []byte) error {
	dir := c.ProjectDir
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	c.ProjectDir = dir
	return nil
}

// Validate reports configuration values the pipeline cannot run with.
func (c *Config) Validate() error {
	a := c.Analysis
	switch {
	case c.ProjectDir == "":
		return fmt.Errorf("%w: project dir is empty", ErrInvalidConfig)
	case c.NamespacePrefix == "":
		return fmt.Errorf("%w: namespacePrefix is empty", ErrInvalidConfig)
	case a.Damping <= 0 || a.Damping >= 1:
		return fmt.Errorf("%w: damping must be in (0,1), got %v", ErrInvalidConfig, a.Damping)
	case a.MaxIterations <= 0:
		return fmt.Errorf("%w: maxIterations must be positive", ErrInvalidConfig)
	case a.PageRankTolerance <= 0 || a.HITSTolerance <= 0:
		return fmt.Errorf("%w: tolerances must be positive", ErrInvalidConfig)
	case a.BetweennessSamples <= 0:
		return fmt.Errorf("%w: betweennessSamples must be positive", ErrInvalidConfig)
	case a.TopN < 0 || a.ReportTopN < 0 || a.BridgeLimit < 0 || a.BridgeSample < 0:
		return fmt.Errorf("%w: list limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// OutputPath returns the absolute path of an output file.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.ProjectDir, filepath.FromSlash(c.OutputDir), name)
}

// OutputRelPaths returns the project-relative paths of every output file.
func (c *Config) OutputRelPaths() []string {
	out := make([]string, 0, 4)
	for _, name := range []string{GraphFile, OrphansFile, AnalysisFile, ReportFile} {
		out = append(out, path.Join(filepath.ToSlash(c.OutputDir), name))
	}
	return out
}

// IsOutput reports whether rel is an output file or a temp file left behind
// by an interrupted write of one.
func (c *Config) IsOutput(rel string) bool {
	dir, base := path.Split(rel)
	if path.Clean(dir) != path.Clean(filepath.ToSlash(c.OutputDir)) {
		return false
	}
	for _, name := range []string{GraphFile, OrphansFile, AnalysisFile, ReportFile} {
		if base == name || strings.HasPrefix(base, "."+name+".") {
			return true
		}
	}
	return false
}

// Excluded returns the exclude list merged with the output files.
func (c *Config) Excluded() map[string]struct{} {
	set := make(map[string]struct{}, len(c.ExcludeFiles)+4)
	for _, f := range c.ExcludeFiles {
		set[f] = struct{}{}
	}
	for _, f := range c.OutputRelPaths() {
		set[f] = struct{}{}
	}
	return set
}

// LayerOf returns the layer of a project-relative path.
func (c *Config) LayerOf(p string) string {
	for _, r := range c.LayerRules {
		if strings.HasPrefix(p, r.Prefix) {
			return r.Layer
		}
	}
	return c.DefaultLayer
}

// SublayerOf groups a path by its first three segments, or fewer when the
// path is shallower.
func SublayerOf(p string) string {
	parts := strings.Split(p, "/")
	switch {
	case len(parts) >= 3:
		return strings.Join(parts[:3], "/")
	case len(parts) == 2:
		return strings.Join(parts[:2], "/")
	default:
		return parts[0]
	}
}

// IsSettingsFile reports whether rel is a hook settings file.
func (c *Config) IsSettingsFile(rel string) bool {
	for _, f := range c.SettingsFiles {
		if rel == f {
			return true
		}
	}
	return c.SettingsSuffix != "" && strings.HasSuffix(rel, c.SettingsSuffix)
}
