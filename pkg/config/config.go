package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for facet.
type Config struct {
	// Cohesion analysis settings
	Cohesion CohesionConfig `koanf:"cohesion" toml:"cohesion" json:"cohesion"`

	// Design rule settings
	Design DesignConfig `koanf:"design" toml:"design" json:"design"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" json:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" json:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" json:"output"`
}

// CohesionConfig controls the cohesion analysis thresholds.
type CohesionConfig struct {
	// MinSharedVariablePercentage is the edge threshold for function blocks.
	MinSharedVariablePercentage int `koanf:"min_shared_variable_percentage" toml:"min_shared_variable_percentage" json:"min_shared_variable_percentage"`

	// MinSharedPropertyPercentage is the edge threshold for class methods.
	MinSharedPropertyPercentage int `koanf:"min_shared_property_percentage" toml:"min_shared_property_percentage" json:"min_shared_property_percentage"`

	// MinFunctionLength is the minimum function span (lines) to analyze.
	MinFunctionLength int `koanf:"min_function_length" toml:"min_function_length" json:"min_function_length"`

	// MinClassLength is the minimum class span (lines) to analyze.
	MinClassLength int `koanf:"min_class_length" toml:"min_class_length" json:"min_class_length"`
}

// DesignConfig defines thresholds for the single-pass design rules.
type DesignConfig struct {
	MaxParameters   int      `koanf:"max_parameters" toml:"max_parameters" json:"max_parameters"`
	MaxImports      int      `koanf:"max_imports" toml:"max_imports" json:"max_imports"`
	MaxFanOut       int      `koanf:"max_fan_out" toml:"max_fan_out" json:"max_fan_out"`
	MaxNestingDepth int      `koanf:"max_nesting_depth" toml:"max_nesting_depth" json:"max_nesting_depth"`
	MinNameLength   int      `koanf:"min_name_length" toml:"min_name_length" json:"min_name_length"`
	AllowedNumbers  []string `koanf:"allowed_numbers" toml:"allowed_numbers" json:"allowed_numbers"`
	AllowedNames    []string `koanf:"allowed_names" toml:"allowed_names" json:"allowed_names"`
	DisabledRules   []string `koanf:"disabled_rules" toml:"disabled_rules" json:"disabled_rules"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" json:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" json:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" json:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" json:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" json:"format"` // text, json, markdown, yaml, toon
	Color  bool   `koanf:"color" toml:"color" json:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Cohesion: CohesionConfig{
			MinSharedVariablePercentage: 30,
			MinSharedPropertyPercentage: 40,
			MinFunctionLength:           10,
			MinClassLength:              10,
		},
		Design: DesignConfig{
			MaxParameters:   4,
			MaxImports:      15,
			MaxFanOut:       7,
			MaxNestingDepth: 4,
			MinNameLength:   2,
			AllowedNumbers:  []string{"-1", "0", "1", "2"},
			AllowedNames:    []string{"i", "j", "k", "_", "id", "ok", "err"},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.test.ts",
				"*.test.js",
				"*.spec.ts",
				"*.spec.js",
				"*_test.py",
				"*.min.js",
				"*.d.ts",
			},
			Dirs: []string{
				"node_modules",
				"vendor",
				".git",
				".facet",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".facet/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// ShouldExclude reports whether a path matches the exclusion patterns or
// lives under an excluded directory.
func (c *Config) ShouldExclude(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		for _, dir := range c.Exclude.Dirs {
			if part == dir {
				return true
			}
		}
	}
	return false
}

// Load loads and validates configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := validateRaw(k.Raw()); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"facet.toml",
		"facet.yaml",
		"facet.yml",
		"facet.json",
		".facet.toml",
		".facet.yaml",
		".facet.yml",
		".facet.json",
	}

	searchDirs := []string{".", ".facet"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}
