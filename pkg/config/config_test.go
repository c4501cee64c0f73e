package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30, cfg.Cohesion.MinSharedVariablePercentage)
	assert.Equal(t, 40, cfg.Cohesion.MinSharedPropertyPercentage)
	assert.Equal(t, 10, cfg.Cohesion.MinFunctionLength)
	assert.Equal(t, 4, cfg.Design.MaxParameters)
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Exclude.Gitignore)
	assert.Contains(t, cfg.Exclude.Dirs, "node_modules")
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facet.toml")
	content := `
[cohesion]
min_shared_variable_percentage = 50
min_function_length = 5

[design]
max_parameters = 6
disabled_rules = ["magic-number"]

[cache]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Cohesion.MinSharedVariablePercentage)
	assert.Equal(t, 5, cfg.Cohesion.MinFunctionLength)
	assert.Equal(t, 6, cfg.Design.MaxParameters)
	assert.Equal(t, []string{"magic-number"}, cfg.Design.DisabledRules)
	assert.False(t, cfg.Cache.Enabled)

	// Unset values keep their defaults.
	assert.Equal(t, 40, cfg.Cohesion.MinSharedPropertyPercentage)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facet.yaml")
	content := `
cohesion:
  min_shared_property_percentage: 60
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Cohesion.MinSharedPropertyPercentage)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facet.toml")
	content := `
[cohesion]
min_shared_variable_percentage = 150
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadOrDefaultFindsLocalConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
[cohesion]
min_function_length = 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "facet.toml"), []byte(content), 0o644))
	t.Chdir(dir)

	cfg := LoadOrDefault()
	assert.Equal(t, 3, cfg.Cohesion.MinFunctionLength)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := LoadOrDefault()
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.ShouldExclude("src/app.test.js"))
	assert.True(t, cfg.ShouldExclude("node_modules/lib/index.js"))
	assert.True(t, cfg.ShouldExclude("lib/types.d.ts"))
	assert.False(t, cfg.ShouldExclude("src/app.js"))
}
