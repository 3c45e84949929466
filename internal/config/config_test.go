package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .declmeta/config.yml and .declmeta/config.yaml
// - Load() merges a partial config file with defaults
// - Environment variables override config file values and defaults
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects unknown backends, formats, levels and bad globs
// - Validate() keeps every problem reachable with errors.Is

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, name), []byte(content), 0644))
	return dir
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "auto", cfg.Extract.Backend)
	assert.Contains(t, cfg.Extract.Include, "**/*.ts")
	assert.Contains(t, cfg.Extract.Include, "**/*.tsx")
	assert.Contains(t, cfg.Extract.Ignore, "node_modules/**")

	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 256, cfg.Server.CacheSize)
	assert.Equal(t, 10*time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigFile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config.yml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := writeConfig(t, name, `
extract:
  backend: syntactic
  include: ["src/**/*.tsx"]
  ignore: ["src/legacy/**"]
output:
  format: yaml
  indent: 4
log:
  level: debug
  format: json
server:
  cache_size: 32
  cache_ttl: 1m
watch:
  debounce: 1s
`)
			cfg, err := NewLoader(dir).Load()
			require.NoError(t, err)

			assert.Equal(t, "syntactic", cfg.Extract.Backend)
			assert.Equal(t, []string{"src/**/*.tsx"}, cfg.Extract.Include)
			assert.Equal(t, []string{"src/legacy/**"}, cfg.Extract.Ignore)
			assert.Equal(t, FormatYAML, cfg.Output.Format)
			assert.Equal(t, 4, cfg.Output.Indent)
			assert.Equal(t, "debug", cfg.Log.Level)
			assert.Equal(t, "json", cfg.Log.Format)
			assert.Equal(t, 32, cfg.Server.CacheSize)
			assert.Equal(t, time.Minute, cfg.Server.CacheTTL)
			assert.Equal(t, time.Second, cfg.Watch.Debounce)
		})
	}
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, "config.yml", `
extract:
  backend: semantic
`)
	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "semantic", cfg.Extract.Backend)
	assert.Equal(t, Default().Extract.Include, cfg.Extract.Include)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := writeConfig(t, "config.yml", `
extract:
  backend: semantic
log:
  level: warn
`)
	t.Setenv("DECLMETA_EXTRACT_BACKEND", "syntactic")
	t.Setenv("DECLMETA_OUTPUT_FORMAT", "yaml")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "syntactic", cfg.Extract.Backend)
	assert.Equal(t, FormatYAML, cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level, "not overridden, comes from file")
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("DECLMETA_LOG_LEVEL", "debug")
	t.Setenv("DECLMETA_SERVER_CACHE_SIZE", "8")
	t.Setenv("DECLMETA_WATCH_DEBOUNCE", "2s")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Server.CacheSize)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, "config.yml", "extract: [backend: nope\n")
	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, "config.yml", `
extract:
  backend: regex
`)
	_, err := NewLoader(dir).Load()
	require.ErrorIs(t, err, ErrInvalidBackend)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown backend", func(c *Config) { c.Extract.Backend = "babel" }, ErrInvalidBackend},
		{"unknown output format", func(c *Config) { c.Output.Format = "xml" }, ErrInvalidFormat},
		{"indent out of range", func(c *Config) { c.Output.Indent = -1 }, ErrInvalidFormat},
		{"unknown log format", func(c *Config) { c.Log.Format = "logfmt" }, ErrInvalidFormat},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, ErrInvalidLevel},
		{"bad include glob", func(c *Config) { c.Extract.Include = []string{"src/[a-"} }, ErrInvalidPattern},
		{"zero cache size", func(c *Config) { c.Server.CacheSize = 0 }, ErrInvalidServerSettings},
		{"negative ttl", func(c *Config) { c.Server.CacheTTL = -time.Second }, ErrInvalidServerSettings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_BackendNamesAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extract.Backend = "Semantic"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extract.Backend = "babel"
	cfg.Output.Format = "xml"
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBackend)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Contains(t, err.Error(), "validation failed:")
}
