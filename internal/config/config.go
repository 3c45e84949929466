// Package config loads declmeta configuration.
//
// Configuration is read from .declmeta/config.yml (or .yaml) under the
// project root, with DECLMETA_* environment variables overriding file values
// and built-in defaults filling the rest:
//
//	extract:
//	  backend: auto
//	  include: ["**/*.ts", "**/*.tsx"]
//	  ignore: ["node_modules/**"]
//	output:
//	  format: json
//	  indent: 2
//	log:
//	  level: info
//	  format: text
//	server:
//	  cache_size: 256
//	  cache_ttl: 10m
//	watch:
//	  debounce: 300ms
package config

import "time"

// Config is the complete declmeta configuration.
type Config struct {
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
}

// ExtractConfig selects the backend and the files taken from directories.
type ExtractConfig struct {
	Backend string   `yaml:"backend" mapstructure:"backend"` // semantic, syntactic or auto
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// OutputConfig controls how metadata is encoded.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // json or yaml
	Indent int    `yaml:"indent" mapstructure:"indent"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// ServerConfig configures the MCP server result cache.
type ServerConfig struct {
	CacheSize int           `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			Backend: "auto",
			Include: []string{
				"**/*.ts",
				"**/*.tsx",
				"**/*.mts",
				"**/*.cts",
			},
			Ignore: []string{
				"node_modules/**",
				".git/**",
				"dist/**",
				"build/**",
				"coverage/**",
				".declmeta/**",
			},
		},
		Output: OutputConfig{
			Format: FormatJSON,
			Indent: 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			CacheSize: 256,
			CacheTTL:  10 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
