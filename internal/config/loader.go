package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project configuration directory.
const DirName = ".declmeta"

// Loader reads the configuration of one project directory.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader returns a loader for rootDir/.declmeta.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load merges, lowest to highest priority: Default(), the first of
// .declmeta/config.yml or .declmeta/config.yaml, and DECLMETA_* environment
// variables. The result is validated.
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, DirName))

	// DECLMETA_EXTRACT_BACKEND, DECLMETA_LOG_LEVEL, ...
	v.SetEnvPrefix("DECLMETA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"extract.backend",
		"output.format",
		"output.indent",
		"log.level",
		"log.format",
		"server.cache_size",
		"server.cache_ttl",
		"watch.debounce",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults + env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extract.backend", defaults.Extract.Backend)
	v.SetDefault("extract.include", defaults.Extract.Include)
	v.SetDefault("extract.ignore", defaults.Extract.Ignore)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.indent", defaults.Output.Indent)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("server.cache_size", defaults.Server.CacheSize)
	v.SetDefault("server.cache_ttl", defaults.Server.CacheTTL)

	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
