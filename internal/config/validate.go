package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/declmeta/internal/backend"
)

var (
	// ErrInvalidBackend indicates an unknown extraction backend
	ErrInvalidBackend = errors.New("invalid backend")

	// ErrInvalidFormat indicates an unsupported output or log format
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidLevel indicates an unknown log level
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidServerSettings indicates invalid cache configuration
	ErrInvalidServerSettings = errors.New("invalid server settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateExtract(&cfg.Extract)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateLog(&cfg.Log)...)

	if cfg.Server.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidServerSettings, cfg.Server.CacheSize))
	}
	if cfg.Server.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_ttl cannot be negative, got %s", ErrInvalidServerSettings, cfg.Server.CacheTTL))
	}
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch debounce cannot be negative, got %s", cfg.Watch.Debounce))
	}

	return joinErrors(errs)
}

func validateExtract(cfg *ExtractConfig) []error {
	var errs []error

	name := strings.ToLower(cfg.Backend)
	valid := false
	for _, b := range backend.Names() {
		if name == b {
			valid = true
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("%w: must be one of %s, got '%s'", ErrInvalidBackend, strings.Join(backend.Names(), ", "), cfg.Backend))
	}

	for _, p := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err))
		}
	}
	return errs
}

func validateOutput(cfg *OutputConfig) []error {
	var errs []error
	switch strings.ToLower(cfg.Format) {
	case FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("%w: output format must be 'json' or 'yaml', got '%s'", ErrInvalidFormat, cfg.Format))
	}
	if cfg.Indent < 0 || cfg.Indent > 8 {
		errs = append(errs, fmt.Errorf("%w: indent must be between 0 and 8, got %d", ErrInvalidFormat, cfg.Indent))
	}
	return errs
}

func validateLog(cfg *LogConfig) []error {
	var errs []error
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: got '%s'", ErrInvalidLevel, cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log format must be 'text' or 'json', got '%s'", ErrInvalidFormat, cfg.Format))
	}
	return errs
}

// joinErrors combines multiple errors into a single error with one line per
// problem. Every joined error stays reachable through errors.Is.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}

	args := make([]any, len(errs))
	for i, err := range errs {
		args[i] = err
	}
	return fmt.Errorf("validation failed:"+strings.Repeat("\n  - %w", len(errs)), args...)
}
