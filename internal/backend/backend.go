// Package backend provides the two declaration extractors and the selection
// between them.
//
// The semantic extractor builds one program over the whole batch and
// resolves types across files; a syntax error anywhere aborts the call. The
// syntactic extractor parses each file on its own, skips files it cannot
// read or parse, and adds component, hook and view-template analysis.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/source"
)

// Backend names.
const (
	NameSemantic  = "semantic"
	NameSyntactic = "syntactic"
	NameAuto      = "auto"
)

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown backend")

// Extractor extracts declaration metadata from a batch of files.
type Extractor interface {
	// Extract walks paths in order and aggregates their declarations. A
	// cancelled context stops the batch between files.
	Extract(ctx context.Context, paths []string) (*meta.Metadata, error)
}

// Options configure an extractor.
type Options struct {
	// Loader defaults to source.FileLoader.
	Loader source.Loader
	// Logger defaults to a discard logger.
	Logger *slog.Logger
	// OnFile is called after each file with the file's error, if any.
	OnFile func(path string, err error)
}

func (o Options) withDefaults() Options {
	if o.Loader == nil {
		o.Loader = source.FileLoader{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.OnFile == nil {
		o.OnFile = func(string, error) {}
	}
	return o
}

// Names lists the accepted backend names.
func Names() []string {
	return []string{NameSemantic, NameSyntactic, NameAuto}
}

// New returns the extractor registered under name.
func New(name string, opts Options) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameSemantic:
		return NewSemantic(opts), nil
	case NameSyntactic:
		return NewSyntactic(opts), nil
	case NameAuto, "":
		return NewAuto(opts), nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, name, strings.Join(Names(), ", "))
}

// run wraps one extraction call with a run ID and timing in the log.
func run(log *slog.Logger, backend string, paths []string, fn func(log *slog.Logger) (*meta.Metadata, error)) (*meta.Metadata, error) {
	log = log.With("run", uuid.NewString(), "backend", backend)
	start := time.Now()
	log.Debug("extraction started", "files", len(paths))

	md, err := fn(log)
	if err != nil {
		log.Debug("extraction failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	log.Info("extraction complete", "files", len(paths), "duration", time.Since(start))
	return md, nil
}

// Auto picks the syntactic extractor when any input looks like TSX/JSX and
// the semantic extractor otherwise.
type Auto struct {
	opts      Options
	semantic  *Semantic
	syntactic *Syntactic
}

// NewAuto returns an Auto extractor.
func NewAuto(opts Options) *Auto {
	opts = opts.withDefaults()
	return &Auto{opts: opts, semantic: NewSemantic(opts), syntactic: NewSyntactic(opts)}
}

// Extract implements Extractor.
func (a *Auto) Extract(ctx context.Context, paths []string) (*meta.Metadata, error) {
	if a.wantsComponents(paths) {
		a.opts.Logger.Debug("auto selected backend", "backend", NameSyntactic)
		return a.syntactic.Extract(ctx, paths)
	}
	a.opts.Logger.Debug("auto selected backend", "backend", NameSemantic)
	return a.semantic.Extract(ctx, paths)
}

var markup = regexp.MustCompile(`</[A-Za-z]|/>|<>`)

func (a *Auto) wantsComponents(paths []string) bool {
	for _, p := range paths {
		lower := strings.ToLower(p)
		if strings.HasSuffix(lower, ".tsx") || strings.HasSuffix(lower, ".jsx") {
			return true
		}
	}
	for _, p := range paths {
		src, err := a.opts.Loader.Load(p)
		if err == nil && markup.Match(src) {
			return true
		}
	}
	return false
}
