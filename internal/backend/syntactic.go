package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvp-joe/declmeta/internal/decl"
	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/program"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// Syntactic derives types from annotations alone and analyzes components.
type Syntactic struct {
	opts Options
}

// NewSyntactic returns a syntactic extractor.
func NewSyntactic(opts Options) *Syntactic {
	return &Syntactic{opts: opts.withDefaults()}
}

// Extract implements Extractor. Files that cannot be read or parsed are
// logged and skipped.
func (s *Syntactic) Extract(ctx context.Context, paths []string) (*meta.Metadata, error) {
	return run(s.opts.Logger, NameSyntactic, paths, func(log *slog.Logger) (*meta.Metadata, error) {
		scopes := make([]*meta.Scope, 0, len(paths))
		hooks := meta.HookIndex{}
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := s.file(path, log)
			s.opts.OnFile(path, err)
			if err != nil {
				log.Warn("skipping file", "file", path, "error", err)
				continue
			}
			scopes = append(scopes, res.Scope)
			for name, calls := range res.Hooks {
				hooks[name] = append(hooks[name], calls...)
			}
		}

		md := meta.Aggregate(scopes...)
		md.AddHooks(hooks)
		return md, nil
	})
}

// file extracts one file. The TSX grammar is tried first; plain TypeScript
// files that only parse without JSX (angle-bracket assertions) fall back to
// the TypeScript grammar.
func (s *Syntactic) file(path string, log *slog.Logger) (*decl.Result, error) {
	src, err := s.opts.Loader.Load(path)
	if err != nil {
		return nil, err
	}

	f, err := parse(path, src, syntax.TSX)
	if err != nil && syntax.GrammarFor(path) == syntax.TypeScript {
		log.Debug("retrying without jsx", "file", path)
		f, err = parse(path, src, syntax.TypeScript)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decl.File(f, decl.Options{Components: true, Logger: log}), nil
}

func parse(path string, src []byte, g syntax.Grammar) (*syntax.File, error) {
	f, err := syntax.Parse(path, src, g)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.HasError() {
		line := f.ErrorLine()
		f.Close()
		return nil, fmt.Errorf("%w in %s at line %d", program.ErrSyntax, path, line)
	}
	return f, nil
}
