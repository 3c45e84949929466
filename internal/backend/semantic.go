package backend

import (
	"context"
	"log/slog"

	"github.com/mvp-joe/declmeta/internal/decl"
	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/program"
)

// Semantic resolves types across the whole batch.
type Semantic struct {
	opts Options
}

// NewSemantic returns a semantic extractor.
func NewSemantic(opts Options) *Semantic {
	return &Semantic{opts: opts.withDefaults()}
}

// Extract implements Extractor. Any unreadable or malformed file fails the
// whole call.
func (s *Semantic) Extract(ctx context.Context, paths []string) (*meta.Metadata, error) {
	return run(s.opts.Logger, NameSemantic, paths, func(log *slog.Logger) (*meta.Metadata, error) {
		prog, err := program.Build(ctx, paths, s.opts.Loader, log)
		if err != nil {
			return nil, err
		}
		defer prog.Close()

		scopes := make([]*meta.Scope, 0, len(paths))
		for _, f := range prog.Files() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res := decl.File(f, decl.Options{Resolver: prog.Checker(f), Logger: log})
			scopes = append(scopes, res.Scope)
			s.opts.OnFile(f.Path, nil)
		}
		return meta.Aggregate(scopes...), nil
	})
}
