// Package discovery expands files and directories into the TypeScript
// sources to extract, using gobwas/glob include and ignore patterns.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files at the root for "**/" patterns.
	rootGlob glob.Glob
}

// Matcher decides which paths under a root are sources.
type Matcher struct {
	include []compiledPattern
	ignore  []compiledPattern
}

// NewMatcher compiles include and ignore patterns.
func NewMatcher(include, ignore []string) (*Matcher, error) {
	m := &Matcher{}
	var err error
	if m.include, err = compile(include); err != nil {
		return nil, err
	}
	if m.ignore, err = compile(ignore); err != nil {
		return nil, err
	}
	return m, nil
}

func compile(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		// "**/*.ts" should also match "index.ts" at the root.
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Ignored reports whether the slash-separated relative path is excluded.
// A directory is excluded when "<dir>/**" matches an ignore pattern.
func (m *Matcher) Ignored(relPath string) bool {
	if matchesAny(relPath, m.ignore) {
		return true
	}
	return matchesAny(relPath+"/**", m.ignore)
}

// Included reports whether the slash-separated relative path is a source
// file that is not ignored.
func (m *Matcher) Included(relPath string) bool {
	return !m.Ignored(relPath) && matchesAny(relPath, m.include)
}

func matchesAny(path string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if rootLevel && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}

// Walk returns every included file under root, sorted. Ignored directories
// are not descended into.
func (m *Matcher) Walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if m.Ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.Included(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Expand resolves command-line arguments: files are kept as given,
// directories are walked. The result keeps argument order and drops
// duplicates.
func (m *Matcher) Expand(args []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		files, err := m.Walk(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
