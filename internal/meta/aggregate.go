package meta

import (
	"errors"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
)

// Aggregate merges per-file scopes in order into a fresh Metadata value.
// Later scopes overwrite same-named entries of earlier ones; nested scopes of
// the same name merge recursively. extendedBy is recomputed for every scope.
func Aggregate(scopes ...*Scope) *Metadata {
	root := NewScope()
	for _, s := range scopes {
		if s != nil {
			merge(root, s)
		}
	}
	linkInheritance(root)
	return &Metadata{Scope: root}
}

// AddHooks appends hook call summaries, enabling the "hooks" key.
func (m *Metadata) AddHooks(h HookIndex) {
	if m.Hooks == nil {
		m.Hooks = make(HookIndex)
	}
	for name, calls := range h {
		m.Hooks[name] = append(m.Hooks[name], calls...)
	}
}

func merge(dst, src *Scope) {
	copyInto(dst.Functions, src.Functions)
	copyInto(dst.Variables, src.Variables)
	copyInto(dst.Classes, src.Classes)
	copyInto(dst.Interfaces, src.Interfaces)
	copyInto(dst.Types, src.Types)
	copyInto(dst.Enums, src.Enums)
	copyInto(dst.Imports, src.Imports)
	copyInto(dst.Declarations, src.Declarations)
	dst.Exports = append(dst.Exports, src.Exports...)
	mergeModules(dst.Modules, src.Modules)
	mergeModules(dst.Namespaces, src.Namespaces)
}

func copyInto[V any](dst, src map[string]V) {
	for k, v := range src {
		dst[k] = v
	}
}

func mergeModules(dst, src map[string]*Module) {
	for name, m := range src {
		cur, ok := dst[name]
		if !ok {
			cur = &Module{Name: name, Scope: NewScope()}
			dst[name] = cur
		}
		cur.IsDeclared = cur.IsDeclared || m.IsDeclared
		cur.IsExported = cur.IsExported || m.IsExported
		merge(cur.Scope, m.Scope)
	}
}

// linkInheritance fills extendedBy for the interfaces and classes of s and of
// every nested scope.
func linkInheritance(s *Scope) {
	ifaces := make(map[string][]string, len(s.Interfaces))
	for name, i := range s.Interfaces {
		ifaces[name] = i.Extends
	}
	for name, children := range extendedBy(ifaces) {
		s.Interfaces[name].ExtendedBy = children
	}

	classes := make(map[string][]string, len(s.Classes))
	for name, c := range s.Classes {
		classes[name] = c.Extends
	}
	for name, children := range extendedBy(classes) {
		s.Classes[name].ExtendedBy = children
	}

	for _, m := range s.Modules {
		linkInheritance(m.Scope)
	}
	for _, m := range s.Namespaces {
		linkInheritance(m.Scope)
	}
}

// extendedBy builds a directed child -> parent graph from the given extends
// lists and returns, for every known parent, its sorted direct children.
// Parents not declared in the same scope are ignored.
func extendedBy(parents map[string][]string) map[string][]string {
	g := graph.New(graph.StringHash, graph.Directed())
	for name := range parents {
		_ = g.AddVertex(name)
	}
	for name, bases := range parents {
		for _, base := range bases {
			base = BaseName(base)
			if _, ok := parents[base]; !ok || base == name {
				continue
			}
			if err := g.AddEdge(name, base); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				continue
			}
		}
	}

	preds, err := g.PredecessorMap()
	if err != nil {
		return nil
	}
	out := make(map[string][]string, len(preds))
	for name, edges := range preds {
		children := make([]string, 0, len(edges))
		for child := range edges {
			children = append(children, child)
		}
		sort.Strings(children)
		out[name] = children
	}
	return out
}

// BaseName strips type arguments from a heritage reference: "Base<T>" -> "Base".
func BaseName(ref string) string {
	if i := strings.IndexByte(ref, '<'); i >= 0 {
		ref = ref[:i]
	}
	return strings.TrimSpace(ref)
}
