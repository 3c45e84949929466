// Package program builds the cross-file semantic context used by the
// semantic backend: every file of a batch is parsed up front, top-level
// symbols are indexed per file and relative imports are resolved between
// files so that types can be followed across file boundaries.
package program

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/source"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// ErrSyntax is returned by Build when a file of the batch does not parse.
var ErrSyntax = errors.New("syntax error")

// Symbol kinds.
const (
	KindFunction  = "function"
	KindVariable  = "variable"
	KindClass     = "class"
	KindInterface = "interface"
	KindType      = "type"
	KindEnum      = "enum"
	KindImport    = "import"
	KindNamespace = "namespace"
)

// Symbol is one top-level binding of a file.
type Symbol struct {
	Name string
	Kind string
	File *syntax.File
	// Node is the declaring node: a variable_declarator, a function or class
	// declaration, or the import specifier.
	Node *sitter.Node
	// Source and Imported describe import bindings: the module specifier and
	// the exported name it binds ("default", "*" for namespace imports).
	Source   string
	Imported string
}

// unit is the symbol table of one file.
type unit struct {
	file    *syntax.File
	symbols map[string]*Symbol
	// exports maps an exported name to the local symbol name, or to a
	// re-export symbol.
	exports map[string]*Symbol
	// stars lists the sources of "export * from" statements.
	stars []string
}

// Program is the parsed batch. It memoizes inferred types and is not safe
// for concurrent use.
type Program struct {
	files []*syntax.File
	units map[string]*unit
	log   *slog.Logger

	memo     map[nodeKey]string
	visiting map[nodeKey]bool
}

// memoRole separates the cached results computed for one node.
type memoRole uint8

const (
	roleValue  memoRole = iota // type of the node as an expression
	roleReturn                 // return type of a function-like node
)

type nodeKey struct {
	path       string
	start, end uint
	kind       string
	role       memoRole
}

func keyOf(f *syntax.File, n *sitter.Node, role memoRole) nodeKey {
	return nodeKey{path: f.Path, start: n.StartByte(), end: n.EndByte(), kind: n.Kind(), role: role}
}

// Build loads and parses every path. Any read failure or syntax error
// aborts the whole batch.
func Build(ctx context.Context, paths []string, loader source.Loader, log *slog.Logger) (*Program, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	p := &Program{
		units:    make(map[string]*unit, len(paths)),
		log:      log,
		memo:     make(map[nodeKey]string),
		visiting: make(map[nodeKey]bool),
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			p.Close()
			return nil, err
		}
		src, err := loader.Load(path)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		f, err := syntax.Parse(path, src, syntax.GrammarFor(path))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if f.HasError() {
			line := f.ErrorLine()
			f.Close()
			p.Close()
			return nil, fmt.Errorf("%w in %s at line %d", ErrSyntax, path, line)
		}
		p.files = append(p.files, f)
		p.units[filepath.Clean(path)] = index(f)
	}

	log.Debug("program built", "files", len(p.files))
	return p, nil
}

// Files returns the parsed files in input order.
func (p *Program) Files() []*syntax.File {
	return p.files
}

// Close releases every syntax tree.
func (p *Program) Close() {
	for _, f := range p.files {
		f.Close()
	}
	p.files = nil
}

// Lookup returns the top-level symbol name of file path.
func (p *Program) Lookup(path, name string) (*Symbol, bool) {
	u, ok := p.units[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	s, ok := u.symbols[name]
	return s, ok
}

// Resolve resolves a relative module specifier imported from importer to a
// file of the program. Extensions are tried in TypeScript order, then
// index files.
func (p *Program) Resolve(importer, specifier string) (string, bool) {
	if !strings.HasPrefix(specifier, ".") {
		return "", false
	}
	base := filepath.Join(filepath.Dir(importer), specifier)
	stem := strings.TrimSuffix(strings.TrimSuffix(base, ".js"), ".jsx")
	candidates := []string{
		base,
		stem + ".ts", stem + ".tsx", stem + ".d.ts",
		filepath.Join(base, "index.ts"), filepath.Join(base, "index.tsx"), filepath.Join(base, "index.d.ts"),
	}
	for _, c := range candidates {
		if _, ok := p.units[filepath.Clean(c)]; ok {
			return filepath.Clean(c), true
		}
	}
	return "", false
}

// Export follows an exported name of file path through re-exports and
// "export *" to the declaring symbol.
func (p *Program) Export(path, name string) (*Symbol, bool) {
	return p.export(path, name, map[string]bool{})
}

func (p *Program) export(path, name string, seen map[string]bool) (*Symbol, bool) {
	key := path + "#" + name
	if seen[key] {
		return nil, false
	}
	seen[key] = true

	u, ok := p.units[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	if s, ok := u.exports[name]; ok {
		return p.follow(s, seen)
	}
	if name == "default" {
		return nil, false
	}
	for _, star := range u.stars {
		if target, ok := p.Resolve(path, star); ok {
			if s, ok := p.export(target, name, seen); ok {
				return s, true
			}
		}
	}
	return nil, false
}

// follow resolves import bindings to the symbol they name in the imported
// file. Non-import symbols are returned as is.
func (p *Program) follow(s *Symbol, seen map[string]bool) (*Symbol, bool) {
	if s.Kind != KindImport {
		return s, true
	}
	if s.Imported == "*" {
		return s, true
	}
	target, ok := p.Resolve(s.File.Path, s.Source)
	if !ok {
		return nil, false
	}
	return p.export(target, s.Imported, seen)
}

// Binding resolves a top-level name of file path, following imports.
func (p *Program) Binding(path, name string) (*Symbol, bool) {
	s, ok := p.Lookup(path, name)
	if !ok {
		return nil, false
	}
	return p.follow(s, map[string]bool{})
}

// index builds the symbol table of one file.
func index(f *syntax.File) *unit {
	u := &unit{file: f, symbols: map[string]*Symbol{}, exports: map[string]*Symbol{}}
	src := f.Source
	for _, stmt := range syntax.NamedChildren(f.Root()) {
		switch stmt.Kind() {
		case "export_statement":
			u.exportStatement(stmt, src)
		case "import_statement":
			u.importStatement(stmt, src)
		case "ambient_declaration":
			for _, d := range syntax.NamedChildren(stmt) {
				u.declare(d, src)
			}
		default:
			u.declare(stmt, src)
		}
	}
	return u
}

func (u *unit) add(name, kind string, node *sitter.Node) *Symbol {
	if name == "" {
		return nil
	}
	s := &Symbol{Name: name, Kind: kind, File: u.file, Node: node}
	u.symbols[name] = s
	return s
}

// declare indexes one declaration statement and returns the symbols it adds.
func (u *unit) declare(node *sitter.Node, src []byte) []*Symbol {
	name := syntax.Text(syntax.Field(node, "name"), src)
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		return []*Symbol{u.add(name, KindFunction, node)}
	case "class_declaration", "abstract_class_declaration":
		return []*Symbol{u.add(name, KindClass, node)}
	case "interface_declaration":
		return []*Symbol{u.add(name, KindInterface, node)}
	case "type_alias_declaration":
		return []*Symbol{u.add(name, KindType, node)}
	case "enum_declaration":
		return []*Symbol{u.add(name, KindEnum, node)}
	case "internal_module", "module":
		return []*Symbol{u.add(syntax.Unquote(name), KindNamespace, node)}
	case "expression_statement":
		for _, c := range syntax.NamedChildren(node) {
			if c.Kind() == "internal_module" {
				return u.declare(c, src)
			}
		}
	case "lexical_declaration", "variable_declaration":
		var out []*Symbol
		for _, d := range syntax.ChildrenByKind(node, "variable_declarator") {
			nameNode := syntax.Field(d, "name")
			if nameNode != nil && nameNode.Kind() == "identifier" {
				out = append(out, u.add(syntax.Text(nameNode, src), KindVariable, d))
			}
		}
		return out
	}
	return nil
}

func (u *unit) exportStatement(node *sitter.Node, src []byte) {
	isDefault := syntax.HasToken(node, "default")
	from := ""
	if s := syntax.Field(node, "source"); s != nil {
		from = syntax.Unquote(syntax.Text(s, src))
	}

	if decl := syntax.Field(node, "declaration"); decl != nil {
		for _, s := range u.declare(decl, src) {
			if s == nil {
				continue
			}
			if isDefault {
				u.exports["default"] = s
			} else {
				u.exports[s.Name] = s
			}
		}
		return
	}
	if value := syntax.Field(node, "value"); value != nil && isDefault {
		value = syntax.Unwrap(value)
		if value.Kind() == "identifier" {
			if s, ok := u.symbols[syntax.Text(value, src)]; ok {
				u.exports["default"] = s
				return
			}
		}
		u.exports["default"] = &Symbol{Name: "default", Kind: KindVariable, File: u.file, Node: value}
		return
	}

	if clause := syntax.ChildByKind(node, "export_clause"); clause != nil {
		for _, spec := range syntax.ChildrenByKind(clause, "export_specifier") {
			local := syntax.Unquote(syntax.Text(syntax.Field(spec, "name"), src))
			exported := local
			if alias := syntax.Field(spec, "alias"); alias != nil {
				exported = syntax.Unquote(syntax.Text(alias, src))
			}
			if from != "" {
				u.exports[exported] = &Symbol{Name: exported, Kind: KindImport, File: u.file, Node: spec, Source: from, Imported: local}
				continue
			}
			if s, ok := u.symbols[local]; ok {
				u.exports[exported] = s
			} else {
				// Declared later in the file.
				u.exports[exported] = &Symbol{Name: local, Kind: KindImport, File: u.file, Node: spec, Source: "./" + filepath.Base(u.file.Path), Imported: local}
			}
		}
		return
	}
	if from != "" && syntax.ChildByKind(node, "namespace_export") == nil && syntax.HasToken(node, "*") {
		u.stars = append(u.stars, from)
	}
}

func (u *unit) importStatement(node *sitter.Node, src []byte) {
	s := syntax.Field(node, "source")
	clause := syntax.ChildByKind(node, "import_clause")
	if s == nil || clause == nil {
		return
	}
	from := syntax.Unquote(syntax.Text(s, src))
	bind := func(local, imported string, n *sitter.Node) {
		u.symbols[local] = &Symbol{Name: local, Kind: KindImport, File: u.file, Node: n, Source: from, Imported: imported}
	}
	for _, c := range syntax.NamedChildren(clause) {
		switch c.Kind() {
		case "identifier":
			bind(syntax.Text(c, src), "default", c)
		case "namespace_import":
			if id := syntax.ChildByKind(c, "identifier"); id != nil {
				bind(syntax.Text(id, src), "*", c)
			}
		case "named_imports":
			for _, spec := range syntax.ChildrenByKind(c, "import_specifier") {
				name := syntax.Unquote(syntax.Text(syntax.Field(spec, "name"), src))
				local := name
				if alias := syntax.Field(spec, "alias"); alias != nil {
					local = syntax.Text(alias, src)
				}
				bind(local, name, spec)
			}
		}
	}
}
