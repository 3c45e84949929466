// Package decl walks a parsed TypeScript file and writes declaration records
// into meta scopes. Every statement kind has one handler in a dispatch table.
package decl

import (
	"log/slog"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/react"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// TypeResolver supplies the types the visitors record. The syntactic
// resolver reads annotations only; the semantic one also infers.
type TypeResolver interface {
	// DeclaredType is the type of a binding with an optional annotation and
	// an optional initializer.
	DeclaredType(annotation, value *sitter.Node) meta.Type
	// ReturnType is the return type of a function-like node.
	ReturnType(fn *sitter.Node) string
}

// SyntaxResolver derives types from annotation syntax alone. Function-valued
// initializers without an annotation get a function type built from their
// own parameter and return annotations.
type SyntaxResolver struct {
	Source []byte
}

// DeclaredType implements TypeResolver.
func (r SyntaxResolver) DeclaredType(annotation, value *sitter.Node) meta.Type {
	if annotation != nil {
		return render.Type(annotation, r.Source)
	}
	if isFunctionNode(value) {
		return meta.Text(FunctionTypeText(value, r.Source, r.ReturnType(value)))
	}
	return meta.Any()
}

// ReturnType implements TypeResolver.
func (r SyntaxResolver) ReturnType(fn *sitter.Node) string {
	if ret := syntax.Field(fn, "return_type"); ret != nil {
		return render.TypeText(ret, r.Source)
	}
	return meta.AnyType
}

// Options configure one file walk.
type Options struct {
	// Resolver defaults to SyntaxResolver over the file source.
	Resolver TypeResolver
	// Components enables component, hook and view-template analysis.
	Components bool
	Logger     *slog.Logger
}

// Result is the output of one file walk.
type Result struct {
	Scope *meta.Scope
	// Hooks is nil unless Options.Components is set.
	Hooks meta.HookIndex
}

type handler func(v *visitor, node *sitter.Node, f frame) []entry

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		"export_statement":               (*visitor).exportStatement,
		"ambient_declaration":            (*visitor).ambientDeclaration,
		"function_declaration":           (*visitor).functionDeclaration,
		"generator_function_declaration": (*visitor).functionDeclaration,
		"function_signature":             (*visitor).functionDeclaration,
		"class_declaration":              (*visitor).classDeclaration,
		"abstract_class_declaration":     (*visitor).classDeclaration,
		"interface_declaration":          (*visitor).interfaceDeclaration,
		"type_alias_declaration":         (*visitor).typeAliasDeclaration,
		"enum_declaration":               (*visitor).enumDeclaration,
		"lexical_declaration":            (*visitor).variableDeclaration,
		"variable_declaration":           (*visitor).variableDeclaration,
		"import_statement":               (*visitor).importStatement,
		"import_alias":                   (*visitor).importAlias,
		"module":                         (*visitor).moduleDeclaration,
		"internal_module":                (*visitor).moduleDeclaration,
		"expression_statement":           (*visitor).expressionStatement,
	}
}

// Handles reports whether kind has a registered handler.
func Handles(kind string) bool {
	_, ok := handlers[kind]
	return ok
}

// entry describes one record written by a handler, used to build ambient
// declaration entries.
type entry struct {
	name   string
	kind   string
	record any
}

// frame is the traversal state for the statements of one scope.
type frame struct {
	scope *meta.Scope
	// exported is an explicit export modifier on the statement.
	exported  bool
	isDefault bool
	declared  bool
	// implicit marks members of declared scopes, which export implicitly.
	implicit   bool
	decorators []meta.Decorator
}

func (f frame) isExported() bool {
	return f.exported || f.implicit
}

// statement returns the frame for a nested statement: statement modifiers
// reset, scope state stays.
func (f frame) statement() frame {
	return frame{scope: f.scope, declared: f.declared, implicit: f.implicit}
}

type visitor struct {
	file     *syntax.File
	src      []byte
	opts     Options
	root     *meta.Scope
	resolver TypeResolver
	log      *slog.Logger

	components []*component
}

// File walks f and returns its declarations.
func File(f *syntax.File, opts Options) *Result {
	v := newVisitor(f, opts)

	declared := syntax.IsDeclarationFile(f.Path)
	v.statements(f.Root(), frame{scope: v.root, declared: declared, implicit: false})
	markExports(v.root)
	v.root.Flush()
	v.resolveComponents()

	res := &Result{Scope: v.root}
	if opts.Components {
		res.Hooks = react.Hooks(f.Root(), v.src)
	}
	return res
}

func newVisitor(f *syntax.File, opts Options) *visitor {
	v := &visitor{
		file:     f,
		src:      f.Source,
		opts:     opts,
		root:     meta.NewScope(),
		resolver: opts.Resolver,
		log:      opts.Logger,
	}
	if v.resolver == nil {
		v.resolver = SyntaxResolver{Source: f.Source}
	}
	if v.log == nil {
		v.log = slog.New(slog.DiscardHandler)
	}
	return v
}

// statements dispatches every named child of node.
func (v *visitor) statements(node *sitter.Node, f frame) []entry {
	var out []entry
	for _, child := range syntax.NamedChildren(node) {
		out = append(out, v.dispatch(child, f.statement())...)
	}
	return out
}

func (v *visitor) dispatch(node *sitter.Node, f frame) []entry {
	if node == nil {
		return nil
	}
	h, ok := handlers[node.Kind()]
	if !ok {
		return nil
	}
	return h(v, node, f)
}

// exportDecl records an explicit "export <declaration>" form.
func (v *visitor) exportDecl(f frame, name string) {
	if !f.exported {
		return
	}
	if f.isDefault {
		f.scope.Exports = append(f.scope.Exports, meta.Export{Name: "default", Local: name, Kind: meta.ExportDefault})
		return
	}
	f.scope.Exports = append(f.scope.Exports, meta.Export{Name: name, Local: name, Kind: meta.ExportDeclaration})
}

// markExports applies local export specifiers ("export { a as b }",
// "export default a", "export = a") to the records they name.
func markExports(s *meta.Scope) {
	for _, e := range s.Exports {
		if e.Source != "" || e.Local == "" {
			continue
		}
		switch e.Kind {
		case meta.ExportNamed, meta.ExportDefault, meta.ExportAssignment:
			s.Mark(e.Local, true, false)
		}
	}
	for _, m := range s.Modules {
		markExports(m.Scope)
	}
	for _, m := range s.Namespaces {
		markExports(m.Scope)
	}
}

func (v *visitor) text(node *sitter.Node) string {
	return syntax.Text(node, v.src)
}

// nameOf returns the identifier text of a declaration, or "" when the node
// has no usable name.
func (v *visitor) nameOf(node *sitter.Node) string {
	name := syntax.Field(node, "name")
	if name == nil {
		return ""
	}
	if name.Kind() == "string" {
		return syntax.Unquote(v.text(name))
	}
	return v.text(name)
}

func isFunctionNode(node *sitter.Node) bool {
	node = syntax.Unwrap(node)
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}
