package program

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/decl"
	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

var _ decl.TypeResolver = (*Checker)(nil)

// Checker resolves declared and inferred types for the nodes of one file of
// a program. Unannotated bindings are inferred from their initializers,
// following top-level symbols across relative imports. Anything the checker
// cannot follow renders as "any".
type Checker struct {
	prog *Program
	file *syntax.File
}

// Checker returns the type resolver for file f of the program.
func (p *Program) Checker(f *syntax.File) *Checker {
	return &Checker{prog: p, file: f}
}

// DeclaredType implements decl.TypeResolver.
func (c *Checker) DeclaredType(annotation, value *sitter.Node) meta.Type {
	if annotation != nil {
		return render.Type(annotation, c.file.Source)
	}
	if value == nil {
		return meta.Any()
	}
	return meta.Text(c.prog.infer(c.file, value))
}

// ReturnType implements decl.TypeResolver.
func (c *Checker) ReturnType(fn *sitter.Node) string {
	return c.prog.returnType(c.file, fn)
}

// memoized runs compute once per node. A node reached again while its own
// type is being computed renders as "any".
func (p *Program) memoized(f *syntax.File, n *sitter.Node, role memoRole, compute func() string) string {
	key := keyOf(f, n, role)
	if t, ok := p.memo[key]; ok {
		return t
	}
	if p.visiting[key] {
		return meta.AnyType
	}
	p.visiting[key] = true
	t := compute()
	delete(p.visiting, key)
	if t == "" {
		t = meta.AnyType
	}
	p.memo[key] = t
	return t
}

// infer returns the widened type of an expression.
func (p *Program) infer(f *syntax.File, node *sitter.Node) string {
	node = syntax.Unwrap(node)
	if node == nil {
		return meta.AnyType
	}
	return p.memoized(f, node, roleValue, func() string { return p.expression(f, node) })
}

func (p *Program) expression(f *syntax.File, node *sitter.Node) string {
	src := f.Source
	if t, ok := render.LiteralType(node); ok && node.Kind() != "unary_expression" {
		return t
	}

	switch node.Kind() {
	case "unary_expression":
		return unaryType(syntax.Text(syntax.Field(node, "operator"), src))
	case "template_string":
		return "string"
	case "regex":
		return "RegExp"
	case "identifier":
		return p.identifier(f, node)
	case "arrow_function", "function_expression", "function", "generator_function":
		return decl.FunctionTypeText(node, src, p.returnType(f, node))
	case "class":
		return meta.AnyType
	case "call_expression":
		return p.call(f, node)
	case "new_expression":
		ctor := syntax.Field(node, "constructor")
		if ctor == nil || (ctor.Kind() != "identifier" && ctor.Kind() != "member_expression") {
			return meta.AnyType
		}
		return syntax.Text(ctor, src) + render.TypeArguments(syntax.Field(node, "type_arguments"), src)
	case "array":
		return p.array(f, node)
	case "object":
		return p.object(f, node)
	case "as_expression":
		parts := syntax.NamedChildren(node)
		switch {
		case len(parts) == 0:
			return meta.AnyType
		case len(parts) == 1 || syntax.Text(parts[len(parts)-1], src) == "const":
			return p.infer(f, parts[0])
		}
		return render.TypeText(parts[len(parts)-1], src)
	case "satisfies_expression", "non_null_expression":
		if inner := syntax.NamedChildren(node); len(inner) > 0 {
			t := p.infer(f, inner[0])
			if node.Kind() == "non_null_expression" {
				if t = stripNullish(t); t == "" {
					return meta.AnyType
				}
			}
			return t
		}
	case "await_expression":
		if inner := syntax.NamedChildren(node); len(inner) > 0 {
			return awaited(p.infer(f, inner[0]))
		}
	case "binary_expression":
		return p.binary(f, node)
	case "ternary_expression":
		return union(p.infer(f, syntax.Field(node, "consequence")), p.infer(f, syntax.Field(node, "alternative")))
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return "JSX.Element"
	case "update_expression":
		return "number"
	case "sequence_expression":
		if parts := syntax.NamedChildren(node); len(parts) > 0 {
			return p.infer(f, parts[len(parts)-1])
		}
	case "assignment_expression":
		return p.infer(f, syntax.Field(node, "right"))
	}
	return meta.AnyType
}

func unaryType(op string) string {
	switch op {
	case "!":
		return "boolean"
	case "typeof":
		return "string"
	case "void":
		return "undefined"
	case "-", "+", "~":
		return "number"
	}
	return meta.AnyType
}

// identifier resolves a name through enclosing local bindings, then the
// file's top-level symbols and imports.
func (p *Program) identifier(f *syntax.File, node *sitter.Node) string {
	name := syntax.Text(node, f.Source)
	switch name {
	case "undefined":
		return "undefined"
	case "NaN", "Infinity":
		return "number"
	}
	if t, ok := p.local(f, node, name); ok {
		return t
	}
	s, ok := p.Binding(f.Path, name)
	if !ok {
		return meta.AnyType
	}
	return p.symbolType(s)
}

// symbolType is the value type of a resolved top-level symbol.
func (p *Program) symbolType(s *Symbol) string {
	src := s.File.Source
	switch s.Kind {
	case KindVariable:
		if s.Node.Kind() != "variable_declarator" {
			return p.infer(s.File, s.Node)
		}
		if t := syntax.Field(s.Node, "type"); t != nil {
			return render.TypeText(t, src)
		}
		if v := syntax.Field(s.Node, "value"); v != nil {
			return p.infer(s.File, v)
		}
	case KindFunction:
		return decl.FunctionTypeText(s.Node, src, p.returnType(s.File, s.Node))
	case KindClass, KindEnum, KindNamespace:
		return "typeof " + s.Name
	case KindImport:
		if s.Imported == "*" {
			return "typeof import(" + render.Quote(s.Source) + ")"
		}
	}
	return meta.AnyType
}

// local looks name up in the parameters and block-level declarations
// enclosing node, innermost first. Top-level bindings are left to the symbol
// index.
func (p *Program) local(f *syntax.File, node *sitter.Node, name string) (string, bool) {
	src := f.Source
	for n := node.Parent(); n != nil; n = n.Parent() {
		switch n.Kind() {
		case "program":
			return "", false
		case "statement_block":
			for _, stmt := range syntax.NamedChildren(n) {
				if stmt.Kind() != "lexical_declaration" && stmt.Kind() != "variable_declaration" {
					continue
				}
				for _, d := range syntax.ChildrenByKind(stmt, "variable_declarator") {
					if syntax.Text(syntax.Field(d, "name"), src) != name {
						continue
					}
					if t := syntax.Field(d, "type"); t != nil {
						return render.TypeText(t, src), true
					}
					if v := syntax.Field(d, "value"); v != nil && !containsNode(v, node) {
						return p.infer(f, v), true
					}
					return meta.AnyType, true
				}
			}
		case "arrow_function", "function_expression", "function", "function_declaration",
			"generator_function", "generator_function_declaration", "method_definition":
			if single := syntax.Field(n, "parameter"); single != nil && syntax.Text(single, src) == name {
				return meta.AnyType, true
			}
			for _, param := range syntax.NamedChildren(syntax.Field(n, "parameters")) {
				pattern := syntax.Field(param, "pattern")
				if pattern == nil || pattern.Kind() != "identifier" || syntax.Text(pattern, src) != name {
					continue
				}
				if t := syntax.Field(param, "type"); t != nil {
					return render.TypeText(t, src), true
				}
				if v := syntax.Field(param, "value"); v != nil {
					return p.infer(f, v), true
				}
				return meta.AnyType, true
			}
		}
	}
	return "", false
}

func containsNode(outer, inner *sitter.Node) bool {
	return inner.StartByte() >= outer.StartByte() && inner.EndByte() <= outer.EndByte()
}

// call returns the return type of the callee when it resolves to a function.
func (p *Program) call(f *syntax.File, node *sitter.Node) string {
	callee := syntax.Unwrap(syntax.Field(node, "function"))
	if callee == nil {
		return meta.AnyType
	}
	if callee.Kind() != "identifier" {
		return meta.AnyType
	}
	name := syntax.Text(callee, f.Source)
	if _, ok := p.local(f, callee, name); ok {
		return meta.AnyType
	}
	s, ok := p.Binding(f.Path, name)
	if !ok {
		return meta.AnyType
	}
	switch s.Kind {
	case KindFunction:
		return p.returnType(s.File, s.Node)
	case KindVariable:
		target := s.Node
		if target.Kind() == "variable_declarator" {
			if syntax.Field(target, "type") != nil {
				return meta.AnyType
			}
			target = syntax.Unwrap(syntax.Field(target, "value"))
		}
		if target != nil && isFunction(target) {
			return p.returnType(s.File, target)
		}
	}
	return meta.AnyType
}

func (p *Program) array(f *syntax.File, node *sitter.Node) string {
	var members []meta.Type
	for _, el := range syntax.NamedChildren(node) {
		if el.Kind() == "spread_element" {
			inner := syntax.NamedChildren(el)
			if len(inner) == 0 {
				return "any[]"
			}
			t := p.infer(f, inner[0])
			if !strings.HasSuffix(t, "[]") {
				return "any[]"
			}
			members = append(members, meta.Text(strings.TrimSuffix(t, "[]")))
			continue
		}
		members = append(members, meta.Text(p.infer(f, el)))
	}
	if len(members) == 0 {
		return "any[]"
	}
	elem := meta.Union(members...).String()
	if strings.Contains(elem, " ") {
		elem = "(" + elem + ")"
	}
	return elem + "[]"
}

func (p *Program) object(f *syntax.File, node *sitter.Node) string {
	src := f.Source
	var fields []string
	for _, member := range syntax.NamedChildren(node) {
		switch member.Kind() {
		case "pair":
			key := syntax.Text(syntax.Field(member, "key"), src)
			fields = append(fields, key+": "+p.infer(f, syntax.Field(member, "value")))
		case "shorthand_property_identifier":
			name := syntax.Text(member, src)
			fields = append(fields, name+": "+p.identifier(f, member))
		case "method_definition":
			name := syntax.Text(syntax.Field(member, "name"), src)
			fields = append(fields, name+": "+decl.FunctionTypeText(member, src, p.returnType(f, member)))
		default:
			return meta.AnyType
		}
	}
	if len(fields) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(fields, "; ") + " }"
}

func (p *Program) binary(f *syntax.File, node *sitter.Node) string {
	op := syntax.Text(syntax.Field(node, "operator"), f.Source)
	switch op {
	case "==", "===", "!=", "!==", "<", "<=", ">", ">=", "instanceof", "in":
		return "boolean"
	case "-", "*", "/", "%", "**", "<<", ">>", ">>>", "&", "|", "^":
		return "number"
	case "+":
		l, r := p.infer(f, syntax.Field(node, "left")), p.infer(f, syntax.Field(node, "right"))
		switch {
		case l == "string" || r == "string":
			return "string"
		case l == "number" && r == "number":
			return "number"
		}
		return meta.AnyType
	case "&&", "||", "??":
		l, r := p.infer(f, syntax.Field(node, "left")), p.infer(f, syntax.Field(node, "right"))
		if op == "??" {
			if l = stripNullish(l); l == "" {
				return r
			}
		}
		return union(l, r)
	}
	return meta.AnyType
}

// returnType is the declared return type of a function-like node, or the
// union of its returned expressions. Async functions wrap the result in
// Promise.
func (p *Program) returnType(f *syntax.File, fn *sitter.Node) string {
	fn = syntax.Unwrap(fn)
	if fn == nil {
		return meta.AnyType
	}
	src := f.Source
	if ret := syntax.Field(fn, "return_type"); ret != nil {
		return render.TypeText(ret, src)
	}
	if fn.Kind() == "function_signature" || fn.Kind() == "method_signature" {
		return meta.AnyType
	}
	if strings.HasPrefix(fn.Kind(), "generator") || syntax.HasToken(fn, "*") {
		return meta.AnyType
	}

	return p.memoized(f, fn, roleReturn, func() string {
		body := syntax.Field(fn, "body")
		if body == nil {
			return meta.AnyType
		}
		var t string
		if body.Kind() != "statement_block" {
			t = p.infer(f, body)
		} else {
			t = p.returned(f, body)
		}
		if syntax.HasToken(fn, "async") {
			return "Promise<" + awaited(t) + ">"
		}
		return t
	})
}

// returned unions the types of the return statements of a function body,
// skipping nested functions.
func (p *Program) returned(f *syntax.File, body *sitter.Node) string {
	var types []meta.Type
	sawBare := false
	syntax.Walk(body, func(n *sitter.Node) bool {
		if !syntax.Same(n, body) && isFunction(n) {
			return false
		}
		if n.Kind() == "class" || n.Kind() == "class_declaration" {
			return false
		}
		if n.Kind() != "return_statement" {
			return true
		}
		values := syntax.NamedChildren(n)
		if len(values) == 0 {
			sawBare = true
			return false
		}
		types = append(types, meta.Text(p.infer(f, values[0])))
		return false
	})
	switch {
	case len(types) == 0:
		return "void"
	case sawBare:
		types = append(types, meta.Text("undefined"))
	}
	return meta.Union(types...).String()
}

func isFunction(n *sitter.Node) bool {
	switch n.Kind() {
	case "arrow_function", "function_expression", "function", "function_declaration",
		"generator_function", "generator_function_declaration", "method_definition":
		return true
	}
	return false
}

func union(a, b string) string {
	return meta.Union(meta.Text(a), meta.Text(b)).String()
}

// awaited unwraps one level of Promise.
func awaited(t string) string {
	if strings.HasPrefix(t, "Promise<") && strings.HasSuffix(t, ">") {
		return t[len("Promise<") : len(t)-1]
	}
	return t
}

// stripNullish drops null and undefined members from a union. It returns ""
// when nothing is left.
func stripNullish(t string) string {
	parts := strings.Split(t, " | ")
	kept := parts[:0]
	for _, part := range parts {
		if part != "null" && part != "undefined" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " | ")
}
