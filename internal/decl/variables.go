package decl

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/react"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

func (v *visitor) variableDeclaration(node *sitter.Node, f frame) []entry {
	kind := "var"
	if node.Kind() == "lexical_declaration" {
		kind = v.text(syntax.Field(node, "kind"))
		if kind == "" {
			kind = "let"
			if syntax.HasToken(node, "const") {
				kind = "const"
			}
		}
	}

	var out []entry
	for _, declarator := range syntax.ChildrenByKind(node, "variable_declarator") {
		nameNode := syntax.Field(declarator, "name")
		if nameNode == nil {
			continue
		}
		annotation := syntax.Field(declarator, "type")
		value := syntax.Field(declarator, "value")

		if nameNode.Kind() != "identifier" {
			out = append(out, v.destructured(nameNode, kind, annotation, f)...)
			continue
		}

		name := v.text(nameNode)
		typ := v.resolver.DeclaredType(annotation, value)
		rec := &meta.Variable{
			Name:           name,
			Kind:           kind,
			Type:           typ,
			TypeString:     typ.String(),
			HasInitializer: value != nil,
			IsExported:     f.isExported(),
			IsDeclared:     f.declared,
			IsFunction:     isFunctionNode(value) || isFunctionType(annotation),
		}
		if value != nil {
			rec.Value = render.Expr(value, v.src)
		}
		f.scope.Variables[name] = rec
		v.exportDecl(f, name)
		out = append(out, entry{name: name, kind: "variable", record: rec})

		switch {
		case rec.IsFunction:
			v.functionVariable(rec, annotation, value, f)
		case v.opts.Components && react.IsComponentAnnotation(annotation, v.src):
			v.componentVariable(rec, annotation, value, f)
		}
	}
	return out
}

// componentVariable records a variable typed as a function component whose
// initializer is not a function: a memo or forwardRef wrapper, any other
// expression, or no initializer at all in an ambient declaration.
func (v *visitor) componentVariable(rec *meta.Variable, annotation, value *sitter.Node, f frame) {
	rec.IsFunction = true
	inner := react.WrappedFunction(value)
	fn := &meta.Function{Name: rec.Name, Parameters: []meta.Parameter{}}
	if inner != nil {
		fn = v.function(rec.Name, inner)
	}
	fn.Params = meta.ParamTypes(fn.Parameters)
	fn.IsExported = rec.IsExported
	fn.IsDeclared = rec.IsDeclared
	fn.SetHasBody(true)
	v.classifyVariable(rec, fn, annotation, inner)
	f.scope.AddFunction(fn)
}

// functionVariable duplicates a function-valued variable into the functions
// bucket.
func (v *visitor) functionVariable(rec *meta.Variable, annotation, value *sitter.Node, f frame) {
	var fn *meta.Function
	if fnNode := syntax.Unwrap(value); isFunctionNode(fnNode) {
		fn = v.function(rec.Name, fnNode)
		if v.opts.Components {
			v.classifyVariable(rec, fn, annotation, fnNode)
		}
	} else {
		sig := functionTypeNode(annotation)
		fn = &meta.Function{Name: rec.Name, Parameters: v.parameters(sig)}
		fn.Params = meta.ParamTypes(fn.Parameters)
		fn.ReturnType = render.TypeText(syntax.Field(sig, "return_type"), v.src)
		fn.GenericsTypes = render.TypeParams(syntax.ChildByKind(sig, "type_parameters"), v.src)
	}
	fn.IsExported = rec.IsExported
	fn.IsDeclared = rec.IsDeclared
	fn.SetHasBody(true)
	f.scope.AddFunction(fn)
}

// destructured writes one record per identifier bound by an object or array
// pattern. Types come from a structured object annotation when it names the
// binding, else "any".
func (v *visitor) destructured(pattern *sitter.Node, kind string, annotation *sitter.Node, f frame) []entry {
	ann := render.Type(annotation, v.src)
	var out []entry
	for _, b := range bindings(pattern, v.src) {
		typ := meta.Any()
		if ft, ok := ann.Field(b.key); ok && b.key != "" {
			typ = ft
		}
		rec := &meta.Variable{
			Name:           b.name,
			Kind:           kind,
			Type:           typ,
			TypeString:     typ.String(),
			HasInitializer: true,
			IsExported:     f.isExported(),
			IsDeclared:     f.declared,
			Destructured:   true,
		}
		f.scope.Variables[b.name] = rec
		v.exportDecl(f, b.name)
		out = append(out, entry{name: b.name, kind: "variable", record: rec})
	}
	return out
}

type binding struct {
	name string
	// key is the property name for object patterns.
	key string
}

// bindings lists the identifiers bound by a destructuring pattern.
func bindings(pattern *sitter.Node, src []byte) []binding {
	var out []binding
	if pattern == nil {
		return out
	}
	switch pattern.Kind() {
	case "identifier":
		out = append(out, binding{name: syntax.Text(pattern, src)})
	case "shorthand_property_identifier_pattern":
		name := syntax.Text(pattern, src)
		out = append(out, binding{name: name, key: name})
	case "object_pattern", "array_pattern":
		for _, c := range syntax.NamedChildren(pattern) {
			out = append(out, bindings(c, src)...)
		}
	case "pair_pattern":
		key := syntax.Unquote(syntax.Text(syntax.Field(pattern, "key"), src))
		value := syntax.Field(pattern, "value")
		direct := value != nil && (value.Kind() == "identifier" || value.Kind() == "assignment_pattern")
		for _, b := range bindings(value, src) {
			b.key = ""
			if direct {
				b.key = key
			}
			out = append(out, b)
		}
	case "assignment_pattern", "object_assignment_pattern":
		out = append(out, bindings(syntax.Field(pattern, "left"), src)...)
	case "rest_pattern":
		for _, c := range syntax.NamedChildren(pattern) {
			for _, b := range bindings(c, src) {
				b.key = ""
				out = append(out, b)
			}
		}
	}
	return out
}

func isFunctionType(annotation *sitter.Node) bool {
	return functionTypeNode(annotation) != nil
}

func functionTypeNode(annotation *sitter.Node) *sitter.Node {
	node := annotation
	for node != nil && (node.Kind() == "type_annotation" || node.Kind() == "parenthesized_type") {
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return nil
		}
		node = children[0]
	}
	if node != nil && node.Kind() == "function_type" {
		return node
	}
	return nil
}
