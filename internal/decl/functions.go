package decl

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

func (v *visitor) functionDeclaration(node *sitter.Node, f frame) []entry {
	name := v.nameOf(node)
	if name == "" {
		return nil
	}

	fn := v.function(name, node)
	fn.IsExported = f.isExported()
	fn.IsDeclared = f.declared
	fn.IsDefault = f.isDefault
	if v.opts.Components {
		v.classifyFunction(fn, node)
	}

	f.scope.AddFunction(fn)
	v.exportDecl(f, name)
	return []entry{{name: name, kind: "function", record: fn}}
}

// function builds a function record from any function-like node.
func (v *visitor) function(name string, node *sitter.Node) *meta.Function {
	body := syntax.Field(node, "body")
	fn := &meta.Function{
		Name:          name,
		IsAsync:       syntax.HasToken(node, "async"),
		IsGenerator:   syntax.HasToken(node, "*") || strings.HasPrefix(node.Kind(), "generator_"),
		Parameters:    v.parameters(node),
		ReturnType:    v.resolver.ReturnType(node),
		GenericsTypes: render.TypeParams(syntax.Field(node, "type_parameters"), v.src),
	}
	fn.Params = meta.ParamTypes(fn.Parameters)
	if body != nil {
		fn.Body = v.text(body)
		fn.SetHasBody(true)
	}
	return fn
}

// parameters builds the parameter list of a function-like node. Arrow
// functions with a single bare parameter are supported.
func (v *visitor) parameters(fn *sitter.Node) []meta.Parameter {
	out := []meta.Parameter{}
	if p := syntax.Field(fn, "parameter"); p != nil {
		return append(out, meta.NewParameter(v.text(p), v.resolver.DeclaredType(nil, nil)))
	}
	for _, p := range syntax.NamedChildren(syntax.Field(fn, "parameters")) {
		param, ok := v.parameter(p)
		if ok {
			out = append(out, param)
		}
	}
	return out
}

func (v *visitor) parameter(p *sitter.Node) (meta.Parameter, bool) {
	switch p.Kind() {
	case "required_parameter", "optional_parameter":
	case "identifier":
		return meta.NewParameter(v.text(p), meta.Any()), true
	default:
		return meta.Parameter{}, false
	}

	pattern := syntax.Field(p, "pattern")
	if pattern == nil || pattern.Kind() == "this" {
		return meta.Parameter{}, false
	}
	value := syntax.Field(p, "value")
	param := meta.NewParameter(render.PatternText(pattern, v.src), v.resolver.DeclaredType(syntax.Field(p, "type"), value))
	if pattern.Kind() == "rest_pattern" {
		param.IsRest = true
		param.Name = strings.TrimPrefix(param.Name, "...")
	}
	param.DefaultValuePresent = value != nil
	if value != nil {
		param.DefaultValue = render.Expr(value, v.src)
	}
	param.Optional = p.Kind() == "optional_parameter" || param.DefaultValuePresent || param.IsRest
	param.Decorators = v.decorators(p)
	return param, true
}

// FunctionTypeText renders the type of a function-like node as
// "(a: A, b: B) => R" given its resolved return type.
func FunctionTypeText(fn *sitter.Node, src []byte, returnType string) string {
	fn = syntax.Unwrap(fn)
	var params []string
	if p := syntax.Field(fn, "parameter"); p != nil {
		params = []string{syntax.Text(p, src) + ": " + meta.AnyType}
	} else {
		params = render.ParamTexts(syntax.Field(fn, "parameters"), src)
	}
	prefix := ""
	if tp := render.TypeParams(syntax.Field(fn, "type_parameters"), src); len(tp) > 0 {
		prefix = "<" + strings.Join(tp, ", ") + ">"
	}
	return prefix + "(" + strings.Join(params, ", ") + ") => " + returnType
}
