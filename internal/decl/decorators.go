package decl

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// Decorators returns the decorators written directly on node, in source
// order. A call decorator "@Name(a, b)" yields its callee text and rendered
// arguments; a bare "@Name" yields no arguments.
func Decorators(node *sitter.Node, src []byte) []meta.Decorator {
	out := []meta.Decorator{}
	for _, d := range syntax.ChildrenByKind(node, "decorator") {
		out = append(out, Decorator(d, src))
	}
	return out
}

// Decorator parses one decorator node.
func Decorator(d *sitter.Node, src []byte) meta.Decorator {
	children := syntax.NamedChildren(d)
	if len(children) == 0 {
		return meta.Decorator{Args: []string{}}
	}
	expr := syntax.Unwrap(children[0])
	if expr.Kind() == "call_expression" {
		return meta.Decorator{
			Name: render.Expr(syntax.Field(expr, "function"), src),
			Args: render.Args(syntax.Field(expr, "arguments"), src),
		}
	}
	return meta.Decorator{Name: render.Expr(expr, src), Args: []string{}}
}

// ParamDecorators returns one entry per decorated parameter of a
// formal_parameters node.
func ParamDecorators(params *sitter.Node, src []byte) []meta.ParamDecorators {
	out := []meta.ParamDecorators{}
	index := 0
	for _, p := range syntax.NamedChildren(params) {
		if p.Kind() != "required_parameter" && p.Kind() != "optional_parameter" {
			continue
		}
		pattern := syntax.Field(p, "pattern")
		if pattern != nil && pattern.Kind() == "this" {
			continue
		}
		if decs := Decorators(p, src); len(decs) > 0 {
			out = append(out, meta.ParamDecorators{
				ParameterIndex: index,
				Name:           render.PatternText(pattern, src),
				Decorators:     decs,
			})
		}
		index++
	}
	return out
}

func (v *visitor) decorators(node *sitter.Node) []meta.Decorator {
	decs := Decorators(node, v.src)
	if len(decs) == 0 {
		return nil
	}
	return decs
}
