package react

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// ErrTooDeep is returned when a body nests deeper than the analyzer walks.
var ErrTooDeep = errors.New("template nesting too deep")

const maxDepth = 512

// FragmentTag is the tag recorded for <>...</> fragments.
const FragmentTag = "Fragment"

// Analyze summarizes the JSX elements, call expressions and template
// literals under body, in source order.
func Analyze(body *sitter.Node, src []byte) (*meta.TemplateSummary, error) {
	a := analyzer{
		src: src,
		out: &meta.TemplateSummary{
			Elements:         []meta.TemplateElement{},
			Calls:            []meta.TemplateCall{},
			TemplateLiterals: []meta.TemplateLiteral{},
		},
	}
	if err := a.walk(body, 0); err != nil {
		return nil, err
	}
	return a.out, nil
}

type analyzer struct {
	src []byte
	out *meta.TemplateSummary
}

func (a *analyzer) walk(node *sitter.Node, depth int) error {
	if node == nil {
		return nil
	}
	if depth > maxDepth {
		return fmt.Errorf("%w at line %d", ErrTooDeep, syntax.Line(node))
	}

	switch node.Kind() {
	case "jsx_element":
		open := syntax.Field(node, "open_tag")
		if open == nil {
			open = syntax.ChildByKind(node, "jsx_opening_element")
		}
		a.element(open, false)
	case "jsx_self_closing_element":
		a.element(node, true)
	case "jsx_fragment":
		a.element(nil, false)
	case "call_expression":
		a.call(node)
	case "template_string":
		a.template(node)
	}

	for _, child := range syntax.Children(node) {
		if err := a.walk(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// element records an opening or self-closing tag. A nil tag node is a
// fragment.
func (a *analyzer) element(tag *sitter.Node, selfClosing bool) {
	el := meta.TemplateElement{
		Tag:           FragmentTag,
		SelfClosing:   selfClosing,
		Attributes:    []meta.TemplateAttribute{},
		EventHandlers: []meta.TemplateAttribute{},
		Spreads:       []string{},
	}
	if tag == nil {
		a.out.Elements = append(a.out.Elements, el)
		return
	}
	el.Line = syntax.Line(tag)
	if name := syntax.Field(tag, "name"); name != nil {
		el.Tag = syntax.Text(name, a.src)
	}

	for _, c := range syntax.NamedChildren(tag) {
		switch c.Kind() {
		case "jsx_attribute":
			attr := a.attribute(c)
			if isEventHandler(attr.Name) {
				el.EventHandlers = append(el.EventHandlers, attr)
			} else {
				el.Attributes = append(el.Attributes, attr)
			}
		case "jsx_expression":
			if spread := syntax.ChildByKind(c, "spread_element"); spread != nil {
				if inner := syntax.NamedChildren(spread); len(inner) > 0 {
					el.Spreads = append(el.Spreads, render.Expr(inner[0], a.src))
				}
			}
		}
	}
	a.out.Elements = append(a.out.Elements, el)
}

func (a *analyzer) attribute(node *sitter.Node) meta.TemplateAttribute {
	children := syntax.NamedChildren(node)
	attr := meta.TemplateAttribute{Kind: render.KindBoolean, Value: "true"}
	if len(children) == 0 {
		return attr
	}
	attr.Name = syntax.Text(children[0], a.src)
	if len(children) < 2 {
		return attr
	}

	value := children[1]
	switch value.Kind() {
	case "string":
		attr.Kind = render.KindString
		attr.Value = syntax.Unquote(syntax.Text(value, a.src))
	case "jsx_expression":
		inner := syntax.NamedChildren(value)
		if len(inner) == 0 {
			attr.Kind = render.KindExpression
			attr.Value = ""
			return attr
		}
		attr.Kind = render.ValueKind(inner[0])
		attr.Value = render.Expr(inner[0], a.src)
	default:
		attr.Kind = render.ValueKind(value)
		attr.Value = render.Expr(value, a.src)
	}
	return attr
}

func isEventHandler(name string) bool {
	if len(name) < 3 || !strings.HasPrefix(name, "on") {
		return false
	}
	return unicode.IsUpper(rune(name[2]))
}

func (a *analyzer) call(node *sitter.Node) {
	c := meta.TemplateCall{
		Name: render.Expr(syntax.Field(node, "function"), a.src),
		Args: []meta.TemplateArg{},
	}
	for _, arg := range syntax.NamedChildren(syntax.Field(node, "arguments")) {
		c.Args = append(c.Args, meta.TemplateArg{Kind: render.ValueKind(arg), Value: render.Expr(arg, a.src)})
	}
	a.out.Calls = append(a.out.Calls, c)
}

func (a *analyzer) template(node *sitter.Node) {
	static, dynamic := render.TemplateParts(node, a.src)
	lit := meta.TemplateLiteral{Static: static, Dynamic: make([]string, 0, len(dynamic))}
	for _, d := range dynamic {
		lit.Dynamic = append(lit.Dynamic, render.Expr(d, a.src))
	}
	a.out.TemplateLiterals = append(a.out.TemplateLiterals, lit)
}
