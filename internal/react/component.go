// Package react classifies React function and class components, summarizes
// hook calls and analyzes JSX view templates. Everything here reads syntax
// only; nothing is executed.
package react

import (
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// Candidate is a function examined for component classification.
type Candidate struct {
	Name string
	// Annotation is the type annotation of the variable holding the function,
	// nil for function declarations and unannotated variables.
	Annotation *sitter.Node
	// Function is the function-like node: a declaration, an arrow function
	// or a function expression.
	Function *sitter.Node
	Source   []byte
}

// Rule is one component classification rule.
type Rule struct {
	Name  string
	Match func(c Candidate) bool
}

// ComponentRules are tried in order; the first match classifies the
// candidate as a component.
var ComponentRules = []Rule{
	{Name: "component-annotation", Match: annotatedComponent},
	{Name: "pascal-case-view-return", Match: pascalViewReturn},
	{Name: "view-return-type", Match: viewReturnType},
}

// Classify returns the name of the first rule matching c, or "" when c is
// not a component.
func Classify(c Candidate) string {
	if c.Function == nil {
		// Wrapped and ambient components are known by their annotation alone.
		if annotatedComponent(c) {
			return ComponentRules[0].Name
		}
		return ""
	}
	for _, r := range ComponentRules {
		if r.Match(c) {
			return r.Name
		}
	}
	return ""
}

var componentTypes = map[string]bool{
	"FC":                    true,
	"FunctionComponent":     true,
	"VFC":                   true,
	"VoidFunctionComponent": true,
}

var viewTypes = map[string]bool{
	"JSX.Element":        true,
	"ReactElement":       true,
	"ReactNode":          true,
	"React.ReactElement": true,
	"React.ReactNode":    true,
	"React.JSX.Element":  true,
}

var baseClasses = map[string]bool{
	"Component":     true,
	"PureComponent": true,
}

// annotatedComponent matches variables typed FC, FunctionComponent, VFC or
// VoidFunctionComponent, bare or React-qualified, with or without props.
func annotatedComponent(c Candidate) bool {
	return IsComponentAnnotation(c.Annotation, c.Source)
}

// IsComponentAnnotation reports whether annotation names a function
// component type.
func IsComponentAnnotation(annotation *sitter.Node, src []byte) bool {
	name, _ := typeReference(annotation, src)
	return componentTypes[unqualified(name, "React")]
}

// WrappedFunction returns the function passed to a wrapper call such as
// React.memo(fn) or forwardRef(fn), following nested wrappers. It returns
// nil when value is not a call or no argument is a function.
func WrappedFunction(value *sitter.Node) *sitter.Node {
	value = syntax.Unwrap(value)
	if value == nil || value.Kind() != "call_expression" {
		return nil
	}
	for _, arg := range syntax.NamedChildren(syntax.Field(value, "arguments")) {
		arg = syntax.Unwrap(arg)
		switch arg.Kind() {
		case "arrow_function", "function_expression", "function":
			return arg
		case "call_expression":
			if fn := WrappedFunction(arg); fn != nil {
				return fn
			}
		}
	}
	return nil
}

// pascalViewReturn matches unannotated functions with a PascalCase name
// returning JSX.
func pascalViewReturn(c Candidate) bool {
	if c.Annotation != nil || !isPascal(c.Name) {
		return false
	}
	return ReturnsView(c.Function)
}

// viewReturnType matches functions whose return annotation is a view type,
// optionally unioned with null or undefined.
func viewReturnType(c Candidate) bool {
	ret := syntax.Field(c.Function, "return_type")
	if ret == nil {
		return false
	}
	seen := false
	for _, member := range strings.Split(render.TypeText(ret, c.Source), "|") {
		member = strings.TrimSpace(member)
		switch {
		case member == "null" || member == "undefined":
		case viewTypes[member]:
			seen = true
		default:
			return false
		}
	}
	return seen
}

func isPascal(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// unqualified strips a leading "ns." qualifier.
func unqualified(name, ns string) string {
	return strings.TrimPrefix(name, ns+".")
}

// typeReference returns the referenced name and the type arguments of a
// type reference annotation such as "React.FC<Props>".
func typeReference(annotation *sitter.Node, src []byte) (string, []*sitter.Node) {
	node := annotation
	for node != nil && (node.Kind() == "type_annotation" || node.Kind() == "parenthesized_type") {
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return "", nil
		}
		node = children[0]
	}
	if node == nil {
		return "", nil
	}
	switch node.Kind() {
	case "type_identifier", "nested_type_identifier", "identifier", "member_expression":
		return syntax.Text(node, src), nil
	case "generic_type":
		name := syntax.Field(node, "name")
		if name == nil {
			name = syntax.NamedChildren(node)[0]
		}
		args := syntax.Field(node, "type_arguments")
		if args == nil {
			args = syntax.ChildByKind(node, "type_arguments")
		}
		return syntax.Text(name, src), syntax.NamedChildren(args)
	}
	return "", nil
}

// ReturnsView reports whether a function returns JSX from its expression
// body or from any return statement of its own body.
func ReturnsView(fn *sitter.Node) bool {
	body := syntax.Field(fn, "body")
	if body == nil {
		return false
	}
	if body.Kind() != "statement_block" {
		return isView(body)
	}
	found := false
	syntax.Walk(body, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if !syntax.Same(n, body) && isFunctionLike(n) {
			return false
		}
		if n.Kind() == "return_statement" {
			if children := syntax.NamedChildren(n); len(children) > 0 && isView(children[0]) {
				found = true
			}
			return false
		}
		return true
	})
	return found
}

func isView(node *sitter.Node) bool {
	node = syntax.Unwrap(node)
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	case "ternary_expression":
		return isView(syntax.Field(node, "consequence")) || isView(syntax.Field(node, "alternative"))
	case "binary_expression":
		return isView(syntax.Field(node, "right"))
	}
	return false
}

func isFunctionLike(n *sitter.Node) bool {
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration", "function_expression", "function",
		"generator_function", "arrow_function", "method_definition", "class_declaration", "class":
		return true
	}
	return false
}

// ClassBase describes the React base class of a class component.
type ClassBase struct {
	PropsType string
	StateType string
}

// ClassComponent reports whether the class node extends Component or
// PureComponent, bare or React-qualified. Type arguments on the base are read
// positionally as props and state types.
func ClassComponent(class *sitter.Node, src []byte) (ClassBase, bool) {
	ext := syntax.ChildByKind(syntax.ChildByKind(class, "class_heritage"), "extends_clause")
	if ext == nil {
		return ClassBase{}, false
	}
	children := syntax.NamedChildren(ext)
	if len(children) == 0 || !baseClasses[unqualified(syntax.Text(children[0], src), "React")] {
		return ClassBase{}, false
	}

	var base ClassBase
	if len(children) > 1 && children[1].Kind() == "type_arguments" {
		args := syntax.NamedChildren(children[1])
		if len(args) > 0 {
			base.PropsType = render.TypeText(args[0], src)
		}
		if len(args) > 1 {
			base.StateType = render.TypeText(args[1], src)
		}
	}
	return base, true
}

// RenderMethod returns the render method of a class body, or nil.
func RenderMethod(class *sitter.Node, src []byte) *sitter.Node {
	for _, member := range syntax.NamedChildren(syntax.Field(class, "body")) {
		if member.Kind() == "method_definition" && syntax.Text(syntax.Field(member, "name"), src) == "render" {
			return member
		}
	}
	return nil
}

// PropsSpec is what a component's signature says about its props.
type PropsSpec struct {
	// Props are the destructured prop names, or the inline props type
	// members when the whole props object is taken.
	Props []meta.Prop
	// TypeName names a props interface or alias declared elsewhere in the
	// file, "" when the props type is inline or absent.
	TypeName string
	// Destructured is set when the first parameter is an object pattern.
	Destructured bool
}

// ReadProps reads the props of a component from its first parameter and,
// failing a parameter annotation, from the FC type argument of c.Annotation.
func ReadProps(c Candidate) PropsSpec {
	var spec PropsSpec
	param := firstParameter(c.Function)

	typeNode := syntax.Field(param, "type")
	if typeNode == nil {
		if _, args := typeReference(c.Annotation, c.Source); len(args) > 0 {
			typeNode = args[0]
		}
	}
	inline := render.Type(typeNode, c.Source)
	if typeNode != nil && !inline.IsObject() {
		spec.TypeName = render.TypeText(typeNode, c.Source)
	}

	pattern := syntax.Field(param, "pattern")
	if pattern != nil && pattern.Kind() == "object_pattern" {
		spec.Destructured = true
		for _, child := range syntax.NamedChildren(pattern) {
			p, ok := patternProp(child, c.Source)
			if !ok {
				continue
			}
			if t, found := inline.Field(p.Name); found {
				p.Type = t.String()
			}
			for _, f := range inline.Fields {
				if f.Name == p.Name && f.Optional {
					p.Optional = true
				}
			}
			spec.Props = append(spec.Props, p)
		}
		return spec
	}

	for _, f := range inline.Fields {
		spec.Props = append(spec.Props, meta.Prop{Name: f.Name, Type: f.Type.String(), Optional: f.Optional})
	}
	return spec
}

func patternProp(node *sitter.Node, src []byte) (meta.Prop, bool) {
	switch node.Kind() {
	case "shorthand_property_identifier_pattern":
		return meta.Prop{Name: syntax.Text(node, src), Type: meta.AnyType}, true
	case "object_assignment_pattern", "assignment_pattern":
		left := syntax.Field(node, "left")
		right := syntax.Field(node, "right")
		return meta.Prop{
			Name:         syntax.Text(left, src),
			Type:         meta.AnyType,
			Optional:     true,
			DefaultValue: render.Expr(right, src),
		}, left != nil
	case "pair_pattern":
		key := syntax.Unquote(syntax.Text(syntax.Field(node, "key"), src))
		p := meta.Prop{Name: key, Type: meta.AnyType}
		if value := syntax.Field(node, "value"); value != nil && (value.Kind() == "assignment_pattern" || value.Kind() == "object_assignment_pattern") {
			p.Optional = true
			p.DefaultValue = render.Expr(syntax.Field(value, "right"), src)
		}
		return p, key != ""
	}
	return meta.Prop{}, false
}

func firstParameter(fn *sitter.Node) *sitter.Node {
	if syntax.Field(fn, "parameter") != nil {
		return nil
	}
	for _, p := range syntax.NamedChildren(syntax.Field(fn, "parameters")) {
		if p.Kind() == "required_parameter" || p.Kind() == "optional_parameter" {
			return p
		}
	}
	return nil
}

// Resolve fills prop types from the declared props type returned by lookup.
// A component taking the whole props object gets every declared member.
func (s PropsSpec) Resolve(lookup func(typeName string) ([]meta.Prop, bool)) []meta.Prop {
	var declared []meta.Prop
	found := false
	if s.TypeName != "" && lookup != nil {
		declared, found = lookup(s.TypeName)
	}
	if !s.Destructured {
		if found {
			return declared
		}
		return s.Props
	}

	byName := make(map[string]meta.Prop, len(declared))
	for _, d := range declared {
		byName[d.Name] = d
	}
	out := make([]meta.Prop, len(s.Props))
	for i, p := range s.Props {
		if d, ok := byName[p.Name]; ok {
			if p.Type == meta.AnyType {
				p.Type = d.Type
			}
			p.Optional = p.Optional || d.Optional
		}
		out[i] = p
	}
	return out
}
