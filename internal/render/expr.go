package render

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/syntax"
)

// Opaque is the rendering of expression shapes outside the supported subset.
const Opaque = "<expression>"

// Value kinds reported by ValueKind.
const (
	KindString     = "string"
	KindNumber     = "number"
	KindBoolean    = "boolean"
	KindNull       = "null"
	KindUndefined  = "undefined"
	KindArray      = "array"
	KindObject     = "object"
	KindFunction   = "function"
	KindIdentifier = "identifier"
	KindCall       = "call"
	KindMember     = "member"
	KindTemplate   = "template"
	KindJSX        = "jsx"
	KindExpression = "expression"
)

// Expr renders an expression as best-effort source-like text. String
// literals are re-quoted with double quotes and function bodies are replaced
// by a "{...}" marker.
func Expr(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}

	switch node.Kind() {
	case "string":
		return Quote(syntax.Text(node, src))
	case "template_string":
		return templateText(node, src)
	case "number", "true", "false", "null", "undefined", "this", "super", "identifier",
		"property_identifier", "shorthand_property_identifier", "private_property_identifier",
		"regex", "type_identifier":
		return syntax.Text(node, src)
	case "member_expression":
		sep := "."
		if syntax.ChildByKind(node, "optional_chain") != nil {
			sep = "?."
		}
		return Expr(syntax.Field(node, "object"), src) + sep + syntax.Text(syntax.Field(node, "property"), src)
	case "subscript_expression":
		return Expr(syntax.Field(node, "object"), src) + "[" + Expr(syntax.Field(node, "index"), src) + "]"
	case "call_expression":
		callee := Expr(syntax.Field(node, "function"), src)
		args := syntax.Field(node, "arguments")
		if args != nil && args.Kind() == "template_string" {
			return callee + templateText(args, src)
		}
		return callee + TypeArguments(syntax.Field(node, "type_arguments"), src) + "(" + strings.Join(Args(args, src), ", ") + ")"
	case "new_expression":
		text := "new " + Expr(syntax.Field(node, "constructor"), src)
		text += TypeArguments(syntax.Field(node, "type_arguments"), src)
		return text + "(" + strings.Join(Args(syntax.Field(node, "arguments"), src), ", ") + ")"
	case "array":
		return "[" + strings.Join(Args(node, src), ", ") + "]"
	case "object":
		return objectExpr(node, src)
	case "spread_element":
		return "..." + Expr(firstChild(node), src)
	case "arrow_function":
		return asyncPrefix(node) + "(" + strings.Join(ParamNames(node, src), ", ") + ") => {...}"
	case "function_expression", "function", "generator_function":
		name := ""
		if n := syntax.Field(node, "name"); n != nil {
			name = " " + syntax.Text(n, src)
		}
		return asyncPrefix(node) + "function" + name + "(" + strings.Join(ParamNames(node, src), ", ") + ") {...}"
	case "class":
		return "class {...}"
	case "binary_expression":
		return Expr(syntax.Field(node, "left"), src) + " " + syntax.Text(syntax.Field(node, "operator"), src) +
			" " + Expr(syntax.Field(node, "right"), src)
	case "assignment_expression", "augmented_assignment_expression":
		op := "="
		if o := syntax.Field(node, "operator"); o != nil {
			op = syntax.Text(o, src)
		}
		return Expr(syntax.Field(node, "left"), src) + " " + op + " " + Expr(syntax.Field(node, "right"), src)
	case "unary_expression":
		op := syntax.Text(syntax.Field(node, "operator"), src)
		arg := Expr(syntax.Field(node, "argument"), src)
		switch op {
		case "typeof", "void", "delete":
			return op + " " + arg
		}
		return op + arg
	case "update_expression":
		return collapse(syntax.Text(node, src))
	case "ternary_expression":
		return Expr(syntax.Field(node, "condition"), src) + " ? " + Expr(syntax.Field(node, "consequence"), src) +
			" : " + Expr(syntax.Field(node, "alternative"), src)
	case "parenthesized_expression":
		return "(" + Expr(firstChild(node), src) + ")"
	case "as_expression", "satisfies_expression":
		keyword := " as "
		if node.Kind() == "satisfies_expression" {
			keyword = " satisfies "
		}
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return Opaque
		}
		target := "const"
		if len(children) > 1 {
			target = TypeText(children[1], src)
		}
		return Expr(children[0], src) + keyword + target
	case "non_null_expression":
		return Expr(firstChild(node), src) + "!"
	case "await_expression":
		return "await " + Expr(firstChild(node), src)
	case "sequence_expression":
		parts := make([]string, 0, 2)
		for _, c := range syntax.NamedChildren(node) {
			parts = append(parts, Expr(c, src))
		}
		return strings.Join(parts, ", ")
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return collapse(syntax.Text(node, src))
	}
	return Opaque
}

// Args renders each argument (or array element) of node.
func Args(node *sitter.Node, src []byte) []string {
	out := []string{}
	for _, c := range syntax.NamedChildren(node) {
		out = append(out, Expr(c, src))
	}
	return out
}

// ParamNames returns the parameter patterns of a function-like node, without
// type annotations.
func ParamNames(fn *sitter.Node, src []byte) []string {
	if p := syntax.Field(fn, "parameter"); p != nil {
		return []string{syntax.Text(p, src)}
	}
	var out []string
	for _, p := range syntax.NamedChildren(syntax.Field(fn, "parameters")) {
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			name := PatternText(syntax.Field(p, "pattern"), src)
			if p.Kind() == "optional_parameter" {
				name += "?"
			}
			out = append(out, name)
		case "identifier":
			out = append(out, syntax.Text(p, src))
		}
	}
	return out
}

func asyncPrefix(node *sitter.Node) string {
	if syntax.HasToken(node, "async") {
		return "async "
	}
	return ""
}

func objectExpr(node *sitter.Node, src []byte) string {
	var parts []string
	for _, c := range syntax.NamedChildren(node) {
		switch c.Kind() {
		case "pair":
			parts = append(parts, keyText(syntax.Field(c, "key"), src)+": "+Expr(syntax.Field(c, "value"), src))
		case "shorthand_property_identifier":
			parts = append(parts, syntax.Text(c, src))
		case "spread_element":
			parts = append(parts, Expr(c, src))
		case "method_definition":
			parts = append(parts, keyText(syntax.Field(c, "name"), src)+"("+
				strings.Join(ParamNames(c, src), ", ")+") {...}")
		default:
			parts = append(parts, Opaque)
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func keyText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "string":
		return Quote(syntax.Text(node, src))
	case "computed_property_name":
		return "[" + Expr(firstChild(node), src) + "]"
	}
	return syntax.Text(node, src)
}

// TemplateParts splits a template string into its static chunks and its
// placeholder expressions. There is always one more static chunk than
// placeholders.
func TemplateParts(node *sitter.Node, src []byte) (static []string, dynamic []*sitter.Node) {
	start := node.StartByte() + 1
	end := node.EndByte() - 1
	cursor := start
	for _, c := range syntax.NamedChildren(node) {
		if c.Kind() != "template_substitution" {
			continue
		}
		static = append(static, string(src[cursor:c.StartByte()]))
		dynamic = append(dynamic, firstChild(c))
		cursor = c.EndByte()
	}
	if cursor <= end {
		static = append(static, string(src[cursor:end]))
	} else {
		static = append(static, "")
	}
	return static, dynamic
}

func templateText(node *sitter.Node, src []byte) string {
	static, dynamic := TemplateParts(node, src)
	var b strings.Builder
	b.WriteByte('`')
	for i, s := range static {
		b.WriteString(s)
		if i < len(dynamic) {
			b.WriteString("${" + Expr(dynamic[i], src) + "}")
		}
	}
	b.WriteByte('`')
	return b.String()
}

// ValueKind classifies the shape of an expression.
func ValueKind(node *sitter.Node) string {
	node = unwrapExpr(node)
	if node == nil {
		return KindUndefined
	}
	switch node.Kind() {
	case "string":
		return KindString
	case "template_string":
		return KindTemplate
	case "number":
		return KindNumber
	case "true", "false":
		return KindBoolean
	case "null":
		return KindNull
	case "undefined":
		return KindUndefined
	case "array":
		return KindArray
	case "object":
		return KindObject
	case "arrow_function", "function_expression", "function", "generator_function":
		return KindFunction
	case "identifier":
		return KindIdentifier
	case "call_expression", "new_expression":
		return KindCall
	case "member_expression", "subscript_expression":
		return KindMember
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return KindJSX
	case "unary_expression":
		if arg := syntax.Field(node, "argument"); arg != nil && arg.Kind() == "number" {
			return KindNumber
		}
		if op := syntax.Field(node, "operator"); op != nil && op.Kind() == "!" {
			return KindBoolean
		}
	}
	return KindExpression
}

// LiteralType returns the widened type of a literal expression: "string" for
// string and template literals, "number", "boolean", "null", "undefined".
func LiteralType(node *sitter.Node) (string, bool) {
	switch ValueKind(node) {
	case KindString, KindTemplate:
		return "string", true
	case KindNumber:
		return "number", true
	case KindBoolean:
		return "boolean", true
	case KindNull:
		return "null", true
	case KindUndefined:
		if node != nil {
			return "undefined", true
		}
	}
	return "", false
}

func unwrapExpr(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "parenthesized_expression", "satisfies_expression", "non_null_expression":
			node = firstChild(node)
		default:
			return node
		}
	}
	return nil
}
