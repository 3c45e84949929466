// Package render turns type and expression syntax into canonical text.
package render

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// Type renders a type node. Inline object literal types render as a
// structured value (nested object types recurse); everything else renders
// as canonical text. Unsupported shapes render as "any".
func Type(node *sitter.Node, src []byte) meta.Type {
	node = typeNode(node)
	if node == nil {
		return meta.Any()
	}
	if node.Kind() == "object_type" {
		if fields, ok := objectFields(node, src); ok {
			return meta.Object(fields)
		}
	}
	return meta.Text(TypeText(node, src))
}

// typeNode strips annotation wrappers and parentheses.
func typeNode(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "adding_type_annotation",
			"asserts_annotation", "parenthesized_type":
			children := syntax.NamedChildren(node)
			if len(children) == 0 {
				return nil
			}
			node = children[0]
		default:
			return node
		}
	}
	return nil
}

func objectFields(node *sitter.Node, src []byte) ([]meta.Field, bool) {
	var fields []meta.Field
	for _, member := range syntax.NamedChildren(node) {
		switch member.Kind() {
		case "property_signature":
			name := propertyName(syntax.Field(member, "name"), src)
			if name == "" {
				return nil, false
			}
			fields = append(fields, meta.Field{
				Name:     name,
				Optional: syntax.HasToken(member, "?"),
				Type:     Type(syntax.Field(member, "type"), src),
			})
		case "method_signature":
			name := propertyName(syntax.Field(member, "name"), src)
			if name == "" {
				return nil, false
			}
			fields = append(fields, meta.Field{
				Name:     name,
				Optional: syntax.HasToken(member, "?"),
				Type:     meta.Text(signatureText(member, src, " => ")),
			})
		default:
			return nil, false
		}
	}
	return fields, true
}

// TypeText renders a type node as canonical text.
func TypeText(node *sitter.Node, src []byte) string {
	node = typeNode(node)
	if node == nil {
		return meta.AnyType
	}

	switch node.Kind() {
	case "predefined_type", "type_identifier", "identifier", "this_type", "this":
		return collapse(syntax.Text(node, src))
	case "nested_type_identifier", "nested_identifier", "member_expression":
		return strings.Join(strings.Fields(syntax.Text(node, src)), "")
	case "generic_type":
		return genericText(node, src)
	case "union_type":
		return joinMembers(flatten(node, "union_type"), src, " | ", "function_type", "constructor_type", "conditional_type")
	case "intersection_type":
		return joinMembers(flatten(node, "intersection_type"), src, " & ",
			"union_type", "function_type", "constructor_type", "conditional_type")
	case "function_type":
		return signatureText(node, src, " => ")
	case "constructor_type":
		prefix := "new "
		if syntax.HasToken(node, "abstract") {
			prefix = "abstract new "
		}
		return prefix + signatureText(node, src, " => ")
	case "array_type":
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return meta.AnyType
		}
		return arrayOf(children[0], src)
	case "readonly_type":
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return meta.AnyType
		}
		return "readonly " + TypeText(children[0], src)
	case "tuple_type":
		return tupleText(node, src)
	case "object_type":
		return objectText(node, src)
	case "conditional_type":
		return TypeText(syntax.Field(node, "left"), src) + " extends " +
			TypeText(syntax.Field(node, "right"), src) + " ? " +
			TypeText(syntax.Field(node, "consequence"), src) + " : " +
			TypeText(syntax.Field(node, "alternative"), src)
	case "literal_type":
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return collapse(syntax.Text(node, src))
		}
		return literalText(children[0], src)
	case "string":
		return Quote(syntax.Text(node, src))
	case "number", "true", "false", "null", "undefined", "unary_expression", "template_literal_type":
		return collapse(syntax.Text(node, src))
	case "type_query":
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return meta.AnyType
		}
		return "typeof " + strings.Join(strings.Fields(syntax.Text(children[0], src)), "")
	case "index_type_query":
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return meta.AnyType
		}
		return "keyof " + wrapIf(children[0], src, "union_type", "intersection_type", "function_type")
	case "lookup_type", "indexed_access_type":
		children := syntax.NamedChildren(node)
		if len(children) < 2 {
			return meta.AnyType
		}
		return wrapIf(children[0], src, "union_type", "intersection_type", "function_type") +
			"[" + TypeText(children[1], src) + "]"
	case "infer_type", "mapped_type_clause", "asserts", "asserts_annotation":
		return collapse(syntax.Text(node, src))
	case "type_predicate":
		return collapse(syntax.Text(syntax.Field(node, "name"), src)) + " is " +
			TypeText(syntax.Field(node, "type"), src)
	case "type_predicate_annotation":
		children := syntax.NamedChildren(node)
		if len(children) == 0 {
			return meta.AnyType
		}
		return TypeText(children[0], src)
	}
	return meta.AnyType
}

func literalText(node *sitter.Node, src []byte) string {
	if node.Kind() == "string" {
		return Quote(syntax.Text(node, src))
	}
	return collapse(syntax.Text(node, src))
}

func genericText(node *sitter.Node, src []byte) string {
	name := TypeText(syntax.Field(node, "name"), src)
	if name == meta.AnyType {
		if children := syntax.NamedChildren(node); len(children) > 0 {
			name = strings.Join(strings.Fields(syntax.Text(children[0], src)), "")
		}
	}
	argsNode := syntax.Field(node, "type_arguments")
	if argsNode == nil {
		argsNode = syntax.ChildByKind(node, "type_arguments")
	}
	args := syntax.NamedChildren(argsNode)

	if len(args) == 1 {
		switch name {
		case "Array":
			return arrayOf(args[0], src)
		case "ReadonlyArray":
			return "readonly " + arrayOf(args[0], src)
		}
	}
	return name + TypeArguments(argsNode, src)
}

// TypeArguments renders a type_arguments node as "<A, B>", or "" when absent.
func TypeArguments(node *sitter.Node, src []byte) string {
	args := syntax.NamedChildren(node)
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, TypeText(a, src))
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func arrayOf(elem *sitter.Node, src []byte) string {
	return wrapIf(elem, src, "union_type", "intersection_type", "function_type",
		"constructor_type", "conditional_type", "type_query", "index_type_query", "infer_type") + "[]"
}

// wrapIf renders node and parenthesizes it when its kind is one of kinds.
func wrapIf(node *sitter.Node, src []byte, kinds ...string) string {
	inner := typeNode(node)
	text := TypeText(inner, src)
	if inner == nil {
		return text
	}
	for _, k := range kinds {
		if inner.Kind() == k {
			return "(" + text + ")"
		}
	}
	return text
}

// flatten collects the members of a left-recursive union or intersection.
func flatten(node *sitter.Node, kind string) []*sitter.Node {
	var out []*sitter.Node
	for _, child := range syntax.NamedChildren(node) {
		if child.Kind() == kind {
			out = append(out, flatten(child, kind)...)
			continue
		}
		out = append(out, child)
	}
	return out
}

func joinMembers(members []*sitter.Node, src []byte, sep string, wrapKinds ...string) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, wrapIf(m, src, wrapKinds...))
	}
	if len(parts) == 0 {
		return meta.AnyType
	}
	return strings.Join(parts, sep)
}

// signatureText renders "<T>(a: A, b?: B) => R" for function types, or
// "<T>(a: A): R" style with sep ": " for call signatures.
func signatureText(node *sitter.Node, src []byte, sep string) string {
	var b strings.Builder
	tpNode := syntax.Field(node, "type_parameters")
	if tpNode == nil {
		tpNode = syntax.ChildByKind(node, "type_parameters")
	}
	if tp := TypeParams(tpNode, src); len(tp) > 0 {
		b.WriteString("<" + strings.Join(tp, ", ") + ">")
	}
	b.WriteString("(" + strings.Join(ParamTexts(syntax.Field(node, "parameters"), src), ", ") + ")")
	b.WriteString(sep)
	ret := syntax.Field(node, "return_type")
	if ret == nil {
		ret = syntax.Field(node, "type")
	}
	if ret == nil {
		b.WriteString(meta.AnyType)
	} else {
		b.WriteString(TypeText(ret, src))
	}
	return b.String()
}

// ParamTexts renders each formal parameter as "name: T", "name?: T" or
// "...name: T".
func ParamTexts(params *sitter.Node, src []byte) []string {
	var out []string
	for _, p := range syntax.NamedChildren(params) {
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			name := PatternText(syntax.Field(p, "pattern"), src)
			if p.Kind() == "optional_parameter" {
				name += "?"
			}
			out = append(out, name+": "+TypeText(syntax.Field(p, "type"), src))
		case "identifier":
			out = append(out, syntax.Text(p, src)+": "+meta.AnyType)
		}
	}
	return out
}

// PatternText renders a binding pattern: identifiers as-is, rest patterns
// with their "..." prefix, destructuring patterns collapsed to one line.
func PatternText(pattern *sitter.Node, src []byte) string {
	if pattern == nil {
		return ""
	}
	return collapse(syntax.Text(pattern, src))
}

// TypeParams returns the names of the type parameters in a type_parameters node.
func TypeParams(node *sitter.Node, src []byte) []string {
	out := []string{}
	for _, p := range syntax.NamedChildren(node) {
		if p.Kind() != "type_parameter" {
			continue
		}
		name := syntax.Field(p, "name")
		if name == nil {
			name = syntax.ChildByKind(p, "type_identifier")
		}
		if name != nil {
			out = append(out, syntax.Text(name, src))
		}
	}
	return out
}

func tupleText(node *sitter.Node, src []byte) string {
	var parts []string
	for _, m := range syntax.NamedChildren(node) {
		switch m.Kind() {
		case "tuple_parameter", "optional_tuple_parameter":
			name := PatternText(syntax.Field(m, "name"), src)
			if m.Kind() == "optional_tuple_parameter" {
				name += "?"
			}
			parts = append(parts, name+": "+TypeText(syntax.Field(m, "type"), src))
		case "optional_type":
			parts = append(parts, wrapIf(firstChild(m), src, "union_type", "function_type")+"?")
		case "rest_type":
			parts = append(parts, "..."+TypeText(firstChild(m), src))
		default:
			parts = append(parts, TypeText(m, src))
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func objectText(node *sitter.Node, src []byte) string {
	var parts []string
	for _, m := range syntax.NamedChildren(node) {
		switch m.Kind() {
		case "property_signature":
			name := propertyName(syntax.Field(m, "name"), src)
			if syntax.HasToken(m, "?") {
				name += "?"
			}
			if syntax.HasToken(m, "readonly") {
				name = "readonly " + name
			}
			parts = append(parts, name+": "+TypeText(syntax.Field(m, "type"), src))
		case "method_signature":
			name := propertyName(syntax.Field(m, "name"), src)
			if syntax.HasToken(m, "?") {
				name += "?"
			}
			parts = append(parts, name+signatureText(m, src, ": "))
		case "call_signature":
			parts = append(parts, signatureText(m, src, ": "))
		case "construct_signature":
			parts = append(parts, "new "+signatureText(m, src, ": "))
		case "index_signature":
			parts = append(parts, IndexSignatureText(m, src))
		default:
			parts = append(parts, collapse(syntax.Text(m, src)))
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// IndexSignatureText renders "[key: K]: V" (or the mapped form verbatim).
func IndexSignatureText(node *sitter.Node, src []byte) string {
	key, keyType, valueType, ok := IndexSignature(node, src)
	if !ok {
		return collapse(syntax.Text(node, src))
	}
	return "[" + key + ": " + keyType + "]: " + valueType
}

// IndexSignature returns the key name, key type and value type of an index
// signature. ok is false for mapped type clauses.
func IndexSignature(node *sitter.Node, src []byte) (key, keyType, valueType string, ok bool) {
	if syntax.ChildByKind(node, "mapped_type_clause") != nil {
		return "", "", "", false
	}
	nameNode := syntax.Field(node, "name")
	if nameNode == nil {
		nameNode = syntax.ChildByKind(node, "identifier")
	}
	if nameNode == nil {
		return "", "", "", false
	}
	valueNode := syntax.Field(node, "type")
	keyNode := syntax.Field(node, "index_type")
	if keyNode == nil {
		for _, c := range syntax.NamedChildren(node) {
			if syntax.Same(c, nameNode) || syntax.Same(c, valueNode) {
				continue
			}
			keyNode = c
			break
		}
	}
	return syntax.Text(nameNode, src), TypeText(keyNode, src), TypeText(valueNode, src), true
}

func propertyName(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	text := syntax.Text(node, src)
	if node.Kind() == "string" {
		return syntax.Unquote(text)
	}
	return collapse(text)
}

func firstChild(node *sitter.Node) *sitter.Node {
	children := syntax.NamedChildren(node)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// Quote re-quotes a string literal's source text with double quotes.
func Quote(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw
	}
	inner := syntax.Unquote(raw)
	var b strings.Builder
	b.WriteByte('"')
	escaped := false
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case escaped:
			escaped = false
			if c == '\'' {
				// \' needs no escape inside double quotes
				b.WriteByte(c)
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\\':
			escaped = true
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// collapse normalizes runs of whitespace to a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
