package decl

import (
	"math"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

func (v *visitor) interfaceDeclaration(node *sitter.Node, f frame) []entry {
	name := v.nameOf(node)
	if name == "" {
		return nil
	}

	i := meta.NewInterface(name)
	i.IsExported = f.isExported()
	i.IsDeclared = f.declared
	i.GenericsTypes = render.TypeParams(syntax.Field(node, "type_parameters"), v.src)
	if ext := syntax.ChildByKind(node, "extends_type_clause"); ext != nil {
		for _, t := range syntax.NamedChildren(ext) {
			i.Extends = append(i.Extends, render.TypeText(t, v.src))
		}
	}

	for _, member := range syntax.NamedChildren(syntax.Field(node, "body")) {
		switch member.Kind() {
		case "property_signature":
			name := v.memberName(member)
			if name == "" {
				continue
			}
			i.AddProperty(meta.PropertyDetail{
				Name:       name,
				Type:       render.Type(syntax.Field(member, "type"), v.src),
				Optional:   syntax.HasToken(member, "?"),
				IsReadonly: syntax.HasToken(member, "readonly"),
			})
		case "method_signature":
			name := v.memberName(member)
			if name == "" {
				continue
			}
			sig := v.signature(name, member)
			sig.Optional = syntax.HasToken(member, "?")
			i.Methods[name] = &sig
		case "call_signature":
			i.CallSignatures = append(i.CallSignatures, v.signature("", member))
		case "construct_signature":
			i.CallSignatures = append(i.CallSignatures, v.signature("new", member))
		case "index_signature":
			key, keyType, valueType, ok := render.IndexSignature(member, v.src)
			if ok {
				i.IndexSignatures = append(i.IndexSignatures, meta.IndexSignature{KeyName: key, KeyType: keyType, ValueType: valueType})
			}
		}
	}

	f.scope.Interfaces[name] = i
	v.exportDecl(f, name)
	return []entry{{name: name, kind: "interface", record: i}}
}

func (v *visitor) signature(name string, member *sitter.Node) meta.MethodSignature {
	params := v.parameters(member)
	ret := meta.AnyType
	if r := syntax.Field(member, "return_type"); r != nil {
		ret = render.TypeText(r, v.src)
	}
	return meta.MethodSignature{
		Name:          name,
		Parameters:    params,
		Params:        meta.ParamTypes(params),
		ReturnType:    ret,
		GenericsTypes: render.TypeParams(syntax.Field(member, "type_parameters"), v.src),
	}
}

func (v *visitor) typeAliasDeclaration(node *sitter.Node, f frame) []entry {
	name := v.nameOf(node)
	if name == "" {
		return nil
	}
	typ := render.Type(syntax.Field(node, "value"), v.src)
	alias := &meta.TypeAlias{
		Name:          name,
		Type:          typ,
		TypeString:    typ.String(),
		GenericsTypes: render.TypeParams(syntax.Field(node, "type_parameters"), v.src),
		IsExported:    f.isExported(),
		IsDeclared:    f.declared,
	}
	f.scope.Types[name] = alias
	v.exportDecl(f, name)
	return []entry{{name: name, kind: "type", record: alias}}
}

func (v *visitor) enumDeclaration(node *sitter.Node, f frame) []entry {
	name := v.nameOf(node)
	if name == "" {
		return nil
	}
	e := &meta.Enum{
		Name:       name,
		IsConst:    syntax.HasToken(node, "const"),
		IsExported: f.isExported(),
		IsDeclared: f.declared,
		Members:    EnumMembers(syntax.Field(node, "body"), name, v.src),
	}
	f.scope.Enums[name] = e
	v.exportDecl(f, name)
	return []entry{{name: name, kind: "enum", record: e}}
}

// EnumMembers computes member values. Members without an initializer
// auto-increment from the previous numeric member, starting at 0. Constant
// numeric expressions, including references to earlier members, are folded.
// String initializers keep their unquoted content; anything else keeps the
// rendered initializer.
func EnumMembers(body *sitter.Node, enumName string, src []byte) []meta.EnumMember {
	members := []meta.EnumMember{}
	known := map[string]float64{}
	next := 0.0
	for _, m := range syntax.NamedChildren(body) {
		var name string
		var nameNode, init *sitter.Node
		switch m.Kind() {
		case "property_identifier", "identifier":
			name = syntax.Text(m, src)
		case "string":
			name = syntax.Unquote(syntax.Text(m, src))
		case "enum_assignment":
			parts := syntax.NamedChildren(m)
			nameNode, init = syntax.Field(m, "name"), syntax.Field(m, "value")
			if nameNode == nil && len(parts) > 0 {
				nameNode = parts[0]
			}
			if init == nil && len(parts) > 1 {
				init = parts[len(parts)-1]
			}
			name = syntax.Unquote(syntax.Text(nameNode, src))
		default:
			continue
		}

		if init == nil {
			known[name] = next
			members = append(members, meta.EnumMember{Name: name, Value: numberValue(next)})
			next++
			continue
		}

		if n, ok := foldNumber(init, enumName, known, src); ok {
			known[name] = n
			members = append(members, meta.EnumMember{Name: name, Value: numberValue(n)})
			next = n + 1
			continue
		}
		if init.Kind() == "string" {
			members = append(members, meta.EnumMember{Name: name, Value: syntax.Unquote(syntax.Text(init, src))})
			continue
		}
		members = append(members, meta.EnumMember{Name: name, Value: render.Expr(init, src)})
	}
	return members
}

func numberValue(n float64) any {
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return int(n)
	}
	return n
}

// foldNumber evaluates a constant numeric expression.
func foldNumber(node *sitter.Node, enumName string, known map[string]float64, src []byte) (float64, bool) {
	node = syntax.Unwrap(node)
	if node == nil {
		return 0, false
	}
	switch node.Kind() {
	case "number":
		return parseNumber(syntax.Text(node, src))
	case "identifier":
		n, ok := known[syntax.Text(node, src)]
		return n, ok
	case "member_expression":
		obj := syntax.Field(node, "object")
		if obj == nil || syntax.Text(obj, src) != enumName {
			return 0, false
		}
		n, ok := known[syntax.Text(syntax.Field(node, "property"), src)]
		return n, ok
	case "unary_expression":
		arg, ok := foldNumber(syntax.Field(node, "argument"), enumName, known, src)
		if !ok {
			return 0, false
		}
		switch syntax.Text(syntax.Field(node, "operator"), src) {
		case "-":
			return -arg, true
		case "+":
			return arg, true
		case "~":
			return float64(^int32(arg)), true
		}
	case "binary_expression":
		l, okL := foldNumber(syntax.Field(node, "left"), enumName, known, src)
		r, okR := foldNumber(syntax.Field(node, "right"), enumName, known, src)
		if !okL || !okR {
			return 0, false
		}
		return binary(syntax.Text(syntax.Field(node, "operator"), src), l, r)
	}
	return 0, false
}

func binary(op string, l, r float64) (float64, bool) {
	li, ri := int32(int64(l)), uint32(int64(r))
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case "%":
		if r == 0 {
			return 0, false
		}
		return math.Mod(l, r), true
	case "**":
		return math.Pow(l, r), true
	case "<<":
		return float64(li << (ri & 31)), true
	case ">>":
		return float64(li >> (ri & 31)), true
	case ">>>":
		return float64(uint32(li) >> (ri & 31)), true
	case "&":
		return float64(li & int32(ri)), true
	case "|":
		return float64(li | int32(ri)), true
	case "^":
		return float64(li ^ int32(ri)), true
	}
	return 0, false
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, "_", "")
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	return 0, false
}
