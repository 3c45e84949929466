package decl

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

func (v *visitor) classDeclaration(node *sitter.Node, f frame) []entry {
	name := v.nameOf(node)
	if name == "" {
		if !f.isDefault {
			return nil
		}
		name = "default"
	}

	c := meta.NewClass(name)
	c.IsExported = f.isExported()
	c.IsDeclared = f.declared
	c.IsDefault = f.isDefault
	c.IsAbstract = node.Kind() == "abstract_class_declaration" || syntax.HasToken(node, "abstract")
	c.GenericsTypes = render.TypeParams(syntax.Field(node, "type_parameters"), v.src)
	c.Decorators = append(append(c.Decorators, f.decorators...), Decorators(node, v.src)...)
	v.heritage(c, syntax.ChildByKind(node, "class_heritage"))
	v.classBody(c, syntax.Field(node, "body"))

	if v.opts.Components {
		v.classifyClass(c, node)
	}

	f.scope.Classes[name] = c
	v.exportDecl(f, name)
	return []entry{{name: name, kind: "class", record: c}}
}

func (v *visitor) heritage(c *meta.Class, heritage *sitter.Node) {
	if heritage == nil {
		return
	}
	if ext := syntax.ChildByKind(heritage, "extends_clause"); ext != nil {
		children := syntax.NamedChildren(ext)
		for i := 0; i < len(children); i++ {
			if children[i].Kind() == "type_arguments" {
				continue
			}
			ref := render.Expr(children[i], v.src)
			if i+1 < len(children) && children[i+1].Kind() == "type_arguments" {
				ref += render.TypeArguments(children[i+1], v.src)
			}
			c.Extends = append(c.Extends, ref)
		}
	}
	if impl := syntax.ChildByKind(heritage, "implements_clause"); impl != nil {
		for _, t := range syntax.NamedChildren(impl) {
			c.Implements = append(c.Implements, render.TypeText(t, v.src))
		}
	}
}

// classBody visits the members of a class. Decorators that precede a member
// as siblings are attached to that member.
func (v *visitor) classBody(c *meta.Class, body *sitter.Node) {
	var pending []meta.Decorator
	for _, member := range syntax.NamedChildren(body) {
		if member.Kind() == "decorator" {
			pending = append(pending, Decorator(member, v.src))
			continue
		}
		decs := append(pending, Decorators(member, v.src)...)
		pending = nil
		if decs == nil {
			decs = []meta.Decorator{}
		}

		switch member.Kind() {
		case "method_definition", "method_signature", "abstract_method_signature":
			v.classMethod(c, member, decs)
		case "public_field_definition", "property_signature":
			v.classField(c, member, decs)
		}
	}
}

type modifiers struct {
	access   string
	static   bool
	readonly bool
	abstract bool
	override bool
	optional bool
	async    bool
}

func (v *visitor) modifiers(member *sitter.Node) modifiers {
	m := modifiers{
		access:   meta.AccessPublic,
		static:   syntax.HasToken(member, "static"),
		readonly: syntax.HasToken(member, "readonly"),
		abstract: syntax.HasToken(member, "abstract") || member.Kind() == "abstract_method_signature",
		override: syntax.ChildByKind(member, "override_modifier") != nil,
		optional: syntax.HasToken(member, "?"),
		async:    syntax.HasToken(member, "async"),
	}
	if acc := syntax.ChildByKind(member, "accessibility_modifier"); acc != nil {
		m.access = strings.TrimSpace(v.text(acc))
	}
	if name := syntax.Field(member, "name"); name != nil && name.Kind() == "private_property_identifier" {
		m.access = meta.AccessPrivate
	}
	return m
}

func (v *visitor) memberName(member *sitter.Node) string {
	name := syntax.Field(member, "name")
	if name == nil {
		return ""
	}
	switch name.Kind() {
	case "string":
		return syntax.Unquote(v.text(name))
	case "computed_property_name":
		return "[" + render.Expr(syntax.NamedChildren(name)[0], v.src) + "]"
	}
	return v.text(name)
}

func (v *visitor) classMethod(c *meta.Class, member *sitter.Node, decs []meta.Decorator) {
	name := v.memberName(member)
	if name == "" {
		return
	}
	mods := v.modifiers(member)
	params := syntax.Field(member, "parameters")
	body := syntax.Field(member, "body")

	if name == "constructor" {
		parameters := v.parameters(member)
		ctor := meta.Constructor{
			Parameters:      parameters,
			Params:          meta.ParamTypes(parameters),
			AccessModifier:  mods.access,
			ParamDecorators: ParamDecorators(params, v.src),
		}
		if body != nil {
			ctor.Body = v.text(body)
		}
		c.AddConstructor(ctor, body != nil)
		v.parameterProperties(c, params)
		return
	}

	m := &meta.Method{
		Name:            name,
		Kind:            "method",
		Parameters:      v.parameters(member),
		ReturnType:      v.resolver.ReturnType(member),
		AccessModifier:  mods.access,
		Access:          meta.LegacyAccess(mods.access),
		IsStatic:        mods.static,
		IsAsync:         mods.async,
		IsAbstract:      mods.abstract,
		IsOverride:      mods.override,
		IsOptional:      mods.optional,
		IsGenerator:     syntax.HasToken(member, "*"),
		Decorators:      decs,
		ParamDecorators: ParamDecorators(params, v.src),
		GenericsTypes:   render.TypeParams(syntax.Field(member, "type_parameters"), v.src),
	}
	switch {
	case syntax.HasToken(member, "get"):
		m.Kind = "get"
	case syntax.HasToken(member, "set"):
		m.Kind = "set"
		if cur, ok := c.Methods[name]; ok && cur.Kind == "get" {
			return
		}
	case syntax.HasToken(member, "accessor"):
		m.Kind = "accessor"
	}
	m.Params = meta.ParamTypes(m.Parameters)
	if body != nil {
		m.Body = v.text(body)
		m.SetHasBody(true)
	}
	c.AddMethod(m)
}

func (v *visitor) classField(c *meta.Class, member *sitter.Node, decs []meta.Decorator) {
	name := v.memberName(member)
	if name == "" {
		return
	}
	mods := v.modifiers(member)
	value := syntax.Field(member, "value")
	typ := v.resolver.DeclaredType(syntax.Field(member, "type"), value)
	p := &meta.Property{
		Name:           name,
		Type:           typ,
		TypeString:     typ.String(),
		AccessModifier: mods.access,
		Access:         meta.LegacyAccess(mods.access),
		IsStatic:       mods.static,
		IsReadonly:     mods.readonly,
		IsAbstract:     mods.abstract,
		IsOptional:     mods.optional,
		IsOverride:     mods.override,
		Decorators:     decs,
	}
	if value != nil {
		p.Value = render.Expr(value, v.src)
	}
	c.Properties[name] = p
}

// parameterProperties adds constructor parameters carrying an access
// modifier or readonly as class properties.
func (v *visitor) parameterProperties(c *meta.Class, params *sitter.Node) {
	for _, p := range syntax.NamedChildren(params) {
		if p.Kind() != "required_parameter" && p.Kind() != "optional_parameter" {
			continue
		}
		acc := syntax.ChildByKind(p, "accessibility_modifier")
		readonly := syntax.HasToken(p, "readonly")
		if acc == nil && !readonly {
			continue
		}
		pattern := syntax.Field(p, "pattern")
		if pattern == nil || pattern.Kind() != "identifier" {
			continue
		}
		access := meta.AccessPublic
		if acc != nil {
			access = strings.TrimSpace(v.text(acc))
		}
		typ := v.resolver.DeclaredType(syntax.Field(p, "type"), syntax.Field(p, "value"))
		name := v.text(pattern)
		decs := Decorators(p, v.src)
		c.Properties[name] = &meta.Property{
			Name:                name,
			Type:                typ,
			TypeString:          typ.String(),
			AccessModifier:      access,
			Access:              meta.LegacyAccess(access),
			IsReadonly:          readonly,
			IsOptional:          p.Kind() == "optional_parameter",
			IsOverride:          syntax.ChildByKind(p, "override_modifier") != nil,
			IsParameterProperty: true,
			Decorators:          decs,
		}
	}
}
