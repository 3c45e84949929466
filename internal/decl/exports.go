package decl

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

func (v *visitor) exportStatement(node *sitter.Node, f frame) []entry {
	source := ""
	if s := syntax.Field(node, "source"); s != nil {
		source = syntax.Unquote(v.text(s))
	}
	typeOnly := syntax.HasToken(node, "type")
	isDefault := syntax.HasToken(node, "default")

	if decl := syntax.Field(node, "declaration"); decl != nil {
		inner := f.statement()
		inner.exported = true
		inner.isDefault = isDefault
		inner.decorators = Decorators(node, v.src)
		return v.dispatch(decl, inner)
	}

	if value := syntax.Field(node, "value"); value != nil && isDefault {
		return v.exportDefaultValue(syntax.Unwrap(value), node, f)
	}

	if clause := syntax.ChildByKind(node, "export_clause"); clause != nil {
		for _, spec := range syntax.ChildrenByKind(clause, "export_specifier") {
			name := v.text(syntax.Field(spec, "name"))
			exported := name
			if alias := syntax.Field(spec, "alias"); alias != nil {
				exported = v.text(alias)
			}
			kind := meta.ExportNamed
			if exported == "default" {
				kind = meta.ExportDefault
			}
			f.scope.Exports = append(f.scope.Exports, meta.Export{
				Name:       syntax.Unquote(exported),
				Local:      syntax.Unquote(name),
				Source:     source,
				Kind:       kind,
				IsTypeOnly: typeOnly || syntax.HasToken(spec, "type"),
			})
		}
		return nil
	}

	if ns := syntax.ChildByKind(node, "namespace_export"); ns != nil {
		name := ""
		if children := syntax.NamedChildren(ns); len(children) > 0 {
			name = syntax.Unquote(v.text(children[0]))
		}
		f.scope.Exports = append(f.scope.Exports, meta.Export{Name: name, Source: source, Kind: meta.ExportNamespace, IsTypeOnly: typeOnly})
		return nil
	}

	if syntax.HasToken(node, "*") {
		f.scope.Exports = append(f.scope.Exports, meta.Export{Name: "*", Source: source, Kind: meta.ExportAll, IsTypeOnly: typeOnly})
		return nil
	}

	if syntax.HasToken(node, "=") {
		// export = target
		if children := syntax.NamedChildren(node); len(children) > 0 {
			f.scope.Exports = append(f.scope.Exports, meta.Export{Name: "export=", Local: render.Expr(children[0], v.src), Kind: meta.ExportAssignment})
		}
		return nil
	}

	if syntax.HasToken(node, "as") && syntax.HasToken(node, "namespace") {
		// export as namespace Name
		if children := syntax.NamedChildren(node); len(children) > 0 {
			f.scope.Exports = append(f.scope.Exports, meta.Export{Name: v.text(children[0]), Kind: meta.ExportNamespace})
		}
	}
	return nil
}

// exportDefaultValue handles "export default <expression>".
func (v *visitor) exportDefaultValue(value, node *sitter.Node, f frame) []entry {
	inner := f.statement()
	inner.exported = true
	inner.isDefault = true
	switch value.Kind() {
	case "identifier":
		f.scope.Exports = append(f.scope.Exports, meta.Export{Name: "default", Local: v.text(value), Kind: meta.ExportDefault})
		return nil
	case "class":
		inner.decorators = Decorators(node, v.src)
		return v.classDeclaration(value, inner)
	case "function_expression", "function", "arrow_function", "generator_function":
		name := v.nameOf(value)
		if name == "" {
			name = "default"
		}
		fn := v.function(name, value)
		fn.IsExported = true
		fn.IsDeclared = f.declared
		fn.IsDefault = true
		if v.opts.Components {
			v.classifyFunction(fn, value)
		}
		f.scope.AddFunction(fn)
		v.exportDecl(inner, name)
		return []entry{{name: name, kind: "function", record: fn}}
	}
	f.scope.Exports = append(f.scope.Exports, meta.Export{Name: "default", Local: render.Expr(value, v.src), Kind: meta.ExportDefault})
	return nil
}

func (v *visitor) importStatement(node *sitter.Node, f frame) []entry {
	source := syntax.Field(node, "source")
	clause := syntax.ChildByKind(node, "import_clause")

	if req := syntax.ChildByKind(node, "import_require_clause"); req != nil {
		src := syntax.Unquote(v.text(syntax.Field(req, "source")))
		imp := v.importFor(f.scope, src)
		if id := syntax.ChildByKind(req, "identifier"); id != nil {
			imp.Default = v.text(id)
		}
		return nil
	}
	if source == nil {
		return nil
	}

	imp := v.importFor(f.scope, syntax.Unquote(v.text(source)))
	if syntax.HasToken(node, "type") {
		imp.IsTypeOnly = true
	}
	if clause == nil {
		imp.SideEffect = true
		return nil
	}

	for _, c := range syntax.NamedChildren(clause) {
		switch c.Kind() {
		case "identifier":
			imp.Default = v.text(c)
		case "namespace_import":
			if id := syntax.ChildByKind(c, "identifier"); id != nil {
				imp.Namespace = v.text(id)
			}
		case "named_imports":
			for _, spec := range syntax.ChildrenByKind(c, "import_specifier") {
				s := meta.ImportSpecifier{
					Name:       syntax.Unquote(v.text(syntax.Field(spec, "name"))),
					IsTypeOnly: syntax.HasToken(spec, "type"),
				}
				if alias := syntax.Field(spec, "alias"); alias != nil {
					s.Alias = v.text(alias)
				}
				imp.Named = append(imp.Named, s)
			}
		}
	}
	return nil
}

// importFor returns the import record for source, merging repeated imports
// of the same module.
func (v *visitor) importFor(s *meta.Scope, source string) *meta.Import {
	if imp, ok := s.Imports[source]; ok {
		return imp
	}
	imp := &meta.Import{Source: source, Named: []meta.ImportSpecifier{}}
	s.Imports[source] = imp
	return imp
}

// importAlias records "import A = B.C" as an import of the entity B.C.
func (v *visitor) importAlias(node *sitter.Node, f frame) []entry {
	children := syntax.NamedChildren(node)
	if len(children) < 2 {
		return nil
	}
	imp := v.importFor(f.scope, render.TypeText(children[1], v.src))
	imp.Default = v.text(children[0])
	return nil
}
