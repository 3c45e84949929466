package decl

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// ambientDeclaration handles "declare ...": the inner declaration is visited
// as declared and also recorded in the scope's declarations bucket.
// "declare global { ... }" splices its members into the root declarations.
func (v *visitor) ambientDeclaration(node *sitter.Node, f frame) []entry {
	if block := syntax.ChildByKind(node, "statement_block"); block != nil && syntax.HasToken(node, "global") {
		v.global(block, f)
		return nil
	}

	inner := f
	inner.declared = true
	var out []entry
	for _, child := range syntax.NamedChildren(node) {
		out = append(out, v.dispatch(child, inner)...)
	}
	for _, e := range out {
		f.scope.Declarations[e.name] = declaration(e, false)
	}
	return out
}

// global visits the body of "declare global" in a scratch scope and moves
// its records into the root declarations bucket.
func (v *visitor) global(block *sitter.Node, f frame) {
	scratch := meta.NewScope()
	entries := v.statements(block, frame{scope: scratch, declared: true, implicit: true})
	scratch.Flush()
	for _, e := range entries {
		v.root.Declarations[e.name] = declaration(e, true)
	}
}

func declaration(e entry, global bool) *meta.Declaration {
	return &meta.Declaration{
		Name:      e.name,
		Kind:      e.kind,
		IsGlobal:  global,
		Signature: signatureOf(e),
		Details:   e.record,
	}
}

// signatureOf renders a one-line summary of a declared record.
func signatureOf(e entry) string {
	switch r := e.record.(type) {
	case *meta.Function:
		return "(" + strings.Join(paramSummary(r.Parameters), ", ") + ") => " + r.ReturnType
	case *meta.Variable:
		return r.Type.String()
	case *meta.Class:
		return "class " + r.Name
	case *meta.Interface:
		return "interface " + r.Name
	case *meta.TypeAlias:
		return r.TypeString
	case *meta.Enum:
		return "enum " + r.Name
	case *meta.Module:
		if e.kind == "module" {
			return "module " + render.Quote(r.Name)
		}
		return "namespace " + r.Name
	}
	return ""
}

func paramSummary(params []meta.Parameter) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		name := p.Name
		if p.IsRest {
			name = "..." + name
		}
		if p.Optional && !p.IsRest && !p.DefaultValuePresent {
			name += "?"
		}
		out = append(out, name+": "+p.Type.String())
	}
	return out
}

// moduleDeclaration handles namespaces ("namespace A.B {}") and ambient
// modules ("declare module 'x' {}"). Quoted names go to modules, identifiers
// to namespaces; dotted names nest.
func (v *visitor) moduleDeclaration(node *sitter.Node, f frame) []entry {
	nameNode := syntax.Field(node, "name")
	if nameNode == nil {
		return nil
	}

	ambientModule := nameNode.Kind() == "string"
	declared := f.declared || ambientModule
	var path []string
	if ambientModule {
		path = []string{syntax.Unquote(v.text(nameNode))}
	} else {
		for _, part := range strings.Split(v.text(nameNode), ".") {
			if part = strings.TrimSpace(part); part != "" {
				path = append(path, part)
			}
		}
	}
	if len(path) == 0 {
		return nil
	}

	kind := "namespace"
	if ambientModule {
		kind = "module"
	}
	outer := f.scope.Child(path[0], ambientModule)
	outer.IsDeclared = outer.IsDeclared || declared
	outer.IsExported = outer.IsExported || f.isExported()
	m := outer
	for _, part := range path[1:] {
		m = m.Child(part, false)
		m.IsDeclared = m.IsDeclared || declared
		m.IsExported = true
	}

	if body := syntax.Field(node, "body"); body != nil {
		v.statements(body, frame{scope: m.Scope, declared: declared, implicit: declared})
	}

	v.exportDecl(f, path[0])
	return []entry{{name: path[0], kind: kind, record: outer}}
}

// expressionStatement unwraps namespaces that the grammar parses as
// expression statements.
func (v *visitor) expressionStatement(node *sitter.Node, f frame) []entry {
	for _, child := range syntax.NamedChildren(node) {
		if child.Kind() == "internal_module" || child.Kind() == "module" {
			return v.dispatch(child, f)
		}
	}
	return nil
}
