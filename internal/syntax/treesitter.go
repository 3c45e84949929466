// Package syntax wraps the tree-sitter TypeScript grammars and the node
// helpers shared by every visitor.
package syntax

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Grammar selects the tree-sitter language used to parse a file.
type Grammar int

const (
	// TypeScript is the plain TypeScript grammar (supports <T>x casts).
	TypeScript Grammar = iota
	// TSX is the superset grammar with embedded JSX markup.
	TSX
)

func (g Grammar) String() string {
	if g == TSX {
		return "tsx"
	}
	return "typescript"
}

func (g Grammar) language() *sitter.Language {
	if g == TSX {
		return sitter.NewLanguage(typescript.LanguageTSX())
	}
	return sitter.NewLanguage(typescript.LanguageTypescript())
}

// GrammarFor picks the grammar by file extension.
func GrammarFor(path string) Grammar {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return TSX
	default:
		return TypeScript
	}
}

// IsDeclarationFile reports whether path is a .d.ts style declaration file.
func IsDeclarationFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(base, ".d.ts") || strings.HasSuffix(base, ".d.mts") || strings.HasSuffix(base, ".d.cts")
}

// File is a parsed source file. Nodes stay valid until Close.
type File struct {
	Path    string
	Source  []byte
	Grammar Grammar
	Tree    *sitter.Tree
}

// Parse parses src with the given grammar.
func Parse(path string, src []byte, g Grammar) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(g.language()); err != nil {
		return nil, fmt.Errorf("set %s language: %w", g, err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file: %s", g, path)
	}
	return &File{Path: path, Source: src, Grammar: g, Tree: tree}, nil
}

// Root returns the program node.
func (f *File) Root() *sitter.Node {
	return f.Tree.RootNode()
}

// HasError reports whether the tree contains ERROR or MISSING nodes.
func (f *File) HasError() bool {
	return f.Root().HasError()
}

// ErrorLine returns the 1-based line of the first error node, or 0.
func (f *File) ErrorLine() int {
	line := 0
	Walk(f.Root(), func(n *sitter.Node) bool {
		if line != 0 {
			return false
		}
		if n.IsError() || n.IsMissing() {
			line = Line(n)
			return false
		}
		return n.HasError()
	})
	return line
}

// Close releases the syntax tree.
func (f *File) Close() {
	if f != nil && f.Tree != nil {
		f.Tree.Close()
	}
}

// Text returns the source text spanned by node.
func Text(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return string(src[node.StartByte():node.EndByte()])
}

// Line returns the 1-based start line of node.
func Line(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Row) + 1
}

// Walk recursively walks a tree and calls visitor for each node. Returning
// false skips the node's children.
func Walk(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(uint(i)), visitor)
	}
}

// Children returns all children of node, named and anonymous.
func Children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := 0; i < int(node.ChildCount()); i++ {
		out = append(out, node.Child(uint(i)))
	}
	return out
}

// NamedChildren returns the named children of node, skipping comments.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		if child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// ChildByKind finds the first child node with the given kind.
func ChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// ChildrenByKind finds all child nodes with the given kind.
func ChildrenByKind(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			results = append(results, child)
		}
	}
	return results
}

// HasToken reports whether node has an anonymous child token such as
// "static", "async" or "?".
func HasToken(node *sitter.Node, token string) bool {
	if node == nil {
		return false
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}

// Field returns the child stored under field name.
func Field(node *sitter.Node, name string) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName(name)
}

// Unwrap strips parenthesized expressions and types.
func Unwrap(node *sitter.Node) *sitter.Node {
	for node != nil && (node.Kind() == "parenthesized_expression" || node.Kind() == "parenthesized_type") {
		inner := firstNamed(node)
		if inner == nil {
			return node
		}
		node = inner
	}
	return node
}

func firstNamed(node *sitter.Node) *sitter.Node {
	children := NamedChildren(node)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// Unquote strips matching quotes from a string literal's text.
func Unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Same reports whether a and b are the same node.
func Same(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Id() == b.Id()
}
