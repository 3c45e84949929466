package render

// Test Plan for render:
// - Type renders primitives, references, generics, unions, intersections,
//   functions, arrays, tuples, conditionals, literals and query types
// - Array<T> and ReadonlyArray<T> canonicalize to the bracket form
// - Top-level object types render structured, nested ones textual
// - Unsupported shapes fall back to "any"
// - Expr renders the supported expression subset and re-quotes strings
// - Unsupported expressions render the opaque placeholder
// - ValueKind and LiteralType classify literals and compound shapes

import (
	"encoding/json"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/declmeta/internal/syntax"
)

func parseAlias(t *testing.T, typ string) (*sitter.Node, []byte) {
	t.Helper()
	src := []byte("type X = " + typ + ";")
	f, err := syntax.Parse("x.ts", src, syntax.TypeScript)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	require.False(t, f.HasError(), typ)
	alias := syntax.ChildByKind(f.Root(), "type_alias_declaration")
	require.NotNil(t, alias)
	value := syntax.Field(alias, "value")
	require.NotNil(t, value)
	return value, src
}

func parseInit(t *testing.T, expr string) (*sitter.Node, []byte) {
	t.Helper()
	src := []byte("const x = " + expr + ";")
	f, err := syntax.Parse("x.tsx", src, syntax.TSX)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	decl := syntax.ChildByKind(f.Root(), "lexical_declaration")
	require.NotNil(t, decl)
	declarator := syntax.ChildByKind(decl, "variable_declarator")
	require.NotNil(t, declarator)
	return syntax.Field(declarator, "value"), src
}

func TestTypeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"string", "string"},
		{"void", "void"},
		{"User", "User"},
		{"React.FC", "React.FC"},
		{"Promise<User>", "Promise<User>"},
		{"Map<string,   number[]>", "Map<string, number[]>"},
		{"Pick<User, 'id' | 'name'>", `Pick<User, "id" | "name">`},
		{"Array<string>", "string[]"},
		{"Array<string | number>", "(string | number)[]"},
		{"ReadonlyArray<User>", "readonly User[]"},
		{"string | number | null", "string | number | null"},
		{"| 'a' | 'b'", `"a" | "b"`},
		{"A & B", "A & B"},
		{"(A | B) & C", "(A | B) & C"},
		{"(a: string, b?: number) => void", "(a: string, b?: number) => void"},
		{"(...rest: string[]) => Promise<void>", "(...rest: string[]) => Promise<void>"},
		{"<T>(x: T) => T", "<T>(x: T) => T"},
		{"(() => void) | null", "(() => void) | null"},
		{"new (x: number) => Foo", "new (x: number) => Foo"},
		{"string[][]", "string[][]"},
		{"[string, number]", "[string, number]"},
		{"[name: string, age?: number]", "[name: string, age?: number]"},
		{"T extends string ? 'yes' : 'no'", `T extends string ? "yes" : "no"`},
		{"42", "42"},
		{"true", "true"},
		{"typeof config", "typeof config"},
		{"keyof User", "keyof User"},
		{"User['id']", `User["id"]`},
		{"readonly string[]", "readonly string[]"},
		{"{ a: string; b?: number }", "{ a: string; b?: number }"},
		{"{ [key: string]: number }", "{ [key: string]: number }"},
		{"{}", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			node, src := parseAlias(t, tt.in)
			assert.Equal(t, tt.want, TypeText(node, src))
		})
	}
}

func TestTypeText_Nil(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "any", TypeText(nil, nil))
	assert.True(t, Type(nil, nil).IsAny())
}

func TestType_Structured(t *testing.T) {
	t.Parallel()

	node, src := parseAlias(t, "{ id: number; owner?: { name: string }; tags: Array<string> }")
	typ := Type(node, src)
	require.True(t, typ.IsObject())

	b, err := json.Marshal(typ)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"number","owner":{"name":"string"},"tags":"string[]"}`, string(b))
	assert.Equal(t, "{ id: number; owner?: { name: string }; tags: string[] }", typ.String())

	node, src = parseAlias(t, "{ a: string } | null")
	typ = Type(node, src)
	assert.False(t, typ.IsObject())
	assert.Equal(t, "{ a: string } | null", typ.String())

	node, src = parseAlias(t, "{ [k: string]: number }")
	assert.False(t, Type(node, src).IsObject())
}

func TestTypeParams(t *testing.T) {
	t.Parallel()

	src := []byte("function f<T, K extends keyof T = keyof T>(a: T, k: K) {}")
	f, err := syntax.Parse("x.ts", src, syntax.TypeScript)
	require.NoError(t, err)
	defer f.Close()
	fn := syntax.ChildByKind(f.Root(), "function_declaration")
	require.NotNil(t, fn)
	assert.Equal(t, []string{"T", "K"}, TypeParams(syntax.Field(fn, "type_parameters"), src))
	assert.Equal(t, []string{}, TypeParams(nil, src))
}

func TestExpr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{`'hello'`, `"hello"`},
		{`"hi"`, `"hi"`},
		{`'say "x"'`, `"say \"x\""`},
		{"42", "42"},
		{"true", "true"},
		{"null", "null"},
		{"LogLevel.INFO", "LogLevel.INFO"},
		{"a?.b", "a?.b"},
		{"items[0]", "items[0]"},
		{"fetchUser(id, 'x')", `fetchUser(id, "x")`},
		{"new Map<string, number>()", "new Map<string, number>()"},
		{"[1, 'a', b]", `[1, "a", b]`},
		{"{ ttl: 60, name }", "{ ttl: 60, name }"},
		{"{}", "{}"},
		{"{ ...base, 'k': 1 }", `{ ...base, "k": 1 }`},
		{"`Hello ${user.name}!`", "`Hello ${user.name}!`"},
		{"(a, b) => a + b", "(a, b) => {...}"},
		{"async x => x", "async (x) => {...}"},
		{"function named(a: string) { return a; }", "function named(a) {...}"},
		{"a + b * 2", "a + b * 2"},
		{"-1", "-1"},
		{"typeof x", "typeof x"},
		{"ok ? 'y' : 'n'", `ok ? "y" : "n"`},
		{"(1 + 2)", "(1 + 2)"},
		{"value as string", "value as string"},
		{"[1, 2] as const", "[1, 2] as const"},
		{"maybe!", "maybe!"},
		{"(x = 1)", "(x = 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			node, src := parseInit(t, tt.in)
			require.NotNil(t, node)
			assert.Equal(t, tt.want, Expr(node, src))
		})
	}
}

func TestExpr_Opaque(t *testing.T) {
	t.Parallel()

	node, src := parseInit(t, "class { }")
	assert.Equal(t, "class {...}", Expr(node, src))

	node, src = parseInit(t, "tagged`tag`")
	assert.Equal(t, "tagged`tag`", Expr(node, src))

	node, src = parseInit(t, "() => { return 1; }")
	assert.Equal(t, Opaque, Expr(syntax.Field(node, "body"), src))

	assert.Equal(t, "", Expr(nil, nil))
}

func TestValueKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		kind string
		lit  string
	}{
		{"'a'", KindString, "string"},
		{"`a${b}`", KindTemplate, "string"},
		{"1.5", KindNumber, "number"},
		{"-3", KindNumber, "number"},
		{"false", KindBoolean, "boolean"},
		{"!ready", KindBoolean, "boolean"},
		{"null", KindNull, "null"},
		{"undefined", KindUndefined, "undefined"},
		{"[]", KindArray, ""},
		{"{ a: 1 }", KindObject, ""},
		{"() => 1", KindFunction, ""},
		{"other", KindIdentifier, ""},
		{"load()", KindCall, ""},
		{"new Date()", KindCall, ""},
		{"a.b", KindMember, ""},
		{"<div />", KindJSX, ""},
		{"a + b", KindExpression, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			node, _ := parseInit(t, tt.in)
			assert.Equal(t, tt.kind, ValueKind(node))
			lit, ok := LiteralType(node)
			assert.Equal(t, tt.lit != "", ok)
			assert.Equal(t, tt.lit, lit)
		})
	}
}

func TestTemplateParts(t *testing.T) {
	t.Parallel()

	node, src := parseInit(t, "`a${b}c${d.e}`")
	static, dynamic := TemplateParts(node, src)
	assert.Equal(t, []string{"a", "c", ""}, static)
	require.Len(t, dynamic, 2)
	assert.Equal(t, "b", Expr(dynamic[0], src))
	assert.Equal(t, "d.e", Expr(dynamic[1], src))
}
