package meta

// Test Plan for meta:
// - Type renders text and structured forms and marshals objects in field order
// - Union dedupes members and collapses to "any"
// - Function overload signatures buffer until an implementation resolves them
// - Signatures left buffering at the end of a scope are flushed
// - Constructor signatures become constructorSignatureN slots
// - Interface property views stay consistent on redefinition
// - Aggregate merges scopes in order and computes sorted extendedBy
// - Metadata emits "hooks" only when hook analysis ran

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_StringAndJSON(t *testing.T) {
	t.Parallel()

	obj := Object([]Field{
		{Name: "id", Type: Text("number")},
		{Name: "tags", Optional: true, Type: Text("string[]")},
		{Name: "owner", Type: Object([]Field{{Name: "name", Type: Text("string")}})},
	})

	assert.True(t, obj.IsObject())
	assert.Equal(t, "{ id: number; tags?: string[]; owner: { name: string } }", obj.String())

	b, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"number","tags":"string[]","owner":{"name":"string"}}`, string(b))

	b, err = json.Marshal(Text(""))
	require.NoError(t, err)
	assert.Equal(t, `"any"`, string(b))
	assert.Equal(t, "{}", Object(nil).String())
}

func TestUnion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		members []Type
		want    string
	}{
		{"empty", nil, "any"},
		{"single", []Type{Text("string")}, "string"},
		{"dedupe", []Type{Text("string"), Text("number"), Text("string")}, "string | number"},
		{"any wins", []Type{Text("string"), Any()}, "any"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Union(tt.members...).String())
		})
	}
}

func signatureFn(name, param, ret string, body bool) *Function {
	fn := &Function{
		Name:       name,
		Parameters: []Parameter{NewParameter("a", Text(param))},
		ReturnType: ret,
	}
	fn.Params = ParamTypes(fn.Parameters)
	if body {
		fn.Body = "{ return a; }"
		fn.SetHasBody(true)
	}
	return fn
}

func TestScope_AddFunction_Overloads(t *testing.T) {
	t.Parallel()

	s := NewScope()
	s.AddFunction(signatureFn("f", "string", "string", false))
	s.AddFunction(signatureFn("f", "number", "number", false))
	s.AddFunction(signatureFn("f", "any", "any", true))
	s.Flush()

	fn := s.Functions["f"]
	require.NotNil(t, fn)
	require.Len(t, fn.Overloads, 2)
	assert.Equal(t, []string{"string"}, fn.Overloads[0].Params)
	assert.Equal(t, "string", fn.Overloads[0].ReturnType)
	assert.Equal(t, []string{"number"}, fn.Overloads[1].Params)
	assert.Equal(t, []string{"any"}, fn.Params)
	assert.Equal(t, "{ return a; }", fn.Body)

	b, err := json.Marshal(fn)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, map[string]any{"params": []any{"string"}, "returnType": "string",
		"parameters": []any{map[string]any{"name": "a", "type": "string", "types": []any{"string"},
			"optional": false, "defaultValuePresent": false}}}, decoded["overload0"])
	assert.Contains(t, decoded, "overload1")
	assert.NotContains(t, decoded, "overload2")
}

func TestScope_AddFunction_RedeclarationKeepsSlots(t *testing.T) {
	t.Parallel()

	s := NewScope()
	s.AddFunction(signatureFn("f", "string", "string", false))
	s.AddFunction(signatureFn("f", "number", "number", true))
	second := signatureFn("f", "boolean", "boolean", true)
	second.IsAsync = true
	s.AddFunction(second)

	fn := s.Functions["f"]
	assert.Same(t, second, fn)
	assert.True(t, fn.IsAsync)
	assert.Equal(t, []string{"boolean"}, fn.Params)
	require.Len(t, fn.Overloads, 1)
	assert.Equal(t, "string", fn.Overloads[0].ReturnType)
}

func TestScope_Flush_BufferedSignatures(t *testing.T) {
	t.Parallel()

	s := NewScope()
	s.AddFunction(signatureFn("one", "string", "void", false))
	s.AddFunction(signatureFn("two", "string", "string", false))
	s.AddFunction(signatureFn("two", "number", "number", false))
	ns := s.Child("Inner", false)
	ns.AddFunction(signatureFn("g", "string", "string", false))
	ns.AddFunction(signatureFn("g", "number", "number", false))
	s.Flush()

	assert.Empty(t, s.Functions["one"].Overloads)
	two := s.Functions["two"]
	assert.Equal(t, "number", two.ReturnType)
	require.Len(t, two.Overloads, 2)
	assert.Equal(t, "string", two.Overloads[0].ReturnType)
	assert.Len(t, ns.Functions["g"].Overloads, 2)
}

func TestClass_Constructors(t *testing.T) {
	t.Parallel()

	c := NewClass("Point")
	c.AddConstructor(Constructor{Params: []string{"number"}, AccessModifier: AccessPublic}, false)
	c.AddConstructor(Constructor{Params: []string{"string"}, AccessModifier: AccessPublic}, false)
	c.AddConstructor(Constructor{Params: []string{"any"}, AccessModifier: AccessPublic, Body: "{}"}, true)
	c.Flush()

	require.NotNil(t, c.Constructor)
	assert.Equal(t, []string{"any"}, c.Constructor.Params)
	require.Len(t, c.ConstructorSignatures, 2)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Contains(t, decoded, "constructorSignature0")
	assert.Contains(t, decoded, "constructorSignature1")
	assert.Contains(t, decoded, "constructor")
}

func TestClass_AddMethod_Overloads(t *testing.T) {
	t.Parallel()

	c := NewClass("Svc")
	c.AddMethod(&Method{Name: "get", Parameters: []Parameter{NewParameter("id", Text("string"))}, ReturnType: "string"})
	impl := &Method{Name: "get", Parameters: []Parameter{NewParameter("id", Text("any"))}, ReturnType: "any"}
	impl.SetHasBody(true)
	c.AddMethod(impl)
	c.Flush()

	m := c.Methods["get"]
	assert.Same(t, impl, m)
	require.Len(t, m.Overloads, 1)
	assert.Equal(t, []string{"string"}, m.Overloads[0].Params)
}

func TestInterface_AddProperty(t *testing.T) {
	t.Parallel()

	i := NewInterface("User")
	i.AddProperty(PropertyDetail{Name: "id", Type: Text("number")})
	i.AddProperty(PropertyDetail{Name: "name", Type: Text("string"), Optional: true})
	i.AddProperty(PropertyDetail{Name: "id", Type: Text("string")})

	require.Len(t, i.PropertyDetails, 2)
	assert.Equal(t, "id", i.PropertyDetails[0].Name)
	assert.Equal(t, "string", i.PropertyDetails[0].TypeString)
	assert.Equal(t, map[string]string{"id": "string", "name": "string"}, i.Properties)
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	first := NewScope()
	base := NewInterface("Base")
	first.Interfaces["Base"] = base
	first.Variables["x"] = &Variable{Name: "x", Type: Text("number")}
	first.Exports = append(first.Exports, Export{Name: "x", Kind: ExportNamed})
	first.Child("Geo", false).Variables["origin"] = &Variable{Name: "origin"}

	second := NewScope()
	b := NewInterface("B")
	b.Extends = []string{"Base"}
	a := NewInterface("A")
	a.Extends = []string{"Base<string>", "Missing"}
	second.Interfaces["B"] = b
	second.Interfaces["A"] = a
	second.Variables["x"] = &Variable{Name: "x", Type: Text("string")}
	second.Child("Geo", false).Variables["unit"] = &Variable{Name: "unit"}

	animal := NewClass("Animal")
	dog := NewClass("Dog")
	dog.Extends = []string{"Animal"}
	second.Classes["Animal"] = animal
	second.Classes["Dog"] = dog

	md := Aggregate(first, second)

	assert.Equal(t, []string{"A", "B"}, md.Interfaces["Base"].ExtendedBy)
	assert.Empty(t, md.Interfaces["A"].ExtendedBy)
	assert.Equal(t, []string{"Dog"}, md.Classes["Animal"].ExtendedBy)
	assert.Equal(t, "string", md.Variables["x"].Type.String())
	assert.Len(t, md.Exports, 1)
	assert.Len(t, md.Namespaces["Geo"].Variables, 2)
	assert.NotNil(t, md.Enums)
	assert.NotNil(t, md.Modules)
}

func TestMetadata_HooksKey(t *testing.T) {
	t.Parallel()

	md := Aggregate(NewScope())
	b, err := json.Marshal(md)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.NotContains(t, decoded, "hooks")
	for _, key := range []string{"functions", "variables", "classes", "interfaces", "types",
		"enums", "imports", "exports", "declarations", "modules", "namespaces"} {
		assert.Contains(t, decoded, key)
	}

	md.AddHooks(HookIndex{})
	b, err = json.Marshal(md)
	require.NoError(t, err)
	decoded = nil
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, map[string]any{}, decoded["hooks"])
}

func TestLegacyAccess(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "opened", LegacyAccess(AccessPublic))
	assert.Equal(t, "opened", LegacyAccess(""))
	assert.Equal(t, "closed", LegacyAccess(AccessPrivate))
	assert.Equal(t, "protected", LegacyAccess(AccessProtected))
}
