package meta

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AnyType is the fallback rendering for unsupported or unresolvable types.
const AnyType = "any"

// Type is a canonical type rendering. It is either plain text ("string",
// "Promise<User>", "A | B") or, for inline object literal types, an ordered set
// of named member types that serializes as a nested JSON object.
type Type struct {
	Text   string
	Fields []Field
	object bool
}

// Field is one named member of an inline object type.
type Field struct {
	Name     string
	Optional bool
	Type     Type
}

// Text returns a plain textual type.
func Text(s string) Type {
	if s == "" {
		s = AnyType
	}
	return Type{Text: s}
}

// Any returns the fallback type.
func Any() Type {
	return Type{Text: AnyType}
}

// Object returns a structured inline object type.
func Object(fields []Field) Type {
	if fields == nil {
		fields = []Field{}
	}
	return Type{Fields: fields, object: true}
}

// IsObject reports whether t is a structured inline object type.
func (t Type) IsObject() bool {
	return t.object
}

// IsAny reports whether t is the fallback type.
func (t Type) IsAny() bool {
	return !t.object && (t.Text == AnyType || t.Text == "")
}

// Field returns the member type named name of a structured type.
func (t Type) Field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return Type{}, false
}

// String renders t as text. Structured types render as "{ a: string; b: number }".
func (t Type) String() string {
	if !t.object {
		if t.Text == "" {
			return AnyType
		}
		return t.Text
	}
	if len(t.Fields) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		name := f.Name
		if f.Optional {
			name += "?"
		}
		parts = append(parts, name+": "+f.Type.String())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// MarshalJSON emits text types as JSON strings and structured types as
// objects whose keys keep declaration order.
func (t Type) MarshalJSON() ([]byte, error) {
	if !t.object {
		return json.Marshal(t.String())
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range t.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := f.Type.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Union joins member types with " | ", dropping duplicates and keeping order.
// Any member that is "any" makes the whole union "any".
func Union(members ...Type) Type {
	seen := make(map[string]bool, len(members))
	var parts []string
	for _, m := range members {
		s := m.String()
		if s == AnyType {
			return Any()
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		parts = append(parts, s)
	}
	switch len(parts) {
	case 0:
		return Any()
	case 1:
		for _, m := range members {
			if m.String() == parts[0] {
				return m
			}
		}
	}
	return Text(strings.Join(parts, " | "))
}
