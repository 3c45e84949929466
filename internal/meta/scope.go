package meta

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Scope is one set of declaration buckets. The root of a file, every
// namespace and every ambient module own a Scope of identical shape.
type Scope struct {
	Functions    map[string]*Function    `json:"functions"`
	Variables    map[string]*Variable    `json:"variables"`
	Classes      map[string]*Class       `json:"classes"`
	Interfaces   map[string]*Interface   `json:"interfaces"`
	Types        map[string]*TypeAlias   `json:"types"`
	Enums        map[string]*Enum        `json:"enums"`
	Imports      map[string]*Import      `json:"imports"`
	Exports      []Export                `json:"exports"`
	Declarations map[string]*Declaration `json:"declarations"`
	Modules      map[string]*Module      `json:"modules"`
	Namespaces   map[string]*Module      `json:"namespaces"`

	functionOverloads reconciler[Signature]
}

// NewScope returns a Scope with every bucket allocated.
func NewScope() *Scope {
	return &Scope{
		Functions:    make(map[string]*Function),
		Variables:    make(map[string]*Variable),
		Classes:      make(map[string]*Class),
		Interfaces:   make(map[string]*Interface),
		Types:        make(map[string]*TypeAlias),
		Enums:        make(map[string]*Enum),
		Imports:      make(map[string]*Import),
		Exports:      []Export{},
		Declarations: make(map[string]*Declaration),
		Modules:      make(map[string]*Module),
		Namespaces:   make(map[string]*Module),
	}
}

// Child returns the nested scope registered under name, creating it when
// absent. Quoted module names go to Modules, identifiers to Namespaces.
// Reopening an existing namespace returns the same scope.
func (s *Scope) Child(name string, ambientModule bool) *Module {
	bucket := s.Namespaces
	if ambientModule {
		bucket = s.Modules
	}
	if m, ok := bucket[name]; ok {
		return m
	}
	m := &Module{Name: name, Scope: NewScope()}
	bucket[name] = m
	return m
}

// Mark sets exported/declared on a named record in any bucket. It is used
// when an export specifier or "export default ident" names a local
// declaration after the fact.
func (s *Scope) Mark(name string, exported, declared bool) bool {
	found := false
	or := func(dst *bool, v bool) {
		if v {
			*dst = true
		}
	}
	if r, ok := s.Functions[name]; ok {
		or(&r.IsExported, exported)
		or(&r.IsDeclared, declared)
		found = true
	}
	if r, ok := s.Variables[name]; ok {
		or(&r.IsExported, exported)
		or(&r.IsDeclared, declared)
		found = true
	}
	if r, ok := s.Classes[name]; ok {
		or(&r.IsExported, exported)
		or(&r.IsDeclared, declared)
		found = true
	}
	if r, ok := s.Interfaces[name]; ok {
		or(&r.IsExported, exported)
		or(&r.IsDeclared, declared)
		found = true
	}
	if r, ok := s.Types[name]; ok {
		or(&r.IsExported, exported)
		or(&r.IsDeclared, declared)
		found = true
	}
	if r, ok := s.Enums[name]; ok {
		or(&r.IsExported, exported)
		or(&r.IsDeclared, declared)
		found = true
	}
	if m, ok := s.Namespaces[name]; ok {
		or(&m.IsExported, exported)
		or(&m.IsDeclared, declared)
		found = true
	}
	return found
}

// Names returns every declared name in the six declaration buckets, keyed by
// bucket.
func (s *Scope) Names() map[string][]string {
	out := map[string][]string{
		"functions":  keys(s.Functions),
		"variables":  keys(s.Variables),
		"classes":    keys(s.Classes),
		"interfaces": keys(s.Interfaces),
		"types":      keys(s.Types),
		"enums":      keys(s.Enums),
	}
	return out
}

// Flush resolves every name still buffering overload signatures, in this
// scope, its classes and its nested scopes.
func (s *Scope) Flush() {
	s.functionOverloads.flush(func(name string, slots []Signature) {
		if fn, ok := s.Functions[name]; ok {
			fn.Overloads = slots
		}
	})
	for _, c := range s.Classes {
		c.Flush()
	}
	for _, m := range s.Modules {
		m.Flush()
	}
	for _, m := range s.Namespaces {
		m.Flush()
	}
}

// HookIndex maps a hook name to its call-site summaries in source order.
type HookIndex map[string][]HookCall

// HookCall summarizes one hook call site.
type HookCall struct {
	Hook           string   `json:"hook"`
	Scope          string   `json:"scope,omitempty"`
	Line           int      `json:"line"`
	Type           string   `json:"type,omitempty"`
	TypeArgument   string   `json:"typeArgument,omitempty"`
	InitialValue   string   `json:"initialValue,omitempty"`
	StateVariable  string   `json:"stateVariable,omitempty"`
	Setter         string   `json:"setter,omitempty"`
	Dependencies   string   `json:"dependencies,omitempty"`
	DependencyList []string `json:"dependencyList,omitempty"`
	Arguments      []string `json:"arguments,omitempty"`
}

// TemplateSummary is the view-template analysis of one component body.
type TemplateSummary struct {
	Elements         []TemplateElement `json:"elements"`
	Calls            []TemplateCall    `json:"calls"`
	TemplateLiterals []TemplateLiteral `json:"templateLiterals"`
}

// TemplateElement is one JSX element or fragment.
type TemplateElement struct {
	Tag           string              `json:"tag"`
	Line          int                 `json:"line"`
	SelfClosing   bool                `json:"selfClosing"`
	Attributes    []TemplateAttribute `json:"attributes"`
	EventHandlers []TemplateAttribute `json:"eventHandlers"`
	Spreads       []string            `json:"spreads"`
}

// TemplateAttribute is one JSX attribute with its classified value.
type TemplateAttribute struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// TemplateCall is a call expression found in a component body.
type TemplateCall struct {
	Name string        `json:"name"`
	Args []TemplateArg `json:"args"`
}

// TemplateArg is one positional call argument.
type TemplateArg struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// TemplateLiteral splits a template string into static text and placeholders.
type TemplateLiteral struct {
	Static  []string `json:"static"`
	Dynamic []string `json:"dynamic"`
}

// Metadata is the result of one extraction call.
type Metadata struct {
	*Scope
	// Hooks is nil for backends without hook analysis and is then omitted.
	Hooks HookIndex `json:"-"`
}

// MarshalJSON emits the scope buckets plus "hooks" when hook analysis ran.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	if m.Hooks == nil {
		return json.Marshal(m.Scope)
	}
	return json.Marshal(struct {
		*Scope
		Hooks HookIndex `json:"hooks"`
	}{m.Scope, m.Hooks})
}

// marshalWithSlots marshals v and appends prefix0..prefixN-1 keys holding the
// given slots.
func marshalWithSlots[S any](v any, prefix string, slots []S) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil || len(slots) == 0 {
		return base, err
	}
	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	empty := len(bytes.TrimSpace(base)) == 2
	for i, slot := range slots {
		b, err := json.Marshal(slot)
		if err != nil {
			return nil, err
		}
		if i > 0 || !empty {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(prefix + strconv.Itoa(i)))
		buf.WriteByte(':')
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
