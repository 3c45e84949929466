package meta

import "sort"

type overloadState int

const (
	stateNone overloadState = iota
	stateBuffering
	stateResolved
)

// reconciler tracks, per name, signature-only declarations that precede an
// implementation.
type reconciler[S any] struct {
	states  map[string]overloadState
	pending map[string][]S
}

func (r *reconciler[S]) init() {
	if r.states == nil {
		r.states = make(map[string]overloadState)
		r.pending = make(map[string][]S)
	}
}

// add records one declaration of name. It returns the overload slots the
// canonical record must carry and whether the incoming declaration becomes
// the canonical record.
func (r *reconciler[S]) add(name string, hasBody bool, sig S, current []S) ([]S, bool) {
	r.init()
	state := r.states[name]
	switch {
	case hasBody && state == stateBuffering:
		slots := r.pending[name]
		delete(r.pending, name)
		r.states[name] = stateResolved
		return slots, true
	case hasBody:
		r.states[name] = stateResolved
		return current, true
	case state == stateResolved:
		return append(current, sig), false
	default:
		r.states[name] = stateBuffering
		r.pending[name] = append(r.pending[name], sig)
		return nil, true
	}
}

// flush resolves names still buffering. Slots are reported only when two or
// more signatures were seen; the caller already holds the last signature as
// the canonical record.
func (r *reconciler[S]) flush(apply func(name string, slots []S)) {
	names := make([]string, 0, len(r.pending))
	for name := range r.pending {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		slots := r.pending[name]
		if len(slots) < 2 {
			slots = nil
		}
		apply(name, slots)
		r.states[name] = stateResolved
		delete(r.pending, name)
	}
}

// AddFunction writes fn into the functions bucket. Body-less signatures
// buffer until an implementation of the same name arrives, which then becomes
// the canonical record carrying the buffered signatures as overload slots.
// A later implementation overwrites the canonical record and keeps its slots.
func (s *Scope) AddFunction(fn *Function) {
	cur := s.Functions[fn.Name]
	var current []Signature
	if cur != nil {
		current = cur.Overloads
	}
	slots, replace := s.functionOverloads.add(fn.Name, fn.HasBody(), fn.Signature(), current)
	if !replace && cur != nil {
		cur.Overloads = slots
		return
	}
	fn.Overloads = slots
	s.Functions[fn.Name] = fn
}

// AddMethod writes m into the class following the same overload rules as
// Scope.AddFunction.
func (c *Class) AddMethod(m *Method) {
	cur := c.Methods[m.Name]
	var current []Signature
	if cur != nil {
		current = cur.Overloads
	}
	sig := Signature{Params: ParamTypes(m.Parameters), Parameters: m.Parameters, ReturnType: m.ReturnType}
	slots, replace := c.methodOverloads.add(m.Name, m.HasBody(), sig, current)
	if !replace && cur != nil {
		cur.Overloads = slots
		return
	}
	m.Overloads = slots
	c.Methods[m.Name] = m
}

const constructorKey = "constructor"

// AddConstructor records a constructor declaration. Signatures without a
// body collect as constructorSignature slots; the implementation becomes the
// canonical constructor.
func (c *Class) AddConstructor(ctor Constructor, hasBody bool) {
	slots, replace := c.ctorOverloads.add(constructorKey, hasBody, ctor, c.ConstructorSignatures)
	c.ConstructorSignatures = slots
	if replace {
		v := ctor
		c.Constructor = &v
	}
}

// Flush resolves buffered method and constructor signatures.
func (c *Class) Flush() {
	c.methodOverloads.flush(func(name string, slots []Signature) {
		if m, ok := c.Methods[name]; ok {
			m.Overloads = slots
		}
	})
	c.ctorOverloads.flush(func(_ string, slots []Constructor) {
		c.ConstructorSignatures = slots
	})
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
