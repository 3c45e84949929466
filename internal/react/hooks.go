package react

import (
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/render"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// Dependency array classifications.
const (
	DepsNone  = "none"
	DepsEmpty = "empty"
	DepsArray = "array"
)

// HookName returns the hook name called by a call expression ("useState" for
// both useState(...) and React.useState(...)), or "" when the callee does not
// follow the useXxx convention.
func HookName(call *sitter.Node, src []byte) string {
	callee := syntax.Field(call, "function")
	if callee == nil {
		return ""
	}
	var name string
	switch callee.Kind() {
	case "identifier":
		name = syntax.Text(callee, src)
	case "member_expression":
		name = syntax.Text(syntax.Field(callee, "property"), src)
	default:
		return ""
	}
	if !IsHook(name) {
		return ""
	}
	return name
}

// IsHook reports whether name is "use" followed by an uppercase letter.
func IsHook(name string) bool {
	if len(name) < 4 || name[:3] != "use" {
		return false
	}
	return unicode.IsUpper(rune(name[3]))
}

// Hooks summarizes every hook call under root. Calls are grouped by hook
// name in source order; Scope is the name of the enclosing named function.
func Hooks(root *sitter.Node, src []byte) meta.HookIndex {
	w := hookWalker{src: src, index: meta.HookIndex{}}
	w.walk(root, "")
	return w.index
}

type hookWalker struct {
	src   []byte
	index meta.HookIndex
}

func (w *hookWalker) walk(node *sitter.Node, scope string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration", "function_expression", "method_definition":
		if name := syntax.Field(node, "name"); name != nil {
			scope = syntax.Text(name, w.src)
		}
	case "variable_declarator":
		name := syntax.Field(node, "name")
		value := syntax.Unwrap(syntax.Field(node, "value"))
		if name != nil && name.Kind() == "identifier" && value != nil && render.ValueKind(value) == render.KindFunction {
			scope = syntax.Text(name, w.src)
		}
	case "call_expression":
		if name := HookName(node, w.src); name != "" {
			w.index[name] = append(w.index[name], summarize(name, node, scope, w.src))
		}
	}
	for _, child := range syntax.Children(node) {
		w.walk(child, scope)
	}
}

func summarize(name string, call *sitter.Node, scope string, src []byte) meta.HookCall {
	argsNode := syntax.Field(call, "arguments")
	args := syntax.NamedChildren(argsNode)
	hc := meta.HookCall{Hook: name, Scope: scope, Line: syntax.Line(call)}
	if ta := syntax.NamedChildren(syntax.Field(call, "type_arguments")); len(ta) > 0 {
		hc.TypeArgument = render.TypeText(ta[0], src)
	}

	switch name {
	case "useState", "useReducer":
		initial := arg(args, 0)
		if name == "useReducer" {
			initial = arg(args, 1)
		}
		hc.Type, hc.InitialValue = valueSummary(initial, src, render.KindUndefined)
		if hc.TypeArgument != "" {
			hc.Type = hc.TypeArgument
		}
		hc.StateVariable, hc.Setter = statePair(call, src)
	case "useEffect", "useLayoutEffect", "useInsertionEffect":
		hc.Dependencies, hc.DependencyList = dependencies(arg(args, 1), src)
	case "useMemo", "useCallback":
		hc.Dependencies, hc.DependencyList = dependencies(arg(args, 1), src)
		hc.Arguments = render.Args(argsNode, src)
	case "useRef":
		hc.Type, hc.InitialValue = valueSummary(arg(args, 0), src, render.KindNull)
		if hc.TypeArgument != "" {
			hc.Type = hc.TypeArgument
		}
	default:
		hc.Arguments = render.Args(argsNode, src)
	}
	return hc
}

func arg(args []*sitter.Node, i int) *sitter.Node {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// valueSummary returns the value kind and rendering of an initial value, or
// fallback for both when the argument is absent.
func valueSummary(node *sitter.Node, src []byte, fallback string) (string, string) {
	if node == nil {
		return fallback, fallback
	}
	kind := render.ValueKind(node)
	if kind == render.KindTemplate {
		kind = render.KindString
	}
	return kind, render.Expr(node, src)
}

func dependencies(node *sitter.Node, src []byte) (string, []string) {
	if node == nil {
		return DepsNone, nil
	}
	node = syntax.Unwrap(node)
	if node.Kind() != "array" {
		return DepsArray, []string{render.Expr(node, src)}
	}
	deps := render.Args(node, src)
	if len(deps) == 0 {
		return DepsEmpty, nil
	}
	return DepsArray, deps
}

// statePair reads "const [value, setValue] = useState(...)".
func statePair(call *sitter.Node, src []byte) (string, string) {
	parent := call.Parent()
	if parent == nil || parent.Kind() != "variable_declarator" {
		return "", ""
	}
	pattern := syntax.Field(parent, "name")
	if pattern == nil || pattern.Kind() != "array_pattern" {
		return "", ""
	}
	var names []string
	for _, el := range syntax.NamedChildren(pattern) {
		names = append(names, syntax.Text(el, src))
	}
	var value, setter string
	if len(names) > 0 {
		value = names[0]
	}
	if len(names) > 1 {
		setter = names[1]
	}
	return value, setter
}
