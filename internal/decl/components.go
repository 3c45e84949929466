package decl

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/react"
	"github.com/mvp-joe/declmeta/internal/syntax"
)

// component is a classified function component waiting for its props to be
// resolved against the file's interfaces and type aliases.
type component struct {
	props    react.PropsSpec
	fn       *meta.Function
	variable *meta.Variable
}

func (v *visitor) classifyFunction(fn *meta.Function, node *sitter.Node) {
	v.classify(react.Candidate{Name: fn.Name, Function: node, Source: v.src}, fn, nil)
}

func (v *visitor) classifyVariable(rec *meta.Variable, fn *meta.Function, annotation, fnNode *sitter.Node) {
	v.classify(react.Candidate{Name: rec.Name, Annotation: annotation, Function: fnNode, Source: v.src}, fn, rec)
}

func (v *visitor) classify(c react.Candidate, fn *meta.Function, rec *meta.Variable) {
	rule := react.Classify(c)
	if rule == "" {
		return
	}
	v.log.Debug("component detected", "file", v.file.Path, "name", c.Name, "rule", rule)

	var summary *meta.TemplateSummary
	if c.Function != nil {
		summary = v.analyze(c.Name, componentBody(c.Function))
	}
	fn.JSX = true
	fn.Template = summary
	if rec != nil {
		rec.JSX = true
		rec.Template = summary
	}
	v.components = append(v.components, &component{props: react.ReadProps(c), fn: fn, variable: rec})
}

// componentBody is the part of a function component scanned for its view
// template. Parameter defaults are left out.
func componentBody(fn *sitter.Node) *sitter.Node {
	if body := syntax.Field(fn, "body"); body != nil {
		return body
	}
	return fn
}

func (v *visitor) classifyClass(c *meta.Class, node *sitter.Node) {
	base, ok := react.ClassComponent(node, v.src)
	if !ok {
		return
	}
	v.log.Debug("class component detected", "file", v.file.Path, "name", c.Name)
	c.JSX = true
	c.PropsType = base.PropsType
	c.StateType = base.StateType
	if render := react.RenderMethod(node, v.src); render != nil {
		c.Template = v.analyze(c.Name, componentBody(render))
	}
}

// analyze runs the view-template analysis over a component body. Any
// failure, including a panic in the walk, leaves the summary nil.
func (v *visitor) analyze(name string, fn *sitter.Node) (summary *meta.TemplateSummary) {
	defer func() {
		if r := recover(); r != nil {
			v.log.Debug("template analysis failed", "file", v.file.Path, "component", name, "error", fmt.Sprint(r))
			summary = nil
		}
	}()

	summary, err := react.Analyze(fn, v.src)
	if err != nil {
		v.log.Debug("template analysis failed", "file", v.file.Path, "component", name, "error", err)
		return nil
	}
	return summary
}

// resolveComponents fills component props once every interface and type
// alias of the file is known.
func (v *visitor) resolveComponents() {
	for _, c := range v.components {
		props := c.props.Resolve(v.declaredProps)
		c.fn.Props = props
		if c.variable != nil {
			c.variable.Props = props
		}
	}
}

// declaredProps returns the members of a props interface or object type
// alias declared at the top level of the file.
func (v *visitor) declaredProps(typeName string) ([]meta.Prop, bool) {
	name := meta.BaseName(typeName)
	if i, ok := v.root.Interfaces[name]; ok {
		out := make([]meta.Prop, 0, len(i.PropertyDetails))
		for _, d := range i.PropertyDetails {
			out = append(out, meta.Prop{Name: d.Name, Type: d.TypeString, Optional: d.Optional})
		}
		return out, true
	}
	if t, ok := v.root.Types[name]; ok && t.Type.IsObject() {
		out := make([]meta.Prop, 0, len(t.Type.Fields))
		for _, f := range t.Type.Fields {
			out = append(out, meta.Prop{Name: f.Name, Type: f.Type.String(), Optional: f.Optional})
		}
		return out, true
	}
	return nil, false
}
