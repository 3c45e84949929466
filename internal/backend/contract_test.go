package backend

// Test Plan for the extractor contract (run against every backend):
// - Extracting the same batch twice yields identical JSON
// - Both backends agree on declared names and isExported/isDeclared flags
// - Overload signatures become overload0..N next to the implementation
// - Decorators keep source order and argument arity
// - Members without an access keyword are "public" / legacy "opened"
// - Enum members auto-increment and const enums set isConst
// - The legacy interface property map matches the detailed property list
// - Component detection and hook classification on the component-capable backend
// - The syntactic backend isolates malformed files; the semantic backend fails the batch

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/declmeta/internal/meta"
	"github.com/mvp-joe/declmeta/internal/program"
	"github.com/mvp-joe/declmeta/internal/source"
)

type backendCase struct {
	name       string
	components bool
	build      func(Options) Extractor
}

var backends = []backendCase{
	{name: NameSemantic, build: func(o Options) Extractor { return NewSemantic(o) }},
	{name: NameSyntactic, components: true, build: func(o Options) Extractor { return NewSyntactic(o) }},
}

const contractSource = `
import { Injectable } from "./di";

export function f(a: string): string;
export function f(a: number): number;
export function f(a: any) {
  return a;
}

@Logger(LogLevel.INFO, "X")
@Metrics({ ttl: 60 })
@Observable
export class Service {
  name: string = "svc";
  private secret = 1;
  protected level: number;
  run(): void {}
}

export enum Status { Pending, Approved = 1, Rejected = 2 }
const enum Mode { On, Off }

export interface User {
  id: number;
  name?: string;
  readonly tags: string[];
}

export type Id = string | number;
declare const VERSION: string;
const local = 1;
export default Service;
`

func extractWith(t *testing.T, b backendCase, files map[string]string, paths ...string) *meta.Metadata {
	t.Helper()
	ex := b.build(Options{Loader: source.NewMemoryLoader(files)})
	md, err := ex.Extract(context.Background(), paths)
	require.NoError(t, err)
	return md
}

func TestContract(t *testing.T) {
	t.Parallel()

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Parallel()
			files := map[string]string{"contract.ts": contractSource}
			md := extractWith(t, b, files, "contract.ts")

			t.Run("idempotent", func(t *testing.T) {
				again := extractWith(t, b, files, "contract.ts")
				first, err := json.Marshal(md)
				require.NoError(t, err)
				second, err := json.Marshal(again)
				require.NoError(t, err)
				assert.JSONEq(t, string(first), string(second))
			})

			t.Run("overloads", func(t *testing.T) {
				fn := md.Functions["f"]
				require.NotNil(t, fn)
				require.Len(t, fn.Overloads, 2)
				assert.Equal(t, []string{"string"}, fn.Overloads[0].Params)
				assert.Equal(t, "string", fn.Overloads[0].ReturnType)
				assert.Equal(t, []string{"number"}, fn.Overloads[1].Params)
				assert.Equal(t, "number", fn.Overloads[1].ReturnType)
				assert.Equal(t, []string{"any"}, fn.Params)

				raw, err := json.Marshal(fn)
				require.NoError(t, err)
				var decoded map[string]any
				require.NoError(t, json.Unmarshal(raw, &decoded))
				assert.Contains(t, decoded, "overload0")
				assert.Contains(t, decoded, "overload1")
				assert.NotContains(t, decoded, "overload2")
			})

			t.Run("decorators", func(t *testing.T) {
				c := md.Classes["Service"]
				require.NotNil(t, c)
				require.Len(t, c.Decorators, 3)
				assert.Equal(t, "Logger", c.Decorators[0].Name)
				assert.Len(t, c.Decorators[0].Args, 2)
				assert.Equal(t, "Metrics", c.Decorators[1].Name)
				assert.Len(t, c.Decorators[1].Args, 1)
				assert.Equal(t, "Observable", c.Decorators[2].Name)
				assert.Empty(t, c.Decorators[2].Args)
			})

			t.Run("default access", func(t *testing.T) {
				c := md.Classes["Service"]
				require.NotNil(t, c)
				assert.Equal(t, meta.AccessPublic, c.Properties["name"].AccessModifier)
				assert.Equal(t, "opened", c.Properties["name"].Access)
				assert.Equal(t, meta.AccessPrivate, c.Properties["secret"].AccessModifier)
				assert.Equal(t, "closed", c.Properties["secret"].Access)
				assert.Equal(t, meta.AccessProtected, c.Properties["level"].AccessModifier)
				assert.Equal(t, meta.AccessPublic, c.Methods["run"].AccessModifier)
				assert.Equal(t, "opened", c.Methods["run"].Access)
			})

			t.Run("enums", func(t *testing.T) {
				status := md.Enums["Status"]
				require.NotNil(t, status)
				assert.False(t, status.IsConst)
				assert.Equal(t, []meta.EnumMember{
					{Name: "Pending", Value: 0},
					{Name: "Approved", Value: 1},
					{Name: "Rejected", Value: 2},
				}, status.Members)

				mode := md.Enums["Mode"]
				require.NotNil(t, mode)
				assert.True(t, mode.IsConst)
			})

			t.Run("interface property views agree", func(t *testing.T) {
				user := md.Interfaces["User"]
				require.NotNil(t, user)
				require.Len(t, user.PropertyDetails, len(user.Properties))
				for _, d := range user.PropertyDetails {
					assert.Equal(t, user.Properties[d.Name], d.TypeString, d.Name)
				}
				assert.Equal(t, map[string]string{"id": "number", "name": "string", "tags": "string[]"}, user.Properties)
			})

			t.Run("flags", func(t *testing.T) {
				assert.True(t, md.Functions["f"].IsExported)
				assert.True(t, md.Classes["Service"].IsExported)
				assert.True(t, md.Enums["Status"].IsExported)
				assert.False(t, md.Enums["Mode"].IsExported)
				assert.True(t, md.Variables["VERSION"].IsDeclared)
				assert.False(t, md.Variables["local"].IsExported)
				assert.Contains(t, md.Declarations, "VERSION")
			})

			t.Run("hooks key", func(t *testing.T) {
				raw, err := json.Marshal(md)
				require.NoError(t, err)
				var decoded map[string]any
				require.NoError(t, json.Unmarshal(raw, &decoded))
				for _, key := range []string{"functions", "variables", "classes", "interfaces", "types", "enums",
					"imports", "exports", "declarations", "modules", "namespaces"} {
					assert.Contains(t, decoded, key)
				}
				if b.components {
					assert.Contains(t, decoded, "hooks")
				} else {
					assert.NotContains(t, decoded, "hooks")
				}
			})
		})
	}
}

// declaredNames flattens a scope into "bucket:name" keys with the flags both
// backends must agree on.
func declaredNames(s *meta.Scope) map[string][2]bool {
	out := map[string][2]bool{}
	for name, f := range s.Functions {
		out["function:"+name] = [2]bool{f.IsExported, f.IsDeclared}
	}
	for name, v := range s.Variables {
		out["variable:"+name] = [2]bool{v.IsExported, v.IsDeclared}
	}
	for name, c := range s.Classes {
		out["class:"+name] = [2]bool{c.IsExported, c.IsDeclared}
	}
	for name, i := range s.Interfaces {
		out["interface:"+name] = [2]bool{i.IsExported, i.IsDeclared}
	}
	for name, a := range s.Types {
		out["type:"+name] = [2]bool{a.IsExported, a.IsDeclared}
	}
	for name, e := range s.Enums {
		out["enum:"+name] = [2]bool{e.IsExported, e.IsDeclared}
	}
	for name, m := range s.Namespaces {
		out["namespace:"+name] = [2]bool{m.IsExported, m.IsDeclared}
		for k, v := range declaredNames(m.Scope) {
			out[name+"."+k] = v
		}
	}
	return out
}

func TestCrossBackendConsistency(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"a.ts": contractSource,
		"b.ts": `
export namespace App {
  export function start(): void {}
  const hidden = 1;
}
declare function tick(ms: number): void;
export const helper = (x: number) => x + 1;
`,
		"c.d.ts": `
declare module "lib" {
  export function load(): void;
}
interface Window { app: string }
`,
	}
	paths := []string{"a.ts", "b.ts", "c.d.ts"}

	var results []map[string][2]bool
	for _, b := range backends {
		md := extractWith(t, b, files, paths...)
		results = append(results, declaredNames(md.Scope))
	}

	require.Len(t, results, 2)
	names := func(m map[string][2]bool) []string {
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		sort.Strings(out)
		return out
	}
	assert.Equal(t, names(results[0]), names(results[1]))
	assert.Equal(t, results[0], results[1])
}

func TestComponentContract(t *testing.T) {
	t.Parallel()

	files := map[string]string{"view.tsx": `
import React, { useState, useEffect } from "react";

export const lower: React.FC = () => <div />;
export const Typed: FC<{ label: string }> = ({ label }) => <span>{label}</span>;
export const Panel = () => <section className="panel" />;
export const format = (n: number) => n.toFixed(2);
export const Memo: React.FC<{ a: string }> = React.memo(({ a }) => <div>{a}</div>);

export function Counter() {
  const [count, setCount] = useState(0);
  useEffect(() => {}, []);
  useEffect(() => {});
  return <button onClick={() => setCount(count + 1)}>{count}</button>;
}
`}

	for _, b := range backends {
		if !b.components {
			continue
		}
		t.Run(b.name, func(t *testing.T) {
			t.Parallel()
			md := extractWith(t, b, files, "view.tsx")

			assert.True(t, md.Functions["lower"].JSX, "qualified annotation, lower-case name")
			assert.True(t, md.Variables["lower"].JSX)
			assert.True(t, md.Functions["Typed"].JSX, "bare annotation")
			assert.True(t, md.Functions["Panel"].JSX, "PascalCase returning markup")
			assert.False(t, md.Functions["format"].JSX)
			assert.True(t, md.Functions["Counter"].JSX)

			require.Contains(t, md.Functions, "Memo", "annotated wrapper call")
			assert.True(t, md.Functions["Memo"].JSX)
			assert.True(t, md.Variables["Memo"].JSX)
			assert.Equal(t, []meta.Prop{{Name: "a", Type: "string"}}, md.Functions["Memo"].Props)

			state := md.Hooks["useState"]
			require.Len(t, state, 1)
			assert.Equal(t, "number", state[0].Type)
			assert.Equal(t, "0", state[0].InitialValue)

			effects := md.Hooks["useEffect"]
			require.Len(t, effects, 2)
			assert.Equal(t, "empty", effects[0].Dependencies)
			assert.Equal(t, "none", effects[1].Dependencies)
		})
	}
}

func TestFailureIsolation(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"good.ts": "export const ok = 1;",
		"bad.ts":  "export const = ;",
	}
	paths := []string{"good.ts", "bad.ts", "missing.ts"}

	t.Run(NameSyntactic, func(t *testing.T) {
		t.Parallel()
		var failed []string
		ex := NewSyntactic(Options{
			Loader: source.NewMemoryLoader(files),
			OnFile: func(path string, err error) {
				if err != nil {
					failed = append(failed, path)
				}
			},
		})
		md, err := ex.Extract(context.Background(), paths)
		require.NoError(t, err)
		assert.Contains(t, md.Variables, "ok")
		assert.Equal(t, []string{"bad.ts", "missing.ts"}, failed)
	})

	t.Run(NameSemantic, func(t *testing.T) {
		t.Parallel()
		ex := NewSemantic(Options{Loader: source.NewMemoryLoader(files)})
		_, err := ex.Extract(context.Background(), paths)
		require.ErrorIs(t, err, program.ErrSyntax)
	})
}

func TestCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, b := range backends {
		ex := b.build(Options{Loader: source.NewMemoryLoader(map[string]string{"a.ts": "const a = 1;"})})
		_, err := ex.Extract(ctx, []string{"a.ts"})
		assert.ErrorIs(t, err, context.Canceled, b.name)
	}
}
