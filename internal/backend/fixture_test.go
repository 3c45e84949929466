package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(names ...string) []string {
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join("..", "..", "testdata", "project", "src", n)
	}
	return paths
}

func TestFixtureProject_Semantic(t *testing.T) {
	t.Parallel()

	md, err := NewSemantic(Options{}).Extract(context.Background(), fixture("models.ts", "settings.ts", "globals.d.ts"))
	require.NoError(t, err)

	settings := md.Interfaces["Settings"]
	require.NotNil(t, settings)
	assert.Equal(t, `"light" | "dark"`, settings.Properties["theme"])

	level := md.Enums["Level"]
	require.NotNil(t, level)
	require.Len(t, level.Members, 3)
	assert.Equal(t, 5, level.Members[2].Value)

	require.Contains(t, md.Variables, "current")
	assert.Equal(t, "Settings", md.Variables["current"].TypeString, "inferred across files")
	assert.Equal(t, "Promise<string>", md.Functions["fetchName"].ReturnType)

	require.Contains(t, md.Variables, "BUILD_ID")
	assert.True(t, md.Variables["BUILD_ID"].IsDeclared)
	assert.Nil(t, md.Hooks)
}

func TestFixtureProject_AutoPicksSyntacticForTSX(t *testing.T) {
	t.Parallel()

	md, err := NewAuto(Options{}).Extract(context.Background(), fixture("models.ts", "settings.ts", "App.tsx"))
	require.NoError(t, err)

	require.Contains(t, md.Functions, "App")
	assert.True(t, md.Functions["App"].JSX)
	assert.Len(t, md.Hooks["useState"], 1)
	assert.Contains(t, md.Functions, "loadSettings")
}
