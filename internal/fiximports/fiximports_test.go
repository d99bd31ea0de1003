package fiximports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsrefactor/internal/index"
)

func newProject(t *testing.T, files map[string]string) *index.Index {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	idx := index.New(index.Config{Root: root})
	_, err := idx.Load()
	require.NoError(t, err)
	return idx
}

func readFile(t *testing.T, idx *index.Index, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(idx.Root(), filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestFixGreet(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "export function greet() {}\n",
		"b.ts": "console.log(greet());\n",
	})

	res, err := Analyze(idx)
	require.NoError(t, err)
	require.Len(t, res.Fixable, 1)
	assert.Empty(t, res.Unfixable)

	fix := res.Fixable[0]
	assert.Equal(t, "greet", fix.Error.MissingName)
	assert.Equal(t, filepath.Join(idx.Root(), "b.ts"), fix.Error.File)
	assert.Equal(t, 1, fix.Error.Line)
	require.Len(t, fix.Candidates, 1)
	assert.Equal(t, filepath.Join(idx.Root(), "a.ts"), fix.Candidates[0].FilePath)

	assert.True(t, FixImport(idx, fix, Options{}))
	assert.Equal(t, "import { greet } from './a';\n\nconsole.log(greet());\n", readFile(t, idx, "b.ts"))

	res, err = Analyze(idx)
	require.NoError(t, err)
	assert.Empty(t, res.Fixable)
}

func TestUnfixable(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "import { x } from './missing';\nimport chalk from 'chalk';\n\nconsole.log(x, chalk, nowhere);\n",
	})
	res, err := Analyze(idx)
	require.NoError(t, err)
	assert.Empty(t, res.Fixable)

	reasons := make(map[string]string)
	for _, u := range res.Unfixable {
		reasons[u.Error.MissingName] = u.Reason
	}
	assert.Equal(t, "module ./missing not found — may need to be installed or path corrected", reasons["./missing"])
	assert.Equal(t, "module chalk not found — may need to be installed or path corrected", reasons["chalk"])
	assert.Equal(t, "no exported entity named nowhere found", reasons["nowhere"])
}

func TestCandidatesAndSelection(t *testing.T) {
	idx := newProject(t, map[string]string{
		"models/user.ts": "export interface User { id: string }\n",
		"legacy/user.ts": "export class User {}\n",
		"app.ts":         "import { load } from './load';\n\nconst u: User = load();\nconst v: User = load();\n",
		"load.ts":        "export function load(): any { return null; }\n",
	})
	res, err := Analyze(idx)
	require.NoError(t, err)
	require.Len(t, res.Fixable, 1)

	fix := res.Fixable[0]
	require.Len(t, fix.Candidates, 2)
	assert.Equal(t, filepath.Join(idx.Root(), "legacy", "user.ts"), fix.Candidates[0].FilePath)
	assert.Equal(t, filepath.Join(idx.Root(), "models", "user.ts"), fix.Candidates[1].FilePath)

	assert.False(t, FixImport(idx, fix, Options{}))

	fix.Selected = fix.Candidates[1]
	assert.True(t, FixImport(idx, fix, Options{}))
	assert.Contains(t, readFile(t, idx, "app.ts"), "import { User } from './models/user';")
}

func TestFixMultipleMergesAndSavesOnce(t *testing.T) {
	idx := newProject(t, map[string]string{
		"util.ts":    "export const a = 1;\nexport const b = 2;\n",
		"widget.ts":  "export default function Widget() {}\n",
		"use.ts":     "import { a } from \"./util\"\n\nconsole.log(a, b, Widget);\n",
		"unused.ts":  "export const c = 3;\n",
		"another.ts": "console.log(c);\n",
	})
	res, err := Analyze(idx)
	require.NoError(t, err)
	require.Len(t, res.Fixable, 3)

	batch, err := FixMultiple(idx, res.Fixable, Options{})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Fixed: 3}, batch)

	use := readFile(t, idx, "use.ts")
	assert.Contains(t, use, "import { a, b } from \"./util\"")
	assert.Contains(t, use, "import Widget from \"./widget\"")
	assert.Equal(t, "import { c } from './unused';\n\nconsole.log(c);\n", readFile(t, idx, "another.ts"))
}

func TestQuoteOverride(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "export function greet() {}\n",
		"b.ts": "greet();\n",
	})
	res, err := Analyze(idx)
	require.NoError(t, err)
	require.Len(t, res.Fixable, 1)
	assert.True(t, FixImport(idx, res.Fixable[0], Options{Quote: '"'}))
	assert.Equal(t, "import { greet } from \"./a\";\n\ngreet();\n", readFile(t, idx, "b.ts"))
}
