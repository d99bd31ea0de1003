package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/errs"
	"tsrefactor/internal/index"
	"tsrefactor/internal/search"
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

func findOne(t *testing.T, idx *index.Index, name string) *entity.Entity {
	t.Helper()
	found, err := search.Exact(idx, name)
	require.NoError(t, err)
	require.Len(t, found, 1)
	return found[0]
}

func findIn(t *testing.T, idx *index.Index, name, file string) *entity.Entity {
	t.Helper()
	res, err := search.Search(idx, search.Options{Name: "^" + name + "$", Regex: true, File: "/" + file})
	require.NoError(t, err)
	require.Len(t, res.Entities, 1)
	return res.Entities[0]
}

func readFile(t *testing.T, idx *index.Index, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(idx.Root(), filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func namesIn(t *testing.T, idx *index.Index, name string) map[string]bool {
	t.Helper()
	res, err := search.Search(idx, search.Options{File: filepath.Join(idx.Root(), filepath.FromSlash(name))})
	require.NoError(t, err)
	out := make(map[string]bool)
	for _, e := range res.Entities {
		out[e.Name] = e.IsExported
	}
	return out
}

func TestExtractRoundTrip(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts":     "import { helper } from './util';\n\nexport function format(x: string) {\n  return helper(x);\n}\n\nexport const other = 1;\n",
		"util.ts":  "export function helper(s: string) {\n  return s;\n}\n",
		"page.ts":  "import { format } from './a';\n\nformat('x');\n",
		"mixed.ts": "import { format, other } from './a';\n\nformat(String(other));\n",
	})

	res, err := Extract(idx, findOne(t, idx, "format"), "lib/format.ts")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "format", res.EntityName)
	assert.Equal(t, filepath.Join(idx.Root(), "a.ts"), res.SourcePath)
	assert.Equal(t, filepath.Join(idx.Root(), "lib", "format.ts"), res.TargetPath)
	assert.ElementsMatch(t, []string{
		filepath.Join(idx.Root(), "mixed.ts"),
		filepath.Join(idx.Root(), "page.ts"),
	}, res.ImportsUpdated)

	exported, ok := namesIn(t, idx, "lib/format.ts")["format"]
	assert.True(t, ok)
	assert.True(t, exported)
	_, ok = namesIn(t, idx, "a.ts")["format"]
	assert.False(t, ok)

	assert.Equal(t,
		"import { helper } from '../util';\n\nexport function format(x: string) {\n  return helper(x);\n}\n",
		readFile(t, idx, "lib/format.ts"))
	assert.Equal(t, "import { format } from './lib/format';\n\nformat('x');\n", readFile(t, idx, "page.ts"))

	mixed := readFile(t, idx, "mixed.ts")
	assert.Contains(t, mixed, "import { other } from './a';")
	assert.Contains(t, mixed, "import { format } from './lib/format';")

	origin := readFile(t, idx, "a.ts")
	assert.NotContains(t, origin, "function format")
	assert.Contains(t, origin, "import { format } from './lib/format';")
	assert.Contains(t, origin, "export const other = 1;")
}

func TestExtractMergeDoesNotDuplicateImports(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts":    "import { helper } from './util';\n\nexport function first() {\n  return helper();\n}\n\nexport function second() {\n  return helper();\n}\n",
		"util.ts": "export function helper() {\n  return 1;\n}\n",
	})

	res, err := Extract(idx, findOne(t, idx, "first"), "b.ts")
	require.NoError(t, err)
	assert.True(t, res.Created)

	res, err = Extract(idx, findOne(t, idx, "second"), "b.ts")
	require.NoError(t, err)
	assert.False(t, res.Created)

	dest := readFile(t, idx, "b.ts")
	assert.Equal(t, 1, strings.Count(dest, "import { helper } from './util';"))
	assert.Contains(t, dest, "export function first()")
	assert.Contains(t, dest, "export function second()")

	names := namesIn(t, idx, "b.ts")
	assert.True(t, names["first"])
	assert.True(t, names["second"])

	origin := readFile(t, idx, "a.ts")
	assert.Contains(t, origin, "import { first, second } from './b';")
	assert.Equal(t, 1, strings.Count(origin, "from './b'"))
}

func TestExtractOneOfSeveralDeclarators(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "export const width = 1, height = 2;\n",
	})
	_, err := Extract(idx, findOne(t, idx, "height"), "c.ts")
	require.NoError(t, err)

	assert.Equal(t, "export const height = 2;\n", readFile(t, idx, "c.ts"))
	origin := readFile(t, idx, "a.ts")
	assert.Contains(t, origin, "width = 1")
	assert.NotContains(t, origin, "height = 2")
	assert.Contains(t, origin, "import { height } from './c';")
}

func TestExtractOneOfSeveralAmbientDeclarators(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "declare const a: number, b: number;\n",
	})
	_, err := Extract(idx, findOne(t, idx, "b"), "c.ts")
	require.NoError(t, err)

	assert.Equal(t, "export declare const b: number;\n", readFile(t, idx, "c.ts"))
	assert.Contains(t, readFile(t, idx, "a.ts"), "declare const a: number;")
}

func TestExtractDecoratedClasses(t *testing.T) {
	idx := newProject(t, map[string]string{
		"svc.ts": "@Injectable()\nexport class UserService {}\n\n@Dec()\nclass Hidden {}\n\nexport const h = new Hidden();\n",
	})
	_, err := Extract(idx, findOne(t, idx, "UserService"), "user.ts")
	require.NoError(t, err)
	assert.Equal(t, "@Injectable()\nexport class UserService {}\n", readFile(t, idx, "user.ts"))

	_, err = Extract(idx, findOne(t, idx, "Hidden"), "hidden.ts")
	require.NoError(t, err)
	dest := readFile(t, idx, "hidden.ts")
	assert.Equal(t, "@Dec()\nexport class Hidden {}\n", dest)
	assert.NotContains(t, dest, "export @")

	origin := readFile(t, idx, "svc.ts")
	assert.NotContains(t, origin, "@Dec()")
	assert.Contains(t, origin, "import { Hidden } from './hidden';")
}

func TestExtractRejectsInvalidTargets(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "export function run() {}\n",
	})
	e := findOne(t, idx, "run")

	for _, target := range []string{"notes.txt", "run", "types.d.ts", "a.ts"} {
		_, err := Extract(idx, e, target)
		assert.True(t, errors.Is(err, errs.ErrInvalidTargetPath), target)
	}
	assert.Equal(t, "export function run() {}\n", readFile(t, idx, "a.ts"))
	assert.True(t, e.Valid())
}

func TestExtractRejectsNameCollision(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "export function util() {\n  return 1;\n}\n",
		"b.ts": "export const util = 2;\n",
	})
	_, err := Extract(idx, findIn(t, idx, "util", "a.ts"), "b.ts")
	assert.True(t, errors.Is(err, errs.ErrNameCollision))
	assert.Equal(t, "export function util() {\n  return 1;\n}\n", readFile(t, idx, "a.ts"))
	assert.Equal(t, "export const util = 2;\n", readFile(t, idx, "b.ts"))
}

func TestExtractExportsSiblingDependencies(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "const RATE = 2;\n\nexport function scale(n: number) {\n  return n * RATE;\n}\n",
	})
	_, err := Extract(idx, findOne(t, idx, "scale"), "b.ts")
	require.NoError(t, err)

	assert.Equal(t,
		"import { RATE } from './a';\n\nexport function scale(n: number) {\n  return n * RATE;\n}\n",
		readFile(t, idx, "b.ts"))
	assert.Contains(t, readFile(t, idx, "a.ts"), "export const RATE = 2;")
}

func TestExtractForcesExportAndKeepsLocalUses(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "/** Does nothing. */\nfunction hidden() {}\n\nhidden();\n",
	})
	_, err := Extract(idx, findOne(t, idx, "hidden"), "b.ts")
	require.NoError(t, err)

	assert.Equal(t, "/** Does nothing. */\nexport function hidden() {}\n", readFile(t, idx, "b.ts"))
	origin := readFile(t, idx, "a.ts")
	assert.Contains(t, origin, "import { hidden } from './b';")
	assert.Contains(t, origin, "hidden();")
	assert.NotContains(t, origin, "Does nothing")
}

func TestExtractIntoFileThatImportedIt(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts": "export function util() { return 1; }\n",
		"b.ts": "import { util } from './a';\n\nexport const y = util();\n",
	})
	res, err := Extract(idx, findOne(t, idx, "util"), "b.ts")
	require.NoError(t, err)
	assert.False(t, res.Created)

	assert.Equal(t, "export const y = util();\n\nexport function util() { return 1; }\n", readFile(t, idx, "b.ts"))
}

func TestExtractKeepsNamespaceImportersWorking(t *testing.T) {
	idx := newProject(t, map[string]string{
		"a.ts":  "export function area(r: number) {\n  return r * r;\n}\n",
		"ns.ts": "import * as shapes from './a';\n\nshapes.area(2);\n",
	})
	_, err := Extract(idx, findOne(t, idx, "area"), "geometry.ts")
	require.NoError(t, err)

	origin := readFile(t, idx, "a.ts")
	assert.Contains(t, origin, "import { area } from './geometry';")
	assert.Contains(t, origin, "export { area } from './geometry';")
	assert.Equal(t, "import * as shapes from './a';\n\nshapes.area(2);\n", readFile(t, idx, "ns.ts"))
}
