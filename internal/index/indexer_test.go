package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsrefactor/internal/errs"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func relFiles(t *testing.T, idx *Index) []string {
	t.Helper()
	var out []string
	for _, f := range idx.ListFiles() {
		rel, err := filepath.Rel(idx.Root(), f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestLoadWithDefaultGlobs(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/a.ts":                  "export const a = 1;\n",
		"src/b.tsx":                 "export const B = () => null;\n",
		"src/a.test.ts":             "test();\n",
		"src/types.d.ts":            "declare const x: number;\n",
		"dist/a.ts":                 "export const a = 1;\n",
		"node_modules/p/i.ts":       "export {};\n",
		"src/components/c.spec.tsx": "spec();\n",
	})

	idx := New(Config{Root: root})
	stats, err := idx.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesLoaded)
	assert.Equal(t, []string{"src/a.ts", "src/b.tsx"}, relFiles(t, idx))
	assert.Nil(t, idx.Project())
}

func TestLoadWithTSConfig(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"tsconfig.json":   `{ "include": ["src"], "compilerOptions": { "baseUrl": "src" } }`,
		"src/a.ts":        "export const a = 1;\n",
		"src/a.test.ts":   "test();\n",
		"scripts/tool.ts": "run();\n",
	})

	idx := New(Config{Root: root})
	_, err := idx.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.test.ts", "src/a.ts"}, relFiles(t, idx))
	require.NotNil(t, idx.Project())
	assert.Equal(t, filepath.Join(root, "src"), idx.Project().BaseURL)
}

func TestLoadRequiresConfig(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.ts": "export {};\n"})

	_, err := New(Config{Root: root, RequireConfig: true}).Load()
	assert.True(t, errors.Is(err, errs.ErrConfiguration))

	_, err = New(Config{Root: root, ConfigPath: "custom.json"}).Load()
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestLoadRejectsBadGlob(t *testing.T) {
	root := t.TempDir()
	_, err := New(Config{Root: root, Include: []string{"src/[a"}}).Load()
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestNotInitialized(t *testing.T) {
	var idx *Index
	assert.True(t, errors.Is(idx.Ready(), errs.ErrNotInitialized))

	idx = New(Config{Root: t.TempDir()})
	_, err := idx.GetFile("a.ts")
	assert.True(t, errors.Is(err, errs.ErrNotInitialized))
	_, err = idx.Save()
	assert.True(t, errors.Is(err, errs.ErrNotInitialized))
}

func TestAddFileAndSave(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.ts": "export const a = 1;\n"})
	idx := New(Config{Root: root})
	_, err := idx.Load()
	require.NoError(t, err)

	_, err = idx.GetFile("missing.ts")
	assert.True(t, errors.Is(err, errs.ErrFileNotFound))

	f, err := idx.AddFile("lib/b.ts", "export const b = 2;\n")
	require.NoError(t, err)
	assert.True(t, f.Dirty())

	_, statErr := os.Stat(filepath.Join(root, "lib", "b.ts"))
	assert.True(t, os.IsNotExist(statErr))

	n, err := idx.Save()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	data, err := os.ReadFile(filepath.Join(root, "lib", "b.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export const b = 2;\n", string(data))
}
