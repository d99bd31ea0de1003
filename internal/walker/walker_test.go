package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("export {};\n"), 0o644))
	}
	return root
}

func relPaths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestCollectAppliesGlobs(t *testing.T) {
	root := writeTree(t,
		"index.ts",
		"src/a.ts",
		"src/b.tsx",
		"src/types.d.ts",
		"src/a.test.ts",
		"dist/a.ts",
		"node_modules/pkg/index.ts",
		"README.md",
	)
	files, err := Collect(root, Options{
		Include: []string{"**/*.ts", "**/*.tsx"},
		Exclude: []string{"dist/**", "**/*.d.ts", "**/*.test.ts"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.ts", "src/a.ts", "src/b.tsx"}, relPaths(files))
}

func TestCollectHonorsIgnoreFileAndSupports(t *testing.T) {
	root := writeTree(t, "gen/x.ts", "src/y.ts", "src/z.js")
	require.NoError(t, os.WriteFile(filepath.Join(root, ignoreFile), []byte("# generated\ngen\n"), 0o644))

	files, err := Collect(root, Options{
		Supports: func(path string) bool { return strings.HasSuffix(path, ".ts") },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/y.ts"}, relPaths(files))
}

func TestMatchStarStaysInSegment(t *testing.T) {
	opts := Options{Include: []string{"src/*.ts"}}
	assert.True(t, opts.Match("src/a.ts"))
	assert.False(t, opts.Match("src/nested/a.ts"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Options{Include: []string{"**/*.ts"}}.Validate())
	assert.Error(t, Options{Exclude: []string{"src/[a"}}.Validate())
}
