package search

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/errs"
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

func names(entities []*entity.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func fixture(t *testing.T) *index.Index {
	return newProject(t, map[string]string{
		"services/user.ts": "export class UserService {}\nclass UserUtil {}\nexport function getUser() {}\n",
		"models.ts":        "export interface User { id: string }\nexport type UserID = string;\nconst cache = new Map();\n",
	})
}

func TestSearchFiltersByNameKindAndExport(t *testing.T) {
	idx := fixture(t)
	res, err := Search(idx, Options{Name: "User", Kind: entity.KindClass, Exported: Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"UserService"}, names(res.Entities))
	assert.Equal(t, 2, res.TotalFiles)
}

func TestSearchSubstringIsCaseInsensitive(t *testing.T) {
	idx := fixture(t)
	res, err := Search(idx, Options{Name: "user"})
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "UserID", "getUser", "UserService", "UserUtil"}, names(res.Entities))
}

func TestSearchRegex(t *testing.T) {
	idx := fixture(t)
	res, err := Search(idx, Options{Name: "^user(id)?$", Regex: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "UserID"}, names(res.Entities))

	_, err = Search(idx, Options{Name: "user(", Regex: true})
	assert.True(t, errors.Is(err, errs.ErrPattern))
}

func TestSearchFileFilter(t *testing.T) {
	idx := fixture(t)
	res, err := Search(idx, Options{File: "services"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalFiles)
	assert.Equal(t, []string{"getUser", "UserService", "UserUtil"}, names(res.Entities))
}

func TestSearchIsRepeatable(t *testing.T) {
	idx := fixture(t)
	first, err := Search(idx, Options{})
	require.NoError(t, err)
	second, err := Search(idx, Options{})
	require.NoError(t, err)
	assert.Equal(t, names(first.Entities), names(second.Entities))
	assert.Len(t, first.Entities, 6)
}

func TestSearchBeforeLoad(t *testing.T) {
	_, err := Search(nil, Options{})
	assert.True(t, errors.Is(err, errs.ErrNotInitialized))
}

func TestExact(t *testing.T) {
	idx := fixture(t)
	found, err := Exact(idx, "User")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, entity.KindInterface, found[0].Kind)
}
