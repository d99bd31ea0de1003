package modpath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"tsrefactor/internal/langmodel/languages"
)

func TestRelative(t *testing.T) {
	reg := languages.Default()
	root := filepath.FromSlash("/proj/src")
	tests := []struct {
		name   string
		from   string
		target string
		want   string
	}{
		{"sibling", "a.ts", "b.ts", "./b"},
		{"child", "a.ts", "util/strings.tsx", "./util/strings"},
		{"parent", "pages/home.ts", "api.ts", "../api"},
		{"cousin", "pages/home.ts", "lib/api/client.ts", "../lib/api/client"},
		{"declaration file", "a.ts", "types.d.ts", "./types"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := filepath.Join(root, filepath.FromSlash(tt.from))
			target := filepath.Join(root, filepath.FromSlash(tt.target))
			assert.Equal(t, tt.want, Relative(reg, from, target))
		})
	}
}

func TestRebase(t *testing.T) {
	oldFile := filepath.FromSlash("/proj/src/a.ts")
	newFile := filepath.FromSlash("/proj/src/lib/b.ts")
	assert.Equal(t, "../util", Rebase("./util", oldFile, newFile))
	assert.Equal(t, "../../shared/x", Rebase("../shared/x", oldFile, newFile))
	assert.Equal(t, "react", Rebase("react", oldFile, newFile))
	assert.Equal(t, "./c", Rebase("./lib/c", oldFile, newFile))
}
