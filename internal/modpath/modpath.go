// Package modpath computes relative module specifiers between source files.
package modpath

import (
	"path/filepath"
	"strings"
)

// Stripper removes a recognized source extension from a path.
type Stripper interface {
	StripExtension(path string) string
}

// Relative returns the specifier that imports target from the file at from:
// relative to from's directory, source extension removed, forward slashes,
// and prefixed with "./" unless it already starts with ".".
func Relative(exts Stripper, from, target string) string {
	rel, err := filepath.Rel(filepath.Dir(from), exts.StripExtension(target))
	if err != nil {
		rel = exts.StripExtension(target)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// Rebase rewrites a relative specifier written in oldFile so it resolves to
// the same place from newFile. Non-relative specifiers are returned as is.
func Rebase(specifier, oldFile, newFile string) string {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") &&
		specifier != "." && specifier != ".." {
		return specifier
	}
	target := filepath.Join(filepath.Dir(oldFile), filepath.FromSlash(specifier))
	rel, err := filepath.Rel(filepath.Dir(newFile), target)
	if err != nil {
		return specifier
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}
