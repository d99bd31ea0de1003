package langmodel

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageSpec defines the tree-sitter grammar used for a family of source
// extensions.
type LanguageSpec struct {
	Language *sitter.Language
	// Extensions are matched against the file name suffix, longest first, so
	// "d.ts" wins over "ts".
	Extensions []string
	// JSX enables intrinsic element handling in diagnostics.
	JSX bool
}

// Registry maps file extensions to language specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*LanguageSpec // extension (without dot) → spec
	langs map[string]*LanguageSpec // language name → spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]*LanguageSpec),
		langs: make(map[string]*LanguageSpec),
	}
}

// Register adds a language spec under the given name.
func (r *Registry) Register(name string, spec *LanguageSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.langs[name] = spec
	for _, ext := range spec.Extensions {
		r.specs[ext] = spec
	}
}

// Lookup returns the spec for a file path based on its extension, or nil.
func (r *Registry) Lookup(path string) (spec *LanguageSpec, lang string) {
	ext := r.extension(path)
	if ext == "" {
		return nil, ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.specs[ext]
	for name, sp := range r.langs {
		if sp == s {
			return s, name
		}
	}
	return s, ext
}

// Supports reports whether path has a registered source extension.
func (r *Registry) Supports(path string) bool {
	return r.extension(path) != ""
}

// StripExtension removes the registered source extension from path. Paths
// without one are returned unchanged.
func (r *Registry) StripExtension(path string) string {
	ext := r.extension(path)
	if ext == "" {
		return path
	}
	return strings.TrimSuffix(path, "."+ext)
}

// Extensions returns the set of all registered file extensions (without dot).
func (r *Registry) Extensions() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make(map[string]bool, len(r.specs))
	for ext := range r.specs {
		exts[ext] = true
	}
	return exts
}

// extension returns the longest registered extension path ends with.
func (r *Registry) extension(path string) string {
	base := filepath.Base(path)
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.specs))
	for ext := range r.specs {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool { return len(exts[i]) > len(exts[j]) })
	for _, ext := range exts {
		if strings.HasSuffix(base, "."+ext) && len(base) > len(ext)+1 {
			return ext
		}
	}
	return ""
}
