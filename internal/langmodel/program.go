// Package langmodel is the language-model provider: it parses TypeScript
// sources with tree-sitter, answers declaration, import, reference and
// diagnostic queries, applies text edits and writes modified files back.
package langmodel

import (
	"fmt"
	"os"
	"path/filepath"
)

// Options configure module resolution and diagnostics.
type Options struct {
	// BaseURL is the absolute directory non-relative specifiers resolve from.
	BaseURL string
	// Paths maps specifier patterns (at most one "*") to target patterns
	// relative to PathsBase.
	Paths     map[string][]string
	PathsBase string
	// Globals are extra ambient identifiers that never produce diagnostics.
	Globals []string
}

// Program is the in-memory set of parsed files. It is not safe for
// concurrent use.
type Program struct {
	registry *Registry
	options  Options
	files    map[string]*SourceFile
	order    []string
	epoch    uint64
	globals  map[string]bool
}

// NewProgram creates an empty program using the given grammar registry.
func NewProgram(reg *Registry, opts Options) *Program {
	g := make(map[string]bool, len(ambientGlobals)+len(opts.Globals))
	for _, name := range ambientGlobals {
		g[name] = true
	}
	for _, name := range opts.Globals {
		g[name] = true
	}
	return &Program{
		registry: reg,
		options:  opts,
		files:    make(map[string]*SourceFile),
		globals:  g,
	}
}

// Registry returns the grammar registry.
func (p *Program) Registry() *Registry { return p.registry }

// Epoch increases on every Save.
func (p *Program) Epoch() uint64 { return p.epoch }

// AddFile parses text and stores it under path, replacing any existing file.
// The file is marked dirty when it is new or its text changed.
func (p *Program) AddFile(path string, text []byte) (*SourceFile, error) {
	path = filepath.Clean(path)
	spec, lang := p.registry.Lookup(path)
	if spec == nil {
		return nil, fmt.Errorf("add %s: unsupported file type", path)
	}
	if f, ok := p.files[path]; ok {
		if err := p.setText(f, text); err != nil {
			return nil, err
		}
		return f, nil
	}
	f := &SourceFile{path: path, lang: lang, spec: spec}
	if err := f.setText(text); err != nil {
		return nil, err
	}
	f.dirty = true
	p.files[path] = f
	p.order = append(p.order, path)
	return f, nil
}

// LoadFile reads path from disk and adds it without marking it dirty.
func (p *Program) LoadFile(path string) (*SourceFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Open(path, src)
}

// Open adds a file whose text is already on disk, so it is not dirty.
func (p *Program) Open(path string, text []byte) (*SourceFile, error) {
	f, err := p.AddFile(path, text)
	if err != nil {
		return nil, err
	}
	f.dirty = false
	return f, nil
}

// File returns the loaded file at path, or nil.
func (p *Program) File(path string) *SourceFile {
	return p.files[filepath.Clean(path)]
}

// Files returns every loaded file in load order.
func (p *Program) Files() []*SourceFile {
	out := make([]*SourceFile, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, p.files[path])
	}
	return out
}

// RemoveFile drops a file from the program without touching the disk.
func (p *Program) RemoveFile(path string) bool {
	path = filepath.Clean(path)
	f, ok := p.files[path]
	if !ok {
		return false
	}
	if f.tree != nil {
		f.tree.Close()
	}
	delete(p.files, path)
	for i, o := range p.order {
		if o == path {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

// ReplaceText replaces the whole text of f.
func (p *Program) ReplaceText(f *SourceFile, text string) error {
	return p.setText(f, []byte(text))
}

// Save writes every dirty file to disk and returns how many were written.
// All declaration handles are invalidated afterwards.
func (p *Program) Save() (int, error) {
	p.epoch++
	written := 0
	for _, f := range p.Files() {
		if !f.dirty {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return written, fmt.Errorf("create directory for %s: %w", f.path, err)
		}
		if err := os.WriteFile(f.path, f.text, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.path, err)
		}
		f.dirty = false
		written++
	}
	return written, nil
}

func (p *Program) setText(f *SourceFile, text []byte) error {
	if string(f.text) == string(text) && f.tree != nil {
		return nil
	}
	if err := f.setText(text); err != nil {
		return err
	}
	f.dirty = true
	return nil
}
