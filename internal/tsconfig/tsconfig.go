// Package tsconfig reads TypeScript project files: comments and trailing
// commas are accepted, "extends" chains are followed, and the file set and
// module-resolution options are normalized to absolute paths.
package tsconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// FileName is the default project file looked up in a root directory.
const FileName = "tsconfig.json"

// Config is a resolved project file.
type Config struct {
	// Path is the project file; Dir its directory, against which Include and
	// Exclude are expressed as slash-separated globs.
	Path string
	Dir  string

	// Files are explicit absolute file paths.
	Files   []string
	Include []string
	Exclude []string

	BaseURL   string
	Paths     map[string][]string
	PathsBase string
	OutDir    string
}

type rawConfig struct {
	Extends         any               `json:"extends"`
	Files           *[]string         `json:"files"`
	Include         *[]string         `json:"include"`
	Exclude         *[]string         `json:"exclude"`
	CompilerOptions rawCompilerOptions `json:"compilerOptions"`
}

type rawCompilerOptions struct {
	BaseURL string              `json:"baseUrl"`
	Paths   map[string][]string `json:"paths"`
	OutDir  string              `json:"outDir"`
}

var defaultExclude = []string{"node_modules", "bower_components", "jspm_packages"}

// Find returns the project file to use: explicit when given, else
// <root>/tsconfig.json. ok is false when neither exists.
func Find(root, explicit string) (string, bool) {
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(root, explicit)
		}
		if info, err := os.Stat(explicit); err == nil && info.IsDir() {
			explicit = filepath.Join(explicit, FileName)
		}
		if _, err := os.Stat(explicit); err == nil {
			return explicit, true
		}
		return "", false
	}
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return "", false
}

// Load reads path and every config it extends.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	cfg := &Config{Path: abs, Dir: filepath.Dir(abs)}
	state := &loadState{seen: map[string]bool{}}
	if err := state.apply(cfg, abs); err != nil {
		return nil, err
	}
	if cfg.Files == nil && cfg.Include == nil {
		cfg.Include = []string{"**/*"}
	}
	if cfg.Exclude == nil {
		cfg.Exclude = globs(cfg.Dir, cfg.Dir, defaultExclude, false)
		if cfg.OutDir != "" {
			cfg.Exclude = append(cfg.Exclude, globs(cfg.Dir, cfg.Dir, []string{cfg.OutDir}, false)...)
		}
	}
	if cfg.BaseURL != "" && cfg.PathsBase == "" {
		cfg.PathsBase = cfg.BaseURL
	}
	return cfg, nil
}

type loadState struct {
	seen map[string]bool
}

// apply merges the config at path into cfg, parents first so children win.
func (s *loadState) apply(cfg *Config, path string) error {
	if s.seen[path] {
		return fmt.Errorf("tsconfig %s: circular extends", path)
	}
	s.seen[path] = true

	raw, err := readRaw(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	for _, parent := range extendsList(raw.Extends) {
		parentPath, ok := resolveExtends(dir, parent)
		if !ok {
			return fmt.Errorf("tsconfig %s: cannot resolve extends %q", path, parent)
		}
		if err := s.apply(cfg, parentPath); err != nil {
			return err
		}
	}

	if raw.Files != nil {
		cfg.Files = make([]string, 0, len(*raw.Files))
		for _, f := range *raw.Files {
			cfg.Files = append(cfg.Files, filepath.Join(dir, filepath.FromSlash(f)))
		}
	}
	if raw.Include != nil {
		cfg.Include = globs(cfg.Dir, dir, *raw.Include, true)
	}
	if raw.Exclude != nil {
		cfg.Exclude = globs(cfg.Dir, dir, *raw.Exclude, false)
	}
	opts := raw.CompilerOptions
	if opts.BaseURL != "" {
		cfg.BaseURL = filepath.Join(dir, filepath.FromSlash(opts.BaseURL))
	}
	if opts.Paths != nil {
		cfg.Paths = opts.Paths
		cfg.PathsBase = ""
		if opts.BaseURL == "" {
			cfg.PathsBase = dir
		}
	}
	if opts.OutDir != "" {
		cfg.OutDir = filepath.Join(dir, filepath.FromSlash(opts.OutDir))
	}
	return nil
}

func readRaw(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var raw rawConfig
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &raw, nil
}

func extendsList(v any) []string {
	switch e := v.(type) {
	case string:
		return []string{e}
	case []any:
		var out []string
		for _, item := range e {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// resolveExtends finds a relative config file or a package config under
// node_modules.
func resolveExtends(dir, spec string) (string, bool) {
	var candidates []string
	if strings.HasPrefix(spec, ".") || filepath.IsAbs(spec) {
		base := spec
		if !filepath.IsAbs(base) {
			base = filepath.Join(dir, filepath.FromSlash(spec))
		}
		candidates = append(candidates, base, base+".json")
	} else {
		for d := dir; ; d = filepath.Dir(d) {
			base := filepath.Join(d, "node_modules", filepath.FromSlash(spec))
			candidates = append(candidates, base, base+".json", filepath.Join(base, FileName))
			if filepath.Dir(d) == d {
				break
			}
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// globs rewrites patterns declared in dir so they are relative to root.
// Entries without wildcards and without an extension name directories.
func globs(root, dir string, patterns []string, include bool) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")
		abs := p
		if !filepath.IsAbs(filepath.FromSlash(p)) {
			abs = filepath.ToSlash(filepath.Join(dir, filepath.FromSlash(p)))
		}
		rel, err := filepath.Rel(root, filepath.FromSlash(abs))
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		switch {
		case strings.HasSuffix(rel, "**"):
			rel += "/*"
		case !strings.ContainsAny(rel, "*?[") && filepath.Ext(rel) == "":
			if rel == "." {
				rel = "**/*"
			} else if include {
				rel += "/**/*"
			} else {
				rel += "/**"
			}
		}
		out = append(out, rel)
	}
	return out
}
