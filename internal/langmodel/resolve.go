package langmodel

import (
	"os"
	"path/filepath"
	"strings"
)

var candidateExtensions = []string{".ts", ".tsx", ".d.ts", ".mts", ".cts"}

var jsExtensions = map[string]string{
	".js":  ".ts",
	".jsx": ".tsx",
	".mjs": ".mts",
	".cjs": ".cts",
}

var nodeBuiltins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"test": true, "timers": true, "tls": true, "trace_events": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "wasi": true,
	"worker_threads": true, "zlib": true,
}

// IsRelative reports whether a module specifier is path-relative.
func IsRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// Resolve returns the loaded file a specifier in from refers to, or nil.
func (p *Program) Resolve(from *SourceFile, specifier string) *SourceFile {
	for _, c := range p.candidates(from, specifier) {
		if f, ok := p.files[c]; ok {
			return f
		}
	}
	return nil
}

// ResolvePath returns the path a specifier in from refers to, whether the
// target is loaded or only present on disk.
func (p *Program) ResolvePath(from *SourceFile, specifier string) (string, bool) {
	for _, c := range p.candidates(from, specifier) {
		if _, ok := p.files[c]; ok {
			return c, true
		}
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}

func (p *Program) candidates(from *SourceFile, specifier string) []string {
	var bases []string
	switch {
	case IsRelative(specifier):
		bases = append(bases, filepath.Join(filepath.Dir(from.path), filepath.FromSlash(specifier)))
	case filepath.IsAbs(specifier):
		bases = append(bases, filepath.Clean(specifier))
	default:
		bases = append(bases, p.mappedBases(specifier)...)
		if p.options.BaseURL != "" {
			bases = append(bases, filepath.Join(p.options.BaseURL, filepath.FromSlash(specifier)))
		}
	}
	var out []string
	for _, base := range bases {
		out = append(out, withExtensions(base)...)
	}
	return out
}

func withExtensions(base string) []string {
	out := []string{base}
	for _, ext := range candidateExtensions {
		out = append(out, base+ext)
	}
	ext := filepath.Ext(base)
	if ts, ok := jsExtensions[ext]; ok {
		out = append(out, strings.TrimSuffix(base, ext)+ts)
	}
	out = append(out,
		filepath.Join(base, "index.ts"),
		filepath.Join(base, "index.tsx"),
		filepath.Join(base, "index.d.ts"),
	)
	return out
}

// mappedBases applies compilerOptions.paths patterns. A pattern holds at most
// one "*" which captures the matched part of the specifier.
func (p *Program) mappedBases(specifier string) []string {
	root := p.options.PathsBase
	if root == "" {
		root = p.options.BaseURL
	}
	if root == "" || len(p.options.Paths) == 0 {
		return nil
	}
	var out []string
	for pattern, targets := range p.options.Paths {
		capture, ok := matchPathPattern(pattern, specifier)
		if !ok {
			continue
		}
		for _, target := range targets {
			target = strings.Replace(target, "*", capture, 1)
			out = append(out, filepath.Join(root, filepath.FromSlash(target)))
		}
	}
	return out
}

func matchPathPattern(pattern, specifier string) (string, bool) {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return "", pattern == specifier
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if len(specifier) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

// moduleExists reports whether an import specifier in from can be satisfied.
func (p *Program) moduleExists(from *SourceFile, specifier string) bool {
	if _, ok := p.ResolvePath(from, specifier); ok {
		return true
	}
	if IsRelative(specifier) || filepath.IsAbs(specifier) {
		return false
	}
	if isNodeBuiltin(specifier) {
		return true
	}
	return packageInstalled(filepath.Dir(from.path), specifier)
}

func isNodeBuiltin(specifier string) bool {
	if strings.HasPrefix(specifier, "node:") {
		return true
	}
	name, _, _ := strings.Cut(specifier, "/")
	return nodeBuiltins[name]
}

// packageInstalled walks up from dir looking for the package (or its @types
// counterpart) under node_modules.
func packageInstalled(dir, specifier string) bool {
	pkg := packageName(specifier)
	if pkg == "" {
		return false
	}
	typesPkg := "@types/" + strings.Replace(strings.TrimPrefix(pkg, "@"), "/", "__", 1)
	for {
		for _, name := range []string{pkg, typesPkg} {
			if info, err := os.Stat(filepath.Join(dir, "node_modules", filepath.FromSlash(name))); err == nil && info.IsDir() {
				return true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

func packageName(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") {
		if len(parts) < 2 {
			return ""
		}
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
