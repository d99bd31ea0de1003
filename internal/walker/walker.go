package walker

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string
	RelPath string
	Size    int64
}

// Options select which files Walk emits. Patterns are matched against the
// slash-separated path relative to the root; "**" crosses directories and
// "*" stays within one segment.
type Options struct {
	Include []string
	Exclude []string
	// Supports filters by file type; nil accepts every file.
	Supports func(path string) bool
}

// maxFileSize is the largest file we'll consider (4 MB).
const maxFileSize = 4 << 20

// ignoreFile lists extra directory names or globs to prune, one per line.
const ignoreFile = ".tsrefactorignore"

// defaultIgnores are directories never worth descending into.
var defaultIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	".idea",
	".vscode",
	".next",
	".turbo",
}

// Validate reports the first malformed pattern.
func (o Options) Validate() error {
	for _, set := range [][]string{o.Include, o.Exclude} {
		for _, p := range set {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid glob pattern %q", p)
			}
		}
	}
	return nil
}

// Match reports whether a root-relative slash path passes the include and
// exclude sets. An empty include set accepts everything.
func (o Options) Match(relPath string) bool {
	included := len(o.Include) == 0
	for _, p := range o.Include {
		if ok, _ := doublestar.Match(p, relPath); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range o.Exclude {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return false
		}
	}
	return true
}

// Walk traverses the directory tree rooted at root and sends matching files
// on the returned channel in lexical order.
func Walk(root string, opts Options) (<-chan FileInfo, <-chan error) {
	files := make(chan FileInfo, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- err
			return
		}

		ignores := append(append([]string{}, defaultIgnores...), loadIgnorePatterns(absRoot)...)

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip errors, keep walking
			}

			rel, _ := filepath.Rel(absRoot, path)
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path == absRoot {
					return nil
				}
				if matchesIgnore(d.Name(), rel, ignores) {
					return filepath.SkipDir
				}
				return nil
			}

			// Skip symlinks.
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}

			if opts.Supports != nil && !opts.Supports(path) {
				return nil
			}
			if !opts.Match(rel) {
				return nil
			}

			info, err := d.Info()
			if err != nil || info.Size() > maxFileSize {
				return nil
			}

			files <- FileInfo{
				Path:    path,
				RelPath: rel,
				Size:    info.Size(),
			}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return files, errs
}

// Collect drains Walk into a slice.
func Collect(root string, opts Options) ([]FileInfo, error) {
	files, errs := Walk(root, opts)
	var out []FileInfo
	for f := range files {
		out = append(out, f)
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return out, nil
}

// loadIgnorePatterns reads the optional ignore file from the project root.
func loadIgnorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, ignoreFile))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesIgnore checks if a directory name or relative path matches any ignore pattern.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		// Exact directory name match (e.g. "node_modules", ".git").
		if name == p {
			return true
		}
		if matched, _ := doublestar.Match(p, relPath); matched {
			return true
		}
	}
	return false
}
