// Package index owns the set of loaded source files: which files are in
// scope, their parsed state, and writing modifications back to disk.
package index

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"tsrefactor/internal/errs"
	"tsrefactor/internal/langmodel"
	"tsrefactor/internal/langmodel/languages"
	"tsrefactor/internal/tsconfig"
	"tsrefactor/internal/walker"
)

// DefaultInclude selects sources when no project file is used.
var DefaultInclude = []string{"**/*.ts", "**/*.tsx"}

// DefaultExclude drops build outputs, dependencies, declaration files and
// tests when no project file is used.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/coverage/**",
	"**/*.d.ts",
	"**/*.test.ts",
	"**/*.test.tsx",
	"**/*.spec.ts",
	"**/*.spec.tsx",
	"**/__tests__/**",
}

// Config holds the index configuration.
type Config struct {
	Root string
	// ConfigPath is an explicit tsconfig; when empty <Root>/tsconfig.json is
	// used if present.
	ConfigPath string
	// RequireConfig fails Load when no tsconfig is found instead of falling
	// back to Include/Exclude.
	RequireConfig bool
	Include       []string
	Exclude       []string
	// Globals are extra ambient names that never produce diagnostics.
	Globals []string
	Workers int
	Logger  *logrus.Logger
}

// Index is the caller-owned record of the loaded project.
type Index struct {
	config   Config
	root     string
	registry *langmodel.Registry
	program  *langmodel.Program
	project  *tsconfig.Config
	stats    Stats
	log      *logrus.Logger
	loaded   bool
}

// New creates an unloaded index.
func New(cfg Config) *Index {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Index{
		config:   cfg,
		registry: languages.Default(),
		log:      log,
	}
}

// Load discovers and parses the project's files. With a tsconfig exactly
// the files it designates are loaded; otherwise the include/exclude globs
// decide.
func (idx *Index) Load() (*Stats, error) {
	root, err := filepath.Abs(idx.config.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, errs.New(errs.ErrConfiguration, "load", root, fmt.Errorf("root is not a directory"))
	}
	idx.root = root

	opts, paths, err := idx.discover()
	if err != nil {
		return nil, err
	}
	idx.program = langmodel.NewProgram(idx.registry, opts)

	stats, err := runPipeline(idx.program, paths, idx.config.Workers, idx.log)
	if err != nil {
		return nil, err
	}
	idx.stats = *stats
	idx.loaded = true
	idx.log.WithFields(logrus.Fields{
		"root":  root,
		"files": stats.FilesLoaded,
	}).Debug("project loaded")
	return stats, nil
}

func (idx *Index) discover() (langmodel.Options, []string, error) {
	opts := langmodel.Options{Globals: idx.config.Globals}
	path, found := tsconfig.Find(idx.root, idx.config.ConfigPath)
	if !found {
		if idx.config.ConfigPath != "" || idx.config.RequireConfig {
			subject := idx.config.ConfigPath
			if subject == "" {
				subject = filepath.Join(idx.root, tsconfig.FileName)
			}
			return opts, nil, errs.New(errs.ErrConfiguration, "load", subject, nil)
		}
		include := idx.config.Include
		if len(include) == 0 {
			include = DefaultInclude
		}
		exclude := idx.config.Exclude
		if exclude == nil {
			exclude = DefaultExclude
		}
		paths, err := idx.walk(idx.root, include, exclude)
		return opts, paths, err
	}

	project, err := tsconfig.Load(path)
	if err != nil {
		return opts, nil, errs.New(errs.ErrConfiguration, "load", path, err)
	}
	idx.project = project
	idx.log.WithField("tsconfig", path).Debug("using project file")
	opts.BaseURL = project.BaseURL
	opts.Paths = project.Paths
	opts.PathsBase = project.PathsBase

	seen := make(map[string]bool)
	var paths []string
	for _, f := range project.Files {
		if !idx.registry.Supports(f) || seen[f] {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			idx.log.WithField("file", f).Warn("file listed in tsconfig does not exist")
			continue
		}
		seen[f] = true
		paths = append(paths, f)
	}
	if project.Include != nil {
		walked, err := idx.walk(project.Dir, project.Include, project.Exclude)
		if err != nil {
			return opts, nil, err
		}
		for _, f := range walked {
			if !seen[f] {
				seen[f] = true
				paths = append(paths, f)
			}
		}
	}
	return opts, paths, nil
}

func (idx *Index) walk(dir string, include, exclude []string) ([]string, error) {
	wopts := walker.Options{Include: include, Exclude: exclude, Supports: idx.registry.Supports}
	if err := wopts.Validate(); err != nil {
		return nil, errs.New(errs.ErrConfiguration, "load", dir, err)
	}
	infos, err := walker.Collect(dir, wopts)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	out := make([]string, 0, len(infos))
	for _, fi := range infos {
		out = append(out, fi.Path)
	}
	return out, nil
}

// Ready returns ErrNotInitialized until Load has succeeded. It is safe on a
// nil index.
func (idx *Index) Ready() error {
	if idx == nil || !idx.loaded {
		return errs.New(errs.ErrNotInitialized, "", "", nil)
	}
	return nil
}

// Root returns the absolute project root, or the configured root before Load.
func (idx *Index) Root() string {
	if idx.root == "" {
		return idx.config.Root
	}
	return idx.root
}

// Program returns the loaded program.
func (idx *Index) Program() *langmodel.Program { return idx.program }

// Registry returns the grammar registry.
func (idx *Index) Registry() *langmodel.Registry { return idx.registry }

// Logger returns the index logger.
func (idx *Index) Logger() *logrus.Logger { return idx.log }

// Project returns the tsconfig in use, or nil in glob mode.
func (idx *Index) Project() *tsconfig.Config { return idx.project }

// Stats returns the statistics of the last Load.
func (idx *Index) Stats() Stats { return idx.stats }

// ListFiles returns the absolute paths of every loaded file in load order.
func (idx *Index) ListFiles() []string {
	if idx.Ready() != nil {
		return nil
	}
	files := idx.program.Files()
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path()
	}
	return out
}

// Abs resolves path against the project root.
func (idx *Index) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(idx.root, path)
}

// GetFile returns a loaded file by absolute or root-relative path.
func (idx *Index) GetFile(path string) (*langmodel.SourceFile, error) {
	if err := idx.Ready(); err != nil {
		return nil, err
	}
	f := idx.program.File(idx.Abs(path))
	if f == nil {
		return nil, errs.New(errs.ErrFileNotFound, "get file", path, nil)
	}
	return f, nil
}

// AddFile creates or overwrites a file in memory. It reaches disk on Save.
func (idx *Index) AddFile(path, text string) (*langmodel.SourceFile, error) {
	if err := idx.Ready(); err != nil {
		return nil, err
	}
	return idx.program.AddFile(idx.Abs(path), []byte(text))
}

// LoadFile adds a file that exists on disk but is not loaded yet.
func (idx *Index) LoadFile(path string) (*langmodel.SourceFile, error) {
	if err := idx.Ready(); err != nil {
		return nil, err
	}
	return idx.program.LoadFile(idx.Abs(path))
}

// Save writes every modified file to disk.
func (idx *Index) Save() (int, error) {
	if err := idx.Ready(); err != nil {
		return 0, err
	}
	n, err := idx.program.Save()
	if err != nil {
		return n, fmt.Errorf("save: %w", err)
	}
	idx.log.WithField("files", n).Debug("saved")
	return n, nil
}
