// Package unused reports entities that nothing references.
//
// The check is conservative: an entity with any resolvable reference outside
// its own declaration is live. Dynamic or computed uses the reference finder
// cannot see are missed, never invented.
package unused

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/index"
	"tsrefactor/internal/langmodel"
)

// Reasons attached to results.
const (
	ReasonUnusedExport   = "exported but never imported or used elsewhere"
	ReasonUnusedPrivate  = "not exported and never used in its file"
	ReasonDeclaredUnused = "declared but never used"
)

// DefaultEntryPoints are file base names whose entities count as used.
var DefaultEntryPoints = []string{"index", "main"}

// Options tune the detector. Zero values select the defaults.
type Options struct {
	EntryPoints []string
	// DefinitionWindow is how far, in bytes, a same-file reference may sit
	// from the declaration name and still count as the definition itself.
	DefinitionWindow int
}

func (o Options) withDefaults() Options {
	if len(o.EntryPoints) == 0 {
		o.EntryPoints = DefaultEntryPoints
	}
	if o.DefinitionWindow <= 0 {
		o.DefinitionWindow = 1
	}
	return o
}

// Result is one unused entity.
type Result struct {
	Entity *entity.Entity
	Reason string
}

// Stats counts unused entities.
type Stats struct {
	Total    int
	Exported int
	Private  int
	ByKind   map[entity.Kind]int
}

// FindUnused checks every entity of every loaded file, in extraction order.
// Entities whose references cannot be resolved are skipped.
func FindUnused(idx *index.Index, opts Options) ([]Result, error) {
	if err := idx.Ready(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	entry := make(map[string]bool, len(opts.EntryPoints))
	for _, name := range opts.EntryPoints {
		entry[name] = true
	}

	log := idx.Logger()
	prog := idx.Program()
	var out []Result
	for _, f := range prog.Files() {
		if entry[baseName(idx, f.Path())] {
			continue
		}
		entities, err := entity.Extract(prog, f)
		if err != nil {
			log.WithError(err).WithField("file", f.Path()).Warn("skipping file")
			continue
		}
		for _, e := range entities {
			reason, err := check(prog, e, opts.DefinitionWindow)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"entity": e.Name,
					"file":   e.FilePath,
				}).Debug("skipping entity")
				continue
			}
			if reason != "" {
				out = append(out, Result{Entity: e, Reason: reason})
			}
		}
	}
	return out, nil
}

// FindUnusedExports keeps the exported results of FindUnused.
func FindUnusedExports(idx *index.Index, opts Options) ([]Result, error) {
	return filter(idx, opts, true)
}

// FindUnusedPrivate keeps the non-exported results of FindUnused.
func FindUnusedPrivate(idx *index.Index, opts Options) ([]Result, error) {
	return filter(idx, opts, false)
}

// GetStats runs FindUnused and counts the results.
func GetStats(idx *index.Index, opts Options) (*Stats, error) {
	results, err := FindUnused(idx, opts)
	if err != nil {
		return nil, err
	}
	s := Summarize(results)
	return &s, nil
}

// Summarize counts results by export state and kind.
func Summarize(results []Result) Stats {
	s := Stats{ByKind: make(map[entity.Kind]int)}
	for _, r := range results {
		s.Total++
		if r.Entity.IsExported {
			s.Exported++
		} else {
			s.Private++
		}
		s.ByKind[r.Entity.Kind]++
	}
	return s
}

func filter(idx *index.Index, opts Options, exported bool) ([]Result, error) {
	results, err := FindUnused(idx, opts)
	if err != nil {
		return nil, err
	}
	var out []Result
	for _, r := range results {
		if r.Entity.IsExported == exported {
			out = append(out, r)
		}
	}
	return out, nil
}

// check returns the reason e is unused, or "" when it is live.
func check(prog *langmodel.Program, e *entity.Entity, window int) (string, error) {
	decl, err := prog.Declaration(e.Decl)
	if err != nil {
		return "", err
	}
	locs, err := prog.FindReferences(e.Decl)
	if err != nil {
		return "", err
	}

	var refs []langmodel.Location
	for _, l := range locs {
		if l.File == e.File && abs(l.Offset-decl.NameStart) < window {
			continue
		}
		refs = append(refs, l)
	}
	if len(refs) == 0 {
		if e.IsExported {
			return ReasonUnusedExport, nil
		}
		return ReasonUnusedPrivate, nil
	}
	if e.IsExported {
		return "", nil
	}

	for _, l := range refs {
		if l.File != e.File {
			return "", nil
		}
	}
	for _, l := range refs {
		if l.DeclParent != e.Name {
			return "", nil
		}
	}
	return ReasonDeclaredUnused, nil
}

// baseName is the file name without directories or source extension.
func baseName(idx *index.Index, path string) string {
	name := filepath.Base(idx.Registry().StripExtension(path))
	return strings.TrimSuffix(name, ".d")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
