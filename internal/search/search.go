// Package search filters the project's entities by name, kind, export
// state and file.
package search

import (
	"regexp"
	"strings"
	"time"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/errs"
	"tsrefactor/internal/index"
)

// Options narrow a search. Zero values match everything.
type Options struct {
	// Name is a case-insensitive substring, or a case-insensitive regular
	// expression when Regex is set.
	Name  string
	Regex bool
	// Kind restricts the entity kind; zero means any.
	Kind entity.Kind
	// Exported restricts export state when non-nil.
	Exported *bool
	// File is a substring of the absolute file path.
	File string
}

// Result is an ordered search result: file order, then kind group order.
type Result struct {
	Entities   []*entity.Entity
	TotalFiles int
	Duration   time.Duration
}

// SearchTimeMs returns the duration in milliseconds.
func (r *Result) SearchTimeMs() float64 {
	return float64(r.Duration.Microseconds()) / 1000
}

// Search scans every eligible file; nothing is cached between calls.
func Search(idx *index.Index, opts Options) (*Result, error) {
	start := time.Now()
	if err := idx.Ready(); err != nil {
		return nil, err
	}
	match, err := nameMatcher(opts)
	if err != nil {
		return nil, err
	}

	log := idx.Logger()
	prog := idx.Program()
	res := &Result{}
	for _, f := range prog.Files() {
		if opts.File != "" && !strings.Contains(f.Path(), opts.File) {
			continue
		}
		res.TotalFiles++
		entities, err := entity.Extract(prog, f)
		if err != nil {
			log.WithError(err).WithField("file", f.Path()).Warn("skipping file")
			continue
		}
		for _, e := range entities {
			if !match(e.Name) {
				continue
			}
			if opts.Kind != 0 && e.Kind != opts.Kind {
				continue
			}
			if opts.Exported != nil && e.IsExported != *opts.Exported {
				continue
			}
			res.Entities = append(res.Entities, e)
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}

// All returns every entity in the project.
func All(idx *index.Index) ([]*entity.Entity, error) {
	res, err := Search(idx, Options{})
	if err != nil {
		return nil, err
	}
	return res.Entities, nil
}

// Exact returns the entities named exactly name.
func Exact(idx *index.Index, name string) ([]*entity.Entity, error) {
	res, err := Search(idx, Options{Name: "^" + regexp.QuoteMeta(name) + "$", Regex: true})
	if err != nil {
		return nil, err
	}
	var out []*entity.Entity
	for _, e := range res.Entities {
		// The pattern is case-insensitive; identifiers are not.
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}

func nameMatcher(opts Options) (func(string) bool, error) {
	if opts.Name == "" {
		return func(string) bool { return true }, nil
	}
	if opts.Regex {
		re, err := regexp.Compile("(?i)" + opts.Name)
		if err != nil {
			return nil, errs.New(errs.ErrPattern, "search", opts.Name, err)
		}
		return re.MatchString, nil
	}
	needle := strings.ToLower(opts.Name)
	return func(name string) bool {
		return strings.Contains(strings.ToLower(name), needle)
	}, nil
}

// Bool returns a pointer to b, for Options.Exported.
func Bool(b bool) *bool { return &b }
