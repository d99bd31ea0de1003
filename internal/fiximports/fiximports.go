// Package fiximports finds unresolved names and adds imports for them from
// the project's exported entities.
package fiximports

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/index"
	"tsrefactor/internal/langmodel"
	"tsrefactor/internal/modpath"
)

// ImportError is one unresolved identifier or module. MissingName holds the
// identifier, or the specifier for a missing module.
type ImportError struct {
	File        string
	Line        int
	Column      int
	Code        int
	Message     string
	MissingName string
}

// IsModule reports whether the error is about a module specifier.
func (e ImportError) IsModule() bool {
	return e.Code == langmodel.CodeCannotFindModule
}

// FixableImport is an unresolved name with at least one exported entity of
// that name elsewhere in the project. Selected picks among several
// candidates; it is filled in by FixImport when there is only one.
type FixableImport struct {
	Error      ImportError
	Candidates []*entity.Entity
	Selected   *entity.Entity
}

// UnfixableImport is an error no project entity can satisfy.
type UnfixableImport struct {
	Error  ImportError
	Reason string
}

// Analysis is the outcome of scanning the project.
type Analysis struct {
	Fixable   []*FixableImport
	Unfixable []UnfixableImport
}

// Options tune rendered imports.
type Options struct {
	// Quote forces ' or " on new import lines. Zero follows the file.
	Quote byte
}

// BatchResult tallies FixMultiple.
type BatchResult struct {
	Fixed  int
	Failed int
}

// Analyze collects unresolved names and modules from every loaded file.
func Analyze(idx *index.Index) (*Analysis, error) {
	if err := idx.Ready(); err != nil {
		return nil, err
	}
	prog := idx.Program()
	exported := exportedEntities(idx)

	res := &Analysis{}
	for _, f := range prog.Files() {
		seen := make(map[string]bool)
		for _, d := range prog.Diagnostics(f) {
			ie := ImportError{
				File:        f.Path(),
				Line:        d.Line,
				Column:      d.Column,
				Code:        d.Code,
				Message:     d.Message,
				MissingName: d.Name,
			}
			switch d.Code {
			case langmodel.CodeCannotFindModule:
				res.Unfixable = append(res.Unfixable, UnfixableImport{
					Error:  ie,
					Reason: fmt.Sprintf("module %s not found — may need to be installed or path corrected", d.Name),
				})
			case langmodel.CodeCannotFindName:
				if seen[d.Name] {
					continue
				}
				seen[d.Name] = true
				var candidates []*entity.Entity
				for _, e := range exported[d.Name] {
					if e.FilePath != f.Path() {
						candidates = append(candidates, e)
					}
				}
				if len(candidates) == 0 {
					res.Unfixable = append(res.Unfixable, UnfixableImport{
						Error:  ie,
						Reason: fmt.Sprintf("no exported entity named %s found", d.Name),
					})
					continue
				}
				res.Fixable = append(res.Fixable, &FixableImport{Error: ie, Candidates: candidates})
			}
		}
	}
	return res, nil
}

// exportedEntities indexes exported entities by name in extraction order.
func exportedEntities(idx *index.Index) map[string][]*entity.Entity {
	prog := idx.Program()
	out := make(map[string][]*entity.Entity)
	for _, f := range prog.Files() {
		entities, err := entity.Extract(prog, f)
		if err != nil {
			idx.Logger().WithError(err).WithField("file", f.Path()).Warn("skipping file")
			continue
		}
		for _, e := range entities {
			if e.IsExported {
				out[e.Name] = append(out[e.Name], e)
			}
		}
	}
	return out
}

// FixImport adds the import for fix and saves the project. It returns false
// when no candidate is selected among several, or the edit fails.
func FixImport(idx *index.Index, fix *FixableImport, opts Options) bool {
	if !apply(idx, fix, opts) {
		return false
	}
	if _, err := idx.Save(); err != nil {
		idx.Logger().WithError(err).Warn("save failed")
		return false
	}
	return true
}

// FixMultiple applies every fix, isolating failures, and saves once.
func FixMultiple(idx *index.Index, fixes []*FixableImport, opts Options) (BatchResult, error) {
	var res BatchResult
	for _, fix := range fixes {
		if apply(idx, fix, opts) {
			res.Fixed++
		} else {
			res.Failed++
		}
	}
	if res.Fixed == 0 {
		return res, nil
	}
	if _, err := idx.Save(); err != nil {
		return res, fmt.Errorf("save fixes: %w", err)
	}
	return res, nil
}

func apply(idx *index.Index, fix *FixableImport, opts Options) bool {
	if fix == nil {
		return false
	}
	if fix.Selected == nil {
		if len(fix.Candidates) != 1 {
			return false
		}
		fix.Selected = fix.Candidates[0]
	}
	log := idx.Logger().WithFields(logrus.Fields{
		"file": fix.Error.File,
		"name": fix.Error.MissingName,
	})
	f, err := idx.GetFile(fix.Error.File)
	if err != nil {
		log.WithError(err).Warn("import fix skipped")
		return false
	}
	prog := idx.Program()
	c := fix.Selected
	spec := modpath.Relative(prog.Registry(), f.Path(), c.FilePath)
	edit := importEdit(prog, f, spec, c, opts)
	if edit == nil {
		return true
	}
	if err := prog.ApplyEdits(f, []langmodel.Edit{*edit}); err != nil {
		log.WithError(err).Warn("import fix failed")
		return false
	}
	log.WithField("from", spec).Debug("import added")
	return true
}

// importEdit merges c into an import of spec in f, or inserts a new import
// line. A nil edit means f already imports it.
func importEdit(prog *langmodel.Program, f *langmodel.SourceFile, spec string, c *entity.Entity, opts Options) *langmodel.Edit {
	for _, d := range prog.Imports(f) {
		if d.IsExport || d.TypeOnly || d.Specifier != spec || d.Namespace != "" {
			continue
		}
		if c.IsDefault {
			if d.Default != "" {
				if d.Default == c.Name {
					return nil
				}
				continue
			}
			if d.NamedStart >= 0 {
				return &langmodel.Edit{Start: d.NamedStart, End: d.NamedStart, Text: c.Name + ", "}
			}
			continue
		}
		if i := d.NamedIndex(c.Name); i >= 0 && d.Named[i].Local() == c.Name {
			return nil
		}
		if edit, ok := langmodel.AddNamedEdit(d, c.Name); ok {
			return &edit
		}
	}

	style := prog.DetectImportStyle(f)
	if opts.Quote == '\'' || opts.Quote == '"' {
		style.Quote = opts.Quote
	}
	var line string
	if c.IsDefault {
		line = langmodel.RenderImport(style, spec, c.Name, nil, false)
	} else {
		line = langmodel.RenderImport(style, spec, "", []string{c.Name}, false)
	}
	edit := prog.InsertImportEdit(f, line)
	return &edit
}
