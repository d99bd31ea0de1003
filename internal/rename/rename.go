// Package rename renames an entity together with every reference to it
// across the project.
package rename

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/errs"
	"tsrefactor/internal/index"
	"tsrefactor/internal/langmodel"
)

// Reference is one occurrence of an entity's name. Text is the trimmed
// source line.
type Reference struct {
	File   string
	Line   int
	Column int
	Text   string
}

// Result summarizes a completed rename. ReferencesUpdated counts every
// occurrence found before the rename, the declaration included.
type Result struct {
	OldName           string
	NewName           string
	FilesModified     []string
	ReferencesUpdated int
}

// Preview lists the occurrences a rename of e would rewrite, in the order
// the provider reports them.
func Preview(idx *index.Index, e *entity.Entity) ([]Reference, error) {
	locs, err := references(idx, e)
	if err != nil {
		return nil, err
	}
	out := make([]Reference, 0, len(locs))
	for _, l := range locs {
		out = append(out, Reference{
			File:   l.File.Path(),
			Line:   l.Line,
			Column: l.Column,
			Text:   strings.TrimSpace(l.File.LineText(l.Line)),
		})
	}
	return out, nil
}

// Rename rewrites the declaration of e and all its references to newName
// and saves the project. Nothing is modified when validation fails.
func Rename(idx *index.Index, e *entity.Entity, newName string) (*Result, error) {
	locs, err := references(idx, e)
	if err != nil {
		return nil, err
	}
	if !langmodel.ValidIdentifier(newName) {
		return nil, errs.New(errs.ErrInvalidIdentifier, "rename", newName, nil)
	}
	if err := checkCollisions(idx.Program(), e, newName, locs); err != nil {
		return nil, err
	}

	files := make(map[string]bool)
	for _, l := range locs {
		if l.Kind == langmodel.RefDeclaration {
			continue
		}
		files[l.File.Path()] = true
	}
	modified := make([]string, 0, len(files))
	for f := range files {
		modified = append(modified, f)
	}
	sort.Strings(modified)

	if _, err := idx.Program().Rename(e.Decl, newName); err != nil {
		return nil, err
	}
	if _, err := idx.Save(); err != nil {
		return nil, err
	}

	idx.Logger().WithFields(logrus.Fields{
		"entity":     e.Name,
		"new_name":   newName,
		"references": len(locs),
		"files":      len(modified),
	}).Info("renamed")

	return &Result{
		OldName:           e.Name,
		NewName:           newName,
		FilesModified:     modified,
		ReferencesUpdated: len(locs),
	}, nil
}

func references(idx *index.Index, e *entity.Entity) ([]langmodel.Location, error) {
	if err := idx.Ready(); err != nil {
		return nil, err
	}
	if e == nil || !e.Valid() {
		return nil, errs.New(errs.ErrStaleEntity, "rename", entityName(e), nil)
	}
	switch e.Kind {
	case entity.KindFunction, entity.KindClass, entity.KindVariable,
		entity.KindInterface, entity.KindType, entity.KindEnum:
	default:
		return nil, errs.New(errs.ErrUnsupportedFeature, "rename", e.Name, fmt.Errorf("kind %s", e.Kind))
	}
	locs, err := idx.Program().FindReferences(e.Decl)
	if err != nil {
		return nil, fmt.Errorf("find references of %s: %w", e.Name, err)
	}
	return locs, nil
}

// checkCollisions rejects newName when it is already bound at module level
// in a file where the old name is rewritten in place.
func checkCollisions(prog *langmodel.Program, e *entity.Entity, newName string, locs []langmodel.Location) error {
	if newName == e.Name {
		return nil
	}
	checked := make(map[*langmodel.SourceFile]bool)
	for _, l := range locs {
		if checked[l.File] || l.Text() != e.Name {
			continue
		}
		checked[l.File] = true
		if prog.TopLevelNames(l.File)[newName] {
			return errs.New(errs.ErrNameCollision, "rename", newName,
				fmt.Errorf("already declared in %s", l.File.Path()))
		}
	}
	return nil
}

func entityName(e *entity.Entity) string {
	if e == nil {
		return ""
	}
	return e.Name
}
