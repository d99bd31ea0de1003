// Package extract moves a top-level declaration into another file and
// rewires every import of it.
package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/errs"
	"tsrefactor/internal/index"
	"tsrefactor/internal/langmodel"
	"tsrefactor/internal/modpath"
)

// Result describes a completed extraction. ImportsUpdated lists the files
// whose import lists were rewritten, the origin excluded.
type Result struct {
	EntityName     string
	SourcePath     string
	TargetPath     string
	ImportsUpdated []string
	Created        bool
}

// plan holds everything decided before the first edit. rewires are the
// files importing the entity from the origin.
type plan struct {
	prog   *langmodel.Program
	entity *entity.Entity
	decl   *langmodel.Declaration
	origin *langmodel.SourceFile
	target string
	dest   *langmodel.SourceFile // nil when the destination is new

	text     string
	carried  []*carriedImport
	siblings []*langmodel.Declaration
	rewires  []*langmodel.SourceFile
	barrel   bool
	created  bool
}

// carriedImport is an origin import the moved declaration depends on,
// re-based for the destination.
type carriedImport struct {
	decl      *langmodel.ImportDecl
	specifier string
	line      string
}

// Extract moves e into targetPath, creating the file when needed, and saves
// the project. The target must be a source file other than e's own file.
func Extract(idx *index.Index, e *entity.Entity, targetPath string) (*Result, error) {
	p, err := analyze(idx, e, targetPath)
	if err != nil {
		return nil, err
	}
	updated, err := p.apply()
	if err != nil {
		return nil, err
	}
	if _, err := idx.Save(); err != nil {
		return nil, err
	}

	idx.Logger().WithFields(logrus.Fields{
		"entity":  e.Name,
		"from":    p.origin.Path(),
		"to":      p.target,
		"updated": len(updated),
	}).Info("extracted")

	return &Result{
		EntityName:     e.Name,
		SourcePath:     p.origin.Path(),
		TargetPath:     p.target,
		ImportsUpdated: updated,
		Created:        p.created,
	}, nil
}

func analyze(idx *index.Index, e *entity.Entity, targetPath string) (*plan, error) {
	if err := idx.Ready(); err != nil {
		return nil, err
	}
	if e == nil || !e.Valid() {
		return nil, errs.New(errs.ErrStaleEntity, "extract", "", nil)
	}
	reg := idx.Registry()
	target := idx.Abs(targetPath)
	if !reg.Supports(target) || strings.HasSuffix(target, ".d.ts") {
		return nil, errs.New(errs.ErrInvalidTargetPath, "extract", targetPath,
			fmt.Errorf("not a TypeScript source file"))
	}
	prog := idx.Program()
	origin := e.Decl.File()
	if target == origin.Path() {
		return nil, errs.New(errs.ErrInvalidTargetPath, "extract", targetPath,
			fmt.Errorf("target is the declaring file"))
	}
	decl, err := prog.Declaration(e.Decl)
	if err != nil {
		return nil, errs.New(errs.ErrStaleEntity, "extract", e.Name, err)
	}

	p := &plan{prog: prog, entity: e, decl: decl, origin: origin, target: target}
	if p.dest = prog.File(target); p.dest == nil && fileExists(target) {
		if p.dest, err = idx.LoadFile(target); err != nil {
			return nil, fmt.Errorf("load destination: %w", err)
		}
	}
	if p.dest != nil && prog.TopLevelNames(p.dest)[e.Name] && !p.importsEntity(p.dest) {
		return nil, errs.New(errs.ErrNameCollision, "extract", e.Name,
			fmt.Errorf("already declared in %s", target))
	}

	p.text = p.movedText()
	used := p.usedNames()
	p.carried = p.carriedImports(used)
	p.siblings = p.siblingDeps(used)
	p.rewires, p.barrel = p.importers()
	return p, nil
}

// movedText is the declaration source with an export modifier forced on,
// placed after any decorators. A declarator sharing its statement becomes a
// standalone statement.
func (p *plan) movedText() string {
	d, src := p.decl, p.origin.Text()
	if d.Kind == langmodel.DeclVariable && d.DeclaratorCount > 1 {
		keyword := d.VarKeyword
		if d.Ambient {
			keyword = "declare " + keyword
		}
		return "export " + keyword + " " + src[d.NodeStart:d.NodeEnd] + ";"
	}
	body := src[d.CommentStart:d.StmtEnd]
	if !d.ExportKeyword {
		at := d.ModifierStart - d.CommentStart
		body = body[:at] + "export " + body[at:]
	}
	return body
}

func (p *plan) usedNames() map[string]bool {
	d := p.decl
	start, end := d.StmtStart, d.StmtEnd
	if d.Kind == langmodel.DeclVariable && d.DeclaratorCount > 1 {
		start, end = d.NodeStart, d.NodeEnd
	}
	used := p.prog.NamesIn(p.origin, start, end)
	delete(used, d.Name)
	return used
}

// carriedImports selects every origin import with at least one binding used
// by the declaration. Matching is by name only.
func (p *plan) carriedImports(used map[string]bool) []*carriedImport {
	src := p.origin.Text()
	var out []*carriedImport
	for _, d := range p.prog.Imports(p.origin) {
		if d.IsExport || !d.HasBindings() {
			continue
		}
		needed := false
		for _, name := range d.LocalNames() {
			if used[name] {
				needed = true
				break
			}
		}
		if !needed {
			continue
		}
		if resolved, ok := p.prog.ResolvePath(p.origin, d.Specifier); ok && resolved == p.target {
			continue
		}
		spec := modpath.Rebase(d.Specifier, p.origin.Path(), p.target)
		line := src[d.Start:d.SpecStart] + spec + src[d.SpecEnd:d.End]
		out = append(out, &carriedImport{decl: d, specifier: spec, line: strings.TrimSpace(line)})
	}
	return out
}

// siblingDeps are other top-level declarations of the origin used by the
// moved declaration.
func (p *plan) siblingDeps(used map[string]bool) []*langmodel.Declaration {
	decls, err := p.prog.Declarations(p.origin)
	if err != nil {
		return nil
	}
	var out []*langmodel.Declaration
	for _, d := range decls.All() {
		if d.NameStart == p.decl.NameStart || !used[d.Name] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// importers finds files importing the entity from the origin, and whether
// namespace imports or star re-exports of the origin exist.
func (p *plan) importers() ([]*langmodel.SourceFile, bool) {
	e := p.entity
	var out []*langmodel.SourceFile
	barrel := false
	for _, g := range p.prog.Files() {
		if g == p.origin {
			continue
		}
		matched := false
		for _, d := range p.prog.Imports(g) {
			if p.prog.Resolve(g, d.Specifier) != p.origin {
				continue
			}
			if d.Namespace != "" || d.ExportAll {
				barrel = true
			}
			if bindsEntity(d, e) {
				matched = true
			}
		}
		if matched {
			out = append(out, g)
		}
	}
	return out, barrel && e.IsExported && !e.IsDefault
}

func (p *plan) importsEntity(f *langmodel.SourceFile) bool {
	for _, d := range p.prog.Imports(f) {
		if !d.IsExport && bindsEntity(d, p.entity) && p.prog.Resolve(f, d.Specifier) == p.origin {
			return true
		}
	}
	return false
}

func exportName(e *entity.Entity) string {
	if e.IsDefault {
		return "default"
	}
	return e.Name
}

func bindsEntity(d *langmodel.ImportDecl, e *entity.Entity) bool {
	if e.IsDefault && d.Default != "" && !d.IsExport {
		return true
	}
	return d.NamedIndex(exportName(e)) >= 0
}

func bindingCount(d *langmodel.ImportDecl) int {
	n := len(d.Named)
	if d.Default != "" {
		n++
	}
	if d.Namespace != "" {
		n++
	}
	return n
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
