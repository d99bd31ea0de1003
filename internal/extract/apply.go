package extract

import (
	"fmt"
	"strings"

	"tsrefactor/internal/langmodel"
	"tsrefactor/internal/modpath"
)

// binding is one name to import.
type binding struct {
	name      string
	alias     string
	isDefault bool
	export    bool
	typeOnly  bool
}

func (b binding) named() string {
	if b.alias != "" && b.alias != b.name {
		return b.name + " as " + b.alias
	}
	return b.name
}

func (b binding) local() string {
	if b.alias != "" {
		return b.alias
	}
	return b.name
}

// apply performs the planned edits. Every step re-reads the imports of the
// file it edits, so earlier steps never leave stale offsets behind.
func (p *plan) apply() ([]string, error) {
	if err := p.removeFromOrigin(); err != nil {
		return nil, err
	}
	var updated []string
	for _, g := range p.rewires {
		if err := p.rewireFile(g); err != nil {
			return nil, err
		}
		updated = append(updated, g.Path())
	}
	if err := p.materialize(); err != nil {
		return nil, err
	}
	if err := p.importIntoOrigin(); err != nil {
		return nil, err
	}
	return updated, nil
}

// removeFromOrigin deletes the declaration and exports the siblings it uses.
func (p *plan) removeFromOrigin() error {
	start, end, err := p.prog.RemovalRange(p.decl)
	if err != nil {
		return fmt.Errorf("extract %s: %w", p.decl.Name, err)
	}
	edits := []langmodel.Edit{{Start: start, End: end}}
	exported := make(map[int]bool)
	for _, s := range p.siblings {
		if s.Exported || exported[s.ModifierStart] {
			continue
		}
		exported[s.ModifierStart] = true
		edits = append(edits, langmodel.Edit{Start: s.ModifierStart, End: s.ModifierStart, Text: "export "})
	}
	if err := p.prog.ApplyEdits(p.origin, edits); err != nil {
		return fmt.Errorf("extract %s: %w", p.decl.Name, err)
	}
	return nil
}

// rewireFile points g's imports of the entity at the destination. An import
// holding only the entity has its specifier rewritten in place; otherwise
// the entity is split out into an import from the destination. The
// destination itself just drops the import.
func (p *plan) rewireFile(g *langmodel.SourceFile) error {
	e := p.entity
	spec := modpath.Relative(p.prog.Registry(), g.Path(), p.target)
	var edits []langmodel.Edit
	var additions []binding
	for _, d := range p.prog.Imports(g) {
		if !bindsEntity(d, e) || p.prog.Resolve(g, d.Specifier) != p.origin {
			continue
		}
		only := bindingCount(d) == 1
		b := binding{export: d.IsExport, typeOnly: d.TypeOnly}
		var remove langmodel.Edit
		var ok bool
		if e.IsDefault && d.Default != "" && !d.IsExport {
			b.name, b.isDefault = d.Default, true
			remove, ok = langmodel.RemoveDefaultEdit(g, d)
		} else {
			n := d.Named[d.NamedIndex(exportName(e))]
			b.name, b.alias = n.Name, n.Alias
			b.typeOnly = b.typeOnly || n.TypeOnly
			remove, ok = langmodel.RemoveNamedEdit(g, d, n.Name)
		}

		switch {
		case g == p.dest && only:
			start, end := g.LineRange(d.Start, d.End)
			edits = append(edits, langmodel.Edit{Start: start, End: end})
		case g == p.dest:
			if ok {
				edits = append(edits, remove)
			}
		case only:
			edits = append(edits, langmodel.SetSpecifierEdit(d, spec))
		case ok:
			edits = append(edits, remove)
			additions = append(additions, b)
		}
	}
	if err := p.prog.ApplyEdits(g, edits); err != nil {
		return fmt.Errorf("rewire %s: %w", g.Path(), err)
	}
	for _, b := range additions {
		if err := p.addImport(g, spec, b); err != nil {
			return err
		}
	}
	return nil
}

// materialize creates the destination or merges into it: missing imports
// after its last import, the declaration appended after a blank line.
func (p *plan) materialize() error {
	originSpec := modpath.Relative(p.prog.Registry(), p.target, p.origin.Path())
	siblings := p.siblingBindings()

	if p.dest == nil {
		style := p.prog.DetectImportStyle(p.origin)
		var lines []string
		seen := make(map[string]bool)
		for _, c := range p.carried {
			if !seen[c.line] {
				seen[c.line] = true
				lines = append(lines, c.line)
			}
		}
		if len(siblings) > 0 {
			def, named := splitBindings(siblings)
			lines = append(lines, langmodel.RenderImport(style, originSpec, def, named, false))
		}
		var b strings.Builder
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		if len(lines) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.text)
		b.WriteByte('\n')
		f, err := p.prog.AddFile(p.target, []byte(b.String()))
		if err != nil {
			return fmt.Errorf("create %s: %w", p.target, err)
		}
		p.dest = f
		p.created = true
		return nil
	}

	dest := p.dest
	present := make(map[string]bool)
	for _, line := range strings.Split(dest.Text(), "\n") {
		present[strings.TrimSpace(line)] = true
	}
	imports := p.prog.Imports(dest)
	var edits []langmodel.Edit
	for _, c := range p.carried {
		if present[c.line] {
			continue
		}
		present[c.line] = true
		if merged, ok := mergeInto(imports, c); ok {
			edits = append(edits, merged...)
			continue
		}
		edits = append(edits, p.prog.InsertImportEdit(dest, c.line))
	}

	text := dest.Text()
	prefix := ""
	if len(text) > 0 {
		if !strings.HasSuffix(text, "\n") {
			prefix = "\n"
		}
		prefix += "\n"
	}
	edits = append(edits, langmodel.Edit{Start: len(text), End: len(text), Text: prefix + p.text + "\n"})
	if err := p.prog.ApplyEdits(dest, edits); err != nil {
		return fmt.Errorf("merge into %s: %w", p.target, err)
	}
	for _, b := range siblings {
		if err := p.addImport(dest, originSpec, b); err != nil {
			return err
		}
	}
	return nil
}

// mergeInto adds the named bindings of c to an existing import of the same
// module, returning no edits when they are all present already.
func mergeInto(imports []*langmodel.ImportDecl, c *carriedImport) ([]langmodel.Edit, bool) {
	src := c.decl
	if src.Default != "" || src.Namespace != "" || len(src.Named) == 0 {
		return nil, false
	}
	for _, d := range imports {
		if d.IsExport || d.Specifier != c.specifier || d.TypeOnly != src.TypeOnly || d.Namespace != "" {
			continue
		}
		var names []string
		for _, n := range src.Named {
			if i := d.NamedIndex(n.Name); i >= 0 && d.Named[i].Local() == n.Local() {
				continue
			}
			names = append(names, binding{name: n.Name, alias: n.Alias}.named())
		}
		if len(names) == 0 {
			return nil, true
		}
		edit, ok := langmodel.AddNamedEdit(d, strings.Join(names, ", "))
		if !ok {
			continue
		}
		return []langmodel.Edit{edit}, true
	}
	return nil, false
}

// importIntoOrigin imports the entity back into the origin, and re-exports
// it there when namespace or star importers of the origin exist.
func (p *plan) importIntoOrigin() error {
	e := p.entity
	spec := modpath.Relative(p.prog.Registry(), p.origin.Path(), p.target)
	if err := p.addImport(p.origin, spec, binding{name: e.Name, isDefault: e.IsDefault}); err != nil {
		return err
	}
	if p.barrel {
		return p.addImport(p.origin, spec, binding{name: e.Name, export: true})
	}
	return nil
}

func (p *plan) siblingBindings() []binding {
	var out []binding
	for _, s := range p.siblings {
		out = append(out, binding{name: s.Name, isDefault: s.Default})
	}
	return out
}

func splitBindings(bs []binding) (string, []string) {
	def := ""
	var named []string
	for _, b := range bs {
		if b.isDefault && def == "" {
			def = b.name
			continue
		}
		named = append(named, b.named())
	}
	return def, named
}

// addImport makes f import b from spec, merging into an existing import of
// the same module when possible.
func (p *plan) addImport(f *langmodel.SourceFile, spec string, b binding) error {
	for _, d := range p.prog.Imports(f) {
		if d.Specifier != spec || d.IsExport != b.export || d.TypeOnly != b.typeOnly || d.Namespace != "" {
			continue
		}
		if b.isDefault {
			if d.Default == b.name {
				return nil
			}
			continue
		}
		if i := d.NamedIndex(b.name); i >= 0 && d.Named[i].Local() == b.local() {
			return nil
		}
		if edit, ok := langmodel.AddNamedEdit(d, b.named()); ok {
			return p.prog.ApplyEdits(f, []langmodel.Edit{edit})
		}
	}

	style := p.prog.DetectImportStyle(f)
	var line string
	if b.isDefault {
		line = langmodel.RenderImport(style, spec, b.name, nil, b.export)
	} else {
		line = langmodel.RenderImport(style, spec, "", []string{b.named()}, b.export)
	}
	if b.typeOnly {
		line = strings.Replace(line, " ", " type ", 1)
	}
	return p.prog.ApplyEdits(f, []langmodel.Edit{p.prog.InsertImportEdit(f, line)})
}
