package langmodel

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// NamedImport is one `name` or `name as alias` entry in braces.
type NamedImport struct {
	Name  string
	Alias string
	// Start/End cover the whole specifier; NameStart/NameEnd the imported name.
	Start, End         int
	NameStart, NameEnd int
	TypeOnly           bool
}

// Local returns the binding the specifier introduces in the importing file.
func (n NamedImport) Local() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// ImportDecl is an `import … from` statement or an `export … from` re-export.
type ImportDecl struct {
	Start, End int

	Specifier          string
	SpecStart, SpecEnd int // string content, quotes excluded
	Quote              byte

	Default                  string
	DefaultStart, DefaultEnd int
	Namespace                string
	NamespaceStart           int
	Named                    []NamedImport
	NamedStart, NamedEnd     int // braces, -1 when absent

	TypeOnly  bool
	IsExport  bool
	ExportAll bool
	Semicolon bool
}

// HasBindings reports whether the import introduces or re-exports any name.
func (d *ImportDecl) HasBindings() bool {
	return d.Default != "" || d.Namespace != "" || len(d.Named) > 0 || d.ExportAll
}

// LocalNames returns every binding the import introduces.
func (d *ImportDecl) LocalNames() []string {
	var out []string
	if d.Default != "" {
		out = append(out, d.Default)
	}
	if d.Namespace != "" {
		out = append(out, d.Namespace)
	}
	for _, n := range d.Named {
		out = append(out, n.Local())
	}
	return out
}

// NamedIndex returns the index of the named entry importing name, or -1.
func (d *ImportDecl) NamedIndex(name string) int {
	for i, n := range d.Named {
		if n.Name == name {
			return i
		}
	}
	return -1
}

// Imports lists the import and re-export statements of f in source order.
func (p *Program) Imports(f *SourceFile) []*ImportDecl {
	src := f.text
	var out []*ImportDecl
	for _, stmt := range namedChildren(f.Root()) {
		switch stmt.Type() {
		case "import_statement":
			if d := parseImport(stmt, src); d != nil {
				out = append(out, d)
			}
		case "export_statement":
			if stmt.ChildByFieldName("source") != nil {
				if d := parseReExport(stmt, src); d != nil {
					out = append(out, d)
				}
			}
		}
	}
	return out
}

func newImportDecl(stmt *sitter.Node, src []byte) *ImportDecl {
	source := stmt.ChildByFieldName("source")
	if source == nil {
		source = firstNamedOfType(stmt, "string")
	}
	if source == nil {
		return nil
	}
	sStart, sEnd := span(source)
	if sEnd-sStart < 2 {
		return nil
	}
	start, end := span(stmt)
	return &ImportDecl{
		Start:      start,
		End:        end,
		Specifier:  string(src[sStart+1 : sEnd-1]),
		SpecStart:  sStart + 1,
		SpecEnd:    sEnd - 1,
		Quote:      src[sStart],
		NamedStart: -1,
		NamedEnd:   -1,
		Semicolon:  strings.HasSuffix(strings.TrimSpace(nodeText(stmt, src)), ";"),
	}
}

func parseImport(stmt *sitter.Node, src []byte) *ImportDecl {
	d := newImportDecl(stmt, src)
	if d == nil {
		return nil
	}
	d.TypeOnly = hasToken(stmt, "type")
	clause := firstNamedOfType(stmt, "import_clause")
	if clause == nil {
		return d
	}
	for _, c := range namedChildren(clause) {
		switch c.Type() {
		case "identifier":
			d.Default = nodeText(c, src)
			d.DefaultStart, d.DefaultEnd = span(c)
		case "namespace_import":
			if id := firstNamedOfType(c, "identifier"); id != nil {
				d.Namespace = nodeText(id, src)
				d.NamespaceStart = int(id.StartByte())
			}
		case "named_imports":
			d.NamedStart, d.NamedEnd = span(c)
			for _, spec := range namedChildren(c) {
				if spec.Type() != "import_specifier" {
					continue
				}
				if n, ok := parseSpecifier(spec, src); ok {
					d.Named = append(d.Named, n)
				}
			}
		}
	}
	return d
}

func parseReExport(stmt *sitter.Node, src []byte) *ImportDecl {
	d := newImportDecl(stmt, src)
	if d == nil {
		return nil
	}
	d.IsExport = true
	d.TypeOnly = hasToken(stmt, "type")
	if clause := firstNamedOfType(stmt, "export_clause"); clause != nil {
		d.NamedStart, d.NamedEnd = span(clause)
		for _, spec := range namedChildren(clause) {
			if spec.Type() != "export_specifier" {
				continue
			}
			if n, ok := parseSpecifier(spec, src); ok {
				d.Named = append(d.Named, n)
			}
		}
		return d
	}
	if ns := firstNamedOfType(stmt, "namespace_export"); ns != nil {
		if id := firstNamedOfType(ns, "identifier"); id != nil {
			d.Namespace = nodeText(id, src)
			d.NamespaceStart = int(id.StartByte())
		}
		return d
	}
	if hasToken(stmt, "*") {
		d.ExportAll = true
	}
	return d
}

// parseSpecifier reads an import_specifier or export_specifier. The grammar
// exposes name/alias fields; older grammars only have positional identifiers.
func parseSpecifier(spec *sitter.Node, src []byte) (NamedImport, bool) {
	name := spec.ChildByFieldName("name")
	alias := spec.ChildByFieldName("alias")
	if name == nil {
		var ids []*sitter.Node
		for _, c := range namedChildren(spec) {
			if c.Type() == "identifier" || c.Type() == "type_identifier" {
				ids = append(ids, c)
			}
		}
		if len(ids) == 0 {
			return NamedImport{}, false
		}
		name = ids[0]
		if len(ids) > 1 {
			alias = ids[len(ids)-1]
		}
	}
	start, end := span(spec)
	n := NamedImport{
		Name:     nodeText(name, src),
		Start:    start,
		End:      end,
		TypeOnly: hasToken(spec, "type"),
	}
	n.NameStart, n.NameEnd = span(name)
	if alias != nil && !sameNode(alias, name) {
		n.Alias = nodeText(alias, src)
	}
	return n, true
}
