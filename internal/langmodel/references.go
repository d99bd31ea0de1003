package langmodel

import (
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// RefKind classifies a reference location.
type RefKind int

const (
	// RefDeclaration is the declaration's own name token.
	RefDeclaration RefKind = iota + 1
	// RefUsage is an ordinary use of the binding.
	RefUsage
	// RefImport is a name inside an import or re-export specifier.
	RefImport
)

// Location is one occurrence of a declaration's binding.
type Location struct {
	File         *SourceFile
	Offset, End  int
	Line, Column int
	Kind         RefKind
	// Shorthand marks `{ name }` object literal members and assignment
	// patterns, which need a `name: value` expansion when renamed.
	Shorthand bool
	// DeclParent is set when the location is the name field of a declaration
	// node, e.g. an overload signature or a redeclaration.
	DeclParent string
}

// Text returns the source text at the location.
func (l Location) Text() string {
	return string(l.File.text[l.Offset:l.End])
}

var declarationNodes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_signature":             true,
	"class_declaration":              true,
	"abstract_class_declaration":     true,
	"interface_declaration":          true,
	"type_alias_declaration":         true,
	"enum_declaration":               true,
	"variable_declarator":            true,
	"internal_module":                true,
}

type exportTarget struct {
	file *SourceFile
	name string
}

// FindReferences returns every occurrence of the handle's binding across the
// program, the declaring file first and then other files in load order.
// Imports are followed by name and alias, default and namespace forms, and
// through re-exports.
func (p *Program) FindReferences(h DeclHandle) ([]Location, error) {
	decl, err := p.Declaration(h)
	if err != nil {
		return nil, fmt.Errorf("find references: %w", err)
	}
	origin := h.file
	seen := make(map[string]bool)
	var out []Location
	add := func(locs ...Location) {
		for _, l := range locs {
			key := fmt.Sprintf("%s:%d", l.File.path, l.Offset)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, l)
		}
	}

	local := p.usages(origin, decl.Name)
	for i := range local {
		if local[i].Offset == decl.NameStart {
			local[i].Kind = RefDeclaration
		}
	}
	if !seen[fmt.Sprintf("%s:%d", origin.path, decl.NameStart)] {
		add(p.location(origin, decl.NameStart, decl.NameEnd, RefDeclaration))
	}
	add(local...)

	var queue []exportTarget
	for _, name := range exportedAs(origin, decl) {
		queue = append(queue, exportTarget{origin, name})
	}
	visited := make(map[string]bool)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		key := t.file.path + "\x00" + t.name
		if visited[key] {
			continue
		}
		visited[key] = true
		for _, g := range p.Files() {
			if g == t.file {
				continue
			}
			locs, next := p.importersOf(g, t)
			add(locs...)
			queue = append(queue, next...)
		}
	}

	order := make(map[string]int, len(p.order))
	for i, path := range p.order {
		order[path] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			if a.File == origin {
				return true
			}
			if b.File == origin {
				return false
			}
			return order[a.File.path] < order[b.File.path]
		}
		return a.Offset < b.Offset
	})
	return out, nil
}

// importersOf finds references in g to the export t, and any further exports
// g makes of it.
func (p *Program) importersOf(g *SourceFile, t exportTarget) ([]Location, []exportTarget) {
	var locs []Location
	var next []exportTarget
	for _, d := range p.Imports(g) {
		if p.Resolve(g, d.Specifier) != t.file {
			continue
		}
		if d.IsExport {
			if d.ExportAll && t.name != "default" {
				next = append(next, exportTarget{g, t.name})
			}
			for _, n := range d.Named {
				if n.Name != t.name {
					continue
				}
				locs = append(locs, p.location(g, n.NameStart, n.NameEnd, RefImport))
				next = append(next, exportTarget{g, n.Local()})
			}
			continue
		}
		var bindings []string
		if t.name == "default" && d.Default != "" {
			locs = append(locs, p.location(g, d.DefaultStart, d.DefaultEnd, RefImport))
			bindings = append(bindings, d.Default)
		}
		for _, n := range d.Named {
			if n.Name != t.name {
				continue
			}
			locs = append(locs, p.location(g, n.NameStart, n.NameEnd, RefImport))
			bindings = append(bindings, n.Local())
		}
		for _, b := range bindings {
			locs = append(locs, p.usages(g, b)...)
			for _, alias := range localExportAliases(g.Root(), g.text, b) {
				next = append(next, exportTarget{g, alias})
			}
		}
		if d.Namespace != "" {
			locs = append(locs, p.namespaceMembers(g, d.Namespace, t.name)...)
		}
	}
	return locs, next
}

// usages lists identifiers in f named name that resolve to the module-level
// binding. Import and re-export statements are skipped.
func (p *Program) usages(f *SourceFile, name string) []Location {
	src := f.text
	var out []Location
	walk(f.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			return false
		case "export_statement":
			return n.ChildByFieldName("source") == nil
		case "identifier", "type_identifier", "shorthand_property_identifier",
			"shorthand_property_identifier_pattern":
		default:
			return true
		}
		if nodeText(n, src) != name || !isBindingReference(n) {
			return true
		}
		if !resolvesToTop(n, name, src) {
			return true
		}
		start, end := span(n)
		l := p.location(f, start, end, RefUsage)
		l.Shorthand = n.Type() == "shorthand_property_identifier" ||
			n.Type() == "shorthand_property_identifier_pattern"
		if parent := n.Parent(); parent != nil && declarationNodes[parent.Type()] && isFieldOf(n, parent, "name") {
			l.DeclParent = name
		}
		out = append(out, l)
		return true
	})
	return out
}

// isBindingReference filters out identifier tokens that name something other
// than a lexical binding: export aliases and qualified-name members.
func isBindingReference(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return true
	}
	switch parent.Type() {
	case "export_specifier":
		return !isFieldOf(n, parent, "alias")
	case "nested_type_identifier":
		return !isFieldOf(n, parent, "name")
	case "nested_identifier":
		first := parent.NamedChild(0)
		return sameNode(first, n)
	}
	return true
}

// namespaceMembers finds `ns.name` expressions and `ns.Name` type references.
func (p *Program) namespaceMembers(g *SourceFile, ns, name string) []Location {
	src := g.text
	var out []Location
	walk(g.Root(), func(n *sitter.Node) bool {
		var object, member *sitter.Node
		switch n.Type() {
		case "import_statement":
			return false
		case "member_expression":
			object, member = n.ChildByFieldName("object"), n.ChildByFieldName("property")
		case "nested_type_identifier":
			object, member = n.ChildByFieldName("module"), n.ChildByFieldName("name")
		default:
			return true
		}
		if object == nil || member == nil || object.Type() != "identifier" {
			return true
		}
		if nodeText(object, src) != ns || nodeText(member, src) != name || !resolvesToTop(object, ns, src) {
			return true
		}
		start, end := span(member)
		out = append(out, p.location(g, start, end, RefUsage))
		return true
	})
	return out
}

func (p *Program) location(f *SourceFile, start, end int, kind RefKind) Location {
	line, col := f.Position(start)
	return Location{File: f, Offset: start, End: end, Line: line, Column: col, Kind: kind}
}

// exportedAs lists the names under which decl is visible to importers.
func exportedAs(f *SourceFile, decl *Declaration) []string {
	var out []string
	switch {
	case decl.DefaultKeyword:
		out = append(out, "default")
	case decl.ExportKeyword:
		out = append(out, decl.Name)
	}
	out = append(out, localExportAliases(f.Root(), f.text, decl.Name)...)
	return out
}

// localExportAliases lists the exported names of local binding name given by
// `export { name }`, `export { name as alias }` and `export default name`.
func localExportAliases(root *sitter.Node, src []byte, name string) []string {
	var out []string
	for _, stmt := range namedChildren(root) {
		if stmt.Type() != "export_statement" || stmt.ChildByFieldName("source") != nil {
			continue
		}
		if clause := firstNamedOfType(stmt, "export_clause"); clause != nil {
			for _, spec := range namedChildren(clause) {
				if spec.Type() != "export_specifier" || nodeText(exportSpecifierName(spec), src) != name {
					continue
				}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					out = append(out, nodeText(alias, src))
				} else {
					out = append(out, name)
				}
			}
		}
		if v := stmt.ChildByFieldName("value"); v != nil && v.Type() == "identifier" &&
			hasToken(stmt, "default") && nodeText(v, src) == name {
			out = append(out, "default")
		}
	}
	return out
}

// NamesIn returns the identifier names occurring inside [start, end) of f.
// Property names are not identifiers and are not included.
func (p *Program) NamesIn(f *SourceFile, start, end int) map[string]bool {
	names := make(map[string]bool)
	walk(f.Root(), func(n *sitter.Node) bool {
		s, e := span(n)
		if e <= start || s >= end {
			return false
		}
		switch n.Type() {
		case "identifier", "type_identifier", "shorthand_property_identifier":
			if s >= start && e <= end {
				names[nodeText(n, f.text)] = true
			}
		}
		return true
	})
	return names
}
