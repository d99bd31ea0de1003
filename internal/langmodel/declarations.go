package langmodel

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Declaration is one top-level named declaration.
type Declaration struct {
	Kind DeclKind
	Name string

	NameStart, NameEnd int
	// NodeStart/NodeEnd cover the declaration node itself; for variables this
	// is the single declarator.
	NodeStart, NodeEnd int
	// StmtStart/StmtEnd cover the whole top-level statement including any
	// export or declare keyword.
	StmtStart, StmtEnd int
	// ListStart/ListEnd cover the variable statement without export keyword.
	// They equal NodeStart/NodeEnd for other kinds.
	ListStart, ListEnd int
	// CommentStart is where leading comments attached to the statement begin,
	// or StmtStart when there are none.
	CommentStart int

	Exported bool
	Default  bool
	Ambient  bool
	// ExportKeyword and DefaultKeyword are set when the statement itself
	// carries `export` or `export default`, as opposed to a later export clause.
	ExportKeyword  bool
	DefaultKeyword bool
	// ModifierStart is where an `export` modifier goes: after any decorators.
	ModifierStart int

	VarKeyword      string
	DeclaratorIndex int
	DeclaratorCount int

	Handle DeclHandle
}

// Declarations groups top-level declarations the way consumers enumerate
// them: functions, classes, variables, interfaces, type aliases, enums.
type Declarations struct {
	Functions   []*Declaration
	Classes     []*Declaration
	Variables   []*Declaration
	Interfaces  []*Declaration
	TypeAliases []*Declaration
	Enums       []*Declaration
}

// All returns every declaration in group order, source order within a group.
func (d *Declarations) All() []*Declaration {
	var out []*Declaration
	out = append(out, d.Functions...)
	out = append(out, d.Classes...)
	out = append(out, d.Variables...)
	out = append(out, d.Interfaces...)
	out = append(out, d.TypeAliases...)
	out = append(out, d.Enums...)
	return out
}

func (d *Declarations) add(decl *Declaration) {
	switch decl.Kind {
	case DeclFunction:
		d.Functions = append(d.Functions, decl)
	case DeclClass:
		d.Classes = append(d.Classes, decl)
	case DeclVariable:
		d.Variables = append(d.Variables, decl)
	case DeclInterface:
		d.Interfaces = append(d.Interfaces, decl)
	case DeclTypeAlias:
		d.TypeAliases = append(d.TypeAliases, decl)
	case DeclEnum:
		d.Enums = append(d.Enums, decl)
	}
}

// Declarations lists the module-level declarations of f. Nested and local
// declarations are never reported.
func (p *Program) Declarations(f *SourceFile) (*Declarations, error) {
	if f == nil || f.tree == nil {
		return nil, fmt.Errorf("declarations: file not parsed")
	}
	src := f.text
	root := f.Root()
	exportedNames, defaultName := localExports(root, src)

	out := &Declarations{}
	for _, stmt := range namedChildren(root) {
		exported, isDefault, ambient := false, false, false
		inner := stmt
		for inner != nil {
			switch inner.Type() {
			case "export_statement":
				if inner.ChildByFieldName("source") != nil {
					inner = nil
					continue
				}
				exported = true
				isDefault = isDefault || hasToken(inner, "default")
				inner = inner.ChildByFieldName("declaration")
				continue
			case "ambient_declaration":
				ambient = true
				inner = firstNamedOfType(inner,
					"function_signature", "class_declaration", "abstract_class_declaration",
					"interface_declaration", "type_alias_declaration", "enum_declaration",
					"lexical_declaration", "variable_declaration")
				continue
			}
			break
		}
		if inner == nil {
			continue
		}
		for _, decl := range p.declarationsOf(f, stmt, inner, ambient) {
			decl.ExportKeyword = exported
			decl.DefaultKeyword = isDefault
			if exported || exportedNames[decl.Name] {
				decl.Exported = true
			}
			if isDefault || (defaultName != "" && decl.Name == defaultName) {
				decl.Exported = true
				decl.Default = true
			}
			out.add(decl)
		}
	}

	for _, group := range [][]*Declaration{out.Functions, out.Classes, out.Variables, out.Interfaces, out.TypeAliases, out.Enums} {
		sort.SliceStable(group, func(i, j int) bool { return group[i].NameStart < group[j].NameStart })
	}
	return out, nil
}

// Declaration returns the declaration a handle points at.
func (p *Program) Declaration(h DeclHandle) (*Declaration, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("declaration: stale handle")
	}
	decls, err := p.Declarations(h.file)
	if err != nil {
		return nil, err
	}
	for _, d := range decls.All() {
		if d.NameStart == h.nameStart && d.Kind == h.kind {
			return d, nil
		}
	}
	return nil, fmt.Errorf("declaration: no declaration at offset %d in %s", h.nameStart, h.file.path)
}

// TopLevelNames returns every name bound at module scope in f: declarations,
// namespaces and import bindings.
func (p *Program) TopLevelNames(f *SourceFile) map[string]bool {
	names := make(map[string]bool)
	collectModuleBindings(f.Root(), f.text, names)
	return names
}

func (p *Program) declarationsOf(f *SourceFile, stmt, inner *sitter.Node, ambient bool) []*Declaration {
	src := f.text
	stmtStart, stmtEnd := span(stmt)
	base := Declaration{
		StmtStart:     stmtStart,
		StmtEnd:       stmtEnd,
		CommentStart:  leadingCommentStart(f, stmt),
		ModifierStart: modifierStart(stmt),
		Ambient:       ambient,
	}
	var kind DeclKind
	switch inner.Type() {
	case "function_declaration", "generator_function_declaration":
		kind = DeclFunction
	case "function_signature":
		if !ambient {
			return nil
		}
		kind = DeclFunction
	case "class_declaration", "abstract_class_declaration":
		kind = DeclClass
	case "interface_declaration":
		kind = DeclInterface
	case "type_alias_declaration":
		kind = DeclTypeAlias
	case "enum_declaration":
		kind = DeclEnum
	case "lexical_declaration", "variable_declaration":
		return p.variableDeclarations(f, base, inner)
	default:
		return nil
	}

	name := inner.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	d := base
	d.Kind = kind
	d.Name = nodeText(name, src)
	d.NameStart, d.NameEnd = span(name)
	d.NodeStart, d.NodeEnd = span(inner)
	d.ListStart, d.ListEnd = d.NodeStart, d.NodeEnd
	d.DeclaratorCount = 1
	d.Handle = p.handle(f, kind, d.NameStart)
	return []*Declaration{&d}
}

func (p *Program) variableDeclarations(f *SourceFile, base Declaration, list *sitter.Node) []*Declaration {
	src := f.text
	keyword := "var"
	if list.Type() == "lexical_declaration" {
		keyword = "let"
		if k := list.ChildByFieldName("kind"); k != nil {
			keyword = nodeText(k, src)
		} else if hasToken(list, "const") {
			keyword = "const"
		}
	}
	var declarators []*sitter.Node
	for _, c := range namedChildren(list) {
		if c.Type() == "variable_declarator" {
			declarators = append(declarators, c)
		}
	}
	listStart, listEnd := span(list)
	var out []*Declaration
	for i, dc := range declarators {
		name := dc.ChildByFieldName("name")
		if name == nil || name.Type() != "identifier" {
			continue
		}
		d := base
		d.Kind = DeclVariable
		d.Name = nodeText(name, src)
		d.NameStart, d.NameEnd = span(name)
		d.NodeStart, d.NodeEnd = span(dc)
		d.ListStart, d.ListEnd = listStart, listEnd
		d.VarKeyword = keyword
		d.DeclaratorIndex = i
		d.DeclaratorCount = len(declarators)
		d.Handle = p.handle(f, DeclVariable, d.NameStart)
		out = append(out, &d)
	}
	return out
}

// DeclaratorRange returns the byte range to delete when removing one
// declarator from a multi-declarator statement, including one separating comma.
func (p *Program) DeclaratorRange(d *Declaration) (int, int, error) {
	f := d.Handle.file
	list := nodeAt(f.Root(), d.ListStart, d.ListEnd)
	if list == nil {
		return 0, 0, fmt.Errorf("declarator range: statement not found for %s", d.Name)
	}
	var declarators []*sitter.Node
	for _, c := range namedChildren(list) {
		if c.Type() == "variable_declarator" {
			declarators = append(declarators, c)
		}
	}
	if d.DeclaratorIndex >= len(declarators) {
		return 0, 0, fmt.Errorf("declarator range: declarator %d missing for %s", d.DeclaratorIndex, d.Name)
	}
	if len(declarators) == 1 {
		return d.NodeStart, d.NodeEnd, nil
	}
	if d.DeclaratorIndex < len(declarators)-1 {
		next := declarators[d.DeclaratorIndex+1]
		return d.NodeStart, int(next.StartByte()), nil
	}
	prev := declarators[d.DeclaratorIndex-1]
	return int(prev.EndByte()), d.NodeEnd, nil
}

// localExports collects names exported through `export { a, b as c }` clauses
// without a source, and the identifier of `export default name;`.
func localExports(root *sitter.Node, src []byte) (map[string]bool, string) {
	names := make(map[string]bool)
	defaultName := ""
	for _, stmt := range namedChildren(root) {
		if stmt.Type() != "export_statement" || stmt.ChildByFieldName("source") != nil {
			continue
		}
		if clause := firstNamedOfType(stmt, "export_clause"); clause != nil {
			for _, spec := range namedChildren(clause) {
				if spec.Type() != "export_specifier" {
					continue
				}
				if name := exportSpecifierName(spec); name != nil {
					names[nodeText(name, src)] = true
				}
			}
		}
		if v := stmt.ChildByFieldName("value"); v != nil && v.Type() == "identifier" && hasToken(stmt, "default") {
			defaultName = nodeText(v, src)
		}
	}
	return names, defaultName
}

func exportSpecifierName(spec *sitter.Node) *sitter.Node {
	if n := spec.ChildByFieldName("name"); n != nil {
		return n
	}
	return firstNamedOfType(spec, "identifier")
}

// modifierStart skips the decorators a statement opens with.
func modifierStart(stmt *sitter.Node) int {
	for _, c := range children(stmt) {
		if c.Type() != "decorator" && c.Type() != "comment" {
			return int(c.StartByte())
		}
	}
	return int(stmt.StartByte())
}

// leadingCommentStart walks back over comments that sit on their own lines
// directly above stmt.
func leadingCommentStart(f *SourceFile, stmt *sitter.Node) int {
	start := int(stmt.StartByte())
	prev := stmt.PrevSibling()
	for prev != nil && prev.Type() == "comment" {
		pStart, pEnd := span(prev)
		between := string(f.text[pEnd:start])
		if strings.Count(between, "\n") > 1 || strings.TrimSpace(between) != "" {
			break
		}
		if strings.TrimSpace(string(f.text[f.LineStart(pStart):pStart])) != "" {
			break
		}
		start = pStart
		prev = prev.PrevSibling()
	}
	return start
}
