package langmodel

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Diagnostic codes, numbered like the TypeScript compiler's.
const (
	CodeCannotFindName   = 2304
	CodeCannotFindModule = 2307
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one problem found in a file. Name holds the unresolved
// identifier or module specifier.
type Diagnostic struct {
	Severity     Severity
	Code         int
	Message      string
	Name         string
	Offset       int
	Line, Column int
}

var jsxNameParents = map[string]bool{
	"jsx_opening_element":      true,
	"jsx_closing_element":      true,
	"jsx_self_closing_element": true,
}

// Diagnostics reports unresolved names and unresolvable module specifiers in f.
func (p *Program) Diagnostics(f *SourceFile) []Diagnostic {
	var out []Diagnostic
	for _, d := range p.Imports(f) {
		if p.moduleExists(f, d.Specifier) {
			continue
		}
		out = append(out, p.diagnostic(f, d.SpecStart-1, CodeCannotFindModule, d.Specifier,
			fmt.Sprintf("Cannot find module '%s' or its corresponding type declarations.", d.Specifier)))
	}

	src := f.text
	bound := p.TopLevelNames(f)
	scriptGlobals := p.scriptGlobals(f)
	walk(f.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			return false
		case "export_statement":
			return n.ChildByFieldName("source") == nil
		case "identifier", "type_identifier", "shorthand_property_identifier":
		default:
			return true
		}
		name := nodeText(n, src)
		if bound[name] || p.globals[name] || scriptGlobals[name] {
			return true
		}
		if !isBindingReference(n) || isDeclarationName(n) || isIntrinsicTag(n, name) {
			return true
		}
		if !resolvesToTop(n, name, src) {
			return true
		}
		out = append(out, p.diagnostic(f, int(n.StartByte()), CodeCannotFindName, name,
			fmt.Sprintf("Cannot find name '%s'.", name)))
		return true
	})
	return out
}

func (p *Program) diagnostic(f *SourceFile, offset, code int, name, msg string) Diagnostic {
	line, col := f.Position(offset)
	return Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  msg,
		Name:     name,
		Offset:   offset,
		Line:     line,
		Column:   col,
	}
}

func isDeclarationName(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	return declarationNodes[parent.Type()] && isFieldOf(n, parent, "name")
}

// isIntrinsicTag reports lowercase JSX element names such as div.
func isIntrinsicTag(n *sitter.Node, name string) bool {
	parent := n.Parent()
	if parent == nil || !jsxNameParents[parent.Type()] {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLower(r)
}

// scriptGlobals returns the top-level names of loaded files without any
// import or export, which are visible to every other file.
func (p *Program) scriptGlobals(except *SourceFile) map[string]bool {
	names := make(map[string]bool)
	for _, g := range p.Files() {
		if g == except || isModule(g) {
			continue
		}
		collectModuleBindings(g.Root(), g.text, names)
	}
	return names
}

func isModule(f *SourceFile) bool {
	for _, stmt := range namedChildren(f.Root()) {
		switch stmt.Type() {
		case "import_statement", "export_statement":
			return true
		}
	}
	return false
}
