package langmodel

import (
	"strings"
)

// ImportStyle is the quoting and terminator convention of a file's imports.
type ImportStyle struct {
	Quote     byte
	Semicolon bool
}

// DefaultImportStyle is used for files without imports.
var DefaultImportStyle = ImportStyle{Quote: '\'', Semicolon: true}

// DetectImportStyle follows the first import or re-export of f.
func (p *Program) DetectImportStyle(f *SourceFile) ImportStyle {
	imports := p.Imports(f)
	if len(imports) == 0 {
		return DefaultImportStyle
	}
	d := imports[0]
	q := d.Quote
	if q != '"' && q != '\'' {
		q = DefaultImportStyle.Quote
	}
	return ImportStyle{Quote: q, Semicolon: d.Semicolon}
}

// RenderImport builds an import (or, with export set, a re-export) line
// without a trailing newline.
func RenderImport(style ImportStyle, specifier, defaultName string, named []string, export bool) string {
	var b strings.Builder
	if export {
		b.WriteString("export ")
	} else {
		b.WriteString("import ")
	}
	if defaultName != "" {
		b.WriteString(defaultName)
		if len(named) > 0 {
			b.WriteString(", ")
		}
	}
	if len(named) > 0 {
		b.WriteString("{ ")
		b.WriteString(strings.Join(named, ", "))
		b.WriteString(" }")
	}
	b.WriteString(" from ")
	b.WriteByte(style.Quote)
	b.WriteString(specifier)
	b.WriteByte(style.Quote)
	if style.Semicolon {
		b.WriteByte(';')
	}
	return b.String()
}

// InsertImportEdit inserts line after the last import statement of f, or at
// the top of the file when it has none.
func (p *Program) InsertImportEdit(f *SourceFile, line string) Edit {
	var last *ImportDecl
	for _, d := range p.Imports(f) {
		if !d.IsExport {
			last = d
		}
	}
	if last == nil {
		text := line + "\n"
		if len(f.text) > 0 && f.text[0] != '\n' {
			text += "\n"
		}
		return Edit{Start: 0, End: 0, Text: text}
	}
	at := f.LineEnd(last.End)
	if at == len(f.text) && (len(f.text) == 0 || f.text[len(f.text)-1] != '\n') {
		return Edit{Start: at, End: at, Text: "\n" + line}
	}
	return Edit{Start: at, End: at, Text: line + "\n"}
}

// AddNamedEdit adds name to the braces of an existing import. It fails for
// namespace and side-effect-only imports.
func AddNamedEdit(d *ImportDecl, name string) (Edit, bool) {
	switch {
	case len(d.Named) > 0:
		at := d.Named[len(d.Named)-1].End
		return Edit{Start: at, End: at, Text: ", " + name}, true
	case d.NamedStart >= 0:
		return Edit{Start: d.NamedStart, End: d.NamedEnd, Text: "{ " + name + " }"}, true
	case d.Default != "" && d.Namespace == "":
		return Edit{Start: d.DefaultEnd, End: d.DefaultEnd, Text: ", { " + name + " }"}, true
	}
	return Edit{}, false
}

// RemoveNamedEdit removes one named entry from an import. When it is the
// last binding the whole statement goes.
func RemoveNamedEdit(f *SourceFile, d *ImportDecl, name string) (Edit, bool) {
	idx := d.NamedIndex(name)
	if idx < 0 {
		return Edit{}, false
	}
	if len(d.Named) == 1 {
		if d.Default != "" {
			return Edit{Start: d.DefaultEnd, End: d.NamedEnd}, true
		}
		start, end := f.LineRange(d.Start, d.End)
		return Edit{Start: start, End: end}, true
	}
	if idx < len(d.Named)-1 {
		return Edit{Start: d.Named[idx].Start, End: d.Named[idx+1].Start}, true
	}
	return Edit{Start: d.Named[idx-1].End, End: d.Named[idx].End}, true
}

// SetSpecifierEdit rewrites the module specifier of an import in place.
func SetSpecifierEdit(d *ImportDecl, specifier string) Edit {
	return Edit{Start: d.SpecStart, End: d.SpecEnd, Text: specifier}
}

// RemoveDefaultEdit removes the default binding of an import that also has
// named or namespace bindings.
func RemoveDefaultEdit(f *SourceFile, d *ImportDecl) (Edit, bool) {
	if d.Default == "" {
		return Edit{}, false
	}
	switch {
	case d.NamedStart >= 0:
		return Edit{Start: d.DefaultStart, End: d.NamedStart}, true
	case d.Namespace != "":
		if star := strings.IndexByte(string(f.text[d.DefaultEnd:d.End]), '*'); star >= 0 {
			return Edit{Start: d.DefaultStart, End: d.DefaultEnd + star}, true
		}
	}
	return Edit{}, false
}
