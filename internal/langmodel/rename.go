package langmodel

import (
	"fmt"
	"regexp"

	"tsrefactor/internal/errs"
)

var identifierPattern = regexp.MustCompile(`^[\p{L}\p{Nl}$_][\p{L}\p{Nl}\p{Mn}\p{Mc}\p{Nd}\p{Pc}$_\x{200C}\x{200D}]*$`)

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "implements": true, "interface": true, "let": true,
	"package": true, "private": true, "protected": true, "public": true,
	"static": true, "yield": true, "await": true,
}

// predefinedTypes cannot name a class, interface, type alias or enum.
var predefinedTypes = map[string]bool{
	"any": true, "bigint": true, "boolean": true, "never": true, "number": true,
	"object": true, "string": true, "symbol": true, "undefined": true,
	"unknown": true,
}

// ValidIdentifier reports whether name can be used as a binding name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name) && !reservedWords[name]
}

func validFor(kind DeclKind, name string) bool {
	if !ValidIdentifier(name) {
		return false
	}
	switch kind {
	case DeclClass, DeclInterface, DeclTypeAlias, DeclEnum:
		return !predefinedTypes[name]
	}
	return true
}

// Rename rewrites the declaration behind h and every reference to it. Only
// tokens spelled like the old name change, so aliased imports keep their
// local alias. It returns the files whose text changed.
func (p *Program) Rename(h DeclHandle, newName string) ([]*SourceFile, error) {
	decl, err := p.Declaration(h)
	if err != nil {
		return nil, errs.New(errs.ErrStaleEntity, "rename", "", err)
	}
	if !validFor(decl.Kind, newName) {
		return nil, errs.New(errs.ErrInvalidIdentifier, "rename", newName, nil)
	}
	refs, err := p.FindReferences(h)
	if err != nil {
		return nil, err
	}
	oldName := decl.Name
	if oldName == newName {
		return nil, nil
	}

	perFile := make(map[*SourceFile][]Edit)
	var files []*SourceFile
	for _, ref := range refs {
		if ref.Text() != oldName {
			continue
		}
		text := newName
		if ref.Shorthand {
			text = oldName + ": " + newName
		}
		if _, ok := perFile[ref.File]; !ok {
			files = append(files, ref.File)
		}
		perFile[ref.File] = append(perFile[ref.File], Edit{Start: ref.Offset, End: ref.End, Text: text})
	}
	for _, f := range files {
		if err := p.ApplyEdits(f, perFile[f]); err != nil {
			return nil, fmt.Errorf("rename %s in %s: %w", oldName, f.path, err)
		}
	}
	return files, nil
}
