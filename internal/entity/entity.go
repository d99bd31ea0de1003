// Package entity defines the record for a named top-level declaration and
// derives it from parsed files.
package entity

import (
	"fmt"
	"strings"

	"tsrefactor/internal/langmodel"
)

// Kind is the closed set of declaration kinds tracked as entities.
type Kind int

const (
	KindFunction Kind = iota + 1
	KindClass
	KindVariable
	KindInterface
	KindType
	KindEnum
)

// Kinds lists every kind in extraction group order.
func Kinds() []Kind {
	return []Kind{KindFunction, KindClass, KindVariable, KindInterface, KindType, KindEnum}
}

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindVariable:
		return "variable"
	case KindInterface:
		return "interface"
	case KindType:
		return "type"
	case KindEnum:
		return "enum"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "function", "func", "fn":
		return KindFunction, nil
	case "class":
		return KindClass, nil
	case "variable", "var", "const", "let":
		return KindVariable, nil
	case "interface":
		return KindInterface, nil
	case "type", "typealias", "type-alias", "alias":
		return KindType, nil
	case "enum":
		return KindEnum, nil
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

func kindOf(k langmodel.DeclKind) (Kind, bool) {
	switch k {
	case langmodel.DeclFunction:
		return KindFunction, true
	case langmodel.DeclClass:
		return KindClass, true
	case langmodel.DeclVariable:
		return KindVariable, true
	case langmodel.DeclInterface:
		return KindInterface, true
	case langmodel.DeclTypeAlias:
		return KindType, true
	case langmodel.DeclEnum:
		return KindEnum, true
	}
	return 0, false
}

// Entity is a named top-level declaration. Decl and File are only usable
// until the owning file is edited or the project is saved.
type Entity struct {
	Name       string
	Kind       Kind
	FilePath   string
	Line       int
	Column     int
	IsExported bool
	IsDefault  bool

	Decl langmodel.DeclHandle
	File *langmodel.SourceFile
}

// Valid reports whether the entity's handle still points into the live trees.
func (e *Entity) Valid() bool {
	return e != nil && e.Decl.Valid()
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s %s (%s:%d)", e.Kind, e.Name, e.FilePath, e.Line)
}

// Extract lists the entities of f: functions, classes, variables,
// interfaces, type aliases and enums, source order within each group.
func Extract(prog *langmodel.Program, f *langmodel.SourceFile) ([]*Entity, error) {
	decls, err := prog.Declarations(f)
	if err != nil {
		return nil, fmt.Errorf("extract entities from %s: %w", f.Path(), err)
	}
	var out []*Entity
	for _, d := range decls.All() {
		kind, ok := kindOf(d.Kind)
		if !ok || d.Name == "" {
			continue
		}
		line, col := f.Position(d.NameStart)
		out = append(out, &Entity{
			Name:       d.Name,
			Kind:       kind,
			FilePath:   f.Path(),
			Line:       line,
			Column:     col,
			IsExported: d.Exported,
			IsDefault:  d.Default,
			Decl:       d.Handle,
			File:       f,
		})
	}
	return out, nil
}
