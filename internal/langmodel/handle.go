package langmodel

// DeclKind is the syntactic category of a top-level declaration.
type DeclKind int

const (
	DeclFunction DeclKind = iota + 1
	DeclClass
	DeclVariable
	DeclInterface
	DeclTypeAlias
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunction:
		return "function"
	case DeclClass:
		return "class"
	case DeclVariable:
		return "variable"
	case DeclInterface:
		return "interface"
	case DeclTypeAlias:
		return "type"
	case DeclEnum:
		return "enum"
	}
	return "unknown"
}

// DeclHandle identifies one declaration inside the program's current trees.
// It is only meaningful until its file is edited or the program is saved.
type DeclHandle struct {
	prog       *Program
	file       *SourceFile
	generation uint64
	epoch      uint64
	nameStart  int
	kind       DeclKind
}

// Valid reports whether the handle still points into the live tree set.
func (h DeclHandle) Valid() bool {
	if h.prog == nil || h.file == nil {
		return false
	}
	return h.prog.files[h.file.path] == h.file &&
		h.file.generation == h.generation &&
		h.prog.epoch == h.epoch
}

// File returns the owning file.
func (h DeclHandle) File() *SourceFile { return h.file }

// Kind returns the declaration kind the handle was created for.
func (h DeclHandle) Kind() DeclKind { return h.kind }

func (p *Program) handle(f *SourceFile, kind DeclKind, nameStart int) DeclHandle {
	return DeclHandle{
		prog:       p,
		file:       f,
		generation: f.generation,
		epoch:      p.epoch,
		nameStart:  nameStart,
		kind:       kind,
	}
}
