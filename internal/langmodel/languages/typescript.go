package languages

import (
	"tsrefactor/internal/langmodel"

	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// RegisterTypeScript registers the TypeScript and TSX grammars. Declaration
// files share the TypeScript grammar.
func RegisterTypeScript(r *langmodel.Registry) {
	r.Register("typescript", &langmodel.LanguageSpec{
		Language:   typescript.GetLanguage(),
		Extensions: []string{"ts", "mts", "cts", "d.ts"},
	})
	r.Register("tsx", &langmodel.LanguageSpec{
		Language:   tsx.GetLanguage(),
		Extensions: []string{"tsx"},
		JSX:        true,
	})
}

// Default returns a registry with every supported grammar registered.
func Default() *langmodel.Registry {
	r := langmodel.NewRegistry()
	RegisterTypeScript(r)
	return r
}
