package langmodel

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// SourceFile is one parsed file held in memory by a Program. Its tree is
// replaced on every text change, so nodes must not be kept across edits.
type SourceFile struct {
	path       string
	lang       string
	spec       *LanguageSpec
	text       []byte
	tree       *sitter.Tree
	generation uint64
	dirty      bool
	lineStarts []int
}

// Path returns the absolute path of the file.
func (f *SourceFile) Path() string { return f.path }

// Language returns the registered language name.
func (f *SourceFile) Language() string { return f.lang }

// Text returns the current in-memory text.
func (f *SourceFile) Text() string { return string(f.text) }

// Bytes returns the current in-memory text. Callers must not modify it.
func (f *SourceFile) Bytes() []byte { return f.text }

// Generation increases every time the text changes.
func (f *SourceFile) Generation() uint64 { return f.generation }

// Dirty reports whether the file has unsaved modifications.
func (f *SourceFile) Dirty() bool { return f.dirty }

// Root returns the root node of the current tree.
func (f *SourceFile) Root() *sitter.Node { return f.tree.RootNode() }

// HasSyntaxErrors reports whether the parser recovered from errors.
func (f *SourceFile) HasSyntaxErrors() bool { return f.Root().HasError() }

// Position converts a byte offset into a 1-based line and column. Columns
// count characters, not bytes.
func (f *SourceFile) Position(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.text) {
		offset = len(f.text)
	}
	idx := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > offset }) - 1
	if idx < 0 {
		idx = 0
	}
	start := f.lineStarts[idx]
	return idx + 1, utf8.RuneCount(f.text[start:offset]) + 1
}

// LineText returns the text of a 1-based line without its line terminator.
func (f *SourceFile) LineText(line int) string {
	if line < 1 || line > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[line-1]
	end := len(f.text)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	return string(bytes.TrimRight(f.text[start:end], "\r"))
}

// LineStart returns the byte offset of the start of the line containing offset.
func (f *SourceFile) LineStart(offset int) int {
	line, _ := f.Position(offset)
	return f.lineStarts[line-1]
}

// LineEnd returns the offset just past the line terminator of the line
// containing offset, or the end of the text on the last line.
func (f *SourceFile) LineEnd(offset int) int {
	line, _ := f.Position(offset)
	if line < len(f.lineStarts) {
		return f.lineStarts[line]
	}
	return len(f.text)
}

func (f *SourceFile) setText(text []byte) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(f.spec.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, text)
	if err != nil {
		return fmt.Errorf("parse %s: %w", f.path, err)
	}
	if f.tree != nil {
		f.tree.Close()
	}
	f.tree = tree
	f.text = text
	f.generation++
	f.lineStarts = computeLineStarts(text)
	return nil
}

func computeLineStarts(text []byte) []int {
	starts := []int{0}
	for i, b := range text {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
