package langmodel

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces the bytes in [Start, End) with Text.
type Edit struct {
	Start, End int
	Text       string
}

// ApplyEdits applies non-overlapping edits to f and reparses it once.
// Insertions at the same offset keep their given order.
func (p *Program) ApplyEdits(f *SourceFile, edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	var b strings.Builder
	pos := 0
	for _, e := range sorted {
		if e.Start < pos || e.End < e.Start || e.End > len(f.text) {
			return fmt.Errorf("apply edits to %s: edit [%d,%d) overlaps or is out of range", f.path, e.Start, e.End)
		}
		b.Write(f.text[pos:e.Start])
		b.WriteString(e.Text)
		pos = e.End
	}
	b.Write(f.text[pos:])
	return p.setText(f, []byte(b.String()))
}

// LineRange widens [start, end) to whole lines when nothing else shares them,
// so deleting the range leaves no blank residue. One following blank line is
// taken as well when the range is preceded by a blank line or the file start.
func (f *SourceFile) LineRange(start, end int) (int, int) {
	ls := f.LineStart(start)
	if strings.TrimSpace(string(f.text[ls:start])) == "" {
		start = ls
	}
	le := f.LineEnd(end)
	if end > 0 && end <= len(f.text) && f.text[end-1] == '\n' {
		le = end
	}
	if strings.TrimSpace(string(f.text[end:le])) == "" {
		end = le
	}
	if start == ls && end < len(f.text) {
		next := f.LineEnd(end)
		blankAfter := strings.TrimSpace(string(f.text[end:next])) == ""
		blankBefore := start == 0 || strings.TrimSpace(string(f.text[f.LineStart(start-1):start])) == ""
		if blankAfter && blankBefore {
			end = next
		}
	}
	return start, end
}

// RemovalRange returns the bytes to delete to remove decl from its file:
// the whole statement with attached leading comments, or a single declarator
// when the statement declares several variables.
func (p *Program) RemovalRange(d *Declaration) (int, int, error) {
	if d.Kind == DeclVariable && d.DeclaratorCount > 1 {
		return p.DeclaratorRange(d)
	}
	start, end := d.Handle.file.LineRange(d.CommentStart, d.StmtEnd)
	return start, end, nil
}
