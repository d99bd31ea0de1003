// Package report formats engine results as markdown, rendered with glamour
// when the output is a terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/extract"
	"tsrefactor/internal/fiximports"
	"tsrefactor/internal/rename"
	"tsrefactor/internal/search"
	"tsrefactor/internal/unused"
)

// Formatter renders paths relative to Root.
type Formatter struct {
	Root string
}

// Relative shows path relative to Root when it lies inside it.
func (f Formatter) Relative(path string) string {
	if f.Root == "" {
		return path
	}
	if rel, err := filepath.Rel(f.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func (f Formatter) entityLine(e *entity.Entity) string {
	vis := "private"
	switch {
	case e.IsDefault:
		vis = "default export"
	case e.IsExported:
		vis = "exported"
	}
	return fmt.Sprintf("- **%s** `%s` (%s) at `%s:%d:%d`", e.Name, e.Kind, vis, f.Relative(e.FilePath), e.Line, e.Column)
}

// Search lists matching entities.
func (f Formatter) Search(res *search.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Entities (%d)\n\n", len(res.Entities))
	if len(res.Entities) == 0 {
		sb.WriteString("No matching entities.\n\n")
	}
	for _, e := range res.Entities {
		sb.WriteString(f.entityLine(e))
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\n_%d files searched in %.1f ms_\n", res.TotalFiles, res.SearchTimeMs())
	return sb.String()
}

// References lists the occurrences of an entity, grouped by file.
func (f Formatter) References(e *entity.Entity, refs []rename.Reference) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## References to %s (%d)\n", e.Name, len(refs))
	file := ""
	for _, r := range refs {
		if r.File != file {
			file = r.File
			fmt.Fprintf(&sb, "\n### `%s`\n\n", f.Relative(file))
		}
		fmt.Fprintf(&sb, "- %d:%d `%s`\n", r.Line, r.Column, r.Text)
	}
	return sb.String()
}

// Rename summarizes a rename.
func (f Formatter) Rename(res *rename.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Renamed %s to %s\n\n", res.OldName, res.NewName)
	fmt.Fprintf(&sb, "%d references updated", res.ReferencesUpdated)
	if len(res.FilesModified) > 0 {
		fmt.Fprintf(&sb, " in %d other files:\n\n", len(res.FilesModified))
		for _, p := range res.FilesModified {
			fmt.Fprintf(&sb, "- `%s`\n", f.Relative(p))
		}
	} else {
		sb.WriteString(".\n")
	}
	return sb.String()
}

// Extract summarizes an extraction.
func (f Formatter) Extract(res *extract.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Moved %s\n\n", res.EntityName)
	fmt.Fprintf(&sb, "From `%s` to `%s`", f.Relative(res.SourcePath), f.Relative(res.TargetPath))
	if res.Created {
		sb.WriteString(" (new file)")
	}
	sb.WriteString(".\n")
	if len(res.ImportsUpdated) > 0 {
		sb.WriteString("\nImports updated:\n\n")
		for _, p := range res.ImportsUpdated {
			fmt.Fprintf(&sb, "- `%s`\n", f.Relative(p))
		}
	}
	return sb.String()
}

// Unused lists unused entities grouped by reason, then the counts.
func (f Formatter) Unused(results []unused.Result) string {
	var sb strings.Builder
	stats := unused.Summarize(results)
	fmt.Fprintf(&sb, "## Unused entities (%d)\n", stats.Total)
	if stats.Total == 0 {
		sb.WriteString("\nNothing unused found.\n")
		return sb.String()
	}

	var reasons []string
	byReason := make(map[string][]*entity.Entity)
	for _, r := range results {
		if _, ok := byReason[r.Reason]; !ok {
			reasons = append(reasons, r.Reason)
		}
		byReason[r.Reason] = append(byReason[r.Reason], r.Entity)
	}
	for _, reason := range reasons {
		fmt.Fprintf(&sb, "\n### %s\n\n", reason)
		for _, e := range byReason[reason] {
			sb.WriteString(f.entityLine(e))
			sb.WriteByte('\n')
		}
	}
	sb.WriteByte('\n')
	sb.WriteString(f.Stats(stats))
	return sb.String()
}

// Stats renders unused counts as a table.
func (f Formatter) Stats(s unused.Stats) string {
	var sb strings.Builder
	sb.WriteString("| | count |\n|---|---|\n")
	fmt.Fprintf(&sb, "| total | %d |\n| exported | %d |\n| private | %d |\n", s.Total, s.Exported, s.Private)
	kinds := make([]entity.Kind, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(&sb, "| %s | %d |\n", k, s.ByKind[k])
	}
	return sb.String()
}

// Imports lists fixable and unfixable import errors.
func (f Formatter) Imports(a *fiximports.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Import problems (%d fixable, %d unfixable)\n", len(a.Fixable), len(a.Unfixable))
	if len(a.Fixable) > 0 {
		sb.WriteString("\n### Fixable\n\n")
		for _, fix := range a.Fixable {
			fmt.Fprintf(&sb, "- `%s:%d:%d` **%s** from ", f.Relative(fix.Error.File), fix.Error.Line, fix.Error.Column, fix.Error.MissingName)
			var from []string
			for _, c := range fix.Candidates {
				from = append(from, "`"+f.Relative(c.FilePath)+"`")
			}
			sb.WriteString(strings.Join(from, " or "))
			sb.WriteByte('\n')
		}
	}
	if len(a.Unfixable) > 0 {
		sb.WriteString("\n### Unfixable\n\n")
		for _, u := range a.Unfixable {
			fmt.Fprintf(&sb, "- `%s:%d:%d` %s\n", f.Relative(u.Error.File), u.Error.Line, u.Error.Column, u.Reason)
		}
	}
	return sb.String()
}

// Fixes summarizes a batch of import fixes.
func (f Formatter) Fixes(res fiximports.BatchResult) string {
	return fmt.Sprintf("## Import fixes\n\n%d fixed, %d failed.\n", res.Fixed, res.Failed)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Write renders md to w: styled on a terminal, verbatim otherwise.
func Write(w io.Writer, md string) error {
	if !IsTerminal(w) {
		_, err := io.WriteString(w, md)
		return err
	}
	width := 100
	if file, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(file.Fd())); err == nil && cols > 20 {
			width = cols - 2
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
