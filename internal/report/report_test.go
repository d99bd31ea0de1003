package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/extract"
	"tsrefactor/internal/fiximports"
	"tsrefactor/internal/rename"
	"tsrefactor/internal/search"
	"tsrefactor/internal/unused"
)

var f = Formatter{Root: "/proj"}

func sample() []*entity.Entity {
	return []*entity.Entity{
		{Name: "UserService", Kind: entity.KindClass, FilePath: "/proj/src/user.ts", Line: 3, Column: 14, IsExported: true},
		{Name: "helper", Kind: entity.KindFunction, FilePath: "/proj/src/util.ts", Line: 1, Column: 10},
	}
}

func TestSearch(t *testing.T) {
	md := f.Search(&search.Result{Entities: sample(), TotalFiles: 2, Duration: 1500 * time.Microsecond})
	assert.Contains(t, md, "## Entities (2)")
	assert.Contains(t, md, "- **UserService** `class` (exported) at `src/user.ts:3:14`")
	assert.Contains(t, md, "- **helper** `function` (private) at `src/util.ts:1:10`")
	assert.Contains(t, md, "_2 files searched in 1.5 ms_")
}

func TestReferencesGroupByFile(t *testing.T) {
	e := sample()[1]
	md := f.References(e, []rename.Reference{
		{File: "/proj/src/util.ts", Line: 1, Column: 10, Text: "function helper() {}"},
		{File: "/proj/src/app.ts", Line: 4, Column: 1, Text: "helper();"},
		{File: "/proj/src/app.ts", Line: 5, Column: 1, Text: "helper();"},
	})
	assert.Contains(t, md, "## References to helper (3)")
	assert.Equal(t, 1, bytes.Count([]byte(md), []byte("### `src/app.ts`")))
	assert.Contains(t, md, "- 5:1 `helper();`")
}

func TestRenameAndExtract(t *testing.T) {
	md := f.Rename(&rename.Result{OldName: "a", NewName: "b", ReferencesUpdated: 3, FilesModified: []string{"/proj/x.ts"}})
	assert.Contains(t, md, "3 references updated in 1 other files:")
	assert.Contains(t, md, "- `x.ts`")

	md = f.Extract(&extract.Result{EntityName: "a", SourcePath: "/proj/a.ts", TargetPath: "/proj/lib/a.ts", Created: true})
	assert.Contains(t, md, "From `a.ts` to `lib/a.ts` (new file).")
}

func TestUnused(t *testing.T) {
	es := sample()
	md := f.Unused([]unused.Result{
		{Entity: es[0], Reason: unused.ReasonUnusedExport},
		{Entity: es[1], Reason: unused.ReasonUnusedPrivate},
	})
	assert.Contains(t, md, "## Unused entities (2)")
	assert.Contains(t, md, "### "+unused.ReasonUnusedExport)
	assert.Contains(t, md, "| exported | 1 |")
	assert.Contains(t, md, "| class | 1 |")

	assert.Contains(t, f.Unused(nil), "Nothing unused found.")
}

func TestImports(t *testing.T) {
	es := sample()
	md := f.Imports(&fiximports.Analysis{
		Fixable: []*fiximports.FixableImport{{
			Error:      fiximports.ImportError{File: "/proj/src/app.ts", Line: 2, Column: 5, MissingName: "UserService"},
			Candidates: es[:1],
		}},
		Unfixable: []fiximports.UnfixableImport{{
			Error:  fiximports.ImportError{File: "/proj/src/app.ts", Line: 1, Column: 19},
			Reason: "no exported entity named nope found",
		}},
	})
	assert.Contains(t, md, "1 fixable, 1 unfixable")
	assert.Contains(t, md, "- `src/app.ts:2:5` **UserService** from `src/user.ts`")
	assert.Contains(t, md, "- `src/app.ts:1:19` no exported entity named nope found")
}

func TestWriteToBufferIsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "## Title\n"))
	assert.Equal(t, "## Title\n", buf.String())
	assert.False(t, IsTerminal(&buf))
}
