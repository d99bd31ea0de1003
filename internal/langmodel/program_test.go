package langmodel_test

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsrefactor/internal/errs"
	"tsrefactor/internal/langmodel"
	"tsrefactor/internal/langmodel/languages"
)

func newProgram(t *testing.T, files map[string]string) (*langmodel.Program, string) {
	t.Helper()
	dir := t.TempDir()
	p := langmodel.NewProgram(languages.Default(), langmodel.Options{})
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, err := p.AddFile(filepath.Join(dir, name), []byte(files[name]))
		require.NoError(t, err)
	}
	return p, dir
}

func declNamed(t *testing.T, p *langmodel.Program, f *langmodel.SourceFile, name string) *langmodel.Declaration {
	t.Helper()
	decls, err := p.Declarations(f)
	require.NoError(t, err)
	for _, d := range decls.All() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("declaration %s not found in %s", name, f.Path())
	return nil
}

func TestDeclarations(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"mod.ts": `export function greet(name: string) { return name; }
function helper() {}
export default class Service {}
const a = 1, b = 2;
export let c = 3;
interface Shape {}
export type ID = string;
enum Color { Red }
export { helper };
`,
	})
	decls, err := p.Declarations(p.File(filepath.Join(dir, "mod.ts")))
	require.NoError(t, err)

	require.Len(t, decls.Functions, 2)
	assert.Equal(t, "greet", decls.Functions[0].Name)
	assert.True(t, decls.Functions[0].Exported)
	assert.Equal(t, "helper", decls.Functions[1].Name)
	assert.True(t, decls.Functions[1].Exported)

	require.Len(t, decls.Classes, 1)
	assert.True(t, decls.Classes[0].Default)

	require.Len(t, decls.Variables, 3)
	assert.Equal(t, "a", decls.Variables[0].Name)
	assert.Equal(t, "const", decls.Variables[0].VarKeyword)
	assert.Equal(t, 2, decls.Variables[0].DeclaratorCount)
	assert.Equal(t, 1, decls.Variables[1].DeclaratorIndex)
	assert.False(t, decls.Variables[1].Exported)
	assert.Equal(t, "let", decls.Variables[2].VarKeyword)
	assert.True(t, decls.Variables[2].Exported)

	require.Len(t, decls.Interfaces, 1)
	assert.False(t, decls.Interfaces[0].Exported)
	require.Len(t, decls.TypeAliases, 1)
	assert.Equal(t, langmodel.DeclTypeAlias, decls.TypeAliases[0].Kind)
	require.Len(t, decls.Enums, 1)
	assert.Equal(t, "Color", decls.Enums[0].Name)
}

func TestImports(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"x.ts": `import Def, { a, b as c } from "./y"
import * as ns from './z';
export { d } from './w';
export * from './v';
`,
	})
	imports := p.Imports(p.File(filepath.Join(dir, "x.ts")))
	require.Len(t, imports, 4)

	first := imports[0]
	assert.Equal(t, "./y", first.Specifier)
	assert.Equal(t, byte('"'), first.Quote)
	assert.False(t, first.Semicolon)
	assert.Equal(t, "Def", first.Default)
	require.Len(t, first.Named, 2)
	assert.Equal(t, "c", first.Named[1].Local())

	assert.Equal(t, "ns", imports[1].Namespace)
	assert.True(t, imports[1].Semicolon)
	assert.True(t, imports[2].IsExport)
	assert.Equal(t, "d", imports[2].Named[0].Name)
	assert.True(t, imports[3].ExportAll)
}

func TestFindReferencesFollowsImports(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"a.ts": "export function greet() { return \"hi\"; }\nexport const x = greet();\n",
		"b.ts": "import { greet as hello } from './a';\nhello();\n",
		"c.ts": "import * as A from './a';\nA.greet();\n",
		"d.ts": "export { greet } from './a';\n",
		"e.ts": "import { greet } from './d';\nfunction f(greet: number) { return greet; }\ngreet();\n",
	})
	a := p.File(filepath.Join(dir, "a.ts"))
	decl := declNamed(t, p, a, "greet")

	refs, err := p.FindReferences(decl.Handle)
	require.NoError(t, err)

	perFile := map[string]int{}
	for _, r := range refs {
		perFile[filepath.Base(r.File.Path())]++
	}
	assert.Equal(t, map[string]int{"a.ts": 2, "b.ts": 2, "c.ts": 1, "d.ts": 1, "e.ts": 2}, perFile)
	assert.Equal(t, langmodel.RefDeclaration, refs[0].Kind)
	assert.Equal(t, a, refs[0].File)
	assert.Equal(t, 1, refs[0].Line)
	assert.Equal(t, 17, refs[0].Column)
}

func TestFindReferencesOfDecoratedExports(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"app.ts": "import { UserService } from './svc';\nimport Repo from './svc';\nnew UserService(new Repo());\n",
		"svc.ts": "function Injectable() { return (c: any) => c; }\n" +
			"@Injectable()\nexport class UserService {}\n" +
			"@Injectable()\nexport default class Repo {}\n" +
			"@Injectable()\nclass Hidden {}\n",
	})
	svc := p.File(filepath.Join(dir, "svc.ts"))

	decl := declNamed(t, p, svc, "UserService")
	assert.True(t, decl.ExportKeyword)
	assert.Equal(t, "export class", svc.Text()[decl.ModifierStart:decl.ModifierStart+12])
	refs, err := p.FindReferences(decl.Handle)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "app.ts", filepath.Base(refs[1].File.Path()))

	repo := declNamed(t, p, svc, "Repo")
	assert.True(t, repo.DefaultKeyword)
	refs, err = p.FindReferences(repo.Handle)
	require.NoError(t, err)
	assert.Len(t, refs, 3)

	hidden := declNamed(t, p, svc, "Hidden")
	assert.False(t, hidden.Exported)
	assert.Equal(t, "class Hidden", svc.Text()[hidden.ModifierStart:hidden.ModifierStart+12])
}

func TestRenameRewritesShorthandAndImports(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"a.ts": "export const user = 1;\nexport const obj = { user };\n",
		"b.ts": "import { user } from './a';\nconsole.log(user);\n",
	})
	a := p.File(filepath.Join(dir, "a.ts"))
	decl := declNamed(t, p, a, "user")

	changed, err := p.Rename(decl.Handle, "account")
	require.NoError(t, err)
	assert.Len(t, changed, 2)
	assert.Equal(t, "export const account = 1;\nexport const obj = { user: account };\n", a.Text())
	assert.Equal(t, "import { account } from './a';\nconsole.log(account);\n", p.File(filepath.Join(dir, "b.ts")).Text())
	assert.False(t, decl.Handle.Valid())
}

func TestRenameAssignmentPatternKeepsShadowedLocals(t *testing.T) {
	src := "let count = 0;\n" +
		"export function load(o: any) { ({ count } = o); }\n" +
		"export function local(o: any) { const { count } = o; return count; }\n"
	p, dir := newProgram(t, map[string]string{"a.ts": src})
	a := p.File(filepath.Join(dir, "a.ts"))
	decl := declNamed(t, p, a, "count")

	_, err := p.Rename(decl.Handle, "total")
	require.NoError(t, err)
	assert.Equal(t, "let total = 0;\n"+
		"export function load(o: any) { ({ count: total } = o); }\n"+
		"export function local(o: any) { const { count } = o; return count; }\n", a.Text())
}

func TestRenameRejectsInvalidIdentifier(t *testing.T) {
	p, dir := newProgram(t, map[string]string{"a.ts": "export function run() {}\n"})
	a := p.File(filepath.Join(dir, "a.ts"))
	decl := declNamed(t, p, a, "run")

	for _, name := range []string{"class", "1abc", "with space", ""} {
		_, err := p.Rename(decl.Handle, name)
		assert.True(t, errors.Is(err, errs.ErrInvalidIdentifier), name)
	}
	assert.Equal(t, "export function run() {}\n", a.Text())
	assert.True(t, langmodel.ValidIdentifier("$run_2"))
}

func TestDiagnostics(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"a.ts": "export function greet() {}\n",
		"b.ts": `import { x } from './missing';
console.log(greet(), x);
function local<T>(v: T): T { try { return v; } catch (err) { return err as T; } }
const fs = require('fs');
`,
	})
	diags := p.Diagnostics(p.File(filepath.Join(dir, "b.ts")))
	require.Len(t, diags, 2)

	assert.Equal(t, langmodel.CodeCannotFindModule, diags[0].Code)
	assert.Equal(t, "./missing", diags[0].Name)
	assert.Equal(t, "Cannot find module './missing' or its corresponding type declarations.", diags[0].Message)

	assert.Equal(t, langmodel.CodeCannotFindName, diags[1].Code)
	assert.Equal(t, "greet", diags[1].Name)
	assert.Equal(t, "Cannot find name 'greet'.", diags[1].Message)
	assert.Equal(t, 2, diags[1].Line)
	assert.Equal(t, 13, diags[1].Column)
}

func TestDiagnosticsIgnoreIndexSignaturesAndEnumMembers(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"bag.ts": `export interface Bag {
  [key: string]: number;
}

export class Table {
  [row: number]: string;
}

export enum E { A = 1, B = A + 1 }
`,
	})
	assert.Empty(t, p.Diagnostics(p.File(filepath.Join(dir, "bag.ts"))))
}

func TestHandlesInvalidatedByEditAndSave(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"a.ts": "export const one = 1;\n",
		"b.ts": "export const two = 2;\n",
	})
	a := p.File(filepath.Join(dir, "a.ts"))
	b := p.File(filepath.Join(dir, "b.ts"))
	one := declNamed(t, p, a, "one")
	two := declNamed(t, p, b, "two")

	require.NoError(t, p.ApplyEdits(a, []langmodel.Edit{{Start: 0, End: 0, Text: "// header\n"}}))
	assert.False(t, one.Handle.Valid())
	assert.True(t, two.Handle.Valid())

	written, err := p.Save()
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.False(t, two.Handle.Valid())

	data, err := os.ReadFile(filepath.Join(dir, "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, "// header\nexport const one = 1;\n", string(data))
}

func TestApplyEditsRejectsOverlap(t *testing.T) {
	p, dir := newProgram(t, map[string]string{"a.ts": "const a = 1;\n"})
	a := p.File(filepath.Join(dir, "a.ts"))
	err := p.ApplyEdits(a, []langmodel.Edit{{Start: 0, End: 5}, {Start: 3, End: 7}})
	assert.Error(t, err)
	assert.Equal(t, "const a = 1;\n", a.Text())
}

func TestImportEdits(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"a.ts": "import { a, b } from './x';\nimport D, { c } from './y';\n\nuse(a, b, c, D);\n",
	})
	f := p.File(filepath.Join(dir, "a.ts"))
	imports := p.Imports(f)
	require.Len(t, imports, 2)

	rm, ok := langmodel.RemoveNamedEdit(f, imports[0], "a")
	require.True(t, ok)
	rmLast, ok := langmodel.RemoveNamedEdit(f, imports[1], "c")
	require.True(t, ok)
	add, ok := langmodel.AddNamedEdit(imports[0], "z")
	require.True(t, ok)
	style := p.DetectImportStyle(f)
	ins := p.InsertImportEdit(f, langmodel.RenderImport(style, "./n", "", []string{"n"}, false))

	require.NoError(t, p.ApplyEdits(f, []langmodel.Edit{rm, add, rmLast, ins}))
	assert.Equal(t, "import { b, z } from './x';\nimport D from './y';\nimport { n } from './n';\n\nuse(a, b, c, D);\n", f.Text())
}

func TestModuleSpecifierResolution(t *testing.T) {
	p, dir := newProgram(t, map[string]string{
		"src/util/index.ts": "export const u = 1;\n",
		"src/main.ts":       "import { u } from './util';\nimport { v } from './v.js';\n",
		"src/v.ts":          "export const v = 2;\n",
	})
	main := p.File(filepath.Join(dir, "src/main.ts"))
	assert.Equal(t, p.File(filepath.Join(dir, "src/util/index.ts")), p.Resolve(main, "./util"))
	assert.Equal(t, p.File(filepath.Join(dir, "src/v.ts")), p.Resolve(main, "./v.js"))
	assert.Nil(t, p.Resolve(main, "./nope"))
	assert.Empty(t, p.Diagnostics(main))
}
