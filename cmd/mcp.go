package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"tsrefactor/internal/entity"
	"tsrefactor/internal/extract"
	"tsrefactor/internal/fiximports"
	"tsrefactor/internal/index"
	"tsrefactor/internal/rename"
	"tsrefactor/internal/search"
	"tsrefactor/internal/unused"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the refactoring tools over stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	flagNoInput = true
	idx, err := openProject()
	if err != nil {
		return err
	}
	logger.WithField("files", idx.Stats().FilesLoaded).Info("mcp server ready")

	t := &toolset{idx: idx}
	s := mcpserver.NewMCPServer("tsrefactor", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(searchEntitiesTool(), t.handle(t.search))
	s.AddTool(previewRenameTool(), t.handle(t.previewRename))
	s.AddTool(renameEntityTool(), t.handle(t.rename))
	s.AddTool(extractEntityTool(), t.handle(t.extract))
	s.AddTool(findUnusedTool(), t.handle(t.findUnused))
	s.AddTool(analyzeImportsTool(), t.handle(t.analyzeImports))
	s.AddTool(fixImportsTool(), t.handle(t.fixImports))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

var writeAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(false),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(false),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func selectorOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact entity name"),
		),
		mcp.WithString("file",
			mcp.Description("Substring of the declaring file's path, to pick among same-named entities"),
		),
		mcp.WithNumber("line",
			mcp.Description("Line of the declaration, to pick among same-named entities"),
		),
	}
}

func searchEntitiesTool() mcp.Tool {
	return mcp.NewTool("search_entities",
		mcp.WithDescription("Find top-level functions, classes, variables, interfaces, type aliases and enums by name, kind, export state or file."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("name",
			mcp.Description("Case-insensitive name substring, or a regular expression when regex is true"),
		),
		mcp.WithBoolean("regex",
			mcp.Description("Treat name as a regular expression"),
		),
		mcp.WithString("kind",
			mcp.Description("function, class, variable, interface, type or enum"),
		),
		mcp.WithString("visibility",
			mcp.Description("exported or private"),
		),
		mcp.WithString("file",
			mcp.Description("Substring of the file path"),
		),
	)
}

func previewRenameTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("List every reference a rename of the entity would rewrite, declaration first."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	}, selectorOptions()...)
	return mcp.NewTool("preview_rename", opts...)
}

func renameEntityTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Rename an entity and every reference to it across the project, then save."),
		mcp.WithToolAnnotation(writeAnnotation),
		mcp.WithString("new_name",
			mcp.Required(),
			mcp.Description("New identifier"),
		),
	}, selectorOptions()...)
	return mcp.NewTool("rename_entity", opts...)
}

func extractEntityTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Move an entity to another file with the imports it needs, and point every importer at the new file."),
		mcp.WithToolAnnotation(writeAnnotation),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Destination .ts/.tsx file, relative to the project root"),
		),
	}, selectorOptions()...)
	return mcp.NewTool("extract_entity", opts...)
}

func findUnusedTool() mcp.Tool {
	return mcp.NewTool("find_unused",
		mcp.WithDescription("Report entities nothing references. Entities in index/main files count as used."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("scope",
			mcp.Description("all (default), exports or private"),
		),
	)
}

func analyzeImportsTool() mcp.Tool {
	return mcp.NewTool("analyze_imports",
		mcp.WithDescription("List unresolved names and modules, with the project entities that could satisfy each name."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

func fixImportsTool() mcp.Tool {
	return mcp.NewTool("fix_imports",
		mcp.WithDescription("Add imports for unresolved names that have exactly one exported match, then save."),
		mcp.WithToolAnnotation(writeAnnotation),
		mcp.WithString("file",
			mcp.Description("Only fix files whose path contains this"),
		),
	)
}

// --- Handlers ---

// toolset serializes tool calls; the index is not safe for concurrent use.
type toolset struct {
	mu  sync.Mutex
	idx *index.Index
}

type toolFunc func(req mcp.CallToolRequest) (string, error)

func (t *toolset) handle(fn toolFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		text, err := fn(req)
		if err != nil {
			logger.WithError(err).WithField("tool", req.Params.Name).Debug("tool failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func (t *toolset) entity(req mcp.CallToolRequest) (*entity.Entity, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	sel := entitySelector{file: req.GetString("file", ""), line: req.GetInt("line", 0)}
	return sel.resolve(t.idx, name)
}

func (t *toolset) search(req mcp.CallToolRequest) (string, error) {
	opts := search.Options{
		Name:  req.GetString("name", ""),
		Regex: req.GetBool("regex", false),
		File:  req.GetString("file", ""),
	}
	if kind := req.GetString("kind", ""); kind != "" {
		k, err := entity.ParseKind(kind)
		if err != nil {
			return "", err
		}
		opts.Kind = k
	}
	switch req.GetString("visibility", "") {
	case "exported":
		opts.Exported = search.Bool(true)
	case "private":
		opts.Exported = search.Bool(false)
	}
	res, err := search.Search(t.idx, opts)
	if err != nil {
		return "", err
	}
	return formatter(t.idx).Search(res), nil
}

func (t *toolset) previewRename(req mcp.CallToolRequest) (string, error) {
	e, err := t.entity(req)
	if err != nil {
		return "", err
	}
	refs, err := rename.Preview(t.idx, e)
	if err != nil {
		return "", err
	}
	return formatter(t.idx).References(e, refs), nil
}

func (t *toolset) rename(req mcp.CallToolRequest) (string, error) {
	newName := req.GetString("new_name", "")
	if newName == "" {
		return "", fmt.Errorf("new_name is required")
	}
	e, err := t.entity(req)
	if err != nil {
		return "", err
	}
	res, err := rename.Rename(t.idx, e, newName)
	if err != nil {
		return "", err
	}
	return formatter(t.idx).Rename(res), nil
}

func (t *toolset) extract(req mcp.CallToolRequest) (string, error) {
	target := req.GetString("target", "")
	if target == "" {
		return "", fmt.Errorf("target is required")
	}
	e, err := t.entity(req)
	if err != nil {
		return "", err
	}
	res, err := extract.Extract(t.idx, e, target)
	if err != nil {
		return "", err
	}
	return formatter(t.idx).Extract(res), nil
}

func (t *toolset) findUnused(req mcp.CallToolRequest) (string, error) {
	opts := settings.UnusedOptions()
	var results []unused.Result
	var err error
	switch scope := req.GetString("scope", "all"); scope {
	case "", "all":
		results, err = unused.FindUnused(t.idx, opts)
	case "exports":
		results, err = unused.FindUnusedExports(t.idx, opts)
	case "private":
		results, err = unused.FindUnusedPrivate(t.idx, opts)
	default:
		return "", fmt.Errorf("unknown scope %q", scope)
	}
	if err != nil {
		return "", err
	}
	return formatter(t.idx).Unused(results), nil
}

func (t *toolset) analyzeImports(req mcp.CallToolRequest) (string, error) {
	a, err := fiximports.Analyze(t.idx)
	if err != nil {
		return "", err
	}
	return formatter(t.idx).Imports(a), nil
}

func (t *toolset) fixImports(req mcp.CallToolRequest) (string, error) {
	a, err := fiximports.Analyze(t.idx)
	if err != nil {
		return "", err
	}
	file := req.GetString("file", "")
	var fixes []*fiximports.FixableImport
	var ambiguous []*fiximports.FixableImport
	for _, fix := range a.Fixable {
		if file != "" && !strings.Contains(fix.Error.File, file) {
			continue
		}
		if len(fix.Candidates) > 1 {
			ambiguous = append(ambiguous, fix)
			continue
		}
		fixes = append(fixes, fix)
	}
	res, err := fiximports.FixMultiple(t.idx, fixes, fiximports.Options{Quote: settings.QuoteByte()})
	if err != nil {
		return "", err
	}
	f := formatter(t.idx)
	md := f.Fixes(res)
	if len(ambiguous) > 0 {
		md += "\nSkipped names with several candidates:\n\n" +
			f.Imports(&fiximports.Analysis{Fixable: ambiguous})
	}
	return md, nil
}
