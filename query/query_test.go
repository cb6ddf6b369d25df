package query_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/query"
	"github.com/carn181/lever/util"
	"github.com/carn181/lever/workspace"
)

func rng(sl, sc, el, ec uint32) ast.Range {
	return ast.Range{Start: ast.Position{Line: sl, Character: sc}, End: ast.Position{Line: el, Character: ec}}
}

// buildPointTree models `type Point { x }` (lines 0-2), `var y: Point`
// (line 3), `y.x` (line 4) - the same fixture shape symtab's own tests use,
// reused here so the query layer exercises real field-scope resolution.
func buildPointTree() *ast.Tree {
	tree := &ast.Tree{Root: 0}
	tree.Nodes = []ast.Node{
		{ID: 0, RuleName: "Root", Range: rng(0, 0, 5, 0), Parent: ast.NoNode, Children: []ast.NodeID{1, 5, 8}},

		{ID: 1, RuleName: "TypeDef", Range: rng(0, 0, 2, 1), Parent: 0, Children: []ast.NodeID{2, 3}, IntroducesScope: true,
			Role: langdef.SymbolRole{RoleKind: langdef.RoleInit, Init: &langdef.InitRole{Kind: "type", NameChild: "Identifier"}}},
		{ID: 2, RuleName: "Identifier", Range: rng(0, 5, 0, 10), Content: "Point", Parent: 1},
		{ID: 3, RuleName: "Field", Range: rng(1, 2, 1, 3), Parent: 1, Children: []ast.NodeID{4},
			Role: langdef.SymbolRole{RoleKind: langdef.RoleInit, Init: &langdef.InitRole{Kind: "field", NameChild: "Identifier"}}},
		{ID: 4, RuleName: "Identifier", Range: rng(1, 2, 1, 3), Content: "x", Parent: 3},

		{ID: 5, RuleName: "Definition", Range: rng(3, 0, 3, 13), Parent: 0, Children: []ast.NodeID{6, 7},
			Role: langdef.SymbolRole{RoleKind: langdef.RoleInit, Init: &langdef.InitRole{Kind: "variable", NameChild: "Identifier", TypeChild: typeChildName()}}},
		{ID: 6, RuleName: "Identifier", Range: rng(3, 4, 3, 5), Content: "y", Parent: 5},
		{ID: 7, RuleName: "Reference", Range: rng(3, 7, 3, 12), Content: "Point", Parent: 5,
			Role: langdef.SymbolRole{RoleKind: langdef.RoleUsage}},

		{ID: 8, RuleName: "Expression", Range: rng(4, 0, 4, 3), Parent: 0, Children: []ast.NodeID{9, 10}},
		{ID: 9, RuleName: "Reference", Range: rng(4, 0, 4, 1), Content: "y", Parent: 8,
			Role: langdef.SymbolRole{RoleKind: langdef.RoleUsage}},
		{ID: 10, RuleName: "Member", Range: rng(4, 2, 4, 3), Content: "x", Parent: 8,
			Role: langdef.SymbolRole{RoleKind: langdef.RoleMemberUsage}},
	}
	return tree
}

func typeChildName() *string {
	s := "Reference"
	return &s
}

func TestHoverShowsSymbolType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.lvr")
	os.WriteFile(path, []byte(""), 0644)
	uri := util.Path2URI(path)

	g := workspace.NewGraph(nil, nil, workspace.NewResolver(workspace.EnvAndStaticSearchDirs{}))
	g.AddFileWithAST(uri, path, nil, buildPointTree())

	g.RLock()
	text, _, ok := query.Hover(g, uri, ast.Position{Line: 3, Character: 4})
	g.RUnlock()
	if !ok {
		t.Fatal("hover not found")
	}
	if text != "y: Point" {
		t.Errorf("got %q, want %q", text, "y: Point")
	}
}

func TestDefinitionResolvesMemberUsage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.lvr")
	os.WriteFile(path, []byte(""), 0644)
	uri := util.Path2URI(path)

	g := workspace.NewGraph(nil, nil, workspace.NewResolver(workspace.EnvAndStaticSearchDirs{}))
	g.AddFileWithAST(uri, path, nil, buildPointTree())

	g.RLock()
	loc, ok := query.Definition(g, uri, ast.Position{Line: 4, Character: 2})
	g.RUnlock()
	if !ok {
		t.Fatal("definition not found")
	}
	want := rng(1, 2, 1, 3)
	if loc.Range.Start.Line != want.Start.Line || loc.Range.Start.Character != want.Start.Character {
		t.Errorf("got range %+v, want field x's def range %+v", loc.Range, want)
	}
}

func TestRenameCollectsDefinitionAndUsages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.lvr")
	os.WriteFile(path, []byte(""), 0644)
	uri := util.Path2URI(path)

	g := workspace.NewGraph(nil, nil, workspace.NewResolver(workspace.EnvAndStaticSearchDirs{}))
	g.AddFileWithAST(uri, path, nil, buildPointTree())

	g.RLock()
	edit, ok := query.Rename(g, uri, ast.Position{Line: 3, Character: 4}, "z")
	g.RUnlock()
	if !ok {
		t.Fatal("rename not found")
	}
	edits, ok := edit.Changes[uri]
	if !ok {
		t.Fatal("no edits for file")
	}
	if len(edits) != 2 {
		t.Fatalf("got %d edits, want 2 (definition + one usage)", len(edits))
	}
}
