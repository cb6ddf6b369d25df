package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/util"
	"github.com/carn181/lever/workspace"
)

func rng(sl, sc, el, ec uint32) ast.Range {
	return ast.Range{Start: ast.Position{Line: sl, Character: sc}, End: ast.Position{Line: el, Character: ec}}
}

func exporterTree() *ast.Tree {
	tree := &ast.Tree{Root: 0}
	tree.Nodes = []ast.Node{
		{ID: 0, RuleName: "Root", Range: rng(0, 0, 5, 0), Parent: ast.NoNode, Children: []ast.NodeID{1}},
		{ID: 1, RuleName: "Definition", Range: rng(0, 0, 0, 5), Parent: 0, Children: []ast.NodeID{2},
			Role: langdef.SymbolRole{RoleKind: langdef.RoleInit, Init: &langdef.InitRole{Kind: "function", NameChild: "Identifier"}}},
		{ID: 2, RuleName: "Identifier", Range: rng(0, 0, 0, 3), Content: "foo", Parent: 1},
	}
	return tree
}

func importerTree() *ast.Tree {
	tree := &ast.Tree{Root: 0}
	tree.Nodes = []ast.Node{
		{ID: 0, RuleName: "Root", Range: rng(0, 0, 5, 0), Parent: ast.NoNode, Children: []ast.NodeID{1, 2}},
		{ID: 1, RuleName: "Import", Range: rng(0, 0, 0, 7), Content: `"b.lvr"`, ImportKind: langdef.ImportLocal, Parent: 0},
		{ID: 2, RuleName: "Reference", Range: rng(1, 0, 1, 3), Content: "foo", Parent: 0,
			Role: langdef.SymbolRole{RoleKind: langdef.RoleUsage}},
	}
	return tree
}

func TestAddFileLinksImportedSymbols(t *testing.T) {
	dir := t.TempDir()
	bPath := filepath.Join(dir, "b.lvr")
	aPath := filepath.Join(dir, "a.lvr")
	if err := os.WriteFile(bPath, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(aPath, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	bURI := util.Path2URI(bPath)
	aURI := util.Path2URI(aPath)

	resolver := workspace.NewResolver(workspace.EnvAndStaticSearchDirs{})
	g := workspace.NewGraph(nil, nil, resolver)

	g.AddFileWithAST(bURI, bPath, nil, exporterTree())
	aFile := g.AddFileWithAST(aURI, aPath, nil, importerTree())

	g.RLock()
	edges := g.Edges(aURI)
	g.RUnlock()
	if len(edges) != 1 || edges[0].To != bURI || edges[0].Kind != langdef.ImportLocal {
		t.Fatalf("edges = %+v", edges)
	}

	refNode := aFile.AST.Node(2)
	if refNode.Linked == nil {
		t.Fatal("reference not linked across files")
	}
	if refNode.Linked.File == nil || *refNode.Linked.File != bURI {
		t.Fatalf("linked symbol file = %+v", refNode.Linked)
	}

	if !g.CanRename(aURI, bURI) {
		t.Error("CanRename should allow Local-imported file")
	}

	aFile.RLock()
	unresolved := aFile.Symbols.Unresolved
	aFile.RUnlock()
	if len(unresolved) != 0 {
		t.Fatalf("unresolved = %+v, want empty once the reference links", unresolved)
	}
}

func TestImportNotFoundBuffersDiagnostic(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.lvr")
	aURI := util.Path2URI(aPath)
	if err := os.WriteFile(aPath, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	resolver := workspace.NewResolver(workspace.EnvAndStaticSearchDirs{})
	g := workspace.NewGraph(nil, nil, resolver)
	g.AddFileWithAST(aURI, aPath, nil, importerTree())

	g.RLock()
	diags := g.DiagnosticsQuick(aURI)
	g.RUnlock()
	if len(diags) != 1 || diags[0].Message != "File could not be found." {
		t.Fatalf("diagnostics = %+v", diags)
	}
}

type fixedDirs []string

func (f fixedDirs) SearchDirs() []string { return f }

func TestRenameAuthorisationDeniesLibraryEdge(t *testing.T) {
	dir := t.TempDir()
	bPath := filepath.Join(dir, "b.lvr")
	aPath := filepath.Join(dir, "a.lvr")
	os.WriteFile(bPath, []byte(""), 0644)
	os.WriteFile(aPath, []byte(""), 0644)
	bURI := util.Path2URI(bPath)
	aURI := util.Path2URI(aPath)

	resolver := workspace.NewResolver(fixedDirs{dir})
	g := workspace.NewGraph(nil, nil, resolver)
	g.AddFileWithAST(bURI, bPath, nil, exporterTree())

	importer := importerTree()
	importer.Nodes[1].ImportKind = langdef.ImportLibrary
	g.AddFileWithAST(aURI, aPath, nil, importer)

	if g.CanRename(aURI, bURI) {
		t.Error("CanRename should deny Library-imported file")
	}
}
