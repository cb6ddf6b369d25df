package symtab_test

import (
	"testing"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/symtab"
)

func pos(line, ch uint32) ast.Position { return ast.Position{Line: line, Character: ch} }

func rng(startLine, startCh, endLine, endCh uint32) ast.Range {
	return ast.Range{Start: pos(startLine, startCh), End: pos(endLine, endCh)}
}

func initRole(kind, nameChild string, typeChild *string) langdef.SymbolRole {
	return langdef.SymbolRole{RoleKind: langdef.RoleInit, Init: &langdef.InitRole{Kind: kind, NameChild: nameChild, TypeChild: typeChild}}
}

func usageRole() langdef.SymbolRole { return langdef.SymbolRole{RoleKind: langdef.RoleUsage} }
func memberRole() langdef.SymbolRole { return langdef.SymbolRole{RoleKind: langdef.RoleMemberUsage} }

// TestBuildBasicDefinitionAndUsage covers Pass 1 (scope + Init) and Pass 2
// (local usage resolution).
func TestBuildBasicDefinitionAndUsage(t *testing.T) {
	tree := &ast.Tree{Root: 0}
	tree.Nodes = []ast.Node{
		{ID: 0, RuleName: "Root", Range: rng(0, 0, 10, 0), Parent: ast.NoNode, Children: []ast.NodeID{1, 2}},
		{ID: 1, RuleName: "Definition", Range: rng(0, 0, 0, 5), Role: initRole("variable", "Identifier", nil), Parent: 0, Children: []ast.NodeID{3}},
		{ID: 2, RuleName: "Reference", Range: rng(1, 0, 1, 1), Role: usageRole(), Content: "x", Parent: 0},
		{ID: 3, RuleName: "Identifier", Range: rng(0, 0, 0, 1), Content: "x", Parent: 1},
	}

	table := symtab.Build(tree)
	if table.Root == symtab.NoScope {
		t.Fatal("no root scope")
	}
	if len(table.Scopes[table.Root].Symbols) != 1 {
		t.Fatalf("expected 1 symbol in root scope, got %d", len(table.Scopes[table.Root].Symbols))
	}
	sym := table.Scopes[table.Root].Symbols[0]
	if sym.Name != "x" || sym.Kind != "variable" {
		t.Fatalf("symbol = %+v", sym)
	}
	if tree.Nodes[3].Linked == nil {
		t.Fatal("name child not linked")
	}
	if tree.Nodes[2].Linked == nil {
		t.Fatal("usage not linked")
	}
	if len(table.Scopes[table.Root].Symbols[0].Usages) != 1 {
		t.Fatalf("expected 1 usage, got %d", len(sym.Usages))
	}
	if len(table.Unresolved) != 0 {
		t.Fatalf("expected no unresolved, got %v", table.Unresolved)
	}
}

func TestBuildUnresolvedUsage(t *testing.T) {
	tree := &ast.Tree{Root: 0}
	tree.Nodes = []ast.Node{
		{ID: 0, RuleName: "Root", Range: rng(0, 0, 10, 0), Parent: ast.NoNode, Children: []ast.NodeID{1}},
		{ID: 1, RuleName: "Reference", Range: rng(0, 0, 0, 3), Role: usageRole(), Content: "nope", Parent: 0},
	}
	table := symtab.Build(tree)
	if len(table.Unresolved) != 1 || table.Unresolved[0].Name != "nope" {
		t.Fatalf("unresolved = %v", table.Unresolved)
	}
}

// TestBuildMemberUsageThroughFieldScope covers Pass 1's field_scope wiring,
// Pass 3's type propagation, and Pass 4's member resolution end to end.
func TestBuildMemberUsageThroughFieldScope(t *testing.T) {
	typeChild := "VarType"
	tree := &ast.Tree{Root: 0}
	tree.Nodes = []ast.Node{
		{ID: 0, RuleName: "Root", Range: rng(0, 0, 20, 0), Parent: ast.NoNode, Children: []ast.NodeID{1, 5, 8}},

		// type Point { x }
		{ID: 1, RuleName: "TypeDef", Range: rng(0, 0, 3, 0), Role: initRole("type", "TypeName", nil), IntroducesScope: true, Parent: 0, Children: []ast.NodeID{2, 3}},
		{ID: 2, RuleName: "TypeName", Range: rng(0, 5, 0, 10), Content: "Point", Parent: 1},
		{ID: 3, RuleName: "FieldDef", Range: rng(1, 0, 1, 5), Role: initRole("field", "FieldName", nil), Parent: 1, Children: []ast.NodeID{4}},
		{ID: 4, RuleName: "FieldName", Range: rng(1, 0, 1, 1), Content: "x", Parent: 3},

		// var y: Point
		{ID: 5, RuleName: "VarDef", Range: rng(4, 0, 4, 12), Role: initRole("variable", "VarName", &typeChild), Parent: 0, Children: []ast.NodeID{6, 7}},
		{ID: 6, RuleName: "VarName", Range: rng(4, 4, 4, 5), Content: "y", Parent: 5},
		{ID: 7, RuleName: "VarType", Range: rng(4, 7, 4, 12), Role: usageRole(), Content: "Point", Parent: 5},

		// y.x
		{ID: 8, RuleName: "Access", Range: rng(6, 0, 6, 3), Parent: 0, Children: []ast.NodeID{9, 10}},
		{ID: 9, RuleName: "Reference", Range: rng(6, 0, 6, 1), Role: usageRole(), Content: "y", Parent: 8},
		{ID: 10, RuleName: "Member", Range: rng(6, 2, 6, 3), Role: memberRole(), Content: "x", Parent: 8},
	}

	table := symtab.Build(tree)

	if len(table.Unresolved) != 0 {
		t.Fatalf("expected no unresolved, got %v", table.Unresolved)
	}

	pointSym := table.Scopes[table.Root].Symbols[0]
	if pointSym.Name != "Point" || pointSym.FieldScope == nil {
		t.Fatalf("Point symbol = %+v", pointSym)
	}
	fieldScope := table.Scopes[*pointSym.FieldScope]
	if len(fieldScope.Symbols) != 1 || fieldScope.Symbols[0].Name != "x" {
		t.Fatalf("field scope symbols = %+v", fieldScope.Symbols)
	}

	ySym := table.Scopes[table.Root].Symbols[1]
	if ySym.Name != "y" || ySym.TypeSymbol == nil {
		t.Fatalf("y symbol = %+v", ySym)
	}
	if ySym.TypeSymbol.Scope != int(table.Root) || ySym.TypeSymbol.Index != 0 {
		t.Fatalf("y's type_symbol = %+v", ySym.TypeSymbol)
	}

	if tree.Nodes[10].Linked == nil {
		t.Fatal("member usage not linked")
	}
	linked := *tree.Nodes[10].Linked
	if linked.Scope != int(*pointSym.FieldScope) {
		t.Fatalf("member linked to wrong scope: %+v", linked)
	}
	resolvedField := table.Scopes[linked.Scope].Symbols[linked.Index]
	if resolvedField.Name != "x" || len(resolvedField.Usages) != 1 {
		t.Fatalf("field symbol after link = %+v", resolvedField)
	}
}
