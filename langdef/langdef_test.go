package langdef_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carn181/lever/langdef"
)

const sampleDef = `
language:
  name: MiniLang
  file_extensions: [".ml"]
  library_paths:
    env_variables: ["MINILANG_PATH"]
    linux: ["/usr/local/lib/minilang"]
    macos: ["/usr/local/lib/minilang"]
    windows: ["C:\\minilang\\lib"]
symbol_types:
  - name: variable
    completion_type: Variable
    highlight_type: Variable
  - name: function
    completion_type: Function
semantic_token_types: [variable, function]
ast_rules:
  - node_name: Root
    children:
      - query: {kind: definition}
        target: {rule: Definition}
    symbol_role: none
    import_kind: none
  - node_name: Definition
    children:
      - query: {field: name}
        target: {direct: Identifier}
    symbol_role:
      init:
        kind: variable
        name_child: Identifier
    import_kind: none
keywords: [let, fn]
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lang.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidDefinition(t *testing.T) {
	path := writeTemp(t, sampleDef)
	def, err := langdef.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if def.Language.Name != "MiniLang" {
		t.Errorf("Name = %q", def.Language.Name)
	}
	root := def.RootRule()
	if root == nil || root.NodeName != "Root" {
		t.Fatalf("RootRule = %v", root)
	}
	defRule, ok := def.Rule("Definition")
	if !ok {
		t.Fatal("Definition rule not found")
	}
	if defRule.SymbolRole.RoleKind != langdef.RoleInit {
		t.Fatalf("SymbolRole = %v", defRule.SymbolRole.RoleKind)
	}
	if defRule.SymbolRole.Init.Kind != "variable" {
		t.Errorf("Init.Kind = %q", defRule.SymbolRole.Init.Kind)
	}
	if defRule.Children[0].Query.QueryKind != langdef.QueryField {
		t.Errorf("Query kind = %v", defRule.Children[0].Query.QueryKind)
	}
	if defRule.Children[0].Target.TargetKind != langdef.TargetDirect {
		t.Errorf("Target kind = %v", defRule.Children[0].Target.TargetKind)
	}
	if got := def.Legend(); len(got) != 2 || got[0] != "variable" {
		t.Errorf("Legend = %v", got)
	}
	if !def.IsSourceFile("foo.ml") {
		t.Error("IsSourceFile(foo.ml) = false")
	}
}

func TestLoadMissingRootFails(t *testing.T) {
	path := writeTemp(t, `
language:
  name: MiniLang
ast_rules:
  - node_name: NotRoot
    symbol_role: none
    import_kind: none
`)
	if _, err := langdef.Load(path); err == nil {
		t.Fatal("expected error for missing Root rule")
	}
}

func TestPathQuery(t *testing.T) {
	path := writeTemp(t, `
language:
  name: MiniLang
ast_rules:
  - node_name: Root
    symbol_role: none
    import_kind: none
    children:
      - query:
          path:
            - {kind: block}
            - {field: body}
        target: {rule: Root}
`)
	def, err := langdef.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	root := def.RootRule()
	q := root.Children[0].Query
	if q.QueryKind != langdef.QueryPath || len(q.Path) != 2 {
		t.Fatalf("Query = %+v", q)
	}
	if q.Path[0].QueryKind != langdef.QueryKind || q.Path[1].QueryKind != langdef.QueryField {
		t.Fatalf("Path steps = %+v", q.Path)
	}
}
