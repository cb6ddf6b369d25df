package ast_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/cst"
	"github.com/carn181/lever/langdef"
)

// fakeNode is a hand-built cst.SyntaxNode, used so the translator can be
// tested without a real tree-sitter grammar.
type fakeNode struct {
	kind      string
	named     bool
	isError   bool
	isMissing bool
	// hasError simulates a nested ERROR/MISSING descendant without the node
	// itself being an ERROR node, matching tree-sitter's HasError semantics
	// (true for the node or any descendant). Defaults to isError when unset
	// by a test, since a node that is itself an error always HasError too.
	hasError  bool
	start     cst.Point
	end       cst.Point
	startByte uint32
	endByte   uint32
	content   string
	children  []*fakeNode
	fields    map[int]string
}

func (n *fakeNode) Kind() string    { return n.kind }
func (n *fakeNode) IsNamed() bool   { return n.named }
func (n *fakeNode) IsError() bool   { return n.isError }
func (n *fakeNode) IsMissing() bool { return n.isMissing }
func (n *fakeNode) HasError() bool  { return n.isError || n.hasError }
func (n *fakeNode) StartByte() uint32   { return n.startByte }
func (n *fakeNode) EndByte() uint32     { return n.endByte }
func (n *fakeNode) StartPoint() cst.Point { return n.start }
func (n *fakeNode) EndPoint() cst.Point   { return n.end }
func (n *fakeNode) Content(source []byte) string { return n.content }
func (n *fakeNode) ChildCount() int { return len(n.children) }
func (n *fakeNode) Child(i int) cst.SyntaxNode {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}
func (n *fakeNode) FieldNameForChild(i int) (string, bool) {
	name, ok := n.fields[i]
	return name, ok
}

func definitionDef() *langdef.Definition {
	path := writeLangdefFixture()
	def, err := langdef.Load(path)
	if err != nil {
		panic(err)
	}
	return def
}

func TestTranslateBasic(t *testing.T) {
	def := definitionDef()
	tr := ast.NewTranslator(def)

	ident := &fakeNode{kind: "identifier", named: true, content: "x", endByte: 1}
	definition := &fakeNode{
		kind:     "definition",
		named:    true,
		children: []*fakeNode{ident},
		fields:   map[int]string{0: "name"},
		endByte:  1,
	}
	program := &fakeNode{
		kind:     "program",
		named:    true,
		children: []*fakeNode{definition},
		endByte:  1,
	}

	tree := tr.Translate(program, []byte("x"))
	if tree.Root == ast.NoNode {
		t.Fatal("no root produced")
	}
	root := tree.Node(tree.Root)
	if root.RuleName != "Root" {
		t.Fatalf("root rule = %q", root.RuleName)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d", len(root.Children))
	}
	defNode := tree.Node(root.Children[0])
	if defNode.RuleName != "Definition" {
		t.Fatalf("child rule = %q", defNode.RuleName)
	}
	if defNode.Role.RoleKind != langdef.RoleInit {
		t.Fatalf("role = %v", defNode.Role.RoleKind)
	}
	if len(defNode.Children) != 1 {
		t.Fatalf("definition children = %d", len(defNode.Children))
	}
	nameNode := tree.Node(defNode.Children[0])
	if nameNode.RuleName != "Identifier" || nameNode.Content != "x" {
		t.Fatalf("name node = %+v", nameNode)
	}
}

func TestTranslateErrorNode(t *testing.T) {
	def := definitionDef()
	tr := ast.NewTranslator(def)

	bad := &fakeNode{kind: "ERROR", named: false, isError: true, content: "???"}
	program := &fakeNode{kind: "program", named: true, children: []*fakeNode{bad}}

	tree := tr.Translate(program, []byte("???"))
	errs := tree.ErrorNodes()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error node, got %d", len(errs))
	}
}

func TestTranslateDirectWithNestedErrorSurfacesDiagnostic(t *testing.T) {
	def := definitionDef()
	tr := ast.NewTranslator(def)

	// ident itself isn't an ERROR node (tree-sitter still calls it an
	// identifier token), but it has a nested ERROR/MISSING descendant - an
	// unterminated literal is the usual real-world cause.
	ident := &fakeNode{kind: "identifier", named: true, content: "x", endByte: 1, hasError: true}
	definition := &fakeNode{
		kind:     "definition",
		named:    true,
		children: []*fakeNode{ident},
		fields:   map[int]string{0: "name"},
		endByte:  1,
	}
	program := &fakeNode{
		kind:     "program",
		named:    true,
		children: []*fakeNode{definition},
		endByte:  1,
	}

	tree := tr.Translate(program, []byte("x"))
	defNode := tree.Node(tree.Node(tree.Root).Children[0])

	// The Error node precedes the Identifier leaf among definition's
	// children since addDirect is only reached after the error is injected.
	if len(defNode.Children) != 2 {
		t.Fatalf("definition children = %d, want 2 (error + identifier)", len(defNode.Children))
	}
	errNode := tree.Node(defNode.Children[0])
	if !errNode.IsError {
		t.Fatalf("first child = %+v, want an Error node", errNode)
	}
	nameNode := tree.Node(defNode.Children[1])
	if nameNode.RuleName != "Identifier" || nameNode.Content != "x" {
		t.Fatalf("name node = %+v", nameNode)
	}
}

const fixtureYAML = `
language:
  name: MiniLang
  file_extensions: [".ml"]
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
`

func writeLangdefFixture() string {
	dir, err := os.MkdirTemp("", "lever-langdef-*")
	if err != nil {
		panic(err)
	}
	path := filepath.Join(dir, "lang.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0644); err != nil {
		panic(err)
	}
	return path
}
