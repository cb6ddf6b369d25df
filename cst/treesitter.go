package cst

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parser wraps a tree-sitter parser for one injected Language. It is the
// generic replacement for a hand-written recursive-descent parser: lever
// never ships a grammar itself, it is handed one.
type Parser struct {
	language     *tree_sitter.Language
	parser       *tree_sitter.Parser
	mu           sync.Mutex
	treesToClose []*tree_sitter.Tree
}

// NewParser builds a Parser bound to language, the grammar the embedding
// binary supplies for the target language.
func NewParser(language *tree_sitter.Language) *Parser {
	p := &Parser{language: language, parser: tree_sitter.NewParser()}
	p.parser.SetLanguage(language)
	return p
}

// Tree wraps a parsed tree-sitter tree and the source it was parsed from,
// so SyntaxNode.Content can slice into it without threading source through
// every call.
type Tree struct {
	tree   *tree_sitter.Tree
	Source []byte
}

// Parse parses source into a concrete syntax tree. old, if non-nil, is a
// previous tree already adjusted via Tree.Edit for the region that changed;
// tree-sitter reuses whatever subtrees the edit didn't touch instead of
// reparsing from scratch. Safe for concurrent use; tree-sitter parsers are
// not themselves safe to call from multiple goroutines at once, so calls
// are serialized.
func (p *Parser) Parse(source []byte, old *Tree) *Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	var oldTree *tree_sitter.Tree
	if old != nil {
		oldTree = old.tree
	}
	t := p.parser.Parse(source, oldTree)
	p.parser.Reset()
	p.treesToClose = append(p.treesToClose, t)
	return &Tree{tree: t, Source: source}
}

// Root returns the tree's root as a SyntaxNode.
func (t *Tree) Root() SyntaxNode {
	root := t.tree.RootNode()
	return &tsNode{node: root, source: t.Source}
}

// Edit records a byte/point-range edit against the tree in place, so a
// subsequent Parse call passing this tree as its old-tree hint only
// reparses the affected region.
func (t *Tree) Edit(edit InputEdit) {
	t.tree.Edit(&tree_sitter.InputEdit{
		StartByte:  uint(edit.StartByte),
		OldEndByte: uint(edit.OldEndByte),
		NewEndByte: uint(edit.NewEndByte),
		StartPoint: tree_sitter.Point{
			Row:    uint(edit.StartPoint.Row),
			Column: uint(edit.StartPoint.Column),
		},
		OldEndPoint: tree_sitter.Point{
			Row:    uint(edit.OldEndPoint.Row),
			Column: uint(edit.OldEndPoint.Column),
		},
		NewEndPoint: tree_sitter.Point{
			Row:    uint(edit.NewEndPoint.Row),
			Column: uint(edit.NewEndPoint.Column),
		},
	})
}

// Close releases every tree this parser has produced. Call once, at
// shutdown.
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.treesToClose {
		t.Close()
	}
	p.treesToClose = nil
	p.parser.Close()
}

type tsNode struct {
	node   *tree_sitter.Node
	source []byte
}

func (n *tsNode) Kind() string    { return n.node.GrammarName() }
func (n *tsNode) IsNamed() bool   { return n.node.IsNamed() }
func (n *tsNode) IsError() bool   { return n.node.IsError() }
func (n *tsNode) IsMissing() bool { return n.node.IsMissing() }
func (n *tsNode) HasError() bool  { return n.node.HasError() }

func (n *tsNode) StartByte() uint32 { return uint32(n.node.StartByte()) }
func (n *tsNode) EndByte() uint32   { return uint32(n.node.EndByte()) }

func (n *tsNode) StartPoint() Point {
	p := n.node.StartPosition()
	return Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}

func (n *tsNode) EndPoint() Point {
	p := n.node.EndPosition()
	return Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}

func (n *tsNode) Content(source []byte) string { return n.node.Utf8Text(source) }

func (n *tsNode) ChildCount() int { return int(n.node.ChildCount()) }

func (n *tsNode) Child(i int) SyntaxNode {
	c := n.node.Child(uint(i))
	if c == nil {
		return nil
	}
	return &tsNode{node: c, source: n.source}
}

func (n *tsNode) FieldNameForChild(i int) (string, bool) {
	name := n.node.FieldNameForChild(uint(i))
	if name == "" {
		return "", false
	}
	return name, true
}

// String is useful in test failures and debug logs.
func (n *tsNode) String() string {
	return fmt.Sprintf("%s[%d:%d]", n.Kind(), n.StartByte(), n.EndByte())
}
