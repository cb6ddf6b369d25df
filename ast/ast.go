// Package ast holds the rule-driven abstract syntax tree: an arena of
// Nodes built by walking a concrete syntax tree according to a language
// definition's rules, rather than by switching on the grammar directly.
// The arena is a plain slice indexed by NodeID, the idiomatic Go stand-in
// for the indextree-style arena the reference implementation uses.
package ast

import "github.com/carn181/lever/langdef"

// NodeID indexes into a Tree's Nodes slice. NoNode marks "no parent" /
// "no node" (e.g. the root's Parent).
type NodeID int

const NoNode NodeID = -1

// Position is a zero-indexed line/character location in a document's
// source text. AST ranges take Character straight from the concrete
// parser's point column, a byte offset within the line (see cst.Point).
// LSP request positions are copied into this type unchanged, with no
// conversion between UTF-16 code units and bytes, so the two agree only on
// lines where every character before the position is a single byte.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open span [Start, End): a position exactly at End is
// outside the range.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether p falls within r under the half-open convention
// above: the start position counts as inside, the end position doesn't.
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || (p.Line == r.Start.Line && p.Character < r.Start.Character) {
		return false
	}
	if p.Line > r.End.Line || (p.Line == r.End.Line && p.Character >= r.End.Character) {
		return false
	}
	return true
}

// Before reports whether p comes strictly before other - used for the
// forward-only visibility rule completion relies on
// (symtab.Table.VisibleSymbols).
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// SymbolID names a symbol in some file's symbol table: a scope and an
// index within that scope's symbol list. File is nil for a symbol in the
// file currently being processed, and set to the defining file's URI when
// the id crosses a workspace edge. Symbols are never referenced by pointer
// across files - only by this identifier triple, resolved at query time -
// so a symbol table can be rebuilt and an outstanding SymbolID simply fails
// to resolve instead of dangling.
type SymbolID struct {
	File  *string
	Scope int
	Index int
}

// SameFile reports whether id names a symbol in the file currently being
// processed (no cross-file indirection).
func (id SymbolID) SameFile() bool { return id.File == nil }

// Node is one entry in the AST arena. RuleName is the rule's node_name for
// a Rule-target node, or the child's direct target name for a Direct-target
// leaf. An Error node (IsError) is injected wherever the concrete syntax
// tree carried a tree-sitter ERROR or MISSING node that no rule consumed.
type Node struct {
	ID           NodeID
	RuleName     string
	Range        Range
	Content      string
	Role         langdef.SymbolRole
	ImportKind   langdef.ImportKind
	IntroducesScope bool
	Highlight    *string
	IsError      bool
	ErrorMessage string
	Parent       NodeID
	Children     []NodeID

	// Linked is filled in by the symbol table builder: for an Init node's
	// name child it is the symbol that node defines; for a Usage/MemberUsage
	// node it is the symbol it resolved to (possibly in another file, set by
	// the workspace graph's import linking).
	Linked *SymbolID
}

// Tree is the arena-allocated AST for one file.
type Tree struct {
	Nodes []Node
	Root  NodeID
}

func newTree() *Tree {
	return &Tree{Root: NoNode}
}

func (t *Tree) alloc(n Node) NodeID {
	n.ID = NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, n)
	return n.ID
}

// Node returns a pointer into the arena slice for in-place mutation (e.g.
// setting Linked).
func (t *Tree) Node(id NodeID) *Node {
	if id == NoNode {
		return nil
	}
	return &t.Nodes[id]
}

// Walk visits id and every descendant in pre-order.
func (t *Tree) Walk(id NodeID, visit func(NodeID)) {
	if id == NoNode {
		return
	}
	visit(id)
	for _, c := range t.Nodes[id].Children {
		t.Walk(c, visit)
	}
}

// ErrorNodes returns every Error node in the tree, in pre-order - the basis
// for syntax-error diagnostics.
func (t *Tree) ErrorNodes() []NodeID {
	var out []NodeID
	t.Walk(t.Root, func(id NodeID) {
		if t.Nodes[id].IsError {
			out = append(out, id)
		}
	})
	return out
}
