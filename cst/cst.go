// Package cst is the thin boundary between lever's rule-driven AST
// translator and whatever concrete-syntax-tree library actually parsed the
// source. The translator only ever sees the SyntaxNode interface; the
// concrete grammar (a tree-sitter Language binding for one target language)
// is supplied by the embedding binary and is genuinely outside lever's
// scope.
package cst

// Point is a zero-indexed row/column position in a source file, matching
// tree-sitter's point convention. Column is a byte offset from the start of
// the line, not a rune or UTF-16 code-unit count.
type Point struct {
	Row    uint32
	Column uint32
}

// InputEdit describes one text edit in tree-sitter's byte/point-range form,
// produced before re-parsing so the parser can reuse unaffected subtrees of
// the previous tree instead of reparsing from scratch.
type InputEdit struct {
	StartByte  uint32
	OldEndByte uint32
	NewEndByte uint32

	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// SyntaxNode is the minimal view of a concrete syntax tree node the rule
// translator needs: its grammar kind, whether it is named / an error node,
// its byte and point ranges, and indexed access to its children together
// with their field names (if any). Implemented by the tree-sitter adapter
// in this package; a different concrete parser need only implement this
// interface to plug into the translator.
type SyntaxNode interface {
	Kind() string
	IsNamed() bool
	IsError() bool
	IsMissing() bool
	HasError() bool
	StartByte() uint32
	EndByte() uint32
	StartPoint() Point
	EndPoint() Point
	Content(source []byte) string
	ChildCount() int
	Child(i int) SyntaxNode
	FieldNameForChild(i int) (string, bool)
}
