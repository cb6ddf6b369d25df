package server

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/cst"
	"github.com/carn181/lever/transport"
)

// offsetForPosition converts an LSP position (UTF-16 code units within a
// line) to a byte offset into source. It splits lines on '\n' only (so
// "\r\n" endings work, a lone '\r' does not end a line), counting UTF-16
// code units per rune to match the position encoding every LSP client
// defaults to.
func offsetForPosition(source []byte, pos transport.Position) int {
	offset, _ := bytePosition(source, pos)
	return offset
}

// bytePosition converts pos into both an absolute byte offset into source
// and a tree-sitter point (row plus byte column within that row) - the two
// coordinate systems an InputEdit needs, computed together since they share
// the same line-walk.
func bytePosition(source []byte, pos transport.Position) (int, cst.Point) {
	line, col := 0, uint32(0)

	offset := 0
	lineStart := 0
	for offset < len(source) {
		if uint32(line) == pos.Line {
			break
		}
		if source[offset] == '\n' {
			line++
			lineStart = offset + 1
		}
		offset++
	}
	if uint32(line) < pos.Line {
		return len(source), cst.Point{Row: uint32(line), Column: uint32(len(source) - lineStart)}
	}

	// Walk runes within the target line, counting UTF-16 units, until col
	// reaches pos.Character.
	i := lineStart
	for i < len(source) && source[i] != '\n' && col < pos.Character {
		r, size := utf8.DecodeRune(source[i:])
		if r1, r2 := utf16.EncodeRune(r); r1 == utf8.RuneError && r2 == utf8.RuneError {
			col++ // fits in one UTF-16 code unit
		} else {
			col += 2 // needs a surrogate pair
		}
		i += size
	}
	return i, cst.Point{Row: uint32(line), Column: uint32(i - lineStart)}
}

// applyIncrementalChange applies one TextDocumentContentChangeEvent to
// source, returning the new text. A nil Range means full-document
// replacement.
func applyIncrementalChange(source []byte, change transport.TextDocumentContentChangeEvent) []byte {
	if change.Range == nil {
		return []byte(change.Text)
	}
	start := offsetForPosition(source, change.Range.Start)
	end := offsetForPosition(source, change.Range.End)
	out := make([]byte, 0, len(source)-(end-start)+len(change.Text))
	out = append(out, source[:start]...)
	out = append(out, []byte(change.Text)...)
	out = append(out, source[end:]...)
	return out
}

// inputEditFor computes the tree-sitter edit tuple for one ranged content
// change against the document's previous text: the byte/point range it
// replaced, and the byte/point it ends at after inserting change.Text.
func inputEditFor(oldSource []byte, change transport.TextDocumentContentChangeEvent) cst.InputEdit {
	startOffset, startPoint := bytePosition(oldSource, change.Range.Start)
	oldEndOffset, oldEndPoint := bytePosition(oldSource, change.Range.End)
	newText := []byte(change.Text)
	newEndPoint := advancePoint(startPoint, newText)
	return cst.InputEdit{
		StartByte:   uint32(startOffset),
		OldEndByte:  uint32(oldEndOffset),
		NewEndByte:  uint32(startOffset + len(newText)),
		StartPoint:  startPoint,
		OldEndPoint: oldEndPoint,
		NewEndPoint: newEndPoint,
	}
}

// advancePoint returns the point reached after text is inserted starting at
// start: one row per newline in text, and a byte column measured from
// whichever came last - the final newline in text, or start itself if text
// has none.
func advancePoint(start cst.Point, text []byte) cst.Point {
	row := start.Row
	col := start.Column
	lastNL := -1
	for i, b := range text {
		if b == '\n' {
			row++
			lastNL = i
		}
	}
	if lastNL >= 0 {
		col = uint32(len(text) - lastNL - 1)
	} else {
		col += uint32(len(text))
	}
	return cst.Point{Row: row, Column: col}
}

func toASTPosition(p transport.Position) ast.Position {
	return ast.Position{Line: p.Line, Character: p.Character}
}
