// Package query is the LSP-facing query layer: goto-definition, hover,
// completion, rename, document symbols and semantic tokens, all built on top
// of a workspace graph's Files and symbol tables. Callers must hold at
// least the workspace graph's RLock for the duration of the call - these
// functions take each File's own lock themselves, but rely on the caller
// for the graph-wide map access (Get, Edges).
package query

import (
	"fmt"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/symtab"
	"github.com/carn181/lever/transport"
	"github.com/carn181/lever/workspace"
)

// nodeAt returns the innermost AST node whose range contains p, or nil.
func nodeAt(tree *ast.Tree, p ast.Position) *ast.Node {
	var best *ast.Node
	tree.Walk(tree.Root, func(id ast.NodeID) {
		n := tree.Node(id)
		if n.Range.Contains(p) {
			if best == nil || rangeSize(n.Range) <= rangeSize(best.Range) {
				best = n
			}
		}
	})
	return best
}

func rangeSize(r ast.Range) int {
	lines := int(r.End.Line) - int(r.Start.Line)
	return lines*1_000_000 + int(r.End.Character) - int(r.Start.Character)
}

// resolveSymbol follows a SymbolID to its owning file URI and Symbol,
// crossing a workspace edge when the id names a symbol defined elsewhere.
func resolveSymbol(g *workspace.Graph, homeURI string, id ast.SymbolID) (ownerURI string, sym *symtab.Symbol, ok bool) {
	ownerURI = homeURI
	if id.File != nil {
		ownerURI = *id.File
	}
	f, exists := g.Get(ownerURI)
	if !exists {
		return "", nil, false
	}
	f.RLock()
	defer f.RUnlock()
	sym, ok = f.Symbols.Symbol(ast.SymbolID{Scope: id.Scope, Index: id.Index})
	return ownerURI, sym, ok
}

// Definition implements textDocument/definition: resolve the node at pos to
// its Linked symbol and return that symbol's defining range.
func Definition(g *workspace.Graph, uri string, pos ast.Position) (transport.Location, bool) {
	f, ok := g.Get(uri)
	if !ok {
		return transport.Location{}, false
	}
	f.RLock()
	node := nodeAt(f.AST, pos)
	var symID *ast.SymbolID
	if node != nil {
		symID = node.Linked
	}
	f.RUnlock()
	if symID == nil {
		return transport.Location{}, false
	}

	ownerURI, sym, ok := resolveSymbol(g, uri, *symID)
	if !ok {
		return transport.Location{}, false
	}
	return transport.Location{URI: ownerURI, Range: toWireRange(sym.DefRange)}, true
}

// Hover implements textDocument/hover: "<name>: <type_name>" when the symbol
// has a resolved type, else just "<name>".
func Hover(g *workspace.Graph, uri string, pos ast.Position) (string, ast.Range, bool) {
	f, ok := g.Get(uri)
	if !ok {
		return "", ast.Range{}, false
	}
	f.RLock()
	node := nodeAt(f.AST, pos)
	var symID *ast.SymbolID
	var hoverRange ast.Range
	if node != nil {
		symID = node.Linked
		hoverRange = node.Range
	}
	f.RUnlock()
	if symID == nil {
		return "", ast.Range{}, false
	}

	_, sym, ok := resolveSymbol(g, uri, *symID)
	if !ok {
		return "", ast.Range{}, false
	}

	if sym.TypeSymbol != nil {
		_, typeSym, ok := resolveSymbol(g, uri, *sym.TypeSymbol)
		if ok {
			return fmt.Sprintf("%s: %s", sym.Name, typeSym.Name), hoverRange, true
		}
	}
	return sym.Name, hoverRange, true
}

// Completion implements textDocument/completion. When triggerChar is "."
// (member access), it completes the field scope of the type of whatever
// symbol the node just before pos resolved to. Otherwise it returns every
// symbol visible at pos in the local scope chain, plus every root-scope
// export of every file this one imports, tagged with the exporting file's
// basename so it's clear which import a completion came from.
func Completion(g *workspace.Graph, def *langdef.Definition, uri string, pos ast.Position, triggerChar string) []transport.CompletionItem {
	f, ok := g.Get(uri)
	if !ok {
		return nil
	}

	if triggerChar == "." {
		return memberCompletions(g, def, f, uri, pos)
	}

	var items []transport.CompletionItem
	f.RLock()
	scope := f.Symbols.ScopeAt(pos)
	visible := f.Symbols.VisibleSymbols(scope, pos)
	for _, sym := range visible {
		items = append(items, completionItem(def, sym.Name, sym.Kind))
	}
	f.RUnlock()

	edges := g.Edges(uri)
	for _, e := range edges {
		tf, ok := g.Get(e.To)
		if !ok {
			continue
		}
		base := basename(tf.Path)
		tf.RLock()
		root := tf.Symbols.Scope(tf.Symbols.Root)
		for _, sym := range root.Symbols {
			items = append(items, completionItem(def, base+"."+sym.Name, sym.Kind))
		}
		tf.RUnlock()
	}
	return items
}

func memberCompletions(g *workspace.Graph, def *langdef.Definition, f *workspace.File, uri string, pos ast.Position) []transport.CompletionItem {
	before := ast.Position{Line: pos.Line, Character: pos.Character - 1}
	f.RLock()
	node := nodeAt(f.AST, before)
	var symID *ast.SymbolID
	if node != nil {
		symID = node.Linked
	}
	f.RUnlock()
	if symID == nil {
		return nil
	}
	_, sym, ok := resolveSymbol(g, uri, *symID)
	if !ok || sym.TypeSymbol == nil {
		return nil
	}
	typeOwnerURI, typeSym, ok := resolveSymbol(g, uri, *sym.TypeSymbol)
	if !ok || typeSym.FieldScope == nil {
		return nil
	}
	tf, ok := g.Get(typeOwnerURI)
	if !ok {
		return nil
	}
	tf.RLock()
	defer tf.RUnlock()
	fieldScope := tf.Symbols.Scope(*typeSym.FieldScope)
	var items []transport.CompletionItem
	for _, fs := range fieldScope.Symbols {
		items = append(items, completionItem(def, fs.Name, fs.Kind))
	}
	return items
}

func completionItem(def *langdef.Definition, label, kind string) transport.CompletionItem {
	item := transport.CompletionItem{Label: label, Detail: kind}
	if st, ok := def.SymbolTypeByName(kind); ok {
		item.Kind = transport.CompletionKindFor(st.CompletionType)
	}
	return item
}

func basename(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' && path[i] != '\\' {
		i--
	}
	return path[i+1:]
}

func toWireRange(r ast.Range) transport.Range {
	return transport.Range{
		Start: transport.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   transport.Position{Line: r.End.Line, Character: r.End.Character},
	}
}
