package query

import (
	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/transport"
	"github.com/carn181/lever/workspace"
)

// Rename implements textDocument/rename: resolve the node at pos to its
// defining symbol, then collect a TextEdit for the definition plus every
// usage, grouped by file URI. Refuses (returns ok=false) when the
// definition lives in a file only reachable from uri via a Library import,
// per the workspace graph's rename authorisation guard.
func Rename(g *workspace.Graph, uri string, pos ast.Position, newName string) (transport.WorkspaceEdit, bool) {
	f, ok := g.Get(uri)
	if !ok {
		return transport.WorkspaceEdit{}, false
	}
	f.RLock()
	node := nodeAt(f.AST, pos)
	var symID *ast.SymbolID
	if node != nil {
		symID = node.Linked
	}
	f.RUnlock()
	if symID == nil {
		return transport.WorkspaceEdit{}, false
	}

	ownerURI, sym, ok := resolveSymbol(g, uri, *symID)
	if !ok {
		return transport.WorkspaceEdit{}, false
	}
	if !g.CanRename(uri, ownerURI) {
		return transport.WorkspaceEdit{}, false
	}

	changes := make(map[string][]transport.TextEdit)
	addEdit := func(fileURI string, r ast.Range) {
		changes[fileURI] = append(changes[fileURI], transport.TextEdit{Range: toWireRange(r), NewText: newName})
	}

	addEdit(ownerURI, sym.DefRange)
	for _, u := range sym.Usages {
		usageURI := ownerURI
		if u.File != nil {
			usageURI = *u.File
		}
		addEdit(usageURI, u.Range)
	}

	return transport.WorkspaceEdit{Changes: changes}, true
}
