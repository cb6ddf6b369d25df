package query

import (
	"sort"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/symtab"
	"github.com/carn181/lever/transport"
	"github.com/carn181/lever/workspace"
)

// SemanticTokens implements textDocument/semanticTokens/full: collect every
// AST node carrying a Highlight, sort by position, and delta-encode against
// the legend a definition's semantic_token_types declares.
func SemanticTokens(def *langdef.Definition, f *workspace.File) transport.SemanticTokens {
	legend := def.Legend()
	index := make(map[string]int, len(legend))
	for i, name := range legend {
		index[name] = i
	}

	type hit struct {
		r    ast.Range
		kind int
	}
	var hits []hit

	f.RLock()
	f.AST.Walk(f.AST.Root, func(id ast.NodeID) {
		n := f.AST.Node(id)
		if n.Highlight == nil {
			return
		}
		kind, ok := index[*n.Highlight]
		if !ok {
			return
		}
		hits = append(hits, hit{r: n.Range, kind: kind})
	})
	f.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].r.Start.Line != hits[j].r.Start.Line {
			return hits[i].r.Start.Line < hits[j].r.Start.Line
		}
		return hits[i].r.Start.Character < hits[j].r.Start.Character
	})

	var data []uint32
	var prevLine, prevChar uint32
	for _, h := range hits {
		deltaLine := h.r.Start.Line - prevLine
		deltaChar := h.r.Start.Character
		if deltaLine == 0 {
			deltaChar = h.r.Start.Character - prevChar
		}
		length := h.r.End.Character - h.r.Start.Character
		if h.r.End.Line != h.r.Start.Line {
			length = 0 // multi-line highlight spans aren't supported by the single-line token encoding
		}
		data = append(data, deltaLine, deltaChar, length, uint32(h.kind), 0)
		prevLine = h.r.Start.Line
		prevChar = h.r.Start.Character
	}
	return transport.SemanticTokens{Data: data}
}

// DocumentSymbols implements textDocument/documentSymbol: one entry per
// symbol in the file's root scope, with the symbols of each one's field
// scope nested beneath it (recursively). Symbols bound in a scope that no
// symbol owns as its field scope are not listed.
func DocumentSymbols(def *langdef.Definition, f *workspace.File) []transport.DocumentSymbol {
	f.RLock()
	defer f.RUnlock()
	return symbolsInScope(def, f, f.Symbols.Root)
}

func symbolsInScope(def *langdef.Definition, f *workspace.File, scopeID symtab.ScopeID) []transport.DocumentSymbol {
	scope := f.Symbols.Scope(scopeID)
	if scope == nil {
		return nil
	}
	var out []transport.DocumentSymbol
	for _, sym := range scope.Symbols {
		completionType := sym.Kind
		if st, ok := def.SymbolTypeByName(sym.Kind); ok {
			completionType = st.CompletionType
		}
		ds := transport.DocumentSymbol{
			Name:  sym.Name,
			Kind:  transport.SymbolKindFor(completionType),
			Range: toWireRange(sym.DefRange),
		}
		if sym.FieldScope != nil {
			ds.Children = symbolsInScope(def, f, *sym.FieldScope)
		}
		out = append(out, ds)
	}
	return out
}
