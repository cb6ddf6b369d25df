// Package symtab builds the scoped symbol table for one file's AST: a
// four-pass walk that opens scopes, binds definitions, resolves local
// usages, propagates types, and resolves member accesses. It never looks
// across files - cross-file linking is the workspace graph's job
// (package workspace); this package only ever fills in or leaves
// unresolved what a single file's AST can settle on its own.
package symtab

import "github.com/carn181/lever/ast"

// ScopeID indexes into a Table's Scopes slice.
type ScopeID int

const NoScope ScopeID = -1

// Usage records one place a symbol was referred to.
type Usage struct {
	// File is nil when the usage is in the same file as the symbol's
	// definition, and set to the referring file's URI otherwise (filled in
	// by the workspace graph's link pass, never by this package).
	File  *string
	Range ast.Range
}

// Symbol is one name bound in some scope.
type Symbol struct {
	Name       string
	Kind       string
	DefRange   ast.Range
	DefNode    ast.NodeID
	Usages     []Usage
	TypeSymbol *ast.SymbolID
	FieldScope *ScopeID
}

// Scope is one name-binding region: a source range, an ordered list of
// symbols declared directly in it, and a link to its parent/children
// mirroring the AST's scope-node nesting exactly (Invariant: the
// scope-table hierarchy is a subtree of the AST's scope-node hierarchy,
// same nesting order and ranges).
type Scope struct {
	ID       ScopeID
	Parent   ScopeID
	Children []ScopeID
	Range    ast.Range
	Symbols  []Symbol
	// Node is the AST node that introduced this scope. The root scope's Node
	// is always the AST root, whether or not the root's rule is marked
	// scope-introducing.
	Node ast.NodeID
}

// UnresolvedUsage is a Usage-role node whose name didn't resolve against any
// ancestor scope in this file.
type UnresolvedUsage struct {
	Name  string
	Node  ast.NodeID
	Range ast.Range
}

// Table is the symbol table for one file: an arena of scopes plus the list
// of names this file couldn't resolve on its own.
type Table struct {
	Scopes     []Scope
	Root       ScopeID
	Unresolved []UnresolvedUsage
}

func (t *Table) newScope(parent ScopeID, node ast.NodeID, r ast.Range) ScopeID {
	id := ScopeID(len(t.Scopes))
	t.Scopes = append(t.Scopes, Scope{ID: id, Parent: parent, Range: r, Node: node})
	if parent != NoScope {
		t.Scopes[parent].Children = append(t.Scopes[parent].Children, id)
	}
	return id
}

// Scope returns a pointer into the arena for in-place mutation.
func (t *Table) Scope(id ScopeID) *Scope {
	if id == NoScope {
		return nil
	}
	return &t.Scopes[id]
}

// Symbol resolves a local SymbolID (File == nil) to its Symbol.
func (t *Table) Symbol(id ast.SymbolID) (*Symbol, bool) {
	if int(id.Scope) < 0 || int(id.Scope) >= len(t.Scopes) {
		return nil, false
	}
	scope := &t.Scopes[id.Scope]
	if id.Index < 0 || id.Index >= len(scope.Symbols) {
		return nil, false
	}
	return &scope.Symbols[id.Index], true
}

// ScopeAt returns the innermost scope whose range strictly contains p,
// recursing into the deepest matching child.
func (t *Table) ScopeAt(p ast.Position) ScopeID {
	if t.Root == NoScope {
		return NoScope
	}
	return t.scopeAtFrom(t.Root, p)
}

func (t *Table) scopeAtFrom(current ScopeID, p ast.Position) ScopeID {
	for _, childID := range t.Scopes[current].Children {
		if t.Scopes[childID].Range.Contains(p) {
			return t.scopeAtFrom(childID, p)
		}
	}
	return current
}

// VisibleSymbols returns every symbol visible at position p in scope id's
// ancestor chain (id, parent, ..., root), applying the forward-only
// visibility rule: a symbol is visible only once its definition has ended
// before p.
func (t *Table) VisibleSymbols(id ScopeID, p ast.Position) []*Symbol {
	var out []*Symbol
	for s := id; s != NoScope; s = t.Scopes[s].Parent {
		scope := &t.Scopes[s]
		for i := range scope.Symbols {
			sym := &scope.Symbols[i]
			if sym.DefRange.End.Before(p) {
				out = append(out, sym)
			}
		}
	}
	return out
}

// lookupAncestors finds the first symbol named name visible from scope id
// upward through its ancestor chain (no visibility filtering - used for
// Pass 2's reference resolution, which isn't gated on definition-before-use
// ordering).
func (t *Table) lookupAncestors(id ScopeID, name string) (ast.SymbolID, bool) {
	for s := id; s != NoScope; s = t.Scopes[s].Parent {
		scope := &t.Scopes[s]
		for i, sym := range scope.Symbols {
			if sym.Name == name {
				return ast.SymbolID{Scope: int(s), Index: i}, true
			}
		}
	}
	return ast.SymbolID{}, false
}
