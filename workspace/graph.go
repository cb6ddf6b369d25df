package workspace

import (
	"os"
	"sync"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/cst"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/symtab"
	"github.com/carn181/lever/util"
)

// Edge is one directed import edge in the workspace graph.
type Edge struct {
	To   string
	Kind langdef.ImportKind
}

// Graph is the workspace-wide directed graph of file units connected by
// Local/Library import edges, plus a single reader/writer lock: mutating
// operations (open, change, save, rename, configuration, import linking)
// take Lock; pure queries take RLock. Each File's own AST/symbol table
// additionally has its own lock (see File), so concurrent read queries
// against distinct files don't contend here beyond the brief hold needed to
// look the file up.
type Graph struct {
	mu sync.RWMutex

	Files map[string]*File
	edges map[string][]Edge

	ImportErrors *ImportErrorBuffer

	parser     *cst.Parser
	translator *ast.Translator
	resolver   *Resolver
}

// NewGraph builds an empty workspace graph wired to parser (for new/changed
// files), translator (the rule-driven AST builder), and resolver (import
// path resolution).
func NewGraph(parser *cst.Parser, translator *ast.Translator, resolver *Resolver) *Graph {
	return &Graph{
		Files:        make(map[string]*File),
		edges:        make(map[string][]Edge),
		ImportErrors: newImportErrorBuffer(),
		parser:       parser,
		translator:   translator,
		resolver:     resolver,
	}
}

// Lock/Unlock/RLock/RUnlock expose the workspace-wide lock to callers that
// need to hold it across more than one graph operation (e.g. a request
// handler dispatching to the query layer).
func (g *Graph) Lock()    { g.mu.Lock() }
func (g *Graph) Unlock()  { g.mu.Unlock() }
func (g *Graph) RLock()   { g.mu.RLock() }
func (g *Graph) RUnlock() { g.mu.RUnlock() }

// Get looks up an already-open file by URI. Callers should hold at least
// RLock.
func (g *Graph) Get(uri string) (*File, bool) {
	f, ok := g.Files[uri]
	return f, ok
}

// Edges returns the outgoing edges of uri. Callers should hold at least
// RLock.
func (g *Graph) Edges(uri string) []Edge {
	return g.edges[uri]
}

// AddFile is the add-file procedure: idempotent on URI. Acquires the write
// lock itself.
func (g *Graph) AddFile(uri string, text []byte) *File {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addFileLocked(uri, text)
}

// AddFileWithAST is a test-only entry point that inserts a file built from
// an already-translated AST, running the same import-resolution and
// symbol-linking logic AddFile does, without requiring a real concrete
// parser.
func (g *Graph) AddFileWithAST(uri, path string, source []byte, tree *ast.Tree) *File {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f, ok := g.Files[uri]; ok {
		return f
	}
	f := newFileFromAST(uri, path, source, tree)
	g.Files[uri] = f
	g.resolveImportsLocked(uri, f)
	return f
}

func (g *Graph) addFileLocked(uri string, text []byte) *File {
	if f, ok := g.Files[uri]; ok {
		return f
	}
	path, _ := util.URI2path(uri)
	f := newFile(uri, path, text, g.parser, g.translator)
	g.Files[uri] = f
	g.resolveImportsLocked(uri, f)
	return f
}

// Edit is the edit procedure for a whole-document replacement (a didChange
// with a range-less change or several changes at once): clear this URI's
// buffered import errors, drop its outgoing edges, apply the new text with
// no old-tree hint, then re-resolve and re-link imports. Incoming edges
// (files that import this one) are left alone - exporters don't need to be
// rebuilt just because an importer changed.
func (g *Graph) Edit(uri string, text []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ImportErrors.Clear(uri)
	delete(g.edges, uri)

	f, ok := g.Files[uri]
	if !ok {
		g.addFileLocked(uri, text)
		return
	}
	f.Replace(text, g.parser, g.translator)
	g.resolveImportsLocked(uri, f)
}

// EditIncremental is the edit procedure for one incrementally-synced text
// change: same bookkeeping as Edit, but it reparses through File.ApplyEdit
// so the concrete syntax tree reuses whatever the edit didn't touch instead
// of reparsing from scratch. A file not yet open still falls back to a
// plain parse, since there is no previous tree to hint from.
func (g *Graph) EditIncremental(uri string, text []byte, edit cst.InputEdit) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ImportErrors.Clear(uri)
	delete(g.edges, uri)

	f, ok := g.Files[uri]
	if !ok {
		g.addFileLocked(uri, text)
		return
	}
	f.ApplyEdit(text, edit, g.parser, g.translator)
	g.resolveImportsLocked(uri, f)
}

// Remove drops a file and its outgoing edges entirely (textDocument/didClose
// does not do this for open files that remain on disk - it is for files
// genuinely removed from the workspace).
func (g *Graph) Remove(uri string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.Files, uri)
	delete(g.edges, uri)
}

// InvalidateLibraryPaths re-resolves every open file's Library imports -
// called when the language's configured library search paths change on
// disk, so an import that previously failed (or a new shadowing file) is
// picked up without requiring the client to re-send the document.
func (g *Graph) InvalidateLibraryPaths() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for uri, f := range g.Files {
		g.ImportErrors.Clear(uri)
		delete(g.edges, uri)
		g.resolveImportsLocked(uri, f)
	}
}

func (g *Graph) resolveImportsLocked(uri string, f *File) {
	for _, req := range f.ImportRequests(g.resolver) {
		if req.Err {
			g.ImportErrors.Add(uri, ImportError{Range: req.Range})
			continue
		}
		targetURI := util.Path2URI(req.Path)
		target, ok := g.Files[targetURI]
		if !ok {
			data, err := os.ReadFile(req.Path)
			if err != nil {
				g.ImportErrors.Add(uri, ImportError{Range: req.Range})
				continue
			}
			target = g.addFileLocked(targetURI, data)
		}
		g.addEdgeLocked(uri, targetURI, req.Kind)
		g.linkImportedSymbols(uri, f, targetURI, target)
	}
}

func (g *Graph) addEdgeLocked(from, to string, kind langdef.ImportKind) {
	for _, e := range g.edges[from] {
		if e.To == to && e.Kind == kind {
			return
		}
	}
	g.edges[from] = append(g.edges[from], Edge{To: to, Kind: kind})
}

// linkImportedSymbols reads the imported file's root-scope symbols (its
// exports) and resolves every matching name in from's unresolved list
// against them, writing the cross-file SymbolId back into from's AST and
// recording a cross-file Usage on the exporting symbol.
func (g *Graph) linkImportedSymbols(fromURI string, from *File, toURI string, to *File) {
	to.mu.RLock()
	rootScope := to.Symbols.Root
	exports := make([]symtab.Symbol, len(to.Symbols.Scopes[rootScope].Symbols))
	copy(exports, to.Symbols.Scopes[rootScope].Symbols)
	to.mu.RUnlock()

	from.mu.Lock()
	var resolved []symtab.UnresolvedUsage
	remaining := from.Symbols.Unresolved[:0]
	for _, u := range from.Symbols.Unresolved {
		matched := false
		for i, exp := range exports {
			if exp.Name != u.Name {
				continue
			}
			toURICopy := toURI
			symID := ast.SymbolID{File: &toURICopy, Scope: int(rootScope), Index: i}
			node := from.AST.Node(u.Node)
			node.Linked = &symID
			matched = true
			break
		}
		if matched {
			resolved = append(resolved, u)
		} else {
			remaining = append(remaining, u)
		}
	}
	// Unresolved must only ever hold usages whose Linked is still unset, so
	// anything just linked above comes out of it here.
	from.Symbols.Unresolved = remaining
	from.mu.Unlock()

	to.mu.Lock()
	for _, u := range resolved {
		for i := range to.Symbols.Scopes[rootScope].Symbols {
			if to.Symbols.Scopes[rootScope].Symbols[i].Name != u.Name {
				continue
			}
			fromURICopy := fromURI
			to.Symbols.Scopes[rootScope].Symbols[i].Usages = append(
				to.Symbols.Scopes[rootScope].Symbols[i].Usages,
				symtab.Usage{File: &fromURICopy, Range: u.Range},
			)
			break
		}
	}
	to.mu.Unlock()
}

// CanRename enforces the rename authorisation guard: a rename must not
// touch a file reached only via a Library edge from the requesting file.
func (g *Graph) CanRename(requestingURI, definingURI string) bool {
	if requestingURI == definingURI {
		return true
	}
	for _, e := range g.edges[requestingURI] {
		if e.To == definingURI {
			return e.Kind != langdef.ImportLibrary
		}
	}
	// Not a direct import of the requesting file: treat as local/same-
	// workspace and allow - only a Library edge is forbidden.
	return true
}
