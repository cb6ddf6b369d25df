// Package workspace is the file unit and workspace graph: each
// open document's own AST + symbol table, the directed graph of Local and
// Library import edges between documents, and the import-error buffer the
// diagnostics pipeline reads from.
package workspace

import (
	"sync"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/cst"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/symtab"
)

// ImportRequest is one import an AST asked for, resolved or not.
type ImportRequest struct {
	Kind langdef.ImportKind
	Path string // resolved filesystem path, valid only if Err == nil
	Node ast.NodeID
	Range ast.Range // import literal's range, used to report Err
	Err  bool
}

// File is one open document: its text, concrete syntax tree, AST, and
// symbol table, guarded by its own lock so cross-file read queries don't
// contend with each other - only with an edit to that specific file.
type File struct {
	mu sync.RWMutex

	URI    string
	Path   string
	Source []byte

	cstTree *cst.Tree
	AST     *ast.Tree
	Symbols *symtab.Table

	hasSyntaxErrors bool
}

// newFile parses text and builds its AST + symbol table. Called with the
// workspace write lock held.
func newFile(uri, path string, text []byte, parser *cst.Parser, translator *ast.Translator) *File {
	f := &File{URI: uri, Path: path}
	f.rebuild(text, parser, translator, nil)
	return f
}

// rebuild reparses text into a concrete syntax tree, rebuilds the AST and
// symbol table from it, and swaps them in under the file's own lock. old,
// if non-nil, is the file's previous concrete syntax tree already adjusted
// via Tree.Edit for the changed region, letting the parser reuse whatever
// subtrees the edit didn't touch - only the concrete syntax tree is
// incrementally reparsed this way, the AST and symbol table are always
// rebuilt wholesale from the resulting tree.
func (f *File) rebuild(text []byte, parser *cst.Parser, translator *ast.Translator, old *cst.Tree) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Source = text
	f.cstTree = parser.Parse(text, old)
	f.AST = translator.Translate(f.cstTree.Root(), text)
	f.Symbols = symtab.Build(f.AST)
	f.hasSyntaxErrors = len(f.AST.ErrorNodes()) > 0
}

// newFileFromAST builds a File from an already-translated AST, bypassing
// the concrete parser entirely. Used by tests that exercise the workspace
// graph's linking/edge logic without a real tree-sitter grammar.
func newFileFromAST(uri, path string, source []byte, tree *ast.Tree) *File {
	f := &File{URI: uri, Path: path, Source: source, AST: tree}
	f.Symbols = symtab.Build(tree)
	f.hasSyntaxErrors = len(tree.ErrorNodes()) > 0
	return f
}

// Lock/Unlock/RLock/RUnlock expose the file's own lock to callers that need
// to read its AST/symbol table across more than one operation (the query
// layer holds RLock while walking a tree and following Linked symbol ids).
func (f *File) Lock()    { f.mu.Lock() }
func (f *File) Unlock()  { f.mu.Unlock() }
func (f *File) RLock()   { f.mu.RLock() }
func (f *File) RUnlock() { f.mu.RUnlock() }

// Replace replaces the file's whole text (a didChange notification with a
// range-less change or several changes at once), reparsing from scratch
// with no old-tree hint.
func (f *File) Replace(text []byte, parser *cst.Parser, translator *ast.Translator) {
	f.rebuild(text, parser, translator, nil)
}

// ApplyEdit incorporates one incremental text change: it first applies edit
// to the file's existing concrete syntax tree (tree-sitter's own in-place
// bookkeeping, not a reparse), then reparses the full new text with that
// edited tree passed as a hint.
func (f *File) ApplyEdit(text []byte, edit cst.InputEdit, parser *cst.Parser, translator *ast.Translator) {
	f.mu.Lock()
	old := f.cstTree
	f.mu.Unlock()
	if old != nil {
		old.Edit(edit)
	}
	f.rebuild(text, parser, translator, old)
}

// HasSyntaxErrors reports whether the last build produced any Error AST
// nodes.
func (f *File) HasSyntaxErrors() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.hasSyntaxErrors
}

// ImportRequests scans the AST for Local/Library import nodes and resolves
// each against resolver, returning one ImportRequest per import node found.
func (f *File) ImportRequests(resolver *Resolver) []ImportRequest {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []ImportRequest
	f.AST.Walk(f.AST.Root, func(id ast.NodeID) {
		node := f.AST.Node(id)
		if node.ImportKind == langdef.ImportNone {
			return
		}
		literal := stripDelimiters(node.Content)
		var resolved string
		var found bool
		switch node.ImportKind {
		case langdef.ImportLocal:
			resolved, found = resolver.ResolveLocal(f.Path, literal)
		case langdef.ImportLibrary:
			resolved, found = resolver.ResolveLibrary(literal)
		}
		out = append(out, ImportRequest{
			Kind:  node.ImportKind,
			Path:  resolved,
			Node:  id,
			Range: node.Range,
			Err:   !found,
		})
	})
	return out
}

func stripDelimiters(content string) string {
	if len(content) < 2 {
		return content
	}
	return content[1 : len(content)-1]
}
