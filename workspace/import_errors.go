package workspace

import (
	"sync"

	"github.com/carn181/lever/ast"
)

// ImportError is one failed import resolution, reported against the
// importing file at the import literal's range.
type ImportError struct {
	Range ast.Range
}

// ImportErrorBuffer is the URI-keyed store of import errors the workspace
// graph produces and the diagnostics pipeline reads. Each Graph owns one
// (Graph.ImportErrors), and a server process runs a single Graph. It has
// its own lock because import errors are produced while adding/editing a
// file but consumed later by that file's own diagnostics request.
type ImportErrorBuffer struct {
	mu   sync.Mutex
	errs map[string][]ImportError
}

func newImportErrorBuffer() *ImportErrorBuffer {
	return &ImportErrorBuffer{errs: make(map[string][]ImportError)}
}

// Add appends an import error for uri.
func (b *ImportErrorBuffer) Add(uri string, e ImportError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs[uri] = append(b.errs[uri], e)
}

// Clear drops every buffered error for uri. Called at the start of the edit
// procedure, before imports are re-resolved.
func (b *ImportErrorBuffer) Clear(uri string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.errs, uri)
}

// Get returns a copy of the buffered errors for uri, without clearing them -
// Graph.DiagnosticsQuick/DiagnosticsFull read this on every request.
func (b *ImportErrorBuffer) Get(uri string) []ImportError {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ImportError, len(b.errs[uri]))
	copy(out, b.errs[uri])
	return out
}
