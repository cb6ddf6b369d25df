package workspace

import "github.com/carn181/lever/ast"

// Diagnostic is a transport-agnostic diagnostic: range, severity/source/code
// strings, and a message. The server package maps this onto
// transport.Diagnostic.
type Diagnostic struct {
	Range    ast.Range
	Severity string
	Source   string
	Code     string
	Message  string
}

// SyntaxDiagnostics returns one diagnostic per Error AST node.
func (f *File) SyntaxDiagnostics() []Diagnostic {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []Diagnostic
	for _, id := range f.AST.ErrorNodes() {
		node := f.AST.Node(id)
		out = append(out, Diagnostic{
			Range:    node.Range,
			Severity: "Error",
			Source:   "AST",
			Code:     "parsing",
			Message:  node.ErrorMessage,
		})
	}
	return out
}

// DiagnosticsQuick is the quick diagnostics pass: syntax errors plus
// buffered import errors for uri. Callers should hold at least RLock.
func (g *Graph) DiagnosticsQuick(uri string) []Diagnostic {
	var out []Diagnostic
	if f, ok := g.Files[uri]; ok {
		out = append(out, f.SyntaxDiagnostics()...)
	}
	for _, ie := range g.ImportErrors.Get(uri) {
		out = append(out, Diagnostic{
			Range:    ie.Range,
			Severity: "Error",
			Source:   "import",
			Code:     "import",
			Message:  "File could not be found.",
		})
	}
	return out
}

// DiagnosticsFull is currently identical to DiagnosticsQuick - plugin-
// contributed diagnostics are appended separately by the server's save
// handler, not by the workspace graph itself.
func (g *Graph) DiagnosticsFull(uri string) []Diagnostic {
	return g.DiagnosticsQuick(uri)
}
