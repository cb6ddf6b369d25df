package server

import (
	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/transport"
	"github.com/carn181/lever/workspace"
)

// queueDiagnostics enqueues uri for the async publisher without blocking
// the calling handler. A full channel drops the request - the next edit to
// the same file will enqueue it again, so no diagnostic staleness survives
// more than one round trip.
func (s *Server) queueDiagnostics(uri string) {
	select {
	case s.diagnostics <- uri:
	default:
	}
}

func (s *Server) publishLoop() {
	for uri := range s.diagnostics {
		s.Graph.RLock()
		diags := s.Graph.DiagnosticsFull(uri)
		s.Graph.RUnlock()
		s.notify("textDocument/publishDiagnostics", transport.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: toWireDiagnostics(diags),
		})
	}
}

func (s *Server) publishExtra(uri string, extra []workspace.Diagnostic) {
	s.Graph.RLock()
	diags := append(s.Graph.DiagnosticsFull(uri), extra...)
	s.Graph.RUnlock()
	s.notify("textDocument/publishDiagnostics", transport.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toWireDiagnostics(diags),
	})
}

func toWireDiagnostics(diags []workspace.Diagnostic) []transport.Diagnostic {
	out := make([]transport.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, transport.Diagnostic{
			Range:    toWireRangeLocal(d.Range),
			Severity: severityFor(d.Severity),
			Source:   d.Source,
			Code:     d.Code,
			Message:  d.Message,
		})
	}
	return out
}

func toWireRangeLocal(r ast.Range) transport.Range {
	return transport.Range{
		Start: transport.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   transport.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

func severityFor(s string) transport.DiagnosticSeverity {
	switch s {
	case "Error":
		return transport.SeverityError
	case "Warning":
		return transport.SeverityWarning
	case "Information":
		return transport.SeverityInformation
	case "Hint":
		return transport.SeverityHint
	default:
		return transport.SeverityError
	}
}
