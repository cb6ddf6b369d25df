package server

import (
	"encoding/json"

	"github.com/carn181/lever/logging"
	"github.com/carn181/lever/transport"
)

func handleDidOpen(s *Server, params json.RawMessage) {
	var p transport.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		logging.Logger.Error("didOpen", "err", err)
		return
	}
	s.Graph.AddFile(p.TextDocument.URI, []byte(p.TextDocument.Text))
	s.queueDiagnostics(p.TextDocument.URI)
}

func handleDidChange(s *Server, params json.RawMessage) {
	var p transport.DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		logging.Logger.Error("didChange", "err", err)
		return
	}

	s.Graph.RLock()
	f, ok := s.Graph.Get(p.TextDocument.URI)
	var text []byte
	if ok {
		f.RLock()
		text = append([]byte(nil), f.Source...)
		f.RUnlock()
	}
	s.Graph.RUnlock()
	if !ok {
		return
	}

	// The common case - one ranged edit - reparses incrementally: the edit
	// tuple lets the concrete parser reuse whatever of the previous tree the
	// change didn't touch. A full-document replacement (nil Range) or a
	// batch of several edits in one notification falls back to a plain
	// reparse of the whole new text.
	if len(p.ContentChanges) == 1 && p.ContentChanges[0].Range != nil {
		change := p.ContentChanges[0]
		edit := inputEditFor(text, change)
		newText := applyIncrementalChange(text, change)
		s.Graph.EditIncremental(p.TextDocument.URI, newText, edit)
		s.queueDiagnostics(p.TextDocument.URI)
		return
	}

	for _, change := range p.ContentChanges {
		text = applyIncrementalChange(text, change)
	}
	s.Graph.Edit(p.TextDocument.URI, text)
	s.queueDiagnostics(p.TextDocument.URI)
}

func handleDidSave(s *Server, params json.RawMessage) {
	var p transport.DidSaveTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		logging.Logger.Error("didSave", "err", err)
		return
	}

	s.Graph.RLock()
	f, ok := s.Graph.Get(p.TextDocument.URI)
	var text []byte
	if ok {
		f.RLock()
		text = append([]byte(nil), f.Source...)
		f.RUnlock()
	}
	s.Graph.RUnlock()
	if !ok {
		return
	}

	extra := s.Plugin.OnSave(p.TextDocument.URI, text)
	s.queueDiagnostics(p.TextDocument.URI)
	if len(extra) > 0 {
		s.publishExtra(p.TextDocument.URI, extra)
	}
}

func handleDidClose(s *Server, params json.RawMessage) {
	var p transport.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		logging.Logger.Error("didClose", "err", err)
		return
	}
	// Leave the file in the graph - other open files may still import it.
	// Only workspace/didDeleteFiles (not modeled here) actually removes it.
	_ = p
}
