package server

import (
	"encoding/json"

	"github.com/carn181/lever/query"
	"github.com/carn181/lever/transport"
)

func handleDefinition(s *Server, params json.RawMessage) (any, *transport.ResponseError) {
	var p transport.TextDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return errResult(transport.InvalidParams, "definition: %v", err)
	}
	s.Graph.RLock()
	defer s.Graph.RUnlock()
	loc, ok := query.Definition(s.Graph, p.TextDocument.URI, toASTPosition(p.Position))
	if !ok {
		return nil, nil
	}
	return loc, nil
}

func handleHover(s *Server, params json.RawMessage) (any, *transport.ResponseError) {
	var p transport.TextDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return errResult(transport.InvalidParams, "hover: %v", err)
	}
	s.Graph.RLock()
	defer s.Graph.RUnlock()
	text, r, ok := query.Hover(s.Graph, p.TextDocument.URI, toASTPosition(p.Position))
	if !ok {
		return nil, nil
	}
	wireRange := toWireRangeLocal(r)
	return transport.Hover{
		Contents: transport.MarkupContent{Kind: "plaintext", Value: text},
		Range:    &wireRange,
	}, nil
}

type completionParams struct {
	transport.TextDocumentPositionParams
	Context *struct {
		TriggerCharacter string `json:"triggerCharacter"`
	} `json:"context,omitempty"`
}

func handleCompletion(s *Server, params json.RawMessage) (any, *transport.ResponseError) {
	var p completionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return errResult(transport.InvalidParams, "completion: %v", err)
	}
	trigger := ""
	if p.Context != nil {
		trigger = p.Context.TriggerCharacter
	}
	s.Graph.RLock()
	defer s.Graph.RUnlock()
	items := query.Completion(s.Graph, s.Def, p.TextDocument.URI, toASTPosition(p.Position), trigger)
	return items, nil
}

func handleRename(s *Server, params json.RawMessage) (any, *transport.ResponseError) {
	var p transport.RenameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return errResult(transport.InvalidParams, "rename: %v", err)
	}
	s.Graph.RLock()
	defer s.Graph.RUnlock()
	edit, ok := query.Rename(s.Graph, p.TextDocument.URI, toASTPosition(p.Position), p.NewName)
	if !ok {
		return errResult(transport.RequestFailed, "cannot rename this symbol")
	}
	return edit, nil
}

func handleDocumentSymbol(s *Server, params json.RawMessage) (any, *transport.ResponseError) {
	var p struct {
		TextDocument transport.TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return errResult(transport.InvalidParams, "documentSymbol: %v", err)
	}
	s.Graph.RLock()
	f, ok := s.Graph.Get(p.TextDocument.URI)
	s.Graph.RUnlock()
	if !ok {
		return []transport.DocumentSymbol{}, nil
	}
	return query.DocumentSymbols(s.Def, f), nil
}

func handleSemanticTokensFull(s *Server, params json.RawMessage) (any, *transport.ResponseError) {
	var p transport.SemanticTokensParams
	if err := json.Unmarshal(params, &p); err != nil {
		return errResult(transport.InvalidParams, "semanticTokens/full: %v", err)
	}
	s.Graph.RLock()
	f, ok := s.Graph.Get(p.TextDocument.URI)
	s.Graph.RUnlock()
	if !ok {
		return transport.SemanticTokens{Data: []uint32{}}, nil
	}
	return query.SemanticTokens(s.Def, f), nil
}
