package server

import (
	"encoding/json"

	"github.com/carn181/lever/logging"
	"github.com/carn181/lever/transport"
)

func handleInitialize(s *Server, params json.RawMessage) (any, *transport.ResponseError) {
	var p transport.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return errResult(transport.InvalidParams, "initialize: %v", err)
	}
	logging.Logger.Info("initialize", "rootUri", p.RootURI)

	result := transport.InitializeResult{
		Capabilities: transport.ServerCapabilities{
			TextDocumentSync:       transport.SyncIncremental,
			DefinitionProvider:     true,
			HoverProvider:          true,
			RenameProvider:         true,
			DocumentSymbolProvider: true,
			CompletionProvider: &transport.CompletionOptions{
				TriggerCharacters: []string{"."},
			},
			SemanticTokensProvider: &transport.SemanticTokensOptions{
				Legend: transport.SemanticTokensLegend{TokenTypes: s.Def.Legend()},
				Full:   true,
			},
		},
		ServerInfo: &transport.ServerInfo{Name: "lever", Version: "0.1.0"},
	}
	return result, nil
}

func handleShutdown(s *Server, _ json.RawMessage) (any, *transport.ResponseError) {
	s.shutdown = true
	return nil, nil
}

func handleExit(s *Server, _ json.RawMessage) {
	s.Transport.Close()
	logging.Close()
}
