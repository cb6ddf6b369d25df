// Package server is the LSP-facing event loop: it reads framed JSON-RPC
// messages off a transport.Transport, dispatches each to a handler keyed by
// method name, and writes responses/notifications back. Every handler runs
// on the single event-loop goroutine, a cooperative single-threaded
// dispatch model, except the async diagnostics publisher, which runs on its
// own goroutine reading off a channel handlers push to.
package server

import (
	"encoding/json"
	"fmt"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/cst"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/logging"
	"github.com/carn181/lever/plugin"
	"github.com/carn181/lever/transport"
	"github.com/carn181/lever/workspace"
)

type requestHandler func(s *Server, params json.RawMessage) (any, *transport.ResponseError)
type notificationHandler func(s *Server, params json.RawMessage)

// Server is the language server's state: the workspace graph it dispatches
// queries and edits against, the language definition driving translation,
// and the transport it talks to the client over.
type Server struct {
	Transport  *transport.Transport
	Graph      *workspace.Graph
	Def        *langdef.Definition
	Parser     *cst.Parser
	Translator *ast.Translator
	Plugin     plugin.SaveDiagnosticsPlugin

	diagnostics chan string // URIs pushed here get their diagnostics republished
	shutdown    bool

	requestHandlers     map[string]requestHandler
	notificationHandlers map[string]notificationHandler
}

// New builds a Server wired to t, g, def, parser and translator. plug may be
// nil, in which case it defaults to plugin.NopPlugin.
func New(t *transport.Transport, g *workspace.Graph, def *langdef.Definition, parser *cst.Parser, translator *ast.Translator, plug plugin.SaveDiagnosticsPlugin) *Server {
	if plug == nil {
		plug = plugin.NopPlugin{}
	}
	s := &Server{
		Transport:   t,
		Graph:       g,
		Def:         def,
		Parser:      parser,
		Translator:  translator,
		Plugin:      plug,
		diagnostics: make(chan string, 64),
	}
	s.requestHandlers = map[string]requestHandler{
		"initialize":                 handleInitialize,
		"shutdown":                   handleShutdown,
		"textDocument/definition":    handleDefinition,
		"textDocument/hover":         handleHover,
		"textDocument/completion":    handleCompletion,
		"textDocument/rename":        handleRename,
		"textDocument/documentSymbol": handleDocumentSymbol,
		"textDocument/semanticTokens/full": handleSemanticTokensFull,
	}
	s.notificationHandlers = map[string]notificationHandler{
		"initialized":                    func(*Server, json.RawMessage) {},
		"exit":                           handleExit,
		"textDocument/didOpen":           handleDidOpen,
		"textDocument/didChange":         handleDidChange,
		"textDocument/didSave":           handleDidSave,
		"textDocument/didClose":          handleDidClose,
		"workspace/didChangeConfiguration": handleDidChangeConfiguration,
	}
	return s
}

// Run drives the event loop until the transport closes or a shutdown
// request has been answered; it does not wait for the exit notification.
// It also starts the diagnostics-publish goroutine: request handlers never
// block on publishing, they just enqueue a URI.
func (s *Server) Run() {
	go s.publishLoop()

	for !s.Transport.Closed {
		msg, err := s.Transport.Read()
		if err != nil {
			logging.Logger.Error("transport read", "err", err)
			continue
		}
		if len(msg) == 0 {
			continue
		}
		s.dispatch(msg)
		if s.shutdown {
			break
		}
	}
}

func (s *Server) dispatch(raw []byte) {
	// id is set as soon as the envelope is decoded, before any handler runs,
	// so the recover below can still answer a request whose handler panicked
	// instead of leaving the client waiting on that id forever. It stays nil
	// for notifications, which have no id to answer.
	var id json.RawMessage
	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Error("panic handling message", "recover", r)
			if id != nil {
				s.respondError(id, transport.InternalError, "internal error")
			}
		}
	}()

	_, content, found := splitHeader(raw)
	if !found {
		return
	}

	var envelope struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(content, &envelope); err != nil {
		logging.Logger.Error("malformed message", "err", err)
		return
	}
	id = envelope.ID

	if envelope.ID == nil {
		if h, ok := s.notificationHandlers[envelope.Method]; ok {
			h(s, envelope.Params)
		} else {
			logging.Logger.Debug("unhandled notification", "method", envelope.Method)
		}
		return
	}

	h, ok := s.requestHandlers[envelope.Method]
	if !ok {
		s.respondError(envelope.ID, transport.MethodNotFound, "method not found: "+envelope.Method)
		return
	}
	result, respErr := h(s, envelope.Params)
	if respErr != nil {
		s.respondError(envelope.ID, respErr.Code, respErr.Message)
		return
	}
	s.respond(envelope.ID, result)
}

func (s *Server) respond(id json.RawMessage, result any) {
	payload, err := json.Marshal(result)
	if err != nil {
		logging.Logger.Error("marshal response", "err", err)
		return
	}
	msg := transport.ResponseMessage{
		Message: transport.Message{Jsonrpc: "2.0"},
		ID:      rawID(id),
		Result:  payload,
	}
	s.write(msg)
}

func (s *Server) respondError(id json.RawMessage, code int, message string) {
	msg := transport.ResponseMessage{
		Message: transport.Message{Jsonrpc: "2.0"},
		ID:      rawID(id),
		Error:   &transport.ResponseError{Code: code, Message: message},
	}
	s.write(msg)
}

func (s *Server) notify(method string, params any) {
	payload, err := json.Marshal(params)
	if err != nil {
		logging.Logger.Error("marshal notification", "err", err)
		return
	}
	if err := s.Transport.WriteNotif(method, payload); err != nil {
		logging.Logger.Error("write notification", "err", err)
	}
}

func (s *Server) write(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		logging.Logger.Error("marshal", "err", err)
		return
	}
	if err := s.Transport.Write(payload); err != nil {
		logging.Logger.Error("write", "err", err)
	}
}

func rawID(id json.RawMessage) any {
	var v any
	_ = json.Unmarshal(id, &v)
	return v
}

func errResult(code int, format string, args ...any) (any, *transport.ResponseError) {
	return nil, &transport.ResponseError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// splitHeader strips the Content-Length header the transport layer already
// validated, returning just the JSON body. Transport.Read hands us the full
// framed message including the header, so dispatch re-splits it once.
func splitHeader(raw []byte) (header, content []byte, found bool) {
	for i := 0; i+3 < len(raw); i++ {
		if raw[i] == '\r' && raw[i+1] == '\n' && raw[i+2] == '\r' && raw[i+3] == '\n' {
			return raw[:i], raw[i+4:], true
		}
	}
	return nil, nil, false
}
