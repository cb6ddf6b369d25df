// Package plugin defines the extension point the server invokes after a
// document is saved: a language definition may be paired with an external
// analysis step (a type checker, a linter) whose findings get folded into
// the diagnostics a client sees. lever itself ships no concrete plugin -
// the language definition's embedder wires one in.
package plugin

import "github.com/carn181/lever/workspace"

// SaveDiagnosticsPlugin is invoked after textDocument/didSave with the
// file's URI and current source text, and returns additional diagnostics
// to merge with the workspace graph's own syntax/import diagnostics.
// Implementations must not block the event loop for long - the server
// calls this synchronously from the didSave handler.
type SaveDiagnosticsPlugin interface {
	OnSave(uri string, source []byte) []workspace.Diagnostic
}

// NopPlugin satisfies SaveDiagnosticsPlugin by contributing nothing. Used
// when no plugin is configured, so the server's save handler never needs a
// nil check.
type NopPlugin struct{}

func (NopPlugin) OnSave(uri string, source []byte) []workspace.Diagnostic { return nil }
