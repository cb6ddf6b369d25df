package server

import (
	"encoding/json"

	"github.com/carn181/lever/logging"
)

// handleDidChangeConfiguration accepts whatever settings blob the client
// sends and logs it. lever's core has no configuration surface of its own -
// a language definition's embedder reads settings this way and feeds them
// to its own plugin, not to the core query layer.
func handleDidChangeConfiguration(s *Server, params json.RawMessage) {
	logging.Logger.Debug("configuration changed", "settings", string(params))
}
