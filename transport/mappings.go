package transport

// CompletionKindFor maps a language definition's completion_type string (the
// same vocabulary the LSP spec uses: "variable", "function", "class", ...)
// onto the wire CompletionItemKind enum. Unknown values fall back to Text
// rather than erroring - an unrecognised completion_type is a language
// definition authoring mistake, not something a request should fail on.
func CompletionKindFor(completionType string) CompletionItemKind {
	switch completionType {
	case "method":
		return CompletionKindMethod
	case "function":
		return CompletionKindFunction
	case "constructor":
		return CompletionKindConstructor
	case "field":
		return CompletionKindField
	case "variable":
		return CompletionKindVariable
	case "class", "type":
		return CompletionKindClass
	case "interface":
		return CompletionKindInterface
	case "module":
		return CompletionKindModule
	case "property":
		return CompletionKindProperty
	default:
		return CompletionKindText
	}
}

// SymbolKindFor maps the same completion_type vocabulary onto the wire
// document-symbol SymbolKind enum, for textDocument/documentSymbol.
func SymbolKindFor(completionType string) SymbolKind {
	switch completionType {
	case "method":
		return SymbolKindMethod
	case "function":
		return SymbolKindFunction
	case "constructor":
		return SymbolKindConstructor
	case "field":
		return SymbolKindField
	case "variable":
		return SymbolKindVariable
	case "class", "type":
		return SymbolKindClass
	case "module":
		return SymbolKindModule
	case "property":
		return SymbolKindProperty
	default:
		return SymbolKindVariable
	}
}
