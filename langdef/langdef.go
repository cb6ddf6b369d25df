// Package langdef loads the declarative language definition that tells the
// rest of lever how to read a concrete syntax tree for one target language:
// which tree-sitter node shapes become which AST rules, which of those carry
// symbol roles, and which file extensions and library search paths the
// language claims. A definition is loaded once at startup and is immutable
// for the life of the process, matching the workspace-wide "one language per
// server instance" assumption the query layer relies on.
package langdef

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Definition is the fully parsed, validated language definition.
type Definition struct {
	Language           Language     `yaml:"language"`
	SymbolTypes        []SymbolType `yaml:"symbol_types"`
	SemanticTokenTypes []string     `yaml:"semantic_token_types"`
	ASTRules           []Rule       `yaml:"ast_rules"`
	GlobalASTRules     []Child      `yaml:"global_ast_rules"`
	Keywords           []string     `yaml:"keywords"`

	rulesByName map[string]*Rule
}

// Language describes the target language's identity and where its Library
// imports may be found.
type Language struct {
	Name           string       `yaml:"name"`
	FileExtensions []string     `yaml:"file_extensions"`
	LibraryPaths   LibraryPaths `yaml:"library_paths"`
}

// LibraryPaths lists, in priority order, where Library imports are searched:
// first any directory named by one of EnvVariables, then the OS-appropriate
// fixed search paths below.
type LibraryPaths struct {
	EnvVariables []string `yaml:"env_variables"`
	Windows      []string `yaml:"windows"`
	Macos        []string `yaml:"macos"`
	Linux        []string `yaml:"linux"`
}

// SearchPaths returns the fixed (non-env-variable) search paths for the
// running OS, in order.
func (l LibraryPaths) SearchPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return l.Windows
	case "darwin":
		return l.Macos
	default:
		return l.Linux
	}
}

// SymbolType names one kind a symbol's Init role can declare (e.g.
// "variable", "function"), along with how it should be presented to an LSP
// client.
type SymbolType struct {
	Name           string  `yaml:"name"`
	CompletionType string  `yaml:"completion_type"`
	HighlightType  *string `yaml:"highlight_type,omitempty"`
}

// Rule is a single production the translator uses to turn one concrete
// syntax node into one AST node: what its children are, and whether the
// node itself introduces a symbol.
type Rule struct {
	NodeName   string     `yaml:"node_name"`
	Children   []Child    `yaml:"children"`
	SymbolRole SymbolRole `yaml:"symbol_role"`
	ImportKind ImportKind `yaml:"import_kind"`
	// Scope marks this rule's matched nodes as scope-introducing: the
	// symbol table builder opens a new Scope, ranged over the node, for
	// each one.
	Scope bool `yaml:"scope"`
}

// Load reads and validates a language definition file at path.
func Load(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("langdef: read %s: %w", path, err)
	}
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("langdef: parse %s: %w", path, err)
	}
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("langdef: %s: %w", path, err)
	}
	def.index()
	return &def, nil
}

func (d *Definition) validate() error {
	haveRoot := false
	names := make(map[string]bool, len(d.ASTRules))
	for _, r := range d.ASTRules {
		if r.NodeName == "Root" {
			haveRoot = true
		}
		names[r.NodeName] = true
	}
	if !haveRoot {
		return fmt.Errorf("ast_rules has no Root rule")
	}

	checkChildren := func(where string, children []Child) error {
		for _, c := range children {
			if c.Target.TargetKind == TargetRule && !names[c.Target.Name] {
				return fmt.Errorf("%s references unknown rule %q", where, c.Target.Name)
			}
		}
		return nil
	}
	for _, r := range d.ASTRules {
		if err := checkChildren("rule "+r.NodeName, r.Children); err != nil {
			return err
		}
	}
	if err := checkChildren("global_ast_rules", d.GlobalASTRules); err != nil {
		return err
	}
	return nil
}

func (d *Definition) index() {
	d.rulesByName = make(map[string]*Rule, len(d.ASTRules))
	for i := range d.ASTRules {
		d.rulesByName[d.ASTRules[i].NodeName] = &d.ASTRules[i]
	}
}

// Rule looks up an ast_rules entry by node_name.
func (d *Definition) Rule(name string) (*Rule, bool) {
	r, ok := d.rulesByName[name]
	return r, ok
}

// RootRule returns the entry rule for translation. Load guarantees it exists.
func (d *Definition) RootRule() *Rule {
	r := d.rulesByName["Root"]
	return r
}

// Legend returns the semantic token legend in declaration order, the shape
// LSP's semanticTokens/full response indexes into.
func (d *Definition) Legend() []string {
	return d.SemanticTokenTypes
}

// SymbolTypeByName looks up a declared symbol type by name, as used by
// Init-role rules and by completion-kind mapping.
func (d *Definition) SymbolTypeByName(name string) (SymbolType, bool) {
	for _, st := range d.SymbolTypes {
		if st.Name == name {
			return st, true
		}
	}
	return SymbolType{}, false
}

// IsSourceFile reports whether path's extension matches one of the
// language's declared file extensions.
func (d *Definition) IsSourceFile(path string) bool {
	for _, ext := range d.Language.FileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
