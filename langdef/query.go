package langdef

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NodeQueryKind discriminates the shape of a TreesitterNodeQuery.
type NodeQueryKind int

const (
	QueryKind NodeQueryKind = iota
	QueryField
	QueryPath
)

// NodeQuery selects one or more children of a concrete syntax node, either
// by grammar kind, by field name, or by a fixed path of such selectors
// applied in sequence (the node reached by the first step becomes the
// subject of the second, and so on).
type NodeQuery struct {
	QueryKind NodeQueryKind
	Name      string      // set when QueryKind is QueryKind or QueryField
	Path      []NodeQuery // set when QueryKind is QueryPath
}

func (q *NodeQuery) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]yaml.Node
	if err := value.Decode(&m); err != nil {
		return err
	}
	if n, ok := m["kind"]; ok {
		q.QueryKind = QueryKind
		return n.Decode(&q.Name)
	}
	if n, ok := m["field"]; ok {
		q.QueryKind = QueryField
		return n.Decode(&q.Name)
	}
	if n, ok := m["path"]; ok {
		q.QueryKind = QueryPath
		return n.Decode(&q.Path)
	}
	return fmt.Errorf("node query must have one of kind/field/path")
}

// TargetKind discriminates what a matched child becomes.
type TargetKind int

const (
	TargetDirect TargetKind = iota
	TargetRule
)

// Target says what a Child's matched concrete node turns into: either a
// Direct leaf AST node named Name, or a recursive application of the rule
// named Name.
type Target struct {
	TargetKind TargetKind
	Name       string
}

func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]yaml.Node
	if err := value.Decode(&m); err != nil {
		return err
	}
	if n, ok := m["direct"]; ok {
		t.TargetKind = TargetDirect
		return n.Decode(&t.Name)
	}
	if n, ok := m["rule"]; ok {
		t.TargetKind = TargetRule
		return n.Decode(&t.Name)
	}
	return fmt.Errorf("target must have one of direct/rule")
}

// Child is one entry in a Rule's children list: where to look in the
// concrete tree, and what the match becomes in the AST.
type Child struct {
	Query     NodeQuery `yaml:"query"`
	Target    Target    `yaml:"target"`
	Highlight *string   `yaml:"highlight,omitempty"`
}

// ImportKind tags a Rule as introducing a Local or Library import, or
// neither.
type ImportKind int

const (
	ImportNone ImportKind = iota
	ImportLocal
	ImportLibrary
)

func (k *ImportKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "", "none":
		*k = ImportNone
	case "local":
		*k = ImportLocal
	case "library":
		*k = ImportLibrary
	default:
		return fmt.Errorf("unknown import_kind %q", s)
	}
	return nil
}

// SymbolRoleKind discriminates the shape of a SymbolRole.
type SymbolRoleKind int

const (
	RoleNone SymbolRoleKind = iota
	RoleInit
	RoleUsage
	RoleMemberUsage
	RoleExpression
)

// InitRole describes a symbol-introducing node: which declared symbol type
// it creates, which child carries its name, and (optionally) which child's
// linked symbol supplies its type.
type InitRole struct {
	Kind      string  `yaml:"kind"`
	NameChild string  `yaml:"name_child"`
	TypeChild *string `yaml:"type_child,omitempty"`
}

// SymbolRole is the role a rule's matched node plays in the symbol table:
// none, a definition (Init), a plain name lookup (Usage), a `.field` lookup
// on a preceding value (MemberUsage), or a pass-through value-producing node
// with no name of its own (Expression).
type SymbolRole struct {
	RoleKind SymbolRoleKind
	Init     *InitRole
}

func (r *SymbolRole) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		switch s {
		case "", "none":
			r.RoleKind = RoleNone
		case "usage":
			r.RoleKind = RoleUsage
		case "member_usage":
			r.RoleKind = RoleMemberUsage
		case "expression":
			r.RoleKind = RoleExpression
		default:
			return fmt.Errorf("unknown symbol_role %q", s)
		}
		return nil
	}
	var m struct {
		Init *InitRole `yaml:"init"`
	}
	if err := value.Decode(&m); err != nil {
		return err
	}
	if m.Init == nil {
		return fmt.Errorf("symbol_role map form must set 'init'")
	}
	r.RoleKind = RoleInit
	r.Init = m.Init
	return nil
}
