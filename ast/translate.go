package ast

import (
	"fmt"

	"github.com/carn181/lever/cst"
	"github.com/carn181/lever/langdef"
)

// Translator turns a concrete syntax tree into an AST according to one
// language definition's rules. It holds no per-file state and is safe for
// concurrent use across files.
type Translator struct {
	def *langdef.Definition
}

// NewTranslator builds a Translator for def.
func NewTranslator(def *langdef.Definition) *Translator {
	return &Translator{def: def}
}

// Translate walks root (the concrete syntax tree's root node) starting from
// the Root rule and produces the corresponding AST.
func (tr *Translator) Translate(root cst.SyntaxNode, source []byte) *Tree {
	t := newTree()
	t.Root = tr.applyRule(t, tr.def.RootRule(), root, source, NoNode)
	return t
}

// applyRule translates one concrete node as a match of rule, appending the
// produced node as a child of parent (if parent != NoNode), and returns the
// new node's id.
func (tr *Translator) applyRule(t *Tree, rule *langdef.Rule, node cst.SyntaxNode, source []byte, parent NodeID) NodeID {
	if node.IsError() {
		return tr.injectError(t, node, source, parent, fmt.Sprintf("unexpected %q", node.Kind()))
	}

	id := t.alloc(Node{
		RuleName:        rule.NodeName,
		Range:           rangeOf(node),
		Role:            rule.SymbolRole,
		ImportKind:      rule.ImportKind,
		IntroducesScope: rule.Scope,
		Parent:          parent,
	})
	if parent != NoNode {
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	}

	consumed := make(map[int]bool)
	allChildren := make([]langdef.Child, 0, len(rule.Children)+len(tr.def.GlobalASTRules))
	allChildren = append(allChildren, rule.Children...)
	allChildren = append(allChildren, tr.def.GlobalASTRules...)

	for _, child := range allChildren {
		matches := tr.matchQuery(child.Query, node, consumed)
		for _, m := range matches {
			switch child.Target.TargetKind {
			case langdef.TargetDirect:
				if m.HasError() {
					tr.injectError(t, m, source, id, fmt.Sprintf("malformed %q", m.Kind()))
				}
				tr.addDirect(t, child.Target.Name, child.Highlight, m, source, id)
			case langdef.TargetRule:
				childRule, ok := tr.def.Rule(child.Target.Name)
				if !ok {
					tr.injectError(t, m, source, id, fmt.Sprintf("unknown rule %q", child.Target.Name))
					continue
				}
				tr.applyRule(t, childRule, m, source, id)
			}
		}
	}

	// Anything left over that tree-sitter flagged as an error or a missing
	// token, and that no rule claimed, still needs to surface as a
	// diagnostic.
	for i := 0; i < node.ChildCount(); i++ {
		if consumed[i] {
			continue
		}
		c := node.Child(i)
		if c == nil {
			continue
		}
		if c.IsError() {
			tr.injectError(t, c, source, id, fmt.Sprintf("unexpected %q", c.Kind()))
		} else if c.IsMissing() {
			tr.injectError(t, c, source, id, fmt.Sprintf("missing %q", c.Kind()))
		}
	}

	return id
}

func (tr *Translator) addDirect(t *Tree, name string, highlight *string, node cst.SyntaxNode, source []byte, parent NodeID) NodeID {
	id := t.alloc(Node{
		RuleName:  name,
		Range:     rangeOf(node),
		Content:   node.Content(source),
		Highlight: highlight,
		Parent:    parent,
	})
	t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	return id
}

func (tr *Translator) injectError(t *Tree, node cst.SyntaxNode, source []byte, parent NodeID, msg string) NodeID {
	id := t.alloc(Node{
		RuleName:     "Error",
		Range:        rangeOf(node),
		Content:      node.Content(source),
		IsError:      true,
		ErrorMessage: msg,
		Parent:       parent,
	})
	if parent != NoNode {
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	} else {
		t.Root = id
	}
	return id
}

// matchQuery resolves a NodeQuery against node's direct children, marking
// every index it consumes in consumed (by direct child index of node) so
// the caller can detect unclaimed error/missing children afterwards. Kind
// and Field queries may match more than one child; Path composes a fixed
// sequence of such selections.
func (tr *Translator) matchQuery(q langdef.NodeQuery, node cst.SyntaxNode, consumed map[int]bool) []cst.SyntaxNode {
	switch q.QueryKind {
	case langdef.QueryKind:
		var out []cst.SyntaxNode
		for i := 0; i < node.ChildCount(); i++ {
			c := node.Child(i)
			if c != nil && c.Kind() == q.Name {
				consumed[i] = true
				out = append(out, c)
			}
		}
		return out
	case langdef.QueryField:
		var out []cst.SyntaxNode
		for i := 0; i < node.ChildCount(); i++ {
			if name, ok := node.FieldNameForChild(i); ok && name == q.Name {
				consumed[i] = true
				out = append(out, node.Child(i))
			}
		}
		return out
	case langdef.QueryPath:
		current := []cst.SyntaxNode{node}
		for stepIdx, step := range q.Path {
			var next []cst.SyntaxNode
			for _, c := range current {
				// Only the first step's matches are direct children of
				// node, so only those count toward "consumed" for the
				// unclaimed-error sweep.
				stepConsumed := consumed
				if stepIdx > 0 {
					stepConsumed = map[int]bool{}
				}
				next = append(next, tr.matchQuery(step, c, stepConsumed)...)
			}
			current = next
		}
		return current
	}
	return nil
}

func rangeOf(n cst.SyntaxNode) Range {
	s, e := n.StartPoint(), n.EndPoint()
	return Range{
		Start: Position{Line: s.Row, Character: s.Column},
		End:   Position{Line: e.Row, Character: e.Column},
	}
}
