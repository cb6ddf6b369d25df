package symtab

import (
	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/logging"
)

// Build runs the four-pass symbol table construction over tree, mutating
// tree's nodes in place to fill in linked_symbol where resolution succeeds.
func Build(tree *ast.Tree) *Table {
	t := &Table{Root: NoScope}
	if tree.Root == ast.NoNode {
		return t
	}

	rootNode := tree.Node(tree.Root)
	rootScope := t.newScope(NoScope, tree.Root, rootNode.Range)
	t.Root = rootScope

	t.buildNode(tree, tree.Root, rootScope, true)

	t.resolveLocalUsages(tree)
	t.resolveTypes(tree)
	t.resolveMemberUsages(tree)

	return t
}

// Pass 1 - scope construction + definitions.
func (t *Table) buildNode(tree *ast.Tree, id ast.NodeID, outerScope ScopeID, isRoot bool) {
	node := tree.Node(id)
	innerScope := outerScope
	if !isRoot && node.IntroducesScope {
		innerScope = t.newScope(outerScope, id, node.Range)
	}

	if node.Role.RoleKind == langdef.RoleInit && node.Role.Init != nil {
		if nameNode := findChildByRule(tree, node, node.Role.Init.NameChild); nameNode != nil {
			sym := Symbol{
				Name:     nameNode.Content,
				Kind:     node.Role.Init.Kind,
				DefRange: nameNode.Range,
				DefNode:  id,
			}
			if innerScope != outerScope {
				fs := innerScope
				sym.FieldScope = &fs
			}
			scope := &t.Scopes[outerScope]
			idx := len(scope.Symbols)
			scope.Symbols = append(scope.Symbols, sym)
			symID := ast.SymbolID{Scope: int(outerScope), Index: idx}
			nameNode.Linked = &symID
		}
	}

	for _, c := range node.Children {
		t.buildNode(tree, c, innerScope, false)
	}
}

// Pass 2 - local usages.
func (t *Table) resolveLocalUsages(tree *ast.Tree) {
	tree.Walk(tree.Root, func(id ast.NodeID) {
		node := tree.Node(id)
		if node.Role.RoleKind != langdef.RoleUsage {
			return
		}
		scope := t.ScopeAt(node.Range.Start)
		if scope == NoScope {
			scope = t.Root
		}
		symID, ok := t.lookupAncestors(scope, node.Content)
		if !ok {
			t.Unresolved = append(t.Unresolved, UnresolvedUsage{Name: node.Content, Node: id, Range: node.Range})
			return
		}
		idCopy := symID
		node.Linked = &idCopy
		if sym, ok := t.Symbol(symID); ok {
			sym.Usages = append(sym.Usages, Usage{Range: node.Range})
		}
	})
}

// Pass 3 - types.
func (t *Table) resolveTypes(tree *ast.Tree) {
	tree.Walk(tree.Root, func(id ast.NodeID) {
		node := tree.Node(id)
		if node.Role.RoleKind != langdef.RoleInit || node.Role.Init == nil || node.Role.Init.TypeChild == nil {
			return
		}
		nameNode := findChildByRule(tree, node, node.Role.Init.NameChild)
		if nameNode == nil || nameNode.Linked == nil {
			return
		}
		sym, ok := t.Symbol(*nameNode.Linked)
		if !ok {
			return
		}
		typeNode := findChildByRule(tree, node, *node.Role.Init.TypeChild)
		if typeNode == nil || typeNode.Linked == nil {
			// Missing type child: logged, not fatal; the symbol stays
			// untyped and no diagnostic is produced.
			if logging.Logger != nil {
				logging.Logger.Debug("init node has no linked type child", "symbol", sym.Name, "type_child", *node.Role.Init.TypeChild)
			}
			return
		}
		tsID := *typeNode.Linked
		sym.TypeSymbol = &tsID
	})
}

// Pass 4 - member usages.
func (t *Table) resolveMemberUsages(tree *ast.Tree) {
	tree.Walk(tree.Root, func(id ast.NodeID) {
		node := tree.Node(id)
		if node.Role.RoleKind != langdef.RoleMemberUsage {
			return
		}
		sibling := previousSibling(tree, id)
		if sibling == nil {
			return
		}

		var parentType *ast.SymbolID
		switch sibling.Role.RoleKind {
		case langdef.RoleUsage:
			if sibling.Linked == nil {
				return
			}
			sSym, ok := t.Symbol(*sibling.Linked)
			if !ok {
				return
			}
			parentType = sSym.TypeSymbol
		case langdef.RoleExpression:
			for _, c := range sibling.Children {
				cNode := tree.Node(c)
				if cNode.Role.RoleKind == langdef.RoleMemberUsage && cNode.Linked != nil {
					pSym, ok := t.Symbol(*cNode.Linked)
					if !ok {
						continue
					}
					parentType = pSym.TypeSymbol
					break
				}
			}
		default:
			return
		}

		if parentType == nil || !parentType.SameFile() {
			return
		}
		typeSym, ok := t.Symbol(*parentType)
		if !ok || typeSym.FieldScope == nil {
			return
		}
		fieldScope := &t.Scopes[*typeSym.FieldScope]
		for i := range fieldScope.Symbols {
			if fieldScope.Symbols[i].Name != node.Content {
				continue
			}
			symID := ast.SymbolID{Scope: int(*typeSym.FieldScope), Index: i}
			node.Linked = &symID
			fieldScope.Symbols[i].Usages = append(fieldScope.Symbols[i].Usages, Usage{Range: node.Range})
			return
		}
	})
}

func findChildByRule(tree *ast.Tree, node *ast.Node, ruleName string) *ast.Node {
	for _, c := range node.Children {
		cn := tree.Node(c)
		if cn.RuleName == ruleName {
			return cn
		}
	}
	return nil
}

func previousSibling(tree *ast.Tree, id ast.NodeID) *ast.Node {
	node := tree.Node(id)
	if node.Parent == ast.NoNode {
		return nil
	}
	parent := tree.Node(node.Parent)
	for i, c := range parent.Children {
		if c == id {
			if i == 0 {
				return nil
			}
			return tree.Node(parent.Children[i-1])
		}
	}
	return nil
}
