package ast

// Callback receives traversal events. Enter runs pre-order and may return
// false to skip the node's subtree (Exit is then skipped as well). Exit runs
// post-order, after the children.
type Callback interface {
	Enter(t *Traversal, n, parent *Node) bool
	Exit(t *Traversal, n, parent *Node)
}

// Traversal walks a tree depth-first while maintaining the scope chain.
// Callbacks may freely mutate the tree: the next sibling is captured before
// a child is visited, so detaching or replacing the visited node is safe.
type Traversal struct {
	scopes []*Scope
}

// Traverse walks the tree rooted at root with the given callback.
func Traverse(root *Node, cb Callback) {
	t := &Traversal{}
	t.traverseBranch(root, root.Parent(), cb)
}

func (t *Traversal) traverseBranch(n, parent *Node, cb Callback) {
	pushed := false
	if IsScopeRoot(n) {
		t.scopes = append(t.scopes, NewScope(n, t.currentScope()))
		pushed = true
	}
	if cb.Enter(t, n, parent) {
		for c := n.First(); c != nil; {
			next := c.Next()
			t.traverseBranch(c, n, cb)
			c = next
		}
		cb.Exit(t, n, parent)
	}
	if pushed {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

func (t *Traversal) currentScope() *Scope {
	if len(t.scopes) == 0 {
		return nil
	}
	return t.scopes[len(t.scopes)-1]
}

// Scope returns the innermost scope at the current traversal position.
func (t *Traversal) Scope() *Scope { return t.currentScope() }

// ClosestHoistScope returns the nearest scope where var declarations land.
func (t *Traversal) ClosestHoistScope() *Scope {
	if s := t.currentScope(); s != nil {
		return s.ClosestHoistScope()
	}
	return nil
}

// InGlobalScope reports whether the traversal is at the top scope of a plain
// script (or the synthetic root above scripts).
func (t *Traversal) InGlobalScope() bool {
	hoist := t.ClosestHoistScope()
	if hoist == nil {
		return true
	}
	k := hoist.Root().Kind()
	return k == KindScript || k == KindRoot
}

// InModuleScope reports whether the current scope is a module body's own
// scope.
func (t *Traversal) InModuleScope() bool {
	s := t.currentScope()
	return s != nil && s.IsModuleScope()
}

// GetVar resolves a name from the current scope outward.
func (t *Traversal) GetVar(name string) *Var {
	if s := t.currentScope(); s != nil {
		return s.GetVar(name)
	}
	return nil
}
