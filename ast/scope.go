package ast

// Scope is a lexical scope: a mapping from names to the bindings a scope
// root introduces. Scopes are created by the traversal when it enters a
// scope root (script, module body, function, or block) and populated by a
// syntactic prescan, so hoisted bindings are visible before their
// declaration statement is reached.
type Scope struct {
	root   *Node
	parent *Scope
	vars   map[string]*Var
}

// Var is one binding.
type Var struct {
	name       string
	nameNode   *Node
	declParent *Node
	scope      *Scope
}

// Name returns the bound identifier.
func (v *Var) Name() string { return v.name }

// NameNode returns the declaring name node.
func (v *Var) NameNode() *Node { return v.nameNode }

// DeclParent returns the node that introduced the binding: the var/let/const
// statement, the function or class node, the parameter list, or the pattern
// statement for destructured names.
func (v *Var) DeclParent() *Node { return v.declParent }

// Scope returns the scope holding the binding.
func (v *Var) Scope() *Scope { return v.scope }

// InitialValue returns the value the binding starts with: the initializer of
// a declared name, or the function/class node for their own names. Nil when
// there is no syntactic initializer.
func (v *Var) InitialValue() *Node {
	if v.declParent == nil {
		return nil
	}
	switch v.declParent.Kind() {
	case KindVar, KindLet, KindConst:
		if v.nameNode.Kind() == KindName {
			return v.nameNode.First()
		}
	case KindFunction, KindClass:
		return v.declParent
	}
	return nil
}

// IsGlobal reports whether the binding lives at the top of a plain script.
func (v *Var) IsGlobal() bool {
	k := v.scope.root.Kind()
	return k == KindScript || k == KindRoot
}

// NewScope creates and populates the scope rooted at root.
func NewScope(root *Node, parent *Scope) *Scope {
	s := &Scope{root: root, parent: parent, vars: map[string]*Var{}}
	s.populate()
	return s
}

// Root returns the scope's root node.
func (s *Scope) Root() *Node { return s.root }

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// IsModuleScope reports whether the scope is a module body's top scope.
func (s *Scope) IsModuleScope() bool { return s.root.Kind() == KindModuleBody }

// IsHoistScope reports whether var declarations land in this scope.
func (s *Scope) IsHoistScope() bool { return isHoistRoot(s.root) }

// Depth returns the number of scopes above this one.
func (s *Scope) Depth() int {
	depth := 0
	for cur := s.parent; cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}

// OwnVar returns the binding declared directly in this scope, or nil.
func (s *Scope) OwnVar(name string) *Var { return s.vars[name] }

// GetVar returns the nearest binding for name, walking outward.
func (s *Scope) GetVar(name string) *Var {
	for cur := s; cur != nil; cur = cur.parent {
		if v := cur.vars[name]; v != nil {
			return v
		}
	}
	return nil
}

// ClosestHoistScope returns this scope or the nearest enclosing scope where
// var declarations land.
func (s *Scope) ClosestHoistScope() *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.IsHoistScope() {
			return cur
		}
	}
	return nil
}

func (s *Scope) declare(name string, nameNode, declParent *Node) {
	if name == "" || s.vars[name] != nil {
		return
	}
	s.vars[name] = &Var{name: name, nameNode: nameNode, declParent: declParent, scope: s}
}

func isHoistRoot(n *Node) bool {
	switch n.Kind() {
	case KindRoot, KindScript, KindModuleBody, KindFunction, KindArrow:
		return true
	}
	return false
}

// IsScopeRoot reports whether the traversal opens a scope at n.
func IsScopeRoot(n *Node) bool {
	return isHoistRoot(n) || n.Kind() == KindBlock
}

func (s *Scope) populate() {
	root := s.root
	switch root.Kind() {
	case KindFunction, KindArrow:
		if name := root.First(); name != nil && name.Kind() == KindName && name.Value() != "" && !root.IsStatement() {
			s.declare(name.Value(), name, root)
		}
		for _, param := range s.paramNames(root) {
			s.declare(param.Value(), param, paramListOf(root))
		}
		s.hoistScan(root.Last())
	case KindScript, KindModuleBody, KindRoot:
		s.hoistScan(root)
		s.blockScan(root)
	case KindBlock:
		s.blockScan(root)
		if parent := root.Parent(); parent != nil && parent.Kind() == KindCatch {
			for _, name := range patternNames(parent.First()) {
				s.declare(name.Value(), name, parent)
			}
		}
	}
}

func paramListOf(fn *Node) *Node {
	for c := fn.First(); c != nil; c = c.Next() {
		if c.Kind() == KindParamList {
			return c
		}
	}
	return nil
}

func (s *Scope) paramNames(fn *Node) []*Node {
	params := paramListOf(fn)
	if params == nil {
		return nil
	}
	var out []*Node
	for p := params.First(); p != nil; p = p.Next() {
		out = append(out, patternNames(p)...)
	}
	return out
}

// hoistScan collects var and function declarations below n without crossing
// nested function boundaries.
func (s *Scope) hoistScan(n *Node) {
	if n == nil {
		return
	}
	for c := n.First(); c != nil; c = c.Next() {
		switch c.Kind() {
		case KindFunction:
			if c.IsStatement() {
				if name := c.First(); name != nil && name.Kind() == KindName {
					s.declare(name.Value(), name, c)
				}
			}
			continue
		case KindArrow, KindModuleBody:
			continue
		case KindVar:
			for _, name := range DeclarationNames(c) {
				s.declare(name.Value(), name, c)
			}
		}
		s.hoistScan(c)
	}
}

// blockScan collects the block-scoped declarations directly under n.
func (s *Scope) blockScan(n *Node) {
	for c := n.First(); c != nil; c = c.Next() {
		switch c.Kind() {
		case KindLet, KindConst:
			for _, name := range DeclarationNames(c) {
				s.declare(name.Value(), name, c)
			}
		case KindClass:
			if name := c.First(); name != nil && name.Kind() == KindName {
				s.declare(name.Value(), name, c)
			}
		}
	}
}
