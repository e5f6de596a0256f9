package ast

import "strings"

// IsStatement reports whether n occupies a statement position: its parent is
// a statement container (script, module body, or block) or a label.
func (n *Node) IsStatement() bool {
	p := n.parent
	if p == nil {
		return false
	}
	switch p.kind {
	case KindScript, KindModuleBody, KindBlock:
		return true
	case KindLabel:
		return p.IsStatement()
	}
	return false
}

// EnclosingStatement returns the nearest ancestor-or-self of n that is in a
// statement position. Panics if n is not inside a statement container.
func (n *Node) EnclosingStatement() *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.IsStatement() {
			return cur
		}
	}
	panic("ast: node has no enclosing statement")
}

// EnclosingScript returns the nearest ancestor-or-self script node, or nil.
func (n *Node) EnclosingScript() *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.kind == KindScript {
			return cur
		}
	}
	return nil
}

// EnclosingChangeScopeRoot returns the nearest ancestor-or-self that roots a
// change scope: a function, a script, or the tree root. Returns nil for a
// fully detached fragment.
func (n *Node) EnclosingChangeScopeRoot() *Node {
	for cur := n; cur != nil; cur = cur.parent {
		switch cur.kind {
		case KindFunction, KindArrow, KindScript, KindRoot:
			return cur
		}
	}
	return nil
}

// SourceFile returns the file name of the script containing n, or "".
func (n *Node) SourceFile() string {
	if script := n.EnclosingScript(); script != nil {
		return script.value
	}
	return ""
}

// IsQualifiedName reports whether n is a name or a chain of member accesses
// rooted at a name or this.
func (n *Node) IsQualifiedName() bool {
	switch n.kind {
	case KindName:
		return n.value != ""
	case KindThis:
		return true
	case KindGetProp:
		return n.first != nil && n.first.IsQualifiedName()
	}
	return false
}

// QualifiedName returns the dotted text of a qualified name, or "" if n is
// not one.
func (n *Node) QualifiedName() string {
	switch n.kind {
	case KindName:
		return n.value
	case KindThis:
		return "this"
	case KindGetProp:
		base := n.first.QualifiedName()
		if base == "" {
			return ""
		}
		return base + "." + n.Second().value
	}
	return ""
}

// MatchesQualifiedName reports whether n is exactly the given dotted name.
func (n *Node) MatchesQualifiedName(dotted string) bool {
	switch n.kind {
	case KindName:
		return n.value == dotted && !strings.Contains(dotted, ".")
	case KindGetProp:
		dot := strings.LastIndexByte(dotted, '.')
		if dot < 0 {
			return false
		}
		return n.Second().value == dotted[dot+1:] && n.first.MatchesQualifiedName(dotted[:dot])
	}
	return false
}

// IsCallTo reports whether n is a call whose callee is exactly the given
// dotted name.
func IsCallTo(n *Node, dotted string) bool {
	return n != nil && n.IsCall() && n.first != nil && n.first.MatchesQualifiedName(dotted)
}

// DeclarationNames returns the NAME nodes bound by a var/let/const
// statement, including names nested inside destructuring patterns.
func DeclarationNames(decl *Node) []*Node {
	var out []*Node
	for c := decl.First(); c != nil; c = c.Next() {
		switch c.Kind() {
		case KindName:
			out = append(out, c)
		case KindDestructuringLhs:
			out = append(out, patternNames(c.First())...)
		}
	}
	return out
}

func patternNames(pattern *Node) []*Node {
	if pattern == nil {
		return nil
	}
	var out []*Node
	switch pattern.Kind() {
	case KindName:
		out = append(out, pattern)
	case KindObjectPattern:
		for key := pattern.First(); key != nil; key = key.Next() {
			switch key.Kind() {
			case KindStringKey:
				if key.HasChildren() {
					out = append(out, patternNames(key.First())...)
				} else {
					out = append(out, key)
				}
			case KindRest:
				out = append(out, patternNames(key.First())...)
			case KindComputedProp:
				out = append(out, patternNames(key.Second())...)
			}
		}
	case KindArrayPattern:
		for el := pattern.First(); el != nil; el = el.Next() {
			switch el.Kind() {
			case KindRest:
				out = append(out, patternNames(el.First())...)
			case KindDefaultValue:
				out = append(out, patternNames(el.First())...)
			case KindEmpty:
			default:
				out = append(out, patternNames(el)...)
			}
		}
	case KindDefaultValue:
		out = append(out, patternNames(pattern.First())...)
	}
	return out
}

// RValueOfLValue returns the value a binding name receives: the initializer
// for declaration names, the right side for assignment targets, and the
// declared function or class for their name nodes.
func RValueOfLValue(lhs *Node) *Node {
	parent := lhs.Parent()
	if parent == nil {
		return nil
	}
	switch parent.Kind() {
	case KindVar, KindLet, KindConst:
		return lhs.First()
	case KindAssign:
		if parent.First() == lhs {
			return parent.Last()
		}
	case KindFunction, KindClass:
		if parent.First() == lhs {
			return parent
		}
	}
	return nil
}

// MergeBlock splices the children of a block into its parent in place of the
// block itself.
func MergeBlock(block *Node) {
	for block.HasChildren() {
		block.InsertBefore(block.First().Detach())
	}
	block.Detach()
}

// ReplaceDeclarationChild replaces the declaration of one name inside a
// var/let/const statement with a standalone statement. If the declaration
// binds other names as well, it is split around the replacement.
func ReplaceDeclarationChild(nameNode, newStatement *Node) {
	decl := nameNode.Parent()
	if decl.HasOneChild() {
		decl.ReplaceWith(newStatement)
		return
	}
	// Split: names after the replaced one move to a fresh declaration so
	// the statement order matches the original binding order.
	if next := nameNode.Next(); next != nil {
		after := New(decl.Kind())
		for sib := next; sib != nil; {
			following := sib.Next()
			after.AddChildToBack(sib.Detach())
			sib = following
		}
		decl.InsertAfter(after)
	}
	if nameNode.Prev() != nil {
		nameNode.Detach()
		decl.InsertAfter(newStatement)
	} else {
		nameNode.Detach()
		decl.ReplaceWith(newStatement)
	}
}
