package ast

import "strings"

// Constructors for the node shapes the rewriter builds. They mirror the
// shapes the parser produces so freshly built subtrees are
// indistinguishable from parsed ones.

// Name creates an identifier node.
func Name(name string) *Node { return NewValue(KindName, name) }

// Str creates a string literal node.
func Str(value string) *Node { return NewValue(KindString, value) }

// GetProp creates target.prop member access.
func GetProp(target *Node, prop string) *Node {
	n := New(KindGetProp)
	n.AddChildToBack(target)
	n.AddChildToBack(Str(prop))
	return n
}

// Call creates a call expression.
func Call(callee *Node, args ...*Node) *Node {
	n := New(KindCall)
	n.AddChildToBack(callee)
	for _, a := range args {
		n.AddChildToBack(a)
	}
	return n
}

// Assign creates a plain assignment expression.
func Assign(lhs, rhs *Node) *Node {
	n := NewValue(KindAssign, "=")
	n.AddChildToBack(lhs)
	n.AddChildToBack(rhs)
	return n
}

// ExprResult wraps an expression in a statement.
func ExprResult(expr *Node) *Node {
	n := New(KindExprResult)
	n.AddChildToBack(expr)
	return n
}

// VarDecl creates `var <name> = <value>;`. value may be nil.
func VarDecl(nameNode *Node, value *Node) *Node {
	if value != nil {
		nameNode.AddChildToBack(value)
	}
	n := New(KindVar)
	n.AddChildToBack(nameNode)
	return n
}

// ObjectLit creates an object literal with the given string-key children.
func ObjectLit(keys ...*Node) *Node {
	n := New(KindObjectLit)
	for _, k := range keys {
		n.AddChildToBack(k)
	}
	return n
}

// Empty creates a placeholder node.
func Empty() *Node { return New(KindEmpty) }

// NewQName builds the expression tree for a dotted name: "a" becomes a NAME,
// "a.b.c" becomes GetProp(GetProp(a, b), c).
func NewQName(dotted string) *Node {
	parts := strings.Split(dotted, ".")
	node := Name(parts[0])
	for _, part := range parts[1:] {
		node = GetProp(node, part)
	}
	return node
}

// NewQNameDeclaration builds the statement declaring a possibly-dotted name:
// a flat name yields `var name = rhs;`, a dotted name yields
// `name.path = rhs;`. rhs may be nil for a bare flat declaration. The doc
// record, if any, lands on the statement node.
func NewQNameDeclaration(name string, rhs *Node, jsdoc *JSDocInfo) *Node {
	var stmt *Node
	if strings.Contains(name, ".") {
		lhs := NewQName(name)
		var assignTo *Node
		if rhs != nil {
			assignTo = Assign(lhs, rhs)
		} else {
			assignTo = lhs
		}
		stmt = ExprResult(assignTo)
	} else {
		stmt = VarDecl(Name(name), rhs)
	}
	stmt.SetJSDoc(jsdoc)
	return stmt
}
