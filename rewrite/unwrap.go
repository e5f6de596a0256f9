package rewrite

import "github.com/rubiojr/modflat/ast"

// unwrapLoadModule converts the inline module form
//
//	goog.loadModule(function(exports) { ...body... return exports; });
//
// into a module body directly under the script, so both module spellings
// look the same to the recorder. A goog.loadModule call whose argument is
// not a function literal is left untouched. A wrapper function whose body
// does not end in a return statement fails a structural check and panics.
type unwrapLoadModule struct {
	rewriter *Rewriter
}

func (u *unwrapLoadModule) Enter(t *ast.Traversal, n, parent *ast.Node) bool {
	switch n.Kind() {
	case ast.KindRoot, ast.KindScript:
		return true
	case ast.KindExprResult:
		call := n.First()
		if ast.IsCallTo(call, "goog.loadModule") && call.Last().IsFunction() {
			parent.SetBool(ast.PropGoogModule, true)
			fn := call.Last()
			u.rewriter.reportFunctionDeleted(fn)
			moduleBody := fn.Last().Detach()
			moduleBody.SetKind(ast.KindModuleBody)
			n.ReplaceWith(moduleBody)
			returnNode := moduleBody.Last()
			checkState(returnNode != nil && returnNode.IsReturn(), "loadModule body must end in a return")
			returnNode.Detach()
			// Directive prologue of the wrapper function dies with it.
			for first := moduleBody.First(); first != nil && isStringStatement(first); first = moduleBody.First() {
				first.Detach()
			}
		}
		return false
	}
	return false
}

func (u *unwrapLoadModule) Exit(t *ast.Traversal, n, parent *ast.Node) {}

func isStringStatement(n *ast.Node) bool {
	return n.IsExprResult() && n.First() != nil && n.First().IsString()
}
