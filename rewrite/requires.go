package rewrite

import "github.com/rubiojr/modflat/ast"

// reportUnrecognizedRequires classifies the requires queued during
// recording, now that the whole compilation has been seen: a target nobody
// declares is a missing namespace; a target that exists was merely declared
// too late for an order-sensitive require.
func (r *Rewriter) reportUnrecognizedRequires() {
	for _, unrecognized := range r.unrecognizedRequires {
		namespace := unrecognized.namespace
		requireNode := unrecognized.requireNode

		targetModuleExists := r.state.containsModule(namespace)
		targetLegacyScriptExists := r.state.legacyScriptNamespaces[namespace]

		if !targetModuleExists && !targetLegacyScriptExists {
			r.report(MissingModuleOrProvide, requireNode, namespace)
			// Remove the statement so downstream passes don't report the
			// same problem again.
			if statement := enclosingStatementOrNil(requireNode); statement != nil {
				statement.Detach()
			}
			continue
		}

		if unrecognized.mustBeOrdered {
			r.report(LateProvideError, requireNode, namespace)
		}
	}

	// Repeated invocations during hot-swap recompiles report only new
	// problems.
	r.unrecognizedRequires = nil
}

func enclosingStatementOrNil(n *ast.Node) *ast.Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.IsStatement() {
			return cur
		}
	}
	return nil
}
