package rewrite

import (
	"strings"

	"github.com/rubiojr/modflat/ast"
)

// rewriteJSDoc rewrites doc comment type references to match the tree
// rewrites: inlined import aliases, content-prefixed top level names, and
// module namespaces collapsed to their binary names.
func (r *Rewriter) rewriteJSDoc(info *ast.JSDocInfo) {
	for _, typeNode := range info.TypeNodes {
		r.replaceJSDocRef(typeNode)
	}
}

// replaceJSDocRef tries progressively shorter dotted prefixes of the type
// name ("foo.Bar.Baz", then "foo.Bar", then "foo") until one of them is
// known. Longest match wins so a short alias never hijacks a longer
// namespace.
func (r *Rewriter) replaceJSDocRef(typeRefNode *ast.Node) {
	if !typeRefNode.IsString() {
		return
	}
	// A type name that might be simple like "Foo" or qualified like
	// "foo.Bar".
	typeName := typeRefNode.Value()

	prefixTypeName := typeName
	suffix := ""
	for {
		// An alias for an imported namespace rewrites from "{Foo}" to
		// "{module$exports$bar$Foo}" or "{bar.Foo}".
		if aliasedNamespace, ok := r.currentScript.namesToInlineByAlias[prefixTypeName]; ok {
			r.safeSetString(typeRefNode, aliasedNamespace+suffix)
			return
		}

		// A module top level name was renamed to its content-prefixed
		// form; references follow it.
		if r.currentScript.isModule && r.currentScript.topLevelNames[prefixTypeName] {
			r.safeSetString(typeRefNode, r.currentScript.contentsPrefix+typeName)
			return
		}

		binaryNamespaceIfModule := r.state.binaryNamespace(prefixTypeName)
		if r.legacyNamespacesAndPrefixes[prefixTypeName] && binaryNamespaceIfModule == "" {
			// Definitely a legacy script namespace; the fully qualified
			// name resolves as-is.
			return
		}

		// A fully qualified reference to something that is actually a
		// module rewrites to the binary name.
		if binaryNamespaceIfModule != "" {
			r.safeSetString(typeRefNode, binaryNamespaceIfModule+suffix)
			return
		}

		if dot := strings.LastIndexByte(prefixTypeName, '.'); dot >= 0 {
			prefixTypeName = prefixTypeName[:dot]
			suffix = typeName[len(prefixTypeName):]
		} else {
			return
		}
	}
}
