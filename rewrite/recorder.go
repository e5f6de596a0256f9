package rewrite

import (
	"strings"

	"github.com/rubiojr/modflat/ast"
)

// scriptRecorder is the first-phase traversal. It fills the per-script
// description and the global namespace registry, rejects malformed marker
// calls, and queues requires whose target is not yet known.
type scriptRecorder struct {
	rewriter *Rewriter
}

func (rec *scriptRecorder) Enter(t *ast.Traversal, n, parent *ast.Node) bool {
	r := rec.rewriter

	if isGoogModuleFile(n) {
		r.checkAndSetStrictModeDirective(n)
	}

	switch n.Kind() {
	case ast.KindModuleBody:
		r.recordModuleBody(n)

	case ast.KindCall:
		method := n.First()
		if !method.IsGetProp() {
			break
		}
		switch {
		case method.MatchesQualifiedName("goog.module"):
			r.recordGoogModule(t, n)
		case method.MatchesQualifiedName("goog.module.declareLegacyNamespace"):
			r.recordGoogDeclareLegacyNamespace()
		case method.MatchesQualifiedName("goog.provide"):
			r.recordGoogProvide(t, n)
		case method.MatchesQualifiedName("goog.require"):
			r.recordGoogRequire(t, n, true)
		case method.MatchesQualifiedName("goog.forwardDeclare") && !parent.IsExprResult():
			r.recordGoogForwardDeclare(t, n)
		case method.MatchesQualifiedName("goog.module.get"):
			r.recordGoogModuleGet(t, n)
		}

	case ast.KindClass, ast.KindFunction:
		if r.isTopLevel(t, n, scopeBlock) {
			r.recordTopLevelClassOrFunctionName(n)
		}

	case ast.KindConst, ast.KindLet, ast.KindVar:
		st := scopeBlock
		if n.IsVar() {
			st = scopeExecContext
		}
		if r.isTopLevel(t, n, st) {
			r.recordTopLevelVarNames(n)
		}

	case ast.KindGetProp:
		if isExportPropertyAssignment(n) {
			r.recordExportsPropertyAssignment(t, n)
		}

	case ast.KindStringKey:
		// Short object keys are expanded first, so that later renames can
		// substitute the value without touching the key.
		if r.currentScript.isModule {
			r.rewriteShortObjectKey(n)
		}

	case ast.KindName:
		r.maybeRecordExportDeclaration(t, n)
	}

	return true
}

func (rec *scriptRecorder) Exit(t *ast.Traversal, n, parent *ast.Node) {
	if n.IsModuleBody() {
		rec.rewriter.popScript()
	}
}

// isGoogModuleFile reports whether n is a script holding a module body.
func isGoogModuleFile(n *ast.Node) bool {
	return n.IsScript() && n.HasChildren() && n.First().IsModuleBody()
}

func (r *Rewriter) recordModuleBody(moduleRoot *ast.Node) {
	r.pushScript(newScriptDescription())
	r.currentScript.rootNode = moduleRoot
	r.currentScript.isModule = true
}

func (r *Rewriter) recordGoogModule(t *ast.Traversal, call *ast.Node) {
	namespaceNode := call.Last()
	if !namespaceNode.IsString() {
		r.report(InvalidModuleNamespace, namespaceNode)
		return
	}
	namespace := namespaceNode.Value()

	r.currentScript.namespace = namespace
	r.currentScript.contentsPrefix = toContentsPrefix(namespace)

	if r.state.containsModule(namespace) {
		r.report(DuplicateModule, call, namespace)
	}
	if r.state.legacyScriptNamespaces[namespace] {
		r.report(DuplicateNamespace, call, namespace)
	}

	r.state.register(r.currentScript.rootNode.EnclosingScript(), namespace, r.currentScript)
}

func (r *Rewriter) recordGoogDeclareLegacyNamespace() {
	r.currentScript.declareLegacyNamespace = true
}

func (r *Rewriter) recordGoogProvide(t *ast.Traversal, call *ast.Node) {
	namespaceNode := call.Last()
	if !namespaceNode.IsString() {
		r.report(InvalidProvideNamespace, namespaceNode)
		return
	}
	namespace := namespaceNode.Value()

	if r.currentScript.isModule {
		r.report(InvalidProvideCall, namespaceNode)
	}
	if r.state.containsModule(namespace) {
		r.report(DuplicateNamespace, call, namespace)
	}

	r.state.register(call.EnclosingScript(), namespace, nil)
	// Track the namespace and every dotted prefix of it for the doc
	// comment rewriter.
	parts := strings.Split(namespace, ".")
	for len(parts) > 0 {
		r.legacyNamespacesAndPrefixes[strings.Join(parts, ".")] = true
		parts = parts[:len(parts)-1]
	}
}

func (r *Rewriter) recordGoogRequire(t *ast.Traversal, call *ast.Node, mustBeOrdered bool) {
	maybeSplitMultiVar(call)

	namespaceNode := call.Last()
	if !namespaceNode.IsString() {
		r.report(InvalidRequireNamespace, namespaceNode)
		return
	}
	namespace := namespaceNode.Value()

	// Importing something that no module or legacy script declares might
	// be an ordering problem rather than a typo; queue it for
	// classification once the whole compilation is recorded.
	targetIsModule := r.state.containsModule(namespace)
	targetIsLegacyScript := r.state.legacyScriptNamespaces[namespace]
	if r.currentScript.isModule && !targetIsModule && !targetIsLegacyScript {
		r.unrecognizedRequires = append(r.unrecognizedRequires,
			unrecognizedRequire{requireNode: call, namespace: namespace, mustBeOrdered: mustBeOrdered})
	}
}

func (r *Rewriter) recordGoogForwardDeclare(t *ast.Traversal, call *ast.Node) {
	namespaceNode := call.Last()
	if call.ChildCount() != 2 || !namespaceNode.IsString() {
		r.report(InvalidForwardDeclareNamespace, namespaceNode)
		return
	}

	// A forward declaration may name a namespace that is declared later,
	// so it is queued without the ordering requirement: a late target is
	// accepted, while a target that is never declared is still reported.
	r.recordGoogRequire(t, call, false)
}

func (r *Rewriter) recordGoogModuleGet(t *ast.Traversal, call *ast.Node) {
	namespaceNode := call.Last()
	if call.ChildCount() != 2 || !namespaceNode.IsString() {
		r.report(InvalidGetNamespace, namespaceNode)
		return
	}
	if !r.currentScript.isModule && t.InGlobalScope() {
		r.report(InvalidGetCallScope, namespaceNode)
		return
	}
	namespace := namespaceNode.Value()

	if !r.state.containsModule(namespace) {
		r.unrecognizedRequires = append(r.unrecognizedRequires,
			unrecognizedRequire{requireNode: call, namespace: namespace, mustBeOrdered: false})
	}

	maybeAssign := call.Parent()
	isFillingAnAlias := maybeAssign != nil && maybeAssign.IsAssign() &&
		maybeAssign.First().IsName() && maybeAssign.Parent() != nil &&
		maybeAssign.Parent().IsExprResult()
	if !isFillingAnAlias || !r.currentScript.isModule {
		return
	}

	aliasName := maybeAssign.First().Value()

	// The alias variable must exist in scope...
	aliasVar := t.GetVar(aliasName)
	if aliasVar == nil {
		r.report(InvalidGetAlias, call)
		return
	}
	// ...and must have been initialized as `let x = goog.forwardDeclare(ns)`
	// with the exact same namespace.
	aliasRhs := ast.RValueOfLValue(aliasVar.NameNode())
	if aliasRhs == nil || !ast.IsCallTo(aliasRhs, "goog.forwardDeclare") {
		r.report(InvalidGetAlias, call)
		return
	}
	if aliasRhs.Last().Value() != namespace {
		r.report(InvalidGetAlias, call)
		return
	}

	// The forwardDeclare carries the import; the filling assignment can go.
	r.reportChangeToEnclosingScope(maybeAssign)
	maybeAssign.Parent().Detach()
}

func (r *Rewriter) recordTopLevelClassOrFunctionName(classOrFunction *ast.Node) {
	nameNode := classOrFunction.First()
	if nameNode != nil && nameNode.IsName() && nameNode.Value() != "" {
		r.currentScript.topLevelNames[nameNode.Value()] = true
	}
}

func (r *Rewriter) recordTopLevelVarNames(decl *ast.Node) {
	for _, lhs := range ast.DeclarationNames(decl) {
		r.currentScript.topLevelNames[lhs.Value()] = true
	}
}

func (r *Rewriter) rewriteShortObjectKey(n *ast.Node) {
	checkState(n.IsStringKey(), "expected a string key")
	if !n.HasChildren() {
		nameNode := ast.Name(n.Value()).SrcRef(n)
		n.AddChildToBack(nameNode)
		r.reportChangeToEnclosingScope(n)
	}
}

func (r *Rewriter) maybeRecordExportDeclaration(t *ast.Traversal, n *ast.Node) {
	if !r.currentScript.isModule || n.Value() != "exports" || !isAssignTarget(n) {
		return
	}

	checkState(r.currentScript.defaultExportRhs == nil, "multiple default exports")
	exportRhs := n.Next()
	if isNamedExportsLiteral(exportRhs) {
		areAllExportsInlinable := true
		var inlinableExports []*exportDefinition
		for key := exportRhs.First(); key != nil; key = key.Next() {
			exportName := key.Value()
			rhs := key
			if key.HasChildren() {
				rhs = key.First()
			}
			namedExport := newExportDefinition(t, exportName, rhs)
			r.currentScript.namedExports[exportName] = true
			if r.currentScript.declareLegacyNamespace ||
				!namedExport.hasInlinableName(r.currentScript.exportsToInline) {
				areAllExportsInlinable = false
			} else {
				inlinableExports = append(inlinableExports, namedExport)
			}
		}
		if areAllExportsInlinable {
			for _, export := range inlinableExports {
				r.recordExportToInline(export)
			}
			n.EnclosingStatement().Detach()
		} else {
			r.currentScript.willCreateExportsObject = true
		}
		return
	}

	// A default export always materializes the exports object as a real
	// binding, even when the right side is a plain local name; that keeps
	// exactly one `var module$exports$...` declaration per module.
	r.currentScript.defaultExportRhs = exportRhs
	r.currentScript.willCreateExportsObject = true
}

// isNamedExportsLiteral reports whether objLit is an object literal of
// unquoted keys whose values, if present, are plain names.
func isNamedExportsLiteral(objLit *ast.Node) bool {
	if objLit == nil || !objLit.IsObjectLit() || !objLit.HasChildren() {
		return false
	}
	for key := objLit.First(); key != nil; key = key.Next() {
		if !key.IsStringKey() || key.Quoted() {
			return false
		}
		if key.HasChildren() && !key.First().IsName() {
			return false
		}
	}
	return true
}

func (r *Rewriter) recordExportsPropertyAssignment(t *ast.Traversal, getProp *ast.Node) {
	if !r.currentScript.isModule {
		return
	}

	parent := getProp.Parent()
	checkState(parent.IsAssign() || parent.IsExprResult(), "export property outside assignment")

	exportsNameNode := getProp.First()
	checkState(exportsNameNode.Value() == "exports", "expected exports receiver")

	if !t.InModuleScope() {
		return
	}
	exportName := getProp.Last().Value()
	r.currentScript.namedExports[exportName] = true
	exportRhs := getProp.Next()
	namedExport := newExportDefinition(t, exportName, exportRhs)
	if !r.currentScript.declareLegacyNamespace &&
		r.currentScript.defaultExportRhs == nil &&
		namedExport.hasInlinableName(r.currentScript.exportsToInline) {
		r.recordExportToInline(namedExport)
		parent.Parent().Detach()
	}
}

func (r *Rewriter) recordExportToInline(export *exportDefinition) {
	checkState(export.hasInlinableName(r.currentScript.exportsToInline), "export is not inlinable")
	checkState(r.currentScript.exportsToInline[export.nameDecl] == nil,
		"already inlining export "+export.localName())
	r.currentScript.exportsToInline[export.nameDecl] = export
	fullExportedName := r.currentScript.binaryNamespace() + export.exportPostfix()
	r.recordNameToInline(export.localName(), fullExportedName)
}

func (r *Rewriter) recordNameToInline(aliasName, namespace string) {
	checkState(aliasName != "", "missing alias name")
	checkState(namespace != "", "missing namespace")
	checkState(r.currentScript.namesToInlineByAlias[aliasName] == "",
		"already inlining alias "+aliasName)
	r.currentScript.namesToInlineByAlias[aliasName] = namespace
}

// isExportPropertyAssignment reports whether n is the `exports.name` target
// of an export: an assignment target or a bare typedef statement. An
// assignment to `exports.name.foo` is a property write on an exported
// value, not an export.
func isExportPropertyAssignment(n *ast.Node) bool {
	target := n.First()
	return (isAssignTarget(n) || isTypedefTarget(n)) &&
		target != nil && target.IsName() && target.Value() == "exports"
}

func isAssignTarget(n *ast.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.IsAssign() && parent.First() == n
}

func isTypedefTarget(n *ast.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.IsExprResult() && parent.First() == n
}
