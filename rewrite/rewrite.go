// Package rewrite flattens goog.module files into scripts of fully
// qualified names.
//
//	goog.module('foo.Bar');
//	var Baz = goog.require('foo.Baz');
//	class Bar extends Baz {}
//	exports = Bar;
//
// becomes
//
//	class module$contents$foo$Bar_Bar extends module$exports$foo$Baz {}
//	var module$exports$foo$Bar = module$contents$foo$Bar_Bar;
//
// Module-private top level names are renamed with a content prefix, imports
// are inlined to the names they alias, exported namespaces collapse to a
// single flat binary name (or stay dotted for modules that declare a legacy
// namespace), and doc comment type references are rewritten to match.
//
// The pass runs in two phases over every script of a compilation: a
// recording phase that fills a global registry of declared namespaces, and
// an updating phase that rewrites each script against the completed
// registry. Recording must finish across all scripts before any updating
// starts, because alias and qualified-name decisions depend on the set of
// all declared namespaces.
package rewrite

import (
	"strings"

	"github.com/rubiojr/modflat/ast"
	"github.com/rubiojr/modflat/diag"
)

// ChangeTracker receives structural change notifications so later passes
// can discover invalidated scopes.
type ChangeTracker interface {
	ReportChangeToChangeScope(scopeRoot *ast.Node)
	ReportFunctionDeleted(fn *ast.Node)
}

// SymbolSink receives references to goog.module primitives and their
// namespace arguments before the pass removes them.
type SymbolSink interface {
	AddReference(n *ast.Node)
}

// Config wires a Rewriter to its collaborators. Diags is required; State
// defaults to a fresh registry; Changes and Symbols may be nil.
type Config struct {
	Diags   *diag.Reporter
	State   *GlobalState
	Changes ChangeTracker
	Symbols SymbolSink
}

// Rewriter is the pass. One Rewriter serves one compilation, including any
// number of hot-swap recompiles against the same global state.
type Rewriter struct {
	diags   *diag.Reporter
	state   *GlobalState
	changes ChangeTracker
	symbols SymbolSink

	scriptStack   []*scriptDescription
	currentScript *scriptDescription

	// Dotted namespaces of goog.provide scripts plus every dotted prefix
	// of them, consulted by the doc comment rewriter.
	legacyNamespacesAndPrefixes map[string]bool

	unrecognizedRequires []unrecognizedRequire
}

// New creates a Rewriter.
func New(cfg Config) *Rewriter {
	if cfg.Diags == nil {
		panic("rewrite: Config.Diags is required")
	}
	state := cfg.State
	if state == nil {
		state = NewGlobalState()
	}
	return &Rewriter{
		diags:                       cfg.Diags,
		state:                       state,
		changes:                     cfg.Changes,
		symbols:                     cfg.Symbols,
		legacyNamespacesAndPrefixes: map[string]bool{},
	}
}

// Process rewrites every script under root (a root node whose children are
// scripts). All scripts are recorded before any script is updated; if
// recording surfaced halting errors, updating is skipped.
func (r *Rewriter) Process(root *ast.Node) {
	if root == nil {
		return
	}
	var descriptions []*scriptDescription

	ast.Traverse(root, &unwrapLoadModule{rewriter: r})

	for script := root.First(); script != nil; script = script.Next() {
		checkState(script.IsScript(), "expected a script child")
		r.pushScript(newScriptDescription())
		r.currentScript.rootNode = script
		descriptions = append(descriptions, r.currentScript)
		ast.Traverse(script, &scriptRecorder{rewriter: r})
		r.popScript()
	}

	r.reportUnrecognizedRequires()
	if r.diags.HasHaltingErrors() {
		return
	}

	for script := root.First(); script != nil; script = script.Next() {
		r.pushScript(descriptions[0])
		descriptions = descriptions[1:]
		ast.Traverse(script, &scriptUpdater{rewriter: r})
		r.popScript()
	}
}

// HotSwapScript re-runs the pass for a single edited script. originalRoot
// identifies the previous version of the script whose registrations are
// withdrawn first.
func (r *Rewriter) HotSwapScript(scriptRoot, originalRoot *ast.Node) {
	checkState(scriptRoot.IsScript(), "expected a script")
	ast.Traverse(scriptRoot, &unwrapLoadModule{rewriter: r})

	r.state.removeRoot(originalRoot)

	r.pushScript(newScriptDescription())
	r.currentScript.rootNode = scriptRoot
	ast.Traverse(scriptRoot, &scriptRecorder{rewriter: r})

	if r.diags.HasHaltingErrors() {
		r.popScript()
		return
	}

	ast.Traverse(scriptRoot, &scriptUpdater{rewriter: r})
	r.popScript()

	r.reportUnrecognizedRequires()
}

// pushScript makes the provided description current, and attaches it as a
// child of the previous current description so nested modules carry over
// from recording into updating.
func (r *Rewriter) pushScript(script *scriptDescription) {
	r.currentScript = script
	if len(r.scriptStack) > 0 {
		r.scriptStack[len(r.scriptStack)-1].addChildScript(script)
	}
	r.scriptStack = append(r.scriptStack, script)
}

func (r *Rewriter) popScript() {
	r.scriptStack = r.scriptStack[:len(r.scriptStack)-1]
	if len(r.scriptStack) > 0 {
		r.currentScript = r.scriptStack[len(r.scriptStack)-1]
	} else {
		r.currentScript = nil
	}
}

func (r *Rewriter) report(t *diag.Type, n *ast.Node, args ...string) {
	r.diags.Report(t, n, args...)
}

func (r *Rewriter) reportChangeToEnclosingScope(n *ast.Node) {
	if r.changes == nil {
		return
	}
	if scopeRoot := n.EnclosingChangeScopeRoot(); scopeRoot != nil {
		r.changes.ReportChangeToChangeScope(scopeRoot)
	}
}

func (r *Rewriter) reportFunctionDeleted(fn *ast.Node) {
	if r.changes != nil {
		r.changes.ReportFunctionDeleted(fn)
	}
}

func (r *Rewriter) maybeAddToSymbolTable(n *ast.Node) {
	if r.symbols != nil {
		r.symbols.AddReference(n)
	}
}

// createNamespaceNode returns a fresh string node carrying a module name,
// positioned at the argument node it mirrors.
func createNamespaceNode(n *ast.Node) *ast.Node {
	node := ast.Str(n.Value()).SrcRef(n)
	node.SetBool(ast.PropIsModuleName, true)
	return node
}

type scopeType int

const (
	scopeExecContext scopeType = iota
	scopeBlock
)

// isTopLevel reports whether n sits at the top level of the current script:
// directly under its root for block-scoped forms, or anywhere in its hoist
// scope for var-scoped forms.
func (r *Rewriter) isTopLevel(t *ast.Traversal, n *ast.Node, st scopeType) bool {
	if st == scopeExecContext {
		hoist := t.ClosestHoistScope()
		return hoist != nil && hoist.Root() == r.currentScript.rootNode
	}
	return n.Parent() == r.currentScript.rootNode
}

// safeSetString renames a node in place, preserving the original name for
// diagnostics, and reports the change.
func (r *Rewriter) safeSetString(n *ast.Node, newString string) {
	if n.Value() == newString {
		return
	}
	original := n.Value()
	n.SetValue(newString)
	if n.OriginalName() == "" {
		n.SetOriginalName(original)
	}
	if r.changes != nil {
		if changeScope := n.EnclosingChangeScopeRoot(); changeScope != nil {
			r.changes.ReportChangeToChangeScope(changeScope)
		}
	}
}

// safeSetMaybeQualifiedString renames a node to a possibly-dotted name.
// Flat names rename in place. Dotted names replace the name node with a
// qualified-name subtree; when the node declares a function, class, or
// var-like binding, the whole declaration is restated as an assignment to
// the qualified name.
func (r *Rewriter) safeSetMaybeQualifiedString(nameNode *ast.Node, newString string) {
	if !strings.Contains(newString, ".") {
		r.safeSetString(nameNode, newString)
		return
	}

	parent := nameNode.Parent()
	jsdoc := parent.JSDoc()
	switch parent.Kind() {
	case ast.KindFunction, ast.KindClass:
		if parent.IsStatement() && parent.First() == nameNode {
			placeholder := ast.Empty()
			parent.ReplaceWith(placeholder)
			parent.SetJSDoc(nil)
			nameNode.SetValue("")
			newStatement := ast.NewQNameDeclaration(newString, parent, jsdoc)
			newStatement.SrcRefTreeIfMissing(parent)
			placeholder.ReplaceWith(newStatement)
			r.reportChangeToEnclosingScope(newStatement)
			return
		}
	case ast.KindVar, ast.KindLet, ast.KindConst:
		var rhs *ast.Node
		if nameNode.HasChildren() {
			rhs = nameNode.Last().Detach()
		}
		newStatement := ast.NewQNameDeclaration(newString, rhs, jsdoc)
		newStatement.SrcRefTreeIfMissing(parent)
		nameLen := len(nameNode.Value())
		if nameNode.OriginalName() != "" {
			nameLen = len(nameNode.OriginalName())
		}
		retargetExportedNameLocation(newStatement, nameNode.Pos, nameLen)
		ast.ReplaceDeclarationChild(nameNode, newStatement)
		r.reportChangeToEnclosingScope(newStatement)
		return
	case ast.KindObjectPattern, ast.KindArrayPattern, ast.KindParamList:
		panic("rewrite: cannot qualify a name inside a pattern")
	}

	newQualifiedName := ast.NewQName(newString).SrcRefTree(nameNode)
	parent.ReplaceChild(nameNode, newQualifiedName)
	r.reportChangeToEnclosingScope(newQualifiedName)
}

// retargetExportedNameLocation points the property segment of a freshly
// built `NS.name = value` statement at the position of the name it
// replaces, so tooling sees the original declaration site.
func retargetExportedNameLocation(statement *ast.Node, pos, length int) {
	if !statement.HasOneChild() {
		return
	}
	assign := statement.First()
	if assign == nil || !assign.IsAssign() {
		return
	}
	getProp := assign.First()
	if getProp == nil || !getProp.IsGetProp() {
		return
	}
	for child := getProp.First(); child != nil; child = child.Next() {
		child.Pos = pos
		child.Len = length
	}
}

// exportTheEmptyBinaryNamespaceAt inserts `var module$exports$pkg = {};`
// next to atNode.
func (r *Rewriter) exportTheEmptyBinaryNamespaceAt(atNode *ast.Node, after bool) {
	if r.currentScript.declareLegacyNamespace {
		return
	}
	binaryName := ast.Name(r.currentScript.binaryNamespace())
	binaryName.SetOriginalName(r.currentScript.namespace)
	decl := ast.VarDecl(binaryName, ast.ObjectLit())
	if after {
		atNode.InsertAfter(decl)
	} else {
		atNode.InsertBefore(decl)
	}
	decl.SetBool(ast.PropIsNamespace, true)
	decl.SrcRefTree(atNode)
	decl.SetJSDoc(ast.MarkConst(decl.JSDoc()))
	r.reportChangeToEnclosingScope(decl)
	r.currentScript.hasCreatedExportObject = true
}

// checkAndSetStrictModeDirective gives module scripts a strict-mode
// directive, flagging scripts that already carry one.
func (r *Rewriter) checkAndSetStrictModeDirective(script *ast.Node) {
	checkState(script.IsScript(), "expected a script")
	if script.HasDirective("use strict") {
		r.report(UselessUseStrictDirective, script)
		return
	}
	script.SetDirectives(append([]string{"use strict"}, script.Directives()...))
}

// maybeSplitMultiVar gives a require call in a multi-binding var statement
// its own single-binding statement, so later removal or rewriting of the
// import does not disturb its neighbors.
func maybeSplitMultiVar(callNode *ast.Node) {
	binding := callNode.Parent()
	if binding == nil {
		return
	}
	statement := binding.Parent()
	if statement == nil || !statement.IsVar() || !statement.HasMoreThanOneChild() {
		return
	}
	newDecl := ast.New(ast.KindVar)
	newDecl.AddChildToBack(binding.Detach())
	statement.InsertBefore(newDecl)
}

func checkState(cond bool, msg string) {
	if !cond {
		panic("rewrite: " + msg)
	}
}
