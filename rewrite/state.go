package rewrite

import (
	"strings"

	"github.com/rubiojr/modflat/ast"
)

const (
	moduleExportsPrefix  = "module$exports$"
	moduleContentsPrefix = "module$contents$"
)

// IsModuleExport reports whether name is a mangled module exports name.
func IsModuleExport(name string) bool { return strings.HasPrefix(name, moduleExportsPrefix) }

// IsModuleContent reports whether name is a mangled module-private name.
func IsModuleContent(name string) bool { return strings.HasPrefix(name, moduleContentsPrefix) }

func toContentsPrefix(namespace string) string {
	return moduleContentsPrefix + strings.ReplaceAll(namespace, ".", "$") + "_"
}

// GlobalState survives across every script of one compilation, including
// hot-swap recompiles of individual scripts. It associates declared dotted
// namespaces with the scripts that declare them so alias and qualified-name
// decisions can consult the whole program.
type GlobalState struct {
	scriptsByNamespace     map[string]*scriptDescription
	legacyScriptNamespaces map[string]bool
	namespacesByScriptRoot map[*ast.Node][]string
}

// NewGlobalState returns an empty registry.
func NewGlobalState() *GlobalState {
	return &GlobalState{
		scriptsByNamespace:     map[string]*scriptDescription{},
		legacyScriptNamespaces: map[string]bool{},
		namespacesByScriptRoot: map[*ast.Node][]string{},
	}
}

func (s *GlobalState) containsModule(namespace string) bool {
	return s.scriptsByNamespace[namespace] != nil
}

func (s *GlobalState) isLegacyModule(namespace string) bool {
	script := s.scriptsByNamespace[namespace]
	if script == nil {
		panic("rewrite: isLegacyModule of unknown namespace " + namespace)
	}
	return script.declareLegacyNamespace
}

func (s *GlobalState) binaryNamespace(namespace string) string {
	script := s.scriptsByNamespace[namespace]
	if script == nil {
		return ""
	}
	return script.binaryNamespace()
}

// exportedNamespaceOrScript resolves a namespace to the name importers see:
// the dotted name itself for legacy scripts and legacy modules, the binary
// name for regular modules, or "" when nothing declares it.
func (s *GlobalState) exportedNamespaceOrScript(namespace string) string {
	if s.legacyScriptNamespaces[namespace] {
		return namespace
	}
	script := s.scriptsByNamespace[namespace]
	if script == nil {
		return ""
	}
	return script.exportedNamespace()
}

func (s *GlobalState) register(scriptRoot *ast.Node, namespace string, script *scriptDescription) {
	if script != nil {
		s.scriptsByNamespace[namespace] = script
	} else {
		s.legacyScriptNamespaces[namespace] = true
	}
	s.namespacesByScriptRoot[scriptRoot] = append(s.namespacesByScriptRoot[scriptRoot], namespace)
}

// removeRoot withdraws every namespace the given script root registered, so
// a hot-swap edit of that script can re-register cleanly.
func (s *GlobalState) removeRoot(root *ast.Node) {
	for _, namespace := range s.namespacesByScriptRoot[root] {
		delete(s.scriptsByNamespace, namespace)
		delete(s.legacyScriptNamespaces, namespace)
	}
	delete(s.namespacesByScriptRoot, root)
}

// scriptDescription is the per-script record built by the recorder and
// consumed by the updater. A plain script gets one; a module gets one for
// the script plus one for the module body, stacked while in scope.
type scriptDescription struct {
	isModule               bool
	declareLegacyNamespace bool
	namespace              string // "a.b.c"
	contentsPrefix         string // "module$contents$a$b$c_"

	topLevelNames       map[string]bool
	childScripts        []*scriptDescription
	namesToInlineByAlias map[string]string

	// Transient updating state.
	willCreateExportsObject bool
	hasCreatedExportObject  bool
	defaultExportRhs        *ast.Node
	defaultExportLocalName  string
	namedExports            map[string]bool
	exportsToInline         map[*ast.Var]*exportDefinition

	// The script or module body whose immediate children are the top
	// level statements.
	rootNode *ast.Node
}

func newScriptDescription() *scriptDescription {
	return &scriptDescription{
		topLevelNames:        map[string]bool{},
		namesToInlineByAlias: map[string]string{},
		namedExports:         map[string]bool{},
		exportsToInline:      map[*ast.Var]*exportDefinition{},
	}
}

func (d *scriptDescription) addChildScript(child *scriptDescription) {
	d.childScripts = append(d.childScripts, child)
}

func (d *scriptDescription) removeFirstChildScript() *scriptDescription {
	child := d.childScripts[0]
	d.childScripts = d.childScripts[1:]
	return child
}

// binaryNamespace is "module$exports$a$b$c" for regular modules and "" for
// legacy modules and plain scripts.
func (d *scriptDescription) binaryNamespace() string {
	if !d.isModule || d.declareLegacyNamespace {
		return ""
	}
	return moduleExportsPrefix + strings.ReplaceAll(d.namespace, ".", "$")
}

func (d *scriptDescription) exportedNamespace() string {
	if d.declareLegacyNamespace {
		return d.namespace
	}
	return d.binaryNamespace()
}

// exportDefinition describes one export site.
type exportDefinition struct {
	exportName string   // "" for the default export
	rhs        *ast.Node // nil for @typedef exports
	nameDecl   *ast.Var  // nil unless the rhs is a single name
}

func newExportDefinition(t *ast.Traversal, name string, rhs *ast.Node) *exportDefinition {
	def := &exportDefinition{exportName: name, rhs: rhs}
	if rhs != nil && (rhs.IsName() || rhs.IsStringKey()) {
		def.nameDecl = t.GetVar(rhs.Value())
	}
	return def
}

func (def *exportDefinition) exportPostfix() string {
	if def.exportName == "" {
		return ""
	}
	return "." + def.exportName
}

func (def *exportDefinition) localName() string {
	return def.nameDecl.Name()
}

// hasInlinableName decides whether the exported local can simply be renamed
// to the exported name at its declaration instead of emitting an
// assignment: the binding must come from a plain declaration form, must not
// already be claimed by another export, and must not be initialized by one
// of the import primitives (their calls are rewritten separately).
func (def *exportDefinition) hasInlinableName(exported map[*ast.Var]*exportDefinition) bool {
	if def.nameDecl == nil || exported[def.nameDecl] != nil {
		return false
	}
	declParent := def.nameDecl.DeclParent()
	if declParent == nil || !isInlinableDeclKind(declParent.Kind()) {
		return false
	}
	initial := def.nameDecl.InitialValue()
	if initial == nil || !initial.IsCall() {
		return true
	}
	method := initial.First()
	if !method.IsGetProp() {
		return true
	}
	base := method.First()
	if !base.IsName() || base.Value() != "goog" {
		return true
	}
	switch method.Second().Value() {
	case "require", "forwardDeclare", "getMsg":
		return false
	}
	return true
}

func isInlinableDeclKind(k ast.Kind) bool {
	switch k {
	case ast.KindVar, ast.KindLet, ast.KindConst, ast.KindFunction, ast.KindClass:
		return true
	}
	return false
}

// unrecognizedRequire captures an import whose target was unknown at record
// time, so it can be classified after the whole compilation is recorded.
type unrecognizedRequire struct {
	requireNode   *ast.Node
	namespace     string
	mustBeOrdered bool
}
