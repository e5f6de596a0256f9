package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/modflat/ast"
	"github.com/rubiojr/modflat/diag"
	"github.com/rubiojr/modflat/parser"
	"github.com/rubiojr/modflat/printer"
)

func TestHotSwapReplacesRegistration(t *testing.T) {
	state := NewGlobalState()
	diags := diag.NewReporter()
	root := parseBatch(t, "swap",
		"goog.module('b.B');\nexports = class {};",
		"goog.module('a');\nvar B = goog.require('b.B');\nnew B;")
	New(Config{Diags: diags, State: state}).Process(root)
	require.False(t, diags.HasHaltingErrors())

	// Edit module b.B: same namespace, new default export. Without the
	// removeRoot step this would be a duplicate module.
	original := root.First()
	edited, err := parser.ParseSource("goog.module('b.B');\nexports = function() {};", "swap0.js")
	require.NoError(t, err)
	original.ReplaceWith(edited)

	swapDiags := diag.NewReporter()
	New(Config{Diags: swapDiags, State: state}).HotSwapScript(edited, original)
	assert.Zero(t, swapDiags.CountOf(DuplicateModule))
	assert.False(t, swapDiags.HasHaltingErrors())

	edited.SetDirectives(nil)
	assert.Equal(t, "var module$exports$b$B = function() {};\n", printer.Print(edited))
}

func TestHotSwapOfUneditedSourceIsClean(t *testing.T) {
	const src = "goog.module('only');\nexports = 1;"
	state := NewGlobalState()
	diags := diag.NewReporter()
	root := parseBatch(t, "swapsame", src)
	New(Config{Diags: diags, State: state}).Process(root)
	require.False(t, diags.HasHaltingErrors())

	original := root.First()
	edited, err := parser.ParseSource(src, "swapsame0.js")
	require.NoError(t, err)
	original.ReplaceWith(edited)

	swapDiags := diag.NewReporter()
	New(Config{Diags: swapDiags, State: state}).HotSwapScript(edited, original)
	assert.False(t, swapDiags.HasHaltingErrors())
	edited.SetDirectives(nil)
	assert.Equal(t, "var module$exports$only = 1;\n", printer.Print(edited))
}

func TestHotSwapReportsOnlyNewProblems(t *testing.T) {
	state := NewGlobalState()
	diags := diag.NewReporter()
	root := parseBatch(t, "swapmissing", "goog.module('a');\ngoog.require('gone');")
	New(Config{Diags: diags, State: state}).Process(root)
	require.Equal(t, 1, diags.CountOf(MissingModuleOrProvide))

	// Re-swapping a now-clean version of the script reports nothing; the
	// unrecognized-require queue was drained by the first run.
	original := root.First()
	edited, err := parser.ParseSource("goog.module('a');", "swapmissing0.js")
	require.NoError(t, err)
	original.ReplaceWith(edited)

	swapDiags := diag.NewReporter()
	New(Config{Diags: swapDiags, State: state}).HotSwapScript(edited, original)
	assert.Zero(t, swapDiags.CountOf(MissingModuleOrProvide))
}

func TestGlobalStateRemoveRoot(t *testing.T) {
	state := NewGlobalState()
	script := ast.NewValue(ast.KindScript, "x.js")
	desc := newScriptDescription()
	desc.isModule = true
	desc.namespace = "x.y"
	state.register(script, "x.y", desc)
	require.True(t, state.containsModule("x.y"))

	state.removeRoot(script)
	assert.False(t, state.containsModule("x.y"))
	assert.Empty(t, state.exportedNamespaceOrScript("x.y"))
}
