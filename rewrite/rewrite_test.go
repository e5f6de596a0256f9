package rewrite

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/modflat/ast"
	"github.com/rubiojr/modflat/diag"
	"github.com/rubiojr/modflat/parser"
	"github.com/rubiojr/modflat/printer"
)

// parseBatch parses sources into a root-of-scripts tree.
func parseBatch(t *testing.T, tag string, sources ...string) *ast.Node {
	t.Helper()
	root := ast.New(ast.KindRoot)
	for i, src := range sources {
		script, err := parser.ParseSource(src, fmt.Sprintf("%s%d.js", tag, i))
		require.NoError(t, err)
		root.AddChildToBack(script)
	}
	return root
}

// runRewrite processes the sources as one compilation.
func runRewrite(t *testing.T, sources ...string) (*ast.Node, *diag.Reporter) {
	t.Helper()
	root := parseBatch(t, "testcode", sources...)
	diags := diag.NewReporter()
	New(Config{Diags: diags}).Process(root)
	return root, diags
}

// assertRewritten checks that rewriting the inputs yields trees equal to the
// parsed expected sources. The comparison goes through the printer on both
// sides, so formatting and directives are normalized away.
func assertRewritten(t *testing.T, inputs, expected []string) {
	t.Helper()
	actualRoot, diags := runRewrite(t, inputs...)
	for _, d := range diags.Diagnostics() {
		if d.Type.Severity == diag.Error {
			t.Fatalf("unexpected error: %s", d)
		}
	}
	expectedRoot := parseBatch(t, "expected", expected...)
	require.Equal(t, expectedRoot.ChildCount(), actualRoot.ChildCount())

	actual := actualRoot.First()
	for want := expectedRoot.First(); want != nil; want = want.Next() {
		actual.SetDirectives(nil)
		want.SetDirectives(nil)
		assert.Equal(t, printer.Print(want), printer.Print(actual))
		actual = actual.Next()
	}
}

// assertError checks that rewriting the inputs reports the given diagnostic.
func assertError(t *testing.T, inputs []string, want *diag.Type, wantArgs ...string) {
	t.Helper()
	_, diags := runRewrite(t, inputs...)
	for _, d := range diags.Diagnostics() {
		if d.Type == want {
			if len(wantArgs) > 0 {
				assert.Equal(t, wantArgs, d.Args)
			}
			return
		}
	}
	t.Fatalf("diagnostic %s not reported; got %v", want.Key, diags.Diagnostics())
}

func TestDefaultExportOfLocalClass(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('foo.Bar');\nclass Bar {}\nexports = Bar;"},
		[]string{"class module$contents$foo$Bar_Bar {}\nvar module$exports$foo$Bar = module$contents$foo$Bar_Bar;"})
}

func TestDefaultExportOfExpression(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('a');\nexports = 1;"},
		[]string{"var module$exports$a = 1;"})
}

func TestLegacyModule(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('foo.Bar');\ngoog.module.declareLegacyNamespace();\nexports = 1;"},
		[]string{"goog.provide('foo.Bar');\nfoo.Bar = 1;"})
}

func TestRequireOfModuleIsInlined(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.module('b.B');\nexports = class {};",
			"goog.module('a');\nvar B = goog.require('b.B');\nnew B;",
		},
		[]string{
			"var module$exports$b$B = class {};",
			"var module$exports$a = {};\nnew module$exports$b$B;",
		})
}

func TestRequireInsideFunctionBecomesBinaryName(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.module('b.B');\nexports = class {};",
			"goog.module('a');\nfunction f() {\n  var C = goog.require('b.B');\n  return new C;\n}\nf();",
		},
		[]string{
			"var module$exports$b$B = class {};",
			"var module$exports$a = {};\nfunction module$contents$a_f() {\n  var C = module$exports$b$B;\n  return new C;\n}\nmodule$contents$a_f();",
		})
}

func TestRequireOfLegacyScriptKeepsBareRequire(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.provide('legacy.thing');\nlegacy.thing = {use: function() {}};",
			"goog.module('mod');\nvar thing = goog.require('legacy.thing');\nthing.use();",
		},
		[]string{
			"goog.provide('legacy.thing');\nlegacy.thing = {use: function() {}};",
			"var module$exports$mod = {};\ngoog.require('legacy.thing');\nlegacy.thing.use();",
		})
}

func TestRequireOfModuleFromPlainScript(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.module('b.B');\nexports = class {};",
			"var B = goog.require('b.B');\nnew B;",
		},
		[]string{
			"var module$exports$b$B = class {};",
			"goog.require('b.B');\nnew B;",
		})
}

func TestNamedExportsAllInlinable(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('p');\nvar a = 1, b = 2;\nexports = {a, b};"},
		[]string{"var module$exports$p = {};\nmodule$exports$p.a = 1;\nmodule$exports$p.b = 2;"})
}

func TestNamedExportsNotAllInlinableKeepObject(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('p');\nvar a = 1;\nexports = {a, b: 2};"},
		[]string{"var module$contents$p_a = 1;\nvar module$exports$p = {a: module$contents$p_a, b: 2};"})
}

func TestExportsPropertyOfInlinableName(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('p');\nfunction go() {}\nexports.go = go;\ngo();"},
		[]string{"var module$exports$p = {};\nmodule$exports$p.go = function() {};\nmodule$exports$p.go();"})
}

func TestExportsPropertyOfExpression(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('p');\nexports.count = 1 + 2;"},
		[]string{"var module$exports$p = {};\nmodule$exports$p.count = (1 + 2);"})
}

func TestDestructuringImportOfNamedExports(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.module('b');\nconst X = 1;\nconst Y = 2;\nexports = {X, Y};",
			"goog.module('a');\nconst {X, Y: Z} = goog.require('b');\nuse(X);\nnew Z;",
		},
		[]string{
			"var module$exports$b = {};\nmodule$exports$b.X = 1;\nmodule$exports$b.Y = 2;",
			"var module$exports$a = {};\nuse(module$exports$b.X);\nnew module$exports$b.Y;",
		})
}

func TestLoadModuleUnwrapping(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.loadModule(function(exports) {\n  goog.module('a');\n  exports = 1;\n  return exports;\n});"},
		[]string{"var module$exports$a = 1;"})
}

func TestForwardDeclareWithModuleGet(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.module('b.B');\nexports = class {};",
			"goog.module('a');\nlet B = goog.forwardDeclare('b.B');\nfunction f() {\n  B = goog.module.get('b.B');\n  new B;\n}\nf();",
		},
		[]string{
			"var module$exports$b$B = class {};",
			"var module$exports$a = {};\nfunction module$contents$a_f() {\n  new module$exports$b$B;\n}\nmodule$contents$a_f();",
		})
}

func TestModuleGetWithoutAliasResolvesDirectly(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.module('b.B');\nexports = class {};",
			"goog.module('a');\nfunction f() {\n  return goog.module.get('b.B');\n}\nf();",
		},
		[]string{
			"var module$exports$b$B = class {};",
			"var module$exports$a = {};\nfunction module$contents$a_f() {\n  return module$exports$b$B;\n}\nmodule$contents$a_f();",
		})
}

func TestTopLevelNamesArePrefixed(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('p');\nvar count = 0;\nfunction bump() {\n  count++;\n}\nbump();"},
		[]string{"var module$exports$p = {};\nvar module$contents$p_count = 0;\nfunction module$contents$p_bump() {\n  module$contents$p_count++;\n}\nmodule$contents$p_bump();"})
}

func TestShadowedNamesAreNotPrefixed(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('p');\nvar x = 1;\nfunction f(x) {\n  return x;\n}\nf(x);"},
		[]string{"var module$exports$p = {};\nvar module$contents$p_x = 1;\nfunction module$contents$p_f(x) {\n  return x;\n}\nmodule$contents$p_f(module$contents$p_x);"})
}

func TestShortObjectKeysAreExpanded(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('p');\nvar x = 1;\nsend({x});"},
		[]string{"var module$exports$p = {};\nvar module$contents$p_x = 1;\nsend({x: module$contents$p_x});"})
}

func TestLegacyModuleExportsProperty(t *testing.T) {
	assertRewritten(t,
		[]string{"goog.module('foo.Bar');\ngoog.module.declareLegacyNamespace();\nfunction go() {}\nexports.go = go;"},
		[]string{"goog.provide('foo.Bar');\nfunction module$contents$foo$Bar_go() {}\nfoo.Bar.go = module$contents$foo$Bar_go;"})
}

func TestMissingRequireIsReported(t *testing.T) {
	assertError(t,
		[]string{"goog.module('a');\ngoog.require('nope');"},
		MissingModuleOrProvide, "nope")
}

func TestMissingRequireStatementIsRemoved(t *testing.T) {
	root, diags := runRewrite(t, "goog.module('a');\ngoog.require('nope');")
	require.True(t, diags.HasHaltingErrors())
	// The offending statement is removed so downstream passes don't
	// re-report it.
	body := root.First().First()
	require.True(t, body.IsModuleBody())
	for stmt := body.First(); stmt != nil; stmt = stmt.Next() {
		if stmt.IsExprResult() && ast.IsCallTo(stmt.First(), "goog.require") {
			t.Fatal("goog.require statement should have been detached")
		}
	}
}

func TestLateProvideIsReported(t *testing.T) {
	assertError(t,
		[]string{
			"goog.module('a');\nvar B = goog.require('b.B');",
			"goog.module('b.B');\nexports = class {};",
		},
		LateProvideError, "b.B")
}

func TestForwardDeclareToleratesAnyOrder(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.module('a');\nlet B = goog.forwardDeclare('b.B');\nfunction f() {\n  return new B;\n}\nf();",
			"goog.module('b.B');\nexports = class {};",
		},
		[]string{
			"var module$exports$a = {};\nfunction module$contents$a_f() {\n  return new module$exports$b$B;\n}\nmodule$contents$a_f();",
			"var module$exports$b$B = class {};",
		})
}

func TestDestructuringDefaultExportIsIllegal(t *testing.T) {
	assertError(t,
		[]string{
			"goog.module('b');\nexports = class {};",
			"goog.module('a');\nconst {X} = goog.require('b');\nuse(X);",
		},
		IllegalDestructuringDefaultExport)
}

func TestDestructuringUnknownNameIsIllegal(t *testing.T) {
	assertError(t,
		[]string{
			"goog.module('b');\nconst X = 1;\nexports = {X};",
			"goog.module('a');\nconst {W} = goog.require('b');\nuse(W);",
		},
		IllegalDestructuringNotExported, "W", "b")
}

func TestDuplicateModule(t *testing.T) {
	assertError(t,
		[]string{"goog.module('a');", "goog.module('a');"},
		DuplicateModule, "a")
}

func TestDuplicateNamespaceModuleThenProvide(t *testing.T) {
	assertError(t,
		[]string{"goog.module('a');", "goog.provide('a');"},
		DuplicateNamespace, "a")
}

func TestDuplicateNamespaceProvideThenModule(t *testing.T) {
	assertError(t,
		[]string{"goog.provide('a');", "goog.module('a');"},
		DuplicateNamespace, "a")
}

func TestProvideInsideModule(t *testing.T) {
	assertError(t,
		[]string{"goog.module('a');\ngoog.provide('b');"},
		InvalidProvideCall)
}

func TestInvalidModuleNamespace(t *testing.T) {
	assertError(t,
		[]string{"goog.module(someName);"},
		InvalidModuleNamespace)
}

func TestInvalidRequireNamespace(t *testing.T) {
	assertError(t,
		[]string{"goog.module('a');\nvar x = goog.require(someName);"},
		InvalidRequireNamespace)
}

func TestInvalidForwardDeclareArity(t *testing.T) {
	assertError(t,
		[]string{"goog.module('a');\nvar x = goog.forwardDeclare('b', 'c');"},
		InvalidForwardDeclareNamespace)
}

func TestModuleGetInGlobalScope(t *testing.T) {
	assertError(t,
		[]string{"var x = goog.module.get('b');"},
		InvalidGetCallScope)
}

func TestModuleGetAliasWithoutForwardDeclare(t *testing.T) {
	assertError(t,
		[]string{
			"goog.module('b.B');\nexports = class {};",
			"goog.module('a');\nlet x = 5;\nfunction f() {\n  x = goog.module.get('b.B');\n}\nf();",
		},
		InvalidGetAlias)
}

func TestQualifiedReferenceToModule(t *testing.T) {
	assertError(t,
		[]string{
			"goog.module('b.B');\nexports = class {};",
			"goog.provide('legacy');\nvar x = b.B;",
		},
		QualifiedReferenceToGoogModule, "b.B")
}

func TestQualifiedReferenceToLegacyModuleIsAllowed(t *testing.T) {
	_, diags := runRewrite(t,
		"goog.module('b.B');\ngoog.module.declareLegacyNamespace();\nexports = class {};",
		"goog.provide('legacy');\nvar x = b.B;")
	assert.Zero(t, diags.CountOf(QualifiedReferenceToGoogModule))
}

func TestImportInliningShadowsVar(t *testing.T) {
	assertError(t,
		[]string{
			"goog.provide('legacy.ns');",
			"goog.module('a');\nvar alias = goog.require('legacy.ns');\nfunction f() {\n  var legacy = {};\n  alias.go();\n}\nf();",
		},
		ImportInliningShadowsVar, "legacy", "legacy.ns")
}

func TestUselessUseStrict(t *testing.T) {
	_, diags := runRewrite(t, "'use strict';\ngoog.module('a');")
	assert.Equal(t, 1, diags.CountOf(UselessUseStrictDirective))
	assert.False(t, diags.HasHaltingErrors())
}

func TestModuleScriptGetsStrictDirective(t *testing.T) {
	root, _ := runRewrite(t, "goog.module('a');")
	assert.True(t, root.First().HasDirective("use strict"))
}

func TestComputedPropertyExportIsInvalid(t *testing.T) {
	assertError(t,
		[]string{"goog.module('p');\nexports = {[key]: 1};"},
		InvalidExportComputedProperty)
}

func TestMultiVarRequireIsSplit(t *testing.T) {
	assertRewritten(t,
		[]string{
			"goog.module('b.B');\nexports = class {};",
			"goog.module('a');\nvar B = goog.require('b.B'), x = 1;\nnew B(x);",
		},
		[]string{
			"var module$exports$b$B = class {};",
			"var module$exports$a = {};\nvar module$contents$a_x = 1;\nnew module$exports$b$B(module$contents$a_x);",
		})
}

func TestBinaryNamespacesAreDistinct(t *testing.T) {
	_, diags := runRewrite(t,
		"goog.module('a.b');\nexports = 1;",
		"goog.module('a.c');\nexports = 2;")
	assert.False(t, diags.HasHaltingErrors())

	state := NewGlobalState()
	diags2 := diag.NewReporter()
	rw := New(Config{Diags: diags2, State: state})
	rw.Process(parseBatch(t, "distinct", "goog.module('a.b');", "goog.module('a.c');"))
	assert.NotEqual(t, state.binaryNamespace("a.b"), state.binaryNamespace("a.c"))
}

func TestNoExportsReferenceSurvives(t *testing.T) {
	root, diags := runRewrite(t,
		"goog.module('p');\nexports.a = 1;\nuse(exports.a);")
	require.False(t, diags.HasHaltingErrors())
	var sawExports bool
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n.IsName() && n.Value() == "exports" {
			sawExports = true
		}
		for c := n.First(); c != nil; c = c.Next() {
			walk(c)
		}
	}
	walk(root)
	assert.False(t, sawExports, "exports reference survived rewriting")
}

func TestIdempotentOnOwnOutput(t *testing.T) {
	first, diags := runRewrite(t,
		"goog.module('b.B');\nexports = class {};",
		"goog.module('a');\nvar B = goog.require('b.B');\nnew B;")
	require.False(t, diags.HasHaltingErrors())

	var printed []string
	for script := first.First(); script != nil; script = script.Next() {
		script.SetDirectives(nil)
		printed = append(printed, printer.Print(script))
	}

	second, diags2 := runRewrite(t, printed...)
	require.False(t, diags2.HasHaltingErrors())
	i := 0
	for script := second.First(); script != nil; script = script.Next() {
		script.SetDirectives(nil)
		assert.Equal(t, printed[i], printer.Print(script))
		i++
	}
}
