package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/modflat/ast"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	script, err := ParseSource(src, "test.js")
	require.NoError(t, err)
	return script
}

func TestGoogModuleFileGetsModuleBody(t *testing.T) {
	script := parse(t, "goog.module('a.b');\nvar x = 1;")
	require.True(t, script.HasChildren())
	body := script.First()
	assert.True(t, body.IsModuleBody())
	assert.True(t, script.Bool(ast.PropGoogModule))
	assert.Equal(t, 2, body.ChildCount())
	assert.True(t, ast.IsCallTo(body.First().First(), "goog.module"))
}

func TestPlainScriptHasNoModuleBody(t *testing.T) {
	script := parse(t, "var x = 1;\ngoog.module('late');")
	assert.False(t, script.First().IsModuleBody())
	assert.False(t, script.Bool(ast.PropGoogModule))
}

func TestDirectivePrologue(t *testing.T) {
	script := parse(t, "'use strict';\nvar x = 1;")
	assert.True(t, script.HasDirective("use strict"))
	require.Equal(t, 1, script.ChildCount())
	assert.Equal(t, ast.KindVar, script.First().Kind())
}

func TestVarDeclarationShapes(t *testing.T) {
	script := parse(t, "var a = 1, b;\nlet c = f();\nconst d = 'x';")
	children := script.Children()
	require.Equal(t, 3, len(children))

	varDecl := children[0]
	assert.Equal(t, ast.KindVar, varDecl.Kind())
	require.Equal(t, 2, varDecl.ChildCount())
	assert.Equal(t, "a", varDecl.First().Value())
	assert.Equal(t, "1", varDecl.First().First().Value())
	assert.False(t, varDecl.Last().HasChildren())

	assert.Equal(t, ast.KindLet, children[1].Kind())
	assert.Equal(t, ast.KindConst, children[2].Kind())
	assert.Equal(t, "x", children[2].First().First().Value())
}

func TestDestructuringDeclaration(t *testing.T) {
	script := parse(t, "const {a, b: c} = goog.require('pkg');")
	decl := script.First()
	require.Equal(t, ast.KindConst, decl.Kind())
	lhs := decl.First()
	require.True(t, lhs.IsDestructuringLhs())
	pattern := lhs.First()
	require.True(t, pattern.IsObjectPattern())

	keys := pattern.Children()
	require.Equal(t, 2, len(keys))
	assert.Equal(t, "a", keys[0].Value())
	assert.False(t, keys[0].HasChildren())
	assert.Equal(t, "b", keys[1].Value())
	assert.Equal(t, "c", keys[1].First().Value())

	assert.True(t, ast.IsCallTo(lhs.Last(), "goog.require"))
}

func TestMemberAndCallShapes(t *testing.T) {
	script := parse(t, "a.b.c(1, 'two');")
	call := script.First().First()
	require.True(t, call.IsCall())
	callee := call.First()
	assert.True(t, callee.MatchesQualifiedName("a.b.c"))
	assert.Equal(t, "a.b.c", callee.QualifiedName())

	args := call.Children()[1:]
	require.Equal(t, 2, len(args))
	assert.Equal(t, ast.KindNumber, args[0].Kind())
	assert.Equal(t, "two", args[1].Value())
}

func TestClassShape(t *testing.T) {
	script := parse(t, "class Foo extends Bar {\n  go() { return 1; }\n}")
	class := script.First()
	require.True(t, class.IsClass())
	assert.Equal(t, "Foo", class.First().Value())
	assert.Equal(t, "Bar", class.Second().Value())
	members := class.Last()
	require.Equal(t, ast.KindClassMembers, members.Kind())
	member := members.First()
	require.Equal(t, ast.KindMemberFunctionDef, member.Kind())
	assert.Equal(t, "go", member.Value())
	assert.True(t, member.First().IsFunction())
}

func TestObjectLiteralShapes(t *testing.T) {
	script := parse(t, "use({plain: 1, short, 'quoted': 2, [computed]: 3});")
	obj := script.First().First().Last()
	require.True(t, obj.IsObjectLit())
	entries := obj.Children()
	require.Equal(t, 4, len(entries))

	assert.Equal(t, "plain", entries[0].Value())
	assert.False(t, entries[0].Quoted())

	assert.Equal(t, "short", entries[1].Value())
	assert.False(t, entries[1].HasChildren())

	assert.Equal(t, "quoted", entries[2].Value())
	assert.True(t, entries[2].Quoted())

	assert.True(t, entries[3].IsComputedProp())
}

func TestExportsAssignShape(t *testing.T) {
	script := parse(t, "goog.module('m');\nexports = 1;\nexports.name = x;")
	body := script.First()
	stmts := body.Children()

	assign := stmts[1].First()
	require.True(t, assign.IsAssign())
	assert.Equal(t, "exports", assign.First().Value())

	propAssign := stmts[2].First()
	getProp := propAssign.First()
	require.True(t, getProp.IsGetProp())
	assert.Equal(t, "exports", getProp.First().Value())
	assert.Equal(t, "name", getProp.Second().Value())
}

func TestJSDocAttachesToStatement(t *testing.T) {
	script := parse(t, "/** @type {foo.Bar} */\nvar x = null;\n// line comment\nvar y;")
	decl := script.First()
	info := decl.JSDoc()
	require.NotNil(t, info)
	require.Equal(t, 1, len(info.TypeNodes))
	assert.Equal(t, "foo.Bar", info.TypeNodes[0].Value())

	assert.Nil(t, script.Last().JSDoc(), "line comments are not doc comments")
}

func TestJSDocTypeNodeOffsets(t *testing.T) {
	script := parse(t, "/** @type {foo.Bar} */\nvar x;")
	info := script.First().JSDoc()
	require.NotNil(t, info)
	tn := info.TypeNodes[0]
	assert.Equal(t, "foo.Bar", info.Text[tn.Pos:tn.Pos+tn.Len])

	tn.SetValue("module$exports$foo$Bar")
	assert.Equal(t, "/** @type {module$exports$foo$Bar} */", info.RenderText())
}

func TestJSDocFlags(t *testing.T) {
	script := parse(t, "/** @const */\nvar a = 1;\n/** @typedef {number} */\nvar b;\n/** @constructor */\nfunction c() {}")
	stmts := script.Children()
	assert.True(t, stmts[0].JSDoc().Const)
	assert.True(t, stmts[1].JSDoc().Typedef)
	info := stmts[2].JSDoc()
	require.NotNil(t, info)
	assert.False(t, info.Const, "@constructor is not @const")
	assert.False(t, info.Typedef)
}

func TestSyntaxErrorIsReported(t *testing.T) {
	_, err := ParseSource("var = ;", "bad.js")
	assert.Error(t, err)
}

func TestSourcePositions(t *testing.T) {
	src := "var abc = 1;"
	script := parse(t, src)
	name := script.First().First()
	assert.Equal(t, "abc", src[name.Pos:name.Pos+name.Len])
}

func TestLoadModuleStaysWrapped(t *testing.T) {
	script := parse(t, "goog.loadModule(function(exports) {\n  goog.module('a');\n  return exports;\n});")
	stmt := script.First()
	require.True(t, stmt.IsExprResult())
	call := stmt.First()
	assert.True(t, ast.IsCallTo(call, "goog.loadModule"))
	assert.True(t, call.Last().IsFunction())
}
