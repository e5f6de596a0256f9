// Package parser turns JavaScript source text into the tree the rewriter
// operates on. Parsing proper is delegated to tree-sitter's JavaScript
// grammar; this package converts the concrete syntax tree into token-kind
// nodes, extracts the directive prologue, wraps goog.module files in a
// module body, and attaches doc comments to the statements they document.
package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/rubiojr/modflat/ast"
)

// ParseFile reads a JavaScript source file and parses it into a script node.
func ParseFile(filename string) (*ast.Node, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return ParseSource(string(src), filename)
}

// ParseSource parses raw JavaScript source into a script node. The name
// parameter labels the script for error messages and diagnostics.
func ParseSource(source, name string) (*ast.Node, error) {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%s: syntax error near byte %d", name, firstErrorOffset(root))
	}

	c := &converter{src: []byte(source), name: name}
	script := c.convertProgram(root)
	if len(c.errs) > 0 {
		return nil, fmt.Errorf("%s: %s", name, c.errs[0])
	}
	return script, nil
}

func firstErrorOffset(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartByte())
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.HasError() {
			return firstErrorOffset(child)
		}
	}
	return int(n.StartByte())
}

type converter struct {
	src  []byte
	name string
	errs []string
}

func (c *converter) errorf(ts *sitter.Node, format string, args ...any) *ast.Node {
	c.errs = append(c.errs, fmt.Sprintf(format+" at byte %d", append(args, int(ts.StartByte()))...))
	return c.pos(ts, ast.Empty())
}

func (c *converter) text(ts *sitter.Node) string {
	return string(c.src[ts.StartByte():ts.EndByte()])
}

func (c *converter) pos(ts *sitter.Node, n *ast.Node) *ast.Node {
	n.Pos = int(ts.StartByte())
	n.Len = int(ts.EndByte() - ts.StartByte())
	return n
}

func (c *converter) convertProgram(ts *sitter.Node) *ast.Node {
	script := c.pos(ts, ast.NewValue(ast.KindScript, c.name))
	stmts := c.convertStatementList(ts)

	// Peel the directive prologue off the front.
	var directives []string
	for len(stmts) > 0 && isDirective(stmts[0]) {
		directives = append(directives, stmts[0].First().Value())
		stmts = stmts[1:]
	}
	if directives != nil {
		script.SetDirectives(directives)
	}

	// A file that opens with goog.module(...) holds a module body.
	if len(stmts) > 0 && stmts[0].IsExprResult() && ast.IsCallTo(stmts[0].First(), "goog.module") {
		body := ast.New(ast.KindModuleBody)
		body.SrcRef(script)
		for _, s := range stmts {
			body.AddChildToBack(s)
		}
		script.AddChildToBack(body)
		script.SetBool(ast.PropGoogModule, true)
		return script
	}
	for _, s := range stmts {
		script.AddChildToBack(s)
	}
	return script
}

func isDirective(stmt *ast.Node) bool {
	return stmt.IsExprResult() && stmt.First() != nil && stmt.First().IsString()
}

// convertStatementList converts the statement children of a container,
// attaching doc comments to the statement that follows them.
func (c *converter) convertStatementList(ts *sitter.Node) []*ast.Node {
	var stmts []*ast.Node
	var pending *ast.JSDocInfo
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if child.Type() == "comment" {
			if info := c.parseDocComment(child); info != nil {
				pending = info
			}
			continue
		}
		stmt := c.convertStatement(child)
		if stmt == nil {
			continue
		}
		if pending != nil {
			stmt.SetJSDoc(pending)
			pending = nil
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

func (c *converter) convertStatement(ts *sitter.Node) *ast.Node {
	switch ts.Type() {
	case "expression_statement":
		expr := c.convertExpr(ts.NamedChild(0))
		return c.pos(ts, ast.ExprResult(expr))

	case "variable_declaration":
		return c.convertDeclaration(ts, ast.KindVar)

	case "lexical_declaration":
		kind := ast.KindLet
		if strings.HasPrefix(c.text(ts), "const") {
			kind = ast.KindConst
		}
		return c.convertDeclaration(ts, kind)

	case "function_declaration", "generator_function_declaration":
		return c.convertFunction(ts)

	case "class_declaration":
		return c.convertClass(ts)

	case "statement_block":
		block := c.pos(ts, ast.New(ast.KindBlock))
		for _, s := range c.convertStatementList(ts) {
			block.AddChildToBack(s)
		}
		return block

	case "return_statement":
		ret := c.pos(ts, ast.New(ast.KindReturn))
		if ts.NamedChildCount() > 0 {
			ret.AddChildToBack(c.convertExpr(ts.NamedChild(0)))
		}
		return ret

	case "if_statement":
		n := c.pos(ts, ast.New(ast.KindIf))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("condition")))
		n.AddChildToBack(c.asBlock(ts.ChildByFieldName("consequence")))
		if alt := ts.ChildByFieldName("alternative"); alt != nil {
			// alternative is an else_clause wrapping the statement.
			inner := alt.NamedChild(0)
			if inner != nil && inner.Type() == "if_statement" {
				n.AddChildToBack(c.convertStatement(inner))
			} else if inner != nil {
				n.AddChildToBack(c.asBlock(inner))
			}
		}
		return n

	case "for_statement":
		n := c.pos(ts, ast.New(ast.KindFor))
		n.AddChildToBack(c.forClause(ts.ChildByFieldName("initializer")))
		n.AddChildToBack(c.forExpr(ts.ChildByFieldName("condition")))
		n.AddChildToBack(c.forExpr(ts.ChildByFieldName("increment")))
		n.AddChildToBack(c.asBlock(ts.ChildByFieldName("body")))
		return n

	case "for_in_statement":
		kind := ast.KindForIn
		if op := ts.ChildByFieldName("operator"); op != nil && c.text(op) == "of" {
			kind = ast.KindForOf
		}
		n := c.pos(ts, ast.New(kind))
		left := c.forClause(ts.ChildByFieldName("left"))
		if declKind := ts.ChildByFieldName("kind"); declKind != nil {
			decl := ast.New(declWord(c.text(declKind)))
			decl.SrcRef(left)
			if left.IsName() || left.Kind() == ast.KindObjectPattern || left.Kind() == ast.KindArrayPattern {
				if left.IsName() {
					decl.AddChildToBack(left)
				} else {
					lhs := ast.New(ast.KindDestructuringLhs)
					lhs.AddChildToBack(left)
					decl.AddChildToBack(lhs)
				}
				left = decl
			}
		}
		n.AddChildToBack(left)
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("right")))
		n.AddChildToBack(c.asBlock(ts.ChildByFieldName("body")))
		return n

	case "while_statement":
		n := c.pos(ts, ast.New(ast.KindWhile))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("condition")))
		n.AddChildToBack(c.asBlock(ts.ChildByFieldName("body")))
		return n

	case "do_statement":
		n := c.pos(ts, ast.New(ast.KindDo))
		n.AddChildToBack(c.asBlock(ts.ChildByFieldName("body")))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("condition")))
		return n

	case "switch_statement":
		n := c.pos(ts, ast.New(ast.KindSwitch))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("condition")))
		body := ts.ChildByFieldName("body")
		for i := 0; i < int(body.NamedChildCount()); i++ {
			cs := body.NamedChild(i)
			switch cs.Type() {
			case "switch_case":
				caseNode := c.pos(cs, ast.New(ast.KindCase))
				caseNode.AddChildToBack(c.convertExpr(cs.ChildByFieldName("value")))
				caseNode.AddChildToBack(c.caseBody(cs))
				n.AddChildToBack(caseNode)
			case "switch_default":
				caseNode := c.pos(cs, ast.New(ast.KindDefaultCase))
				caseNode.AddChildToBack(c.caseBody(cs))
				n.AddChildToBack(caseNode)
			}
		}
		return n

	case "break_statement", "continue_statement":
		kind := ast.KindBreak
		if ts.Type() == "continue_statement" {
			kind = ast.KindContinue
		}
		n := c.pos(ts, ast.New(kind))
		if label := ts.ChildByFieldName("label"); label != nil {
			n.SetValue(c.text(label))
		}
		return n

	case "throw_statement":
		n := c.pos(ts, ast.New(ast.KindThrow))
		n.AddChildToBack(c.convertExpr(ts.NamedChild(0)))
		return n

	case "try_statement":
		n := c.pos(ts, ast.New(ast.KindTry))
		n.AddChildToBack(c.asBlock(ts.ChildByFieldName("body")))
		if handler := ts.ChildByFieldName("handler"); handler != nil {
			catch := c.pos(handler, ast.New(ast.KindCatch))
			if param := handler.ChildByFieldName("parameter"); param != nil {
				catch.AddChildToBack(c.convertPattern(param))
			} else {
				catch.AddChildToBack(ast.Empty())
			}
			catch.AddChildToBack(c.asBlock(handler.ChildByFieldName("body")))
			n.AddChildToBack(catch)
		}
		if finalizer := ts.ChildByFieldName("finalizer"); finalizer != nil {
			fin := c.pos(finalizer, ast.New(ast.KindFinally))
			fin.AddChildToBack(c.asBlock(finalizer.NamedChild(0)))
			n.AddChildToBack(fin)
		}
		return n

	case "labeled_statement":
		n := c.pos(ts, ast.NewValue(ast.KindLabel, c.text(ts.ChildByFieldName("label"))))
		n.AddChildToBack(c.convertStatement(ts.ChildByFieldName("body")))
		return n

	case "empty_statement":
		return c.pos(ts, ast.Empty())

	default:
		return c.errorf(ts, "unsupported statement %q", ts.Type())
	}
}

func declWord(word string) ast.Kind {
	switch word {
	case "let":
		return ast.KindLet
	case "const":
		return ast.KindConst
	}
	return ast.KindVar
}

// forClause converts a for-loop initializer or for-in left side, which may
// be a declaration, an expression, or absent.
func (c *converter) forClause(ts *sitter.Node) *ast.Node {
	if ts == nil {
		return ast.Empty()
	}
	switch ts.Type() {
	case "variable_declaration":
		return c.convertDeclaration(ts, ast.KindVar)
	case "lexical_declaration":
		kind := ast.KindLet
		if strings.HasPrefix(c.text(ts), "const") {
			kind = ast.KindConst
		}
		return c.convertDeclaration(ts, kind)
	case "object_pattern", "array_pattern":
		return c.convertPattern(ts)
	case "expression_statement":
		return c.convertExpr(ts.NamedChild(0))
	case "empty_statement":
		return c.pos(ts, ast.Empty())
	}
	return c.convertExpr(ts)
}

func (c *converter) forExpr(ts *sitter.Node) *ast.Node {
	if ts == nil {
		return ast.Empty()
	}
	switch ts.Type() {
	case "expression_statement":
		return c.convertExpr(ts.NamedChild(0))
	case "empty_statement":
		return c.pos(ts, ast.Empty())
	}
	return c.convertExpr(ts)
}

func (c *converter) caseBody(cs *sitter.Node) *ast.Node {
	block := ast.New(ast.KindBlock)
	for i := 0; i < int(cs.NamedChildCount()); i++ {
		child := cs.NamedChild(i)
		if value := cs.ChildByFieldName("value"); value != nil && child.StartByte() == value.StartByte() {
			continue
		}
		if child.Type() == "comment" {
			continue
		}
		if stmt := c.convertStatement(child); stmt != nil {
			block.AddChildToBack(stmt)
		}
	}
	return block
}

// asBlock converts a statement and guarantees a block wrapper, matching the
// tree shape downstream passes expect for control-flow bodies.
func (c *converter) asBlock(ts *sitter.Node) *ast.Node {
	if ts == nil {
		return ast.New(ast.KindBlock)
	}
	stmt := c.convertStatement(ts)
	if stmt.IsBlock() {
		return stmt
	}
	block := ast.New(ast.KindBlock).SrcRef(stmt)
	block.AddChildToBack(stmt)
	return block
}

func (c *converter) convertDeclaration(ts *sitter.Node, kind ast.Kind) *ast.Node {
	decl := c.pos(ts, ast.New(kind))
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		d := ts.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nameTs := d.ChildByFieldName("name")
		valueTs := d.ChildByFieldName("value")
		switch nameTs.Type() {
		case "identifier":
			name := c.pos(nameTs, ast.Name(c.text(nameTs)))
			if valueTs != nil {
				name.AddChildToBack(c.convertExpr(valueTs))
			}
			decl.AddChildToBack(name)
		case "object_pattern", "array_pattern":
			lhs := c.pos(d, ast.New(ast.KindDestructuringLhs))
			lhs.AddChildToBack(c.convertPattern(nameTs))
			if valueTs != nil {
				lhs.AddChildToBack(c.convertExpr(valueTs))
			}
			decl.AddChildToBack(lhs)
		default:
			c.errorf(nameTs, "unsupported binding %q", nameTs.Type())
		}
	}
	return decl
}

func (c *converter) convertPattern(ts *sitter.Node) *ast.Node {
	switch ts.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return c.pos(ts, ast.Name(c.text(ts)))

	case "object_pattern":
		pattern := c.pos(ts, ast.New(ast.KindObjectPattern))
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			entry := ts.NamedChild(i)
			switch entry.Type() {
			case "shorthand_property_identifier_pattern":
				pattern.AddChildToBack(c.pos(entry, ast.NewValue(ast.KindStringKey, c.text(entry))))
			case "pair_pattern":
				keyTs := entry.ChildByFieldName("key")
				key := c.pos(keyTs, ast.NewValue(ast.KindStringKey, c.keyText(keyTs)))
				if keyTs.Type() == "string" {
					key.SetQuoted(true)
				}
				key.AddChildToBack(c.convertPattern(entry.ChildByFieldName("value")))
				pattern.AddChildToBack(key)
			case "rest_pattern":
				rest := c.pos(entry, ast.New(ast.KindRest))
				rest.AddChildToBack(c.convertPattern(entry.NamedChild(0)))
				pattern.AddChildToBack(rest)
			case "object_assignment_pattern":
				left := entry.ChildByFieldName("left")
				key := c.pos(left, ast.NewValue(ast.KindStringKey, c.text(left)))
				dv := ast.New(ast.KindDefaultValue)
				dv.AddChildToBack(c.pos(left, ast.Name(c.text(left))))
				dv.AddChildToBack(c.convertExpr(entry.ChildByFieldName("right")))
				key.AddChildToBack(dv)
				pattern.AddChildToBack(key)
			case "comment":
			default:
				c.errorf(entry, "unsupported pattern entry %q", entry.Type())
			}
		}
		return pattern

	case "array_pattern":
		pattern := c.pos(ts, ast.New(ast.KindArrayPattern))
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			entry := ts.NamedChild(i)
			switch entry.Type() {
			case "rest_pattern":
				rest := c.pos(entry, ast.New(ast.KindRest))
				rest.AddChildToBack(c.convertPattern(entry.NamedChild(0)))
				pattern.AddChildToBack(rest)
			case "assignment_pattern":
				pattern.AddChildToBack(c.convertPattern(entry))
			case "comment":
			default:
				pattern.AddChildToBack(c.convertPattern(entry))
			}
		}
		return pattern

	case "assignment_pattern":
		dv := c.pos(ts, ast.New(ast.KindDefaultValue))
		dv.AddChildToBack(c.convertPattern(ts.ChildByFieldName("left")))
		dv.AddChildToBack(c.convertExpr(ts.ChildByFieldName("right")))
		return dv

	case "rest_pattern":
		rest := c.pos(ts, ast.New(ast.KindRest))
		rest.AddChildToBack(c.convertPattern(ts.NamedChild(0)))
		return rest
	}
	return c.errorf(ts, "unsupported pattern %q", ts.Type())
}

func (c *converter) keyText(ts *sitter.Node) string {
	if ts.Type() == "string" {
		return c.unquote(ts)
	}
	return c.text(ts)
}

func (c *converter) convertFunction(ts *sitter.Node) *ast.Node {
	fn := c.pos(ts, ast.New(ast.KindFunction))
	if nameTs := ts.ChildByFieldName("name"); nameTs != nil {
		fn.AddChildToBack(c.pos(nameTs, ast.Name(c.text(nameTs))))
	} else {
		fn.AddChildToBack(ast.Name(""))
	}
	fn.AddChildToBack(c.convertParams(ts.ChildByFieldName("parameters")))
	fn.AddChildToBack(c.asBlock(ts.ChildByFieldName("body")))
	return fn
}

func (c *converter) convertParams(ts *sitter.Node) *ast.Node {
	params := ast.New(ast.KindParamList)
	if ts == nil {
		return params
	}
	c.pos(ts, params)
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		p := ts.NamedChild(i)
		if p.Type() == "comment" {
			continue
		}
		params.AddChildToBack(c.convertPattern(p))
	}
	return params
}

func (c *converter) convertClass(ts *sitter.Node) *ast.Node {
	class := c.pos(ts, ast.New(ast.KindClass))
	if nameTs := ts.ChildByFieldName("name"); nameTs != nil {
		class.AddChildToBack(c.pos(nameTs, ast.Name(c.text(nameTs))))
	} else {
		class.AddChildToBack(ast.Empty())
	}
	heritage := ast.Empty()
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if child.Type() == "class_heritage" {
			heritage = c.convertExpr(child.NamedChild(0))
		}
	}
	class.AddChildToBack(heritage)

	members := ast.New(ast.KindClassMembers)
	if body := ts.ChildByFieldName("body"); body != nil {
		var pending *ast.JSDocInfo
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "comment":
				if info := c.parseDocComment(member); info != nil {
					pending = info
				}
				continue
			case "method_definition":
				def := c.pos(member, ast.NewValue(ast.KindMemberFunctionDef, c.text(member.ChildByFieldName("name"))))
				fn := ast.New(ast.KindFunction).SrcRef(def)
				fn.AddChildToBack(ast.Name(""))
				fn.AddChildToBack(c.convertParams(member.ChildByFieldName("parameters")))
				fn.AddChildToBack(c.asBlock(member.ChildByFieldName("body")))
				def.AddChildToBack(fn)
				if pending != nil {
					def.SetJSDoc(pending)
					pending = nil
				}
				members.AddChildToBack(def)
			case "field_definition", "public_field_definition":
				key := c.pos(member, ast.NewValue(ast.KindStringKey, c.text(member.ChildByFieldName("property"))))
				if value := member.ChildByFieldName("value"); value != nil {
					key.AddChildToBack(c.convertExpr(value))
				}
				if pending != nil {
					key.SetJSDoc(pending)
					pending = nil
				}
				members.AddChildToBack(key)
			}
		}
	}
	class.AddChildToBack(members)
	return class
}

func (c *converter) convertExpr(ts *sitter.Node) *ast.Node {
	if ts == nil {
		return ast.Empty()
	}
	switch ts.Type() {
	case "identifier", "property_identifier", "shorthand_property_identifier", "statement_identifier", "private_property_identifier":
		return c.pos(ts, ast.Name(c.text(ts)))

	case "this":
		return c.pos(ts, ast.New(ast.KindThis))

	case "super":
		return c.pos(ts, ast.Name("super"))

	case "number":
		return c.pos(ts, ast.NewValue(ast.KindNumber, c.text(ts)))

	case "string":
		return c.pos(ts, ast.Str(c.unquote(ts)))

	case "template_string":
		return c.pos(ts, ast.NewValue(ast.KindTemplate, c.text(ts)))

	case "regex":
		return c.pos(ts, ast.NewValue(ast.KindRegExp, c.text(ts)))

	case "true":
		return c.pos(ts, ast.New(ast.KindTrue))
	case "false":
		return c.pos(ts, ast.New(ast.KindFalse))
	case "null":
		return c.pos(ts, ast.New(ast.KindNull))
	case "undefined":
		return c.pos(ts, ast.Name("undefined"))

	case "parenthesized_expression":
		return c.convertExpr(ts.NamedChild(0))

	case "call_expression":
		call := c.pos(ts, ast.New(ast.KindCall))
		call.AddChildToBack(c.convertExpr(ts.ChildByFieldName("function")))
		c.addArguments(call, ts.ChildByFieldName("arguments"))
		return call

	case "new_expression":
		n := c.pos(ts, ast.New(ast.KindNew))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("constructor")))
		c.addArguments(n, ts.ChildByFieldName("arguments"))
		return n

	case "member_expression":
		obj := c.convertExpr(ts.ChildByFieldName("object"))
		prop := ts.ChildByFieldName("property")
		n := c.pos(ts, ast.New(ast.KindGetProp))
		n.AddChildToBack(obj)
		n.AddChildToBack(c.pos(prop, ast.Str(c.text(prop))))
		return n

	case "subscript_expression":
		n := c.pos(ts, ast.New(ast.KindGetElem))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("object")))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("index")))
		return n

	case "assignment_expression":
		n := c.pos(ts, ast.NewValue(ast.KindAssign, "="))
		n.AddChildToBack(c.assignTarget(ts.ChildByFieldName("left")))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("right")))
		return n

	case "augmented_assignment_expression":
		n := c.pos(ts, ast.NewValue(ast.KindAssign, c.text(ts.ChildByFieldName("operator"))))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("left")))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("right")))
		return n

	case "binary_expression", "logical_expression":
		n := c.pos(ts, ast.NewValue(ast.KindBinaryOp, c.text(ts.ChildByFieldName("operator"))))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("left")))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("right")))
		return n

	case "unary_expression":
		n := c.pos(ts, ast.NewValue(ast.KindUnaryOp, c.text(ts.ChildByFieldName("operator"))))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("argument")))
		return n

	case "update_expression":
		arg := ts.ChildByFieldName("argument")
		op := ts.ChildByFieldName("operator")
		n := c.pos(ts, ast.NewValue(ast.KindUpdateOp, c.text(op)))
		if op.StartByte() < arg.StartByte() {
			n.SetBool(ast.PropPrefixOp, true)
		}
		n.AddChildToBack(c.convertExpr(arg))
		return n

	case "await_expression":
		n := c.pos(ts, ast.NewValue(ast.KindUnaryOp, "await"))
		n.AddChildToBack(c.convertExpr(ts.NamedChild(0)))
		return n

	case "yield_expression":
		n := c.pos(ts, ast.NewValue(ast.KindUnaryOp, "yield"))
		if ts.NamedChildCount() > 0 {
			n.AddChildToBack(c.convertExpr(ts.NamedChild(0)))
		}
		return n

	case "ternary_expression":
		n := c.pos(ts, ast.New(ast.KindHook))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("condition")))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("consequence")))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("alternative")))
		return n

	case "sequence_expression":
		n := c.pos(ts, ast.New(ast.KindComma))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("left")))
		n.AddChildToBack(c.convertExpr(ts.ChildByFieldName("right")))
		return n

	case "object":
		return c.convertObject(ts)

	case "array":
		arr := c.pos(ts, ast.New(ast.KindArrayLit))
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			el := ts.NamedChild(i)
			if el.Type() == "comment" {
				continue
			}
			arr.AddChildToBack(c.convertExpr(el))
		}
		return arr

	case "spread_element":
		n := c.pos(ts, ast.New(ast.KindSpread))
		n.AddChildToBack(c.convertExpr(ts.NamedChild(0)))
		return n

	case "function", "function_expression", "generator_function":
		return c.convertFunction(ts)

	case "arrow_function":
		arrow := c.pos(ts, ast.New(ast.KindArrow))
		if params := ts.ChildByFieldName("parameters"); params != nil {
			arrow.AddChildToBack(c.convertParams(params))
		} else if param := ts.ChildByFieldName("parameter"); param != nil {
			list := ast.New(ast.KindParamList)
			list.AddChildToBack(c.convertPattern(param))
			arrow.AddChildToBack(list)
		} else {
			arrow.AddChildToBack(ast.New(ast.KindParamList))
		}
		body := ts.ChildByFieldName("body")
		if body != nil && body.Type() == "statement_block" {
			arrow.AddChildToBack(c.asBlock(body))
		} else {
			arrow.AddChildToBack(c.convertExpr(body))
		}
		return arrow

	case "class":
		return c.convertClass(ts)
	}
	return c.errorf(ts, "unsupported expression %q", ts.Type())
}

// assignTarget converts the left side of an assignment, which may be a
// destructuring pattern.
func (c *converter) assignTarget(ts *sitter.Node) *ast.Node {
	switch ts.Type() {
	case "object_pattern", "array_pattern":
		return c.convertPattern(ts)
	}
	return c.convertExpr(ts)
}

func (c *converter) addArguments(call *ast.Node, args *sitter.Node) {
	if args == nil {
		return
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "comment" {
			continue
		}
		call.AddChildToBack(c.convertExpr(arg))
	}
}

func (c *converter) convertObject(ts *sitter.Node) *ast.Node {
	obj := c.pos(ts, ast.New(ast.KindObjectLit))
	var pending *ast.JSDocInfo
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		entry := ts.NamedChild(i)
		var node *ast.Node
		switch entry.Type() {
		case "comment":
			if info := c.parseDocComment(entry); info != nil {
				pending = info
			}
			continue
		case "pair":
			keyTs := entry.ChildByFieldName("key")
			if keyTs.Type() == "computed_property_name" {
				node = c.pos(entry, ast.New(ast.KindComputedProp))
				node.AddChildToBack(c.convertExpr(keyTs.NamedChild(0)))
				node.AddChildToBack(c.convertExpr(entry.ChildByFieldName("value")))
			} else {
				node = c.pos(keyTs, ast.NewValue(ast.KindStringKey, c.keyText(keyTs)))
				if keyTs.Type() == "string" {
					node.SetQuoted(true)
				}
				node.AddChildToBack(c.convertExpr(entry.ChildByFieldName("value")))
			}
		case "shorthand_property_identifier":
			node = c.pos(entry, ast.NewValue(ast.KindStringKey, c.text(entry)))
		case "method_definition":
			node = c.pos(entry, ast.NewValue(ast.KindMemberFunctionDef, c.text(entry.ChildByFieldName("name"))))
			fn := ast.New(ast.KindFunction).SrcRef(node)
			fn.AddChildToBack(ast.Name(""))
			fn.AddChildToBack(c.convertParams(entry.ChildByFieldName("parameters")))
			fn.AddChildToBack(c.asBlock(entry.ChildByFieldName("body")))
			node.AddChildToBack(fn)
		case "spread_element":
			node = c.pos(entry, ast.New(ast.KindSpread))
			node.AddChildToBack(c.convertExpr(entry.NamedChild(0)))
		default:
			node = c.errorf(entry, "unsupported object entry %q", entry.Type())
		}
		if pending != nil {
			node.SetJSDoc(pending)
			pending = nil
		}
		obj.AddChildToBack(node)
	}
	return obj
}

func (c *converter) unquote(ts *sitter.Node) string {
	raw := c.text(ts)
	if len(raw) >= 2 {
		raw = raw[1 : len(raw)-1]
	}
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 == len(raw) {
			b.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}
