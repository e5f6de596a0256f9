// Package printer renders a tree back to JavaScript text. Output is compact
// but readable: one statement per line, two-space indentation, doc comments
// re-emitted with any rewritten type names spliced in.
package printer

import (
	"strings"

	"github.com/rubiojr/modflat/ast"
)

// Print renders the tree rooted at n. Roots render their scripts separated
// by blank lines.
func Print(n *ast.Node) string {
	p := &printer{}
	switch n.Kind() {
	case ast.KindRoot:
		var parts []string
		for c := n.First(); c != nil; c = c.Next() {
			parts = append(parts, Print(c))
		}
		return strings.Join(parts, "\n")
	case ast.KindScript, ast.KindModuleBody, ast.KindBlock:
		for _, d := range n.Directives() {
			p.line(`"` + d + `";`)
		}
		for c := n.First(); c != nil; c = c.Next() {
			p.statement(c)
		}
		return p.String()
	}
	p.statement(n)
	return p.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) String() string { return p.b.String() }

func (p *printer) line(text string) {
	p.b.WriteString(strings.Repeat("  ", p.indent))
	p.b.WriteString(text)
	p.b.WriteByte('\n')
}

func (p *printer) jsdoc(n *ast.Node) {
	if info := n.JSDoc(); info != nil && info.Text != "" {
		for _, ln := range strings.Split(info.RenderText(), "\n") {
			p.line(strings.TrimRight(ln, " \t"))
		}
	}
}

func (p *printer) statement(n *ast.Node) {
	p.jsdoc(n)
	switch n.Kind() {
	case ast.KindExprResult:
		p.line(expr(n.First()) + ";")
	case ast.KindVar, ast.KindLet, ast.KindConst:
		p.line(declText(n) + ";")
	case ast.KindFunction:
		p.line("function " + n.First().Value() + paramsText(n) + " {")
		p.block(n.Last())
		p.line("}")
	case ast.KindClass:
		head := "class"
		if name := n.First(); name != nil && name.Kind() == ast.KindName && name.Value() != "" {
			head += " " + name.Value()
		}
		if heritage := n.Second(); heritage != nil && !heritage.IsEmpty() {
			head += " extends " + expr(heritage)
		}
		p.line(head + " {")
		p.indent++
		for m := n.Last().First(); m != nil; m = m.Next() {
			p.jsdoc(m)
			switch m.Kind() {
			case ast.KindMemberFunctionDef:
				fn := m.First()
				p.line(m.Value() + paramsText(fn) + " {")
				p.block(fn.Last())
				p.line("}")
			case ast.KindStringKey:
				if m.HasChildren() {
					p.line(m.Value() + " = " + expr(m.First()) + ";")
				} else {
					p.line(m.Value() + ";")
				}
			}
		}
		p.indent--
		p.line("}")
	case ast.KindReturn:
		if n.HasChildren() {
			p.line("return " + expr(n.First()) + ";")
		} else {
			p.line("return;")
		}
	case ast.KindIf:
		p.line("if (" + expr(n.First()) + ") {")
		p.block(n.Second())
		alternative := n.Last()
		if alternative != n.Second() {
			if alternative.Kind() == ast.KindIf {
				p.line("} else " + strings.TrimLeft(capture(alternative), " "))
				return
			}
			p.line("} else {")
			p.block(alternative)
		}
		p.line("}")
	case ast.KindWhile:
		p.line("while (" + expr(n.First()) + ") {")
		p.block(n.Last())
		p.line("}")
	case ast.KindDo:
		p.line("do {")
		p.block(n.First())
		p.line("} while (" + expr(n.Last()) + ");")
	case ast.KindFor:
		init := forPart(n.First())
		cond := forPart(n.Second())
		update := forPart(n.Second().Next())
		p.line("for (" + init + "; " + cond + "; " + update + ") {")
		p.block(n.Last())
		p.line("}")
	case ast.KindForIn, ast.KindForOf:
		word := "in"
		if n.Kind() == ast.KindForOf {
			word = "of"
		}
		p.line("for (" + forPart(n.First()) + " " + word + " " + expr(n.Second()) + ") {")
		p.block(n.Last())
		p.line("}")
	case ast.KindSwitch:
		p.line("switch (" + expr(n.First()) + ") {")
		p.indent++
		for c := n.Second(); c != nil; c = c.Next() {
			if c.Kind() == ast.KindCase {
				p.line("case " + expr(c.First()) + ":")
			} else {
				p.line("default:")
			}
			p.block(c.Last())
		}
		p.indent--
		p.line("}")
	case ast.KindBreak:
		p.line(withLabel("break", n))
	case ast.KindContinue:
		p.line(withLabel("continue", n))
	case ast.KindThrow:
		p.line("throw " + expr(n.First()) + ";")
	case ast.KindTry:
		p.line("try {")
		p.block(n.First())
		for c := n.Second(); c != nil; c = c.Next() {
			switch c.Kind() {
			case ast.KindCatch:
				head := "} catch"
				if param := c.First(); param != nil && !param.IsEmpty() {
					head += " (" + expr(param) + ")"
				}
				p.line(head + " {")
				p.block(c.Last())
			case ast.KindFinally:
				p.line("} finally {")
				p.block(c.First())
			}
		}
		p.line("}")
	case ast.KindLabel:
		p.line(n.Value() + ":")
		p.statement(n.First())
	case ast.KindBlock:
		p.line("{")
		p.block(n)
		p.line("}")
	case ast.KindModuleBody:
		for c := n.First(); c != nil; c = c.Next() {
			p.statement(c)
		}
	case ast.KindEmpty:
		p.line(";")
	default:
		p.line(expr(n) + ";")
	}
}

func (p *printer) block(n *ast.Node) {
	p.indent++
	for c := n.First(); c != nil; c = c.Next() {
		p.statement(c)
	}
	p.indent--
}

func capture(n *ast.Node) string {
	sub := &printer{}
	sub.statement(n)
	return sub.String()
}

func captureBody(block *ast.Node) string {
	sub := &printer{}
	sub.block(block)
	return sub.String()
}

func withLabel(word string, n *ast.Node) string {
	if n.Value() != "" {
		return word + " " + n.Value() + ";"
	}
	return word + ";"
}

func forPart(n *ast.Node) string {
	if n == nil || n.IsEmpty() {
		return ""
	}
	if n.IsNameDeclaration() {
		return declText(n)
	}
	return expr(n)
}

func declText(n *ast.Node) string {
	word := map[ast.Kind]string{
		ast.KindVar:   "var",
		ast.KindLet:   "let",
		ast.KindConst: "const",
	}[n.Kind()]
	var parts []string
	for c := n.First(); c != nil; c = c.Next() {
		switch c.Kind() {
		case ast.KindName:
			if c.HasChildren() {
				parts = append(parts, c.Value()+" = "+expr(c.First()))
			} else {
				parts = append(parts, c.Value())
			}
		case ast.KindDestructuringLhs:
			text := expr(c.First())
			if rhs := c.Second(); rhs != nil {
				text += " = " + expr(rhs)
			}
			parts = append(parts, text)
		}
	}
	return word + " " + strings.Join(parts, ", ")
}

func paramsText(fn *ast.Node) string {
	var params *ast.Node
	for c := fn.First(); c != nil; c = c.Next() {
		if c.IsParamList() {
			params = c
			break
		}
	}
	var parts []string
	if params != nil {
		for c := params.First(); c != nil; c = c.Next() {
			parts = append(parts, expr(c))
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func expr(n *ast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case ast.KindName:
		return n.Value()
	case ast.KindString:
		return `'` + escape(n.Value()) + `'`
	case ast.KindNumber, ast.KindTemplate, ast.KindRegExp:
		return n.Value()
	case ast.KindTrue:
		return "true"
	case ast.KindFalse:
		return "false"
	case ast.KindNull:
		return "null"
	case ast.KindThis:
		return "this"
	case ast.KindGetProp:
		return expr(n.First()) + "." + n.Second().Value()
	case ast.KindGetElem:
		return expr(n.First()) + "[" + expr(n.Second()) + "]"
	case ast.KindCall:
		return expr(n.First()) + argsText(n)
	case ast.KindNew:
		return "new " + expr(n.First()) + argsText(n)
	case ast.KindAssign:
		return expr(n.First()) + " " + n.Value() + " " + expr(n.Last())
	case ast.KindBinaryOp:
		return "(" + expr(n.First()) + " " + n.Value() + " " + expr(n.Last()) + ")"
	case ast.KindUnaryOp:
		op := n.Value()
		if len(op) > 1 {
			op += " "
		}
		return op + expr(n.First())
	case ast.KindUpdateOp:
		if n.Bool(ast.PropPrefixOp) {
			return n.Value() + expr(n.First())
		}
		return expr(n.First()) + n.Value()
	case ast.KindHook:
		return expr(n.First()) + " ? " + expr(n.Second()) + " : " + expr(n.Last())
	case ast.KindComma:
		return expr(n.First()) + ", " + expr(n.Last())
	case ast.KindObjectLit, ast.KindObjectPattern:
		var parts []string
		for c := n.First(); c != nil; c = c.Next() {
			parts = append(parts, entryText(c))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ast.KindArrayLit, ast.KindArrayPattern:
		var parts []string
		for c := n.First(); c != nil; c = c.Next() {
			parts = append(parts, expr(c))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ast.KindSpread, ast.KindRest:
		return "..." + expr(n.First())
	case ast.KindDefaultValue:
		return expr(n.First()) + " = " + expr(n.Last())
	case ast.KindFunction:
		name := ""
		if n.First().Value() != "" {
			name = " " + n.First().Value()
		}
		if !n.Last().HasChildren() {
			return "function" + name + paramsText(n) + " {}"
		}
		return "function" + name + paramsText(n) + " {\n" + captureBody(n.Last()) + "}"
	case ast.KindArrow:
		body := n.Last()
		if body.IsBlock() {
			return paramsText(n) + " => {\n" + captureBody(body) + "}"
		}
		return paramsText(n) + " => " + expr(body)
	case ast.KindClass:
		return strings.TrimRight(capture(n), "\n")
	case ast.KindEmpty:
		return ""
	}
	return "/* " + n.Kind().String() + " */"
}

func argsText(n *ast.Node) string {
	var parts []string
	for c := n.Second(); c != nil; c = c.Next() {
		parts = append(parts, expr(c))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func entryText(n *ast.Node) string {
	switch n.Kind() {
	case ast.KindStringKey:
		key := n.Value()
		if n.Quoted() {
			key = `'` + escape(key) + `'`
		}
		if n.HasChildren() {
			return key + ": " + expr(n.First())
		}
		return key
	case ast.KindComputedProp:
		return "[" + expr(n.First()) + "]: " + expr(n.Last())
	case ast.KindMemberFunctionDef:
		fn := n.First()
		return n.Value() + paramsText(fn) + " {\n" + captureBody(fn.Last()) + "}"
	case ast.KindSpread, ast.KindRest:
		return "..." + expr(n.First())
	}
	return expr(n)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
