package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/rubiojr/modflat/ast"
	"github.com/rubiojr/modflat/scanner"
)

// parseDocComment builds a doc record from a comment node, or returns nil
// when the comment is not a doc comment.
func (c *converter) parseDocComment(ts *sitter.Node) *ast.JSDocInfo {
	text := c.text(ts)
	if !strings.HasPrefix(text, "/**") {
		return nil
	}
	return ParseJSDoc(text)
}

// ParseJSDoc extracts the structured view of a `/** ... */` comment: one
// string node per dotted name inside a `{...}` type expression, plus the
// const and typedef markers. Type node positions are byte offsets into the
// comment text itself.
func ParseJSDoc(text string) *ast.JSDocInfo {
	info := &ast.JSDocInfo{
		Text:    text,
		Const:   hasTag(text, "const"),
		Typedef: hasTag(text, "typedef"),
	}
	for _, expr := range scanner.TypeExpressions(text) {
		for _, tok := range scanner.NameTokens(text, expr) {
			node := ast.Str(tok.Text(text))
			node.Pos = tok.Start
			node.Len = tok.End - tok.Start
			info.TypeNodes = append(info.TypeNodes, node)
		}
	}
	return info
}

func hasTag(text, tag string) bool {
	needle := "@" + tag
	for offset := 0; ; {
		i := strings.Index(text[offset:], needle)
		if i < 0 {
			return false
		}
		end := offset + i + len(needle)
		if end == len(text) || !isTagNamePart(text[end]) {
			return true
		}
		offset = end
	}
}

func isTagNamePart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
