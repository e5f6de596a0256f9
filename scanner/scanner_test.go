package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanTexts(text string, spans []Span) []string {
	var out []string
	for _, s := range spans {
		out = append(out, s.Text(text))
	}
	return out
}

func TestTypeExpressions(t *testing.T) {
	text := "/** @param {foo.Bar} b @return {!Array<number>} */"
	spans := TypeExpressions(text)
	assert.Equal(t, []string{"foo.Bar", "!Array<number>"}, spanTexts(text, spans))
}

func TestTypeExpressionsNested(t *testing.T) {
	text := "/** @type {{key: string, val: foo.Baz}} */"
	spans := TypeExpressions(text)
	require.Equal(t, 1, len(spans))
	assert.Equal(t, "{key: string, val: foo.Baz}", spans[0].Text(text))
}

func TestTypeExpressionsUnbalanced(t *testing.T) {
	assert.Empty(t, TypeExpressions("/** @type {foo.Bar */"))
	assert.Empty(t, TypeExpressions("no braces at all"))
}

func TestNameTokens(t *testing.T) {
	text := "{!Array<foo.Bar.Baz>|undefined}"
	expr := Span{Start: 1, End: len(text) - 1}
	assert.Equal(t,
		[]string{"Array", "foo.Bar.Baz", "undefined"},
		spanTexts(text, NameTokens(text, expr)))
}

func TestNameTokensRecordFields(t *testing.T) {
	text := "{key: string, val: $private._x}"
	expr := Span{Start: 1, End: len(text) - 1}
	assert.Equal(t,
		[]string{"key", "string", "val", "$private._x"},
		spanTexts(text, NameTokens(text, expr)))
}

func TestNameTokenOffsetsAreAbsolute(t *testing.T) {
	text := "pad {a.b} pad"
	spans := TypeExpressions(text)
	require.Equal(t, 1, len(spans))
	tokens := NameTokens(text, spans[0])
	require.Equal(t, 1, len(tokens))
	assert.Equal(t, 5, tokens[0].Start)
	assert.Equal(t, "a.b", tokens[0].Text(text))
}

func TestCommentScannerDepth(t *testing.T) {
	sc := New("a{b{c}d}e")
	var depths []int
	for _, ok := sc.Next(); ok; _, ok = sc.Next() {
		depths = append(depths, sc.Depth())
	}
	assert.Equal(t, []int{0, 1, 1, 2, 2, 1, 1, 0, 0}, depths)
}
