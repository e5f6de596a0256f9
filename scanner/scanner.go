// Package scanner provides brace-boundary-aware scanning for doc comment
// payloads. It encapsulates the tracking of `{...}` type expression groups
// and the identifier tokens inside them, eliminating the need for every
// consumer to re-implement depth counting.
package scanner

// Span is a half-open byte range [Start, End) into the scanned text.
type Span struct {
	Start int
	End   int
}

// Text returns the spanned slice of src.
func (s Span) Text(src string) string { return src[s.Start:s.End] }

// CommentScanner iterates byte-by-byte over doc comment text, tracking brace
// depth. Callers check Depth() instead of maintaining their own counters.
type CommentScanner struct {
	src   string
	pos   int
	depth int
}

// New creates a CommentScanner for the given text.
// Call Next() to advance to the first byte.
func New(src string) *CommentScanner {
	return &CommentScanner{src: src, pos: -1}
}

// Next advances to the next byte, updating brace depth.
// Returns the byte and true, or (0, false) at end of input.
func (s *CommentScanner) Next() (byte, bool) {
	s.pos++
	if s.pos >= len(s.src) {
		return 0, false
	}
	ch := s.src[s.pos]
	if ch == '{' {
		s.depth++
	} else if ch == '}' && s.depth > 0 {
		s.depth--
	}
	return ch, true
}

// Pos returns the current byte offset (the position of the last byte
// returned by Next). Returns -1 before the first call to Next.
func (s *CommentScanner) Pos() int { return s.pos }

// Depth returns the current brace nesting depth. The opening brace itself is
// reported at the depth it opens.
func (s *CommentScanner) Depth() int { return s.depth }

// TypeExpressions scans doc comment text for top-level `{...}` groups and
// returns the spans of their contents, braces excluded. Unbalanced groups
// are dropped.
func TypeExpressions(text string) []Span {
	var spans []Span
	sc := New(text)
	start := -1
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if ch == '{' && sc.Depth() == 1 {
			start = sc.Pos() + 1
		} else if ch == '}' && sc.Depth() == 0 && start >= 0 {
			spans = append(spans, Span{Start: start, End: sc.Pos()})
			start = -1
		}
	}
	return spans
}

// NameTokens returns the spans of dotted identifier tokens inside the given
// span of text: runs of identifier bytes joined by single dots. Offsets are
// relative to the full text.
func NameTokens(text string, expr Span) []Span {
	var tokens []Span
	i := expr.Start
	for i < expr.End {
		if !isNameStart(text[i]) {
			i++
			continue
		}
		start := i
		for i < expr.End && isNamePart(text[i]) {
			i++
		}
		// Extend across dots into further identifier segments.
		for i+1 < expr.End && text[i] == '.' && isNameStart(text[i+1]) {
			i++
			for i < expr.End && isNamePart(text[i]) {
				i++
			}
		}
		tokens = append(tokens, Span{Start: start, End: i})
	}
	return tokens
}

func isNameStart(ch byte) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isNamePart(ch byte) bool {
	return isNameStart(ch) || (ch >= '0' && ch <= '9')
}
