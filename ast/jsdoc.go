package ast

import "sort"

// JSDocInfo is the structured view of a doc comment. Text is the raw
// comment including its delimiters. TypeNodes are string nodes, one per
// dotted name appearing inside a {...} type expression; their Pos/Len locate
// the name inside Text so a printer can splice rewritten names back in.
type JSDocInfo struct {
	Text      string
	TypeNodes []*Node
	Const     bool
	Typedef   bool
}

// Clone returns an independent copy of the record.
func (info *JSDocInfo) Clone() *JSDocInfo {
	if info == nil {
		return nil
	}
	clone := &JSDocInfo{Text: info.Text, Const: info.Const, Typedef: info.Typedef}
	for _, tn := range info.TypeNodes {
		clone.TypeNodes = append(clone.TypeNodes, tn.CloneTree())
	}
	return clone
}

// RenderText returns Text with every renamed type node spliced in at its
// recorded location.
func (info *JSDocInfo) RenderText() string {
	if len(info.TypeNodes) == 0 {
		return info.Text
	}
	nodes := append([]*Node(nil), info.TypeNodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Pos < nodes[j].Pos })
	var out []byte
	cursor := 0
	for _, tn := range nodes {
		if tn.Pos < cursor || tn.Pos+tn.Len > len(info.Text) {
			continue
		}
		out = append(out, info.Text[cursor:tn.Pos]...)
		out = append(out, tn.Value()...)
		cursor = tn.Pos + tn.Len
	}
	out = append(out, info.Text[cursor:]...)
	return string(out)
}

// MarkConst returns a copy of info (or a fresh record when info is nil) with
// the const marker set.
func MarkConst(info *JSDocInfo) *JSDocInfo {
	copied := info.Clone()
	if copied == nil {
		copied = &JSDocInfo{}
	}
	copied.Const = true
	return copied
}
