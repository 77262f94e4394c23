package elemsel

import "strings"

// ExtractText returns the text content of the tree rooted at n.
//
// Text nodes are visited depth-first. Runs of Unicode whitespace within each
// text node, U+00A0 and U+0085 included, collapse to a single space and the
// result is trimmed. Non-empty pieces are joined with one space. Script and
// style elements and comments are skipped together with their subtrees.
func ExtractText(n *Node) string {
	var b strings.Builder
	appendText(&b, n)
	return b.String()
}

func appendText(b *strings.Builder, n *Node) {
	switch n.Type {
	case CommentNode:
		return
	case ElementNode:
		if skipElement(n.Data) {
			return
		}
	case TextNode:
		for _, word := range strings.Fields(n.Data) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(word)
		}
		return
	}

	for _, c := range n.Children {
		appendText(b, c)
	}
}

// skipElement reports whether the text of the named element is never
// extracted.
func skipElement(name string) bool {
	return strings.EqualFold(name, "script") || strings.EqualFold(name, "style")
}
