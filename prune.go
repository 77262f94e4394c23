package elemsel

// Prune empties, in place, every subtree of n whose root is selected by m.
// A selected node keeps its position in its parent but loses its value and
// all of its children. Descendants of a selected node are not evaluated.
//
// Prune mutates n. Callers that must preserve the source tree should prune
// a Clone.
func Prune(n *Node, m Matcher) {
	if m.Match(n) {
		n.SetValue("")
		n.RemoveChildren()
		return
	}
	for _, c := range n.Children {
		Prune(c, m)
	}
}

// Collect appends to dst a deep copy of every subtree of n whose root is
// selected by m, in document order. Unselected ancestors are flattened
// away: the copies become direct children of dst. A selected subtree is
// copied verbatim and its descendants are not evaluated.
//
// Collect does not modify n.
func Collect(n *Node, m Matcher, dst *Node) {
	if m.Match(n) {
		dst.AppendChild(n.Clone())
		return
	}
	for _, c := range n.Children {
		Collect(c, m, dst)
	}
}
