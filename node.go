package elemsel

import "strings"

// NodeType identifies the kind of a Node.
type NodeType int

// Node kinds. DocumentNode is the root container produced by a Parser and by
// whitelist collection; it never matches a selector.
const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
)

// String returns the lower-case name of the node type.
func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Attribute is a single element attribute.
type Attribute struct {
	Key string
	Val string
}

// Node is a node of a parsed HTML tree.
//
// For element nodes Data holds the lower-cased tag name. For text and
// comment nodes Data holds the literal value. Children are owned by their
// parent: a Node appears in at most one Children slice.
type Node struct {
	Type     NodeType
	Data     string
	Attr     []Attribute
	Children []*Node
}

// NewDocument returns an empty document root.
func NewDocument(children ...*Node) *Node {
	return &Node{Type: DocumentNode, Children: children}
}

// NewElement returns an element node with the given tag name and children.
// The name is lower-cased.
func NewElement(name string, attrs []Attribute, children ...*Node) *Node {
	return &Node{
		Type:     ElementNode,
		Data:     strings.ToLower(name),
		Attr:     attrs,
		Children: children,
	}
}

// NewText returns a text node.
func NewText(value string) *Node {
	return &Node{Type: TextNode, Data: value}
}

// NewComment returns a comment node.
func NewComment(value string) *Node {
	return &Node{Type: CommentNode, Data: value}
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

// Name returns the element name, or "" for non-element nodes.
func (n *Node) Name() string {
	if !n.IsElement() {
		return ""
	}
	return n.Data
}

// Value returns the literal value of text and comment nodes, or "" otherwise.
func (n *Node) Value() string {
	if n.Type == TextNode || n.Type == CommentNode {
		return n.Data
	}
	return ""
}

// Attribute returns the value of the first attribute named key.
// Attribute names are compared case-insensitively.
func (n *Node) Attribute(key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetValue replaces the literal value of text and comment nodes.
// It is a no-op for elements and documents.
func (n *Node) SetValue(v string) {
	if n.Type == TextNode || n.Type == CommentNode {
		n.Data = v
	}
}

// AppendChild adds c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	n.Children = append(n.Children, c)
}

// RemoveChildren detaches all children of n.
func (n *Node) RemoveChildren() {
	n.Children = nil
}

// ShallowClone returns a copy of n without children.
func (n *Node) ShallowClone() *Node {
	c := &Node{Type: n.Type, Data: n.Data}
	if len(n.Attr) > 0 {
		c.Attr = make([]Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	return c
}

// Clone returns a deep copy of n and all of its descendants.
func (n *Node) Clone() *Node {
	c := n.ShallowClone()
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}
