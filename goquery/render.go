package goquery

import (
	"bytes"

	"github.com/fwojciec/elemsel"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Renderer implements elemsel.Renderer at compile time.
var _ elemsel.Renderer = (*Renderer)(nil)

// Renderer serializes elemsel trees as HTML.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns the HTML serialization of n.
func (r *Renderer) Render(n *elemsel.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, ToHTML(n)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToHTML converts an elemsel tree into an x/net/html tree.
func ToHTML(n *elemsel.Node) *html.Node {
	out := &html.Node{}
	switch n.Type {
	case elemsel.DocumentNode:
		out.Type = html.DocumentNode
	case elemsel.ElementNode:
		out.Type = html.ElementNode
		out.Data = n.Data
		out.DataAtom = atom.Lookup([]byte(n.Data))
		for _, a := range n.Attr {
			out.Attr = append(out.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
	case elemsel.TextNode:
		out.Type = html.TextNode
		out.Data = n.Data
	case elemsel.CommentNode:
		out.Type = html.CommentNode
		out.Data = n.Data
	}

	for _, c := range n.Children {
		out.AppendChild(ToHTML(c))
	}
	return out
}
