// Package goquery builds elemsel node trees from raw HTML using goquery and
// golang.org/x/net/html, and renders them back to HTML.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/elemsel"
	"golang.org/x/net/html"
)

// Ensure Parser implements elemsel.Parser at compile time.
var _ elemsel.Parser = (*Parser)(nil)

// Parser parses HTML pages into elemsel Documents.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses rawHTML into a Document. The document title comes from the
// first <title> element; the document text is the text of the whole page.
func (p *Parser) Parse(rawHTML string, baseURL string) (*elemsel.Document, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, elemsel.Errorf(elemsel.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "failed to parse HTML: %v", err)
	}

	root := elemsel.NewDocument()
	if len(doc.Nodes) > 0 {
		root = FromHTML(doc.Nodes[0])
	}

	return &elemsel.Document{
		URL:   baseURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  elemsel.ExtractText(root),
		Root:  root,
	}, nil
}

// FromHTML converts an x/net/html tree into an elemsel tree. Doctype and
// error nodes are dropped. A root that is not a document node is wrapped in
// one.
func FromHTML(n *html.Node) *elemsel.Node {
	converted := convert(n)
	if converted == nil {
		return elemsel.NewDocument()
	}
	if converted.Type != elemsel.DocumentNode {
		return elemsel.NewDocument(converted)
	}
	return converted
}

func convert(n *html.Node) *elemsel.Node {
	var out *elemsel.Node
	switch n.Type {
	case html.DocumentNode:
		out = elemsel.NewDocument()
	case html.ElementNode:
		var attrs []elemsel.Attribute
		for _, a := range n.Attr {
			attrs = append(attrs, elemsel.Attribute{Key: strings.ToLower(a.Key), Val: a.Val})
		}
		out = elemsel.NewElement(n.Data, attrs)
	case html.TextNode:
		return elemsel.NewText(n.Data)
	case html.CommentNode:
		return elemsel.NewComment(n.Data)
	default:
		return nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			out.AppendChild(child)
		}
	}
	return out
}
