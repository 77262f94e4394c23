// Package htmltomarkdown renders filtered documents as Markdown.
package htmltomarkdown

import (
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/elemsel"
)

// Ensure Converter implements elemsel.Converter at compile time.
var _ elemsel.Converter = (*Converter)(nil)

// Converter converts HTML produced by a Renderer into CommonMark with
// table support.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms html into Markdown. Only the scheme and host of
// baseURL are used to absolutize links. Empty input returns EINVALID.
func (c *Converter) Convert(html, baseURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", elemsel.Errorf(elemsel.EINVALID, "empty HTML input")
	}

	var md string
	var err error
	if domain := siteRoot(baseURL); domain != "" {
		md, err = c.conv.ConvertString(html, converter.WithDomain(domain))
	} else {
		md, err = c.conv.ConvertString(html)
	}
	if err != nil {
		return "", elemsel.Errorf(elemsel.EINTERNAL, "converting to markdown: %v", err)
	}

	return strings.TrimSpace(md), nil
}

// siteRoot returns scheme://host of rawURL, or "" when it is not absolute.
func siteRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
