package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/elemsel"
)

// Ensure LinkExtractor implements elemsel.LinkExtractor at compile time.
var _ elemsel.LinkExtractor = (*LinkExtractor)(nil)

// DefaultLinkSelector matches every anchor with an href.
const DefaultLinkSelector = "a[href]"

// LinkExtractor extracts links from anchors matching a CSS selector.
type LinkExtractor struct {
	// Selector restricts which anchors are considered.
	// Defaults to DefaultLinkSelector.
	Selector string
}

// NewLinkExtractor creates a LinkExtractor using selector, or
// DefaultLinkSelector when selector is empty.
func NewLinkExtractor(selector string) *LinkExtractor {
	if selector == "" {
		selector = DefaultLinkSelector
	}
	return &LinkExtractor{Selector: selector}
}

// ExtractLinks returns the same-host links of rawHTML. External links,
// non-HTTP schemes and links back to baseURL itself are dropped.
func (e *LinkExtractor) ExtractLinks(rawHTML string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "failed to parse HTML: %v", err)
	}

	selector := e.Selector
	if selector == "" {
		selector = DefaultLinkSelector
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || !isSameHost(base, resolved) {
			return
		}

		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links, nil
}

// resolveURL resolves href against base with the fragment stripped.
// Returns "" if href cannot be parsed or points back at base.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isSameHost uses exact host matching; subdomains are different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
