package http

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/elemsel"
)

// Ensure SitemapService implements elemsel.SitemapService.
var _ elemsel.SitemapService = (*SitemapService)(nil)

// maxIndexDepth bounds how deeply sitemap indexes may nest.
const maxIndexDepth = 5

// SitemapService discovers URLs from website sitemaps via HTTP.
// Gzip-compressed sitemaps are supported.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns the page URLs listed in the sitemaps of baseURL's
// host, in sitemap order without duplicates. Returns an empty slice if the
// site has no sitemap.
//
// When baseURL has a non-root path (e.g. https://example.com/docs/), only
// URLs under that path are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *elemsel.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "invalid base URL: %v", err)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemaps, err := s.locate(ctx, root)
	if err != nil {
		return nil, err
	}

	w := &sitemapWalk{
		svc:     s,
		visited: make(map[string]bool),
		seen:    make(map[string]bool),
		keep: func(u string) bool {
			return underPath(u, base.Path) && filter.Match(u)
		},
	}
	for _, sm := range sitemaps {
		if err := w.visit(ctx, sm, 0); err != nil {
			return nil, err
		}
	}

	if w.urls == nil {
		return []string{}, nil
	}
	return w.urls, nil
}

// locate returns the sitemaps named in robots.txt, or /sitemap.xml when
// robots.txt names none and it exists.
func (s *SitemapService) locate(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	if sitemaps, err := s.robotsSitemaps(ctx, robotsURL); err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	fallback := root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	exists, err := s.exists(ctx, fallback)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if !exists {
		return nil, nil
	}
	return []string{fallback}, nil
}

// robotsSitemaps reads Sitemap directives from robots.txt.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"
	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > len(directive) && strings.EqualFold(line[:len(directive)], directive) {
			if u := strings.TrimSpace(line[len(directive):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// sitemapWalk collects URLs across a tree of sitemaps and sitemap indexes.
type sitemapWalk struct {
	svc     *SitemapService
	visited map[string]bool // sitemaps
	seen    map[string]bool // page URLs
	keep    func(string) bool
	urls    []string
}

func (w *sitemapWalk) visit(ctx context.Context, sitemapURL string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.visited[sitemapURL] || depth > maxIndexDepth {
		return nil
	}
	w.visited[sitemapURL] = true

	root, err := w.svc.readSitemap(ctx, sitemapURL)
	if err != nil {
		return err
	}

	if root.Tag == "sitemapindex" {
		for _, loc := range locs(root, "sitemap") {
			if err := w.visit(ctx, loc, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, loc := range locs(root, "url") {
		if w.seen[loc] || !w.keep(loc) {
			continue
		}
		w.seen[loc] = true
		w.urls = append(w.urls, loc)
	}
	return nil
}

// readSitemap fetches and parses a sitemap, decompressing gzip content.
func (s *SitemapService) readSitemap(ctx context.Context, sitemapURL string) (*etree.Element, error) {
	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	br := bufio.NewReader(body)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decompressing sitemap %s: %w", sitemapURL, err)
		}
		defer gz.Close()
		r = gz
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML at %s", sitemapURL)
	}
	return root, nil
}

// locs returns the trimmed, non-empty <loc> texts of root's children
// named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// underPath reports whether rawURL's path lies under prefix, respecting
// segment boundaries: /docs matches /docs/ and /docs/intro but not
// /documentation. An empty or "/" prefix matches everything.
func underPath(rawURL, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(u.Path, prefix)
}

// get fetches targetURL and returns the body of a 200 response.
func (s *SitemapService) get(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

// exists reports whether a HEAD request for targetURL returns 200 OK.
func (s *SitemapService) exists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
