// Package crawl runs the extraction pipeline over many pages. It
// coordinates URL discovery, fetching, parsing, filtering and storage.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/elemsel"
	"github.com/fwojciec/elemsel/bloom"
	"golang.org/x/sync/errgroup"
)

// Defaults for Crawler fields left at their zero value.
const (
	DefaultConcurrency = 10
	DefaultMaxPages    = 1000
)

// Bloom filter sizing for URL de-duplication.
const (
	expectedURLs      = 10000
	falsePositiveRate = 0.01
)

// Crawler fetches pages, filters them, and writes the results.
// A single Processor is shared by all workers.
type Crawler struct {
	Sitemaps    elemsel.SitemapService
	Fetcher     elemsel.Fetcher
	Parser      elemsel.Parser
	Processor   elemsel.Processor
	Documents   elemsel.DocumentWriter
	Links       elemsel.LinkExtractor
	RateLimiter elemsel.DomainLimiter
	Logger      *slog.Logger

	Concurrency int
	RetryDelays []time.Duration

	// MaxPages caps the number of pages visited by link-following.
	MaxPages int
}

// Result holds the outcome of a crawl operation.
type Result struct {
	Saved  int
	Failed int
	Bytes  int
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// pageResult holds the outcome of processing a single URL.
type pageResult struct {
	position int
	url      string
	doc      *elemsel.Document
	links    []string
	err      error
}

// CrawlSite discovers the pages of the site at sourceURL from its sitemaps
// and crawls them. When the site lists no pages and follow is set, pages
// are discovered by following links instead.
func (c *Crawler) CrawlSite(ctx context.Context, sourceURL string, filter *elemsel.URLFilter, follow bool, progress ProgressFunc) (*Result, error) {
	urls, err := c.Sitemaps.DiscoverURLs(ctx, sourceURL, filter)
	if err != nil {
		return nil, err
	}

	if len(urls) == 0 {
		if follow && c.Links != nil {
			return c.walk(ctx, sourceURL, filter, progress)
		}
		return &Result{}, nil
	}

	return c.CrawlURLs(ctx, urls, progress)
}

// FollowLinks crawls the site at sourceURL by following links breadth-first
// from it, without consulting sitemaps. Only pages under sourceURL's host
// and path that pass filter are visited.
func (c *Crawler) FollowLinks(ctx context.Context, sourceURL string, filter *elemsel.URLFilter, progress ProgressFunc) (*Result, error) {
	if c.Links == nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "link following requires a link extractor")
	}
	return c.walk(ctx, sourceURL, filter, progress)
}

// CrawlURLs crawls the given URLs concurrently and writes the documents in
// input order. Duplicate URLs are crawled once. A failing URL is reported
// through progress and counted in the result; it does not stop the crawl.
func (c *Crawler) CrawlURLs(ctx context.Context, urls []string, progress ProgressFunc) (*Result, error) {
	urls = dedupe(urls)
	if len(urls) == 0 {
		return &Result{}, nil
	}

	resultCh := make(chan pageResult, len(urls))

	var completed atomic.Int64
	total := len(urls)

	notify(progress, ProgressEvent{Type: ProgressStarted, Total: total})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency())

	go func() {
		for i, u := range urls {
			g.Go(func() error {
				resultCh <- c.processURL(gctx, i, u, false)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]pageResult, len(urls))
	var failed int
	for res := range resultCh {
		n := int(completed.Add(1))
		results[res.position] = res

		if res.err != nil {
			failed++
			notify(progress, ProgressEvent{Type: ProgressFailed, Completed: n, Total: total, URL: res.url, Error: res.err})
			continue
		}
		notify(progress, ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, URL: res.url})
	}

	result := &Result{Failed: failed}
	for _, res := range results {
		if res.err != nil {
			continue
		}
		if err := c.Documents.CreateDocument(ctx, res.doc); err != nil {
			c.logger().Error("save document", "url", res.url, "err", err)
			result.Failed++
			continue
		}
		result.Saved++
		result.Bytes += len(res.doc.Text)
	}

	notify(progress, ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	return result, nil
}

// processURL fetches, parses and filters a single URL. When withLinks is
// set, the page's links are returned for the frontier.
func (c *Crawler) processURL(ctx context.Context, position int, rawURL string, withLinks bool) pageResult {
	res := pageResult{position: position, url: rawURL}

	if c.RateLimiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			res.err = elemsel.Errorf(elemsel.EINVALID, "invalid URL %q: %v", rawURL, err)
			return res
		}
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			res.err = err
			return res
		}
	}

	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetryDelays(ctx, rawURL, c.Fetcher.Fetch, c.logger(), delays)
	if err != nil {
		res.err = err
		return res
	}

	if withLinks {
		links, err := c.Links.ExtractLinks(html, rawURL)
		if err != nil {
			c.logger().Warn("extract links", "url", rawURL, "err", err)
		}
		res.links = links
	}

	doc, err := c.Parser.Parse(html, rawURL)
	if err != nil {
		res.err = err
		return res
	}

	doc = c.Processor.Process(doc)
	doc.ContentHash = ComputeHash(doc.Text)
	doc.FetchedAt = time.Now().UTC()
	res.doc = doc

	return res
}

func (c *Crawler) concurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

func (c *Crawler) maxPages() int {
	if c.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return c.MaxPages
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func notify(progress ProgressFunc, event ProgressEvent) {
	if progress != nil {
		progress(event)
	}
}

// dedupe removes repeated URLs, keeping first occurrences. URLs are
// compared after normalization. The set is exact: every distinct URL of a
// finite batch must be crawled.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		key := bloom.Normalize(u)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}
