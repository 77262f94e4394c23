package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/elemsel"
	"github.com/fwojciec/elemsel/crawl"
	"github.com/fwojciec/elemsel/goquery"
	"github.com/fwojciec/elemsel/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pages serves fixed HTML per URL and fails for unknown URLs.
func pages(html map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			if h, ok := html[url]; ok {
				return h, nil
			}
			return "", fmt.Errorf("404 for %s", url)
		},
	}
}

// store records written documents.
type store struct {
	mu   sync.Mutex
	docs []*elemsel.Document
	err  error
}

func (s *store) writer() *mock.DocumentWriter {
	return &mock.DocumentWriter{
		CreateDocumentFn: func(_ context.Context, doc *elemsel.Document) error {
			if s.err != nil {
				return s.err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			s.docs = append(s.docs, doc)
			return nil
		},
	}
}

func (s *store) urls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var urls []string
	for _, d := range s.docs {
		urls = append(urls, d.URL)
	}
	return urls
}

func newCrawler(t *testing.T, fetcher elemsel.Fetcher, docs elemsel.DocumentWriter) *crawl.Crawler {
	t.Helper()

	f, err := elemsel.NewFilter(elemsel.Settings{Blacklist: "nav, script"})
	require.NoError(t, err)

	return &crawl.Crawler{
		Fetcher:     fetcher,
		Parser:      goquery.NewParser(),
		Processor:   f,
		Documents:   docs,
		Concurrency: 4,
		RetryDelays: []time.Duration{},
	}
}

func TestCrawler_CrawlURLs(t *testing.T) {
	t.Parallel()

	t.Run("filters and saves documents in input order", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/a": `<title>A</title><nav>menu</nav><p>alpha</p>`,
			"https://example.com/b": `<title>B</title><p>beta</p><script>x()</script>`,
		}), s.writer())

		result, err := c.CrawlURLs(context.Background(), []string{
			"https://example.com/a",
			"https://example.com/b",
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.Equal(t, 0, result.Failed)
		require.Len(t, s.docs, 2)
		assert.Equal(t, "https://example.com/a", s.docs[0].URL)
		assert.Equal(t, "A", s.docs[0].Title)
		assert.Equal(t, "A alpha", s.docs[0].Text)
		assert.Equal(t, "B beta", s.docs[1].Text)
		assert.Equal(t, crawl.ComputeHash("A alpha"), s.docs[0].ContentHash)
		assert.False(t, s.docs[0].FetchedAt.IsZero())
		assert.Equal(t, len("A alpha")+len("B beta"), result.Bytes)
	})

	t.Run("crawls duplicate URLs once", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/a": `<p>alpha</p>`,
		}), s.writer())

		result, err := c.CrawlURLs(context.Background(), []string{
			"https://example.com/a",
			"https://example.com/a#top",
			"https://example.com/a",
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, []string{"https://example.com/a"}, s.urls())
	})

	t.Run("crawls every distinct URL of a large batch", func(t *testing.T) {
		t.Parallel()

		const n = 20000
		urls := make([]string, 0, n+1)
		for i := range n {
			urls = append(urls, fmt.Sprintf("https://example.com/page/%d", i))
		}
		urls = append(urls, "https://EXAMPLE.com/page/0")

		var saved atomic.Int64
		c := newCrawler(t, &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return `<p>page</p>`, nil
			},
		}, &mock.DocumentWriter{
			CreateDocumentFn: func(_ context.Context, _ *elemsel.Document) error {
				saved.Add(1)
				return nil
			},
		})
		c.Concurrency = 16

		result, err := c.CrawlURLs(context.Background(), urls, nil)

		require.NoError(t, err)
		assert.Equal(t, n, result.Saved)
		assert.Zero(t, result.Failed)
		assert.Equal(t, int64(n), saved.Load())
	})

	t.Run("counts failed fetches without stopping", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/ok": `<p>ok</p>`,
		}), s.writer())

		var mu sync.Mutex
		var events []crawl.ProgressEvent
		progress := func(e crawl.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		}

		result, err := c.CrawlURLs(context.Background(), []string{
			"https://example.com/missing",
			"https://example.com/ok",
		}, progress)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Failed)

		require.Len(t, events, 4)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 2, events[0].Total)
		assert.Equal(t, crawl.ProgressFinished, events[3].Type)

		var failed []string
		for _, e := range events {
			if e.Type == crawl.ProgressFailed {
				failed = append(failed, e.URL)
				assert.Error(t, e.Error)
			}
		}
		assert.Equal(t, []string{"https://example.com/missing"}, failed)
	})

	t.Run("counts storage failures", func(t *testing.T) {
		t.Parallel()

		s := store{err: errors.New("disk full")}
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/a": `<p>alpha</p>`,
		}), s.writer())

		result, err := c.CrawlURLs(context.Background(), []string{"https://example.com/a"}, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Saved)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("waits on the rate limiter per host", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/a": `<p>a</p>`,
			"https://other.org/b":   `<p>b</p>`,
		}), s.writer())

		var mu sync.Mutex
		var hosts []string
		c.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				mu.Lock()
				defer mu.Unlock()
				hosts = append(hosts, domain)
				return nil
			},
		}

		_, err := c.CrawlURLs(context.Background(), []string{"https://example.com/a", "https://other.org/b"}, nil)

		require.NoError(t, err)
		sort.Strings(hosts)
		assert.Equal(t, []string{"example.com", "other.org"}, hosts)
	})

	t.Run("returns empty result for no URLs", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, &mock.Fetcher{}, &mock.DocumentWriter{})

		result, err := c.CrawlURLs(context.Background(), nil, nil)

		require.NoError(t, err)
		assert.Equal(t, crawl.Result{}, *result)
	})
}

func TestCrawler_CrawlSite(t *testing.T) {
	t.Parallel()

	t.Run("crawls URLs listed in the sitemap", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/docs/a": `<p>a</p>`,
		}), s.writer())
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, baseURL string, _ *elemsel.URLFilter) ([]string, error) {
				assert.Equal(t, "https://example.com/docs/", baseURL)
				return []string{"https://example.com/docs/a"}, nil
			},
		}

		result, err := c.CrawlSite(context.Background(), "https://example.com/docs/", nil, false, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
	})

	t.Run("returns sitemap errors", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, &mock.Fetcher{}, &mock.DocumentWriter{})
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *elemsel.URLFilter) ([]string, error) {
				return nil, errors.New("boom")
			},
		}

		_, err := c.CrawlSite(context.Background(), "https://example.com", nil, true, nil)

		assert.Error(t, err)
	})

	t.Run("returns zero result without sitemap when not following", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, &mock.Fetcher{}, &mock.DocumentWriter{})
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *elemsel.URLFilter) ([]string, error) {
				return nil, nil
			},
		}

		result, err := c.CrawlSite(context.Background(), "https://example.com", nil, false, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Saved)
	})

	t.Run("follows links within host and path", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/docs/": `<p>home</p>
				<a href="/docs/one">one</a>
				<a href="/blog/post">blog</a>
				<a href="https://other.com/docs/x">other</a>`,
			"https://example.com/docs/one": `<p>one</p><a href="/docs/two">two</a><a href="/docs/">home</a>`,
			"https://example.com/docs/two": `<p>two</p>`,
		}), s.writer())
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *elemsel.URLFilter) ([]string, error) {
				return nil, nil
			},
		}
		c.Links = goquery.NewLinkExtractor("")

		result, err := c.CrawlSite(context.Background(), "https://example.com/docs/", nil, true, nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Saved)
		assert.Equal(t, 0, result.Failed)
		assert.ElementsMatch(t, []string{
			"https://example.com/docs/",
			"https://example.com/docs/one",
			"https://example.com/docs/two",
		}, s.urls())
	})

	t.Run("applies URL filter and page limit to followed links", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/": `<a href="/a">a</a><a href="/b">b</a><a href="/skip">s</a>`,
			"https://example.com/a": `<p>a</p>`,
			"https://example.com/b": `<p>b</p>`,
		}), s.writer())
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *elemsel.URLFilter) ([]string, error) {
				return nil, nil
			},
		}
		c.Links = goquery.NewLinkExtractor("")
		c.MaxPages = 2
		filter, err := elemsel.CompileURLFilter(nil, []string{`/skip$`})
		require.NoError(t, err)

		result, err := c.CrawlSite(context.Background(), "https://example.com/", filter, true, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.NotContains(t, s.urls(), "https://example.com/skip")
	})
}

func TestCrawler_FollowLinks(t *testing.T) {
	t.Parallel()

	t.Run("walks links without consulting sitemaps", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/": `<a href="/a">a</a>`,
			"https://example.com/a": `<p>a</p>`,
		}), s.writer())
		c.Links = goquery.NewLinkExtractor("")

		result, err := c.FollowLinks(context.Background(), "https://example.com/", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
	})

	t.Run("follows only in-scope links and counts parse failures", func(t *testing.T) {
		t.Parallel()

		var s store
		c := newCrawler(t, pages(map[string]string{
			"https://example.com/docs/":       "root",
			"https://example.com/docs/a":      "a",
			"https://example.com/docs/broken": "broken",
		}), s.writer())
		c.Links = &mock.LinkExtractor{
			ExtractLinksFn: func(rawHTML, _ string) ([]string, error) {
				if rawHTML != "root" {
					return nil, nil
				}
				return []string{
					"https://example.com/docs/a",
					"https://example.com/docs/broken",
					"https://example.com/blog/post",
					"https://other.com/docs/a",
				}, nil
			},
		}
		c.Parser = &mock.Parser{
			ParseFn: func(rawHTML, baseURL string) (*elemsel.Document, error) {
				if rawHTML == "broken" {
					return nil, errors.New("parse failed")
				}
				return &elemsel.Document{URL: baseURL, Text: rawHTML}, nil
			},
		}

		result, err := c.FollowLinks(context.Background(), "https://example.com/docs/", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.Equal(t, 1, result.Failed)
		urls := s.urls()
		sort.Strings(urls)
		assert.Equal(t, []string{"https://example.com/docs/", "https://example.com/docs/a"}, urls)
	})

	t.Run("requires a link extractor", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, &mock.Fetcher{}, &mock.DocumentWriter{})

		_, err := c.FollowLinks(context.Background(), "https://example.com/", nil, nil)

		require.Error(t, err)
		assert.Equal(t, elemsel.EINVALID, elemsel.ErrorCode(err))
	})
}

func TestFetchWithRetryDelays(t *testing.T) {
	t.Parallel()

	t.Run("retries until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("flaky")
			}
			return "<p>ok</p>", nil
		}

		html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil,
			[]time.Duration{time.Millisecond, time.Millisecond, time.Millisecond})

		require.NoError(t, err)
		assert.Equal(t, "<p>ok</p>", html)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns the last error after all attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string) (string, error) {
			calls++
			return "", fmt.Errorf("attempt %d", calls)
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil,
			[]time.Duration{0, 0})

		require.Error(t, err)
		assert.Equal(t, "attempt 3", err.Error())
	})

	t.Run("does not retry missing pages", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string) (string, error) {
			calls++
			return "", elemsel.Errorf(elemsel.ENOTFOUND, "HTTP 404")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil,
			[]time.Duration{time.Hour})

		require.Error(t, err)
		assert.Equal(t, elemsel.ENOTFOUND, elemsel.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		fetch := func(_ context.Context, _ string) (string, error) {
			cancel()
			return "", errors.New("fail")
		}

		_, err := crawl.FetchWithRetryDelays(ctx, "https://example.com", fetch, nil, []time.Duration{time.Hour})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestContentDiffers(t *testing.T) {
	t.Parallel()

	f, err := elemsel.NewFilter(elemsel.Settings{Whitelist: "main"})
	require.NoError(t, err)
	p := goquery.NewParser()

	t.Run("detects JavaScript-rendered content", func(t *testing.T) {
		t.Parallel()

		httpHTML := `<main>Loading</main>`
		rodHTML := `<main>The full article body rendered by scripts</main>`

		assert.True(t, crawl.ContentDiffers("https://example.com", httpHTML, rodHTML, p, f))
	})

	t.Run("similar content does not differ", func(t *testing.T) {
		t.Parallel()

		html := `<main>Static article</main>`

		assert.False(t, crawl.ContentDiffers("https://example.com", html, html, p, f))
	})

	t.Run("parse failures count as differing", func(t *testing.T) {
		t.Parallel()

		assert.True(t, crawl.ContentDiffers("https://example.com", "", "<main>x</main>", p, f))
	})
}
