package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/elemsel"
)

// walk crawls the pages reachable from sourceURL by following links that
// stay on its host and under its path. Pages are fetched by a pool of
// workers while a coordinator owns the frontier and writes documents.
func (c *Crawler) walk(ctx context.Context, sourceURL string, filter *elemsel.URLFilter, progress ProgressFunc) (*Result, error) {
	source, err := url.Parse(sourceURL)
	if err != nil {
		return nil, elemsel.Errorf(elemsel.EINVALID, "invalid source URL: %v", err)
	}
	scope := linkScope{host: source.Host, pathPrefix: source.Path, filter: filter}

	frontier := NewFrontier(expectedURLs, falsePositiveRate)
	frontier.Push(sourceURL)

	concurrency := c.concurrency()
	limit := c.maxPages()

	workCh := make(chan string, concurrency)
	resultCh := make(chan pageResult)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range workCh {
				res := c.processURL(ctx, 0, u, true)
				select {
				case resultCh <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	notify(progress, ProgressEvent{Type: ProgressStarted})

	var result Result
	completed := 0
	handle := func(res pageResult) {
		for _, link := range res.links {
			if scope.contains(link) {
				frontier.Push(link)
			}
		}
		completed++
		c.record(ctx, res, &result, completed, progress)
	}

	dispatched := 0
	pending := 0
	next, hasNext := frontier.Pop()

loop:
	for {
		if !hasNext && pending == 0 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if hasNext && dispatched < limit {
			select {
			case <-ctx.Done():
				break loop
			case workCh <- next:
				dispatched++
				pending++
				hasNext = false
			case res := <-resultCh:
				pending--
				handle(res)
			}
		} else {
			select {
			case <-ctx.Done():
				break loop
			case res, ok := <-resultCh:
				if !ok {
					break loop
				}
				pending--
				handle(res)
			}
		}

		if !hasNext && dispatched < limit {
			next, hasNext = frontier.Pop()
		}
	}

	close(workCh)

	// Workers may still be finishing pages after cancellation.
	drainTimeout := time.After(5 * time.Second)
drain:
	for {
		select {
		case res, ok := <-resultCh:
			if !ok {
				break drain
			}
			completed++
			c.record(ctx, res, &result, completed, progress)
		case <-drainTimeout:
			break drain
		}
	}

	notify(progress, ProgressEvent{Type: ProgressFinished, Completed: completed})

	return &result, nil
}

// record writes a finished page and reports it.
func (c *Crawler) record(ctx context.Context, res pageResult, result *Result, completed int, progress ProgressFunc) {
	if res.err == nil {
		res.err = c.Documents.CreateDocument(ctx, res.doc)
	}

	if res.err != nil {
		result.Failed++
		notify(progress, ProgressEvent{Type: ProgressFailed, Completed: completed, URL: res.url, Error: res.err})
		return
	}

	result.Saved++
	result.Bytes += len(res.doc.Text)
	notify(progress, ProgressEvent{Type: ProgressCompleted, Completed: completed, URL: res.url})
}

// linkScope decides which discovered links are followed.
type linkScope struct {
	host       string
	pathPrefix string
	filter     *elemsel.URLFilter
}

func (s linkScope) contains(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Host != s.host || !strings.HasPrefix(u.Path, s.pathPrefix) {
		return false
	}
	return s.filter.Match(rawURL)
}
