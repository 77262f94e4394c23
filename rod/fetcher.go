// Package rod fetches JavaScript-rendered pages with a headless Chrome
// browser driven by go-rod.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/elemsel"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements elemsel.Fetcher at compile time.
var _ elemsel.Fetcher = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// The browser is recycled periodically; see BrowserManager.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager      *BrowserManager
	fetchTimeout time.Duration
	recycleAfter int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the maximum time spent loading one page.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithRecycleAfter sets how many pages are loaded before the browser is
// restarted.
func WithRecycleAfter(n int64) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout: DefaultFetchTimeout,
		recycleAfter: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(WithMaxPages(f.recycleAfter))
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to url, waits for the page to load, and returns the
// rendered HTML. Returns EINVALID after Close.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	browser, err := f.manager.Browser()
	if err != nil {
		return "", err
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer f.manager.PageDone()
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	return page.HTML()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
