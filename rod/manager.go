package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/elemsel"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// BrowserManager owns the headless browser and restarts it after a number
// of pages, since Chrome memory use grows over a long crawl even when every
// page is closed.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int64
	maxPages int64
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages after which the browser is
// recycled. Non-positive values keep DefaultMaxPages.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		if n > 0 {
			bm.maxPages = n
		}
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}

	browser, l, err := launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = browser, l

	return bm, nil
}

// Browser returns the current browser, first replacing it if it has served
// maxPages pages. If a replacement cannot be launched the old browser keeps
// serving. Returns EINVALID after Close.
func (bm *BrowserManager) Browser() (*rod.Browser, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, elemsel.Errorf(elemsel.EINVALID, "browser manager is closed")
	}

	if bm.pages >= bm.maxPages {
		if browser, l, err := launch(); err == nil {
			_ = bm.shutdown()
			bm.browser, bm.launcher = browser, l
			bm.pages = 0
		}
	}

	return bm.browser, nil
}

// PageDone records that a page obtained from Browser has been closed.
func (bm *BrowserManager) PageDone() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.pages++
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.shutdown()
}

// LauncherPID returns the process ID of the browser launcher, or 0 when
// no browser is running.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// shutdown closes the current browser and kills its launcher.
// Must be called with mu held.
func (bm *BrowserManager) shutdown() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// launch starts a headless browser with flags that keep background pages
// from being throttled during a crawl.
func launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return browser, l, nil
}
