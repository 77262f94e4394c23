package crawl

import (
	"sync"

	"github.com/fwojciec/elemsel/bloom"
)

// Frontier is a first-in first-out queue of URLs waiting to be crawled,
// with Bloom filter de-duplication. URLs are visited breadth-first.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.URLSet
	queue []string
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewURLSet(n, fpRate),
	}
}

// Push queues rawURL without its fragment.
// Returns false if the URL has already been seen.
func (f *Frontier) Push(rawURL string) bool {
	if !f.seen.Add(rawURL) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, bloom.Normalize(rawURL))
	return true
}

// Pop returns the oldest queued URL.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return u, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been processed or queued.
func (f *Frontier) Seen(rawURL string) bool {
	return f.seen.Seen(rawURL)
}
