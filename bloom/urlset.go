// Package bloom provides probabilistic URL de-duplication using Bloom filters.
package bloom

import (
	"net/url"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// URLSet records which URLs have been seen. URLs are normalized before
// testing: the fragment is dropped and the scheme and host are lower-cased.
//
// False positives are possible, so an unseen URL is occasionally reported
// as seen; false negatives are not. URLSet is safe for concurrent use.
type URLSet struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewURLSet creates a set sized for n expected URLs with the given false
// positive rate.
func NewURLSet(n uint, fpRate float64) *URLSet {
	return &URLSet{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records rawURL and reports whether it was new.
func (s *URLSet) Add(rawURL string) bool {
	key := Normalize(rawURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.f.TestAndAddString(key)
}

// Seen reports whether rawURL might have been added.
func (s *URLSet) Seen(rawURL string) bool {
	key := Normalize(rawURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.TestString(key)
}

// EstimatedCount returns the approximate number of distinct URLs added.
func (s *URLSet) EstimatedCount() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint(s.f.ApproximatedSize())
}

// Normalize returns the de-duplication key for rawURL. Unparseable input
// only has its fragment removed.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if idx := strings.IndexByte(rawURL, '#'); idx != -1 {
			return rawURL[:idx]
		}
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}
