package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/elemsel"
	"golang.org/x/time/rate"
)

var _ elemsel.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter rate limits requests per host with one token bucket per
// host. Hosts are compared case-insensitively.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host with the given burst. A non-positive rps disables limiting;
// burst is at least 1.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    max(burst, 1),
	}
}

// Wait blocks until a request to domain is allowed.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.limiter(domain).Wait(ctx)
}

func (d *DomainLimiter) limiter(domain string) *rate.Limiter {
	key := strings.ToLower(domain)

	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[key]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.limiters[key] = l
	}
	return l
}
