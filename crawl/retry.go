package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/elemsel"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry fetches url, retrying up to 3 times with delays of 1s, 2s
// and 4s. Retries are logged at warn level when logger is non-nil.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger) (string, error) {
	return FetchWithRetryDelays(ctx, url, fetch, logger, DefaultRetryDelays())
}

// FetchWithRetryDelays is like FetchWithRetry but with one retry per
// delay in delays. ENOTFOUND and EINVALID errors are permanent and returned
// without retrying.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if permanent(err) || attempt >= maxAttempts-1 {
			break
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logger != nil {
			logger.Warn("retry fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}

// permanent reports whether retrying err cannot succeed.
func permanent(err error) bool {
	switch elemsel.ErrorCode(err) {
	case elemsel.ENOTFOUND, elemsel.EINVALID:
		return true
	default:
		return false
	}
}
