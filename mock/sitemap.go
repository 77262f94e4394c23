package mock

import (
	"context"

	"github.com/fwojciec/elemsel"
)

var _ elemsel.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of elemsel.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *elemsel.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *elemsel.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}

var _ elemsel.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of elemsel.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(rawHTML string, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(rawHTML string, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(rawHTML, baseURL)
}
