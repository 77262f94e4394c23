package main

import (
	"fmt"

	"github.com/fwojciec/elemsel"
	"github.com/fwojciec/elemsel/crawl"
	"github.com/fwojciec/elemsel/fs"
	elslog "github.com/fwojciec/elemsel/slog"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	if (c.Sitemap || c.Follow) && len(c.URLs) != 1 {
		err := elemsel.Errorf(elemsel.EINVALID, "--sitemap and --follow take exactly one site URL")
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}

	urlFilter, err := elemsel.CompileURLFilter(c.Include, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}

	filter, indexer, err := c.Build(deps.logger())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}

	fetcher := deps.Fetcher
	if c.JS {
		browser, err := deps.Browser()
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
			return err
		}
		defer browser.Close()
		fetcher = browser
	}

	var writer elemsel.DocumentWriter = deps.Documents
	var files *fs.Writer
	if c.Out != "" {
		files = fs.NewWriter(c.Out, indexer)
		writer = files
	}

	crawler := &crawl.Crawler{
		Sitemaps:    deps.Sitemaps,
		Fetcher:     fetcher,
		Parser:      deps.Parser,
		Processor:   elslog.NewLoggingProcessor(filter, deps.logger()),
		Documents:   writer,
		Links:       deps.Links,
		RateLimiter: deps.RateLimiter,
		Logger:      deps.logger(),
		Concurrency: c.Concurrency,
		MaxPages:    c.MaxPages,
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			if event.Total > 0 {
				fmt.Fprintf(deps.Stdout, "  Found %d URLs\n", event.Total)
			}
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, 80), event.Error)
		}
	}

	var result *crawl.Result
	switch {
	case c.Sitemap:
		result, err = crawler.CrawlSite(deps.Ctx, c.URLs[0], urlFilter, c.Follow, progress)
	case c.Follow:
		result, err = crawler.FollowLinks(deps.Ctx, c.URLs[0], urlFilter, progress)
	default:
		urls := make([]string, 0, len(c.URLs))
		for _, u := range c.URLs {
			if urlFilter.Match(u) {
				urls = append(urls, u)
			}
		}
		result, err = crawler.CrawlURLs(deps.Ctx, urls, progress)
	}
	if err == nil {
		err = deps.Ctx.Err()
	}

	if files != nil {
		if err != nil {
			_ = files.Abort()
		} else if cerr := files.Commit(); cerr != nil {
			err = fmt.Errorf("writing %s: %w", c.Out, cerr)
		}
	}

	if err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "  %s\n", crawl.FormatResult(result))
	return nil
}
