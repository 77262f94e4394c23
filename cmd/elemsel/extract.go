package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/fwojciec/elemsel"
	"github.com/fwojciec/elemsel/crawl"
	elslog "github.com/fwojciec/elemsel/slog"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	filter, indexer, err := c.Build(deps.logger())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}
	proc := elslog.NewLoggingProcessor(filter, deps.logger())

	html, docURL, err := c.load(deps, proc)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}

	doc, err := deps.Parser.Parse(html, docURL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}

	switch c.Format {
	case "html", "markdown":
		root, mode := filter.Filtered(doc)
		if mode == elemsel.ModePassThrough {
			root = doc.Root
		}
		out, err := deps.Renderer.Render(root)
		if err != nil {
			return err
		}
		if c.Format == "markdown" {
			if out, err = deps.Converter.Convert(out, doc.URL); err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
				return err
			}
		}
		fmt.Fprintln(deps.Stdout, out)
	case "json":
		rec := indexer.Index(proc.Process(doc))
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	default:
		rec := indexer.Index(proc.Process(doc))
		if indexer.StorageField != "" {
			fmt.Fprintln(deps.Stdout, rec.Fields[indexer.StorageField])
			return nil
		}
		fmt.Fprintln(deps.Stdout, rec.Content)
	}

	return nil
}

// load returns the raw HTML of the source and the URL the document is
// filed under.
func (c *ExtractCmd) load(deps *Dependencies, proc elemsel.Processor) (string, string, error) {
	if !isWebURL(c.Source) {
		b, err := os.ReadFile(c.Source)
		if err != nil {
			return "", "", elemsel.Errorf(elemsel.ENOTFOUND, "cannot read %q: %v", c.Source, err)
		}
		docURL := c.URL
		if docURL == "" {
			docURL = c.Source
		}
		return string(b), docURL, nil
	}

	switch c.JS {
	case "on":
		html, err := c.render(deps)
		return html, c.Source, err
	case "auto":
		html, err := c.probe(deps, proc)
		return html, c.Source, err
	default:
		html, err := deps.Fetcher.Fetch(deps.Ctx, c.Source)
		return html, c.Source, err
	}
}

// render fetches the source with a headless browser.
func (c *ExtractCmd) render(deps *Dependencies) (string, error) {
	browser, err := deps.Browser()
	if err != nil {
		return "", err
	}
	defer browser.Close()
	return browser.Fetch(deps.Ctx, c.Source)
}

// probe fetches the source over HTTP and with a browser and keeps the
// browser rendering only when it yields substantially more text. A failure
// of one fetcher falls back to the other.
func (c *ExtractCmd) probe(deps *Dependencies, proc elemsel.Processor) (string, error) {
	httpHTML, httpErr := deps.Fetcher.Fetch(deps.Ctx, c.Source)
	rodHTML, rodErr := c.render(deps)

	switch {
	case httpErr != nil && rodErr != nil:
		return "", httpErr
	case httpErr != nil:
		return rodHTML, nil
	case rodErr != nil:
		deps.logger().Warn("browser fetch failed, using HTTP response", "url", c.Source, "err", rodErr)
		return httpHTML, nil
	case crawl.ContentDiffers(c.Source, httpHTML, rodHTML, deps.Parser, proc):
		deps.logger().Info("page needs JavaScript, using browser rendering", "url", c.Source)
		return rodHTML, nil
	default:
		return httpHTML, nil
	}
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
