package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/elemsel"
	"github.com/fwojciec/elemsel/charset"
	"github.com/fwojciec/elemsel/yaml"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Parser      elemsel.Parser
	Renderer    elemsel.Renderer
	Converter   elemsel.Converter
	Links       elemsel.LinkExtractor
	Sitemaps    elemsel.SitemapService
	Fetcher     elemsel.Fetcher
	RateLimiter elemsel.DomainLimiter
	Documents   elemsel.DocumentService

	// Browser launches a JavaScript-capable fetcher on demand. The caller
	// closes it.
	Browser func() (elemsel.Fetcher, error)
}

// logger returns the configured logger or one that discards output.
func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug output to stderr"`

	Extract ExtractCmd `cmd:"" help:"Extract the filtered text of a page or HTML file"`
	Check   CheckCmd   `cmd:"" help:"Parse a selector list and print its criteria"`
	Crawl   CrawlCmd   `cmd:"" help:"Extract and store many pages"`
	Docs    DocsCmd    `cmd:"" help:"List stored documents"`
	Show    ShowCmd    `cmd:"" help:"Print a stored document's index record"`
	Rm      RmCmd      `cmd:"" help:"Delete a stored document"`
}

// FilterFlags configure the element filter. Flags override values read
// from --config.
type FilterFlags struct {
	Config       string `short:"c" type:"path" help:"YAML file with parser.html.selector.* settings"`
	Blacklist    string `short:"b" help:"Comma-separated selectors of subtrees to drop"`
	Whitelist    string `short:"w" help:"Comma-separated selectors of subtrees to keep"`
	StorageField string `name:"storage-field" help:"Store the extracted text in this metadata field"`
	Protected    string `help:"Comma-separated page URLs never filtered"`
	Mode         string `help:"Selector engine: selector (default) or legacy"`
	Charset      string `help:"Encoding of the storage field (default utf-8)"`
}

// Settings merges the config file, if any, with the flags.
func (f *FilterFlags) Settings() (elemsel.Settings, error) {
	var s elemsel.Settings
	if f.Config != "" {
		var err error
		if s, err = yaml.LoadSettings(f.Config); err != nil {
			return elemsel.Settings{}, err
		}
	}
	return s.Merge(elemsel.Settings{
		Blacklist:     f.Blacklist,
		Whitelist:     f.Whitelist,
		StorageField:  f.StorageField,
		ProtectedURLs: f.Protected,
		Mode:          f.Mode,
		Charset:       f.Charset,
	}), nil
}

// Build returns the filter and the matching indexer for the configured
// settings. Both share the storage field codec.
func (f *FilterFlags) Build(logger *slog.Logger) (*elemsel.Filter, *elemsel.Indexer, error) {
	s, err := f.Settings()
	if err != nil {
		return nil, nil, err
	}

	codec, err := charset.NewCodec(s.Charset)
	if err != nil {
		return nil, nil, err
	}

	filter, err := elemsel.NewFilter(s,
		elemsel.WithLogger(logger),
		elemsel.WithCodec(codec),
	)
	if err != nil {
		return nil, nil, err
	}

	indexer := &elemsel.Indexer{
		StorageField: s.StorageField,
		Codec:        codec,
		Logger:       logger,
	}
	return filter, indexer, nil
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	FilterFlags `embed:""`

	Source string `arg:"" help:"Page URL or local HTML file"`
	URL    string `name:"url" help:"Document URL for a local file (defaults to the path)"`
	Format string `short:"f" enum:"text,json,html,markdown" default:"text" help:"Output format: text, json, html or markdown"`
	JS     string `name:"js" enum:"off,on,auto" default:"off" help:"Render with a headless browser: off, on or auto"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Selectors string `arg:"" help:"Comma-separated selector list"`
	Legacy    bool   `help:"Show how the legacy engine reads the list"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	FilterFlags `embed:""`

	URLs        []string `arg:"" name:"url" help:"Page URLs, or the site URL with --sitemap or --follow"`
	Sitemap     bool     `short:"s" help:"Discover pages from the site's sitemaps"`
	Follow      bool     `help:"Discover pages by following links (after an empty sitemap with --sitemap)"`
	Include     []string `short:"i" help:"Only crawl URLs matching this regex (repeatable)"`
	Exclude     []string `short:"x" help:"Skip URLs matching this regex (repeatable)"`
	MaxPages    int      `name:"max-pages" default:"1000" help:"Page limit when following links"`
	Concurrency int      `default:"10" help:"Concurrent fetch limit"`
	RPS         float64  `name:"rps" default:"2" help:"Requests per second per host (0 for unlimited)"`
	JS          bool     `name:"js" help:"Render pages with a headless browser"`
	Out         string   `short:"o" type:"path" help:"Write documents as files under this directory instead of the database"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct {
	URL    string `help:"Only show the document with this URL"`
	Limit  int    `short:"n" default:"50" help:"Maximum documents to list"`
	Offset int    `help:"Documents to skip"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID           string `arg:"" help:"Document ID"`
	StorageField string `name:"storage-field" help:"Decode this metadata field into the record"`
	Charset      string `help:"Encoding of the storage field (default utf-8)"`
}

// RmCmd is the "rm" subcommand.
type RmCmd struct {
	ID string `arg:"" help:"Document ID"`
}
