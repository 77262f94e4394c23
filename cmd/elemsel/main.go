package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/elemsel"
	"github.com/fwojciec/elemsel/crawl"
	"github.com/fwojciec/elemsel/goquery"
	"github.com/fwojciec/elemsel/htmltomarkdown"
	elhttp "github.com/fwojciec/elemsel/http"
	"github.com/fwojciec/elemsel/rod"
	elslog "github.com/fwojciec/elemsel/slog"
	"github.com/fwojciec/elemsel/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing. When set, Run uses them instead of
	// wiring real implementations.
	DocumentService elemsel.DocumentService
	Fetcher         elemsel.Fetcher
	Browser         func() (elemsel.Fetcher, error)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("elemsel"),
		kong.Description("Extract the text of HTML pages through whitelist and blacklist element selectors."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'elemsel --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose)

	// Wire shared services.
	deps.Parser = goquery.NewParser()
	deps.Renderer = goquery.NewRenderer()
	deps.Converter = htmltomarkdown.NewConverter()
	deps.Links = goquery.NewLinkExtractor("")
	deps.Sitemaps = elslog.NewLoggingSitemapService(elhttp.NewSitemapService(nil), deps.Logger)

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = elhttp.NewFetcher()
	}
	deps.Fetcher = elslog.NewLoggingFetcher(fetcher, deps.Logger)
	defer deps.Fetcher.Close()

	browser := m.Browser
	if browser == nil {
		browser = func() (elemsel.Fetcher, error) {
			f, err := rod.NewFetcher()
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --js")
				return nil, fmt.Errorf("failed to start browser: %w", err)
			}
			return f, nil
		}
	}
	deps.Browser = func() (elemsel.Fetcher, error) {
		f, err := browser()
		if err != nil {
			return nil, err
		}
		return elslog.NewLoggingFetcher(f, deps.Logger), nil
	}

	// Wire storage for the commands that need it.
	if needsDB(kongCtx.Command(), cli) {
		docs := m.DocumentService
		if docs == nil {
			m.DB = sqlite.NewDB(m.DBPath)
			if err := m.DB.Open(); err != nil {
				fmt.Fprintf(stderr, "Hint: Set ELEMSEL_DB to use a different database path\n")
				return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
			}
			defer m.Close()
			docs = sqlite.NewDocumentService(m.DB)
		}
		deps.Documents = elslog.NewLoggingDocumentService(docs, deps.Logger)
	}

	if strings.HasPrefix(kongCtx.Command(), "crawl") {
		deps.RateLimiter = crawl.NewDomainLimiter(cli.Crawl.RPS, 1)
	}

	return kongCtx.Run(deps)
}

// needsDB reports whether the selected command reads or writes the
// document database.
func needsDB(command string, cli *CLI) bool {
	switch {
	case strings.HasPrefix(command, "crawl"):
		return cli.Crawl.Out == ""
	case strings.HasPrefix(command, "docs"),
		strings.HasPrefix(command, "show"),
		strings.HasPrefix(command, "rm"):
		return true
	default:
		return false
	}
}

// newLogger returns a text logger on w. Verbose output includes debug
// records.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("ELEMSEL_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "elemsel.db"
	}
	dir := filepath.Join(home, ".elemsel")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "elemsel.db")
}
