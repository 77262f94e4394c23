package crawl

import "github.com/fwojciec/elemsel"

// ContentDiffers reports whether the browser-rendered HTML of a page yields
// significantly more extracted text (over 50% longer) than the plain HTTP
// response, which suggests the page needs JavaScript rendering. Parse
// failures count as differing.
func ContentDiffers(url, httpHTML, rodHTML string, parser elemsel.Parser, proc elemsel.Processor) bool {
	httpLen, err := extractedLen(url, httpHTML, parser, proc)
	if err != nil {
		return true
	}

	rodLen, err := extractedLen(url, rodHTML, parser, proc)
	if err != nil {
		return true
	}

	if httpLen == 0 {
		return rodLen > 0
	}
	return float64(rodLen) > float64(httpLen)*1.5
}

func extractedLen(url, html string, parser elemsel.Parser, proc elemsel.Processor) (int, error) {
	doc, err := parser.Parse(html, url)
	if err != nil {
		return 0, err
	}
	return len(proc.Process(doc).Text), nil
}
