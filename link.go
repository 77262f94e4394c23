package elemsel

// LinkExtractor finds the pages a document links to.
type LinkExtractor interface {
	// ExtractLinks returns the absolute URLs of same-host links in rawHTML,
	// resolved against baseURL, without fragments, in document order and
	// without duplicates.
	ExtractLinks(rawHTML string, baseURL string) ([]string, error)
}
