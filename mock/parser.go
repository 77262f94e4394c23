package mock

import "github.com/fwojciec/elemsel"

var _ elemsel.Parser = (*Parser)(nil)

// Parser is a mock implementation of elemsel.Parser.
type Parser struct {
	ParseFn func(rawHTML string, baseURL string) (*elemsel.Document, error)
}

func (p *Parser) Parse(rawHTML string, baseURL string) (*elemsel.Document, error) {
	return p.ParseFn(rawHTML, baseURL)
}

var _ elemsel.Processor = (*Processor)(nil)

// Processor is a mock implementation of elemsel.Processor.
type Processor struct {
	ProcessFn func(doc *elemsel.Document) *elemsel.Document
}

func (p *Processor) Process(doc *elemsel.Document) *elemsel.Document {
	return p.ProcessFn(doc)
}
