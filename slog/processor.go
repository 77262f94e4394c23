package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/elemsel"
)

// Ensure LoggingProcessor implements elemsel.Processor.
var _ elemsel.Processor = (*LoggingProcessor)(nil)

// modeReporter is implemented by processors that can report how a document
// will be filtered, such as *elemsel.Filter.
type modeReporter interface {
	Mode(doc *elemsel.Document) elemsel.Mode
}

// LoggingProcessor wraps a Processor with debug logging.
type LoggingProcessor struct {
	next   elemsel.Processor
	logger *slog.Logger
}

// NewLoggingProcessor creates a new LoggingProcessor.
func NewLoggingProcessor(next elemsel.Processor, logger *slog.Logger) *LoggingProcessor {
	return &LoggingProcessor{next: next, logger: logger}
}

// Process delegates to the wrapped processor and logs the filtering mode
// and the resulting text length.
func (p *LoggingProcessor) Process(doc *elemsel.Document) (out *elemsel.Document) {
	attrs := []any{"url", doc.URL}
	if r, ok := p.next.(modeReporter); ok {
		attrs = append(attrs, "mode", r.Mode(doc).String())
	}

	defer func(begin time.Time) {
		p.logger.Debug("process", append(attrs,
			"chars", len(out.Text),
			"fields", len(out.Metadata),
			"duration", time.Since(begin),
		)...)
	}(time.Now())
	return p.next.Process(doc)
}
