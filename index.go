package elemsel

import "log/slog"

// IndexDocument is the record handed to a search index.
type IndexDocument struct {
	URL     string            `json:"url"`
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Indexer turns stored documents into index records. When StorageField is
// set, the extracted text written by Filter is decoded from the document
// metadata and added to the record under the same name.
type Indexer struct {
	StorageField string

	// Codec decodes the storage field. Defaults to UTF8Codec.
	Codec FieldCodec

	// Logger reports decoding failures. Defaults to discarding output.
	Logger *slog.Logger
}

// Index builds the index record for doc. A storage field that is missing
// is skipped; one that fails to decode is logged and skipped.
func (ix *Indexer) Index(doc *Document) *IndexDocument {
	rec := &IndexDocument{
		URL:     doc.URL,
		Title:   doc.Title,
		Content: doc.Text,
	}

	if ix.StorageField == "" {
		return rec
	}

	raw, ok := doc.Metadata[ix.StorageField]
	if !ok {
		return rec
	}

	codec := ix.Codec
	if codec == nil {
		codec = UTF8Codec{}
	}

	text, err := codec.Decode(raw)
	if err != nil {
		logger := ix.Logger
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		logger.Error("decode storage field",
			"url", doc.URL,
			"field", ix.StorageField,
			"err", err,
		)
		return rec
	}

	rec.Fields = map[string]string{ix.StorageField: text}
	return rec
}
