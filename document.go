package elemsel

import (
	"context"
	"time"
)

// Document is a fetched HTML page moving through the extraction pipeline.
type Document struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`

	// Text is the primary text field. A Parser fills it with the text of the
	// whole page; filtering may replace it.
	Text string `json:"text"`

	// Root is the parsed tree. It is not persisted.
	Root *Node `json:"-"`

	// Metadata holds side-channel fields keyed by name.
	Metadata map[string][]byte `json:"metadata,omitempty"`

	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	return nil
}

// SetMetadata stores value under name, allocating the map on first use.
func (d *Document) SetMetadata(name string, value []byte) {
	if d.Metadata == nil {
		d.Metadata = make(map[string][]byte)
	}
	d.Metadata[name] = value
}

// Parser builds Documents from raw HTML.
type Parser interface {
	// Parse parses rawHTML into a Document whose Root is the node tree and
	// whose Text is the text of the entire page. baseURL becomes the
	// document URL.
	Parse(rawHTML string, baseURL string) (*Document, error)
}

// Renderer serializes a node tree back to HTML.
type Renderer interface {
	Render(n *Node) (string, error)
}

// DocumentWriter writes documents to storage.
type DocumentWriter interface {
	CreateDocument(ctx context.Context, doc *Document) error
}

// DocumentService represents a service for managing extracted documents.
type DocumentService interface {
	// CreateDocument stores a document together with its metadata fields.
	CreateDocument(ctx context.Context, doc *Document) error

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// DeleteDocument permanently removes a document and its metadata.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, id string) error
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	ID  *string `json:"id"`
	URL *string `json:"url"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
