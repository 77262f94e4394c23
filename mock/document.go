package mock

import (
	"context"

	"github.com/fwojciec/elemsel"
)

var _ elemsel.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of elemsel.DocumentService.
type DocumentService struct {
	CreateDocumentFn   func(ctx context.Context, doc *elemsel.Document) error
	FindDocumentByIDFn func(ctx context.Context, id string) (*elemsel.Document, error)
	FindDocumentsFn    func(ctx context.Context, filter elemsel.DocumentFilter) ([]*elemsel.Document, error)
	DeleteDocumentFn   func(ctx context.Context, id string) error
}

func (s *DocumentService) CreateDocument(ctx context.Context, doc *elemsel.Document) error {
	return s.CreateDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*elemsel.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter elemsel.DocumentFilter) ([]*elemsel.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	return s.DeleteDocumentFn(ctx, id)
}

var _ elemsel.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of elemsel.DocumentWriter.
type DocumentWriter struct {
	CreateDocumentFn func(ctx context.Context, doc *elemsel.Document) error
}

func (w *DocumentWriter) CreateDocument(ctx context.Context, doc *elemsel.Document) error {
	return w.CreateDocumentFn(ctx, doc)
}
