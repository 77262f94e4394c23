package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/elemsel"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ elemsel.DocumentService = (*DocumentService)(nil)

// DocumentService implements elemsel.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

const documentColumns = "id, url, title, text, content_hash, fetched_at"

// CreateDocument stores doc and its metadata fields. A document already
// stored under the same URL is replaced. A missing ID, fetch time or
// content hash is filled in.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *elemsel.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = time.Now().UTC()
	}
	if doc.ContentHash == "" {
		doc.ContentHash = fmt.Sprintf("%016x", xxhash.Sum64String(doc.Text))
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE url = ?", doc.URL); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.URL, doc.Title, doc.Text, doc.ContentHash, doc.FetchedAt.UTC().Format(timeFormat)); err != nil {
		return err
	}

	for name, value := range doc.Metadata {
		if value == nil {
			value = []byte{}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_metadata (document_id, name, value) VALUES (?, ?, ?)
		`, doc.ID, name, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindDocumentByID retrieves a document and its metadata by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*elemsel.Document, error) {
	docs, err := s.FindDocuments(ctx, elemsel.DocumentFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, elemsel.Errorf(elemsel.ENOTFOUND, "document not found")
	}
	return docs[0], nil
}

// FindDocuments retrieves documents matching the filter, most recently
// fetched first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter elemsel.DocumentFilter) ([]*elemsel.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}

	query.WriteString(" ORDER BY fetched_at DESC, url ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	docs, err := s.queryDocuments(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if err := s.loadMetadata(ctx, doc); err != nil {
			return nil, err
		}
	}

	return docs, nil
}

// queryDocuments runs a document query and closes its rows before
// returning, since the pool holds a single connection.
func (s *DocumentService) queryDocuments(ctx context.Context, query string, args ...any) ([]*elemsel.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*elemsel.Document
	for rows.Next() {
		var doc elemsel.Document
		var fetchedAt string

		if err := rows.Scan(&doc.ID, &doc.URL, &doc.Title, &doc.Text, &doc.ContentHash, &fetchedAt); err != nil {
			return nil, err
		}

		if doc.FetchedAt, err = parseTime(fetchedAt, "fetched_at"); err != nil {
			return nil, err
		}

		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

func (s *DocumentService) loadMetadata(ctx context.Context, doc *elemsel.Document) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, value FROM document_metadata WHERE document_id = ?", doc.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value []byte
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		doc.SetMetadata(name, value)
	}
	return rows.Err()
}

// DeleteDocument permanently removes a document and its metadata.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return elemsel.Errorf(elemsel.ENOTFOUND, "document not found")
	}

	return nil
}

// CountMetadata returns the number of stored metadata fields.
func (s *DocumentService) CountMetadata(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document_metadata").Scan(&n)
	return n, err
}
