// Package fs writes extracted documents to a directory tree.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/elemsel"
	"gopkg.in/yaml.v3"
)

// Extension is the file extension of written documents.
const Extension = ".txt"

// URLToPath converts a document URL to a relative file path.
// Example: https://example.com/docs/api/users → docs/api/users.txt
//
// Dot segments are resolved first so the result never leaves the output
// directory.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", elemsel.Errorf(elemsel.EINVALID, "invalid document URL: %v", err)
	}

	p := u.Path
	trailing := strings.HasSuffix(p, "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")

	if p == "" {
		return "index" + Extension, nil
	}
	if trailing {
		return p + "/index" + Extension, nil
	}
	return p + Extension, nil
}

// frontmatter is the YAML header written before the document text.
type frontmatter struct {
	Source  string            `yaml:"source"`
	Title   string            `yaml:"title,omitempty"`
	Crawled string            `yaml:"crawled"`
	Hash    string            `yaml:"hash,omitempty"`
	Fields  map[string]string `yaml:"fields,omitempty"`
}

// FormatDocument formats rec with a YAML frontmatter header. Fields decoded
// by the Indexer appear under "fields".
func FormatDocument(doc *elemsel.Document, rec *elemsel.IndexDocument) (string, error) {
	fm := frontmatter{
		Source:  doc.URL,
		Title:   doc.Title,
		Crawled: doc.FetchedAt.Format("2006-01-02"),
		Hash:    doc.ContentHash,
		Fields:  rec.Fields,
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(rec.Content)
	return buf.String(), nil
}

// Ensure Writer implements elemsel.DocumentWriter at compile time.
var _ elemsel.DocumentWriter = (*Writer)(nil)

// Writer writes documents as text files under a directory.
//
// Files are staged in a sibling "<dir>.tmp" directory. Commit replaces dir
// with the staged tree; Abort discards it. A crawl that fails half-way
// therefore leaves the previous output intact.
type Writer struct {
	dir     string
	indexer *elemsel.Indexer
}

// NewWriter creates a Writer for dir. indexer decodes the storage field
// into the frontmatter; a nil indexer writes the primary text only.
func NewWriter(dir string, indexer *elemsel.Indexer) *Writer {
	if indexer == nil {
		indexer = &elemsel.Indexer{}
	}
	return &Writer{
		dir:     filepath.Clean(dir),
		indexer: indexer,
	}
}

func (w *Writer) stagingDir() string {
	return w.dir + ".tmp"
}

// CreateDocument writes doc to the staging directory. A zero FetchedAt is
// replaced with the current time.
func (w *Writer) CreateDocument(ctx context.Context, doc *elemsel.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = time.Now().UTC()
	}

	relPath, err := URLToPath(doc.URL)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(w.stagingDir(), filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}

	content, err := FormatDocument(doc, w.indexer.Index(doc))
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0o644)
}

// Commit replaces the output directory with the staged documents. Committing
// without any written document leaves the output directory untouched.
func (w *Writer) Commit() error {
	if _, err := os.Stat(w.stagingDir()); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return err
	}
	return os.Rename(w.stagingDir(), w.dir)
}

// Abort discards the staged documents.
func (w *Writer) Abort() error {
	return os.RemoveAll(w.stagingDir())
}
