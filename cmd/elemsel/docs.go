package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/elemsel"
	"github.com/fwojciec/elemsel/charset"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	filter := elemsel.DocumentFilter{Limit: c.Limit, Offset: c.Offset}
	if c.URL != "" {
		filter.URL = &c.URL
	}

	docs, err := deps.Documents.FindDocuments(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'elemsel crawl' to add some.")
		return nil
	}

	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n     %s\n",
			doc.ID, doc.FetchedAt.Format("2006-01-02"), title, doc.URL)
	}

	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	doc, err := deps.Documents.FindDocumentByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}

	codec, err := charset.NewCodec(c.Charset)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}

	indexer := &elemsel.Indexer{
		StorageField: c.StorageField,
		Codec:        codec,
		Logger:       deps.logger(),
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(indexer.Index(doc))
}

// Run executes the rm command.
func (c *RmCmd) Run(deps *Dependencies) error {
	if err := deps.Documents.DeleteDocument(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", elemsel.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Deleted document %s\n", c.ID)
	return nil
}
