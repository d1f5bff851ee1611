// Package extract resolves the main content region of a page and turns it
// into the chunked payload the summarizer expects.
//
// The content root is chosen from a fixed priority table of selectors, each
// guarded by a minimum text length, falling back to <body>.
package extract

import (
	"errors"
	"fmt"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/chunk"
	"github.com/gaurav-prasanna/pagemark/core/page"
)

// ErrNoDocument is returned when there is nothing to extract from.
var ErrNoDocument = errors.New("no document loaded")

// PageExtractor builds PageContent from a parsed document. It never mutates
// the document.
type PageExtractor struct {
	chunker *chunk.Chunker
}

// New creates a PageExtractor with the default chunk caps.
func New() *PageExtractor {
	return &PageExtractor{chunker: chunk.New()}
}

// NewWithChunker creates a PageExtractor using the given chunker.
func NewWithChunker(c *chunk.Chunker) *PageExtractor {
	return &PageExtractor{chunker: c}
}

// Extract returns the title, URL and heading-scoped chunks of doc.
func (e *PageExtractor) Extract(doc *page.Document) (core.PageContent, error) {
	if doc == nil || doc.Document == nil || len(doc.Nodes) == 0 {
		return core.PageContent{}, ErrNoDocument
	}

	root := ContentRoot(doc.Document)
	if root.Length() == 0 {
		return core.PageContent{}, fmt.Errorf("resolving content root: empty document")
	}

	chunks := e.chunker.Chunk(root)
	if chunks == nil {
		chunks = []core.Chunk{}
	}
	return core.PageContent{
		Title:  doc.Title(),
		URL:    doc.URL(),
		Chunks: chunks,
	}, nil
}

// Extract is a convenience wrapper around New().Extract.
func Extract(doc *page.Document) (core.PageContent, error) {
	return New().Extract(doc)
}
