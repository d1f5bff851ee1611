// Package core defines the shared types and pipeline interfaces for PageMark.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	HTML        string
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Summarizer turns extracted page content into a labelled Snapshot.
// Implementations talk to a remote service and may be slow.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (*Snapshot, error)
}

// Renderer converts an annotation Report into a final output format.
type Renderer interface {
	Render(report *Report) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
