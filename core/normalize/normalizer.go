// Package normalize holds the text and markup normalizations shared by the
// extractor, the re-anchorer and the renderers: whitespace collapsing,
// character-based truncation, and HTML to Markdown conversion.
package normalize

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// MarkdownNormalizer converts annotated HTML fragments to Markdown.
// Guidance pages lean on tables, so the table plugin is enabled.
type MarkdownNormalizer struct {
	conv *converter.Converter
}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Normalize converts an HTML fragment into Markdown. Relative links and
// images are resolved against pageURL when it is set.
func (n *MarkdownNormalizer) Normalize(html, pageURL string) (string, error) {
	var (
		markdown string
		err      error
	)
	if pageURL != "" {
		markdown, err = n.conv.ConvertString(html, converter.WithDomain(pageURL))
	} else {
		markdown, err = n.conv.ConvertString(html)
	}
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
