// Package chunk splits a content root into heading-scoped text chunks.
//
// Each h1-h3 heading opens a chunk that collects the text of its following
// element siblings until a sibling heading of the same or a shallower level.
// Deeper sibling headings are swallowed into the body of the open chunk.
package chunk

import (
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/normalize"
	"github.com/gaurav-prasanna/pagemark/core/page"
	"golang.org/x/net/html"
)

const (
	// DefaultMaxChars caps a heading-scoped chunk.
	DefaultMaxChars = 15000
	// DefaultMaxFallbackChars caps the single chunk of a headingless page.
	DefaultMaxFallbackChars = 50000

	maxChunkLevel = 3
)

var headingMatcher = cascadia.MustCompile("h1, h2, h3")

// Headings returns the h1-h3 descendants of root in document order.
func Headings(root *goquery.Selection) *goquery.Selection {
	return root.FindMatcher(headingMatcher)
}

// HeadingLevel returns 1-6 for h1-h6 elements and 0 for anything else.
func HeadingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode {
		return 0
	}
	name := strings.ToLower(dom.NodeName(n))
	if len(name) != 2 || name[0] != 'h' || name[1] < '1' || name[1] > '6' {
		return 0
	}
	return int(name[1] - '0')
}

// Chunker splits a content root into heading-scoped chunks.
type Chunker struct {
	MaxChars         int // cap for heading-scoped chunks
	MaxFallbackChars int // cap for the whole-page fallback chunk
}

// New creates a Chunker with the default caps.
func New() *Chunker {
	return &Chunker{
		MaxChars:         DefaultMaxChars,
		MaxFallbackChars: DefaultMaxFallbackChars,
	}
}

// Chunk returns the chunks of root in document order. Empty chunks are
// dropped, so the result may be empty.
func (c *Chunker) Chunk(root *goquery.Selection) []core.Chunk {
	if root == nil || root.Length() == 0 {
		return nil
	}

	headings := Headings(root)
	if headings.Length() == 0 {
		text := normalize.Truncate(normalize.Clean(root.Text()), c.MaxFallbackChars)
		if text == "" {
			return nil
		}
		return []core.Chunk{{Heading: "", Text: text}}
	}

	chunks := make([]core.Chunk, 0, headings.Length())
	for _, h := range headings.Nodes {
		heading := normalize.Trim(page.TextContent(h))
		text := normalize.Truncate(normalize.Clean(sectionText(h, heading)), c.MaxChars)
		if text == "" {
			continue
		}
		chunks = append(chunks, core.Chunk{Heading: heading, Text: text})
	}
	return chunks
}

// sectionText joins the heading text with the text of the element siblings
// that belong to it.
func sectionText(h *html.Node, heading string) string {
	level := HeadingLevel(h)

	var b strings.Builder
	b.WriteString(heading)
	for sib := page.NextElementSibling(h); sib != nil; sib = page.NextElementSibling(sib) {
		if l := HeadingLevel(sib); l >= 1 && l <= maxChunkLevel && l <= level {
			break
		}
		b.WriteByte('\n')
		b.WriteString(page.TextContent(sib))
	}
	return b.String()
}
