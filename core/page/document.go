// Package page wraps a parsed HTML document together with the URL it was
// loaded from. Every extraction and annotation pass works on a Document.
package page

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/pagemark/core/normalize"
	"golang.org/x/net/html"
)

// Document is a parsed page. The embedded goquery document is mutated in
// place by annotation passes.
type Document struct {
	*goquery.Document
	location string
}

// Parse reads HTML from r.
func Parse(r io.Reader, location string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{Document: doc, location: location}, nil
}

// ParseString parses an HTML string.
func ParseString(src, location string) (*Document, error) {
	return Parse(strings.NewReader(src), location)
}

// URL returns the address the document was loaded from.
func (d *Document) URL() string {
	return d.location
}

// Title returns the whitespace-collapsed <title> text.
func (d *Document) Title() string {
	return normalize.Clean(d.Find("title").First().Text())
}

// HTML serializes the whole document, doctype included.
func (d *Document) HTML() (string, error) {
	if d == nil || d.Document == nil || len(d.Nodes) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.Nodes[0]); err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}
	return buf.String(), nil
}

// TextContent concatenates every text node under n, like the DOM's
// textContent property.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode, html.DocumentNode:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// NextElementSibling returns the next sibling of n that is an element.
func NextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}
