package annotate

import (
	"errors"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	errDetached = errors.New("text node has no parent")
	errBadRange = errors.New("range outside text node")
	errRawText  = errors.New("text node belongs to a raw text element")
)

// rawTextParents hold text that is not rendered as markup, so a marker
// cannot be spliced into them.
var rawTextParents = map[atom.Atom]bool{
	atom.Script:    true,
	atom.Style:     true,
	atom.Textarea:  true,
	atom.Title:     true,
	atom.Noscript:  true,
	atom.Template:  true,
	atom.Iframe:    true,
	atom.Xmp:       true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Plaintext: true,
}

func newElement(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// newMarker builds an empty marker element.
func newMarker(className, id string) *html.Node {
	return newElement(atom.Span,
		html.Attribute{Key: "class", Val: className},
		html.Attribute{Key: MarkerAttr, Val: id},
	)
}

// wrapRange splits text node n around [start, end) and moves that range into
// marker. Text outside the range stays as sibling text.
func wrapRange(n *html.Node, start, end int, marker *html.Node) error {
	parent := n.Parent
	if parent == nil {
		return errDetached
	}
	if rawTextParents[parent.DataAtom] {
		return errRawText
	}
	if start < 0 || end > len(n.Data) || start >= end {
		return errBadRange
	}

	before, middle, after := n.Data[:start], n.Data[start:end], n.Data[end:]
	next := n.NextSibling

	marker.AppendChild(newText(middle))
	parent.InsertBefore(marker, next)
	if after != "" {
		parent.InsertBefore(newText(after), next)
	}
	if before == "" {
		parent.RemoveChild(n)
	} else {
		n.Data = before
	}
	return nil
}

// unwrap replaces n with its children and merges the text nodes that end up
// adjacent, restoring the text nodes that existed before wrapping.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
	mergeText(parent)
}

// mergeText joins adjacent text children of parent.
func mergeText(parent *html.Node) {
	c := parent.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			parent.RemoveChild(next)
			continue
		}
		c = next
	}
}

// hasClass reports whether n carries cls in its class attribute.
func hasClass(n *html.Node, cls string) bool {
	for _, c := range strings.Fields(dom.GetAttributeOr(n, "class", "")) {
		if c == cls {
			return true
		}
	}
	return false
}

func hasAnyClass(n *html.Node, classes []string) bool {
	for _, cls := range classes {
		if hasClass(n, cls) {
			return true
		}
	}
	return false
}

// findAll returns the element descendants of root matching pred, in
// document order.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// textNodes returns the text nodes under root in document order. Raw text
// elements and heading summary blocks are skipped.
func textNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				out = append(out, c)
			case html.ElementNode:
				if rawTextParents[c.DataAtom] || hasClass(c, SummaryClass) {
					continue
				}
				walk(c)
			}
		}
	}
	walk(root)
	return out
}
