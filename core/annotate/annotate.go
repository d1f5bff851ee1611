// Package annotate maps externally supplied passages back onto a parsed
// page and wraps them in styled, identifiable markers.
//
// An enhancement pass is two-phase: Clear removes everything a previous pass
// inserted, then ApplyHeadingSummaries and Apply insert the new markup. All
// functions operate on the content root, recomputed on every call.
package annotate

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/extract"
	"github.com/gaurav-prasanna/pagemark/core/normalize"
	"golang.org/x/net/html"
)

// Clear removes heading summary blocks and unwraps every marker under the
// content root. Calling it on a clean document does nothing.
func Clear(doc *goquery.Document, styles StyleTable) {
	root := rootNode(doc)
	if root == nil {
		return
	}

	for _, n := range findAll(root, func(n *html.Node) bool { return hasClass(n, SummaryClass) }) {
		if n.Parent != nil {
			parent := n.Parent
			parent.RemoveChild(n)
			mergeText(parent)
		}
	}

	classes := styles.MarkerClasses()
	isMarker := func(n *html.Node) bool {
		return hasAnyClass(n, classes) || (n.Data == "span" && hasAttr(n, MarkerAttr))
	}
	for _, n := range findAll(root, isMarker) {
		unwrap(n)
	}
}

// Apply wraps the first occurrence of each item's text and returns the ids
// that received a marker, in item order. Items that cannot be matched or
// wrapped are skipped.
func Apply(doc *goquery.Document, items []core.AnnotationItem, styles StyleTable) []string {
	applied := []string{}
	root := rootNode(doc)
	if root == nil {
		return applied
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		if wrapFirstMatch(root, item.Text, styles.ClassFor(item.Type), item.ID) {
			seen[item.ID] = true
			applied = append(applied, item.ID)
		}
	}
	return applied
}

// wrapFirstMatch wraps text in the first text node under root that contains
// it, or one of its prefixes. It reports whether a marker was inserted.
func wrapFirstMatch(root *html.Node, text, className, id string) bool {
	cands := candidates(normalize.Clean(text))
	if len(cands) == 0 || className == "" {
		return false
	}

	for _, n := range textNodes(root) {
		search, ok := firstCandidate(normalize.Collapse(n.Data), cands)
		if !ok {
			continue
		}
		start, end, ok := locate(n.Data, search)
		if !ok {
			continue
		}
		return wrapRange(n, start, end, newMarker(className, id)) == nil
	}
	return false
}

func rootNode(doc *goquery.Document) *html.Node {
	if doc == nil {
		return nil
	}
	root := extract.ContentRoot(doc)
	if root.Length() == 0 {
		return nil
	}
	return root.Nodes[0]
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Annotator bundles a style table and a Navigator so callers can run whole
// enhancement passes.
type Annotator struct {
	Styles    StyleTable
	Navigator *Navigator
}

// New creates an Annotator with the given style table and a Navigator that
// has no viewport.
func New(styles StyleTable) *Annotator {
	return &Annotator{Styles: styles, Navigator: &Navigator{}}
}

// Enhance runs one full pass: clear, heading summaries, then highlights.
func (a *Annotator) Enhance(doc *goquery.Document, summaries []core.HeadingSummary, items []core.AnnotationItem) []string {
	Clear(doc, a.Styles)
	ApplyHeadingSummaries(doc, summaries)
	return Apply(doc, items, a.Styles)
}

// Clear removes the markup of the previous pass.
func (a *Annotator) Clear(doc *goquery.Document) {
	Clear(doc, a.Styles)
}

// Scroll brings the marker with the given id into view.
func (a *Annotator) Scroll(doc *goquery.Document, id string) ScrollResult {
	if a.Navigator == nil {
		a.Navigator = &Navigator{}
	}
	return a.Navigator.Scroll(doc, id)
}
