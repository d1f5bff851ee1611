package annotate

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/chunk"
	"github.com/gaurav-prasanna/pagemark/core/extract"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// summaryPolicy keeps light inline emphasis in summary text and drops
// everything else.
var summaryPolicy = bluemonday.NewPolicy().AllowElements("b", "strong", "i", "em", "code")

// ApplyHeadingSummaries inserts summaries[i] right after the i-th h1-h3 of
// the content root. Summaries beyond the last heading are dropped. It returns
// the number of blocks inserted.
func ApplyHeadingSummaries(doc *goquery.Document, summaries []core.HeadingSummary) int {
	if doc == nil || len(summaries) == 0 {
		return 0
	}
	root := extract.ContentRoot(doc)
	headings := chunk.Headings(root).Nodes

	inserted := 0
	for i, s := range summaries {
		if i >= len(headings) {
			break
		}
		h := headings[i]
		if h.Parent == nil {
			continue
		}
		h.Parent.InsertBefore(summaryBlock(s), h.NextSibling)
		inserted++
	}
	return inserted
}

func summaryBlock(s core.HeadingSummary) *html.Node {
	div := newElement(atom.Div, html.Attribute{Key: "class", Val: SummaryClass})

	label := newElement(atom.Span, html.Attribute{
		Key: "class",
		Val: relevanceClass + " " + relevanceTier(s.Relevance),
	})
	label.AppendChild(newText(string(s.Relevance)))
	div.AppendChild(label)

	for _, n := range summaryNodes(s.OneLineSummary) {
		div.AppendChild(n)
	}
	return div
}

// summaryNodes sanitizes summary markup and parses it into nodes ready to
// be appended to a block.
func summaryNodes(summary string) []*html.Node {
	clean := summaryPolicy.Sanitize(summary)
	if clean == "" {
		return nil
	}
	ctx := newElement(atom.Div)
	nodes, err := html.ParseFragment(strings.NewReader(clean), ctx)
	if err != nil {
		return []*html.Node{newText(summary)}
	}
	return nodes
}
