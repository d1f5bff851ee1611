package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/pagemark/core/normalize"
)

// MinRootTextLen is the number of characters a candidate root must exceed.
const MinRootTextLen = 50

// rootStrategy is one row of the content root priority table.
type rootStrategy struct {
	matcher cascadia.Selector
	accept  func(*goquery.Selection) bool
}

func strategy(sel string) rootStrategy {
	return rootStrategy{matcher: cascadia.MustCompile(sel), accept: hasEnoughText}
}

func hasEnoughText(el *goquery.Selection) bool {
	return normalize.Len(normalize.Trim(el.Text())) > MinRootTextLen
}

// rootStrategies are tried in order; only the first element of each is
// considered.
var rootStrategies = []rootStrategy{
	strategy("article"),
	strategy("main"),
	strategy(`[role="main"]`),
	strategy(".content"),
	strategy("#content"),
	strategy("#main"),
}

var bodyMatcher = cascadia.MustCompile("body")

// ContentRoot returns the element used as the scope of extraction and
// annotation. It is recomputed on every call because annotation mutates the
// tree.
func ContentRoot(doc *goquery.Document) *goquery.Selection {
	if doc == nil {
		return &goquery.Selection{}
	}
	for _, s := range rootStrategies {
		el := doc.FindMatcher(s.matcher).First()
		if el.Length() == 0 {
			continue
		}
		if s.accept(el) {
			return el
		}
	}
	if body := doc.FindMatcher(bodyMatcher).First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// ContentRootHTML serializes the current content root, including its own tag.
func ContentRootHTML(doc *goquery.Document) (string, error) {
	root := ContentRoot(doc)
	if root.Length() == 0 {
		return "", nil
	}
	return goquery.OuterHtml(root)
}
