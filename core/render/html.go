package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/annotate"
)

// HTMLRenderer writes the annotated document with the marker stylesheet
// injected into its head.
type HTMLRenderer struct {
	Styles annotate.StyleTable
}

// NewHTMLRenderer creates an HTMLRenderer for the given style table.
func NewHTMLRenderer(styles annotate.StyleTable) *HTMLRenderer {
	return &HTMLRenderer{Styles: styles}
}

// Render returns the annotated page as HTML.
func (r *HTMLRenderer) Render(report *core.Report) ([]byte, error) {
	if report == nil || report.HTML == "" {
		return nil, fmt.Errorf("no annotated HTML to render")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(report.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing annotated HTML: %w", err)
	}

	doc.Find("style#" + StyleElementID).Remove()
	style := fmt.Sprintf("<style id=%q>\n%s</style>", StyleElementID, Stylesheet(r.Styles))
	doc.Find("head").First().AppendHtml(style)

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("serializing HTML: %w", err)
	}
	return []byte(out), nil
}

// Extension returns the file extension for HTML output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}
