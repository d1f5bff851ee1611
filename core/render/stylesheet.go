// Package render provides output renderers for annotated pages.
package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/pagemark/core/annotate"
)

// StyleElementID identifies the injected stylesheet so it is replaced, not duplicated.
const StyleElementID = "cb-styles"

// palette holds the look of the stock marker classes.
var palette = map[string]string{
	"cb-highlight-red":   "background: rgba(220, 38, 38, 0.18); border-bottom: 2px solid #dc2626;",
	"cb-highlight-amber": "background: rgba(245, 158, 11, 0.22); border-bottom: 2px solid #f59e0b;",
	"cb-highlight-blue":  "background: rgba(37, 99, 235, 0.14); border-bottom: 2px solid #2563eb;",
	"cb-dim":             "opacity: 0.55;",
}

const baseRules = `.cb-heading-summary { margin: 0.25em 0 0.75em; padding: 0.4em 0.6em; border-left: 3px solid #94a3b8; background: #f8fafc; font-size: 0.9em; }
.cb-relevance { display: inline-block; margin-right: 0.5em; padding: 0 0.4em; border-radius: 3px; font-weight: 600; font-size: 0.8em; }
.cb-relevance-high { background: #fee2e2; color: #991b1b; }
.cb-relevance-medium { background: #fef3c7; color: #92400e; }
.cb-relevance-low { background: #e2e8f0; color: #334155; }
.cb-pulse { outline: 3px solid #f59e0b; transition: outline-color 0.6s; }
`

// Stylesheet builds the CSS for every class in the style table.
// Classes without a stock look get the amber highlight.
func Stylesheet(styles annotate.StyleTable) string {
	var sb strings.Builder
	sb.WriteString(baseRules)
	for _, cls := range styles.MarkerClasses() {
		rule, ok := palette[cls]
		if !ok {
			rule = palette["cb-highlight-amber"]
		}
		fmt.Fprintf(&sb, ".%s { %s }\n", cls, rule)
	}
	return sb.String()
}
