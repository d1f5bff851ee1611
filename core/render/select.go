package render

import (
	"fmt"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/annotate"
)

// Formats lists the accepted output format names.
var Formats = []string{"html", "markdown", "json", "pdf"}

// ForFormat returns the renderer for a format name.
func ForFormat(name string, styles annotate.StyleTable) (core.Renderer, error) {
	switch name {
	case "html", "":
		return NewHTMLRenderer(styles), nil
	case "markdown", "md":
		return NewMarkdownRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	case "pdf":
		return NewPDFRenderer(), nil
	}
	return nil, fmt.Errorf("unknown format %q (want html, markdown, json or pdf)", name)
}
