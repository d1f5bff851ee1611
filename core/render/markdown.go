package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/normalize"
	"github.com/gaurav-prasanna/pagemark/core/summarize"
)

// MarkdownRenderer writes the snapshot followed by the annotated content
// root converted to Markdown.
type MarkdownRenderer struct {
	normalizer *normalize.MarkdownNormalizer
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{normalizer: normalize.New()}
}

// Render builds the Markdown report.
func (r *MarkdownRenderer) Render(report *core.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}
	var sb strings.Builder

	title := report.Page.Title
	if title == "" {
		title = report.Page.URL
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if report.Page.URL != "" {
		fmt.Fprintf(&sb, "Source: %s\n", report.Page.URL)
	}
	fmt.Fprintf(&sb, "Mode: %s\n\n", report.Mode)

	if s := report.Snapshot; s != nil {
		if s.About != "" {
			fmt.Fprintf(&sb, "> %s\n\n", s.About)
		}
		for _, sec := range summarize.Sections(s, report.Mode) {
			if len(sec.Bullets) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "## %s\n\n", sec.Label)
			for i, b := range sec.Bullets {
				text := strings.TrimSpace(b.Text)
				if text == "" {
					continue
				}
				mark := ""
				if report.Applied(summarize.BulletID(sec.IDPrefix, i)) {
					mark = " *(on page)*"
				}
				fmt.Fprintf(&sb, "- %s%s\n", text, mark)
			}
			sb.WriteString("\n")
		}
	}

	if report.RootHTML != "" {
		md, err := r.normalizer.Normalize(report.RootHTML, report.Page.URL)
		if err != nil {
			return nil, err
		}
		sb.WriteString("---\n\n")
		sb.WriteString(strings.TrimSpace(md))
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
