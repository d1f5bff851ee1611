package annotate

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// PulseDuration is how long a scrolled-to marker keeps the pulse class.
const PulseDuration = 600 * time.Millisecond

// ScrollOptions mirrors the options of Element.scrollIntoView.
type ScrollOptions struct {
	Behavior string `json:"behavior"`
	Block    string `json:"block"`
}

// Viewport moves the visible area of the page. Implementations must not
// block.
type Viewport interface {
	ScrollIntoView(n *html.Node, opts ScrollOptions)
}

// Scheduler runs f after d. It must return immediately.
type Scheduler func(d time.Duration, f func())

// ScrollResult reports whether a marker was found.
type ScrollResult struct {
	Found bool `json:"found"`
}

// Navigator scrolls to markers and pulses them.
type Navigator struct {
	Viewport Viewport  // nil means nothing to scroll
	Schedule Scheduler // nil means time.AfterFunc
}

// Scroll finds the marker whose anchor attribute equals id, scrolls it to the
// center of the viewport and pulses it. A missing id leaves the document
// untouched.
func (nav *Navigator) Scroll(doc *goquery.Document, id string) ScrollResult {
	if doc == nil || id == "" {
		return ScrollResult{}
	}
	m, err := cascadia.Compile(markerSelector(id))
	if err != nil {
		return ScrollResult{}
	}
	el := doc.FindMatcher(m).First()
	if el.Length() == 0 {
		return ScrollResult{}
	}

	if nav.Viewport != nil {
		nav.Viewport.ScrollIntoView(el.Nodes[0], ScrollOptions{Behavior: "smooth", Block: "center"})
	}
	el.AddClass(PulseClass)
	nav.schedule(PulseDuration, func() { el.RemoveClass(PulseClass) })
	return ScrollResult{Found: true}
}

func (nav *Navigator) schedule(d time.Duration, f func()) {
	if nav.Schedule != nil {
		nav.Schedule(d, f)
		return
	}
	time.AfterFunc(d, f)
}

// markerSelector builds the attribute selector for a marker id.
func markerSelector(id string) string {
	return fmt.Sprintf(`[%s="%s"]`, MarkerAttr, cssString(id))
}

// cssString escapes s for use inside a double-quoted CSS string.
func cssString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
