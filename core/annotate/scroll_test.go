package annotate

import (
	"testing"
	"time"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type recordingViewport struct {
	nodes []*html.Node
	opts  []ScrollOptions
}

func (v *recordingViewport) ScrollIntoView(n *html.Node, opts ScrollOptions) {
	v.nodes = append(v.nodes, n)
	v.opts = append(v.opts, opts)
}

type manualScheduler struct {
	delays []time.Duration
	funcs  []func()
}

func (s *manualScheduler) schedule(d time.Duration, f func()) {
	s.delays = append(s.delays, d)
	s.funcs = append(s.funcs, f)
}

func TestScroll_MissingIDLeavesDocumentAlone(t *testing.T) {
	doc := parse(t, article)
	before := bodyHTML(t, doc)
	vp := &recordingViewport{}
	nav := &Navigator{Viewport: vp}

	assert.Equal(t, ScrollResult{Found: false}, nav.Scroll(doc, "nonexistent"))
	assert.Equal(t, ScrollResult{Found: false}, nav.Scroll(doc, ""))
	assert.Equal(t, before, bodyHTML(t, doc))
	assert.Empty(t, vp.nodes)
}

func TestScroll_ScrollsAndPulses(t *testing.T) {
	doc := parse(t, article)
	Apply(doc, []core.AnnotationItem{{Type: core.CategoryRedFlags, Text: "sudden severe headache", ID: "red-0"}}, DefaultStyles())

	vp := &recordingViewport{}
	sched := &manualScheduler{}
	nav := &Navigator{Viewport: vp, Schedule: sched.schedule}

	res := nav.Scroll(doc, "red-0")
	require.True(t, res.Found)

	m := marker(doc, "red-0")
	require.Len(t, vp.nodes, 1)
	assert.Same(t, m.Nodes[0], vp.nodes[0])
	assert.Equal(t, ScrollOptions{Behavior: "smooth", Block: "center"}, vp.opts[0])
	assert.True(t, m.HasClass(PulseClass))

	require.Len(t, sched.funcs, 1)
	assert.Equal(t, PulseDuration, sched.delays[0])
	sched.funcs[0]()
	assert.False(t, m.HasClass(PulseClass))
	assert.True(t, m.HasClass("cb-highlight-red"))
}

func TestScroll_EscapesAwkwardIDs(t *testing.T) {
	ids := []string{`q"uote`, `back\slash`, "new\nline", `]"),*[x`}
	for _, id := range ids {
		doc := parse(t, article)
		applied := Apply(doc, []core.AnnotationItem{{Type: core.CategoryRedFlags, Text: "sudden severe headache", ID: id}}, DefaultStyles())
		require.Equal(t, []string{id}, applied)

		nav := &Navigator{Schedule: func(time.Duration, func()) {}}
		assert.True(t, nav.Scroll(doc, id).Found, "id %q", id)
		assert.False(t, nav.Scroll(doc, id+"x").Found, "id %q", id+"x")
	}
}

func TestScroll_PulseRemovedFromTimer(t *testing.T) {
	doc := parse(t, article)
	Apply(doc, []core.AnnotationItem{{Type: core.CategoryRedFlags, Text: "sudden severe headache", ID: "red-0"}}, DefaultStyles())

	done := make(chan struct{})
	nav := &Navigator{Schedule: func(d time.Duration, f func()) {
		time.AfterFunc(time.Millisecond, func() {
			f()
			close(done)
		})
	}}
	require.True(t, nav.Scroll(doc, "red-0").Found)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pulse was never removed")
	}
	assert.False(t, marker(doc, "red-0").HasClass(PulseClass))
}

func TestCSSString(t *testing.T) {
	assert.Equal(t, `a\"b\\c`, cssString(`a"b\c`))
	assert.Equal(t, `x\a y`, cssString("x\ny"))
	assert.Equal(t, `[data-cb-id="red-0"]`, markerSelector("red-0"))
}
