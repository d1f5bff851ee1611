package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/annotate"
	"github.com/gaurav-prasanna/pagemark/core/page"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const guide = `<html><head><title>Sore throat</title></head><body><main>
<h2>Red flags</h2>
<p>Admit if there is stridor or respiratory distress in a child with sore throat.</p>
<h2>Treatment</h2>
<p>Consider phenoxymethylpenicillin for five to ten days when antibiotics are indicated.</p>
</main></body></html>`

func newDoc(t *testing.T) *page.Document {
	t.Helper()
	doc, err := page.ParseString(guide, "https://cks.example/sore-throat")
	require.NoError(t, err)
	return doc
}

func TestSession_GetPageContent(t *testing.T) {
	s := NewSession(newDoc(t))

	resp := s.Handle(Message{Type: MsgGetPageContent})
	require.True(t, resp.OK)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Sore throat", resp.Data.Title)
	assert.Equal(t, "https://cks.example/sore-throat", resp.Data.URL)
	require.Len(t, resp.Data.Chunks, 2)
	assert.Equal(t, "Red flags", resp.Data.Chunks[0].Heading)
}

func TestSession_GetPageContentWithoutDocument(t *testing.T) {
	s := NewSession(nil)

	resp := s.Handle(Message{Type: MsgGetPageContent})
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestSession_ApplyPageEnhancementsClearsPreviousPass(t *testing.T) {
	s := NewSession(newDoc(t))

	first := s.Handle(Message{Type: MsgApplyPageEnhancements, Payload: &EnhancementPayload{
		HeadingSummaries: []core.HeadingSummary{{Relevance: core.RelevanceHigh, OneLineSummary: "Admission criteria"}},
		Highlights: []core.AnnotationItem{
			{Type: core.CategoryRedFlags, Text: "stridor or respiratory distress", ID: "red-0"},
			{Type: core.CategoryRedFlags, Text: "ok", ID: "red-1"},
		},
	}})
	require.True(t, first.OK)
	assert.Equal(t, []string{"red-0"}, first.AppliedIDs)

	second := s.Handle(Message{Type: MsgApplyPageEnhancements, Payload: &EnhancementPayload{
		Highlights: []core.AnnotationItem{{Type: core.CategoryManagement, Text: "phenoxymethylpenicillin for five to ten days", ID: "tx-0"}},
	}})
	require.True(t, second.OK)
	assert.Equal(t, []string{"tx-0"}, second.AppliedIDs)

	out, err := s.HTML()
	require.NoError(t, err)
	assert.NotContains(t, out, "red-0")
	assert.NotContains(t, out, annotate.SummaryClass)
	assert.Contains(t, out, `data-cb-id="tx-0"`)
}

func TestSession_ApplyWithoutPayload(t *testing.T) {
	s := NewSession(newDoc(t))

	resp := s.Handle(Message{Type: MsgApplyPageEnhancements})
	require.True(t, resp.OK)
	assert.NotNil(t, resp.AppliedIDs)
	assert.Empty(t, resp.AppliedIDs)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"appliedIds":[]}`, string(raw))
}

type viewportFunc func(n *html.Node, opts annotate.ScrollOptions)

func (f viewportFunc) ScrollIntoView(n *html.Node, opts annotate.ScrollOptions) { f(n, opts) }

func TestSession_ScrollToHighlight(t *testing.T) {
	scrolled := 0
	s := NewSession(newDoc(t), WithViewport(viewportFunc(func(*html.Node, annotate.ScrollOptions) { scrolled++ })))

	s.Handle(Message{Type: MsgApplyPageEnhancements, Payload: &EnhancementPayload{
		Highlights: []core.AnnotationItem{{Type: core.CategoryRedFlags, Text: "stridor or respiratory distress", ID: "red-0"}},
	}})

	missing := s.Handle(Message{Type: MsgScrollToHighlight, ID: "nonexistent"})
	require.True(t, missing.OK)
	require.NotNil(t, missing.Found)
	assert.False(t, *missing.Found)

	hit := s.Handle(Message{Type: MsgScrollToHighlight, ID: "red-0"})
	require.True(t, hit.OK)
	assert.True(t, *hit.Found)
	assert.Equal(t, 1, scrolled)

	out, err := s.HTML()
	require.NoError(t, err)
	assert.Contains(t, out, annotate.PulseClass)

	assert.Eventually(t, func() bool {
		out, err := s.HTML()
		return err == nil && !strings.Contains(out, annotate.PulseClass)
	}, 2*time.Second, 20*time.Millisecond)

	raw, err := json.Marshal(missing)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"found":false}`, string(raw))
}

func TestSession_UnknownMessage(t *testing.T) {
	resp := NewSession(newDoc(t)).Handle(Message{Type: "reticulateSplines"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, ErrUnknownMessage.Error())
}

func TestSession_RecoversPanics(t *testing.T) {
	s := NewSession(newDoc(t), WithViewport(viewportFunc(func(*html.Node, annotate.ScrollOptions) {
		panic("viewport gone")
	})))
	s.Handle(Message{Type: MsgApplyPageEnhancements, Payload: &EnhancementPayload{
		Highlights: []core.AnnotationItem{{Type: core.CategoryRedFlags, Text: "stridor or respiratory distress", ID: "red-0"}},
	}})

	resp := s.Handle(Message{Type: MsgScrollToHighlight, ID: "red-0"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "viewport gone")
	require.NotNil(t, resp.Found)
	assert.False(t, *resp.Found)

	// The lock was released; the session keeps working.
	assert.True(t, s.Handle(Message{Type: MsgGetPageContent}).OK)
}

func TestRegistry_SendAndClose(t *testing.T) {
	reg, err := NewRegistry(4, nil, zerolog.Nop())
	require.NoError(t, err)

	id := reg.Open(newDoc(t))
	resp, err := reg.Send(context.Background(), id, Message{Type: MsgGetPageContent})
	require.NoError(t, err)
	assert.True(t, resp.OK)

	assert.True(t, reg.Close(id))
	_, err = reg.Send(context.Background(), id, Message{Type: MsgGetPageContent})
	assert.ErrorIs(t, err, ErrNoReceiver)
}

func TestRegistry_ReloadsEvictedPage(t *testing.T) {
	loads := 0
	loader := func(_ context.Context, url string) (*page.Document, error) {
		loads++
		return page.ParseString(guide, url)
	}
	reg, err := NewRegistry(1, loader, zerolog.Nop())
	require.NoError(t, err)

	first := reg.Open(newDoc(t))
	reg.Open(newDoc(t)) // evicts first
	_, live := reg.Get(first)
	require.False(t, live)

	resp, err := reg.Send(context.Background(), first, Message{Type: MsgGetPageContent})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "https://cks.example/sore-throat", resp.Data.URL)
	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ReloadFailure(t *testing.T) {
	boom := errors.New("offline")
	reg, err := NewRegistry(1, func(context.Context, string) (*page.Document, error) { return nil, boom }, zerolog.Nop())
	require.NoError(t, err)

	first := reg.Open(newDoc(t))
	reg.Open(newDoc(t))

	_, err = reg.Send(context.Background(), first, Message{Type: MsgGetPageContent})
	assert.ErrorIs(t, err, boom)
}
