// Package relay answers the page-side messages of the enhancement protocol.
//
// A Session owns one parsed document and serializes every operation on it,
// including the delayed removal of scroll pulses. Responses use the
// {ok, data | appliedIds | found, error} envelopes the panel expects.
package relay

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/annotate"
	"github.com/gaurav-prasanna/pagemark/core/extract"
	"github.com/gaurav-prasanna/pagemark/core/page"
	"github.com/rs/zerolog"
)

// MessageType names a relay request.
type MessageType string

const (
	MsgGetPageContent        MessageType = "getPageContent"
	MsgApplyPageEnhancements MessageType = "applyPageEnhancements"
	MsgScrollToHighlight     MessageType = "scrollToHighlight"
)

// ErrUnknownMessage is reported for unsupported message types.
var ErrUnknownMessage = errors.New("unknown message type")

// EnhancementPayload carries one enhancement pass.
type EnhancementPayload struct {
	HeadingSummaries []core.HeadingSummary `json:"headingSummaries"`
	Highlights       []core.AnnotationItem `json:"highlights"`
}

// Message is a request addressed to a page.
type Message struct {
	Type    MessageType         `json:"type"`
	Payload *EnhancementPayload `json:"payload,omitempty"`
	ID      string              `json:"id,omitempty"`
}

// Response is the reply envelope. Only the fields relevant to the request
// type are set.
type Response struct {
	OK         bool              `json:"ok"`
	Data       *core.PageContent `json:"data,omitempty"`
	AppliedIDs []string          `json:"appliedIds,omitzero"`
	Found      *bool             `json:"found,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Session serves messages for a single document.
type Session struct {
	mu        sync.Mutex
	doc       *page.Document
	extractor *extract.PageExtractor
	annotator *annotate.Annotator
	log       zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithStyles replaces the default category style table.
func WithStyles(t annotate.StyleTable) Option {
	return func(s *Session) { s.annotator.Styles = t }
}

// WithViewport routes scroll requests to v.
func WithViewport(v annotate.Viewport) Option {
	return func(s *Session) { s.annotator.Navigator.Viewport = v }
}

// WithExtractor replaces the default page extractor.
func WithExtractor(e *extract.PageExtractor) Option {
	return func(s *Session) { s.extractor = e }
}

// NewSession creates a Session for doc.
func NewSession(doc *page.Document, opts ...Option) *Session {
	s := &Session{
		doc:       doc,
		extractor: extract.New(),
		annotator: annotate.New(annotate.DefaultStyles()),
		log:       zerolog.Nop(),
	}
	s.annotator.Navigator.Schedule = s.scheduleLocked
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scheduleLocked runs f after d while holding the session lock, so pulse
// removal never interleaves with an enhancement pass.
func (s *Session) scheduleLocked(d time.Duration, f func()) {
	time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		f()
	})
}

// Handle answers msg. It never panics; failures are reported in the
// response.
func (s *Session) Handle(msg Message) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("type", string(msg.Type)).Msg("relay handler panicked")
			resp = failure(msg.Type, fmt.Errorf("%v", r))
		}
	}()

	switch msg.Type {
	case MsgGetPageContent:
		content, err := s.PageContent()
		if err != nil {
			return failure(msg.Type, err)
		}
		return Response{OK: true, Data: &content}
	case MsgApplyPageEnhancements:
		var payload EnhancementPayload
		if msg.Payload != nil {
			payload = *msg.Payload
		}
		return Response{OK: true, AppliedIDs: s.Enhance(payload)}
	case MsgScrollToHighlight:
		return Response{OK: true, Found: boolPtr(s.Scroll(msg.ID))}
	default:
		return failure(msg.Type, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type))
	}
}

func failure(t MessageType, err error) Response {
	resp := Response{OK: false, Error: err.Error()}
	switch t {
	case MsgApplyPageEnhancements:
		resp.AppliedIDs = []string{}
	case MsgScrollToHighlight:
		resp.Found = boolPtr(false)
	}
	return resp
}

func boolPtr(b bool) *bool { return &b }

// PageContent extracts the chunk payload of the document.
func (s *Session) PageContent() (core.PageContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extractor.Extract(s.doc)
}

// Enhance clears the previous pass and applies payload. It returns the ids
// of the highlights that were placed.
func (s *Session) Enhance(payload EnhancementPayload) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return []string{}
	}

	ids := s.annotator.Enhance(s.doc.Document, payload.HeadingSummaries, payload.Highlights)
	s.log.Debug().
		Int("summaries", len(payload.HeadingSummaries)).
		Int("highlights", len(payload.Highlights)).
		Int("applied", len(ids)).
		Msg("applied page enhancements")
	return ids
}

// Scroll scrolls to the highlight with the given id.
func (s *Session) Scroll(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return false
	}
	return s.annotator.Scroll(s.doc.Document, id).Found
}

// HTML serializes the current state of the document.
func (s *Session) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return "", extract.ErrNoDocument
	}
	return s.doc.HTML()
}

// RootHTML serializes the current content root.
func (s *Session) RootHTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return "", extract.ErrNoDocument
	}
	return extract.ContentRootHTML(s.doc.Document)
}
