package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gaurav-prasanna/pagemark/core/page"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// DefaultMaxSessions bounds how many documents a Registry keeps parsed.
const DefaultMaxSessions = 64

// ErrNoReceiver is returned when a page has no live session and cannot be
// reloaded.
var ErrNoReceiver = errors.New("receiving end does not exist")

// Loader re-creates the document for a source URL.
type Loader func(ctx context.Context, url string) (*page.Document, error)

// Registry tracks the live sessions by page id. Least recently used
// sessions are evicted; an evicted page whose source URL is known is
// reloaded on the next message, and the message is delivered again.
type Registry struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, *Session]
	sources  map[string]string
	load     Loader
	opts     []Option
	log      zerolog.Logger
}

// NewRegistry creates a Registry holding at most size sessions. load may be
// nil, in which case evicted pages are gone for good.
func NewRegistry(size int, load Loader, log zerolog.Logger, opts ...Option) (*Registry, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	r := &Registry{
		sources: make(map[string]string),
		load:    load,
		opts:    append([]Option{WithLogger(log)}, opts...),
		log:     log,
	}
	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, _ *Session) {
		r.log.Debug().Str("page", id).Msg("evicted page session")
	})
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}
	r.sessions = cache
	return r, nil
}

// Open registers doc under a new page id and returns the id.
func (r *Registry) Open(doc *page.Document) string {
	id := uuid.NewString()
	r.put(id, doc)
	return id
}

func (r *Registry) put(id string, doc *page.Document) *Session {
	s := NewSession(doc, r.opts...)
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.URL() != "" {
		r.sources[id] = doc.URL()
	}
	r.sessions.Add(id, s)
	return s
}

// Get returns the live session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	return r.sessions.Get(id)
}

// Close drops the session and forgets its source.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, known := r.sources[id]
	delete(r.sources, id)
	return r.sessions.Remove(id) || known
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Session returns the live session for id, reloading the page if it was evicted.
func (r *Registry) Session(ctx context.Context, id string) (*Session, error) {
	if s, ok := r.Get(id); ok {
		return s, nil
	}
	return r.reload(ctx, id)
}

// Send delivers msg to the page, reloading it once if its session is gone.
func (r *Registry) Send(ctx context.Context, id string, msg Message) (Response, error) {
	s, err := r.Session(ctx, id)
	if err != nil {
		return Response{}, err
	}
	return s.Handle(msg), nil
}

func (r *Registry) reload(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	src, known := r.sources[id]
	r.mu.Unlock()
	if !known || r.load == nil {
		return nil, fmt.Errorf("page %s: %w", id, ErrNoReceiver)
	}

	r.log.Info().Str("page", id).Str("url", src).Msg("page session missing, reloading")
	doc, err := r.load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("reloading page %s: %w", id, err)
	}
	return r.put(id, doc), nil
}
