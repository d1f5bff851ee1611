// Package server exposes page sessions over HTTP so a browser panel or any
// other client can drive the enhancement protocol remotely.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/annotate"
	"github.com/gaurav-prasanna/pagemark/core/page"
	"github.com/gaurav-prasanna/pagemark/core/relay"
	"github.com/gaurav-prasanna/pagemark/core/render"
	"github.com/gaurav-prasanna/pagemark/core/summarize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 16 << 20

// Server routes HTTP requests to page sessions.
type Server struct {
	registry   *relay.Registry
	load       relay.Loader
	summarizer core.Summarizer
	html       *render.HTMLRenderer
	log        zerolog.Logger
}

// New creates a Server. load fetches pages opened by URL; summarizer may be
// nil, which disables the annotate endpoint.
func New(reg *relay.Registry, load relay.Loader, summarizer core.Summarizer, styles annotate.StyleTable, log zerolog.Logger) *Server {
	return &Server{
		registry:   reg,
		load:       load,
		summarizer: summarizer,
		html:       render.NewHTMLRenderer(styles),
		log:        log,
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Route("/v1/pages", func(r chi.Router) {
		r.Post("/", s.handleOpen)
		r.Post("/{id}/messages", s.handleMessage)
		r.Post("/{id}/annotate", s.handleAnnotate)
		r.Get("/{id}/html", s.handleHTML)
		r.Delete("/{id}", s.handleClose)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "pages": s.registry.Len()})
}

// OpenRequest is the body of POST /v1/pages. When HTML is empty the page
// is fetched from URL.
type OpenRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// OpenResponse identifies a newly opened page.
type OpenResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		doc *page.Document
		err error
	)
	switch {
	case req.HTML != "":
		doc, err = page.ParseString(req.HTML, req.URL)
	case req.URL != "" && s.load != nil:
		doc, err = s.load(r.Context(), req.URL)
	default:
		writeError(w, http.StatusBadRequest, "url or html required")
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("url", req.URL).Msg("open page failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	id := s.registry.Open(doc)
	writeJSON(w, http.StatusCreated, OpenResponse{ID: id, Title: doc.Title(), URL: doc.URL()})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg relay.Message
	if err := decode(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message")
		return
	}
	resp, err := s.registry.Send(r.Context(), chi.URLParam(r, "id"), msg)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AnnotateRequest is the body of POST /v1/pages/{id}/annotate.
type AnnotateRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		writeError(w, http.StatusNotImplemented, "no summarizer configured")
		return
	}
	var req AnnotateRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode, err := core.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.registry.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	rep, err := sess.Annotate(r.Context(), s.summarizer, mode)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	data, err := render.NewJSONRenderer().Render(rep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	doc, err := sess.HTML()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out, err := s.html.Render(&core.Report{HTML: doc})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(out)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if !s.registry.Close(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, relay.ErrNoReceiver.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, relay.ErrNoReceiver) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Warn().Err(err).Msg("page session unavailable")
	writeError(w, http.StatusBadGateway, err.Error())
}

// statusFor maps summarizer failures to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, summarize.ErrRateLimited) {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": strings.TrimSpace(msg)})
}
