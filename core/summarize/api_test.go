package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Summarize(t *testing.T) {
	var got core.SummaryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/extension-reading", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"snapshot":{"about":"Headache","redFlags":["Thunderclap",{"text":"Fever","match":"fever and rash"}]}}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL+"/", time.Second, zerolog.Nop())
	req := NewRequest(core.PageContent{
		Title:  "Headache",
		URL:    "https://cks.nice.org.uk/h",
		Chunks: []core.Chunk{{Heading: "Red flags", Text: "Red flags fever and rash"}},
	}, core.ModeRedFlags)

	snap, err := c.Summarize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Headache", snap.About)
	require.Len(t, snap.RedFlags, 2)
	assert.Equal(t, core.Bullet{Text: "Thunderclap"}, snap.RedFlags[0])
	assert.Equal(t, "fever and rash", snap.RedFlags[1].Match)

	assert.Equal(t, core.ModeRedFlags, got.Mode)
	assert.Equal(t, SiteNiceCKS, got.SiteType)
	require.Len(t, got.Chunks, 1)
	assert.Equal(t, "Red flags", got.Chunks[0].Heading)
}

func TestAPIClient_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, time.Second, zerolog.Nop()).Summarize(context.Background(), core.SummaryRequest{})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAPIClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, time.Second, zerolog.Nop()).Summarize(context.Background(), core.SummaryRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.Contains(t, err.Error(), srv.URL)
}

func TestAPIClient_MissingSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, time.Second, zerolog.Nop()).Summarize(context.Background(), core.SummaryRequest{Mode: core.ModeManagement})
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
