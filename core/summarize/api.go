package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/rs/zerolog"
)

const (
	readingPath    = "/api/extension-reading"
	defaultTimeout = 90 * time.Second
)

// APIClient calls the hosted summarization endpoint.
type APIClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewAPIClient creates a client for the service at baseURL.
func NewAPIClient(baseURL string, timeout time.Duration, log zerolog.Logger) *APIClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type readingResponse struct {
	Snapshot *core.Snapshot `json:"snapshot"`
}

// Summarize posts the chunked page and returns the snapshot.
func (c *APIClient) Summarize(ctx context.Context, req core.SummaryRequest) (*core.Snapshot, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+readingPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling summary API (%s): %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("url", req.URL).
		Str("mode", string(req.Mode)).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("summary API responded")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP %d from API (%s): %s", resp.StatusCode, c.baseURL, strings.TrimSpace(string(snippet)))
	}

	var out readingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding summary response: %w", err)
	}
	if out.Snapshot == nil {
		return nil, fmt.Errorf("%w (%s, mode=%s)", ErrNoSnapshot, c.baseURL, req.Mode)
	}
	return out.Snapshot, nil
}
