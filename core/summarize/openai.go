package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the subset of the go-openai client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// promptChunkChars bounds each chunk's text inside the prompt.
const promptChunkChars = 4000

// OpenAIClient summarizes pages with any OpenAI-compatible chat endpoint.
type OpenAIClient struct {
	Client ChatClient
	Model  string
	Log    zerolog.Logger
}

// NewOpenAIClient builds a client for baseURL (empty means api.openai.com).
func NewOpenAIClient(baseURL, apiKey, model string, log zerolog.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{Client: openai.NewClientWithConfig(cfg), Model: model, Log: log}
}

const systemMessage = `You read clinical guidance pages for busy clinicians.
Reply with a single JSON object and nothing else. Keys:
"about" (one sentence), and the bullet lists requested below.
Each bullet is {"text": short paraphrase, "match": exact sentence fragment copied from the page}.
Copy "match" verbatim from the page text so it can be found again. Omit keys you cannot fill.`

func modeInstructions(mode core.Mode) string {
	switch mode {
	case core.ModeManagement:
		return `Fill "investigations", "medicalManagement" and "psychosocial".`
	case core.ModePrescribing:
		return `Fill "treatment" with drugs, doses and durations.`
	default:
		return `Fill "redFlags" (features needing urgent action) and "historyAndExam".`
	}
}

func buildUserPrompt(req core.SummaryRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mode: %s\nSite: %s\nTitle: %s\nURL: %s\n", req.Mode, req.SiteType, req.Title, req.URL)
	sb.WriteString(modeInstructions(req.Mode))
	sb.WriteString("\n\nPage:\n")
	for _, c := range req.Chunks {
		if c.Heading != "" {
			sb.WriteString("## ")
			sb.WriteString(c.Heading)
			sb.WriteString("\n")
		}
		text := c.Text
		if r := []rune(text); len(r) > promptChunkChars {
			text = string(r[:promptChunkChars])
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Summarize asks the model for a snapshot of the page.
func (c *OpenAIClient) Summarize(ctx context.Context, req core.SummaryRequest) (*core.Snapshot, error) {
	user := buildUserPrompt(req)
	c.Log.Debug().
		Str("stage", "summarize").
		Str("model", c.Model).
		Int("system_len", len(systemMessage)).
		Int("user_len", len(user)).
		Msg("summary prompt")

	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.1,
		N:              1,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return nil, ErrRateLimited
		}
		return nil, fmt.Errorf("summary call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoSnapshot
	}
	return ParseSnapshot(resp.Choices[0].Message.Content)
}

// ParseSnapshot accepts a bare snapshot object or one wrapped in
// {"snapshot": ...}, optionally inside a fenced code block.
func ParseSnapshot(content string) (*core.Snapshot, error) {
	raw := stripFences(strings.TrimSpace(content))
	if raw == "" {
		return nil, ErrNoSnapshot
	}
	var wrapped readingResponse
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Snapshot != nil {
		return wrapped.Snapshot, nil
	}
	var snap core.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot json: %w", err)
	}
	if snap.Empty() {
		return nil, ErrNoSnapshot
	}
	return &snap, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
