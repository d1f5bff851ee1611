package summarize

import (
	"context"
	"errors"
	"testing"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSummarizer struct {
	calls int
	err   error
}

func (c *countingSummarizer) Summarize(_ context.Context, req core.SummaryRequest) (*core.Snapshot, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &core.Snapshot{About: req.URL + " " + string(req.Mode)}, nil
}

func TestCachingSummarizer(t *testing.T) {
	next := &countingSummarizer{}
	c, err := NewCaching(next, 4, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	a := core.SummaryRequest{URL: "https://x", Mode: core.ModeRedFlags}
	s1, err := c.Summarize(ctx, a)
	require.NoError(t, err)
	s2, err := c.Summarize(ctx, a)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, next.calls)

	// Same URL, different mode is a different entry.
	_, err = c.Summarize(ctx, core.SummaryRequest{URL: "https://x", Mode: core.ModeManagement})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Forget("https://x", core.ModeRedFlags))
	_, err = c.Summarize(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
}

func TestCachingSummarizer_ErrorsNotCached(t *testing.T) {
	next := &countingSummarizer{err: ErrRateLimited}
	c, err := NewCaching(next, 0, zerolog.Nop())
	require.NoError(t, err)

	req := core.SummaryRequest{URL: "https://x", Mode: core.ModeRedFlags}
	_, err = c.Summarize(context.Background(), req)
	assert.True(t, errors.Is(err, ErrRateLimited))
	_, _ = c.Summarize(context.Background(), req)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 0, c.Len())
}
