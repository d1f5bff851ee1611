package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/summarize"
)

// Annotate summarizes the page for mode and highlights the snapshot's
// bullets. The document is not locked while the summarizer runs.
func (s *Session) Annotate(ctx context.Context, sum core.Summarizer, mode core.Mode) (*core.Report, error) {
	content, err := s.PageContent()
	if err != nil {
		return nil, err
	}
	snap, err := sum.Summarize(ctx, summarize.NewRequest(content, mode))
	if err != nil {
		return nil, fmt.Errorf("summarizing %s: %w", content.URL, err)
	}
	return s.ApplySnapshot(content, mode, snap)
}

// ApplySnapshot highlights the bullets of snap that belong to mode and
// returns the resulting report.
func (s *Session) ApplySnapshot(content core.PageContent, mode core.Mode, snap *core.Snapshot) (*core.Report, error) {
	items := summarize.HighlightsFromSnapshot(snap, mode)
	applied := s.Enhance(EnhancementPayload{Highlights: items})

	doc, err := s.HTML()
	if err != nil {
		return nil, err
	}
	root, err := s.RootHTML()
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("url", content.URL).
		Str("mode", string(mode)).
		Int("highlights", len(items)).
		Int("applied", len(applied)).
		Msg("annotated page")

	return &core.Report{
		Page:       content,
		Mode:       mode,
		FetchedAt:  time.Now().UTC().Format(time.RFC3339),
		Snapshot:   snap,
		Highlights: items,
		AppliedIDs: applied,
		HTML:       doc,
		RootHTML:   root,
	}, nil
}
