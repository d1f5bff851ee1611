package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/config"
	"github.com/gaurav-prasanna/pagemark/core/fetch"
	"github.com/gaurav-prasanna/pagemark/core/page"
	"github.com/gaurav-prasanna/pagemark/core/relay"
	"github.com/gaurav-prasanna/pagemark/core/summarize"
	"github.com/gaurav-prasanna/pagemark/crawl"
	"github.com/rs/zerolog/log"
)

func newFetcher() *fetch.HTTPFetcher {
	return fetch.New(
		fetch.WithTimeout(cfg.HTTP.Timeout),
		fetch.WithUserAgent(cfg.HTTP.UserAgent),
		fetch.WithLogger(log.Logger),
	)
}

// pageLoader fetches and parses a page.
func pageLoader(f core.Fetcher) relay.Loader {
	return func(ctx context.Context, rawURL string) (*page.Document, error) {
		res, err := f.Fetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		doc, err := page.ParseString(res.HTML, res.URL)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		return doc, nil
	}
}

// newSummarizer builds the configured backend behind a snapshot cache.
func newSummarizer() (core.Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var base core.Summarizer
	switch cfg.Summarizer {
	case config.BackendOpenAI:
		base = summarize.NewOpenAIClient(cfg.OpenAI.Base, cfg.OpenAI.Key, cfg.OpenAI.Model, log.Logger)
	default:
		base = summarize.NewAPIClient(cfg.API.Base, cfg.API.Timeout, log.Logger)
	}
	return summarize.NewCaching(base, cfg.CacheSize, log.Logger)
}

// targets returns the pages to process: rawURL alone, or every page
// discovered on its host when all is set.
func targets(ctx context.Context, rawURL string, all bool, f core.Fetcher) ([]string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}
	if !all {
		return []string{rawURL}, nil
	}

	c := crawl.New(f, cfg.MaxPages, log.Logger)
	c.UserAgent = cfg.HTTP.UserAgent
	urls, err := c.DiscoverAll(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("discovering pages: %w", err)
	}
	log.Info().Int("pages", len(urls)).Str("start", rawURL).Msg("pages to process")
	return urls, nil
}
