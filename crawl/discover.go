// Package crawl discovers same-host pages for batch extraction and
// annotation. It reads sitemap.xml when the site has one and otherwise
// walks links breadth first.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/rs/zerolog"
)

// DefaultMaxPages bounds a crawl when no limit is configured.
const DefaultMaxPages = 100

const sitemapTimeout = 15 * time.Second

var linkMatcher = cascadia.MustCompile("a[href]")

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	URLs []sitemapURL `xml:"url"`
}

// Crawler discovers pages on one host.
type Crawler struct {
	Fetcher   core.Fetcher
	Client    *http.Client
	UserAgent string
	MaxPages  int
	Log       zerolog.Logger
}

// New creates a Crawler that fetches pages through fetcher.
func New(fetcher core.Fetcher, maxPages int, log zerolog.Logger) *Crawler {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Crawler{
		Fetcher:  fetcher,
		Client:   &http.Client{Timeout: sitemapTimeout},
		MaxPages: maxPages,
		Log:      log,
	}
}

// DiscoverAll finds internal URLs starting from baseURL, sitemap first.
// The start URL is always the first result.
func (c *Crawler) DiscoverAll(ctx context.Context, baseURL string) ([]string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("parsing base URL %q: invalid", baseURL)
	}
	if !IsWebScheme(parsed) {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	host := parsed.Host

	sitemap := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, host)
	urls, err := c.fromSitemap(ctx, sitemap, host)
	if err != nil {
		c.Log.Debug().Err(err).Str("sitemap", sitemap).Msg("sitemap unavailable, crawling links")
	}
	if len(urls) > 0 {
		q := NewQueue(c.MaxPages)
		q.Add(NormalizeURL(baseURL))
		for _, u := range urls {
			q.Add(u)
		}
		c.Log.Info().Int("pages", q.Len()).Str("source", "sitemap").Msg("discovered pages")
		return q.All(), nil
	}

	return c.fromLinks(ctx, baseURL, host)
}

func (c *Crawler) fromSitemap(ctx context.Context, sitemapURL, host string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing sitemap: %w", err)
	}

	var urls []string
	for _, u := range set.URLs {
		loc := strings.TrimSpace(u.Loc)
		if Crawlable(loc, host) {
			urls = append(urls, NormalizeURL(loc))
		}
	}
	return urls, nil
}

func (c *Crawler) fromLinks(ctx context.Context, startURL, host string) ([]string, error) {
	q := NewQueue(c.MaxPages)
	q.Add(NormalizeURL(startURL))

	for q.HasNext() {
		if err := ctx.Err(); err != nil {
			return q.All(), err
		}
		current := q.Next()

		result, err := c.Fetcher.Fetch(ctx, current)
		if err != nil {
			c.Log.Warn().Err(err).Str("url", current).Msg("skipping page")
			continue
		}

		links, err := extractLinks(result.HTML, current)
		if err != nil {
			continue
		}
		for _, link := range links {
			if Crawlable(link, host) {
				q.Add(NormalizeURL(link))
			}
		}
	}

	c.Log.Info().Int("pages", q.Len()).Str("source", "links").Msg("discovered pages")
	return q.All(), nil
}

// extractLinks returns every href in the page resolved against baseURL.
func extractLinks(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.FindMatcher(linkMatcher).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := resolveURL(strings.TrimSpace(href), base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links, nil
}

func resolveURL(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if !IsWebScheme(resolved) {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
