// Package resolver discovers the currently reachable domains of the tracked
// sites. These sites rotate mirror hosts to evade blocking, so the entry
// links found on their listing pages are chased through a headless browser
// and verified with a plain redirect-following GET before being persisted.
package resolver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/VivekPatel4/movie-search-bot/config"
	"github.com/VivekPatel4/movie-search-bot/internal/catalog"
	"github.com/VivekPatel4/movie-search-bot/internal/metrics"
)

// CategoryRule classifies an anchor by its visible label text. A rule matches
// when the text contains every substring in All and, if Any is non-empty, at
// least one substring in Any. Matching is case-insensitive.
type CategoryRule struct {
	Key string
	Any []string
	All []string
}

func (r CategoryRule) matches(text string) bool {
	for _, kw := range r.All {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, kw := range r.Any {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Source is one tracked site: the listing page to scan and the rules that
// pick out its per-category entry links.
type Source struct {
	Site       string
	ListingURL string
	Rules      []CategoryRule
	// Fallbacks maps a category to a URL resolved directly when the listing
	// page yields no matching anchor.
	Fallbacks map[string]string
}

func defaultSources() []Source {
	return []Source{
		{
			Site:       "katworld",
			ListingURL: "https://katworld.net/",
			Rules: []CategoryRule{
				{Key: "hollywood", Any: []string{"katmoviehd"}},
				{Key: "anime", Any: []string{"pikahd", "anime"}},
				{Key: "4k", Any: []string{"katmovie4k", "4k"}},
				{Key: "adult", Any: []string{"katmovie18", "adult"}},
				{Key: "drama", Any: []string{"katdrama", "drama"}},
			},
		},
		{
			Site:       "hdhub4u",
			ListingURL: "https://hdhublist.com/",
			Rules: []CategoryRule{
				{Key: "main", All: []string{"hdhub4u", "main site"}},
			},
			Fallbacks: map[string]string{"main": "https://hdhub4u.tv/"},
		},
	}
}

type Resolver struct {
	cfg      config.ResolverConfig
	store    catalog.DomainStore
	sources  []Source
	handlers []InterstitialHandler
	client   *http.Client
	logger   *log.Logger

	// browse runs one isolated browser attempt; swapped out in tests.
	browse func(ctx context.Context, rawURL string) (string, error)
}

func New(cfg config.ResolverConfig, store catalog.DomainStore, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(log.Writer(), "[RESOLVER] ", log.LstdFlags)
	}
	r := &Resolver{
		cfg:     cfg,
		store:   store,
		sources: defaultSources(),
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		logger:  logger,
	}
	r.handlers = []InterstitialHandler{newHDHub4uHandler(cfg, logger)}
	r.browse = r.browseOnce
	return r
}

// Run resolves every tracked site and persists the full record, replacing the
// previous one. Failures are isolated per site/category and degrade to the
// previously persisted value, or blank when there is none. The returned
// record feeds the site catalog.
func (r *Resolver) Run(ctx context.Context) (catalog.Resolved, error) {
	runID := uuid.NewString()[:8]
	metrics.ResolverRuns.Inc()
	r.logger.Printf("run %s: starting domain update", runID)

	previous, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Printf("run %s: loading previous domains: %v", runID, err)
		previous = catalog.Resolved{}
	}

	out := catalog.Resolved{}
	for _, src := range r.sources {
		out[src.Site] = r.resolveSite(ctx, runID, src, previous[src.Site])
	}

	if err := r.store.Save(ctx, out); err != nil {
		metrics.ResolverFailures.Inc()
		return out, fmt.Errorf("persisting resolved domains: %w", err)
	}
	r.logger.Printf("run %s: domain update complete", runID)
	return out, nil
}

func (r *Resolver) resolveSite(ctx context.Context, runID string, src Source, previous map[string]string) map[string]string {
	links, err := r.discoverLinks(ctx, src)
	if err != nil {
		r.logger.Printf("run %s: discovering links for %s: %v", runID, src.Site, err)
		links = map[string]string{}
	}

	resolved := make(map[string]string, len(src.Rules))
	for _, rule := range src.Rules {
		href := links[rule.Key]
		if href == "" {
			href = src.Fallbacks[rule.Key]
		}
		if href == "" {
			// Nothing to chase: keep whatever the last run produced.
			resolved[rule.Key] = previous[rule.Key]
			continue
		}
		resolved[rule.Key] = r.ResolveFinalURL(ctx, href)
	}
	return resolved
}

// discoverLinks fetches the listing page and classifies its anchors into
// categories by label text.
func (r *Resolver) discoverLinks(ctx context.Context, src Source) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.ListingURL, nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req, r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetching %s: status %d", src.ListingURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(src.ListingURL)
	links := map[string]string{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		for _, rule := range src.Rules {
			if _, seen := links[rule.Key]; seen {
				continue
			}
			if !rule.matches(text) {
				continue
			}
			abs := absoluteHref(base, href)
			links[rule.Key] = abs
			r.logger.Printf("found %s/%s link: %s", src.Site, rule.Key, abs)
		}
	})
	return links, nil
}

func absoluteHref(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", "https://www.google.com/")
}
