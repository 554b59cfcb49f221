// Package websearch routes web searches through a provider fallback chain:
// Serper.dev, then Tavily, then scraping Google's result page as a last
// resort. Searches degrade to empty results rather than erroring so one
// blocked provider never sinks an enrichment run.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/pkg/serper"
	"github.com/sells-group/sourcing-cli/pkg/tavily"
)

// Searcher is the search surface the enrichment pipeline consumes.
type Searcher interface {
	// SearchText returns concatenated result snippets, capped to maxChars.
	// Returns "" when every provider comes up empty.
	SearchText(ctx context.Context, query string, maxChars int) string

	// SearchURLs returns organic result URLs, up to maxResults.
	SearchURLs(ctx context.Context, query string, maxResults int) []string
}

// Option configures the chain.
type Option func(*Chain)

// WithSerper enables Serper.dev as the primary provider.
func WithSerper(c serper.Client) Option {
	return func(ch *Chain) {
		ch.serper = c
	}
}

// WithTavily enables Tavily as the secondary provider.
func WithTavily(c tavily.Client) Option {
	return func(ch *Chain) {
		ch.tavily = c
	}
}

// WithHTTPClient overrides the http.Client used for Google scraping and
// page fetches.
func WithHTTPClient(hc *http.Client) Option {
	return func(ch *Chain) {
		ch.http = hc
	}
}

// WithGoogleBaseURL overrides the Google search endpoint used by the
// scrape fallback.
func WithGoogleBaseURL(u string) Option {
	return func(ch *Chain) {
		ch.googleBaseURL = u
	}
}

// Chain implements Searcher over the configured providers. Providers
// without credentials are simply absent from the chain.
type Chain struct {
	serper        serper.Client
	tavily        tavily.Client
	http          *http.Client
	googleBaseURL string
}

// NewChain builds the provider chain.
func NewChain(opts ...Option) *Chain {
	ch := &Chain{
		http:          &http.Client{Timeout: 12 * time.Second},
		googleBaseURL: "https://www.google.com",
	}
	for _, o := range opts {
		o(ch)
	}
	return ch
}

func (ch *Chain) SearchText(ctx context.Context, query string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = 3000
	}

	if ch.serper != nil {
		if resp, err := ch.serper.Search(ctx, query, 5); err != nil {
			zap.L().Debug("serper search failed", zap.String("query", query), zap.Error(err))
		} else if text := serperSnippets(resp); text != "" {
			return truncate(text, maxChars)
		}
	}

	if ch.tavily != nil {
		if resp, err := ch.tavily.Search(ctx, query, 5); err != nil {
			zap.L().Debug("tavily search failed", zap.String("query", query), zap.Error(err))
		} else if text := tavilySnippets(resp); text != "" {
			return truncate(text, maxChars)
		}
	}

	text, err := ch.googleScrapeText(ctx, query)
	if err != nil {
		zap.L().Debug("google scrape failed", zap.String("query", query), zap.Error(err))
		return ""
	}
	return truncate(text, maxChars)
}

func (ch *Chain) SearchURLs(ctx context.Context, query string, maxResults int) []string {
	if maxResults <= 0 {
		maxResults = 5
	}

	if ch.serper != nil {
		if resp, err := ch.serper.Search(ctx, query, maxResults); err != nil {
			zap.L().Debug("serper search failed", zap.String("query", query), zap.Error(err))
		} else {
			var urls []string
			for _, r := range resp.Organic {
				if r.Link != "" {
					urls = append(urls, r.Link)
				}
			}
			if len(urls) > 0 {
				return capSlice(urls, maxResults)
			}
		}
	}

	if ch.tavily != nil {
		if resp, err := ch.tavily.Search(ctx, query, maxResults); err != nil {
			zap.L().Debug("tavily search failed", zap.String("query", query), zap.Error(err))
		} else {
			var urls []string
			for _, r := range resp.Results {
				if r.URL != "" {
					urls = append(urls, r.URL)
				}
			}
			if len(urls) > 0 {
				return capSlice(urls, maxResults)
			}
		}
	}

	urls, err := ch.googleScrapeURLs(ctx, query, maxResults)
	if err != nil {
		zap.L().Debug("google scrape failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	return urls
}

func serperSnippets(resp *serper.SearchResponse) string {
	var snippets []string
	for _, r := range resp.Organic {
		switch {
		case r.Snippet != "":
			snippets = append(snippets, fmt.Sprintf("[Result] %s: %s", r.Title, r.Snippet))
		case r.Title != "":
			snippets = append(snippets, fmt.Sprintf("[Result] %s", r.Title))
		}
	}
	return strings.Join(snippets, " | ")
}

func tavilySnippets(resp *tavily.SearchResponse) string {
	var snippets []string
	for _, r := range resp.Results {
		switch {
		case r.Content != "":
			snippets = append(snippets, fmt.Sprintf("[Result] %s: %s", r.Title, r.Content))
		case r.Title != "":
			snippets = append(snippets, fmt.Sprintf("[Result] %s", r.Title))
		}
	}
	return strings.Join(snippets, " | ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func capSlice(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
