package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sourcing-cli/internal/websearch"
)

// httpOptions is the shared connector configuration: every connector talks
// plain HTTP to one base URL.
type httpOptions struct {
	client  *http.Client
	baseURL string
}

// Option configures a connector.
type Option func(*httpOptions)

// WithHTTPClient overrides the connector's http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *httpOptions) {
		o.client = c
	}
}

// WithBaseURL overrides the connector's endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(o *httpOptions) {
		o.baseURL = u
	}
}

func newHTTPOptions(defaultBaseURL string, opts []Option) httpOptions {
	o := httpOptions{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// get fetches url with browser headers. Marketplace sites block obvious bots.
func (o *httpOptions) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "source: create request")
	}
	websearch.SetBrowserHeaders(req)
	req.Header.Set("Connection", "keep-alive")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "source: fetch page")
	}
	return resp, nil
}

// getDoc fetches url and parses the body as HTML.
func (o *httpOptions) getDoc(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := o.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("source: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "source: parse page")
	}
	return doc, nil
}

// cleanText collapses runs of whitespace the way rendered HTML reads.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// capText truncates s to at most n bytes.
func capText(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
