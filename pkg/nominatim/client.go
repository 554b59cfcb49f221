// Package nominatim provides a minimal client for the OSM Nominatim geocoder.
// Nominatim is free but rate-limited to roughly one request per second, so
// callers share a single client and results are cached in memory.
package nominatim

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// BBox is a (south, west, north, east) bounding box in degrees.
type BBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// Client geocodes free-text US locations into bounding boxes.
type Client interface {
	// GeocodeUS resolves a US location to its bounding box. A nil result with
	// a nil error means the location did not geocode; negative lookups are
	// cached too so repeated misses stay cheap.
	GeocodeUS(ctx context.Context, location string) (*BBox, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy
// requires an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter

	mu    sync.Mutex
	cache map[string]*BBox
}

// NewClient creates a Nominatim client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: "sourcing-cli/1.0 (deal-sourcing)",
		http:      &http.Client{Timeout: 5 * time.Second},
		limiter:   rate.NewLimiter(1, 1),
		cache:     make(map[string]*BBox),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResult struct {
	BoundingBox []string `json:"boundingbox"` // [lat_min, lat_max, lon_min, lon_max]
}

func (c *httpClient) GeocodeUS(ctx context.Context, location string) (*BBox, error) {
	key := strings.ToLower(strings.TrimSpace(location))

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limit wait")
	}

	params := url.Values{}
	params.Set("q", location+", United States")
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("nominatim: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: read response")
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, eris.Wrap(err, "nominatim: unmarshal response")
	}

	var bbox *BBox
	if len(results) > 0 && len(results[0].BoundingBox) == 4 {
		bbox, err = parseBBox(results[0].BoundingBox)
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.cache[key] = bbox
	c.mu.Unlock()

	return bbox, nil
}

func parseBBox(bb []string) (*BBox, error) {
	vals := make([]float64, 4)
	for i, s := range bb {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "nominatim: parse boundingbox %q", s)
		}
		vals[i] = f
	}
	// Response order is [lat_min, lat_max, lon_min, lon_max].
	return &BBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}, nil
}
