// Package overpass provides a client for the OpenStreetMap Overpass API
// with failover across public mirrors.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// The de-facto default public mirror. overpass-api.de and kumi.systems are
// not listed because both consistently time out under load.
var defaultEndpoints = []string{
	"https://maps.mail.ru/osm/tools/overpass/api/interpreter",
}

// Bounds is a (south, west, north, east) bounding box in degrees.
type Bounds struct {
	South float64
	West  float64
	North float64
	East  float64
}

// Element is a single OSM node or way from an Overpass response. Ways carry
// their computed center in Center.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *LatLon           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

// LatLon is a coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type queryResponse struct {
	Elements []Element `json:"elements"`
}

// Client runs name-pattern queries against the Overpass API.
type Client interface {
	// SearchNames finds nodes and ways whose name matches the regex pattern
	// (case-insensitive) inside bounds. StartMirror offsets the mirror
	// rotation so parallel callers spread load across endpoints.
	SearchNames(ctx context.Context, pattern string, bounds Bounds, startMirror int) ([]Element, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithEndpoints overrides the mirror list.
func WithEndpoints(endpoints []string) Option {
	return func(c *httpClient) {
		if len(endpoints) > 0 {
			c.endpoints = endpoints
		}
	}
}

// WithQueryTimeout sets the server-side [timeout:] for each query. The
// client-side wall clock is this plus two seconds.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.queryTimeout = d
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	endpoints    []string
	queryTimeout time.Duration
	http         *http.Client
}

// NewClient creates an Overpass client with the given options.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		endpoints:    defaultEndpoints,
		queryTimeout: 8 * time.Second,
		http:         &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchNames(ctx context.Context, pattern string, b Bounds, startMirror int) ([]Element, error) {
	query := c.buildQuery(pattern, b)

	// Rotate the mirror list so concurrent tile queries start on
	// different endpoints.
	n := len(c.endpoints)
	start := startMirror % n
	if start < 0 {
		start += n
	}

	var lastErr error
	for i := 0; i < n; i++ {
		endpoint := c.endpoints[(start+i)%n]

		elements, status, err := c.post(ctx, endpoint, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "overpass: query canceled")
			}
			lastErr = err
			zap.L().Debug("overpass mirror failed",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			continue
		}
		switch {
		case status == http.StatusOK:
			return elements, nil
		case status == http.StatusTooManyRequests || status == http.StatusGatewayTimeout:
			// Rate-limited or overloaded mirror, rotate to the next one.
			lastErr = eris.Errorf("overpass: mirror returned %d", status)
			continue
		default:
			return nil, eris.Errorf("overpass: unexpected status %d", status)
		}
	}

	if lastErr == nil {
		lastErr = eris.New("overpass: no mirrors configured")
	}
	return nil, eris.Wrap(lastErr, "overpass: all mirrors exhausted")
}

// buildQuery assembles the Overpass QL for a case-insensitive name match over
// nodes and ways, including tagged office/shop/amenity nodes.
func (c *httpClient) buildQuery(pattern string, b Bounds) string {
	timeoutSecs := int(c.queryTimeout.Seconds())
	bbox := fmt.Sprintf("(%g,%g,%g,%g)", b.South, b.West, b.North, b.East)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[out:json][timeout:%d];\n(\n", timeoutSecs)
	fmt.Fprintf(&sb, "  node[\"name\"~\"%s\",i]%s;\n", pattern, bbox)
	fmt.Fprintf(&sb, "  way[\"name\"~\"%s\",i]%s;\n", pattern, bbox)
	fmt.Fprintf(&sb, "  node[\"office\"][\"name\"~\"%s\",i]%s;\n", pattern, bbox)
	fmt.Fprintf(&sb, "  node[\"shop\"][\"name\"~\"%s\",i]%s;\n", pattern, bbox)
	fmt.Fprintf(&sb, "  node[\"amenity\"][\"name\"~\"%s\",i]%s;\n", pattern, bbox)
	sb.WriteString(");\nout center 200;\n")
	return sb.String()
}

func (c *httpClient) post(ctx context.Context, endpoint, query string) ([]Element, int, error) {
	// Hard wall-clock limit so one slow mirror never blocks a whole tile fan-out.
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout+2*time.Second)
	defer cancel()

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, eris.Wrap(err, "overpass: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "overpass: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, eris.Wrap(err, "overpass: read response")
	}

	var result queryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, 0, eris.Wrap(err, "overpass: unmarshal response")
	}
	return result.Elements, http.StatusOK, nil
}
