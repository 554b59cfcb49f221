// Package nppes provides a thin client for the NPPES NPI Registry API.
package nppes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sourcing-cli/internal/resilience"
)

const defaultBaseURL = "https://npiregistry.cms.hhs.gov/api/"

// Client searches the NPI registry for healthcare organizations.
type Client interface {
	// Search fetches one page of NPI-2 (organization) records matching the
	// taxonomy description. State is an optional two-letter filter.
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest holds query parameters for the registry search.
type SearchRequest struct {
	TaxonomyDescription string
	State               string
	Limit               int
	Skip                int
}

// SearchResponse is the registry search result page.
type SearchResponse struct {
	ResultCount int      `json:"result_count"`
	Results     []Record `json:"results"`
}

// Record is a single NPI registry entry.
type Record struct {
	Number     string     `json:"number"`
	Basic      Basic      `json:"basic"`
	Addresses  []Address  `json:"addresses"`
	Taxonomies []Taxonomy `json:"taxonomies"`
}

// Basic holds the organization-level fields of a record.
type Basic struct {
	OrganizationName string `json:"organization_name"`
	Status           string `json:"status"`
}

// Address is a practice or mailing address.
type Address struct {
	AddressPurpose  string `json:"address_purpose"`
	Address1        string `json:"address_1"`
	City            string `json:"city"`
	State           string `json:"state"`
	PostalCode      string `json:"postal_code"`
	TelephoneNumber string `json:"telephone_number"`
}

// Taxonomy is a provider taxonomy classification.
type Taxonomy struct {
	Code    string `json:"code"`
	Desc    string `json:"desc"`
	Primary bool   `json:"primary"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an NPI registry client. The registry requires no API key.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Limit <= 0 {
		req.Limit = 200
	}

	params := url.Values{}
	params.Set("version", "2.1")
	params.Set("taxonomy_description", req.TaxonomyDescription)
	params.Set("enumeration_type", "NPI-2")
	params.Set("limit", strconv.Itoa(req.Limit))
	params.Set("skip", strconv.Itoa(req.Skip))
	if req.State != "" {
		params.Set("state", req.State)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nppes: create request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "nppes: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "nppes: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("nppes: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "nppes: unmarshal response")
	}

	return &result, nil
}
