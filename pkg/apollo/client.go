// Package apollo provides a thin client for the Apollo.io people APIs.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sourcing-cli/internal/resilience"
)

const defaultBaseURL = "https://api.apollo.io/v1"

// Client looks up people at companies.
type Client interface {
	// SearchPeople finds people at an organization filtered by title.
	SearchPeople(ctx context.Context, req PeopleSearchRequest) ([]Person, error)

	// MatchPerson resolves a known person's contact details by name and domain.
	MatchPerson(ctx context.Context, req PersonMatchRequest) (*Person, error)
}

// PeopleSearchRequest holds parameters for POST /mixed_people/search.
type PeopleSearchRequest struct {
	OrganizationName   string
	OrganizationDomain string
	PersonTitles       []string
	PerPage            int
}

// PersonMatchRequest holds parameters for POST /people/match.
type PersonMatchRequest struct {
	FirstName        string
	LastName         string
	OrganizationName string
	Domain           string
}

// Person is a single Apollo people record.
type Person struct {
	Name         string        `json:"name"`
	Title        string        `json:"title"`
	Email        string        `json:"email"`
	LinkedInURL  string        `json:"linkedin_url"`
	PhoneNumbers []PhoneNumber `json:"phone_numbers"`
}

// PhoneNumber is a person's phone entry.
type PhoneNumber struct {
	SanitizedNumber string `json:"sanitized_number"`
}

// Phone returns the first sanitized phone number, if any.
func (p *Person) Phone() string {
	if len(p.PhoneNumbers) > 0 {
		return p.PhoneNumbers[0].SanitizedNumber
	}
	return ""
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Apollo.io API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchPeople(ctx context.Context, req PeopleSearchRequest) ([]Person, error) {
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 3
	}

	payload := map[string]any{
		"api_key":             c.apiKey,
		"q_organization_name": req.OrganizationName,
		"person_titles":       req.PersonTitles,
		"page":                1,
		"per_page":            perPage,
	}
	if req.OrganizationDomain != "" {
		payload["q_organization_domains"] = req.OrganizationDomain
	}

	var result struct {
		People []Person `json:"people"`
	}
	if err := c.post(ctx, "/mixed_people/search", payload, &result); err != nil {
		return nil, err
	}
	return result.People, nil
}

func (c *httpClient) MatchPerson(ctx context.Context, req PersonMatchRequest) (*Person, error) {
	payload := map[string]any{
		"api_key":           c.apiKey,
		"first_name":        req.FirstName,
		"last_name":         req.LastName,
		"organization_name": req.OrganizationName,
		"domain":            req.Domain,
	}

	var result struct {
		Person *Person `json:"person"`
	}
	if err := c.post(ctx, "/people/match", payload, &result); err != nil {
		return nil, err
	}
	return result.Person, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "apollo: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "apollo: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "apollo: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("apollo: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "apollo: unmarshal response")
	}
	return nil
}
