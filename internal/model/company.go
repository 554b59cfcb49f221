package model

import (
	"fmt"
	"sort"
	"strings"
)

// SourcedCompany is a normalized candidate record produced by a source
// connector. The scorer attaches FitScore and FitReasons after fan-in;
// the record is immutable from then on and never persisted.
type SourcedCompany struct {
	Name        string         `json:"name"`
	Source      string         `json:"source"`
	SourceURL   string         `json:"source_url"`
	Description string         `json:"description"`
	Sector      string         `json:"sector"`
	Location    string         `json:"location"`
	Revenue     string         `json:"revenue"`
	Employees   string         `json:"employees"`
	AskingPrice string         `json:"asking_price"`
	Website     string         `json:"website"`
	Extra       map[string]any `json:"extra,omitempty"`
	FitScore    *int           `json:"fit_score"`
	FitReasons  []string       `json:"fit_reasons"`
}

// ListingTypeActiveBusiness marks records for businesses that exist (are
// operating) rather than brokerage listings for sale. Stored under the
// "listing_type" key of Extra.
const ListingTypeActiveBusiness = "active_business"

// IsActiveBusiness reports whether this record describes an operating
// business discovered from a registry/map source, as opposed to a
// for-sale listing.
func (c *SourcedCompany) IsActiveBusiness() bool {
	if c.Extra == nil {
		return false
	}
	v, _ := c.Extra["listing_type"].(string)
	return v == ListingTypeActiveBusiness
}

// SetScore attaches a fit score and its audit reasons.
func (c *SourcedCompany) SetScore(score int, reasons []string) {
	c.FitScore = &score
	c.FitReasons = reasons
}

// Score returns the fit score, or 0 when unscored.
func (c *SourcedCompany) Score() int {
	if c.FitScore == nil {
		return 0
	}
	return *c.FitScore
}

// Criteria is one search request. It is immutable for the duration of a
// search and doubles as the cache key via CacheKey.
type Criteria struct {
	Sector       string   `json:"sector"`
	Keywords     string   `json:"keywords"`
	Location     string   `json:"location"`
	MinEmployees int      `json:"min_employees,omitempty"`
	MaxEmployees int      `json:"max_employees,omitempty"`
	MinRevenue   float64  `json:"min_revenue,omitempty"`
	MaxRevenue   float64  `json:"max_revenue,omitempty"`
	Sources      []string `json:"sources,omitempty"`
}

// IsZero reports whether no criteria fields were supplied at all.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Sector) == "" &&
		strings.TrimSpace(c.Keywords) == "" &&
		strings.TrimSpace(c.Location) == "" &&
		c.MinEmployees == 0 && c.MaxEmployees == 0 &&
		c.MinRevenue == 0 && c.MaxRevenue == 0
}

// WantsSource reports whether the optional source subset includes name.
// An empty subset means all sources.
func (c Criteria) WantsSource(name string) bool {
	if len(c.Sources) == 0 {
		return true
	}
	for _, s := range c.Sources {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// CacheKey returns a stable, order-independent key over the non-empty
// criteria fields.
func (c Criteria) CacheKey() string {
	fields := map[string]string{
		"sector":   strings.TrimSpace(c.Sector),
		"keywords": strings.TrimSpace(c.Keywords),
		"location": strings.TrimSpace(c.Location),
	}
	if c.MinEmployees > 0 {
		fields["min_employees"] = fmt.Sprintf("%d", c.MinEmployees)
	}
	if c.MaxEmployees > 0 {
		fields["max_employees"] = fmt.Sprintf("%d", c.MaxEmployees)
	}
	if c.MinRevenue > 0 {
		fields["min_revenue"] = fmt.Sprintf("%g", c.MinRevenue)
	}
	if c.MaxRevenue > 0 {
		fields["max_revenue"] = fmt.Sprintf("%g", c.MaxRevenue)
	}
	if len(c.Sources) > 0 {
		srcs := append([]string(nil), c.Sources...)
		sort.Strings(srcs)
		fields["sources"] = strings.Join(srcs, ",")
	}

	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}
	return strings.Join(parts, "|")
}
