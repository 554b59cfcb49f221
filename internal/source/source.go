// Package source defines the connector contract and the individual source
// connectors that feed the sourcing pipeline: brokerage listing sites,
// classifieds, and active-business registries. Connectors degrade to empty
// result sets on any failure so one unreachable site never fails a search.
package source

import (
	"context"
	"strings"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// Query is the per-search input handed to every connector. The token lists
// are derived once from the raw criteria so connectors filter consistently.
type Query struct {
	Sector   string
	Keywords string
	Location string

	// MatchKeywords is the unified sector+keyword token list used for
	// text filtering at the source level.
	MatchKeywords []string

	// LocationWords are the significant lowercase words of Location.
	LocationWords []string
}

// NewQuery derives a connector query from search criteria.
func NewQuery(c model.Criteria) Query {
	location := strings.TrimSpace(c.Location)

	var locWords []string
	for _, w := range strings.Fields(strings.ToLower(location)) {
		if len(w) > 2 {
			locWords = append(locWords, w)
		}
	}

	return Query{
		Sector:        strings.TrimSpace(c.Sector),
		Keywords:      strings.TrimSpace(c.Keywords),
		Location:      location,
		MatchKeywords: SearchKeywords(c.Sector, c.Keywords),
		LocationWords: locWords,
	}
}

// Connector is one search source. Search never returns an error: connectors
// log failures and return whatever they could collect.
type Connector interface {
	Name() string

	// Trusted marks registry-backed sources of operating businesses,
	// which score on a different baseline than scraped broker listings.
	Trusted() bool

	Search(ctx context.Context, q Query) []model.SourcedCompany
}
