package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/pkg/places"
)

// placesNationwideRegions are the populous states queried when no location
// filter is set.
var placesNationwideRegions = []string{
	"New York", "California", "Texas", "Florida", "Illinois", "Ohio",
	"Georgia", "Pennsylvania", "North Carolina", "Washington", "Colorado",
	"Arizona",
}

// GooglePlaces discovers operating businesses through the Places text
// search API. A nil client disables the connector.
type GooglePlaces struct {
	client places.Client
}

// NewGooglePlaces creates the Places connector.
func NewGooglePlaces(client places.Client) *GooglePlaces {
	return &GooglePlaces{client: client}
}

// Name implements Connector.
func (p *GooglePlaces) Name() string { return "Google Places" }

func (p *GooglePlaces) Trusted() bool { return true }

// Search implements Connector.
func (p *GooglePlaces) Search(ctx context.Context, q Query) []model.SourcedCompany {
	if p.client == nil {
		return nil
	}
	base := strings.TrimSpace(q.Sector)
	if kw := strings.TrimSpace(q.Keywords); kw != "" {
		base = strings.TrimSpace(base + " " + kw)
	}
	if base == "" {
		return nil
	}

	var queries []string
	if loc := strings.TrimSpace(q.Location); loc != "" {
		queries = []string{base + " " + loc}
	} else {
		for _, region := range placesNationwideRegions {
			queries = append(queries, base+" "+region)
		}
	}

	var (
		mu      sync.Mutex
		results []places.Place
		seen    = make(map[string]bool)
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, query := range queries {
		query := query
		g.Go(func() error {
			found, err := p.client.TextSearch(gctx, query)
			if err != nil {
				zap.L().Warn("places query failed", zap.String("query", query), zap.Error(err))
				return nil
			}
			mu.Lock()
			for _, pl := range found {
				if pl.PlaceID == "" || !seen[pl.PlaceID] {
					seen[pl.PlaceID] = true
					results = append(results, pl)
				}
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines only log

	var out []model.SourcedCompany
	for _, pl := range results {
		if co, ok := p.placeCompany(pl); ok {
			out = append(out, co)
		}
	}
	zap.L().Info("places search complete",
		zap.Int("queries", len(queries)),
		zap.Int("companies", len(out)))
	return out
}

func (p *GooglePlaces) placeCompany(pl places.Place) (model.SourcedCompany, bool) {
	name := strings.TrimSpace(pl.Name)
	if len(name) < 3 {
		return model.SourcedCompany{}, false
	}

	// "123 Main St, Austin, TX 78701, United States" -> "Austin, TX 78701".
	location := pl.FormattedAddress
	parts := strings.Split(pl.FormattedAddress, ",")
	if len(parts) >= 3 {
		location = strings.TrimSpace(parts[len(parts)-3]) + ", " +
			strings.TrimSpace(parts[len(parts)-2])
	}

	var descParts []string
	if len(pl.Types) > 0 {
		t := strings.ReplaceAll(pl.Types[0], "_", " ")
		descParts = append(descParts, cases.Title(language.AmericanEnglish).String(t))
	}
	if pl.Rating > 0 {
		descParts = append(descParts, fmt.Sprintf("Rating: %.1f stars", pl.Rating))
	}
	switch {
	case pl.UserRatingsTotal >= 500:
		descParts = append(descParts, "Large (500+ reviews)")
	case pl.UserRatingsTotal >= 100:
		descParts = append(descParts, "Mid-size (100-500 reviews)")
	case pl.UserRatingsTotal > 0:
		descParts = append(descParts, fmt.Sprintf("Small (%d reviews)", pl.UserRatingsTotal))
	}

	return model.SourcedCompany{
		Name:        name,
		Source:      p.Name(),
		SourceURL:   "https://www.google.com/maps/place/?q=place_id:" + pl.PlaceID,
		Description: strings.Join(descParts, " | "),
		Location:    location,
		Extra: map[string]any{
			"address":      pl.FormattedAddress,
			"place_id":     pl.PlaceID,
			"rating":       pl.Rating,
			"review_count": pl.UserRatingsTotal,
			"types":        pl.Types,
			"listing_type": model.ListingTypeActiveBusiness,
		},
	}, true
}
