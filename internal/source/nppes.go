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

	"github.com/sells-group/sourcing-cli/internal/geo"
	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/pkg/nppes"
)

const (
	nppesMaxTaxonomies = 3
	nppesPageSize      = 200
)

// nppesPageSkips are the page offsets fetched per taxonomy. Two pages of
// 200 is enough breadth before dedup and scoring trim the set.
var nppesPageSkips = []int{0, 200}

// NPPES discovers active healthcare organizations through the NPI registry.
type NPPES struct {
	client nppes.Client
}

// NewNPPES creates the NPI registry connector.
func NewNPPES(client nppes.Client) *NPPES {
	return &NPPES{client: client}
}

// Name implements Connector.
func (n *NPPES) Name() string { return "NPPES" }

func (n *NPPES) Trusted() bool { return true }

// Search implements Connector. Taxonomy terms derived from the sector and
// keywords are queried in parallel, two pages each, deduplicated by NPI.
func (n *NPPES) Search(ctx context.Context, q Query) []model.SourcedCompany {
	taxonomies := taxonomiesFor(q.Sector, q.Keywords)
	if len(taxonomies) == 0 {
		return nil
	}
	if len(taxonomies) > nppesMaxTaxonomies {
		taxonomies = taxonomies[:nppesMaxTaxonomies]
	}
	state := geo.StateCode(q.Location)

	var (
		mu      sync.Mutex
		records []nppes.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, taxonomy := range taxonomies {
		for _, skip := range nppesPageSkips {
			taxonomy, skip := taxonomy, skip
			g.Go(func() error {
				resp, err := n.client.Search(gctx, nppes.SearchRequest{
					TaxonomyDescription: taxonomy,
					State:               state,
					Limit:               nppesPageSize,
					Skip:                skip,
				})
				if err != nil {
					zap.L().Warn("nppes page failed",
						zap.String("taxonomy", taxonomy),
						zap.Int("skip", skip),
						zap.Error(err))
					return nil
				}
				mu.Lock()
				records = append(records, resp.Results...)
				mu.Unlock()
				return nil
			})
		}
	}
	g.Wait() //nolint:errcheck // goroutines only log

	seen := make(map[string]bool)
	var out []model.SourcedCompany
	for _, rec := range records {
		if rec.Number == "" || seen[rec.Number] {
			continue
		}
		seen[rec.Number] = true
		if co, ok := n.recordCompany(rec); ok {
			out = append(out, co)
		}
	}
	zap.L().Info("nppes search complete",
		zap.Int("taxonomies", len(taxonomies)),
		zap.Int("companies", len(out)))
	return out
}

func (n *NPPES) recordCompany(rec nppes.Record) (model.SourcedCompany, bool) {
	titler := cases.Title(language.AmericanEnglish)
	name := strings.TrimSpace(rec.Basic.OrganizationName)
	if len(name) < 3 {
		return model.SourcedCompany{}, false
	}
	name = titler.String(strings.ToLower(name))

	// Prefer the practice location over the mailing address.
	var addr nppes.Address
	for _, a := range rec.Addresses {
		if a.AddressPurpose == "LOCATION" {
			addr = a
			break
		}
	}
	if addr.City == "" && len(rec.Addresses) > 0 {
		addr = rec.Addresses[0]
	}
	city := titler.String(strings.ToLower(addr.City))
	location := strings.TrimSpace(strings.Trim(city+", "+addr.State, ", "))
	postal := addr.PostalCode
	if len(postal) > 5 {
		postal = postal[:5]
	}
	street := titler.String(strings.ToLower(addr.Address1))
	fullAddr := strings.Trim(strings.Join([]string{street, city, addr.State, postal}, ", "), ", ")

	taxonomy := ""
	for _, t := range rec.Taxonomies {
		if t.Primary {
			taxonomy = t.Desc
			break
		}
	}
	if taxonomy == "" && len(rec.Taxonomies) > 0 {
		taxonomy = rec.Taxonomies[0].Desc
	}

	return model.SourcedCompany{
		Name:        name,
		Source:      n.Name(),
		SourceURL:   "https://npiregistry.cms.hhs.gov/provider-view/" + rec.Number,
		Description: fmt.Sprintf("%s - NPI #%s", taxonomy, rec.Number),
		Sector:      taxonomy,
		Location:    location,
		Extra: map[string]any{
			"address":      fullAddr,
			"phone":        addr.TelephoneNumber,
			"npi":          rec.Number,
			"taxonomy":     taxonomy,
			"listing_type": model.ListingTypeActiveBusiness,
		},
	}, true
}
