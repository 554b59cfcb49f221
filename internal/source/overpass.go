package source

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/sourcing-cli/internal/geo"
	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/pkg/overpass"
)

const (
	overpassMaxParallelNationwide = 25
	overpassMaxParallel           = 10
)

// OpenStreetMap discovers operating businesses by name-matching OSM
// elements inside the resolved query areas.
type OpenStreetMap struct {
	client         overpass.Client
	resolver       *geo.Resolver
	maxAreas       int
	maxAreasNation int
}

// OSMOption adjusts the OSM connector.
type OSMOption func(*OpenStreetMap)

// WithMaxAreas caps how many resolved areas a nationwide search queries in
// parallel. Regional searches stay at the lower default.
func WithMaxAreas(n int) OSMOption {
	return func(o *OpenStreetMap) {
		if n > 0 {
			o.maxAreasNation = n
		}
	}
}

// NewOpenStreetMap creates the OSM connector.
func NewOpenStreetMap(client overpass.Client, resolver *geo.Resolver, opts ...OSMOption) *OpenStreetMap {
	o := &OpenStreetMap{
		client:         client,
		resolver:       resolver,
		maxAreas:       overpassMaxParallel,
		maxAreasNation: overpassMaxParallelNationwide,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name implements Connector.
func (o *OpenStreetMap) Name() string { return "OpenStreetMap" }

func (o *OpenStreetMap) Trusted() bool { return true }

// Search implements Connector. Only the first match term is queried: OSM
// name matching is expensive, and the scorer handles the rest.
func (o *OpenStreetMap) Search(ctx context.Context, q Query) []model.SourcedCompany {
	if len(q.MatchKeywords) == 0 {
		return nil
	}
	pattern := regexp.QuoteMeta(q.MatchKeywords[0])

	res := o.resolver.Resolve(ctx, q.Location)
	if len(res.Areas) == 0 {
		return nil
	}
	maxAreas := o.maxAreas
	if res.Nationwide {
		maxAreas = o.maxAreasNation
	}
	areas := res.Areas
	if len(areas) > maxAreas {
		areas = areas[:maxAreas]
	}

	var (
		mu       sync.Mutex
		elements []overpass.Element
		areaOf   = make(map[int64]string)
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, area := range areas {
		i, area := i, area
		g.Go(func() error {
			found, err := o.client.SearchNames(gctx, pattern, overpass.Bounds{
				South: area.South(),
				West:  area.West(),
				North: area.North(),
				East:  area.East(),
			}, i)
			if err != nil {
				zap.L().Debug("overpass area failed",
					zap.String("area", area.Name),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			for _, el := range found {
				if _, dup := areaOf[el.ID]; !dup {
					areaOf[el.ID] = area.Name
					elements = append(elements, el)
				}
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines only log

	var out []model.SourcedCompany
	for _, el := range elements {
		if co, ok := o.elementCompany(el, areaOf[el.ID]); ok {
			out = append(out, co)
		}
	}
	zap.L().Info("openstreetmap search complete",
		zap.Int("areas", len(areas)),
		zap.Int("companies", len(out)))
	return out
}

func (o *OpenStreetMap) elementCompany(el overpass.Element, areaName string) (model.SourcedCompany, bool) {
	name := strings.TrimSpace(el.Tags["name"])
	if len(name) < 3 {
		return model.SourcedCompany{}, false
	}

	city := el.Tags["addr:city"]
	if city == "" {
		city = strings.SplitN(areaName, ",", 2)[0]
	}
	state := el.Tags["addr:state"]
	location := strings.Trim(city+", "+state, ", ")

	var addrParts []string
	if hn, st := el.Tags["addr:housenumber"], el.Tags["addr:street"]; st != "" {
		addrParts = append(addrParts, strings.TrimSpace(hn+" "+st))
	}
	for _, p := range []string{city, state, el.Tags["addr:postcode"]} {
		if p != "" {
			addrParts = append(addrParts, p)
		}
	}
	address := strings.Join(addrParts, ", ")

	phone := firstNonEmpty(el.Tags["phone"], el.Tags["contact:phone"], el.Tags["telephone"])
	website := firstNonEmpty(el.Tags["website"], el.Tags["contact:website"], el.Tags["url"])

	var descParts []string
	for _, k := range []string{"description", "opening_hours", "operator"} {
		if v := el.Tags[k]; v != "" {
			descParts = append(descParts, v)
		}
	}
	description := strings.Join(descParts, " | ")
	if description == "" {
		kind := firstNonEmpty(el.Tags["amenity"], el.Tags["shop"], el.Tags["healthcare"], "business")
		kind = cases.Title(language.AmericanEnglish).String(strings.ReplaceAll(kind, "_", " "))
		description = kind + " - found via OpenStreetMap"
	}

	sourceURL := website
	if sourceURL == "" {
		sourceURL = fmt.Sprintf("https://www.openstreetmap.org/%s/%s",
			firstNonEmpty(el.Type, "node"), strconv.FormatInt(el.ID, 10))
	}

	return model.SourcedCompany{
		Name:        name,
		Source:      o.Name(),
		SourceURL:   sourceURL,
		Description: description,
		Location:    location,
		Website:     website,
		Extra: map[string]any{
			"address":      address,
			"phone":        phone,
			"osm_type":     el.Type,
			"listing_type": model.ListingTypeActiveBusiness,
		},
	}, true
}
