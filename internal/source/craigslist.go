package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sourcing-cli/internal/geo"
	"github.com/sells-group/sourcing-cli/internal/model"
)

// Craigslist scrapes the business-for-sale section of the cities relevant
// to the search location.
type Craigslist struct {
	httpOptions

	// urlForCity builds the per-city search URL; swapped in tests.
	urlForCity func(city, query string) string
}

// NewCraigslist builds the Craigslist connector. A non-default base URL
// routes every city to that endpoint instead of per-city subdomains.
func NewCraigslist(opts ...Option) *Craigslist {
	c := &Craigslist{httpOptions: newHTTPOptions("", opts)}
	if c.baseURL == "" {
		c.urlForCity = func(city, query string) string {
			return fmt.Sprintf("https://%s.craigslist.org/search/bfs?%s",
				city, url.Values{"query": {query}}.Encode())
		}
	} else {
		base := c.baseURL
		c.urlForCity = func(city, query string) string {
			return fmt.Sprintf("%s/%s/search/bfs?%s",
				base, city, url.Values{"query": {query}}.Encode())
		}
	}
	return c
}

func (c *Craigslist) Name() string { return "Craigslist" }

func (c *Craigslist) Trusted() bool { return false }

func (c *Craigslist) Search(ctx context.Context, q Query) []model.SourcedCompany {
	query := c.buildQuery(q)
	cities := geo.CraigslistSlugs(strings.Join(q.LocationWords, " "))

	type cityListing struct {
		name, description, url, price, location string
	}

	var (
		mu  sync.Mutex
		raw []cityListing
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, city := range cities {
		g.Go(func() error {
			doc, err := c.getDoc(gctx, c.urlForCity(city, query))
			if err != nil {
				zap.L().Debug("craigslist city failed",
					zap.String("city", city), zap.Error(err))
				return nil
			}

			display := geo.CraigslistDisplayName(city)
			doc.Find("li.cl-static-search-result").Each(func(_ int, li *goquery.Selection) {
				title := strings.TrimSpace(li.Find(".label, a, .title").First().Text())
				if len(title) < 4 {
					return
				}

				link, _ := li.Find("a[href]").First().Attr("href")
				if link != "" && !strings.HasPrefix(link, "http") {
					link = fmt.Sprintf("https://%s.craigslist.org%s", city, link)
				}

				price := strings.TrimSpace(li.Find(".priceinfo, .price, [class*=price]").First().Text())
				meta := strings.TrimSpace(li.Find(".meta, .supertitle, [class*=meta]").First().Text())

				mu.Lock()
				raw = append(raw, cityListing{
					name:        title,
					description: meta,
					url:         link,
					price:       price,
					location:    display,
				})
				mu.Unlock()
			})
			return nil
		})
	}
	_ = g.Wait()

	var results []model.SourcedCompany
	for _, item := range raw {
		combined := strings.ToLower(item.name + " " + item.description)
		if len(q.MatchKeywords) > 0 && !TextMatchesAny(combined, q.MatchKeywords) {
			continue
		}
		results = append(results, model.SourcedCompany{
			Name:        item.name,
			Source:      c.Name(),
			SourceURL:   item.url,
			Description: item.description,
			Sector:      q.Sector,
			Location:    item.location,
			AskingPrice: item.price,
		})
	}

	zap.L().Info("craigslist searched",
		zap.Int("cities", len(cities)), zap.Int("results", len(results)))
	return results
}

// buildQuery composes a short marketplace query: explicit keywords, else
// the leading sector words, always suffixed with "for sale".
func (c *Craigslist) buildQuery(q Query) string {
	var parts []string
	if q.Keywords != "" {
		parts = append(parts, q.Keywords)
	} else if q.Sector != "" {
		words := strings.Fields(q.Sector)
		if len(words) > 3 {
			words = words[:3]
		}
		parts = append(parts, strings.Join(words, " "))
	}
	parts = append(parts, "for sale")
	return strings.Join(parts, " ")
}
