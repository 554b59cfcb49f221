package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// dealstreamFeeds are the category RSS feeds, each carrying 25 live listings.
var dealstreamFeeds = []string{
	"businesses-for-sale",
	"health-care-businesses-for-sale",
	"finance-and-insurance-businesses-for-sale",
	"service-businesses-for-sale",
	"manufacturing-businesses-for-sale",
	"construction-businesses-for-sale",
	"education-businesses-for-sale",
	"hospitality-businesses-for-sale",
}

// DealStream reads the DealStream category RSS feeds and keyword-filters
// the listings.
type DealStream struct {
	httpOptions
}

// NewDealStream builds the DealStream connector.
func NewDealStream(opts ...Option) *DealStream {
	return &DealStream{httpOptions: newHTTPOptions("https://www.dealstream.com", opts)}
}

func (d *DealStream) Name() string { return "DealStream" }

func (d *DealStream) Trusted() bool { return false }

type rssDoc struct {
	Items []rssItem `xml:"channel>item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
}

type dealstreamListing struct {
	name        string
	description string
	url         string
	price       string
	location    string
}

func (d *DealStream) Search(ctx context.Context, q Query) []model.SourcedCompany {
	var (
		mu  sync.Mutex
		raw []dealstreamListing
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, slug := range dealstreamFeeds {
		g.Go(func() error {
			items, err := d.fetchFeed(gctx, slug)
			if err != nil {
				zap.L().Warn("dealstream feed failed",
					zap.String("feed", slug), zap.Error(err))
				return nil
			}
			mu.Lock()
			raw = append(raw, items...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("dealstream feeds fetched", zap.Int("raw", len(raw)))

	var results []model.SourcedCompany
	for _, item := range raw {
		combined := strings.ToLower(item.name + " " + item.description)
		if len(q.MatchKeywords) > 0 && !TextMatchesAny(combined, q.MatchKeywords) {
			continue
		}
		results = append(results, model.SourcedCompany{
			Name:        item.name,
			Source:      d.Name(),
			SourceURL:   item.url,
			Description: capText(item.description, 350),
			Sector:      q.Sector,
			Location:    item.location,
			Revenue:     item.price,
			AskingPrice: item.price,
		})
	}

	zap.L().Info("dealstream filtered", zap.Int("results", len(results)))
	return results
}

func (d *DealStream) fetchFeed(ctx context.Context, slug string) ([]dealstreamListing, error) {
	resp, err := d.get(ctx, fmt.Sprintf("%s/%s.rss", d.baseURL, slug))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("source: dealstream feed status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "source: read dealstream feed")
	}

	var doc rssDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, eris.Wrapf(err, "source: parse dealstream feed %s", slug)
	}

	var items []dealstreamListing
	for _, it := range doc.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		desc := capText(stripHTML(it.Description), 500)
		items = append(items, dealstreamListing{
			name:        title,
			description: desc,
			url:         strings.TrimSpace(it.Link),
			price:       ExtractMoney(desc),
			location:    ExtractLocation(desc),
		})
	}
	return items, nil
}

// stripHTML flattens markup in RSS descriptions to plain text.
func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanText(s)
	}
	return cleanText(doc.Text())
}
