package source

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// FEInternational scrapes the FE International buy-side listing page, a
// Webflow CMS grid.
type FEInternational struct {
	httpOptions
}

// NewFEInternational builds the FE International connector.
func NewFEInternational(opts ...Option) *FEInternational {
	return &FEInternational{httpOptions: newHTTPOptions("https://feinternational.com", opts)}
}

func (fe *FEInternational) Name() string { return "FE International" }

func (fe *FEInternational) Trusted() bool { return false }

func (fe *FEInternational) Search(ctx context.Context, q Query) []model.SourcedCompany {
	doc, err := fe.getDoc(ctx, fe.baseURL+"/buy-a-website/")
	if err != nil {
		zap.L().Warn("feinternational fetch failed", zap.Error(err))
		return nil
	}

	var results []model.SourcedCompany
	doc.Find(".w-dyn-item").Each(func(_ int, item *goquery.Selection) {
		name := strings.TrimSpace(item.Find("h1, h2, h3, h4, [class*=title], [class*=heading], strong").First().Text())
		if len(name) < 4 {
			return
		}

		desc := capText(strings.TrimSpace(item.Find("p, [class*=desc], [class*=summary]").First().Text()), 300)

		link, _ := item.Find("a[href]").First().Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://feinternational.com" + link
		}

		price := strings.TrimSpace(item.Find("[class*=price], [class*=asking]").First().Text())

		combined := strings.ToLower(name + " " + desc)
		if len(q.MatchKeywords) > 0 && !TextMatchesAny(combined, q.MatchKeywords) {
			return
		}

		results = append(results, model.SourcedCompany{
			Name:        name,
			Source:      fe.Name(),
			SourceURL:   link,
			Description: desc,
			Sector:      q.Sector,
			AskingPrice: price,
		})
	})

	zap.L().Info("feinternational searched", zap.Int("results", len(results)))
	return results
}
