package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// axialMaxResults caps how many member teasers one search keeps.
const axialMaxResults = 8

// Axial searches the Axial member directory for lower-middle-market M&A
// platform members.
type Axial struct {
	httpOptions
}

// NewAxial builds the Axial connector.
func NewAxial(opts ...Option) *Axial {
	return &Axial{httpOptions: newHTTPOptions("https://www.axial.net", opts)}
}

func (a *Axial) Name() string { return "Axial" }

func (a *Axial) Trusted() bool { return false }

func (a *Axial) Search(ctx context.Context, q Query) []model.SourcedCompany {
	query := firstNonEmpty(q.Keywords, q.Sector, "business acquisition")
	searchURL := a.baseURL + "/forum/companies/?" + url.Values{"q": {query}}.Encode()

	doc, err := a.getDoc(ctx, searchURL)
	if err != nil {
		zap.L().Warn("axial fetch failed", zap.Error(err))
		return nil
	}

	var results []model.SourcedCompany
	doc.Find("article.teaser1").EachWithBreak(func(_ int, article *goquery.Selection) bool {
		name := strings.TrimSpace(article.Find("[itemprop=name], h2, h3").First().Text())
		if name == "" {
			name, _ = article.Find("img[alt]").First().Attr("alt")
			name = strings.TrimSpace(name)
		}
		if len(name) < 3 {
			return true
		}

		link := ""
		if el := article.Find("a[itemprop=url], a[href]").First(); el.Length() > 0 {
			href, _ := el.Attr("href")
			if strings.HasPrefix(href, "http") {
				link = href
			} else if href != "" {
				link = "https://www.axial.net" + href
			}
		}

		desc := capText(strings.TrimSpace(article.Find("p, [itemprop=description]").First().Text()), 200)
		description := "Axial M&A platform member"
		if desc != "" {
			description += " | " + desc
		}

		results = append(results, model.SourcedCompany{
			Name:        name,
			Source:      a.Name(),
			SourceURL:   link,
			Description: description,
			Sector:      q.Sector,
		})
		return len(results) < axialMaxResults
	})

	zap.L().Info("axial searched", zap.Int("results", len(results)))
	return results
}
