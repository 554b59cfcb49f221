package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/sourcing-cli/internal/model"
)

var quietlightRevenueRe = regexp.MustCompile(`[Rr]evenue[:\s]+(\$[\d,\.]+\s*[MKBmkb]?)`)

// quietlightTypeTags are listing categories QuietLight encodes in card CSS
// classes when no category element is present.
var quietlightTypeTags = []string{
	"ecommerce", "saas", "amazon", "content", "service", "app", "software",
}

// QuietLight scrapes the server-rendered QuietLight brokerage listing grid.
// Every card is kept: the scorer ranks relevance, and keyword pre-filtering
// here would drop too many legitimate listings.
type QuietLight struct {
	httpOptions
}

// NewQuietLight builds the QuietLight connector.
func NewQuietLight(opts ...Option) *QuietLight {
	return &QuietLight{httpOptions: newHTTPOptions("https://www.quietlight.com", opts)}
}

func (ql *QuietLight) Name() string { return "QuietLight" }

func (ql *QuietLight) Trusted() bool { return false }

func (ql *QuietLight) Search(ctx context.Context, q Query) []model.SourcedCompany {
	doc, err := ql.getDoc(ctx, ql.baseURL+"/listings/")
	if err != nil {
		zap.L().Warn("quietlight fetch failed", zap.Error(err))
		return nil
	}

	var results []model.SourcedCompany
	doc.Find("div.listing-card.grid-item").Each(func(_ int, card *goquery.Selection) {
		body := card.Find(".listing-card__body").First()
		if body.Length() == 0 {
			body = card
		}
		fullText := cleanText(body.Text())

		name := strings.TrimSpace(body.Find("h2, h3, h4, strong, .listing-card__title, [class*=title]").First().Text())
		if name == "" {
			name = strings.TrimSpace(capText(fullText, 60))
		}
		if len(name) < 4 {
			return
		}

		link, _ := card.Find("a[href]").First().Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://www.quietlight.com" + link
		}

		asking := ExtractMoney(fullText)
		revenue := ""
		if m := quietlightRevenueRe.FindStringSubmatch(fullText); m != nil {
			revenue = m[1]
		}

		results = append(results, model.SourcedCompany{
			Name:        name,
			Source:      ql.Name(),
			SourceURL:   link,
			Description: capText(fullText, 350),
			Sector:      firstNonEmpty(ql.listingSector(card), q.Sector),
			Revenue:     revenue,
			AskingPrice: asking,
		})
	})

	zap.L().Info("quietlight searched", zap.Int("results", len(results)))
	return results
}

// listingSector pulls the category tag from the card footer, falling back
// to type hints in the card's CSS classes.
func (ql *QuietLight) listingSector(card *goquery.Selection) string {
	bottom := card.Find(".listing-card__bottom, [class*=bottom], [class*=category], [class*=type]").First()
	if bottom.Length() > 0 {
		var parts []string
		for _, p := range strings.Fields(cleanText(bottom.Text())) {
			if len(strings.TrimSpace(p)) > 2 {
				parts = append(parts, strings.TrimSpace(p))
			}
		}
		if len(parts) > 0 {
			// the trailing token is usually the category tag
			return parts[len(parts)-1]
		}
	}

	classes, _ := card.Attr("class")
	lower := strings.ToLower(classes)
	for _, tag := range quietlightTypeTags {
		if strings.Contains(lower, tag) {
			return cases.Title(language.AmericanEnglish).String(tag)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
