package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/model"
)

var (
	efStatusLineRe = regexp.MustCompile(`(?:New Listing|Listing)\s+([A-Z][a-zA-Z\s&,/]+?)(?:\s+Monetization|\s+\$|\s+Unlock)`)
	efListingNumRe = regexp.MustCompile(`\s*\(#\d+\)\s*$`)
)

// EmpireFlippers scrapes the EmpireFlippers marketplace grid. Listings are
// anonymized, so the card category plus listing number stands in for a name.
// All cards are kept; the scorer ranks relevance.
type EmpireFlippers struct {
	httpOptions
}

// NewEmpireFlippers builds the EmpireFlippers connector.
func NewEmpireFlippers(opts ...Option) *EmpireFlippers {
	return &EmpireFlippers{httpOptions: newHTTPOptions("https://empireflippers.com", opts)}
}

func (ef *EmpireFlippers) Name() string { return "EmpireFlippers" }

func (ef *EmpireFlippers) Trusted() bool { return false }

func (ef *EmpireFlippers) Search(ctx context.Context, q Query) []model.SourcedCompany {
	doc, err := ef.getDoc(ctx, ef.baseURL+"/marketplace/")
	if err != nil {
		zap.L().Warn("empireflippers fetch failed", zap.Error(err))
		return nil
	}

	var results []model.SourcedCompany
	doc.Find(".listing-item").Each(func(_ int, card *goquery.Selection) {
		fullText := cleanText(card.Text())
		listingNum := strings.TrimSpace(card.Find(".listing-number").First().Text())

		detailsText := fullText
		if details := card.Find(".listing-details, [class*=details]").First(); details.Length() > 0 {
			detailsText = cleanText(details.Text())
		}

		name := ef.listingName(card, fullText, detailsText, listingNum)
		if len(name) < 3 {
			return
		}

		link, _ := card.Find("a[href]").First().Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://empireflippers.com" + link
		}

		price := strings.TrimSpace(card.Find(".listing-price").First().Text())
		if price == "" {
			price = ExtractMoney(fullText)
		}

		// the category embedded in the name doubles as the sector,
		// e.g. "Supplements (#88319)" is in the Supplements niche
		sector := strings.TrimSpace(efListingNumRe.ReplaceAllString(name, ""))

		results = append(results, model.SourcedCompany{
			Name:        name,
			Source:      ef.Name(),
			SourceURL:   link,
			Description: capText(detailsText, 350),
			Sector:      firstNonEmpty(sector, q.Sector),
			AskingPrice: price,
		})
	})

	zap.L().Info("empireflippers searched", zap.Int("results", len(results)))
	return results
}

func (ef *EmpireFlippers) listingName(card *goquery.Selection, fullText, detailsText, listingNum string) string {
	title := card.Find(".listing-title, h2, h3, h4, [class*=title], [class*=heading], [class*=name]").First()
	if title.Length() > 0 {
		return strings.TrimSpace(title.Text())
	}

	if m := efStatusLineRe.FindStringSubmatch(fullText); m != nil {
		return fmt.Sprintf("%s (%s)", strings.TrimSpace(m[1]), listingNum)
	}

	if listingNum != "" {
		dtext := strings.TrimSpace(strings.ReplaceAll(detailsText, listingNum, ""))
		firstPart := strings.TrimSpace(strings.SplitN(dtext, "Monetization", 2)[0])
		if firstPart != "" {
			return fmt.Sprintf("%s (%s)", capText(firstPart, 50), listingNum)
		}
		return listingNum
	}
	return capText(fullText, 50)
}
