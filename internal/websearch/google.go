package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// browserHeaders makes requests look like a desktop Chrome session. Google
// and several brokerage sites serve stripped or blocked pages to obvious bots.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// SetBrowserHeaders applies the standard browser headers to a request.
func SetBrowserHeaders(req *http.Request) {
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
}

// googleScrapeText scrapes the Google results page for snippet text.
// Last-resort provider, frequently blocked.
func (ch *Chain) googleScrapeText(ctx context.Context, query string) (string, error) {
	doc, err := ch.fetchGoogleDoc(ctx, query, 5)
	if err != nil {
		return "", err
	}

	var snippets []string
	for _, sel := range []string{"div.VwiC3b", "div[data-sncf]", "span.aCOpRe", "div.IsZvec"} {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 30 {
				snippets = append(snippets, text)
			}
		})
	}
	doc.Find("h3").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) > 10 {
			snippets = append(snippets, "[Result] "+text)
		}
	})

	if len(snippets) > 12 {
		snippets = snippets[:12]
	}
	return strings.Join(snippets, " | "), nil
}

// googleScrapeURLs scrapes the Google results page for organic result links.
func (ch *Chain) googleScrapeURLs(ctx context.Context, query string, maxResults int) ([]string, error) {
	doc, err := ch.fetchGoogleDoc(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	excluded := []string{
		"google.com/search", "google.com/imgres", "google.com/maps",
		"accounts.google", "support.google", "translate.google",
		"webcache.googleusercontent",
	}

	var urls []string
	seen := make(map[string]bool)
	for _, sel := range []string{".yuRUbf a", ".tF2Cxc a", ".g a[href]", "a[data-ved]"} {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			if href == "" || !strings.HasPrefix(href, "http") {
				return true
			}
			for _, d := range excluded {
				if strings.Contains(href, d) {
					return true
				}
			}
			if !seen[href] {
				seen[href] = true
				urls = append(urls, href)
			}
			return len(urls) < maxResults
		})
		if len(urls) >= maxResults {
			break
		}
	}
	return urls, nil
}

func (ch *Chain) fetchGoogleDoc(ctx context.Context, query string, num int) (*goquery.Document, error) {
	u := fmt.Sprintf("%s/search?q=%s&num=%d", ch.googleBaseURL, url.QueryEscape(query), num)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: create google request")
	}
	SetBrowserHeaders(req)

	resp, err := ch.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: fetch google results")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("websearch: google returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: parse google results")
	}
	return doc, nil
}
