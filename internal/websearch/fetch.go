package websearch

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// FetchText fetches a URL and returns its visible text with chrome stripped
// (scripts, nav, footers), collapsed whitespace, capped at maxChars. Any
// failure returns "" so callers can treat unreadable pages as empty research.
func (ch *Chain) FetchText(ctx context.Context, pageURL string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = 4000
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		zap.L().Debug("fetch text bad url", zap.String("url", pageURL), zap.Error(err))
		return ""
	}
	SetBrowserHeaders(req)

	resp, err := ch.http.Do(req)
	if err != nil {
		zap.L().Debug("fetch text failed", zap.String("url", pageURL), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		zap.L().Debug("fetch text parse failed", zap.String("url", pageURL), zap.Error(err))
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside, form, noscript").Remove()

	text := strings.TrimSpace(doc.Find("body").Text())
	if text == "" {
		text = strings.TrimSpace(doc.Text())
	}
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\t", " ")
	text = multiSpace.ReplaceAllString(text, " ")

	return truncate(text, maxChars)
}
