package mailver

import (
	"context"
	"regexp"
	"strings"
)

// Fetcher retrieves cleaned page text, "" on failure.
type Fetcher interface {
	FetchText(ctx context.Context, url string, maxChars int) string
}

// contactPages are the paths most likely to list staff addresses.
var contactPages = []string{
	"", "/contact", "/contact-us", "/about", "/about-us", "/team", "/our-team",
}

var scrapeEmailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// genericPrefixes are role inboxes that never reach a specific person.
var genericPrefixes = []string{
	"info@", "contact@", "support@", "hello@", "admin@", "sales@",
	"office@", "mail@", "noreply@", "webmaster@", "help@", "enquiries@",
	"general@", "careers@", "jobs@", "privacy@", "press@", "media@",
}

// assetSuffixes catch filenames the email regex mistakes for addresses.
var assetSuffixes = []string{".png", ".jpg", ".gif", ".svg", ".css", ".js"}

// ScrapeWebsiteEmails fetches a company's contact-adjacent pages and collects
// personal email addresses, deduplicated in discovery order.
func ScrapeWebsiteEmails(ctx context.Context, fetcher Fetcher, website string) []string {
	if !strings.HasPrefix(website, "http") {
		return nil
	}
	base := strings.TrimRight(website, "/")

	var emails []string
	seen := make(map[string]bool)

	for _, page := range contactPages {
		text := fetcher.FetchText(ctx, base+page, 5000)
		if text == "" {
			continue
		}
		for _, email := range scrapeEmailRe.FindAllString(text, -1) {
			lower := strings.ToLower(email)
			if seen[lower] {
				continue
			}
			seen[lower] = true
			if isGenericPrefix(lower) || isAssetName(lower) {
				continue
			}
			emails = append(emails, lower)
		}
	}
	return emails
}

func isGenericPrefix(email string) bool {
	for _, g := range genericPrefixes {
		if strings.HasPrefix(email, g) {
			return true
		}
	}
	return false
}

func isAssetName(email string) bool {
	for _, s := range assetSuffixes {
		if strings.HasSuffix(email, s) {
			return true
		}
	}
	return false
}
