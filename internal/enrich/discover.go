// Package enrich finds a company's principal owner or most senior
// decision-maker and builds an outreach-ready contact for them. A run moves
// through phases: website discovery, parallel web research, structured
// extraction, a senior-employee fallback, email discovery, optional
// Apollo.io lookup, and personality profiling. Every phase degrades rather
// than aborts, so a run always ends with a stored contact in a terminal
// status.
package enrich

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

// registryDomains are registries, aggregators, directories, and social
// networks. A URL on one of these is never the company's own website, so it
// is ignored for website discovery and excluded from email guessing.
var registryDomains = []string{
	// NPI and healthcare registries
	"npiregistry.cms.hhs.gov", "npiprofile.com", "npino.com", "npidb.org",
	"npi.fat.gov", "hipaaspace.com", "nppes.cms.hhs.gov",
	// Healthcare aggregators and review sites
	"healthgrades.com", "vitals.com", "webmd.com", "zocdoc.com",
	"ratemds.com", "doximity.com", "sharecare.com", "usnews.com",
	"fertilityiq.com", "fertility.com", "ivf.com",
	// Social media
	"facebook.com", "linkedin.com", "twitter.com", "instagram.com",
	"tiktok.com", "youtube.com", "reddit.com", "pinterest.com",
	// Business directories and aggregators
	"yelp.com", "bbb.org", "crunchbase.com", "bloomberg.com",
	"dnb.com", "zoominfo.com", "mapquest.com", "yellowpages.com",
	"manta.com", "buzzfile.com", "opencorporates.com", "sec.gov",
	"indeed.com", "glassdoor.com", "wikipedia.org",
	// Maps and general
	"openstreetmap.org", "google.com", "google.com.au", "amazon.com",
	// Job and visa sites
	"myvisajobs.com", "h1bdata.info", "h1bgrader.com",
	// Generic hosting and review aggregators
	"trustpilot.com", "birdseye.com", "superpages.com", "citysearch.com",
	"angieslist.com", "thumbtack.com", "expertise.com", "birdeye.com",
}

// IsRegistryOrAggregator reports whether a URL belongs to a registry or
// aggregator site rather than a company's own website.
func IsRegistryOrAggregator(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	netloc := strings.ToLower(strings.TrimPrefix(parsed.Host, "www."))
	for _, d := range registryDomains {
		if netloc == d || strings.HasSuffix(netloc, "."+d) {
			return true
		}
	}
	return false
}

// legalSuffixRes strip legal forms from company names, longest patterns
// first so "Professional Corporation" never leaves a dangling "Professional".
var legalSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i),?\s*Professional\s+Corporation\b`),
	regexp.MustCompile(`(?i),?\s*Medical\s+Corporation\b`),
	regexp.MustCompile(`(?i),?\s*Corporation\b`),
	regexp.MustCompile(`(?i),?\s*Corp\.?\b`),
	regexp.MustCompile(`(?i),?\s*Incorporated\b`),
	regexp.MustCompile(`(?i),?\s*Inc\.?\b`),
	regexp.MustCompile(`(?i),?\s*Limited\b`),
	regexp.MustCompile(`(?i),?\s*Ltd\.?\b`),
	regexp.MustCompile(`(?i),?\s*PLLC\.?\b`),
	regexp.MustCompile(`(?i),?\s*LLC\.?\b`),
	regexp.MustCompile(`(?i),?\s*L\.?P\.?\b`),
	regexp.MustCompile(`(?i),?\s*P\.?C\.?\b`),
	regexp.MustCompile(`(?i),?\s*P\.?A\.?\b`),
}

var trailingPunct = regexp.MustCompile(`[,.\s]+$`)

// cleanCompanyName strips legal suffixes and trailing punctuation so search
// queries match how a company presents itself, not how it is incorporated.
func cleanCompanyName(name string) string {
	cleaned := name
	for _, re := range legalSuffixRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(trailingPunct.ReplaceAllString(cleaned, ""))
}

// candidateURL picks the best company-website candidate from search result
// URLs. Short paths win because homepages and /about pages rank above deep
// blog posts on the company's own domain.
func candidateURL(urls []string) string {
	for _, u := range urls {
		if IsRegistryOrAggregator(u) {
			continue
		}
		parsed, err := url.Parse(u)
		if err != nil || parsed.Host == "" {
			continue
		}
		path := strings.Trim(parsed.Path, "/")
		if len(strings.Split(path, "/")) <= 2 {
			return parsed.Scheme + "://" + parsed.Host
		}
	}
	for _, u := range urls {
		if IsRegistryOrAggregator(u) {
			continue
		}
		parsed, err := url.Parse(u)
		if err != nil || parsed.Host == "" {
			continue
		}
		return parsed.Scheme + "://" + parsed.Host
	}
	return ""
}

// DiscoverWebsite searches for a company's actual website when the stored
// URL is missing or points at a registry. Returns "" when nothing usable
// turned up.
func DiscoverWebsite(ctx context.Context, searcher Searcher, companyName, location string) string {
	cleanName := cleanCompanyName(companyName)

	queries := []string{
		cleanName + " " + location + " official website",
		cleanName + " website",
	}
	for _, query := range queries {
		if candidate := candidateURL(searcher.SearchURLs(ctx, query, 8)); candidate != "" {
			return candidate
		}
	}

	// Long names bury the signal; retry with just the leading words.
	if words := strings.Fields(cleanName); len(words) > 3 {
		shortName := strings.Join(words[:3], " ")
		if candidate := candidateURL(searcher.SearchURLs(ctx, shortName+" "+location+" website", 5)); candidate != "" {
			return candidate
		}
	}
	return ""
}

// domainOf extracts the bare domain from a website URL, "" when unparseable.
func domainOf(website string) string {
	if website == "" {
		return ""
	}
	parsed, err := url.Parse(website)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
