package geo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// CraigslistSlugs maps a location string to craigslist subdomain slugs.
// Unmatched or empty locations return every slug with an active
// business-for-sale section.
func CraigslistSlugs(location string) []string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return regions.CraigslistCities
	}

	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(loc, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.'
	}) {
		words[w] = true
	}

	var out []string
	seen := make(map[string]bool)
	// Scan the slug table in the canonical city-list order so output is
	// stable. Two-letter keys match whole words only, so "anchorage" never
	// triggers the "or" entry.
	for _, slug := range regions.CraigslistCities {
		for key, mapped := range regions.CraigslistSlugs {
			if mapped != slug || seen[slug] {
				continue
			}
			matched := false
			if len(key) <= 2 {
				matched = words[key]
			} else {
				matched = strings.Contains(loc, key)
			}
			if matched {
				seen[slug] = true
				out = append(out, slug)
			}
		}
	}
	if len(out) == 0 {
		return regions.CraigslistCities
	}
	return out
}

// CraigslistDisplayName renders a slug as a human-readable city name.
func CraigslistDisplayName(slug string) string {
	if name, ok := regions.CraigslistNames[slug]; ok {
		return name
	}
	return titleCaser.String(slug)
}
