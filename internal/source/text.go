package source

import (
	"regexp"
	"strings"
)

var (
	splitRe    = regexp.MustCompile(`[\s,/&]+`)
	tokenRe    = regexp.MustCompile(`[\s,/&\-]+`)
	moneyRe    = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d+)?\s*(?:[MKB]|million|thousand|billion)?`)
	locationRe = regexp.MustCompile(`([A-Z][a-zA-Z\s]{2,20}),\s*([A-Z]{2})\b`)
)

var stopWords = map[string]bool{
	"for": true, "and": true, "the": true, "with": true, "from": true,
	"that": true, "this": true, "are": true, "has": true, "have": true,
	"been": true, "will": true, "its": true, "was": true, "our": true,
	"not": true, "but": true, "can": true,
}

// SearchKeywords builds the unified filter-token list from free-text sector
// and keywords. Used for source-level filtering where both fields count
// equally.
func SearchKeywords(sector, keywords string) []string {
	combined := strings.TrimSpace(sector + " " + keywords)
	if combined == "" {
		return nil
	}
	var out []string
	for _, w := range splitRe.Split(combined, -1) {
		w = strings.TrimSpace(w)
		if len(w) > 2 {
			out = append(out, strings.ToLower(w))
		}
	}
	return out
}

// Tokenize splits free text into significant lowercase tokens, dropping
// stop words and anything shorter than three characters.
func Tokenize(text string) []string {
	var out []string
	for _, w := range tokenRe.Split(strings.TrimSpace(text), -1) {
		if len(strings.TrimSpace(w)) <= 2 {
			continue
		}
		lower := strings.ToLower(w)
		if stopWords[lower] {
			continue
		}
		out = append(out, strings.Trim(lower, "()."))
	}
	return out
}

// TextMatchesAny reports whether any keyword appears as a substring of
// text. Single-character keywords are ignored.
func TextMatchesAny(text string, keywords []string) bool {
	t := strings.ToLower(text)
	for _, kw := range keywords {
		if len(kw) > 1 && strings.Contains(t, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ExtractMoney returns the first dollar amount mentioned in text, "" if none.
func ExtractMoney(text string) string {
	return moneyRe.FindString(text)
}

// ExtractLocation returns the first "City, ST" mention in text, "" if none.
func ExtractLocation(text string) string {
	return locationRe.FindString(text)
}
