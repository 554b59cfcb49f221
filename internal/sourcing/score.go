package sourcing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/internal/source"
)

// listingSourceBonus ranks broker sites by listing quality.
var listingSourceBonus = map[string]int{
	"QuietLight":       8,
	"EmpireFlippers":   7,
	"DealStream":       6,
	"FE International": 5,
	"Axial":            5,
	"Craigslist":       3,
}

// discoverySourceBonus ranks registries by data reliability.
var discoverySourceBonus = map[string]int{
	"NPPES":         15,
	"Google Places": 12,
	"OpenStreetMap": 8,
}

// trustedDiscoverySources already sector-filter at the query level (taxonomy
// or name matching), so a missing text match does not disqualify them.
var trustedDiscoverySources = map[string]bool{
	"NPPES":         true,
	"Google Places": true,
	"OpenStreetMap": true,
}

var (
	nonDigitRe   = regexp.MustCompile(`[^\d]`)
	nonNumericRe = regexp.MustCompile(`[^\d.]`)
)

// ScoreCompany scores a broker listing 0-100 against the criteria.
//
// Two-pass logic: the sector is a hard gate worth up to 55 points, keywords
// are a boost worth up to 25, and location, employees, revenue, data
// completeness, and source quality add increments on top.
func ScoreCompany(co model.SourcedCompany, criteria model.Criteria) (int, []string) {
	score := 0
	var reasons []string

	sector := strings.TrimSpace(criteria.Sector)
	combined := strings.ToLower(co.Name + " " + co.Description + " " + co.Location)

	sectorKws := source.Tokenize(sector)
	keywordKws := source.Tokenize(criteria.Keywords)

	if len(sectorKws) > 0 {
		matched := matchedTokens(combined, sectorKws)
		if len(matched) == 0 {
			return 0, []string{fmt.Sprintf("✗ Sector '%s' not found in listing", sector)}
		}
		if len(sectorKws) == 1 {
			// single-word sector always gets the full gate score
			score += 40
		} else {
			score += max(20, 55*len(matched)/len(sectorKws))
		}
		reasons = append(reasons, fmt.Sprintf("✓ Sector match (%d/%d): %s",
			len(matched), len(sectorKws), strings.Join(firstN(matched, 4), ", ")))
	} else {
		score += 30
		reasons = append(reasons, "△ No sector filter - showing all listings")
	}

	if len(keywordKws) > 0 {
		matched := matchedTokens(combined, keywordKws)
		if len(matched) > 0 {
			score += max(8, 25*len(matched)/len(keywordKws))
			reasons = append(reasons, fmt.Sprintf("✓ Keywords matched (%d/%d): %s",
				len(matched), len(keywordKws), strings.Join(firstN(matched, 4), ", ")))
		} else {
			reasons = append(reasons, "△ Keywords not found: "+strings.Join(firstN(keywordKws, 4), ", "))
		}
	}

	// Location boost. Non-matching results are hard-filtered separately;
	// this ranks city-specific results above state-level ones.
	location := strings.ToLower(strings.TrimSpace(criteria.Location))
	if location != "" {
		locText := combined + " " + strings.ToLower(co.Location)
		for _, w := range strings.Fields(location) {
			if len(w) > 2 && strings.Contains(locText, w) {
				score += 10
				loc := co.Location
				if loc == "" {
					loc = criteria.Location
				}
				reasons = append(reasons, "✓ Location: "+loc)
				break
			}
		}
	}

	if co.Employees != "" {
		if emp, ok := parseEmployees(co.Employees); ok {
			switch {
			case criteria.MinEmployees > 0 && criteria.MaxEmployees > 0 &&
				emp >= criteria.MinEmployees && emp <= criteria.MaxEmployees:
				score += 8
				reasons = append(reasons, fmt.Sprintf("✓ Employees in range (%s)", groupDigits(emp)))
			case (criteria.MinEmployees > 0 && emp < criteria.MinEmployees) ||
				(criteria.MaxEmployees > 0 && emp > criteria.MaxEmployees):
				score -= 5
				reasons = append(reasons, fmt.Sprintf("△ Employees (%s) out of range", groupDigits(emp)))
			}
		}
	}

	revStr := co.Revenue
	if revStr == "" {
		revStr = co.AskingPrice
	}
	if rev, ok := ParseMoney(revStr); ok {
		switch {
		case criteria.MinRevenue > 0 && criteria.MaxRevenue > 0:
			if rev >= criteria.MinRevenue && rev <= criteria.MaxRevenue {
				score += 8
				reasons = append(reasons, fmt.Sprintf("✓ Revenue/price in range (%s)", revStr))
			} else {
				score -= 4
				reasons = append(reasons, fmt.Sprintf("△ Revenue/price out of range (%s)", revStr))
			}
		case criteria.MinRevenue > 0 && rev >= criteria.MinRevenue:
			score += 4
			reasons = append(reasons, fmt.Sprintf("✓ Revenue ≥ min (%s)", revStr))
		case criteria.MaxRevenue > 0 && rev <= criteria.MaxRevenue:
			score += 4
			reasons = append(reasons, fmt.Sprintf("✓ Revenue within max (%s)", revStr))
		}
	}

	if co.AskingPrice != "" {
		score += 2
		reasons = append(reasons, "✓ Has asking price: "+co.AskingPrice)
	}
	if co.Revenue != "" {
		score += 2
		reasons = append(reasons, "✓ Has revenue data")
	}

	score += listingSourceBonus[co.Source]

	return clamp(score, 0, 100), reasons
}

// DiscoveryScore scores an active-business record 0-100. Zero means the
// record does not fit the criteria and should be dropped.
func DiscoveryScore(co model.SourcedCompany, criteria model.Criteria) int {
	combined := strings.ToLower(co.Name + " " + co.Description + " " + co.Sector)
	score := 0

	sectorKws := source.Tokenize(criteria.Sector)
	keywordKws := source.Tokenize(criteria.Keywords)

	if len(sectorKws) > 0 {
		matched := matchedTokens(combined, sectorKws)
		switch {
		case len(matched) > 0:
			score += max(30, 50*len(matched)/len(sectorKws))
		case trustedDiscoverySources[co.Source]:
			// the source already filtered to the sector at query level
			score += 30
		default:
			return 0
		}
	} else {
		score += 30
	}

	if len(keywordKws) > 0 {
		if matched := matchedTokens(combined, keywordKws); len(matched) > 0 {
			score += max(8, 20*len(matched)/len(keywordKws))
		}
	}

	locText := strings.ToLower(co.Location + " " + co.Name)
	for _, w := range strings.Fields(strings.ToLower(criteria.Location)) {
		if len(w) > 2 && strings.Contains(locText, w) {
			score += 10
			break
		}
	}

	if b, ok := discoverySourceBonus[co.Source]; ok {
		score += b
	} else {
		score += 5
	}

	if co.Extra != nil {
		if phone, _ := co.Extra["phone"].(string); phone != "" {
			score += 3
		}
	}
	if co.Website != "" || co.SourceURL != "" {
		score += 2
	}

	return min(100, score)
}

// ParseMoney converts strings like "$2.5M" or "$1,200,000" to dollars.
func ParseMoney(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	cleaned := strings.ToUpper(strings.NewReplacer(",", "", "$", "", " ", "").Replace(s))

	parsePrefix := func(part string) (float64, bool) {
		digits := nonNumericRe.ReplaceAllString(part, "")
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	switch {
	case strings.Contains(cleaned, "B"):
		v, ok := parsePrefix(strings.SplitN(cleaned, "B", 2)[0])
		return v * 1e9, ok
	case strings.Contains(cleaned, "M"):
		v, ok := parsePrefix(strings.SplitN(cleaned, "M", 2)[0])
		return v * 1e6, ok
	case strings.Contains(cleaned, "K"):
		v, ok := parsePrefix(strings.SplitN(cleaned, "K", 2)[0])
		return v * 1e3, ok
	default:
		v, ok := parsePrefix(cleaned)
		if !ok || v <= 0 {
			return 0, false
		}
		return v, true
	}
}

// parseEmployees reads the leading number of an employee field like
// "25-50" or "120 employees".
func parseEmployees(s string) (int, bool) {
	head := strings.SplitN(s, "-", 2)[0]
	digits := nonDigitRe.ReplaceAllString(head, "")
	if digits == "" {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return v, true
}

func matchedTokens(text string, tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if strings.Contains(text, t) {
			out = append(out, t)
		}
	}
	return out
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// groupDigits renders n with thousands separators.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
