package geo

import "strings"

// FilterTerms builds the set of terms a result's location must contain when
// a location filter is active.
//
// For a city like "houston" the set is {"houston", "tx", "texas"}; for a
// state like "california" it is {"california", "ca"}; for an abbreviation
// like "tx" it is {"tx", "texas"}. An empty location yields an empty set,
// meaning no filter.
func FilterTerms(location string) map[string]struct{} {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return nil
	}

	terms := map[string]struct{}{loc: {}}
	for _, w := range strings.Fields(loc) {
		if len(w) > 2 {
			terms[w] = struct{}{}
		}
	}

	if state, ok := regions.CityStates[loc]; ok {
		terms[state] = struct{}{}
		if abbr, ok := stateToAbbrev[state]; ok {
			terms[abbr] = struct{}{}
		}
	}
	if abbr, ok := stateToAbbrev[loc]; ok {
		terms[abbr] = struct{}{}
	}
	if state, ok := regions.StateAbbrevs[loc]; ok {
		terms[state] = struct{}{}
	}

	return terms
}

// MatchesLocation reports whether a result location passes the filter.
// Results with no location data are excluded while a filter is active,
// since a match cannot be confirmed.
func MatchesLocation(resultLocation string, terms map[string]struct{}) bool {
	if len(terms) == 0 {
		return true
	}
	loc := strings.ToLower(strings.TrimSpace(resultLocation))
	if loc == "" {
		return false
	}
	for term := range terms {
		if strings.Contains(loc, term) {
			return true
		}
	}
	return false
}
