// Package geo resolves free-text US locations into named bounding boxes for
// spatial business discovery, and derives the term sets used for
// location filtering elsewhere in the pipeline.
package geo

import (
	_ "embed"
	"sort"
	"strings"

	geom "github.com/twpayne/go-geom"
	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var regionsYAML []byte

// Area is a named bounding box.
type Area struct {
	Name   string
	Bounds *geom.Bounds
}

// South returns the minimum latitude of the area.
func (a Area) South() float64 { return a.Bounds.Min(1) }

// West returns the minimum longitude of the area.
func (a Area) West() float64 { return a.Bounds.Min(0) }

// North returns the maximum latitude of the area.
func (a Area) North() float64 { return a.Bounds.Max(1) }

// East returns the maximum longitude of the area.
func (a Area) East() float64 { return a.Bounds.Max(0) }

type regionsFile struct {
	Cities []struct {
		Name  string  `yaml:"name"`
		South float64 `yaml:"south"`
		West  float64 `yaml:"west"`
		North float64 `yaml:"north"`
		East  float64 `yaml:"east"`
	} `yaml:"cities"`
	StateCities      map[string][]string `yaml:"state_cities"`
	StateAbbrevs     map[string]string   `yaml:"state_abbrevs"`
	CityStates       map[string]string   `yaml:"city_states"`
	NationwideSample []string            `yaml:"nationwide_sample"`
	CraigslistCities []string            `yaml:"craigslist_cities"`
	CraigslistSlugs  map[string]string   `yaml:"craigslist_slug_map"`
	CraigslistNames  map[string]string   `yaml:"craigslist_display"`
}

var regions regionsFile

// cityAreas preserves the table order from regions.yaml; the first four
// entries double as the unresolvable-location fallback.
var cityAreas []Area

// stateToAbbrev is the inverse of the abbreviation table.
var stateToAbbrev map[string]string

// stateNamesByLength orders state names longest first so "west virginia"
// wins over "virginia" during substring scans.
var stateNamesByLength []string

func init() {
	if err := yaml.Unmarshal(regionsYAML, &regions); err != nil {
		panic("geo: parse regions.yaml: " + err.Error())
	}

	cityAreas = make([]Area, 0, len(regions.Cities))
	for _, c := range regions.Cities {
		b := geom.NewBounds(geom.XY).Set(c.West, c.South, c.East, c.North)
		cityAreas = append(cityAreas, Area{Name: c.Name, Bounds: b})
	}

	stateToAbbrev = make(map[string]string, len(regions.StateAbbrevs))
	for abbr, state := range regions.StateAbbrevs {
		stateToAbbrev[state] = abbr
		stateNamesByLength = append(stateNamesByLength, state)
	}
	sort.Slice(stateNamesByLength, func(i, j int) bool {
		a, b := stateNamesByLength[i], stateNamesByLength[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
}

// Cities returns all known city areas in table order.
func Cities() []Area {
	return cityAreas
}

// NationwideSample returns the regional sample of cities used when no
// location is given.
func NationwideSample() []Area {
	names := make(map[string]bool, len(regions.NationwideSample))
	for _, n := range regions.NationwideSample {
		names[n] = true
	}
	var out []Area
	for _, a := range cityAreas {
		if names[a.Name] {
			out = append(out, a)
		}
	}
	return out
}

// ResolveCities maps a location string to known city areas.
//
// Priority order:
//  1. Exact state name or abbreviation match, all cities in that state.
//  2. City name match: substring in either direction, or any location word
//     longer than three characters appearing in a city name.
//
// Returns nil when nothing matches; callers fall back to geocoding.
func ResolveCities(location string) []Area {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return nil
	}

	stateName := loc
	if full, ok := regions.StateAbbrevs[loc]; ok {
		stateName = full
	}
	if cities, ok := regions.StateCities[stateName]; ok {
		wanted := make(map[string]bool, len(cities))
		for _, c := range cities {
			wanted[c] = true
		}
		var out []Area
		for _, a := range cityAreas {
			if wanted[a.Name] {
				out = append(out, a)
			}
		}
		return out
	}

	words := strings.Fields(loc)
	var out []Area
	for _, a := range cityAreas {
		cityLower := strings.ToLower(a.Name)
		match := strings.Contains(loc, cityLower) || strings.Contains(cityLower, loc)
		if !match {
			for _, w := range words {
				if len(w) > 3 && strings.Contains(cityLower, w) {
					match = true
					break
				}
			}
		}
		if match {
			out = append(out, a)
		}
	}
	return out
}

// FallbackCities returns the default areas for unresolvable locations,
// the four largest metros.
func FallbackCities() []Area {
	return cityAreas[:4]
}

// StateCode extracts a two-letter state code from a location string by
// scanning for state names, then for abbreviations as whole words so that
// "Austin" never matches IN. Returns "" when none match.
func StateCode(location string) string {
	loc := strings.ToLower(location)
	if loc == "" {
		return ""
	}
	for _, name := range stateNamesByLength {
		if strings.Contains(loc, name) {
			return strings.ToUpper(stateToAbbrev[name])
		}
	}
	for _, w := range strings.FieldsFunc(loc, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.'
	}) {
		if _, ok := regions.StateAbbrevs[w]; ok {
			return strings.ToUpper(w)
		}
	}
	return ""
}
