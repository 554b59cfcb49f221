// Package mailver discovers and verifies email addresses for a named person
// at a company domain. It generates common address patterns, checks them
// against the domain's mail server via SMTP, and scrapes contact pages as a
// cheaper first pass.
package mailver

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	namePrefixes = map[string]bool{
		"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true,
	}
	nameSuffixes = map[string]bool{
		"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
		"md": true, "m.d": true, "phd": true, "ph.d": true,
		"esq": true, "cpa": true, "dds": true, "d.d.s": true,
		"do": true, "d.o": true,
	}
	nonAlpha = regexp.MustCompile(`[^a-z]`)
)

// CleanNameParts extracts lowercase first and last name from a full name,
// stripping honorifics and credential suffixes. Multi-word last names keep
// only the final word.
func CleanNameParts(fullName string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(fullName))

	for len(parts) > 0 && namePrefixes[strings.TrimRight(strings.ToLower(parts[0]), ".,")] {
		parts = parts[1:]
	}
	for len(parts) > 0 && nameSuffixes[strings.TrimRight(strings.ToLower(parts[len(parts)-1]), ".,")] {
		parts = parts[:len(parts)-1]
	}

	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return strings.ToLower(parts[0]), ""
	}

	first = nonAlpha.ReplaceAllString(strings.ToLower(parts[0]), "")
	last = nonAlpha.ReplaceAllString(strings.ToLower(parts[len(parts)-1]), "")
	return first, last
}

// Candidates generates common email patterns for a person at a domain,
// ordered by how often each pattern occurs in the wild. Returns nil when
// the name cannot be split into first and last.
func Candidates(fullName, domain string) []string {
	first, last := CleanNameParts(fullName)
	if first == "" || last == "" || domain == "" {
		return nil
	}

	fi := first[:1]
	return []string{
		fmt.Sprintf("%s.%s@%s", first, last, domain),
		fmt.Sprintf("%s@%s", first, domain),
		fmt.Sprintf("%s%s@%s", fi, last, domain),
		fmt.Sprintf("%s%s@%s", first, last, domain),
		fmt.Sprintf("%s_%s@%s", first, last, domain),
		fmt.Sprintf("%s.%s@%s", fi, last, domain),
		fmt.Sprintf("%s@%s", last, domain),
		fmt.Sprintf("%s.%s@%s", last, first, domain),
	}
}
