// Package pax parses free-text passenger fields and maps passenger names to
// URL-safe slugs.
package pax

import (
	"regexp"
	"strings"
)

// balancedTail matches a string whose parentheses are closed, non-nested
// groups. A semicolon only separates names when the text after it matches.
var balancedTail = regexp.MustCompile(`^(?:[^()]*\([^()]*\))*[^()]*$`)

// Parse splits a passenger field into individual names.
//
// Entries are separated by commas. Within an entry, semicolons also separate
// names unless they fall inside a parenthetical, e.g. "Jim Justice (Gov.; WV)".
// Every name is trimmed. Empty input yields an empty slice.
func Parse(passengers string) []string {
	if passengers == "" {
		return []string{}
	}

	names := []string{}
	for _, entry := range strings.Split(passengers, ",") {
		for _, name := range splitSemicolons(strings.TrimSpace(entry)) {
			names = append(names, strings.TrimSpace(name))
		}
	}
	return names
}

func splitSemicolons(entry string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(entry); i++ {
		if entry[i] != ';' {
			continue
		}
		if balancedTail.MatchString(entry[i+1:]) {
			parts = append(parts, entry[start:i])
			start = i + 1
		}
	}
	return append(parts, entry[start:])
}

// Map returns slug -> display name for every passenger named in the field.
// When two names share a slug the last one wins.
func Map(passengers string) map[string]string {
	m := make(map[string]string)
	for _, name := range Parse(passengers) {
		m[Slugify(name)] = name
	}
	return m
}

// Has reports whether the passenger field names someone with the given slug.
func Has(passengers, slug string) bool {
	if passengers == "" {
		return false
	}
	_, ok := Map(passengers)[strings.TrimSpace(slug)]
	return ok
}
