package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// IsBooleanKeyword reports whether term is AND, OR or NOT
func IsBooleanKeyword(term string) bool {
	switch term {
	case KeywordAnd, KeywordOr, KeywordNot:
		return true
	default:
		return false
	}
}

// SplitTerms normalizes a raw query into match terms.
//
// Tokens are lowercased unless they are boolean keywords. Each token is split
// independently on every separator and the fragments are kept along with the
// token itself, so "foo.bar(1)" also yields "foo", "bar(1)", "foo.bar" and "1)".
// The result has no duplicates and is ordered longest first by character
// count; terms of equal length keep the order they were first seen in.
func SplitTerms(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(fields)*4)
	terms := make([]string, 0, len(fields)*4)
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	for _, token := range fields {
		if !IsBooleanKeyword(token) {
			token = strings.ToLower(token)
		}
		for _, sep := range termSeparators {
			for _, fragment := range strings.Split(token, sep) {
				add(fragment)
			}
		}
		add(token)
	}

	// Longer terms must be tried first when highlighting
	sort.SliceStable(terms, func(i, j int) bool {
		return utf8.RuneCountInString(terms[i]) > utf8.RuneCountInString(terms[j])
	})

	return terms
}
