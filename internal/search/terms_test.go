package search

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "empty",
			query: "",
			want:  []string{},
		},
		{
			name:  "whitespace only",
			query: " \t ",
			want:  []string{},
		},
		{
			name:  "single word is lowercased",
			query: "Fox",
			want:  []string{"fox"},
		},
		{
			name:  "call expression",
			query: "foo.bar(1)",
			want:  []string{"foo.bar(1)", "foo.bar", "bar(1)", "foo", "1)"},
		},
		{
			name:  "boolean keywords kept verbatim",
			query: "foo AND bar or baz",
			want:  []string{"foo", "AND", "bar", "baz", "or"},
		},
		{
			name:  "generic type",
			query: "List<String>",
			want:  []string{"list<string>", "list<string", "string>", "list"},
		},
		{
			name:  "duplicates removed",
			query: "foo foo FOO",
			want:  []string{"foo"},
		},
		{
			name:  "wildcard preserved",
			query: "get*",
			want:  []string{"get*"},
		},
		{
			name:  "dash",
			query: "max-width",
			want:  []string{"max-width", "width", "max"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTerms(tt.query))
		})
	}
}

func TestIsBooleanKeyword(t *testing.T) {
	assert.True(t, IsBooleanKeyword("AND"))
	assert.True(t, IsBooleanKeyword("OR"))
	assert.True(t, IsBooleanKeyword("NOT"))
	assert.False(t, IsBooleanKeyword("and"))
	assert.False(t, IsBooleanKeyword("NOTE"))
}

// TestProperty_SplitTerms checks that terms are unique and never grow in length
func TestProperty_SplitTerms(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcAB.(-<>)* ANDORNOTé")

	for i := 0; i < 500; i++ {
		var b strings.Builder
		n := rng.Intn(40)
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		query := b.String()
		terms := SplitTerms(query)

		seen := make(map[string]bool, len(terms))
		for k, term := range terms {
			assert.NotEmpty(t, term, "query %q", query)
			assert.False(t, seen[term], "query %q produced %q twice", query, term)
			seen[term] = true
			if k > 0 {
				assert.GreaterOrEqual(t, utf8.RuneCountInString(terms[k-1]), utf8.RuneCountInString(term),
					"query %q not ordered by length at %d", query, k)
			}
		}

		for _, field := range strings.Fields(query) {
			if !IsBooleanKeyword(field) {
				field = strings.ToLower(field)
			}
			assert.True(t, seen[field], "query %q is missing whole token %q", query, field)
		}
	}
}
