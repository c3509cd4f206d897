package highlight

import (
	"strings"
	"sync"
	"testing"

	"github.com/standardbeagle/codesnip/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "a &lt; b &amp;&amp; c &gt; d", Escape("a < b && c > d"))
	assert.Equal(t, "&quot;quoted&quot;", Escape(`"quoted"`))
	assert.Equal(t, "it's", Escape("it's"))
	assert.Equal(t, "", Escape(""))
}

func TestLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		terms    []string
		expected string
	}{
		{
			name:     "case preserved",
			line:     "The quick brown Fox jumps",
			terms:    []string{"fox"},
			expected: "The quick brown <strong>Fox</strong> jumps",
		},
		{
			name:     "no terms escapes only",
			line:     "if (a < b && c > d) {",
			terms:    nil,
			expected: "if (a &lt; b &amp;&amp; c &gt; d) {",
		},
		{
			name:     "longest term wins",
			line:     "x = foo.bar(1);",
			terms:    []string{"foo.bar(1)", "bar(1)", "foo"},
			expected: "x = <strong>foo.bar(1)</strong>;",
		},
		{
			name:     "two terms inside one token",
			line:     "fooXbar",
			terms:    []string{"foo", "bar"},
			expected: "<strong>foo</strong>X<strong>bar</strong>",
		},
		{
			name:     "repeated term inside one token",
			line:     "foofoo",
			terms:    []string{"foo"},
			expected: "<strong>foo</strong><strong>foo</strong>",
		},
		{
			name:     "wildcard highlights to token end",
			line:     "x.getUserName() here",
			terms:    []string{"getuser*"},
			expected: "x.<strong>getUserName()</strong> here",
		},
		{
			name:     "wildcard with trailing paren",
			line:     "getValue(x)",
			terms:    []string{"get*)"},
			expected: "<strong>getValue(x)</strong>",
		},
		{
			name:     "match is escaped",
			line:     "<div>",
			terms:    []string{"div"},
			expected: "&lt;<strong>div</strong>&gt;",
		},
		{
			name:     "quotes around match",
			line:     `say "hi"`,
			terms:    []string{"hi"},
			expected: `say &quot;<strong>hi</strong>&quot;`,
		},
		{
			name:     "uppercase term is lowered",
			line:     "HashMap map",
			terms:    []string{"MAP"},
			expected: "Hash<strong>Map</strong> <strong>map</strong>",
		},
		{
			name:     "spaces collapse",
			line:     "a    b  ",
			terms:    nil,
			expected: "a b",
		},
		{
			name:     "empty line",
			line:     "",
			terms:    []string{"foo"},
			expected: "",
		},
		{
			name:     "empty term ignored",
			line:     "abc",
			terms:    []string{""},
			expected: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Line(tt.line, tt.terms)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLine_BoundsFailure(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		terms []string
	}{
		// Lowercasing İ (2 bytes) yields i (1 byte)
		{"dotted capital I", "İstanbul", []string{"stan"}},
		// Kelvin sign (3 bytes) lowers to k (1 byte)
		{"kelvin sign", "\u212Aey", []string{"ey"}},
		{"wildcard after shrink", "İİabc", []string{"ab*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Line(tt.line, tt.terms)
			require.Error(t, err)
			assert.True(t, errors.IsHighlightBounds(err))
			assert.Empty(t, got)
		})
	}
}

func TestLine_NoCorruptedOutput(t *testing.T) {
	// Every literal character survives highlighting once markers are removed
	lines := []string{
		"func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {",
		"List<String> test = new ArrayList<>();",
		`fmt.Printf("%s & %d\n", name, count)`,
	}
	terms := []string{"handlesearch", "request", "list", "string", "printf", "name"}

	for _, line := range lines {
		got, err := Line(line, terms)
		require.NoError(t, err)

		stripped := strings.ReplaceAll(strings.ReplaceAll(got, EmphasisOpen, ""), EmphasisClose, "")
		assert.Equal(t, Escape(strings.Join(strings.Fields(line), " ")), stripped)
	}
}

func TestHighlighter_ConcurrentUse(t *testing.T) {
	h := New([]string{"foo", "bar*"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := h.Line("foo barbaz")
				assert.NoError(t, err)
				assert.Equal(t, "<strong>foo</strong> <strong>barbaz</strong>", got)
			}
		}()
	}
	wg.Wait()
}
