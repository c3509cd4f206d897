package search

import (
	"fmt"
	"sync"
	"testing"

	"github.com/standardbeagle/codesnip/internal/config"
	"github.com/standardbeagle/codesnip/internal/diagnostics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger keeps every failure it receives
type recordingLogger struct {
	mu      sync.Mutex
	records []diagnostics.FailureRecord
}

func (r *recordingLogger) LogFailure(rec diagnostics.FailureRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recordingLogger) Records() []diagnostics.FailureRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]diagnostics.FailureRecord(nil), r.records...)
}

func newTestMatcher(t *testing.T, logger FailureLogger, opts ...func(*config.Config)) *Matcher {
	t.Helper()
	cfg := config.Default()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewMatcher(cfg, logger)
}

func indexes(candidates []CandidateLine) []int {
	out := make([]int, len(candidates))
	for i, c := range candidates {
		out[i] = c.Index
	}
	return out
}

func TestFindMatchingLines_Highlight(t *testing.T) {
	m := newTestMatcher(t, nil)

	got := m.FindMatchingLines([]string{"The quick brown Fox jumps"}, []string{"fox"}, true)
	require.Len(t, got, 1)
	assert.Equal(t, "The quick brown <strong>Fox</strong> jumps", got[0].Line)
	assert.Equal(t, "The quick brown Fox jumps", got[0].Text)
	assert.True(t, got[0].Matching)
	assert.Equal(t, 1, got[0].Matches)
	assert.Equal(t, 0, got[0].Index)
}

func TestFindMatchingLines_NoHighlightEscapes(t *testing.T) {
	m := newTestMatcher(t, nil)

	got := m.FindMatchingLines([]string{"if a < fox && b > 1 {"}, []string{"fox"}, false)
	require.Len(t, got, 1)
	assert.Equal(t, "if a &lt; fox &amp;&amp; b &gt; 1 {", got[0].Line)
	assert.True(t, got[0].Matching)
}

func TestFindMatchingLines_CountsTermsNotOccurrences(t *testing.T) {
	m := newTestMatcher(t, nil)

	got := m.FindMatchingLines([]string{"foo foo foo bar"}, []string{"foo", "bar", "baz"}, false)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Matches)
}

func TestFindMatchingLines_WhitespaceRunsCollapse(t *testing.T) {
	m := newTestMatcher(t, nil)

	got := m.FindMatchingLines([]string{"return\t\t  nil"}, []string{"return nil"}, false)
	require.Len(t, got, 1)
	assert.True(t, got[0].Matching)
	assert.Equal(t, "return\t\t  nil", got[0].Line, "rendered text keeps original spacing")
}

func TestFindMatchingLines_WildcardStrippedForCounting(t *testing.T) {
	m := newTestMatcher(t, nil)

	got := m.FindMatchingLines([]string{"x := getValue()"}, []string{"get*"}, true)
	require.Len(t, got, 1)
	assert.True(t, got[0].Matching)
	assert.Equal(t, "x := <strong>getValue()</strong>", got[0].Line)
}

func TestFindMatchingLines_Context(t *testing.T) {
	m := newTestMatcher(t, nil)
	lines := []string{"zero", "one", "match two", "three", "four", "match five", "six"}

	got := m.FindMatchingLines(lines, []string{"match"}, false)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, indexes(got))
	for _, c := range got {
		assert.Equal(t, c.Index == 2 || c.Index == 5, c.Matching, "index %d", c.Index)
		if !c.Matching {
			assert.Equal(t, 0, c.Matches)
		}
	}
}

func TestFindMatchingLines_SharedContextLineTwice(t *testing.T) {
	m := newTestMatcher(t, nil)

	got := m.FindMatchingLines([]string{"x", "filler", "x"}, []string{"x"}, false)
	assert.Equal(t, []int{0, 1, 1, 2}, indexes(got))
	assert.False(t, got[1].Matching)
	assert.False(t, got[2].Matching)
}

func TestFindMatchingLines_AdjacentMatchesNoContextBetween(t *testing.T) {
	m := newTestMatcher(t, nil)

	got := m.FindMatchingLines([]string{"a", "x", "x", "b"}, []string{"x"}, false)
	assert.Equal(t, []int{0, 1, 2, 3}, indexes(got))
	assert.True(t, got[1].Matching)
	assert.True(t, got[2].Matching)
}

func TestFindMatchingLines_MaxLineDepth(t *testing.T) {
	m := newTestMatcher(t, nil, func(cfg *config.Config) {
		cfg.Matcher.MaxLineDepth = 3
	})

	lines := []string{"a", "b", "needle", "c", "d", "needle"}
	got := m.FindMatchingLines(lines, []string{"needle"}, false)

	assert.Equal(t, []int{1, 2}, indexes(got), "nothing at or past the depth is returned")
}

func TestFindMatchingLines_Fallback(t *testing.T) {
	m := newTestMatcher(t, nil)

	lines := make([]string, 20)
	for i := range lines {
		lines[i] = fmt.Sprintf("<line %d>", i)
	}

	got := m.FindMatchingLines(lines, []string{"absent"}, true)
	require.Len(t, got, config.DefaultMatchLines)
	for i, c := range got {
		assert.Equal(t, i, c.Index)
		assert.False(t, c.Matching)
		assert.Equal(t, fmt.Sprintf("&lt;line %d&gt;", i), c.Line)
	}
}

func TestFindMatchingLines_FallbackShortFile(t *testing.T) {
	m := newTestMatcher(t, nil)

	got := m.FindMatchingLines([]string{"a", "b"}, nil, true)
	assert.Equal(t, []int{0, 1}, indexes(got))
}

func TestFindMatchingLines_FallbackBoundedByDepth(t *testing.T) {
	m := newTestMatcher(t, nil, func(cfg *config.Config) {
		cfg.Matcher.MaxLineDepth = 2
	})

	got := m.FindMatchingLines([]string{"a", "b", "c", "d"}, []string{"zzz"}, false)
	assert.Equal(t, []int{0, 1}, indexes(got))
}

func TestFindMatchingLines_EmptyFile(t *testing.T) {
	m := newTestMatcher(t, nil)

	assert.Empty(t, m.FindMatchingLines(nil, []string{"foo"}, true))
}

func TestFindMatchingLines_BooleanKeywords(t *testing.T) {
	lines := []string{"nothing here", "android phone"}
	terms := SplitTerms("foo AND bar")

	t.Run("counted by default", func(t *testing.T) {
		m := newTestMatcher(t, nil)
		got := m.FindMatchingLines(lines, terms, true)

		assert.Equal(t, []int{0, 1}, indexes(got))
		assert.True(t, got[1].Matching)
		assert.Equal(t, 1, got[1].Matches)
		assert.Equal(t, "android phone", got[1].Line, "keywords are never highlighted")
	})

	t.Run("excluded when disabled", func(t *testing.T) {
		m := newTestMatcher(t, nil, func(cfg *config.Config) {
			cfg.Matcher.CountBooleanKeywords = false
		})
		got := m.FindMatchingLines(lines, terms, true)

		assert.Equal(t, []int{0, 1}, indexes(got))
		assert.False(t, got[0].Matching)
		assert.False(t, got[1].Matching)
	})
}

func TestFindMatchingLines_HighlightFailure(t *testing.T) {
	lines := []string{"before", "İstanbul", "after"}
	terms := []string{"stan"}

	t.Run("rendered empty by default", func(t *testing.T) {
		logger := &recordingLogger{}
		m := newTestMatcher(t, logger)

		got := m.FindMatchingLines(lines, terms, true)
		require.Len(t, got, 3)
		assert.Equal(t, "before", got[0].Line)
		assert.Equal(t, "", got[1].Line)
		assert.Equal(t, "after", got[2].Line)

		records := logger.Records()
		require.Len(t, records, 1)
		assert.Equal(t, FailureCode, records[0].Code)
		assert.Equal(t, "*errors.HighlightError", records[0].Class)
		assert.Equal(t, "İstanbul", records[0].Line)
		assert.Equal(t, terms, records[0].Terms)
		assert.NotEmpty(t, records[0].Message)
	})

	t.Run("escaped when configured", func(t *testing.T) {
		logger := &recordingLogger{}
		m := newTestMatcher(t, logger, func(cfg *config.Config) {
			cfg.Matcher.EscapeOnHighlightFailure = true
		})

		got := m.FindMatchingLines(lines, terms, true)
		require.Len(t, got, 3)
		assert.Equal(t, "İstanbul", got[1].Line)
		assert.Len(t, logger.Records(), 1)
	})

	t.Run("no failure without highlighting", func(t *testing.T) {
		logger := &recordingLogger{}
		m := newTestMatcher(t, logger)

		got := m.FindMatchingLines(lines, terms, false)
		assert.Equal(t, "İstanbul", got[1].Line)
		assert.Empty(t, logger.Records())
	})
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a b", "a b"},
		{"a  b", "a b"},
		{"a\t\tb", "a b"},
		{"  lead", " lead"},
		{"trail \t", "trail "},
		{"\r\n", " "},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, collapseSpaces(tt.in), "input %q", tt.in)
	}
}
