package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/standardbeagle/codesnip/internal/diagnostics"
	"github.com/standardbeagle/codesnip/internal/highlight"
)

// CandidateLine is a line considered for a snippet. Candidates live for one
// scan and are never shared between files.
type CandidateLine struct {
	Text     string // original line
	Line     string // rendered line: escaped, and highlighted when matching
	Index    int    // 0-based position in the file
	Matches  int    // distinct terms found, 0 for context lines
	Matching bool
}

// FindMatchingLines scans at most MaxLineDepth lines for the terms and
// returns the matching lines with their direct neighbours as context.
//
// Candidates are ordered by index. A context line shared by two matches is
// returned twice, next to itself. When nothing matches, the first MatchLines
// lines of the file are returned as context so the caller still has an
// excerpt to show. No line at or past MaxLineDepth is ever returned.
func (m *Matcher) FindMatchingLines(lines []string, terms []string, highlightLines bool) []CandidateLine {
	searchThrough := len(lines)
	if searchThrough > m.maxLineDepth {
		searchThrough = m.maxLineDepth
	}

	needles := m.countedNeedles(terms)
	matches := make([]CandidateLine, 0, 16)

	for i := 0; i < searchThrough; i++ {
		cmp := strings.ToLower(collapseSpaces(lines[i]))

		matching := 0
		for _, needle := range needles {
			if strings.Contains(cmp, needle) {
				matching++
			}
		}

		if matching != 0 {
			matches = append(matches, CandidateLine{
				Text:     lines[i],
				Index:    i,
				Matches:  matching,
				Matching: true,
			})
		}
	}

	var candidates []CandidateLine
	if len(matches) == 0 {
		n := searchThrough
		if n > m.matchLines {
			n = m.matchLines
		}
		candidates = make([]CandidateLine, 0, n)
		for i := 0; i < n; i++ {
			candidates = append(candidates, CandidateLine{Text: lines[i], Index: i})
		}
	} else {
		candidates = withContext(lines, matches, searchThrough)
	}

	m.render(candidates, terms, highlightLines)
	return candidates
}

// countedNeedles returns the lowercased terms, without "*", that take part in
// the per-line match count
func (m *Matcher) countedNeedles(terms []string) []string {
	needles := make([]string, 0, len(terms))
	for _, t := range terms {
		if !m.countKeywords && IsBooleanKeyword(t) {
			continue
		}
		needles = append(needles, strings.ToLower(strings.ReplaceAll(t, "*", "")))
	}
	return needles
}

// withContext interleaves the neighbours of each match, keeping index order.
// matches must be sorted by index.
func withContext(lines []string, matches []CandidateLine, limit int) []CandidateLine {
	out := make([]CandidateLine, 0, len(matches)*3)

	for k, match := range matches {
		prev := match.Index - 1
		if prev >= 0 && (k == 0 || matches[k-1].Index != prev) {
			out = append(out, CandidateLine{Text: lines[prev], Index: prev})
		}

		out = append(out, match)

		next := match.Index + 1
		if next < limit && (k == len(matches)-1 || matches[k+1].Index != next) {
			out = append(out, CandidateLine{Text: lines[next], Index: next})
		}
	}

	return out
}

// render fills in the display text of every candidate. A line that cannot be
// highlighted is logged and rendered empty, or escaped when configured.
func (m *Matcher) render(candidates []CandidateLine, terms []string, highlightLines bool) {
	var h *highlight.Highlighter

	for i := range candidates {
		c := &candidates[i]
		if !highlightLines || !c.Matching {
			c.Line = highlight.Escape(c.Text)
			continue
		}

		if h == nil {
			h = highlight.New(highlightTerms(terms))
		}

		line, err := h.Line(c.Text)
		if err != nil {
			m.logger.LogFailure(diagnostics.FailureRecord{
				Code:    FailureCode,
				Class:   fmt.Sprintf("%T", err),
				Message: err.Error(),
				Line:    c.Text,
				Terms:   terms,
				Time:    time.Now(),
			})
			if m.escapeOnFailure {
				line = highlight.Escape(c.Text)
			}
		}
		c.Line = line
	}
}

// highlightTerms drops the boolean keywords, which are never highlighted
func highlightTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !IsBooleanKeyword(t) {
			out = append(out, t)
		}
	}
	return out
}

// collapseSpaces replaces every run of ASCII whitespace with a single space
func collapseSpaces(s string) string {
	if !needsCollapse(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		b.WriteByte(s[i])
		inSpace = false
	}
	return b.String()
}

func needsCollapse(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			if i+1 < len(s) && isSpace(s[i+1]) {
				return true
			}
			continue
		}
		if isSpace(c) {
			return true
		}
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
