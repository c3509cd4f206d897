package search

import (
	"sort"

	"github.com/standardbeagle/codesnip/internal/types"
)

// MatchResults scans lines for terms and assembles the snippet. A nil result
// means the file has no snippet and should not be displayed.
func (m *Matcher) MatchResults(lines []string, terms []string, highlightLines bool) []types.SnippetLine {
	return m.assemble(m.FindMatchingLines(lines, terms, highlightLines))
}

// assemble picks the densest candidates and their neighbours, at most
// MatchLines of them, and orders them by line number.
func (m *Matcher) assemble(candidates []CandidateLine) []types.SnippetLine {
	if len(candidates) == 0 {
		return nil
	}

	// First candidate seen for each index
	byIndex := make(map[int]*CandidateLine, len(candidates))
	for i := range candidates {
		if _, ok := byIndex[candidates[i].Index]; !ok {
			byIndex[candidates[i].Index] = &candidates[i]
		}
	}

	// Candidates arrive in scan order, so a stable sort keeps ties in it
	ranked := make([]*CandidateLine, len(candidates))
	for i := range candidates {
		ranked[i] = &candidates[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Matches > ranked[j].Matches
	})

	selected := make(map[int]struct{}, m.matchLines)
	snippet := make([]types.SnippetLine, 0, m.matchLines)
	add := func(c *CandidateLine) {
		if c == nil || len(snippet) >= m.matchLines {
			return
		}
		lineNumber := c.Index + 1
		if _, ok := selected[lineNumber]; ok {
			return
		}
		selected[lineNumber] = struct{}{}
		snippet = append(snippet, types.SnippetLine{
			Line:       c.Line,
			LineNumber: lineNumber,
			Matching:   c.Matching,
			Matches:    c.Matches,
		})
	}

	for _, c := range ranked {
		if len(snippet) >= m.matchLines {
			break
		}
		add(c)
		add(byIndex[c.Index-1])
		add(byIndex[c.Index+1])
	}

	sort.Slice(snippet, func(i, j int) bool {
		return snippet[i].LineNumber < snippet[j].LineNumber
	})

	for i := range snippet {
		snippet[i].AddBreak = i > 0 && snippet[i].LineNumber != snippet[i-1].LineNumber+1
	}

	return snippet
}
