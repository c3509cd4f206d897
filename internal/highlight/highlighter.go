// Package highlight wraps query terms found in a line of source code with
// emphasis markers, escaping everything else for HTML output.
package highlight

import (
	"strings"
	"unicode/utf8"

	"github.com/standardbeagle/codesnip/internal/errors"
)

// Emphasis markers placed around matched spans
const (
	EmphasisOpen  = "<strong>"
	EmphasisClose = "</strong>"
)

// htmlEscaper covers the ASCII entities of HTML 4; everything else passes through.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape returns s with HTML special characters replaced by entities
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// term is a highlight term prepared once per query
type term struct {
	text     string // lowercased term
	length   int    // characters in text
	needle   string // what is looked up in the lowercased token
	wildcard bool   // highlight from the match point to the end of the token
}

// Highlighter marks terms inside lines. It is immutable once built and safe
// for concurrent use.
//
// Terms are expected longest first; on equal length the earlier term wins.
// Boolean keywords must already be removed by the caller.
type Highlighter struct {
	terms []term
}

// New prepares terms for highlighting
func New(terms []string) *Highlighter {
	h := &Highlighter{terms: make([]term, 0, len(terms))}
	for _, t := range terms {
		t = strings.ToLower(t)
		// A wildcard may be followed by a stray ")" from a call expression, e.g. "foo*)"
		trimmed := strings.ReplaceAll(t, ")", "")
		if strings.HasSuffix(trimmed, "*") {
			h.terms = append(h.terms, term{
				text:     t,
				length:   utf8.RuneCountInString(t),
				needle:   strings.ReplaceAll(trimmed, "*", ""),
				wildcard: true,
			})
			continue
		}
		if t == "" {
			continue
		}
		h.terms = append(h.terms, term{text: t, length: utf8.RuneCountInString(t), needle: t})
	}
	return h
}

// Line highlights every space separated token of line.
//
// Runs of spaces collapse to a single space in the output. A non-nil error
// wraps errors.ErrHighlightBounds and means no output could be produced.
func (h *Highlighter) Line(line string) (string, error) {
	tokens := strings.Split(line, " ")
	out := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if token == "" {
			continue
		}
		rendered, err := h.token(token)
		if err != nil {
			return "", err
		}
		out = append(out, rendered)
	}

	return strings.Join(out, " "), nil
}

// Line is a convenience for New(terms).Line(line)
func Line(line string, terms []string) (string, error) {
	return New(terms).Line(line)
}

func (h *Highlighter) token(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	lower := strings.ToLower(token)
	best := h.longestContained(lower)
	if best == nil {
		return Escape(token), nil
	}

	loc := strings.Index(lower, best.needle)

	if best.wildcard {
		if !boundary(token, loc) || !strings.HasPrefix(strings.ToLower(token[loc:]), best.needle) {
			return "", errors.NewHighlightError(token, best.text, loc)
		}
		return Escape(token[:loc]) + EmphasisOpen + Escape(token[loc:]) + EmphasisClose, nil
	}

	end := loc + len(best.needle)
	if !boundary(token, loc) || !boundary(token, end) || strings.ToLower(token[loc:end]) != best.needle {
		return "", errors.NewHighlightError(token, best.text, loc)
	}

	rest, err := h.token(token[end:])
	if err != nil {
		return "", err
	}

	return Escape(token[:loc]) + EmphasisOpen + Escape(token[loc:end]) + EmphasisClose + rest, nil
}

// longestContained returns the longest term found in the lowercased token
func (h *Highlighter) longestContained(lower string) *term {
	var best *term
	for i := range h.terms {
		t := &h.terms[i]
		if best != nil && t.length <= best.length {
			continue
		}
		if strings.Contains(lower, t.needle) {
			best = t
		}
	}
	return best
}

// boundary reports whether i is a valid cut point in s
func boundary(s string, i int) bool {
	if i < 0 || i > len(s) {
		return false
	}
	return i == len(s) || utf8.RuneStart(s[i])
}
