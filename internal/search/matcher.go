// Package search selects and highlights the lines shown as the excerpt of a
// search result.
package search

import (
	"context"

	"github.com/standardbeagle/codesnip/internal/cache"
	"github.com/standardbeagle/codesnip/internal/config"
	"github.com/standardbeagle/codesnip/internal/diagnostics"
	"github.com/standardbeagle/codesnip/internal/errors"
	"github.com/standardbeagle/codesnip/internal/types"

	"golang.org/x/sync/errgroup"
)

// FailureLogger receives highlight failures. It must be safe for concurrent
// use and must not block for long.
type FailureLogger interface {
	LogFailure(diagnostics.FailureRecord)
}

// Matcher builds snippets for search results. Its tunables are fixed at
// construction, so a single Matcher can be shared by any number of
// goroutines.
type Matcher struct {
	matchLines      int
	maxLineDepth    int
	maxGoroutines   int
	countKeywords   bool
	escapeOnFailure bool

	logger FailureLogger
	terms  *cache.TermCache
}

// NewMatcher creates a matcher from cfg. A nil cfg uses the defaults and a
// nil logger discards failures. Normalized queries are cached when
// Performance.TermCacheSize is positive.
func NewMatcher(cfg *config.Config, logger FailureLogger) *Matcher {
	if cfg == nil {
		cfg = config.Default()
	}
	return NewMatcherWithCache(cfg, logger, cache.NewTermCache(cfg.Performance.TermCacheSize))
}

// NewMatcherWithCache creates a matcher sharing an existing term cache. A nil
// cache disables caching.
func NewMatcherWithCache(cfg *config.Config, logger FailureLogger, termCache *cache.TermCache) *Matcher {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = diagnostics.NoOp
	}

	m := &Matcher{
		matchLines:      cfg.Matcher.MatchLines,
		maxLineDepth:    cfg.Matcher.MaxLineDepth,
		maxGoroutines:   cfg.Performance.MaxGoroutines,
		countKeywords:   cfg.Matcher.CountBooleanKeywords,
		escapeOnFailure: cfg.Matcher.EscapeOnHighlightFailure,
		logger:          logger,
		terms:           termCache,
	}

	// Configs that skipped validation still get usable bounds
	if m.matchLines <= 0 {
		m.matchLines = config.DefaultMatchLines
	}
	if m.maxLineDepth <= 0 {
		m.maxLineDepth = config.DefaultMaxLineDepth
	}
	if m.maxGoroutines <= 0 {
		m.maxGoroutines = 1
	}

	return m
}

// MatchLines returns the snippet size cap
func (m *Matcher) MatchLines() int { return m.matchLines }

// MaxLineDepth returns the number of lines scanned per file
func (m *Matcher) MaxLineDepth() int { return m.maxLineDepth }

// CacheStats returns the term cache counters
func (m *Matcher) CacheStats() cache.Stats { return m.terms.Stats() }

// Terms normalizes query, using the term cache when one is configured
func (m *Matcher) Terms(query string) []string {
	if terms, ok := m.terms.Get(query); ok {
		return terms
	}
	terms := SplitTerms(query)
	m.terms.Put(query, terms)
	return terms
}

// FormatResults attaches a snippet to every result and returns, in input
// order, the results that produced one. Results are modified in place; the
// caller must not format the same result from two goroutines at once.
func (m *Matcher) FormatResults(results []*types.FileResult, query string, highlightLines bool) []*types.FileResult {
	terms := m.Terms(query)

	formatted := make([]*types.FileResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		if snippet := m.MatchResults(r.Lines, terms, highlightLines); snippet != nil {
			r.SetSnippet(snippet)
			formatted = append(formatted, r)
		}
	}

	return formatted
}

// FormatResultsConcurrent is FormatResults spread over up to MaxGoroutines
// workers. The output is identical to FormatResults. When ctx is cancelled
// no result is modified and the error wraps ctx.Err().
func (m *Matcher) FormatResultsConcurrent(ctx context.Context, results []*types.FileResult, query string, highlightLines bool) ([]*types.FileResult, error) {
	terms := m.Terms(query)
	snippets := make([][]types.SnippetLine, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxGoroutines)

	for i, r := range results {
		if r == nil {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		i, lines := i, r.Lines
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snippets[i] = m.MatchResults(lines, terms, highlightLines)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.NewSearchError(query, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewSearchError(query, err)
	}

	formatted := make([]*types.FileResult, 0, len(results))
	for i, r := range results {
		if snippets[i] != nil {
			r.SetSnippet(snippets[i])
			formatted = append(formatted, r)
		}
	}

	return formatted, nil
}
