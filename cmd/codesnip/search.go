package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/standardbeagle/codesnip/internal/diagnostics"
	"github.com/standardbeagle/codesnip/internal/search"
	"github.com/standardbeagle/codesnip/internal/source"
	"github.com/standardbeagle/codesnip/internal/types"
	"github.com/standardbeagle/codesnip/pkg/pathutil"

	"github.com/urfave/cli/v2"
)

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: codesnip search <query> [file|glob...]")
	}

	query := c.Args().First()
	patterns := c.Args().Tail()
	highlight := !c.Bool("no-highlight")

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	logger := diagnostics.New(cfg.Logging)
	defer logger.Close()
	for _, fallback := range cfg.Fallbacks {
		logger.Printf("config: %v", fallback)
	}

	start := time.Now()

	loader := source.NewLoader(cfg)
	batch, err := loader.DiscoverAndLoad(c.Context, patterns)
	if err != nil {
		return err
	}
	for _, failed := range batch.Failed {
		logger.Errorf("%v", failed)
	}

	results := pathutil.ToRelativeResults(batch.Results, loader.Root())

	matcher := search.NewMatcher(cfg, logger)
	formatted, err := matcher.FormatResultsConcurrent(c.Context, results, query, highlight)
	if err != nil {
		return err
	}
	if !c.Bool("all") {
		formatted = withMatches(formatted)
	}

	elapsed := time.Since(start)
	w := c.App.Writer

	if c.Bool("json") {
		output := map[string]interface{}{
			"query":   query,
			"terms":   matcher.Terms(query),
			"time_ms": float64(elapsed.Microseconds()) / 1000.0,
			"files":   len(results),
			"count":   len(formatted),
			"results": formatted,
		}
		if len(batch.Skipped) > 0 {
			skipped := make([]string, len(batch.Skipped))
			for i, p := range batch.Skipped {
				skipped[i] = pathutil.ToRelative(p, loader.Root())
			}
			output["skipped"] = skipped
		}
		return json.NewEncoder(w).Encode(output)
	}

	fmt.Fprintf(w, "Found %d of %d files in %.1fms\n\n", len(formatted), len(results), float64(elapsed.Microseconds())/1000.0)
	for _, r := range formatted {
		printSnippet(w, r)
	}
	return nil
}

// withMatches drops results whose snippet is only the leading-lines fallback
func withMatches(results []*types.FileResult) []*types.FileResult {
	kept := results[:0]
	for _, r := range results {
		for _, line := range r.Snippet {
			if line.Matching {
				kept = append(kept, r)
				break
			}
		}
	}
	return kept
}

func printSnippet(w io.Writer, r *types.FileResult) {
	fmt.Fprintln(w, r.Path)
	for _, line := range r.Snippet {
		if line.AddBreak {
			fmt.Fprintln(w, "    ...")
		}
		marker := " "
		if line.Matching {
			marker = ">"
		}
		fmt.Fprintf(w, "  %s %4d | %s\n", marker, line.LineNumber, line.Line)
	}
	fmt.Fprintln(w)
}

func termsCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: codesnip terms <query>")
	}
	query := strings.Join(c.Args().Slice(), " ")
	terms := search.SplitTerms(query)

	if c.Bool("json") {
		return json.NewEncoder(c.App.Writer).Encode(map[string]interface{}{
			"query": query,
			"terms": terms,
		})
	}

	for _, term := range terms {
		fmt.Fprintln(c.App.Writer, term)
	}
	return nil
}
