package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/codesnip/internal/config"
	"github.com/standardbeagle/codesnip/internal/version"

	"github.com/urfave/cli/v2"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if configPath := c.String("config"); configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		root := c.String("root")
		if root == "" {
			root = "."
		}
		cfg, err = config.Load(root)
		if err != nil {
			return nil, fmt.Errorf("failed to load config for %s: %w", root, err)
		}
	}

	if rootFlag := c.String("root"); rootFlag != "" {
		// Convert to absolute path to ensure consistent path handling
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if c.IsSet("match-lines") {
		cfg.Matcher.MatchLines = c.Int("match-lines")
	}
	if c.IsSet("max-line-depth") {
		cfg.Matcher.MaxLineDepth = c.Int("max-line-depth")
	}

	// Flags go through the same checks as file values
	config.NewValidator().ValidateAndSetDefaults(cfg)
	return cfg, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "codesnip",
		Usage:                  "Relevant, highlighted excerpts for code search results",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml); default is the project and global config",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only consider files matching glob patterns (e.g., --include '**/*.go')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/testdata/**')",
			},
			&cli.IntFlag{
				Name:    "match-lines",
				Aliases: []string{"m"},
				Usage:   "Max lines per snippet (overrides config)",
			},
			&cli.IntFlag{
				Name:  "max-line-depth",
				Usage: "Max lines scanned per file (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Show the best matching lines of each file for a query",
				ArgsUsage: "QUERY [FILE|GLOB...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-highlight",
						Usage: "Escape lines without emphasizing matched terms",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Also show files without a matching line",
					},
				},
				Action: searchCommand,
			},
			{
				Name:      "terms",
				Aliases:   []string{"t"},
				Usage:     "Print the normalized terms of a query",
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: termsCommand,
			},
			{
				Name:  "mcp",
				Usage: "Serve the snippet tools over MCP stdio",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch-config",
						Usage: "Reload the project config file when it changes",
					},
				},
				Action: mcpCommand,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
