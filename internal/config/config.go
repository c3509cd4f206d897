package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Tunable defaults. Malformed or out of range values fall back to these.
const (
	DefaultMatchLines    = 15    // Max lines in an assembled snippet
	DefaultMaxLineDepth  = 10000 // Max lines scanned per file
	DefaultMaxFileSize   = 10 * 1024 * 1024
	DefaultTermCacheSize = 1024

	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Config file names looked up in the global and project directories
const (
	KDLFileName  = ".codesnip.kdl"
	TOMLFileName = ".codesnip.toml"
)

type Config struct {
	Version     int
	Project     Project
	Matcher     Matcher
	Source      Source
	Performance Performance
	Logging     Logging
	Include     []string
	Exclude     []string

	// Fallbacks lists every value that was rejected and replaced by its
	// default while loading. These are informational and never fatal.
	Fallbacks []error
}

type Project struct {
	Root string
	Name string
}

// Matcher holds the snippet engine tunables. They are read once when a
// matcher is built and never change for its lifetime.
type Matcher struct {
	MatchLines   int // Max lines in an assembled snippet
	MaxLineDepth int // Max lines scanned per file

	// CountBooleanKeywords keeps AND/OR/NOT in the per-line match count.
	// They are never highlighted either way.
	CountBooleanKeywords bool

	// EscapeOnHighlightFailure renders a line that failed to highlight as its
	// escaped text instead of an empty string.
	EscapeOnHighlightFailure bool
}

type Source struct {
	MaxFileSize      int64 // Files larger than this are skipped
	FollowSymlinks   bool
	RespectGitignore bool // Add the project .gitignore to the exclusions
}

type Performance struct {
	MaxGoroutines int // Workers used for concurrent formatting and loading
	TermCacheSize int // Normalized queries kept in memory, 0 disables the cache
}

type Logging struct {
	File       string // Empty logs to stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Prefix     string
}

// Default returns the built-in configuration rooted at the working directory
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "." // Fallback to relative if we can't get absolute
	}

	return &Config{
		Version: 1,
		Project: Project{
			Root: cwd,
		},
		Matcher: Matcher{
			MatchLines:               DefaultMatchLines,
			MaxLineDepth:             DefaultMaxLineDepth,
			CountBooleanKeywords:     true,
			EscapeOnHighlightFailure: false,
		},
		Source: Source{
			MaxFileSize:      DefaultMaxFileSize,
			FollowSymlinks:   false,
			RespectGitignore: true,
		},
		Performance: Performance{
			MaxGoroutines: runtime.NumCPU(),
			TermCacheSize: DefaultTermCacheSize,
		},
		Logging: Logging{
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
			Compress:   true,
			Prefix:     "[codesnip] ",
		},
		Include: []string{},
		Exclude: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/vendor/**",
			"**/*.min.js",
			"**/*.min.css",
		},
	}
}

// Load builds the configuration for rootDir. The global config in the home
// directory is applied first, then the project config in rootDir on top of
// it. Project exclusions are added to the global ones rather than replacing
// them. Missing files are not an error. A global file that cannot be read is
// skipped and recorded as a fallback; a broken project file is an error.
func Load(rootDir string) (*Config, error) {
	cfg := Default()
	if rootDir != "" {
		if abs, err := filepath.Abs(rootDir); err == nil {
			cfg.Project.Root = abs
		} else {
			cfg.Project.Root = rootDir
		}
	}

	root := cfg.Project.Root
	if homeDir, err := os.UserHomeDir(); err == nil && filepath.Clean(homeDir) != filepath.Clean(root) {
		global := Default()
		global.Project.Root = root
		if _, err := applyDir(global, homeDir); err != nil {
			cfg.Fallbacks = append(cfg.Fallbacks, fmt.Errorf("global config ignored: %w", err))
		} else {
			cfg = global
		}
		// The global file may not move the project
		cfg.Project.Root = root
	}

	if _, err := applyDir(cfg, cfg.Project.Root); err != nil {
		return nil, err
	}

	if cfg.Source.RespectGitignore {
		patterns, err := LoadGitignore(cfg.Project.Root)
		if err != nil {
			return nil, err
		}
		cfg.Exclude = append(cfg.Exclude, ExclusionPatterns(patterns)...)
	}

	NewValidator().ValidateAndSetDefaults(cfg)
	return cfg, nil
}

// LoadFile loads a single config file over the defaults. The format is chosen
// by extension: .toml for TOML, anything else is parsed as KDL.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	cfg.Project.Root = filepath.Dir(path)
	if abs, err := filepath.Abs(cfg.Project.Root); err == nil {
		cfg.Project.Root = abs
	}

	if err := applyFile(cfg, path); err != nil {
		return nil, err
	}

	NewValidator().ValidateAndSetDefaults(cfg)
	return cfg, nil
}

// applyDir applies the KDL config in dir, or the TOML config if no KDL file
// exists. It reports whether a file was found.
func applyDir(cfg *Config, dir string) (bool, error) {
	for _, name := range []string{KDLFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return true, applyFile(cfg, path)
	}
	return false, nil
}

func applyFile(cfg *Config, path string) error {
	if filepath.Ext(path) == ".toml" {
		return applyTOMLFile(cfg, path)
	}
	return applyKDLFile(cfg, path)
}

// resolveRoot makes a root read from a config file absolute, relative to the
// directory containing that file
func resolveRoot(root, configDir string) string {
	if root == "" {
		return root
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(configDir, root)
	}
	return filepath.Clean(root)
}
