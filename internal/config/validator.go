package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	cserrors "github.com/standardbeagle/codesnip/internal/errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults replaces every out of range value with its default
// and records the replacement in cfg.Fallbacks. It never fails: a bad
// configuration degrades to the defaults instead of stopping the caller.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) {
	v.validateProject(cfg)
	v.validateMatcher(cfg)
	v.validateSource(cfg)
	v.validatePerformance(cfg)
	v.validateLogging(cfg)
	cfg.Include = v.validatePatterns(cfg, "include", cfg.Include)
	cfg.Exclude = v.validatePatterns(cfg, "exclude", cfg.Exclude)
}

func (v *Validator) validateProject(cfg *Config) {
	if cfg.Project.Root == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.Project.Root = cwd
		} else {
			cfg.Project.Root = "."
		}
	}
}

func (v *Validator) validateMatcher(cfg *Config) {
	positive(cfg, "matcher.match_lines", &cfg.Matcher.MatchLines, DefaultMatchLines)
	positive(cfg, "matcher.max_line_depth", &cfg.Matcher.MaxLineDepth, DefaultMaxLineDepth)
}

func (v *Validator) validateSource(cfg *Config) {
	if cfg.Source.MaxFileSize <= 0 {
		cfg.Fallbacks = append(cfg.Fallbacks, cserrors.NewConfigError("source.max_file_size",
			strconv.FormatInt(cfg.Source.MaxFileSize, 10), strconv.Itoa(DefaultMaxFileSize),
			fmt.Errorf("%w: must be positive", cserrors.ErrInvalidTunable)))
		cfg.Source.MaxFileSize = DefaultMaxFileSize
	}
}

func (v *Validator) validatePerformance(cfg *Config) {
	positive(cfg, "performance.max_goroutines", &cfg.Performance.MaxGoroutines, runtime.NumCPU())

	if cfg.Performance.TermCacheSize < 0 {
		cfg.Fallbacks = append(cfg.Fallbacks, cserrors.NewConfigError("performance.term_cache_size",
			strconv.Itoa(cfg.Performance.TermCacheSize), "0",
			fmt.Errorf("%w: must not be negative", cserrors.ErrInvalidTunable)))
		cfg.Performance.TermCacheSize = 0
	}
}

func (v *Validator) validateLogging(cfg *Config) {
	positive(cfg, "logging.max_size_mb", &cfg.Logging.MaxSizeMB, DefaultLogMaxSizeMB)
	positive(cfg, "logging.max_backups", &cfg.Logging.MaxBackups, DefaultLogMaxBackups)
	positive(cfg, "logging.max_age_days", &cfg.Logging.MaxAgeDays, DefaultLogMaxAgeDays)
}

// validatePatterns drops malformed glob patterns and duplicates
func (v *Validator) validatePatterns(cfg *Config, field string, patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		if !doublestar.ValidatePattern(p) {
			cfg.Fallbacks = append(cfg.Fallbacks, cserrors.NewConfigError(field, p, "dropped",
				fmt.Errorf("invalid glob pattern: %w", doublestar.ErrBadPattern)))
			continue
		}
		out = append(out, p)
	}
	return out
}

func positive(cfg *Config, field string, value *int, def int) {
	if *value > 0 {
		return
	}
	cfg.Fallbacks = append(cfg.Fallbacks, cserrors.NewConfigError(field, strconv.Itoa(*value), strconv.Itoa(def),
		fmt.Errorf("%w: must be positive", cserrors.ErrInvalidTunable)))
	*value = def
}
