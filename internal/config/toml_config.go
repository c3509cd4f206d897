package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	cserrors "github.com/standardbeagle/codesnip/internal/errors"

	"github.com/pelletier/go-toml/v2"
)

// tomlConfig mirrors the KDL layout. Integer tunables are decoded as any so
// that quoted values can be parsed leniently like the KDL ones.
type tomlConfig struct {
	Project *struct {
		Root *string `toml:"root"`
		Name *string `toml:"name"`
	} `toml:"project"`
	Matcher *struct {
		MatchLines               any   `toml:"match_lines"`
		MaxLineDepth             any   `toml:"max_line_depth"`
		CountBooleanKeywords     *bool `toml:"count_boolean_keywords"`
		EscapeOnHighlightFailure *bool `toml:"escape_on_highlight_failure"`
	} `toml:"matcher"`
	Source *struct {
		MaxFileSize      any   `toml:"max_file_size"`
		FollowSymlinks   *bool `toml:"follow_symlinks"`
		RespectGitignore *bool `toml:"respect_gitignore"`
	} `toml:"source"`
	Performance *struct {
		MaxGoroutines any `toml:"max_goroutines"`
		TermCacheSize any `toml:"term_cache_size"`
	} `toml:"performance"`
	Logging *struct {
		File       *string `toml:"file"`
		MaxSizeMB  any     `toml:"max_size_mb"`
		MaxBackups any     `toml:"max_backups"`
		MaxAgeDays any     `toml:"max_age_days"`
		Compress   *bool   `toml:"compress"`
		Prefix     *string `toml:"prefix"`
	} `toml:"logging"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// applyTOMLFile reads a .codesnip.toml file and applies it to cfg
func applyTOMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := applyTOML(cfg, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	cfg.Project.Root = resolveRoot(cfg.Project.Root, filepath.Dir(path))
	return nil
}

func applyTOML(cfg *Config, data []byte) error {
	var tc tomlConfig
	if err := toml.Unmarshal(data, &tc); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if p := tc.Project; p != nil {
		if p.Root != nil {
			cfg.Project.Root = *p.Root
		}
		if p.Name != nil {
			cfg.Project.Name = *p.Name
		}
	}

	if m := tc.Matcher; m != nil {
		setTOMLInt(cfg, m.MatchLines, "matcher.match_lines", DefaultMatchLines, &cfg.Matcher.MatchLines)
		setTOMLInt(cfg, m.MaxLineDepth, "matcher.max_line_depth", DefaultMaxLineDepth, &cfg.Matcher.MaxLineDepth)
		if m.CountBooleanKeywords != nil {
			cfg.Matcher.CountBooleanKeywords = *m.CountBooleanKeywords
		}
		if m.EscapeOnHighlightFailure != nil {
			cfg.Matcher.EscapeOnHighlightFailure = *m.EscapeOnHighlightFailure
		}
	}

	if s := tc.Source; s != nil {
		switch v := s.MaxFileSize.(type) {
		case nil:
		case string:
			if sz, err := parseSize(v); err == nil {
				cfg.Source.MaxFileSize = sz
			} else {
				cfg.Fallbacks = append(cfg.Fallbacks, cserrors.NewConfigError(
					"source.max_file_size", v, strconv.Itoa(DefaultMaxFileSize), cserrors.ErrInvalidTunable))
				cfg.Source.MaxFileSize = DefaultMaxFileSize
			}
		default:
			var size int
			setTOMLInt(cfg, v, "source.max_file_size", DefaultMaxFileSize, &size)
			cfg.Source.MaxFileSize = int64(size)
		}
		if s.FollowSymlinks != nil {
			cfg.Source.FollowSymlinks = *s.FollowSymlinks
		}
		if s.RespectGitignore != nil {
			cfg.Source.RespectGitignore = *s.RespectGitignore
		}
	}

	if p := tc.Performance; p != nil {
		setTOMLInt(cfg, p.MaxGoroutines, "performance.max_goroutines", cfg.Performance.MaxGoroutines, &cfg.Performance.MaxGoroutines)
		setTOMLInt(cfg, p.TermCacheSize, "performance.term_cache_size", DefaultTermCacheSize, &cfg.Performance.TermCacheSize)
	}

	if l := tc.Logging; l != nil {
		if l.File != nil {
			cfg.Logging.File = *l.File
		}
		setTOMLInt(cfg, l.MaxSizeMB, "logging.max_size_mb", DefaultLogMaxSizeMB, &cfg.Logging.MaxSizeMB)
		setTOMLInt(cfg, l.MaxBackups, "logging.max_backups", DefaultLogMaxBackups, &cfg.Logging.MaxBackups)
		setTOMLInt(cfg, l.MaxAgeDays, "logging.max_age_days", DefaultLogMaxAgeDays, &cfg.Logging.MaxAgeDays)
		if l.Compress != nil {
			cfg.Logging.Compress = *l.Compress
		}
		if l.Prefix != nil {
			cfg.Logging.Prefix = *l.Prefix
		}
	}

	cfg.Include = append(cfg.Include, tc.Include...)
	cfg.Exclude = append(cfg.Exclude, tc.Exclude...)
	return nil
}

// setTOMLInt stores an integer tunable. A missing key leaves target untouched;
// a value that is not an integer stores def and records a fallback.
func setTOMLInt(cfg *Config, raw any, field string, def int, target *int) {
	switch v := raw.(type) {
	case nil:
		return
	case int64:
		*target = int(v)
		return
	case string:
		if n, ok := TryParseInt(v); ok {
			*target = n
			return
		}
	}

	cfg.Fallbacks = append(cfg.Fallbacks, cserrors.NewConfigError(field, fmt.Sprint(raw), strconv.Itoa(def), cserrors.ErrInvalidTunable))
	*target = def
}
