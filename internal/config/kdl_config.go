package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cserrors "github.com/standardbeagle/codesnip/internal/errors"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// applyKDLFile reads a .codesnip.kdl file and applies it to cfg
func applyKDLFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := applyKDL(cfg, string(content)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	cfg.Project.Root = resolveRoot(cfg.Project.Root, filepath.Dir(path))
	return nil
}

// applyKDL applies KDL content on top of cfg. Only the keys present in the
// document change cfg.
//
//	matcher {
//	    match_lines 15
//	    max_line_depth "10000"
//	    count_boolean_keywords true
//	    escape_on_highlight_failure false
//	}
func applyKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children { // project { root "." name "foo" }
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "matcher":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "match_lines":
					cfg.Matcher.MatchLines = intTunable(cfg, cn, "matcher.match_lines", DefaultMatchLines)
				case "max_line_depth":
					cfg.Matcher.MaxLineDepth = intTunable(cfg, cn, "matcher.max_line_depth", DefaultMaxLineDepth)
				case "count_boolean_keywords":
					if b, ok := boolArg(cn); ok {
						cfg.Matcher.CountBooleanKeywords = b
					}
				case "escape_on_highlight_failure":
					if b, ok := boolArg(cn); ok {
						cfg.Matcher.EscapeOnHighlightFailure = b
					}
				}
			}
		case "source":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Source.MaxFileSize = int64(v)
					} else if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Source.MaxFileSize = sz
						} else {
							cfg.Fallbacks = append(cfg.Fallbacks, cserrors.NewConfigError(
								"source.max_file_size", s, strconv.Itoa(DefaultMaxFileSize), cserrors.ErrInvalidTunable))
							cfg.Source.MaxFileSize = DefaultMaxFileSize
						}
					}
				case "follow_symlinks":
					if b, ok := boolArg(cn); ok {
						cfg.Source.FollowSymlinks = b
					}
				case "respect_gitignore":
					if b, ok := boolArg(cn); ok {
						cfg.Source.RespectGitignore = b
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_goroutines":
					cfg.Performance.MaxGoroutines = intTunable(cfg, cn, "performance.max_goroutines", cfg.Performance.MaxGoroutines)
				case "term_cache_size":
					cfg.Performance.TermCacheSize = intTunable(cfg, cn, "performance.term_cache_size", DefaultTermCacheSize)
				}
			}
		case "logging":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "file":
					if s, ok := firstStringArg(cn); ok {
						cfg.Logging.File = s
					}
				case "max_size_mb":
					cfg.Logging.MaxSizeMB = intTunable(cfg, cn, "logging.max_size_mb", DefaultLogMaxSizeMB)
				case "max_backups":
					cfg.Logging.MaxBackups = intTunable(cfg, cn, "logging.max_backups", DefaultLogMaxBackups)
				case "max_age_days":
					cfg.Logging.MaxAgeDays = intTunable(cfg, cn, "logging.max_age_days", DefaultLogMaxAgeDays)
				case "compress":
					if b, ok := boolArg(cn); ok {
						cfg.Logging.Compress = b
					}
				case "prefix":
					if s, ok := firstStringArg(cn); ok {
						cfg.Logging.Prefix = s
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return nil
}

// intTunable reads an integer that may also be written as a string. Anything
// that does not parse is replaced by def and recorded as a fallback.
func intTunable(cfg *Config, n *document.Node, field string, def int) int {
	if v, ok := firstIntArg(n); ok {
		return v
	}

	raw := ""
	if len(n.Arguments) > 0 {
		raw = fmt.Sprint(n.Arguments[0].Value)
	}
	if s, ok := firstStringArg(n); ok {
		if v, ok := TryParseInt(s); ok {
			return v
		}
	}

	cfg.Fallbacks = append(cfg.Fallbacks, cserrors.NewConfigError(field, raw, strconv.Itoa(def), cserrors.ErrInvalidTunable))
	return def
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// boolArg accepts a KDL boolean or a string such as "yes" or "off"
func boolArg(n *document.Node) (bool, bool) {
	if b, ok := firstBoolArg(n); ok {
		return b, true
	}
	if s, ok := firstStringArg(n); ok {
		return parseBool(s), true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// First try to collect from arguments (for inline format)
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block format: exclude { "pattern" } stores each string as a child node name
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// TryParseInt parses a decimal integer, tolerating surrounding whitespace
func TryParseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}
