package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// GitignorePattern is one parsed .gitignore line
type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool
}

// LoadGitignore reads the .gitignore in rootPath. A missing file yields no patterns.
func LoadGitignore(rootPath string) ([]GitignorePattern, error) {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		// .gitignore file doesn't exist, which is fine
		return nil, nil
	}
	defer file.Close()

	return ParseGitignore(file)
}

// ParseGitignore parses .gitignore content, skipping blanks and comments
func ParseGitignore(r io.Reader) ([]GitignorePattern, error) {
	var patterns []GitignorePattern

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, parseGitignoreLine(line))
	}

	return patterns, scanner.Err()
}

func parseGitignoreLine(line string) GitignorePattern {
	pattern := GitignorePattern{}

	if strings.HasPrefix(line, "!") {
		pattern.Negate = true
		line = line[1:]
	}

	// Directory-only patterns end with /
	if strings.HasSuffix(line, "/") {
		pattern.Directory = true
		line = strings.TrimSuffix(line, "/")
	}

	// Anchored patterns start with /
	if strings.HasPrefix(line, "/") {
		pattern.Absolute = true
		line = line[1:]
	}

	pattern.Pattern = line
	return pattern
}

// ExclusionPatterns converts gitignore patterns to doublestar exclusions.
// Negations are skipped: an exclusion list cannot re-include a path.
func ExclusionPatterns(patterns []GitignorePattern) []string {
	var exclusions []string

	for _, pattern := range patterns {
		if pattern.Negate || pattern.Pattern == "" {
			continue
		}

		p := pattern.Pattern
		switch {
		case pattern.Directory && pattern.Absolute:
			exclusions = append(exclusions, p+"/**")
		case pattern.Directory:
			exclusions = append(exclusions, "**/"+p+"/**")
		case pattern.Absolute:
			exclusions = append(exclusions, p, p+"/**")
		default:
			exclusions = append(exclusions, "**/"+p, "**/"+p+"/**")
		}
	}

	return exclusions
}
