// Package pathutil converts between the absolute paths used while loading
// files and the relative paths shown to users.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/codesnip/internal/types"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go" (outside root)
//   - ToRelative("src/main.go", "/home/user/project") → "src/main.go" (already relative)
func ToRelative(absPath, rootDir string) string {
	// Handle empty inputs
	if absPath == "" || rootDir == "" {
		return absPath
	}

	// If path is already relative, return as-is
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	// Clean both paths to normalize separators and remove redundant elements
	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	// Try to make relative
	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows) - return absolute
		return absPath
	}

	// If the relative path starts with ".." it means the file is outside the root
	// In this case, return the absolute path as it's clearer
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToRelativeResults returns copies of results with paths relative to rootDir.
// The originals are not modified; snippets and lines are shared.
//
// This is used at output boundaries:
//   - CLI search output
//   - MCP server responses
func ToRelativeResults(results []*types.FileResult, rootDir string) []*types.FileResult {
	if len(results) == 0 {
		return results
	}

	converted := make([]*types.FileResult, len(results))
	for i, r := range results {
		if r == nil {
			continue
		}
		c := *r
		c.Path = ToRelative(r.Path, rootDir)
		converted[i] = &c
	}

	return converted
}

// ToSlash returns a relative path with forward slashes, the form glob
// patterns are matched against
func ToSlash(absPath, rootDir string) string {
	return filepath.ToSlash(ToRelative(absPath, rootDir))
}
