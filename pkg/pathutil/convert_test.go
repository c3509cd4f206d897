package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/standardbeagle/codesnip/internal/types"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/home/user/project/src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
		{
			name:     "nested relative path",
			absPath:  "/home/user/project/internal/core/search.go",
			rootDir:  "/home/user/project",
			expected: "internal/core/search.go",
		},
		{
			name:     "root level file",
			absPath:  "/home/user/project/README.md",
			rootDir:  "/home/user/project",
			expected: "README.md",
		},
		{
			name:     "same directory",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go", // Should return as-is if already relative
		},
		{
			name:     "path outside root - fallback to absolute",
			absPath:  "/other/location/file.go",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.go", // Should return absolute if outside root
		},
		{
			name:     "empty root directory",
			absPath:  "/home/user/project/file.go",
			rootDir:  "",
			expected: "/home/user/project/file.go", // Fallback to absolute
		},
		{
			name:     "empty absolute path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "", // Empty stays empty
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelative(tt.absPath, tt.rootDir)

			// Normalize separators for cross-platform testing
			if runtime.GOOS == "windows" {
				result = filepath.ToSlash(result)
				expected := filepath.ToSlash(tt.expected)
				if result != expected {
					t.Errorf("ToRelative() = %v, want %v", result, expected)
				}
			} else {
				if result != tt.expected {
					t.Errorf("ToRelative() = %v, want %v", result, tt.expected)
				}
			}
		})
	}
}

func TestToRelativeResults(t *testing.T) {
	rootDir := "/home/user/project"

	snippet := []types.SnippetLine{{Line: "x", LineNumber: 3, Matching: true, Matches: 1}}
	input := []*types.FileResult{
		{Path: "/home/user/project/src/main.go", Language: "go", Snippet: snippet},
		nil,
		{Path: "/other/lib.go"},
	}

	results := ToRelativeResults(input, rootDir)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if got := filepath.ToSlash(results[0].Path); got != "src/main.go" {
		t.Errorf("Path = %q, want src/main.go", got)
	}
	if results[0].Language != "go" || len(results[0].Snippet) != 1 {
		t.Errorf("Other fields not preserved: %+v", results[0])
	}
	if results[1] != nil {
		t.Errorf("nil result should stay nil")
	}
	if results[2].Path != "/other/lib.go" {
		t.Errorf("Path outside root should stay absolute, got %q", results[2].Path)
	}

	// Originals untouched
	if input[0].Path != "/home/user/project/src/main.go" {
		t.Errorf("Original result was modified: %q", input[0].Path)
	}
}

func TestToRelativeResultsEmptySlice(t *testing.T) {
	result := ToRelativeResults([]*types.FileResult{}, "/home/user/project")
	if len(result) != 0 {
		t.Errorf("Expected empty slice, got %d elements", len(result))
	}
}

func TestToSlash(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "home", "user", "project")
	path := filepath.Join(root, "internal", "search", "matcher.go")

	if got := ToSlash(path, root); got != "internal/search/matcher.go" {
		t.Errorf("ToSlash() = %q", got)
	}
}
