// Package source finds files under a project root and loads them as search
// results ready for formatting.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/standardbeagle/codesnip/internal/config"
	"github.com/standardbeagle/codesnip/internal/errors"
	"github.com/standardbeagle/codesnip/internal/types"
	"github.com/standardbeagle/codesnip/pkg/pathutil"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// sniffLen is how much of a file is checked for NUL bytes
const sniffLen = 8000

// languages maps file extensions to the language reported in results
var languages = map[string]string{
	".go": "go", ".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".ts": "typescript", ".tsx": "typescript", ".py": "python", ".java": "java",
	".c": "c", ".h": "c", ".cpp": "cpp", ".hpp": "cpp", ".cs": "csharp",
	".rs": "rust", ".rb": "ruby", ".php": "php", ".swift": "swift", ".kt": "kotlin",
	".scala": "scala", ".zig": "zig", ".json": "json", ".yaml": "yaml", ".yml": "yaml",
	".toml": "toml", ".kdl": "kdl", ".md": "markdown", ".html": "html", ".css": "css",
	".sh": "shell", ".sql": "sql",
}

// Loader discovers and reads files under the project root
type Loader struct {
	root           string
	realRoot       string // root with symlinks resolved
	include        []string
	exclude        []string
	maxFileSize    int64
	followSymlinks bool
	maxGoroutines  int
}

// Batch is the outcome of loading many files. Results keeps the order of the
// requested paths.
type Batch struct {
	Results []*types.FileResult
	Skipped []string // binary or oversized files, left out silently
	Failed  []error  // files that could not be read
}

// NewLoader creates a loader for the project described by cfg
func NewLoader(cfg *config.Config) *Loader {
	if cfg == nil {
		cfg = config.Default()
	}

	workers := cfg.Performance.MaxGoroutines
	if workers <= 0 {
		workers = 1
	}

	root := cfg.Project.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	realRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		realRoot = resolved
	}

	return &Loader{
		root:           root,
		realRoot:       realRoot,
		include:        cfg.Include,
		exclude:        cfg.Exclude,
		maxFileSize:    cfg.Source.MaxFileSize,
		followSymlinks: cfg.Source.FollowSymlinks,
		maxGoroutines:  workers,
	}
}

// Root returns the directory paths are discovered under
func (l *Loader) Root() string {
	return l.root
}

// Discover returns the sorted absolute paths of the files under the root
// matching any of patterns. Patterns are doublestar globs relative to the
// root; no patterns selects every file. A pattern naming an existing file is
// taken as is, without applying the exclusions, but must lie inside the root.
func (l *Loader) Discover(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var globs []string

	for _, p := range patterns {
		candidate := p
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(l.root, p)
		}
		candidate = filepath.Clean(candidate)
		ok, err := l.explicitFile(p, candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			seen[candidate] = struct{}{}
			continue
		}

		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, doublestar.ErrBadPattern)
		}
		globs = append(globs, p)
	}

	if len(globs) > 0 || len(patterns) == 0 {
		err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == l.root {
					return err
				}
				return nil // Skip paths that can't be accessed
			}

			rel := pathutil.ToSlash(path, l.root)
			if d.IsDir() {
				if path != l.root && l.excludedDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}

			if !l.regular(path, d) {
				return nil
			}
			if l.excluded(rel) {
				return nil
			}
			if len(l.include) > 0 && !matchAny(l.include, rel) {
				return nil
			}
			if len(globs) > 0 && !matchAny(globs, rel) {
				return nil
			}

			seen[path] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to discover files in %s: %w", l.root, err)
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// explicitFile reports whether candidate names an existing regular file.
// The file is checked after resolving symlinks, so a link may not point out
// of the root, and a link is refused unless following symlinks is enabled.
func (l *Loader) explicitFile(p, candidate string) (bool, error) {
	info, err := os.Lstat(candidate)
	if err != nil {
		return false, nil
	}
	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return false, nil
	}
	target, err := os.Stat(resolved)
	if err != nil || !target.Mode().IsRegular() {
		return false, nil
	}

	if info.Mode()&fs.ModeSymlink != 0 && !l.followSymlinks {
		return false, fmt.Errorf("%s is a symbolic link and following symlinks is disabled", p)
	}
	if !l.contains(resolved) {
		return false, fmt.Errorf("%s is outside the project root %s", p, l.root)
	}
	return true, nil
}

// contains reports whether a resolved path is inside the project root
func (l *Loader) contains(path string) bool {
	rel, err := filepath.Rel(l.realRoot, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// regular reports whether the entry is a file to load. Symlinks count only
// when following them is enabled and they resolve to a regular file inside
// the root.
func (l *Loader) regular(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink != 0 {
		if !l.followSymlinks {
			return false
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil || !l.contains(resolved) {
			return false
		}
		info, err := os.Stat(resolved)
		return err == nil && info.Mode().IsRegular()
	}
	return d.Type().IsRegular()
}

func (l *Loader) excluded(rel string) bool {
	return matchAny(l.exclude, rel)
}

// excludedDir reports whether a whole directory is excluded, either directly
// or by a pattern covering everything below it
func (l *Loader) excludedDir(rel string) bool {
	for _, p := range l.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if prefix, found := strings.CutSuffix(p, "/**"); found {
			if ok, _ := doublestar.Match(prefix, rel); ok {
				return true
			}
		}
	}
	return false
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Load reads a single file. Binary and oversized files are reported with a
// skippable *errors.FileError.
func (l *Loader) Load(path string) (*types.FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewFileError("stat", path, err)
	}
	if info.Size() > l.maxFileSize {
		return nil, errors.NewFileError("load", path,
			fmt.Errorf("%w: %d bytes exceeds %d", errors.ErrFileTooLarge, info.Size(), l.maxFileSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFileError("read", path, err)
	}
	if isBinary(data) {
		return nil, errors.NewFileError("load", path, errors.ErrBinaryFile)
	}

	return &types.FileResult{
		Path:     path,
		Language: languages[strings.ToLower(filepath.Ext(path))],
		Lines:    SplitLines(data),
		Metadata: map[string]string{
			"size": strconv.FormatInt(info.Size(), 10),
		},
	}, nil
}

// LoadAll reads paths concurrently. Only cancellation of ctx is returned as
// an error; per-file problems are recorded in the batch.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (*Batch, error) {
	results := make([]*types.FileResult, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxGoroutines)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = l.Load(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &Batch{Results: make([]*types.FileResult, 0, len(paths))}
	for i, path := range paths {
		if errs[i] == nil {
			batch.Results = append(batch.Results, results[i])
			continue
		}
		if fileErr, ok := errs[i].(*errors.FileError); ok && fileErr.IsSkippable() {
			batch.Skipped = append(batch.Skipped, path)
			continue
		}
		batch.Failed = append(batch.Failed, errs[i])
	}

	return batch, nil
}

// DiscoverAndLoad discovers the files matching patterns and loads them
func (l *Loader) DiscoverAndLoad(ctx context.Context, patterns []string) (*Batch, error) {
	files, err := l.Discover(patterns)
	if err != nil {
		return nil, err
	}
	return l.LoadAll(ctx, files)
}

// FromContent builds a result from in-memory content, as if it had been
// loaded from path
func FromContent(path, content string) *types.FileResult {
	return &types.FileResult{
		Path:     path,
		Language: languages[strings.ToLower(filepath.Ext(path))],
		Lines:    SplitLines([]byte(content)),
		Metadata: map[string]string{
			"size": strconv.Itoa(len(content)),
		},
	}
}
