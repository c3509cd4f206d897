package config

import (
	"runtime"
	"testing"

	cserrors "github.com/standardbeagle/codesnip/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := &Config{
		Project: Project{
			Root: "/test/root",
			Name: "test-project",
		},
		Matcher: Matcher{
			MatchLines:   0,  // Should be set to 15
			MaxLineDepth: -3, // Should be set to 10000
		},
		Source: Source{
			MaxFileSize: 0,
		},
		Performance: Performance{
			MaxGoroutines: 0,
			TermCacheSize: -1,
		},
	}

	NewValidator().ValidateAndSetDefaults(cfg)

	assert.Equal(t, "/test/root", cfg.Project.Root)
	assert.Equal(t, DefaultMatchLines, cfg.Matcher.MatchLines)
	assert.Equal(t, DefaultMaxLineDepth, cfg.Matcher.MaxLineDepth)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Source.MaxFileSize)
	assert.Equal(t, runtime.NumCPU(), cfg.Performance.MaxGoroutines)
	assert.Equal(t, 0, cfg.Performance.TermCacheSize)
	assert.Equal(t, DefaultLogMaxSizeMB, cfg.Logging.MaxSizeMB)

	for _, err := range cfg.Fallbacks {
		assert.ErrorIs(t, err, cserrors.ErrInvalidTunable)
	}
	// match_lines, max_line_depth, max_file_size, max_goroutines,
	// term_cache_size and the three logging tunables
	assert.Len(t, cfg.Fallbacks, 8)
}

func TestValidateAndSetDefaults_ValidConfigUntouched(t *testing.T) {
	cfg := Default()
	cfg.Matcher.MatchLines = 3
	cfg.Matcher.MaxLineDepth = 20

	NewValidator().ValidateAndSetDefaults(cfg)

	assert.Equal(t, 3, cfg.Matcher.MatchLines)
	assert.Equal(t, 20, cfg.Matcher.MaxLineDepth)
	assert.Empty(t, cfg.Fallbacks)
}

func TestValidateProjectConfig(t *testing.T) {
	cfg := Default()
	cfg.Project.Root = ""

	NewValidator().ValidateAndSetDefaults(cfg)
	assert.NotEmpty(t, cfg.Project.Root)
}

func TestValidatePatterns(t *testing.T) {
	cfg := Default()
	cfg.Exclude = []string{"**/dist/**", "**/dist/**", "[unclosed", "*.log"}

	NewValidator().ValidateAndSetDefaults(cfg)

	assert.Equal(t, []string{"**/dist/**", "*.log"}, cfg.Exclude)
	require.Len(t, cfg.Fallbacks, 1)

	var cfgErr *cserrors.ConfigError
	require.ErrorAs(t, cfg.Fallbacks[0], &cfgErr)
	assert.Equal(t, "exclude", cfgErr.Field)
	assert.Equal(t, "[unclosed", cfgErr.Value)
}
