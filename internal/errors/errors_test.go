package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlightError(t *testing.T) {
	err := NewHighlightError("İstanbul", "stan", 3)

	assert.Equal(t, ErrorTypeHighlight, err.Type)
	assert.Equal(t, "İstanbul", err.Token)
	assert.Equal(t, "stan", err.Term)
	assert.Equal(t, 3, err.Offset)
	assert.True(t, errors.Is(err, ErrHighlightBounds))
	assert.True(t, IsHighlightBounds(err))
	assert.False(t, err.Timestamp.IsZero())

	wrapped := fmt.Errorf("line 4: %w", err)
	assert.True(t, IsHighlightBounds(wrapped))

	var he *HighlightError
	require.True(t, errors.As(wrapped, &he))
	assert.Equal(t, "stan", he.Term)

	assert.Contains(t, err.Error(), `term "stan"`)
	assert.Contains(t, err.Error(), "offset 3")
}

func TestSearchError(t *testing.T) {
	underlying := errors.New("no files")
	err := NewSearchError("foo bar", underlying)

	assert.Equal(t, ErrorTypeSearch, err.Type)
	assert.True(t, errors.Is(err, underlying))
	assert.Equal(t, `search failed for query "foo bar": no files`, err.Error())
}

func TestFileError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		expected  ErrorType
		skippable bool
	}{
		{"not found", fs.ErrNotExist, ErrorTypeFileNotFound, false},
		{"permission", fs.ErrPermission, ErrorTypePermission, false},
		{"wrapped permission", fmt.Errorf("open: %w", fs.ErrPermission), ErrorTypePermission, false},
		{"too large", ErrFileTooLarge, ErrorTypeFileTooLarge, true},
		{"binary", ErrBinaryFile, ErrorTypeBinaryFile, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFileError("read", "/path/to/file", tt.err)
			assert.Equal(t, tt.expected, err.Type)
			assert.Equal(t, tt.skippable, err.IsSkippable())
			assert.True(t, errors.Is(err, tt.err))
			assert.Contains(t, err.Error(), "file read failed for /path/to/file")
		})
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("match_lines", "ten", "15", ErrInvalidTunable)

	assert.Equal(t, ErrorTypeConfig, err.Type)
	assert.True(t, errors.Is(err, ErrInvalidTunable))
	assert.Equal(t, `config error for field match_lines (value "ten", using 15): invalid tunable value`, err.Error())
}

func TestMultiError(t *testing.T) {
	t.Run("filters nil", func(t *testing.T) {
		err := NewMultiError([]error{nil, errors.New("a"), nil})
		assert.Len(t, err.Errors, 1)
		assert.Equal(t, "a", err.Error())
	})

	t.Run("empty", func(t *testing.T) {
		err := NewMultiError(nil)
		assert.Equal(t, "no errors", err.Error())
		assert.NoError(t, err.ErrorOrNil())
	})

	t.Run("unwraps all", func(t *testing.T) {
		a := errors.New("a")
		b := NewFileError("read", "x", ErrBinaryFile)
		err := NewMultiError([]error{a, b})
		assert.True(t, errors.Is(err, a))
		assert.True(t, errors.Is(err, ErrBinaryFile))
		assert.Error(t, err.ErrorOrNil())
		assert.Contains(t, err.Error(), "2 errors")
	})
}
