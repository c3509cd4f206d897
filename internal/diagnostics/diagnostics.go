// Package diagnostics is the logging sink for the snippet engine.
//
// When a log file is configured, output goes through a rotating lumberjack
// writer and never touches stdout, which must stay clean while serving MCP
// over stdio. Without a file, output goes to stderr.
package diagnostics

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/codesnip/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FailureRecord describes a line that could not be highlighted
type FailureRecord struct {
	Code    string // stable identifier for the failure site
	Class   string // Go type of the error
	Message string
	Line    string
	Terms   []string
	Time    time.Time
}

// String formats the record as a single log line
func (r FailureRecord) String() string {
	return fmt.Sprintf("%s::error in class %s exception %s unable to highlight line %s with terms %s",
		r.Code, r.Class, r.Message, r.Line, strings.Join(r.Terms, ","))
}

// Logger writes diagnostics. All methods are safe for concurrent use and
// safe to call on a nil *Logger.
type Logger struct {
	mu       sync.Mutex
	logger   *log.Logger
	closer   io.Closer
	filePath string
	failures atomic.Int64
}

// New creates a logger from the logging configuration
func New(cfg config.Logging) *Logger {
	if cfg.File == "" {
		return NewWriter(os.Stderr, cfg.Prefix)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		// Logging is not critical; fall back to discarding output
		log.Printf("Warning: failed to create log directory for %s: %v", cfg.File, err)
		return NewWriter(io.Discard, cfg.Prefix)
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	return &Logger{
		logger:   log.New(rotating, cfg.Prefix, log.LstdFlags|log.Lmicroseconds),
		closer:   rotating,
		filePath: cfg.File,
	}
}

// NewWriter creates a logger writing to w
func NewWriter(w io.Writer, prefix string) *Logger {
	return &Logger{
		logger: log.New(w, prefix, log.LstdFlags),
	}
}

// Printf logs a diagnostic message
func (l *Logger) Printf(format string, v ...interface{}) {
	if l == nil || l.logger == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf(format, v...)
}

// Errorf logs an error
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l == nil || l.logger == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("ERROR: "+format, v...)
}

// LogFailure records a highlighting failure. It never blocks on anything but
// the write itself and never affects the caller's control flow.
func (l *Logger) LogFailure(rec FailureRecord) {
	if l == nil || l.logger == nil {
		return
	}
	l.failures.Add(1)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("SEVERE: %s", rec)
}

// Failures returns how many failure records were logged
func (l *Logger) Failures() int64 {
	if l == nil {
		return 0
	}
	return l.failures.Load()
}

// LogPath returns the log file path, or "" when not logging to a file
func (l *Logger) LogPath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Close flushes and closes the log file if one is open
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil
		return err
	}
	return nil
}

// NoOp discards everything
var NoOp = NewWriter(io.Discard, "")
