// Package log provides slog-based structured logging for the engine and
// CLI. It keeps a small configuration surface: level, format, and an
// optional rotating log file.
//
// Environment variables provide defaults when options are zero-valued:
//
//	CASEBOOK_LOG_LEVEL=debug|info|warn|error
//	CASEBOOK_LOG_FORMAT=console|json
//	CASEBOOK_LOG_FILE=<path>
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level  string // debug, info, warn, error (default info)
	Format string // console or json (default console)
	File   string // optional path; enables rotating file output
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// L returns the default logger, initializing it from the environment on
// first use.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	return Init(Options{})
}

// Init builds the default logger from opts and installs it. It returns
// the logger for convenience.
func Init(opts Options) *slog.Logger {
	if opts.Level == "" {
		opts.Level = os.Getenv("CASEBOOK_LOG_LEVEL")
	}
	if opts.Format == "" {
		opts.Format = os.Getenv("CASEBOOK_LOG_FORMAT")
	}
	if opts.File == "" {
		opts.File = os.Getenv("CASEBOOK_LOG_FILE")
	}

	var w io.Writer = os.Stderr
	if opts.File != "" {
		w = &lj.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}
	}

	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	l := slog.New(h)
	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

// SetDefault replaces the default logger (used by tests).
func SetDefault(l *slog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
