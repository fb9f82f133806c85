// Package logging sets up structured file logging. A TUI owns the
// terminal, so nothing is ever written to stderr unless explicitly
// requested via GLIM_CONSOLE_LOGS.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options controls where and how logs are written.
type Options struct {
	// Level for file output.
	Level slog.Level
	// Dir is the log directory. Empty disables file logging.
	Dir string
	// JSON switches the file handler to JSON output.
	JSON bool
	// Console additionally writes to stderr.
	Console bool
	// Disabled turns all logging off.
	Disabled bool
}

// DefaultDir returns the OS cache directory for glim logs,
// e.g. ~/.cache/glim on Linux.
func DefaultDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "glim-logs"
	}
	return filepath.Join(dir, "glim")
}

// FromEnv builds logging options from the config file's log level and
// the GLIM_* environment variables. The environment wins over the
// config; a level of "Off" disables file logging entirely.
func FromEnv(configLevel string) Options {
	opts := Options{
		Level: slog.LevelInfo,
		Dir:   DefaultDir(),
	}

	if configLevel != "" {
		applyLevel(&opts, configLevel)
	}
	if v := os.Getenv("GLIM_LOG_LEVEL"); v != "" {
		applyLevel(&opts, v)
	}
	if v := os.Getenv("GLIM_LOG_DIR"); v != "" {
		opts.Dir = v
	}
	if os.Getenv("GLIM_NO_FILE_LOGS") != "" {
		opts.Dir = ""
	}
	if os.Getenv("GLIM_JSON_LOGS") != "" {
		opts.JSON = true
	}
	if os.Getenv("GLIM_CONSOLE_LOGS") != "" {
		opts.Console = true
	}
	return opts
}

func applyLevel(opts *Options, level string) {
	switch strings.ToLower(level) {
	case "off":
		opts.Disabled = true
	case "error":
		opts.Level = slog.LevelError
	case "warn":
		opts.Level = slog.LevelWarn
	case "info":
		opts.Level = slog.LevelInfo
	case "debug", "trace":
		opts.Level = slog.LevelDebug
	}
}

// Setup opens the log file and returns the logger plus a close func.
// When logging is disabled or the log file cannot be opened, the
// returned logger discards everything.
func Setup(opts Options) (*slog.Logger, func(), error) {
	noop := func() {}

	if opts.Disabled {
		return discardLogger(), noop, nil
	}

	var writers []io.Writer
	closeFn := noop

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return discardLogger(), noop, err
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, "glim.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return discardLogger(), noop, err
		}
		writers = append(writers, f)
		closeFn = func() { f.Close() }
	}
	if opts.Console {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		return discardLogger(), noop, nil
	}

	out := io.MultiWriter(writers...)
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, hopts)
	} else {
		handler = slog.NewTextHandler(out, hopts)
	}
	return slog.New(handler), closeFn, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
