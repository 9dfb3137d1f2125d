package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents a log level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the log output format.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or json).
	Format Format

	// Output is the writer to send logs to. Defaults to os.Stderr.
	Output io.Writer

	// File, when set, receives a copy of every record in JSON format.
	File string

	// AddSource adds source file and line to log entries.
	AddSource bool
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level:     LevelInfo,
		Format:    FormatText,
		Output:    os.Stderr,
		AddSource: false,
	}
}

// New creates a new slog.Logger with the given configuration.
// Config.File is ignored; use Open when a log file is wanted.
func New(cfg Config) *slog.Logger {
	return slog.New(newHandler(cfg, cfg.Output, cfg.Format))
}

// Open creates a logger like New and additionally tees records into
// Config.File. The returned closer releases the file and must be called on
// shutdown.
func Open(cfg Config) (*slog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return New(cfg), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := newTeeHandler(
		newHandler(cfg, cfg.Output, cfg.Format),
		newHandler(cfg, f, FormatJSON),
	)
	return slog.New(handler), f, nil
}

func newHandler(cfg Config, out io.Writer, format Format) slog.Handler {
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(out, opts)
	default:
		return slog.NewTextHandler(out, opts)
	}
}

// Nop returns a no-op logger that discards all output.
// Use this when a logger is required but logging is disabled.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a log level string, ignoring case.
// Valid values: "debug", "info", "warn", "warning", "error".
// Returns LevelInfo if the string is not recognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat parses a log format string, ignoring case.
// Valid values: "text", "json".
// Returns FormatText if the string is not recognized.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// IsValidLevel reports whether ParseLevel recognizes s.
func IsValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "", "warn", "warning", "error":
		return true
	}
	return false
}

// IsValidFormat reports whether ParseFormat recognizes s.
func IsValidFormat(s string) bool {
	return s == "" || strings.EqualFold(s, "text") || strings.EqualFold(s, "json")
}
