// Package logging builds the CLI's slog logger: level/format selection,
// terminal detection, and an optional bounded ring that feeds the
// recent-log section of crash artifacts.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/dumpinfo"
)

// Logger wraps slog.Logger and keeps hold of the crash ring it tees into.
type Logger struct {
	*slog.Logger
	ring *dumpinfo.Ring
}

// Config configures the logger.
type Config struct {
	Level     string
	Format    string // auto, text, json
	Output    io.Writer
	AddSource bool

	// RingSize is the capacity of the crash ring every record is teed
	// into. 0 disables the ring.
	RingSize int
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Format:   "auto",
		Output:   os.Stderr,
		RingSize: dumpinfo.DefaultRingSize,
	}
}

// New creates a logger. With Format "auto" a terminal gets colorized
// output and anything else gets JSON.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		})
	case "text":
		handler = slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		})
	default: // auto
		if isTerminal(cfg.Output) {
			handler = NewConsoleHandler(cfg.Output, level)
		} else {
			handler = slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{
				Level:     level,
				AddSource: cfg.AddSource,
			})
		}
	}

	var ring *dumpinfo.Ring
	if cfg.RingSize > 0 {
		ring = dumpinfo.NewRing(handler, cfg.RingSize)
		handler = ring
	}

	return &Logger{
		Logger: slog.New(handler),
		ring:   ring,
	}
}

// NewNop creates a no-op logger for testing.
func NewNop() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Ring returns the crash ring records are teed into, or nil when the ring
// is disabled.
func (l *Logger) Ring() *dumpinfo.Ring {
	return l.ring
}

// With returns a logger with custom fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		ring:   l.ring,
	}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
