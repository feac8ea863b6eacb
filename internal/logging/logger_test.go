package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/dumpinfo"
)

func TestLogger_Creation(t *testing.T) {
	t.Parallel()
	logger := New(DefaultConfig())
	if logger == nil {
		t.Fatal("expected logger to be created")
	}
	if logger.Logger == nil {
		t.Error("expected underlying slog.Logger to be created")
	}
	if logger.Ring() == nil {
		t.Error("expected default config to attach a ring")
	}
}

func TestLogger_Formats(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		format string
	}{
		{"json", "json"},
		{"text", "text"},
		{"auto", "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{
				Level:  "info",
				Format: tt.format,
				Output: &buf,
			})
			logger.Info("test message")

			if buf.Len() == 0 {
				t.Error("expected log output")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		level   string
		logFunc func(l *Logger)
		expect  bool
	}{
		{"debug at debug", "debug", func(l *Logger) { l.Debug("test") }, true},
		{"debug at info", "info", func(l *Logger) { l.Debug("test") }, false},
		{"info at info", "info", func(l *Logger) { l.Info("test") }, true},
		{"warn at error", "error", func(l *Logger) { l.Warn("test") }, false},
		{"error at error", "error", func(l *Logger) { l.Error("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{
				Level:  tt.level,
				Format: "text",
				Output: &buf,
			})
			tt.logFunc(logger)

			hasOutput := buf.Len() > 0
			if hasOutput != tt.expect {
				t.Errorf("expected output=%v, got output=%v", tt.expect, hasOutput)
			}
		})
	}
}

func TestLogger_RingCapturesRecords(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New(Config{
		Level:    "info",
		Format:   "text",
		Output:   &buf,
		RingSize: 16,
	})

	logger.Info("captured for crash artifacts", "key", "value")

	if !strings.Contains(buf.String(), "captured for crash artifacts") {
		t.Errorf("expected record in primary output, got: %s", buf.String())
	}

	ring := logger.Ring()
	if ring == nil {
		t.Fatal("expected a ring")
	}

	info := dumpinfo.New([]string{"test"}, dumpinfo.Options{
		Version:      "test",
		Ring:         ring,
		SkipHardware: true,
	})
	var recent bytes.Buffer
	if err := info.WriteRecentLog(&recent); err != nil {
		t.Fatalf("WriteRecentLog() error: %v", err)
	}
	if !strings.Contains(recent.String(), "captured for crash artifacts") {
		t.Errorf("expected record in ring, got: %s", recent.String())
	}
	if !strings.Contains(recent.String(), "key=value") {
		t.Errorf("expected attr in ring, got: %s", recent.String())
	}
}

func TestLogger_RingDisabled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "text", Output: &buf, RingSize: 0})
	if logger.Ring() != nil {
		t.Error("expected no ring when RingSize is 0")
	}
}

func TestLogger_With(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "text", Output: &buf, RingSize: 8})

	derived := logger.WithComponent("collector")
	derived.Info("started")

	out := buf.String()
	if !strings.Contains(out, "component=collector") {
		t.Errorf("expected component attr, got: %s", out)
	}
	if derived.Ring() != logger.Ring() {
		t.Error("expected derived logger to share the ring")
	}
}

func TestLogger_Nop(t *testing.T) {
	t.Parallel()
	logger := NewNop()
	if logger == nil {
		t.Fatal("expected nop logger to be created")
	}
	logger.Info("test message")
	if logger.Ring() != nil {
		t.Error("expected nop logger to have no ring")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"invalid", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := parseLevel(tt.input)
			if level.String() != tt.expected {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, level.String(), tt.expected)
			}
		})
	}
}

func TestConsoleHandler_Levels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		log   func(l *slog.Logger)
		label string
	}{
		{"debug", func(l *slog.Logger) { l.Debug("msg") }, "DBG"},
		{"info", func(l *slog.Logger) { l.Info("msg") }, "INF"},
		{"warn", func(l *slog.Logger) { l.Warn("msg") }, "WRN"},
		{"error", func(l *slog.Logger) { l.Error("msg") }, "ERR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewConsoleHandler(&buf, slog.LevelDebug))
			tt.log(logger)

			out := buf.String()
			if !strings.Contains(out, tt.label) {
				t.Errorf("expected level label %q, got: %s", tt.label, out)
			}
			if !strings.Contains(out, "msg") {
				t.Errorf("expected message, got: %s", out)
			}
		})
	}
}

func TestConsoleHandler_GroupedAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, slog.LevelInfo))

	logger.WithGroup("request").With("id", 42).Info("handled")

	if !strings.Contains(buf.String(), "request.id") {
		t.Errorf("expected group-prefixed attr, got: %s", buf.String())
	}
}

func TestConsoleHandler_FiltersBelowLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, slog.LevelWarn))

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected no output below level, got: %s", buf.String())
	}

	logger.Error("emitted")
	if !strings.Contains(buf.String(), "emitted") {
		t.Errorf("expected error output, got: %s", buf.String())
	}
}
