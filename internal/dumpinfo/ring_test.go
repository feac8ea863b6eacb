package dumpinfo

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRing_KeepsMostRecent(t *testing.T) {
	t.Parallel()
	ring := NewRing(nil, 3)
	logger := slog.New(ring)

	logger.Info("one")
	logger.Info("two")
	logger.Info("three")
	logger.Info("four")
	logger.Info("five")

	var buf bytes.Buffer
	if err := ring.writeTo(&buf); err != nil {
		t.Fatalf("writeTo() error = %v", err)
	}
	out := buf.String()

	for _, dropped := range []string{"one", "two"} {
		if strings.Contains(out, dropped) {
			t.Errorf("expected %q to be evicted, got:\n%s", dropped, out)
		}
	}
	iThree := strings.Index(out, "three")
	iFour := strings.Index(out, "four")
	iFive := strings.Index(out, "five")
	if iThree < 0 || iFour < 0 || iFive < 0 {
		t.Fatalf("missing recent records, got:\n%s", out)
	}
	if !(iThree < iFour && iFour < iFive) {
		t.Errorf("expected oldest-first order, got:\n%s", out)
	}
}

func TestRing_Empty(t *testing.T) {
	t.Parallel()
	ring := NewRing(nil, 4)

	var buf bytes.Buffer
	if err := ring.writeTo(&buf); err != nil {
		t.Fatalf("writeTo() error = %v", err)
	}
	if buf.String() != "No log records captured.\n" {
		t.Errorf("unexpected empty-ring output: %q", buf.String())
	}
}

func TestRing_BusyDegrades(t *testing.T) {
	t.Parallel()
	ring := NewRing(nil, 4)
	slog.New(ring).Info("entry")

	ring.store.mu.Lock()
	var buf bytes.Buffer
	err := ring.writeTo(&buf)
	ring.store.mu.Unlock()

	if err != nil {
		t.Fatalf("writeTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "busy") {
		t.Errorf("expected busy note, got: %q", buf.String())
	}
}

func TestRing_ForwardsToInner(t *testing.T) {
	t.Parallel()
	var innerBuf bytes.Buffer
	inner := slog.NewTextHandler(&innerBuf, nil)
	ring := NewRing(inner, 4)

	slog.New(ring).Info("forwarded message")

	if !strings.Contains(innerBuf.String(), "forwarded message") {
		t.Errorf("expected record to reach inner handler, got: %q", innerBuf.String())
	}

	var buf bytes.Buffer
	if err := ring.writeTo(&buf); err != nil {
		t.Fatalf("writeTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "forwarded message") {
		t.Errorf("expected record in ring, got: %q", buf.String())
	}
}

func TestRing_WithAttrsSharesBuffer(t *testing.T) {
	t.Parallel()
	ring := NewRing(nil, 4)
	derived := ring.WithAttrs([]slog.Attr{slog.String("task", "demo")})

	slog.New(derived).Info("attributed")

	var buf bytes.Buffer
	if err := ring.writeTo(&buf); err != nil {
		t.Fatalf("writeTo() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "attributed") || !strings.Contains(out, "task=demo") {
		t.Errorf("expected derived handler to write into shared buffer, got: %q", out)
	}
}

func TestRing_WithGroupPrefixesKeys(t *testing.T) {
	t.Parallel()
	ring := NewRing(nil, 4)
	grouped := ring.WithGroup("request")

	logger := slog.New(grouped)
	logger.Info("grouped", "id", "42")

	var buf bytes.Buffer
	if err := ring.writeTo(&buf); err != nil {
		t.Fatalf("writeTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "request.id=42") {
		t.Errorf("expected grouped key, got: %q", buf.String())
	}
}

func TestRing_RecentLogThroughInfo(t *testing.T) {
	t.Parallel()
	ring := NewRing(nil, 8)
	slog.New(ring).Warn("disk almost full", "percent", 97)

	info := New([]string{"myapp"}, Options{Ring: ring, SkipHardware: true})

	var buf bytes.Buffer
	if err := info.WriteRecentLog(&buf); err != nil {
		t.Fatalf("WriteRecentLog() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "disk almost full") || !strings.Contains(out, "percent=97") {
		t.Errorf("unexpected log section: %q", out)
	}
}
