package crashtrap

import (
	"io"
	"log/slog"
	"testing"
)

type stubInfo struct{}

func (stubInfo) WriteHeader(w io.Writer) error {
	_, err := io.WriteString(w, "STUB HEADER\n")
	return err
}

func (stubInfo) WriteRecentLog(w io.Writer) error {
	_, err := io.WriteString(w, "STUB LOG LINE\n")
	return err
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		ArtifactDir: t.TempDir(),
		Prefix:      "crashtest",
		Info:        stubInfo{},
		Logger:      nopLogger(),
	}
}

func TestInstall_Idempotent(t *testing.T) {
	h, err := Install(testConfig(t))
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	t.Cleanup(h.Uninstall)

	again, err := Install(Config{Prefix: "different"})
	if err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if again != h {
		t.Error("expected second Install to return the existing handler")
	}
	if Installed() != h {
		t.Error("expected Installed() to return the handler")
	}
}

func TestUninstall_ClearsProcessHandler(t *testing.T) {
	h, err := Install(testConfig(t))
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	h.Uninstall()
	if Installed() != nil {
		t.Fatal("expected Installed() to be nil after Uninstall")
	}
	if h.Active() {
		t.Error("expected handler to be inactive after Uninstall")
	}

	// A stale handle must not release a newer handler.
	h2, err := Install(testConfig(t))
	if err != nil {
		t.Fatalf("reinstall error = %v", err)
	}
	t.Cleanup(h2.Uninstall)

	h.Uninstall()
	if Installed() != h2 {
		t.Error("expected stale Uninstall to be a no-op")
	}
}

func TestNewHandler_Defaults(t *testing.T) {
	h := newHandler(Config{
		ArtifactDir: t.TempDir(),
		Info:        stubInfo{},
		Logger:      nopLogger(),
	})

	if h.cfg.Prefix == "" {
		t.Error("expected default prefix from executable name")
	}
	if h.cfg.FrameOffset != 4 {
		t.Errorf("FrameOffset = %d, want 4", h.cfg.FrameOffset)
	}
	if h.cfg.MaxArtifacts != 10 {
		t.Errorf("MaxArtifacts = %d, want 10", h.cfg.MaxArtifacts)
	}
	if len(h.stackBuf) != 512<<10 {
		t.Errorf("stack buffer = %d bytes, want %d", len(h.stackBuf), 512<<10)
	}
	if h.cfg.Debugger != "gdb" {
		t.Errorf("Debugger = %q, want gdb", h.cfg.Debugger)
	}
	if h.program == "" {
		t.Error("expected program path to resolve in a test binary")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ArtifactDir == "" {
		t.Error("expected a default artifact dir")
	}
	if cfg.Prefix == "" {
		t.Error("expected a default prefix")
	}
	if cfg.Debugger != "gdb" {
		t.Errorf("Debugger = %q, want gdb", cfg.Debugger)
	}
}
