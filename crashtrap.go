package crashtrap

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/artifact"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/dumpinfo"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/whereis"
)

// InfoSource supplies the contextual sections of a crash artifact. The
// handler calls the two methods in fixed order and treats their output as
// opaque text; both must be safe to call from a fault handler, so any
// expensive collection belongs in the implementation's constructor.
type InfoSource interface {
	WriteHeader(w io.Writer) error
	WriteRecentLog(w io.Writer) error
}

// Prompt selects how the Windows exception filter asks before dumping.
// It has no effect on other platforms.
type Prompt int

const (
	// PromptAsk shows a yes/no message box before writing the dump.
	PromptAsk Prompt = iota

	// PromptAuto skips the question and always dumps. For services and
	// other headless contexts where no desktop is available.
	PromptAuto

	// PromptOff disables dumping entirely; the fault is only passed on.
	PromptOff
)

// Config controls handler installation. The zero value is usable; empty
// fields are filled with defaults at Install time.
type Config struct {
	// ArtifactDir is where crash artifacts are written. Empty means the
	// system temporary directory.
	ArtifactDir string

	// Prefix is the program-identifying artifact filename prefix. Empty
	// means the executable's base name.
	Prefix string

	// Version is the program version recorded in artifacts.
	Version string

	// Debugger is the debugger command name or path. Empty means "gdb".
	Debugger string

	// FrameOffset is the stack frame the debugger script inspects: the
	// number of trampoline frames the signal delivery mechanism inserts
	// above the faulting code. The value is runtime- and
	// platform-dependent; 0 means the conventional default of 4.
	FrameOffset int

	// StackBufSize is the size of the preallocated buffer for the raw
	// goroutine dump. 0 means 512 KiB.
	StackBufSize int

	// MaxArtifacts bounds how many artifacts are kept; older ones are
	// pruned at install time. 0 means 10.
	MaxArtifacts int

	// Signals overrides the set of fatal signals hooked on unix. Nil
	// means DefaultSignals(). Signals the process already ignores are
	// skipped either way.
	Signals []syscall.Signal

	// Prompt selects the Windows dump prompt behavior.
	Prompt Prompt

	// Info supplies the artifact's header and recent-log sections. Nil
	// means a default built from os.Args and host probing.
	Info InfoSource

	// Logger receives install-time diagnostics (capability degradation,
	// prune failures). Nil means slog.Default(). The fault path itself
	// never logs.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration Install would synthesize from a
// zero Config, minus the probing InfoSource.
func DefaultConfig() Config {
	return Config{
		ArtifactDir:  defaultArtifactDir(),
		Prefix:       executableName(),
		Debugger:     "gdb",
		FrameOffset:  4,
		StackBufSize: 512 << 10,
		MaxArtifacts: 10,
		Signals:      DefaultSignals(),
	}
}

// Handler is an installed fatal-fault hook. At most one exists per
// process.
type Handler struct {
	cfg      Config
	logger   *slog.Logger
	info     InfoSource
	program  string
	debugger string
	stackBuf []byte
	faulted  atomic.Bool
	active   bool
	os       platformState
}

// installed is the one piece of ambient state the OS entry points force on
// us; everything else hangs off the Handler.
var installed atomic.Pointer[Handler]

// Install registers the process-wide fatal-fault handler. It is
// idempotent: once a handler is installed, later calls return it
// unchanged. Capability probing never fails the install; a missing
// debugger or program path merely disables the extended backtrace.
func Install(cfg Config) (*Handler, error) {
	if h := installed.Load(); h != nil {
		return h, nil
	}

	h := newHandler(cfg)
	if !installed.CompareAndSwap(nil, h) {
		return installed.Load(), nil
	}
	h.hook()
	return h, nil
}

// Installed returns the current process handler, or nil.
func Installed() *Handler {
	return installed.Load()
}

// Uninstall releases the OS hook and clears the process handler. Only the
// handler that is actually installed is released; a stale handle is a
// no-op.
func (h *Handler) Uninstall() {
	if !installed.CompareAndSwap(h, nil) {
		return
	}
	h.unhook()
}

// Active reports whether an OS-level fault hook is engaged. It is false on
// platforms without one (notably darwin), where Install still succeeds but
// only primes the diagnostics.
func (h *Handler) Active() bool {
	return h.active
}

// Program returns the resolved path of the running executable, or "" when
// resolution failed at install time.
func (h *Handler) Program() string {
	return h.program
}

// DebuggerPath returns the resolved debugger path, or "" when the debugger
// was not found at install time.
func (h *Handler) DebuggerPath() string {
	return h.debugger
}

// ArtifactDir returns the directory artifacts are written to.
func (h *Handler) ArtifactDir() string {
	return h.cfg.ArtifactDir
}

// Prefix returns the artifact filename prefix.
func (h *Handler) Prefix() string {
	return h.cfg.Prefix
}

func newHandler(cfg Config) *Handler {
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = defaultArtifactDir()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = executableName()
	}
	if cfg.Debugger == "" {
		cfg.Debugger = "gdb"
	}
	if cfg.FrameOffset <= 0 {
		cfg.FrameOffset = 4
	}
	if cfg.StackBufSize <= 0 {
		cfg.StackBufSize = 512 << 10
	}
	if cfg.MaxArtifacts <= 0 {
		cfg.MaxArtifacts = 10
	}
	if cfg.Signals == nil {
		cfg.Signals = DefaultSignals()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info := cfg.Info
	if info == nil {
		info = dumpinfo.New(os.Args, dumpinfo.Options{Version: cfg.Version})
	}

	h := &Handler{
		cfg:      cfg,
		logger:   logger,
		info:     info,
		stackBuf: make([]byte, cfg.StackBufSize),
	}

	// Everything below is best-effort probing, resolved now so the fault
	// path never touches PATH or the filesystem beyond the artifact.
	h.program = resolveProgram()
	if h.program == "" {
		logger.Warn("program path not resolvable, extended backtrace disabled")
	}
	if path, ok := whereis.Locate(cfg.Debugger); ok {
		h.debugger = path
	} else {
		logger.Warn("debugger not found, extended backtrace disabled", "debugger", cfg.Debugger)
	}

	if err := artifact.Prune(cfg.ArtifactDir, cfg.Prefix, cfg.MaxArtifacts, logger); err != nil {
		logger.Warn("pruning old artifacts failed", "error", err)
	}

	h.initPlatform()
	return h
}

func resolveProgram() string {
	if path, err := os.Executable(); err == nil && path != "" {
		return path
	}
	if len(os.Args) == 0 {
		return ""
	}
	if path, ok := whereis.Locate(os.Args[0]); ok {
		return path
	}
	return ""
}

func executableName() string {
	if path, err := os.Executable(); err == nil && path != "" {
		return filepath.Base(path)
	}
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return "crashtrap"
}
