//go:build unix && !darwin

package crashtrap

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/artifact"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/gdb"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/sigdesc"
)

// DefaultSignals returns the fatal signal set hooked when Config.Signals
// is nil.
func DefaultSignals() []syscall.Signal {
	return []syscall.Signal{
		syscall.SIGABRT,
		syscall.SIGBUS,
		syscall.SIGFPE,
		syscall.SIGILL,
		syscall.SIGQUIT,
		syscall.SIGSEGV,
		syscall.SIGSYS,
		syscall.SIGTRAP,
		syscall.SIGXCPU,
		syscall.SIGXFSZ,
	}
}

type platformState struct {
	ch     chan os.Signal
	hooked []os.Signal
	raise  func(syscall.Signal)
}

func (h *Handler) initPlatform() {
	h.os.raise = h.raiseSignal
}

func (h *Handler) hook() {
	hooked := make([]os.Signal, 0, len(h.cfg.Signals))
	for _, sig := range h.cfg.Signals {
		// An inherited ignore disposition is deliberate policy; honor it.
		if signal.Ignored(sig) {
			h.logger.Debug("signal is ignored, not hooking", "signal", sig.String())
			continue
		}
		hooked = append(hooked, sig)
	}
	if len(hooked) == 0 {
		return
	}

	h.os.ch = make(chan os.Signal, len(hooked))
	h.os.hooked = hooked
	signal.Notify(h.os.ch, hooked...)
	h.active = true
	go h.consume()
}

func (h *Handler) unhook() {
	if h.os.ch == nil {
		return
	}
	signal.Stop(h.os.ch)
	close(h.os.ch)
	h.os.ch = nil
	h.active = false
}

func (h *Handler) consume() {
	for s := range h.os.ch {
		sig, ok := s.(syscall.Signal)
		if !ok {
			continue
		}
		h.handleFatal(sig)
	}
}

// handleFatal runs once per process: everything after the guard executes
// for the first fault only, and ends by re-raising the signal with its
// default disposition restored. It must not take locks or allocate beyond
// the artifact file itself.
func (h *Handler) handleFatal(sig syscall.Signal) {
	if !h.faulted.CompareAndSwap(false, true) {
		h.os.raise(sig)
		return
	}

	// Snapshot all goroutine stacks into the preallocated buffer before
	// anything else can disturb them.
	n := runtime.Stack(h.stackBuf, true)

	f, err := artifact.Create(h.cfg.ArtifactDir, h.cfg.Prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create dump file: %v\n", err)
		h.os.raise(sig)
		return
	}

	_ = h.info.WriteHeader(f)
	// Signal delivery through the runtime does not surface si_code, so the
	// description is signal-only here.
	_, _ = io.WriteString(f, "\nDump caused by signal: "+sigdesc.Describe(sig, sigdesc.CodeUnknown)+"\n\n")
	_, _ = io.WriteString(f, "Recent log:\n")
	_ = h.info.WriteRecentLog(f)
	_, _ = io.WriteString(f, "\nGo runtime backtrace:\n")
	_, _ = f.Write(h.stackBuf[:n])
	_, _ = io.WriteString(f, "\n")
	_ = f.Sync()

	session := gdb.Session{
		Program:     h.program,
		Debugger:    h.debugger,
		PID:         os.Getpid(),
		FrameOffset: h.cfg.FrameOffset,
	}
	_ = session.Capture(f)
	_ = f.Close()

	fmt.Printf("Saved dump file to '%s'\nIf you create a bugreport regarding this crash, please include that file.\n", f.Name())

	h.os.raise(sig)
}

// raiseSignal restores the default disposition and re-delivers sig, so the
// process terminates exactly as it would have without the handler.
func (h *Handler) raiseSignal(sig syscall.Signal) {
	signal.Reset(sig)
	_ = syscall.Kill(os.Getpid(), sig)
}

func defaultArtifactDir() string {
	return os.TempDir()
}
