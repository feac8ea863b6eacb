// Package gdb drives an external debugger as a subprocess to capture an
// extended backtrace (per-frame locals, disassembly, registers) of a
// crashing process into an artifact file.
//
// The session runs inside a fault handler, so it performs no path lookups
// and no allocation-heavy work; both executable paths are resolved by the
// installer long before any fault.
package gdb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Sentinel errors reported by Capture. Both are expected outcomes recorded
// in the artifact, never escalated by callers.
var (
	// ErrUnavailable indicates a missing debugger or program path; no
	// process was spawned.
	ErrUnavailable = errors.New("extended backtrace unavailable")

	// ErrDebuggerFailed indicates the debugger spawned but failed to
	// produce a usable session (start, write, or exit failure).
	ErrDebuggerFailed = errors.New("debugger failed")
)

// Session describes one extended-backtrace capture of a live process.
type Session struct {
	// Program is the absolute path of the executable being debugged.
	// Empty means the path could not be resolved at install time.
	Program string

	// Debugger is the absolute path of the gdb binary. Empty means gdb
	// was not found at install time.
	Debugger string

	// PID is the process the debugger attaches to.
	PID int

	// FrameOffset selects the frame inspected by the script: the number
	// of signal-trampoline frames between the handler and the faulting
	// code. The right value varies across platforms and runtime versions,
	// which is why it is configuration rather than a constant.
	FrameOffset int
}

// Capture attaches the debugger to the session's process and appends the
// extended-backtrace section to f. The section always starts with either
// a banner or an explanation of why no capture was possible; failures
// after spawn append a failure marker so "debugger ran" and "never
// started" stay distinguishable in the artifact.
func (s Session) Capture(f *os.File) error {
	if s.Program == "" || s.Debugger == "" {
		_, _ = io.WriteString(f, "No extended backtrace dumped:\n")
		if s.Program == "" {
			_, _ = io.WriteString(f, "- Program path not available\n")
		}
		if s.Debugger == "" {
			_, _ = io.WriteString(f, "- GDB not available\n")
		}
		return ErrUnavailable
	}

	if _, err := io.WriteString(f, "GDB extended backtrace:\n"); err != nil {
		return fmt.Errorf("writing section banner: %w", err)
	}

	rp, wp, err := os.Pipe()
	if err != nil {
		_, _ = io.WriteString(f, "GDB failed\n")
		return fmt.Errorf("%w: creating script pipe: %v", ErrDebuggerFailed, err)
	}

	// The child must not inherit the parent environment: the process is
	// mid-crash and its environment is not trustworthy.
	cmd := &exec.Cmd{
		Path:   s.Debugger,
		Args:   []string{s.Debugger, s.Program, strconv.Itoa(s.PID)},
		Stdin:  rp,
		Stdout: f,
		Env:    []string{},
	}

	if err := cmd.Start(); err != nil {
		_ = rp.Close()
		_ = wp.Close()
		_, _ = io.WriteString(f, "GDB failed\n")
		return fmt.Errorf("%w: starting debugger: %v", ErrDebuggerFailed, err)
	}
	_ = rp.Close()

	// One write, then close: the script is the child's entire stdin.
	if _, err := io.WriteString(wp, s.script()); err != nil {
		_ = wp.Close()
		_ = cmd.Wait()
		_, _ = io.WriteString(f, "GDB failed\n")
		return fmt.Errorf("%w: writing script: %v", ErrDebuggerFailed, err)
	}
	_ = wp.Close()

	// No timeout: a hung debugger hangs the crash handler. Racing a timer
	// against it from fault context is riskier than the hang.
	if err := cmd.Wait(); err != nil {
		_, _ = io.WriteString(f, "GDB failed\n")
		return fmt.Errorf("%w: %v", ErrDebuggerFailed, err)
	}
	return nil
}

// script is the fixed five-command debugger session.
func (s Session) script() string {
	return fmt.Sprintf("backtrace full\nframe %d\ndisassemble\ninfo registers\nquit\n", s.FrameOffset)
}
