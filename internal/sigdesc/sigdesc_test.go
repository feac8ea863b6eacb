//go:build unix

package sigdesc

import (
	"strings"
	"syscall"
	"testing"
)

func TestDescribe_KnownPairs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		sig  syscall.Signal
		code Code
		want string
	}{
		{"segv maperr", syscall.SIGSEGV, SegvMapErr, "SIGSEGV: Invalid memory reference: Address not mapped to object"},
		{"segv accerr", syscall.SIGSEGV, SegvAccErr, "SIGSEGV: Invalid memory reference: Invalid permissions for mapped object"},
		{"bus adraln", syscall.SIGBUS, BusAdrAln, "SIGBUS: Access to an undefined portion of a memory object: Invalid address alignment"},
		{"fpe intdiv", syscall.SIGFPE, FPEIntDiv, "SIGFPE: Erroneous arithmetic operation: Integer divide by zero"},
		{"fpe fltsub", syscall.SIGFPE, FPEFltSub, "SIGFPE: Erroneous arithmetic operation: Subscript out of range"},
		{"ill badstk", syscall.SIGILL, IllBadStk, "SIGILL: Illegal instruction: Internal stack error"},
		{"trap brkpt", syscall.SIGTRAP, TrapBrkpt, "SIGTRAP: Trace/breakpoint trap: Process breakpoint"},
		{"chld dumped", syscall.SIGCHLD, CldDumped, "SIGCHLD: Child process terminated, stopped, or continued: Child has terminated abnormally and created a core file"},
		{"abrt", syscall.SIGABRT, CodeUnknown, "SIGABRT: Process abort signal"},
		{"quit", syscall.SIGQUIT, CodeUnknown, "SIGQUIT: Terminal quit signal"},
		{"sys", syscall.SIGSYS, CodeUnknown, "SIGSYS: Bad system call"},
		{"xcpu", syscall.SIGXCPU, CodeUnknown, "SIGXCPU: CPU time limit exceeded"},
		{"xfsz", syscall.SIGXFSZ, CodeUnknown, "SIGXFSZ: File size limit exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.sig, tt.code); got != tt.want {
				t.Errorf("Describe(%d, %d) = %q, want %q", tt.sig, tt.code, got, tt.want)
			}
		})
	}
}

func TestDescribe_UnknownCodeFallsBackToSignal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		sig  syscall.Signal
		want string
	}{
		{"segv", syscall.SIGSEGV, "SIGSEGV: Invalid memory reference"},
		{"bus", syscall.SIGBUS, "SIGBUS: Access to an undefined portion of a memory object"},
		{"fpe", syscall.SIGFPE, "SIGFPE: Erroneous arithmetic operation"},
		{"ill", syscall.SIGILL, "SIGILL: Illegal instruction"},
		{"trap", syscall.SIGTRAP, "SIGTRAP: Trace/breakpoint trap"},
		{"chld", syscall.SIGCHLD, "SIGCHLD: Child process terminated, stopped, or continued"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, code := range []Code{CodeUnknown, 99, 0x7fffffff, -1} {
				got := Describe(tt.sig, code)
				if got != tt.want {
					t.Errorf("Describe(%d, %d) = %q, want fallback %q", tt.sig, code, got, tt.want)
				}
			}
		})
	}
}

func TestDescribe_UnknownSignal(t *testing.T) {
	t.Parallel()
	for _, sig := range []syscall.Signal{0, 64, 128, -1} {
		if got := Describe(sig, CodeUnknown); got != "Unknown signal" {
			t.Errorf("Describe(%d, 0) = %q, want %q", sig, got, "Unknown signal")
		}
	}
}

func TestDescribe_TotalOverFatalSet(t *testing.T) {
	t.Parallel()
	fatal := []syscall.Signal{
		syscall.SIGABRT, syscall.SIGBUS, syscall.SIGFPE, syscall.SIGILL,
		syscall.SIGQUIT, syscall.SIGSEGV, syscall.SIGSYS, syscall.SIGTRAP,
		syscall.SIGXCPU, syscall.SIGXFSZ,
	}
	for _, sig := range fatal {
		for code := Code(-2); code <= 16; code++ {
			got := Describe(sig, code)
			if got == "" {
				t.Fatalf("Describe(%d, %d) returned empty string", sig, code)
			}
			if !strings.HasPrefix(got, "SIG") {
				t.Errorf("Describe(%d, %d) = %q, want SIG* prefix", sig, code, got)
			}
		}
	}
}
