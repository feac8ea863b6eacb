//go:build unix

// Package sigdesc maps fatal signals and their si_code sub-classifications
// to stable, human-readable descriptions for crash artifacts.
//
// Describe is a pure function: it never fails, never allocates beyond the
// returned constant, and returns a usable sentence for every input,
// including signals and codes it has never heard of.
package sigdesc

import "syscall"

// Code is the signal sub-classification (siginfo si_code). The constants
// below carry the Linux ABI values; they are only meaningful in combination
// with the signal they belong to.
type Code int32

// CodeUnknown is used when the delivery mechanism does not carry a si_code.
const CodeUnknown Code = 0

// SIGBUS codes.
const (
	BusAdrAln Code = 1
	BusAdrErr Code = 2
	BusObjErr Code = 3
)

// SIGCHLD codes.
const (
	CldExited    Code = 1
	CldKilled    Code = 2
	CldDumped    Code = 3
	CldTrapped   Code = 4
	CldStopped   Code = 5
	CldContinued Code = 6
)

// SIGFPE codes.
const (
	FPEIntDiv Code = 1
	FPEIntOvf Code = 2
	FPEFltDiv Code = 3
	FPEFltOvf Code = 4
	FPEFltUnd Code = 5
	FPEFltRes Code = 6
	FPEFltInv Code = 7
	FPEFltSub Code = 8
)

// SIGILL codes.
const (
	IllIllOpc Code = 1
	IllIllOpn Code = 2
	IllIllAdr Code = 3
	IllIllTrp Code = 4
	IllPrvOpc Code = 5
	IllPrvReg Code = 6
	IllCoproc Code = 7
	IllBadStk Code = 8
)

// SIGSEGV codes.
const (
	SegvMapErr Code = 1
	SegvAccErr Code = 2
)

// SIGTRAP codes.
const (
	TrapBrkpt Code = 1
	TrapTrace Code = 2
)

// SIGPOLL codes.
const (
	PollIn  Code = 1
	PollOut Code = 2
	PollMsg Code = 3
	PollErr Code = 4
	PollPri Code = 5
	PollHup Code = 6
)

// Describe returns a human-readable description for a signal and its code.
// Unknown codes under a known signal fall back to the signal-only sentence;
// wholly unknown signals map to "Unknown signal".
func Describe(sig syscall.Signal, code Code) string {
	switch sig {
	case syscall.SIGABRT:
		return "SIGABRT: Process abort signal"
	case syscall.SIGALRM:
		return "SIGALRM: Alarm clock"
	case syscall.SIGBUS:
		switch code {
		case BusAdrAln:
			return "SIGBUS: Access to an undefined portion of a memory object: Invalid address alignment"
		case BusAdrErr:
			return "SIGBUS: Access to an undefined portion of a memory object: Nonexistent physical address"
		case BusObjErr:
			return "SIGBUS: Access to an undefined portion of a memory object: Object-specific hardware error"
		default:
			return "SIGBUS: Access to an undefined portion of a memory object"
		}
	case syscall.SIGCHLD:
		switch code {
		case CldExited:
			return "SIGCHLD: Child process terminated, stopped, or continued: Child has exited"
		case CldKilled:
			return "SIGCHLD: Child process terminated, stopped, or continued: Child has terminated abnormally and did not create a core file"
		case CldDumped:
			return "SIGCHLD: Child process terminated, stopped, or continued: Child has terminated abnormally and created a core file"
		case CldTrapped:
			return "SIGCHLD: Child process terminated, stopped, or continued: Traced child has trapped"
		case CldStopped:
			return "SIGCHLD: Child process terminated, stopped, or continued: Child has stopped"
		case CldContinued:
			return "SIGCHLD: Child process terminated, stopped, or continued: Stopped child has continued"
		default:
			return "SIGCHLD: Child process terminated, stopped, or continued"
		}
	case syscall.SIGCONT:
		return "SIGCONT: Continue executing, if stopped"
	case syscall.SIGFPE:
		switch code {
		case FPEIntDiv:
			return "SIGFPE: Erroneous arithmetic operation: Integer divide by zero"
		case FPEIntOvf:
			return "SIGFPE: Erroneous arithmetic operation: Integer overflow"
		case FPEFltDiv:
			return "SIGFPE: Erroneous arithmetic operation: Floating-point divide by zero"
		case FPEFltOvf:
			return "SIGFPE: Erroneous arithmetic operation: Floating-point overflow"
		case FPEFltUnd:
			return "SIGFPE: Erroneous arithmetic operation: Floating-point underflow"
		case FPEFltRes:
			return "SIGFPE: Erroneous arithmetic operation: Floating-point inexact result"
		case FPEFltInv:
			return "SIGFPE: Erroneous arithmetic operation: Invalid floating-point operation"
		case FPEFltSub:
			return "SIGFPE: Erroneous arithmetic operation: Subscript out of range"
		default:
			return "SIGFPE: Erroneous arithmetic operation"
		}
	case syscall.SIGHUP:
		return "SIGHUP: Hangup"
	case syscall.SIGILL:
		switch code {
		case IllIllOpc:
			return "SIGILL: Illegal instruction: Illegal opcode"
		case IllIllOpn:
			return "SIGILL: Illegal instruction: Illegal operand"
		case IllIllAdr:
			return "SIGILL: Illegal instruction: Illegal addressing mode"
		case IllIllTrp:
			return "SIGILL: Illegal instruction: Illegal trap"
		case IllPrvOpc:
			return "SIGILL: Illegal instruction: Privileged opcode"
		case IllPrvReg:
			return "SIGILL: Illegal instruction: Privileged register"
		case IllCoproc:
			return "SIGILL: Illegal instruction: Coprocessor error"
		case IllBadStk:
			return "SIGILL: Illegal instruction: Internal stack error"
		default:
			return "SIGILL: Illegal instruction"
		}
	case syscall.SIGINT:
		return "SIGINT: Terminal interrupt signal"
	case syscall.SIGKILL:
		return "SIGKILL: Kill"
	case syscall.SIGPIPE:
		return "SIGPIPE: Write on a pipe with no one to read it"
	case syscall.SIGQUIT:
		return "SIGQUIT: Terminal quit signal"
	case syscall.SIGSEGV:
		switch code {
		case SegvMapErr:
			return "SIGSEGV: Invalid memory reference: Address not mapped to object"
		case SegvAccErr:
			return "SIGSEGV: Invalid memory reference: Invalid permissions for mapped object"
		default:
			return "SIGSEGV: Invalid memory reference"
		}
	case syscall.SIGSTOP:
		return "SIGSTOP: Stop executing"
	case syscall.SIGTERM:
		return "SIGTERM: Termination signal"
	case syscall.SIGTSTP:
		return "SIGTSTP: Terminal stop signal"
	case syscall.SIGTTIN:
		return "SIGTTIN: Background process attempting read"
	case syscall.SIGTTOU:
		return "SIGTTOU: Background process attempting write"
	case syscall.SIGURG:
		return "SIGURG: High bandwidth data is available at a socket"
	case syscall.SIGUSR1:
		return "SIGUSR1: User-defined signal 1"
	case syscall.SIGUSR2:
		return "SIGUSR2: User-defined signal 2"
	case syscall.SIGPROF:
		return "SIGPROF: Profiling timer expired"
	case syscall.SIGSYS:
		return "SIGSYS: Bad system call"
	case syscall.SIGTRAP:
		switch code {
		case TrapBrkpt:
			return "SIGTRAP: Trace/breakpoint trap: Process breakpoint"
		case TrapTrace:
			return "SIGTRAP: Trace/breakpoint trap: Process trace trap"
		default:
			return "SIGTRAP: Trace/breakpoint trap"
		}
	case syscall.SIGVTALRM:
		return "SIGVTALRM: Virtual timer expired"
	case syscall.SIGXCPU:
		return "SIGXCPU: CPU time limit exceeded"
	case syscall.SIGXFSZ:
		return "SIGXFSZ: File size limit exceeded"
	default:
		if s, ok := describePoll(sig, code); ok {
			return s
		}
		return "Unknown signal"
	}
}
