package crashtrap

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hugo-lorenzo-mato/crashtrap/internal/artifact"
	"github.com/hugo-lorenzo-mato/crashtrap/internal/minidump"
)

// DefaultSignals returns nil: Windows faults arrive as SEH exceptions, not
// signals, so Config.Signals is not used on this platform.
func DefaultSignals() []syscall.Signal {
	return nil
}

var (
	kernel32                        = windows.NewLazySystemDLL("kernel32.dll")
	user32                          = windows.NewLazySystemDLL("user32.dll")
	procSetUnhandledExceptionFilter = kernel32.NewProc("SetUnhandledExceptionFilter")
	procMessageBoxW                 = user32.NewProc("MessageBoxW")
)

const (
	exceptionContinueSearch = 0

	mbOK        = 0x00000000
	mbYesNo     = 0x00000004
	mbIconError = 0x00000010
	idYes       = 6
)

// EXCEPTION_RECORD
type exceptionRecord struct {
	ExceptionCode        uint32
	ExceptionFlags       uint32
	ExceptionRecord      *exceptionRecord
	ExceptionAddress     uintptr
	NumberParameters     uint32
	ExceptionInformation [15]uintptr
}

// EXCEPTION_POINTERS
type exceptionPointers struct {
	ExceptionRecord *exceptionRecord
	ContextRecord   uintptr
}

type platformState struct {
	self uintptr
	prev uintptr
}

func (h *Handler) initPlatform() {}

func (h *Handler) hook() {
	h.os.self = windows.NewCallback(h.filter)
	prev, _, _ := procSetUnhandledExceptionFilter.Call(h.os.self)
	h.os.prev = prev
	h.active = true
}

func (h *Handler) unhook() {
	_, _, _ = procSetUnhandledExceptionFilter.Call(h.os.prev)
	h.os.prev = 0
	h.active = false
}

// filter is the top-level unhandled exception filter. Whatever happens, it
// ends by handing the exception to the previously installed filter (or the
// system default), so termination semantics stay untouched.
func (h *Handler) filter(info *exceptionPointers) uintptr {
	if !h.faulted.CompareAndSwap(false, true) {
		return h.chain(info)
	}

	desc := "Unknown exception"
	if info != nil && info.ExceptionRecord != nil {
		desc = describeException(info.ExceptionRecord)
	}

	if !dumpDecision(h.cfg.Prompt, func() bool { return h.askToDump(desc) }) {
		return h.chain(info)
	}

	path, err := h.writeMinidump(info)
	h.reportDump(path, err)
	return h.chain(info)
}

// dumpDecision reports whether the filter should write a dump, given the
// configured prompt mode and the user's message-box answer.
func dumpDecision(mode Prompt, ask func() bool) bool {
	switch mode {
	case PromptOff:
		return false
	case PromptAuto:
		return true
	default:
		return ask()
	}
}

func (h *Handler) askToDump(desc string) bool {
	text := fmt.Sprintf("%s crashed unexpectedly (%s), would you like to save a diagnostic file?", h.cfg.Prefix, desc)
	return h.messageBox(text, mbYesNo|mbIconError) == idYes
}

func (h *Handler) writeMinidump(info *exceptionPointers) (string, error) {
	path := artifact.FixedPath(h.cfg.ArtifactDir, h.cfg.Prefix)
	f, err := artifact.CreateFixed(h.cfg.ArtifactDir, h.cfg.Prefix)
	if err != nil {
		return path, fmt.Errorf("creating dump file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := minidump.Write(f, uintptr(unsafe.Pointer(info)), h.cfg.Version); err != nil {
		return path, err
	}
	return path, nil
}

func (h *Handler) reportDump(path string, err error) {
	var msg string
	switch {
	case err == nil:
		msg = fmt.Sprintf("Saved dump file to '%s'", path)
	default:
		msg = fmt.Sprintf("Failed to save dump file to '%s' (error %d)", path, errnoOf(err))
	}

	if h.cfg.Prompt == PromptAsk {
		h.messageBox(msg, mbOK|mbIconError)
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

func (h *Handler) messageBox(text string, flags uintptr) int {
	textP, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return 0
	}
	captionP, err := windows.UTF16PtrFromString(h.cfg.Prefix)
	if err != nil {
		return 0
	}
	ret, _, _ := procMessageBoxW.Call(0,
		uintptr(unsafe.Pointer(textP)),
		uintptr(unsafe.Pointer(captionP)),
		flags)
	return int(ret)
}

func (h *Handler) chain(info *exceptionPointers) uintptr {
	if h.os.prev != 0 {
		ret, _, _ := syscall.SyscallN(h.os.prev, uintptr(unsafe.Pointer(info)))
		return ret
	}
	return exceptionContinueSearch
}

func errnoOf(err error) uintptr {
	var errno windows.Errno
	if errors.As(err, &errno) {
		return uintptr(errno)
	}
	return 0
}

// defaultArtifactDir resolves the Windows temporary directory the way the
// dump path always has: GetTempPath with a hardcoded last-resort root.
func defaultArtifactDir() string {
	var buf [windows.MAX_PATH + 1]uint16
	n, err := windows.GetTempPath(uint32(len(buf)), &buf[0])
	if err != nil || n == 0 || int(n) > len(buf) {
		return `C:\temp\`
	}
	return windows.UTF16ToString(buf[:n])
}

// describeException maps an exception record to a stable description. It
// returns usable text for any input, including unknown codes.
func describeException(rec *exceptionRecord) string {
	switch rec.ExceptionCode {
	case 0xC0000005: // EXCEPTION_ACCESS_VIOLATION
		detail := "unknown access"
		if rec.NumberParameters >= 2 {
			switch rec.ExceptionInformation[0] {
			case 0:
				detail = fmt.Sprintf("reading address 0x%08X", rec.ExceptionInformation[1])
			case 1:
				detail = fmt.Sprintf("writing address 0x%08X", rec.ExceptionInformation[1])
			case 8:
				detail = fmt.Sprintf("executing address 0x%08X", rec.ExceptionInformation[1])
			}
		}
		return "Access violation: " + detail
	case 0x80000002:
		return "Datatype misalignment"
	case 0x80000003:
		return "Breakpoint"
	case 0x80000004:
		return "Single step trap"
	case 0xC000008C:
		return "Array bounds exceeded"
	case 0xC000008D:
		return "Floating-point denormal operand"
	case 0xC000008E:
		return "Floating-point divide by zero"
	case 0xC000008F:
		return "Floating-point inexact result"
	case 0xC0000090:
		return "Invalid floating-point operation"
	case 0xC0000091:
		return "Floating-point overflow"
	case 0xC0000092:
		return "Floating-point stack check"
	case 0xC0000093:
		return "Floating-point underflow"
	case 0xC0000094:
		return "Integer divide by zero"
	case 0xC0000095:
		return "Integer overflow"
	case 0xC0000096:
		return "Privileged instruction"
	case 0xC0000006:
		return "In-page I/O error"
	case 0xC000001D:
		return "Illegal instruction"
	case 0xC0000025:
		return "Non-continuable exception"
	case 0xC0000026:
		return "Invalid disposition"
	case 0xC00000FD:
		return "Stack overflow"
	case 0x80000001:
		return "Guard page accessed"
	case 0xC0000008:
		return "Invalid handle"
	default:
		return fmt.Sprintf("Unknown exception (0x%08X)", rec.ExceptionCode)
	}
}
