//go:build windows

// Package minidump writes Windows minidump snapshots of the current
// process via dbghelp.dll.
package minidump

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	dbghelp               = windows.NewLazySystemDLL("dbghelp.dll")
	procMiniDumpWriteDump = dbghelp.NewProc("MiniDumpWriteDump")
)

// MiniDumpNormal: stacks, module list, thread contexts; no full memory.
const miniDumpNormal = 0

// versionStreamType is the first stream id past the reserved range,
// carrying the program version string.
const versionStreamType = 0xffff + 1

// MINIDUMP_EXCEPTION_INFORMATION
type exceptionInformation struct {
	ThreadID          uint32
	ExceptionPointers uintptr
	ClientPointers    int32
}

// MINIDUMP_USER_STREAM
type userStream struct {
	Type       uint32
	BufferSize uint32
	Buffer     unsafe.Pointer
}

// MINIDUMP_USER_STREAM_INFORMATION
type userStreamInformation struct {
	UserStreamCount uint32
	UserStreamArray unsafe.Pointer
}

// Write writes a MiniDumpNormal snapshot of the current process to f. The
// exception pointers (zero when no exception context exists) and a user
// stream carrying version make the dump self-describing. Runs in fault
// context; dbghelp does the heavy lifting in-process.
func Write(f *os.File, exceptionPointers uintptr, version string) error {
	if err := procMiniDumpWriteDump.Find(); err != nil {
		return fmt.Errorf("dbghelp unavailable: %w", err)
	}

	var excInfo *exceptionInformation
	if exceptionPointers != 0 {
		excInfo = &exceptionInformation{
			ThreadID:          windows.GetCurrentThreadId(),
			ExceptionPointers: exceptionPointers,
		}
	}

	data := append([]byte(version), 0)
	stream := userStream{
		Type:       versionStreamType,
		BufferSize: uint32(len(data)),
		Buffer:     unsafe.Pointer(&data[0]),
	}
	streams := userStreamInformation{
		UserStreamCount: 1,
		UserStreamArray: unsafe.Pointer(&stream),
	}

	ret, _, errno := procMiniDumpWriteDump.Call(
		uintptr(windows.CurrentProcess()),
		uintptr(windows.GetCurrentProcessId()),
		f.Fd(),
		miniDumpNormal,
		uintptr(unsafe.Pointer(excInfo)),
		uintptr(unsafe.Pointer(&streams)),
		0,
	)
	runtime.KeepAlive(excInfo)
	runtime.KeepAlive(data)
	runtime.KeepAlive(&stream)
	if ret == 0 {
		return fmt.Errorf("writing minidump: %w", errno)
	}
	return nil
}
