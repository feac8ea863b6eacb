//go:build unix

package cmd

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// raiseSelf sends the named signal to this process and waits for the
// handler to finish the kill. It only returns on failure.
func raiseSelf(name string) error {
	sig := unix.SignalNum(name)
	if sig == 0 {
		return fmt.Errorf("unknown signal %q", name)
	}

	if err := syscall.Kill(os.Getpid(), sig); err != nil {
		return fmt.Errorf("raising %s: %w", name, err)
	}

	// The handler consumes the signal on its own goroutine, writes the
	// artifact and re-raises. Give it time to get there.
	time.Sleep(30 * time.Second)
	return fmt.Errorf("handler did not terminate the process after %s", name)
}
