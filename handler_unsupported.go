//go:build darwin || (!unix && !windows)

package crashtrap

import (
	"os"
	"syscall"
)

// DefaultSignals returns nil: no fatal-fault hook exists for this
// platform. Install still primes the diagnostics so InfoSource state is
// warm, but Active() stays false.
func DefaultSignals() []syscall.Signal {
	return nil
}

type platformState struct{}

func (h *Handler) initPlatform() {}

func (h *Handler) hook() {
	h.logger.Debug("fatal-fault capture not supported on this platform")
}

func (h *Handler) unhook() {}

func defaultArtifactDir() string {
	return os.TempDir()
}
