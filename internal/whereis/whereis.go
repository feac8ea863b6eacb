// Package whereis resolves bare command names to absolute executable paths
// using the system PATH lookup.
//
// It exists so path resolution happens once, at install time, long before
// any fault. The fatal handler itself never performs lookups.
package whereis

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// MaxPathLen is the upper bound on an accepted lookup result. Results that
// would exceed it are dropped and reported as not found rather than
// truncated into an incorrect path.
const MaxPathLen = 4096

// Locate resolves name to an absolute executable path. The boolean is false
// when the command cannot be found, the result is empty, or the result
// exceeds MaxPathLen.
func Locate(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return bounded(abs)
}

// bounded trims trailing line terminators and enforces MaxPathLen.
func bounded(path string) (string, bool) {
	path = strings.TrimRight(path, "\r\n")
	if path == "" || len(path) > MaxPathLen {
		return "", false
	}
	return path, true
}
