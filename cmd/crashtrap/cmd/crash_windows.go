//go:build windows

package cmd

import "errors"

// raiseSelf would need to raise a native exception past the Go runtime,
// which the runtime's own vectored handler intercepts first. Not
// supported here.
func raiseSelf(string) error {
	return errors.New("inducing a fault is not supported on windows")
}
