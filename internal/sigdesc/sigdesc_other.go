//go:build unix && !linux

package sigdesc

import "syscall"

func describePoll(syscall.Signal, Code) (string, bool) {
	return "", false
}
