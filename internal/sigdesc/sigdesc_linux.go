package sigdesc

import "syscall"

// describePoll handles SIGPOLL, which only some platforms define.
func describePoll(sig syscall.Signal, code Code) (string, bool) {
	if sig != syscall.SIGPOLL {
		return "", false
	}
	switch code {
	case PollIn:
		return "SIGPOLL: Pollable event: Data input available", true
	case PollOut:
		return "SIGPOLL: Pollable event: Output buffers available", true
	case PollMsg:
		return "SIGPOLL: Pollable event: Input message available", true
	case PollErr:
		return "SIGPOLL: Pollable event: I/O error", true
	case PollPri:
		return "SIGPOLL: Pollable event: High priority input available", true
	case PollHup:
		return "SIGPOLL: Pollable event: Device disconnected", true
	default:
		return "SIGPOLL: Pollable event", true
	}
}
