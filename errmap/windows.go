//go:build windows

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's errclass/windows.go (originally adapted
// from rbmk-project/rbmk's pkg/common/errclass/windows.go).
//

package errmap

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// ClassifyErrno maps a raw Winsock error observed by the record-oriented
// back-end's socket syscalls onto [Kind]. See [ClassifyErrno] in unix.go
// for the UNIX equivalent and rationale.
func ClassifyErrno(errno syscall.Errno) Kind {
	switch errno {
	case windows.WSAEADDRNOTAVAIL,
		windows.WSAEADDRINUSE,
		windows.WSAECONNABORTED,
		windows.WSAECONNREFUSED,
		windows.WSAECONNRESET,
		windows.WSAEHOSTUNREACH,
		windows.WSAEINVAL,
		windows.WSAENETDOWN,
		windows.WSAENETUNREACH,
		windows.WSAENOBUFS,
		windows.WSAENOTCONN,
		windows.WSAEPROTONOSUPPORT,
		windows.WSAETIMEDOUT:
		return InvalidSocket
	default:
		return Unknown
	}
}

// IsRetryable reports whether errno indicates a transient would-block
// condition on a non-blocking socket, as opposed to a real failure.
func IsRetryable(errno syscall.Errno) bool {
	return errno == windows.WSAEWOULDBLOCK || errno == windows.WSAEINTR || errno == windows.WSAEINPROGRESS
}

// classifyErrno extracts a raw errno from anywhere in err's chain and
// runs it through [ClassifyErrno]. Errnos the table does not recognize
// fall through to the generic arms of [Classify].
func classifyErrno(err error) (Kind, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return Unknown, false
	}
	if k := ClassifyErrno(errno); k != Unknown {
		return k, true
	}
	return Unknown, false
}
