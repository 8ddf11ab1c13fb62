//go:build unix

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's errclass/unix.go (originally adapted
// from rbmk-project/rbmk's pkg/common/errclass/unix.go).
//

package errmap

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ClassifyErrno maps a raw UNIX errno observed by the fd-wrapped
// back-end's socket syscalls onto [Kind]. Every
// recognized errno is a socket-level condition, so every recognized
// value maps to [InvalidSocket]; the point of the table is to name
// which errnos we consider socket-level here versus letting [Classify]
// handle the rest.
func ClassifyErrno(errno unix.Errno) Kind {
	switch errno {
	case unix.EADDRNOTAVAIL,
		unix.EADDRINUSE,
		unix.ECONNABORTED,
		unix.ECONNREFUSED,
		unix.ECONNRESET,
		unix.EHOSTUNREACH,
		unix.EINVAL,
		unix.ENETDOWN,
		unix.ENETUNREACH,
		unix.ENOBUFS,
		unix.ENOTCONN,
		unix.EPROTONOSUPPORT,
		unix.ETIMEDOUT:
		return InvalidSocket
	default:
		return Unknown
	}
}

// IsRetryable reports whether errno indicates a transient would-block
// condition on a non-blocking socket, as opposed to a real failure.
func IsRetryable(errno unix.Errno) bool {
	return errno == unix.EAGAIN || errno == unix.EWOULDBLOCK || errno == unix.EINTR || errno == unix.EINPROGRESS
}

// classifyErrno extracts a raw errno from anywhere in err's chain and
// runs it through [ClassifyErrno]. Errnos the table does not recognize
// fall through to the generic arms of [Classify].
func classifyErrno(err error) (Kind, bool) {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return Unknown, false
	}
	if k := ClassifyErrno(errno); k != Unknown {
		return k, true
	}
	return Unknown, false
}
