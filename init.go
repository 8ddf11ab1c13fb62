// SPDX-License-Identifier: GPL-3.0-or-later

package tlssession

import "sync/atomic"

// platformHandle is the process-wide platform handle: set once by
// [Init] before the first [Connect], read many times thereafter, never
// cleared. None of this module's back-ends (see backend_*.go) need a
// JVM-style handle to operate, so storing it is a no-op beyond
// bookkeeping; the entry point still exists, explicitly rather than
// behind lazy initialization, because environments that do need one
// must set it up from a particular context at startup.
var platformHandle atomic.Value

// Init performs the one-time, process-wide platform setup callers must
// run before the first [Connect] on platforms that need it. handle is
// an opaque pointer meaningful only to back-ends that require one; none
// of this module's back-ends do, so Init is a no-op here, but calling
// it once at startup keeps call sites portable to platforms where it is
// not.
//
// Init may be called more than once; only the first call's handle is
// retained.
func Init(handle any) {
	platformHandle.CompareAndSwap(nil, handleBox{handle})
}

// handleBox wraps handle so a nil handle can still be stored in an
// atomic.Value (which rejects storing untyped nil directly).
type handleBox struct {
	handle any
}
