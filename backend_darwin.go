//go:build darwin

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Async-callback back-end, modeled on Apple Network.framework's
// managed-connection design and its reference-counted callback-repost
// discipline.
//

package tlssession

import (
	"context"
	"crypto/tls"
	"sync/atomic"
	"time"
)

// asyncBackend is the async-callback back-end, modeled on Apple
// Network.framework's managed-connection-plus-dispatch-queue design.
// A goroutine stands in for the platform's serial dispatch queue: on
// each content arrival it allocates a buffer of the reported size,
// copies the payload into it, pushes it onto the queue, then reposts
// itself as a blocking Read. refcount plays the role of the platform's
// atomic reference count: the receive loop holds one reference per
// outstanding iteration, and disconnect releases the owner's
// reference. Releasing only decrements the count: there is no explicit
// free step, and the garbage collector reclaims the backend once
// nothing references it (see release).
type asyncBackend struct {
	handshakeCh <-chan handshakeOutcome
	cfg         *Config

	// tconn is written once by the handshake goroutine and read from
	// the receive loop, process, and send; the atomic pointer pairs
	// with the curState store so a caller that has observed Connected
	// is guaranteed to observe the connection too.
	tconn atomic.Pointer[tls.Conn]

	refcount     int32
	disconnected atomic.Bool
	curState     atomic.Value // State
	queue        *queue
}

var _ backend = &asyncBackend{}

// newAsyncBackend constructs the connection on its own goroutine (the
// "serial scheduler") and immediately posts the initial receive request
// once the handshake completes. q is the session's packet queue,
// constructed with locking enabled since the receive loop is a producer
// running apart from the caller.
func newAsyncBackend(ctx context.Context, hostname string, port int, cfg *Config, q *queue) *asyncBackend {
	out := make(chan handshakeOutcome, 1)
	b := &asyncBackend{handshakeCh: out, cfg: cfg, queue: q, refcount: 1}
	b.curState.Store(Pending)

	go func() {
		rawConn, err := dialTCP(ctx, cfg.Dialer, hostname, port, cfg.ErrClassifier, cfg.Logger, cfg.TimeNow)
		if err != nil {
			out <- handshakeOutcome{err: err}
			return
		}
		observed := newObservedConn(rawConn, cfg.ErrClassifier, cfg.Logger, cfg.TimeNow)
		tconn, err := handshake(ctx, observed, tlsConfigFor(hostname, cfg), cfg.ErrClassifier, cfg.Logger, cfg.TimeNow)
		if err != nil {
			out <- handshakeOutcome{err: err}
			return
		}
		b.tconn.Store(tconn)
		b.curState.Store(Connected)
		out <- handshakeOutcome{conn: tconn}
		atomic.AddInt32(&b.refcount, 1)
		go b.receiveLoop(tconn)
	}()

	return b
}

// receiveLoop is the repost-style receive callback: it blocks on Read,
// pushes whatever it gets, and reposts (loops) until disconnect or an
// unrecoverable error. Each iteration is conceptually "one callback
// invocation" holding the reference acquired before it started.
func (b *asyncBackend) receiveLoop(tconn *tls.Conn) {
	defer b.release()

	buf := make([]byte, maxRecordPayload)
	for {
		if b.disconnected.Load() {
			return
		}
		n, err := tconn.Read(buf)
		if n > 0 {
			packetBuf := make([]byte, n)
			copy(packetBuf, buf[:n])
			// A full queue pauses the receive loop rather than dropping
			// decrypted plaintext; the paused loop stops consuming
			// ciphertext, which is how back-pressure reaches the peer
			// on this variant.
			for !b.queue.push(packetBuf) {
				if b.disconnected.Load() {
					return
				}
				time.Sleep(pollDeadline)
			}
		}
		if err != nil {
			if b.disconnected.Load() {
				// Disconnect-then-callback race: a receive error
				// caused by our own teardown is not a session error.
				return
			}
			if isCleanEOF(err) {
				b.curState.Store(DisconnectedDraining)
				return
			}
			b.curState.Store(stateFromErr(err))
			return
		}
		if n == 0 {
			return
		}
	}
}

// release drops one reference; the last holder is responsible for
// nothing further here since Go's garbage collector reclaims the
// backend once unreferenced — unlike the native reference count this
// emulates, there is no explicit free step to perform.
func (b *asyncBackend) release() {
	atomic.AddInt32(&b.refcount, -1)
}

func (b *asyncBackend) process(q *queue) State {
	select {
	case outcome := <-b.handshakeCh:
		if outcome.err != nil {
			b.curState.Store(stateFromErr(outcome.err))
		}
	default:
	}
	return b.currentState(q)
}

func (b *asyncBackend) currentState(q *queue) State {
	s, _ := b.curState.Load().(State)
	if s.IsError() {
		return s
	}
	if s == DisconnectedDraining && q.len() == 0 {
		return Disconnected
	}
	if s == Connected && q.full() {
		return PacketQueueFilled
	}
	return s
}

func (b *asyncBackend) send(ctx context.Context, src []byte) int {
	if s, _ := b.curState.Load().(State); s.IsError() {
		return -1
	}
	tconn := b.tconn.Load()
	if tconn == nil {
		return -1
	}
	n, err := sendLoop(tconn, src)
	if err != nil {
		b.curState.Store(stateFromErr(err))
		return -1
	}
	return n
}

// disconnect sets the disconnect flag, cancels the connection, and
// releases the owner's reference; it frees nothing itself. The
// in-flight receiveLoop observes the flag on its next completion and
// releases its own reference without touching the queue or state
// beyond that.
func (b *asyncBackend) disconnect() {
	if !b.disconnected.CompareAndSwap(false, true) {
		return
	}
	if tconn := b.tconn.Load(); tconn != nil {
		tconn.Close()
	}
	atomic.AddInt32(&b.refcount, -1)
}

// newPlatformBackend is the GOOS-selected backend constructor [Connect]
// calls; see backend_windows.go and backend_unix.go for the other two
// variants. q must be a locked [*queue]: the receive loop and the
// caller's [Session.Read] run on different goroutines here.
func newPlatformBackend(ctx context.Context, hostname string, port int, cfg *Config, q *queue) backend {
	return newAsyncBackend(ctx, hostname, port, cfg, q)
}
