//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's composable connection pipeline style,
// generalized into a three-method back-end capability set
// (drive the handshake / drain ciphertext into the queue / encrypt and send).
//

package tlssession

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"time"

	"github.com/nop-tls/tlssession/errmap"
)

// backend hides the three platform-specific TLS driving strategies
// (record-oriented, async-callback, fd-wrapped) behind one capability
// set. Exactly one implementation is compiled in, selected by GOOS: see
// backend_windows.go, backend_darwin.go, and backend_unix.go.
type backend interface {
	// process advances the backend by one tick, pushing any newly
	// decrypted packets onto q. It reports the state the session
	// should expose for this tick. [PacketQueueFilled] is transient
	// (see state.go) and must never be cached as b's own error state.
	process(q *queue) State

	// send encrypts and transmits src, returning the number of bytes
	// accepted, or -1 on error.
	send(ctx context.Context, src []byte) int

	// disconnect tears the backend down. Idempotent.
	disconnect()
}

// handshakeOutcome is delivered on the buffered channel each back-end's
// handshake goroutine feeds. crypto/tls exposes no non-blocking or
// resumable handshake API, so every back-end substitutes a dedicated
// goroutine for the platform's async credential negotiation and polls
// the channel from its own process() instead of blocking the caller.
type handshakeOutcome struct {
	conn *tls.Conn
	err  error
}

// stateFromErr classifies err via [errmap.Classify] and converts it to
// the matching error [State]. err must not be nil.
func stateFromErr(err error) State {
	return stateFromKind(errmap.Classify(err))
}

// pollDeadline is the read deadline every polling back-end (record-
// oriented, fd-wrapped) sets before each drain attempt, substituting
// for a zero-timeout readiness poll on the raw socket: a read that
// would block instead returns a timeout error almost immediately, which
// drainPolling treats as "nothing to do yet" rather than a failure.
const pollDeadline = 1 * time.Millisecond

// drainPolling is the shared drain loop for the record-oriented and
// fd-wrapped back-ends: read decrypted application data from tconn
// until it would block (crypto/tls buffers ciphertext, invokes the
// record layer's decrypt, and detects EOF/alerts internally), pushing
// each non-empty read as one packet, then report the resulting state.
//
// disconnected tracks whether the peer has already sent close_notify, so
// repeated ticks after that don't re-derive it from a second io.EOF.
func drainPolling(tconn *tls.Conn, q *queue, disconnected *bool) State {
	if *disconnected {
		if q.len() == 0 {
			return Disconnected
		}
		return DisconnectedDraining
	}

	buf := make([]byte, maxRecordPayload)

	for {
		// Checking fullness before reading keeps back-pressure lossless:
		// a byte consumed from the TLS layer has already been decrypted
		// and cannot be put back, so it must never race a full queue.
		if q.full() {
			return PacketQueueFilled
		}
		_ = tconn.SetReadDeadline(time.Now().Add(pollDeadline))
		n, err := tconn.Read(buf)
		if n > 0 {
			packetBuf := make([]byte, n)
			copy(packetBuf, buf[:n])
			q.push(packetBuf)
		}
		if err != nil {
			if isTimeout(err) {
				break
			}
			if isCleanEOF(err) {
				*disconnected = true
				break
			}
			return stateFromErr(err)
		}
		if n == 0 {
			break
		}
	}

	if *disconnected {
		if q.len() == 0 {
			return Disconnected
		}
		return DisconnectedDraining
	}
	return Connected
}

// isTimeout reports whether err is the "would block" sentinel
// drainPolling's artificial poll deadline produces.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isCleanEOF reports whether err is the peer's clean TLS-layer shutdown
// (close_notify surfaces as io.EOF from [*tls.Conn.Read]).
func isCleanEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// sendLoop writes src in a loop that treats the would-block sentinel as
// a retry rather than an error, accumulating the count of bytes
// accepted. crypto/tls splits oversized payloads into records and
// encrypts them internally on every Write call, so the loop here only
// needs to handle partial writes and transient would-block errors.
func sendLoop(tconn *tls.Conn, src []byte) (int, error) {
	total := 0
	for total < len(src) {
		n, err := tconn.Write(src[total:])
		total += n
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return total, err
		}
	}
	return total, nil
}
