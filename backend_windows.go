//go:build windows

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Record-oriented back-end, modeled on the SChannel credential/
// security-context style of driving TLS over an explicit incoming
// ciphertext buffer.
//

package tlssession

import (
	"context"
	"crypto/tls"
	"net"
)

// recordBackend is the record-oriented back-end. It layers crypto/tls
// over [bufferedConn], a [net.Conn] shim that keeps a literal
// record-sized incoming ciphertext buffer with distinct "used" and
// "received" cursors, rather than relying solely on crypto/tls's own
// internal buffering. The buffer is refilled only once every received
// byte has been handed out, and both cursors then reset to zero; it is
// never compacted, since no unconsumed tail is ever left to move.
type recordBackend struct {
	handshakeCh  <-chan handshakeOutcome
	tconn        *tls.Conn
	disconnected bool
	errState     State
	cfg          *Config
	closed       bool
}

var _ backend = &recordBackend{}

// newRecordBackend dials hostname:port with cfg.Dialer, wraps the raw
// connection in [bufferedConn], and drives the handshake on a background
// goroutine exactly like every other back-end here.
func newRecordBackend(ctx context.Context, hostname string, port int, cfg *Config) *recordBackend {
	out := make(chan handshakeOutcome, 1)
	b := &recordBackend{handshakeCh: out, cfg: cfg}

	go func() {
		rawConn, err := dialTCP(ctx, cfg.Dialer, hostname, port, cfg.ErrClassifier, cfg.Logger, cfg.TimeNow)
		if err != nil {
			out <- handshakeOutcome{err: err}
			return
		}
		buffered := newBufferedConn(rawConn)
		observed := newObservedConn(buffered, cfg.ErrClassifier, cfg.Logger, cfg.TimeNow)
		tconn, err := handshake(ctx, observed, tlsConfigFor(hostname, cfg), cfg.ErrClassifier, cfg.Logger, cfg.TimeNow)
		out <- handshakeOutcome{conn: tconn, err: err}
	}()

	return b
}

func (b *recordBackend) process(q *queue) State {
	if b.errState != 0 {
		return b.errState
	}
	if b.tconn == nil {
		select {
		case outcome := <-b.handshakeCh:
			if outcome.err != nil {
				b.errState = stateFromErr(outcome.err)
				return b.errState
			}
			b.tconn = outcome.conn
			return Connected
		default:
			return Pending
		}
	}
	state := drainPolling(b.tconn, q, &b.disconnected)
	if state.IsError() {
		b.errState = state
	}
	return state
}

func (b *recordBackend) send(ctx context.Context, src []byte) int {
	if b.tconn == nil || b.errState != 0 {
		return -1
	}
	n, err := sendLoop(b.tconn, src)
	if err != nil {
		b.errState = stateFromErr(err)
		return -1
	}
	return n
}

func (b *recordBackend) disconnect() {
	if b.closed {
		return
	}
	b.closed = true
	if b.tconn != nil {
		b.tconn.Close()
	}
}

// newPlatformBackend is the GOOS-selected backend constructor [Connect]
// calls; see backend_unix.go and backend_darwin.go for the other two
// variants. q is unused here since the record-oriented back-end's queue
// is never shared with a producer goroutine.
func newPlatformBackend(ctx context.Context, hostname string, port int, cfg *Config, q *queue) backend {
	return newRecordBackend(ctx, hostname, port, cfg)
}

// bufferedConn wraps a raw [net.Conn] with a fixed-size incoming
// ciphertext buffer: one full record plus slack, a "received" cursor
// marking how many bytes are valid, and a "used" cursor marking how
// many of those have already been handed to the caller. Each Read first
// tops the buffer up from the raw connection (if the buffer is
// currently empty of unread bytes), then copies out of [used:received),
// resetting both cursors once fully drained.
type bufferedConn struct {
	net.Conn
	buf      [maxIncomingBuffer]byte
	used     int
	received int
}

func newBufferedConn(conn net.Conn) *bufferedConn {
	return &bufferedConn{Conn: conn}
}

// Read implements [net.Conn]. It never returns more than one fill's
// worth of ciphertext per call.
func (c *bufferedConn) Read(p []byte) (int, error) {
	if c.used == c.received {
		c.used, c.received = 0, 0
		n, err := c.Conn.Read(c.buf[:])
		c.received = n
		if n == 0 && err != nil {
			return 0, err
		}
	}
	n := copy(p, c.buf[c.used:c.received])
	c.used += n
	if c.used == c.received {
		c.used, c.received = 0, 0
	}
	return n, nil
}
