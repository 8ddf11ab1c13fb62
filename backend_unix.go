//go:build unix && !darwin

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Fd-wrapped back-end: raw non-blocking sockets via golang.org/x/sys/unix,
// following the platform-table style of bassosimone/nop's errclass/unix.go.
//

package tlssession

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/nop-tls/tlssession/errmap"
)

// fdBackend is the fd-wrapped back-end: a raw non-blocking socket file
// descriptor, bound into a library-managed connection object (here,
// [net.FileConn]), with crypto/tls layered directly on top rather than
// a custom buffering shim. The fd-wrapped drain is the shared
// read-until-blocked loop ([drainPolling]), with no incoming-buffer
// bookkeeping; each non-empty read becomes its own packet, so the
// plaintext of one tick is not merged into a single packet.
type fdBackend struct {
	handshakeCh  <-chan handshakeOutcome
	tconn        *tls.Conn
	disconnected bool
	errState     State
	cfg          *Config
	closed       bool
}

var _ backend = &fdBackend{}

// newFDBackend resolves hostname address-family-agnostically (never
// forcing IPv4), creates a non-blocking socket of the matching family,
// and initiates connect(2), tolerating EINPROGRESS. It then hands the
// resulting fd-backed [net.Conn] off to the handshake goroutine,
// exactly like every other back-end here.
func newFDBackend(ctx context.Context, hostname string, port int, cfg *Config) *fdBackend {
	out := make(chan handshakeOutcome, 1)
	b := &fdBackend{handshakeCh: out, cfg: cfg}

	go func() {
		rawConn, err := connectFD(ctx, hostname, port)
		if err != nil {
			out <- handshakeOutcome{err: err}
			return
		}
		observed := newObservedConn(rawConn, cfg.ErrClassifier, cfg.Logger, cfg.TimeNow)
		tconn, err := handshake(ctx, observed, tlsConfigFor(hostname, cfg), cfg.ErrClassifier, cfg.Logger, cfg.TimeNow)
		out <- handshakeOutcome{conn: tconn, err: err}
	}()

	return b
}

// connectFD performs the fd-wrapped connect sequence: resolve, create a
// non-blocking socket of the resolved family, connect tolerating
// EINPROGRESS, then bind the fd into a [net.FileConn].
func connectFD(ctx context.Context, hostname string, port int) (net.Conn, error) {
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", hostname)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, &net.DNSError{Err: "no addresses found", Name: hostname, IsNotFound: true}
	}
	ip := ips[0]

	family := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := ip.To4(); ip4 != nil {
		addr := &unix.SockaddrInet4{Port: port}
		copy(addr.Addr[:], ip4)
		sa = addr
	} else {
		family = unix.AF_INET6
		addr := &unix.SockaddrInet6{Port: port}
		copy(addr.Addr[:], ip.To16())
		sa = addr
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, wrapSocketErr(err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, wrapSocketErr(err)
	}

	err = unix.Connect(fd, sa)
	if err != nil {
		var errno unix.Errno
		if !errors.As(err, &errno) || !errmap.IsRetryable(errno) {
			unix.Close(fd)
			return nil, wrapSocketErr(err)
		}
	}

	// A connect(2) initiated on a non-blocking socket completes
	// asynchronously; select(2)/poll(2) for writability is the
	// idiomatic wait, but net.FileConn's deadline plumbing gives us
	// the same tolerance for free once wrapped, so we hand the fd off
	// immediately and let the handshake's first Write surface any
	// pending connect error.
	file := os.NewFile(uintptr(fd), hostname)
	conn, err := net.FileConn(file)
	file.Close()
	if err != nil {
		return nil, wrapSocketErr(err)
	}
	return conn, nil
}

// wrapSocketErr wraps a raw unix.Errno in a [*net.OpError], keeping the
// errno in the chain so [errmap.Classify] can dispatch it through the
// platform errno table.
func wrapSocketErr(err error) error {
	return &net.OpError{Op: "connect", Net: "tcp", Err: err}
}

func (b *fdBackend) process(q *queue) State {
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

func (b *fdBackend) send(ctx context.Context, src []byte) int {
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

func (b *fdBackend) disconnect() {
	if b.closed {
		return
	}
	b.closed = true
	if b.tconn != nil {
		b.tconn.Close()
	}
}

// newPlatformBackend is the GOOS-selected backend constructor [Connect]
// calls; see backend_windows.go and backend_darwin.go for the other two
// variants. q is unused here since the fd-wrapped back-end's queue is
// never shared with a producer goroutine and needs no lock.
func newPlatformBackend(ctx context.Context, hostname string, port int, cfg *Config, q *queue) backend {
	return newFDBackend(ctx, hostname, port, cfg)
}
