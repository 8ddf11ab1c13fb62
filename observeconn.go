//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's observeconn.go.
//

package tlssession

import (
	"log/slog"
	"net"
	"sync"
	"time"
)

// newObservedConn wraps conn so that every I/O operation is logged through
// logger at debug level (Close at info level), using errClassifier/timeNow
// the same way every other span in this package does. Each back-end wraps
// its raw socket conn with this before handing it to [handshake], so that
// the packet queue's producer loops (drainPolling in backend.go, and the
// receive loop in backend_darwin.go) and [Session.Send]'s ciphertext
// writes are both observable without threading logging through the
// platform-specific socket code itself.
func newObservedConn(conn net.Conn, errClassifier ErrClassifier, logger SLogger, timeNow func() time.Time) net.Conn {
	return &observedConn{
		conn:          conn,
		errClassifier: errClassifier,
		laddr:         safeLocalAddr(conn),
		logger:        logger,
		protocol:      safeNetwork(conn),
		raddr:         safeRemoteAddr(conn),
		timeNow:       timeNow,
	}
}

// observedConn observes a [net.Conn].
type observedConn struct {
	closeonce     sync.Once
	conn          net.Conn
	errClassifier ErrClassifier
	laddr         string
	logger        SLogger
	protocol      string
	raddr         string
	timeNow       func() time.Time
}

var _ net.Conn = &observedConn{}

// Close implements [net.Conn].
//
// Subsequent calls return [net.ErrClosed], consistent with Go's standard
// library behavior for closed connections.
func (c *observedConn) Close() (err error) {
	err = net.ErrClosed
	c.closeonce.Do(func() {
		t0 := c.timeNow()
		c.logger.Info(
			"tlsSessionCloseStart",
			slog.String("localAddr", c.laddr),
			slog.String("protocol", c.protocol),
			slog.String("remoteAddr", c.raddr),
			slog.Time("t", t0),
		)

		err = c.conn.Close()

		c.logger.Info(
			"tlsSessionCloseDone",
			slog.Any("err", err),
			slog.String("errClass", c.errClassifier.Classify(err)),
			slog.String("localAddr", c.laddr),
			slog.String("protocol", c.protocol),
			slog.String("remoteAddr", c.raddr),
			slog.Time("t0", t0),
			slog.Time("t", c.timeNow()),
		)
	})
	return
}

// LocalAddr implements [net.Conn].
func (c *observedConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Read implements [net.Conn].
func (c *observedConn) Read(buf []byte) (int, error) {
	t0 := c.timeNow()
	c.logger.Debug(
		"tlsSessionReadStart",
		slog.Int("ioBufferSize", len(buf)),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.Time("t", t0),
	)

	count, err := c.conn.Read(buf)

	c.logger.Debug(
		"tlsSessionReadDone",
		slog.Int("ioBytesCount", count),
		slog.Any("err", err),
		slog.String("errClass", c.errClassifier.Classify(err)),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.Time("t0", t0),
		slog.Time("t", c.timeNow()),
	)

	return count, err
}

// RemoteAddr implements [net.Conn].
func (c *observedConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SetDeadline implements [net.Conn].
func (c *observedConn) SetDeadline(t time.Time) error {
	c.logger.Debug(
		"tlsSessionSetDeadline",
		slog.Time("deadline", t),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.Time("t", c.timeNow()),
	)
	return c.conn.SetDeadline(t)
}

// SetReadDeadline implements [net.Conn].
func (c *observedConn) SetReadDeadline(t time.Time) error {
	c.logger.Debug(
		"tlsSessionSetReadDeadline",
		slog.Time("deadline", t),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.Time("t", c.timeNow()),
	)
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline implements [net.Conn].
func (c *observedConn) SetWriteDeadline(t time.Time) error {
	c.logger.Debug(
		"tlsSessionSetWriteDeadline",
		slog.Time("deadline", t),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.Time("t", c.timeNow()),
	)
	return c.conn.SetWriteDeadline(t)
}

// Write implements [net.Conn].
func (c *observedConn) Write(data []byte) (n int, err error) {
	t0 := c.timeNow()
	c.logger.Debug(
		"tlsSessionWriteStart",
		slog.Int("ioBufferSize", len(data)),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.Time("t", t0),
	)

	count, err := c.conn.Write(data)

	c.logger.Debug(
		"tlsSessionWriteDone",
		slog.Int("ioBytesCount", count),
		slog.Any("err", err),
		slog.String("errClass", c.errClassifier.Classify(err)),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.Time("t0", t0),
		slog.Time("t", c.timeNow()),
	)

	return count, err
}
