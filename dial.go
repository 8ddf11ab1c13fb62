//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's connect.go.
//

package tlssession

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"
)

// dialTCP resolves hostname in an address-family-agnostic way (both
// IPv4 and IPv6 are accepted, never forcing IPv4) and dials port over
// it using dialer.
// It is the common connect-phase helper shared by every back-end's
// connect implementation (backend_windows.go, backend_darwin.go,
// backend_unix.go each layer their own socket-family/non-blocking-connect
// handling on top of, or instead of, this helper — see each file).
func dialTCP(ctx context.Context, dialer Dialer, hostname string, port int,
	errClassifier ErrClassifier, logger SLogger, timeNow func() time.Time) (net.Conn, error) {

	address := net.JoinHostPort(hostname, strconv.Itoa(port))

	t0 := timeNow()
	deadline, _ := ctx.Deadline()
	logDialStart(logger, address, t0, deadline)

	conn, err := dialer.DialContext(ctx, "tcp", address)

	logDialDone(logger, errClassifier, address, conn, t0, timeNow(), deadline, err)
	return conn, err
}

func logDialStart(logger SLogger, address string, t0, deadline time.Time) {
	logger.Info(
		"tlsSessionConnectStart",
		slog.Time("deadline", deadline),
		slog.String("protocol", "tcp"),
		slog.String("remoteAddr", address),
		slog.Time("t", t0),
	)
}

func logDialDone(logger SLogger, errClassifier ErrClassifier, address string,
	conn net.Conn, t0, t time.Time, deadline time.Time, err error) {
	logger.Info(
		"tlsSessionConnectDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", errClassifier.Classify(err)),
		slog.String("localAddr", safeLocalAddr(conn)),
		slog.String("protocol", "tcp"),
		slog.String("remoteAddr", address),
		slog.Time("t0", t0),
		slog.Time("t", t),
	)
}
