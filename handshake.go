//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's tls.go.
//

package tlssession

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"net"
	"time"
)

// newTLSConfig builds the restricted [*tls.Config] every back-end uses
// to drive the platform TLS engine: TLS 1.2 and 1.3 only, strong-crypto
// cipher selection (Go's default suite ordering already excludes weak
// ciphers), automatic server-certificate validation against the
// platform trust store with InsecureSkipVerify left false, and no
// client certificates.
func newTLSConfig(hostname string) *tls.Config {
	return &tls.Config{
		ServerName:         hostname,
		MinVersion:         tls.VersionTLS12,
		MaxVersion:         tls.VersionTLS13,
		InsecureSkipVerify: false,
		Certificates:       nil,
	}
}

// tlsConfigFor is the entry point every back-end uses to build its
// handshake [*tls.Config]: [newTLSConfig] plus cfg's unexported
// rootCAs override, which is nil (meaning "use the platform trust
// store") outside this package's own tests.
func tlsConfigFor(hostname string, cfg *Config) *tls.Config {
	tc := newTLSConfig(hostname)
	if cfg.rootCAs != nil {
		tc.RootCAs = cfg.rootCAs
	}
	return tc
}

// handshake performs the TLS handshake over conn using config, logging
// tlsSessionHandshakeStart/tlsSessionHandshakeDone span events. It
// returns either a ready [*tls.Conn] or an error; on error, conn is
// closed before returning (the resource-cleanup contract every
// connection-producing step in this module follows).
//
// This call blocks until the handshake completes, fails, or ctx is done.
// Every back-end invokes it from its own driving goroutine (see
// backend_windows.go, backend_darwin.go, backend_unix.go) so that
// [Session.Process] itself never blocks.
func handshake(ctx context.Context, conn net.Conn, config *tls.Config,
	errClassifier ErrClassifier, logger SLogger, timeNow func() time.Time) (*tls.Conn, error) {

	tconn := tls.Client(conn, config)
	t0 := timeNow()
	deadline, _ := ctx.Deadline()
	logHandshakeStart(logger, conn, config, t0, deadline)

	err := tconn.HandshakeContext(ctx)
	state := tconn.ConnectionState()
	logHandshakeDone(logger, errClassifier, conn, config, t0, timeNow(), deadline, err, state)

	if err != nil {
		tconn.Close()
		return nil, err
	}
	return tconn, nil
}

func logHandshakeStart(logger SLogger, conn net.Conn, config *tls.Config, t0, deadline time.Time) {
	logger.Info(
		"tlsSessionHandshakeStart",
		slog.Time("deadline", deadline),
		slog.String("localAddr", safeLocalAddr(conn)),
		slog.String("remoteAddr", safeRemoteAddr(conn)),
		slog.Time("t", t0),
		slog.String("tlsServerName", config.ServerName),
		slog.Bool("tlsSkipVerify", config.InsecureSkipVerify),
	)
}

func logHandshakeDone(logger SLogger, errClassifier ErrClassifier, conn net.Conn, config *tls.Config,
	t0, t time.Time, deadline time.Time, err error, state tls.ConnectionState) {
	logger.Info(
		"tlsSessionHandshakeDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", errClassifier.Classify(err)),
		slog.String("localAddr", safeLocalAddr(conn)),
		slog.String("remoteAddr", safeRemoteAddr(conn)),
		slog.Time("t0", t0),
		slog.Time("t", t),
		slog.String("tlsCipherSuite", tls.CipherSuiteName(state.CipherSuite)),
		slog.String("tlsNegotiatedProtocol", state.NegotiatedProtocol),
		slog.Any("tlsPeerCerts", peerCertDERs(state, err)),
		slog.String("tlsServerName", config.ServerName),
		slog.String("tlsVersion", tls.VersionName(state.Version)),
	)
}

// peerCertDERs extracts the raw DER bytes of the certificate a handshake
// failure names, falling back to the negotiated peer chain on success.
// This mirrors the verification-error extraction bassosimone/nop's tls.go
// peerCerts helper performs, generalized to the errors crypto/tls's
// HandshakeContext can return.
func peerCertDERs(state tls.ConnectionState, err error) (out [][]byte) {
	out = [][]byte{}

	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		out = append(out, hostnameErr.Certificate.Raw)
		return
	}

	var unknownAuthorityErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthorityErr) {
		out = append(out, unknownAuthorityErr.Cert.Raw)
		return
	}

	var certInvalidErr x509.CertificateInvalidError
	if errors.As(err, &certInvalidErr) {
		out = append(out, certInvalidErr.Cert.Raw)
		return
	}

	for _, cert := range state.PeerCertificates {
		out = append(out, cert.Raw)
	}
	return
}
