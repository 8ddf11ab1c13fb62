// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's config.go.

package tlssession

import (
	"context"
	"crypto/x509"
	"net"
	"time"
)

// Config holds common configuration for [Connect].
//
// Pass this to [Connect] to pre-wire dependencies. All fields have
// sensible defaults set by [NewConfig].
type Config struct {
	// Dialer is used to establish the underlying TCP connection by the
	// record-oriented and async-callback back-ends. The fd-wrapped
	// back-end creates its own socket and does not use it.
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging. This is
	// independent of the closed error taxonomy (see package errmap)
	// that drives [State]; it only produces a free-form string for log
	// lines.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use for structured logging.
	//
	// Set by [NewConfig] to [DefaultSLogger].
	Logger SLogger

	// QueueCapacity is the packet queue's fixed capacity.
	//
	// Set by [NewConfig] to 64.
	QueueCapacity int

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// rootCAs overrides the trust store used to verify the server
	// certificate. Deliberately unexported: custom trust anchors are
	// not a supported feature, so this exists only to let this
	// package's own tests exercise both the success and failure
	// handshake paths against a hermetic local listener without
	// reaching the public internet.
	rootCAs *x509.CertPool
}

// Dialer abstracts [*net.Dialer]'s DialContext behavior, allowing
// alternative or test-double dialers.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialer:        &net.Dialer{},
		ErrClassifier: DefaultErrClassifier,
		Logger:        DefaultSLogger(),
		QueueCapacity: defaultQueueCapacity,
		TimeNow:       time.Now,
	}
}
