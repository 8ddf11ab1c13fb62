// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: the errors.As cascade in bassosimone/nop's tls.go peerCerts
// helper, generalized from "extract a certificate" to "pick a Kind".

package errmap

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
)

// Classify maps a Go error produced by [crypto/tls] or [crypto/x509] (or a
// plain transport error) onto one of the eight closed [Kind] values.
//
// Representative mappings:
//
//   - certificate-expired family                       -> CertificateExpired
//   - hostname mismatch / no such host                 -> BadHostname
//   - untrusted root / unknown CA                       -> CannotVerifyCAChain
//   - cipher/protocol/ALPN negotiation failure           -> NoMatchingEncryptionAlgorithms
//   - malformed/revoked/type-unsupported certificate     -> BadCertificate
//   - server requests a client certificate               -> ServerAskedForClientCerts
//   - socket-level failures                              -> InvalidSocket
//   - anything unrecognized                              -> Unknown
//
// A nil error has no defined Kind; callers must not call Classify(nil).
func Classify(err error) Kind {
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return BadHostname
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return BadHostname
	}

	var unknownAuthorityErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthorityErr) {
		return CannotVerifyCAChain
	}

	var certInvalidErr x509.CertificateInvalidError
	if errors.As(err, &certInvalidErr) {
		if certInvalidErr.Reason == x509.Expired {
			return CertificateExpired
		}
		return BadCertificate
	}

	var recordHeaderErr tls.RecordHeaderError
	if errors.As(err, &recordHeaderErr) {
		// crypto/tls reports a record exceeding the wire-format limit
		// with this message. A peer flooding the handshake is not a
		// negotiation failure, so it does not get a specific kind.
		if strings.HasPrefix(recordHeaderErr.Msg, "oversized record") {
			return Unknown
		}
		return NoMatchingEncryptionAlgorithms
	}

	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return classifyAlert(alertErr)
	}

	// A raw platform errno anywhere in the chain gets the per-platform
	// table first, so that the errnos it names classify identically
	// whether they arrive bare from a syscall or wrapped by net.
	if k, ok := classifyErrno(err); ok {
		return k
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return InvalidSocket
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return InvalidSocket
	}

	return Unknown
}

// classifyAlert maps the handful of TLS alert codes with an obvious
// home in the taxonomy; everything else is Unknown rather than guessed
// at.
func classifyAlert(alert tls.AlertError) Kind {
	switch uint8(alert) {
	case 40, // handshake_failure
		71,  // insufficient_security
		109, // no_application_protocol
		70:  // protocol_version
		return NoMatchingEncryptionAlgorithms
	case 42, // bad_certificate
		43, // unsupported_certificate
		44: // certificate_revoked
		return BadCertificate
	case 48, // unknown_ca
		46: // certificate_unknown (treated as chain-verification failure here)
		return CannotVerifyCAChain
	case 111: // certificate_required
		return ServerAskedForClientCerts
	default:
		return Unknown
	}
}
