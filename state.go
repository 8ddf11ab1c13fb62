// SPDX-License-Identifier: GPL-3.0-or-later

package tlssession

import "github.com/nop-tls/tlssession/errmap"

// State is the signed-integer session state enumeration. Negative
// values are absorbing error terminals (see [errmap.Kind]); zero is
// clean closure; positive values denote progress. The numeric layout is
// stable so callers can compare against fixed codes.
type State int8

const (
	// BadCertificate mirrors [errmap.BadCertificate].
	BadCertificate State = State(errmap.BadCertificate)
	// ServerAskedForClientCerts mirrors [errmap.ServerAskedForClientCerts].
	ServerAskedForClientCerts State = State(errmap.ServerAskedForClientCerts)
	// CertificateExpired mirrors [errmap.CertificateExpired].
	CertificateExpired State = State(errmap.CertificateExpired)
	// BadHostname mirrors [errmap.BadHostname].
	BadHostname State = State(errmap.BadHostname)
	// CannotVerifyCAChain mirrors [errmap.CannotVerifyCAChain].
	CannotVerifyCAChain State = State(errmap.CannotVerifyCAChain)
	// NoMatchingEncryptionAlgorithms mirrors [errmap.NoMatchingEncryptionAlgorithms].
	NoMatchingEncryptionAlgorithms State = State(errmap.NoMatchingEncryptionAlgorithms)
	// InvalidSocket mirrors [errmap.InvalidSocket].
	InvalidSocket State = State(errmap.InvalidSocket)
	// UnknownError mirrors [errmap.Unknown].
	UnknownError State = State(errmap.Unknown)

	// Disconnected is the clean, terminal, zero state: fully closed,
	// nothing left to drain.
	Disconnected State = 0

	// DisconnectedDraining means the remote closed the TLS layer but
	// buffered plaintext remains for the caller to [Session.Read].
	DisconnectedDraining State = 1

	// Pending means the handshake is in progress; more [Session.Process]
	// calls are needed.
	Pending State = 2

	// Connected means the TLS tunnel is open and the application may
	// [Session.Send]/[Session.Read].
	Connected State = 3

	// PacketQueueFilled is a transient back-pressure signal returned by
	// [Session.Process]; it is never stored as the session's persistent
	// state, and it clears as soon as the caller drains the queue via
	// [Session.Read].
	PacketQueueFilled State = 4
)

// IsError reports whether s is one of the eight absorbing error states.
func (s State) IsError() bool {
	return s < 0
}

// IsTerminal reports whether s can never transition again: every error
// state, plus the clean Disconnected state.
func (s State) IsTerminal() bool {
	return s <= 0
}

// String renders the state's stable name, suitable for showing a human
// which terminal condition a session reached.
func (s State) String() string {
	switch s {
	case BadCertificate:
		return "BAD_CERTIFICATE"
	case ServerAskedForClientCerts:
		return "SERVER_ASKED_FOR_CLIENT_CERTS"
	case CertificateExpired:
		return "CERTIFICATE_EXPIRED"
	case BadHostname:
		return "BAD_HOSTNAME"
	case CannotVerifyCAChain:
		return "CANNOT_VERIFY_CA_CHAIN"
	case NoMatchingEncryptionAlgorithms:
		return "NO_MATCHING_ENCRYPTION_ALGORITHMS"
	case InvalidSocket:
		return "INVALID_SOCKET"
	case UnknownError:
		return "UNKNOWN_ERROR"
	case Disconnected:
		return "DISCONNECTED"
	case DisconnectedDraining:
		return "DISCONNECTED_DRAINING"
	case Pending:
		return "PENDING"
	case Connected:
		return "CONNECTED"
	case PacketQueueFilled:
		return "PACKET_QUEUE_FILLED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// stateFromKind converts an [errmap.Kind] into its matching error [State].
func stateFromKind(k errmap.Kind) State {
	return State(k)
}
