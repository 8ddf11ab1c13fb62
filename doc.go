// SPDX-License-Identifier: GPL-3.0-or-later

// Package tlssession is a client-only, poll-driven TLS 1.2/1.3 session
// facility. It lets a caller open a secure stream to a named host, drive
// the handshake to completion by calling [Session.Process] on whatever
// schedule the caller likes, and then exchange application bytes via
// [Session.Read] and [Session.Send].
//
// # Core Abstraction
//
// A [Session] owns one connection's lifecycle, expressed as a small
// [State] enumeration: PENDING while the handshake runs, CONNECTED once
// the tunnel is open, DISCONNECTED_DRAINING/DISCONNECTED on orderly
// close, and eight negative, absorbing error states. No call ever
// blocks: [Session.Process] always returns promptly, reporting PENDING
// again if there is more work to do.
//
//	sess := Connect(ctx, "example.com", 443, nil)
//	for sess.Process(ctx) == Pending {
//	}
//
// # Back-Ends
//
// The actual TLS engine is supplied by one of three back-ends, selected
// at compile time by GOOS (see backend_windows.go, backend_darwin.go,
// backend_unix.go), mirroring the platform-native facilities a
// production build of this facility would drive: a Windows
// SChannel-style credential/context pair, an Apple
// Network-framework-style managed connection, and a third-party client
// wrapper elsewhere on UNIX. All three implement the same three-method
// [backend] capability set (drive the handshake, drain ciphertext into
// the packet queue, encrypt and send) so the [Session] state machine
// never depends on which one is active.
//
// # Packet Queue
//
// Decrypted application data is never pushed synchronously to the
// caller: each back-end deposits plaintext packets into a bounded FIFO
// (see queue.go), and [Session.Read] pulls from it, copying out at most
// the caller's buffer capacity and preserving the remainder for the next
// call. A full queue makes [Session.Process] return PACKET_QUEUE_FILLED
// — a transient back-pressure signal, not a state change — until the
// caller drains it.
//
// # Error Taxonomy
//
// Back-end-native failures (expired certificates, hostname mismatches,
// untrusted roots, cipher negotiation failures, and so on) are mapped by
// package errmap onto eight closed kinds, which become the session's
// negative [State] values. Error states are absorbing: once set, every
// subsequent call reports the same state until the caller discards the
// session and creates a new one.
//
// # Observability
//
// All operations support structured logging via [SLogger] (compatible
// with [log/slog]); by default logging is disabled. Error
// classification for log lines is configurable via [ErrClassifier] and
// is separate from the closed errmap taxonomy that drives [State]. Use
// [NewSessionID] to correlate one session's log lines.
//
// # Non-goals
//
// Server mode, client certificate authentication, renegotiation,
// exposed session resumption, custom trust anchors, compression, any
// blocking I/O contract, and any cryptographic algorithm guarantee
// beyond "whatever the back-end offers, restricted to TLS 1.2 or 1.3".
package tlssession
