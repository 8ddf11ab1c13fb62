// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's spanid.go.

package tlssession

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSessionID returns a UUIDv7 identifying one [Session].
//
// Attaching this to the [SLogger] (e.g. via [*log/slog.Logger.With])
// correlates every log line a session emits, from [Connect] through
// [Session.Disconnect].
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSessionID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
