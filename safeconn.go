// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/safeconn (nil-safe net.Conn
// address accessors).

package tlssession

import "net"

// safeLocalAddr returns conn's local address as a string, or "" if conn
// or its address is nil. Logging code must never panic because a
// connection is in a partially-constructed state.
func safeLocalAddr(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	if addr := conn.LocalAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// safeRemoteAddr returns conn's remote address as a string, or "" if conn
// or its address is nil.
func safeRemoteAddr(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// safeNetwork returns the network name ("tcp", "tcp4", "tcp6", ...) of
// conn's local address, or "" if unavailable.
func safeNetwork(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	if addr := conn.LocalAddr(); addr != nil {
		return addr.Network()
	}
	return ""
}
