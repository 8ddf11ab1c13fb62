//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's connection lifecycle conventions,
// reshaped into a poll-driven five-operation session.
//

package tlssession

import (
	"context"
	"sync"
)

// Session owns one client TLS connection: its state, hostname, packet
// queue, and back-end driver. Exclusively owned by the caller between
// calls; the back-end may hold internal goroutine references (see
// backend_darwin.go). Once a Session's state becomes an error, it never
// leaves it.
type Session struct {
	id       string
	hostname string
	port     int
	backend  backend
	queue    *queue
	state    State
	held     *packet
	heldOff  int
	mu       sync.Mutex
	disc     sync.Once
}

// Connect selects the platform back-end at compile time (see
// backend_windows.go, backend_darwin.go, backend_unix.go), constructs a
// [*Session], and kicks off the non-blocking connect+handshake
// sequence. cfg may be nil, in which case [NewConfig]'s
// defaults apply. Connect itself never blocks: the returned Session
// always starts in [Pending], and the caller drives it forward with
// [Session.Process], which reports any connect or handshake failure
// as a terminal error state.
func Connect(ctx context.Context, hostname string, port int, cfg *Config) *Session {
	if cfg == nil {
		cfg = NewConfig()
	}

	q := newQueue(cfg.QueueCapacity, true)
	s := &Session{
		id:       NewSessionID(),
		hostname: hostname,
		port:     port,
		queue:    q,
		state:    Pending,
	}
	s.backend = newPlatformBackend(ctx, hostname, port, cfg, q)
	return s
}

// ID returns the session's opaque identity, used to correlate its log
// lines.
func (s *Session) ID() string {
	return s.id
}

// Process is the sole tick/poll entry point. It advances
// the back-end by one step and returns the resulting state.
// [PacketQueueFilled] is a transient back-pressure signal: it is
// returned but never stored as s's persistent state, so the very next
// Process call re-derives the real state from scratch.
func (s *Session) Process(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsError() {
		return s.state
	}

	next := s.backend.process(s.queue)
	if next == PacketQueueFilled {
		return next
	}
	// The back-end only sees the queue: a partially-drained held buffer
	// still counts as residual plaintext, so the drain state must persist
	// until [Session.Read] consumes it.
	if next == Disconnected && s.held != nil {
		next = DisconnectedDraining
	}
	s.state = next
	return s.state
}

// Read drains plaintext into dst: pop a packet if none is currently
// held, transition out of
// [DisconnectedDraining] once the queue and held packet are both empty,
// then copy out up to len(dst) bytes, preserving any remainder for the
// next call. It returns the number of bytes written, 0 if none are
// currently available, or -1 if the session is in an error state.
func (s *Session) Read(dst []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsError() {
		return -1
	}

	if s.held == nil {
		if buf, ok := s.queue.pop(); ok {
			s.held = &packet{buf: buf}
			s.heldOff = 0
		}
	}

	if s.state == DisconnectedDraining && s.held == nil && s.queue.len() == 0 {
		s.state = Disconnected
	}

	if s.held == nil {
		return 0
	}

	remaining := s.held.buf[s.heldOff:]
	if len(dst) >= len(remaining) {
		n := copy(dst, remaining)
		s.held = nil
		s.heldOff = 0
		return n
	}

	n := copy(dst, remaining[:len(dst)])
	s.heldOff += n
	return n
}

// Send encrypts and transmits src, returning 0 on success or -1 on
// error (which also sets the session to the matching error state).
func (s *Session) Send(ctx context.Context, src []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsError() {
		return -1
	}

	n := s.backend.send(ctx, src)
	if n < 0 {
		s.state = s.backend.process(s.queue)
		if !s.state.IsError() {
			s.state = UnknownError
		}
		return -1
	}
	return 0
}

// Disconnect idempotently tears the session down: drains and frees
// every queued packet, then releases the back-end. After Disconnect the
// Session must not be used again.
func (s *Session) Disconnect() {
	s.disc.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.backend.disconnect()
		s.queue.drain()
		s.held = nil
	})
}
