// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package session

import (
	"context"
	"encoding/xml"
	"net"
	"sync"

	"gosxmpp.im/xmpp/jid"
	"gosxmpp.im/xmpp/stream"
	"gosxmpp.im/xmpp/transport"
)

// State is a bitmask describing a Session's lifecycle, per spec.md §4.4:
// disconnected -> tcp-open -> tls-open -> authenticated -> resource-bound.
//
//go:generate go run -tags=tools golang.org/x/tools/cmd/stringer -type=State
type State uint32

// Session lifecycle bits.
const (
	// Connected indicates the TCP connection is open.
	Connected State = 1 << iota
	// Secure indicates the connection has been wrapped in TLS.
	Secure
	// Authenticated indicates SASL has completed successfully.
	Authenticated
	// Bound indicates a resource has been bound and the session JID is
	// final.
	Bound
	// Closed indicates Close has been called; no further sends succeed.
	Closed
)

func (s State) String() string {
	if s == 0 {
		return "disconnected"
	}
	names := []struct {
		bit  State
		name string
	}{
		{Connected, "connected"}, {Secure, "secure"}, {Authenticated, "authenticated"},
		{Bound, "bound"}, {Closed, "closed"},
	}
	out := ""
	for _, n := range names {
		if s&n.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}

// Session is a live XMPP client-to-server connection: C1's wire, C2's
// stream parser, C3's SASL engine, and C4's reader/dispatcher loops and
// pending-IQ table, composed per spec.md §4.4.
type Session struct {
	config Config

	mu    sync.RWMutex
	state State
	jid   jid.JID

	wire   *transport.Wire
	parser *stream.Parser

	ids *idGenerator

	pending *pendingTable

	stanzas   chan interface{}
	dispClose chan struct{}
	dispDone  chan struct{}

	readerDone chan struct{}

	closeOnce sync.Once
}

// New constructs a Session and performs the full handshake (spec.md
// §4.4.2) against cfg.Hostname, then starts the reader and dispatcher
// loops. If ctx is canceled before the handshake completes, New returns
// its error; cancellation has no effect once New returns successfully.
func New(ctx context.Context, cfg Config) (*Session, error) {
	s := &Session{
		config:     cfg,
		ids:        newIDGenerator(),
		pending:    newPendingTable(),
		stanzas:    make(chan interface{}, cfg.queueCapacity()),
		dispClose:  make(chan struct{}),
		dispDone:   make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	go s.dispatchLoop()
	go s.readLoop()

	return s, nil
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(bit State) {
	s.mu.Lock()
	s.state |= bit
	s.mu.Unlock()
}

func (s *Session) connected() bool {
	return s.State()&Closed == 0 && s.wire != nil && !s.wire.Disconnected()
}

// JID returns the session's bound address. Before resource binding
// completes it is the bare address derived from configuration.
func (s *Session) JID() jid.JID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jid
}

// LocalAddr returns the underlying wire's local network address.
func (s *Session) LocalAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wire == nil {
		return nil
	}
	return s.wire.LocalAddr()
}

// Close sends the closing </stream:stream> tag, tears down the wire, and
// stops the reader and dispatcher loops (spec.md §4.4.1). Any blocking IQ
// waiters wake with ErrDisconnected before the dispatcher is canceled, per
// spec.md §5's cancellation ordering. Close does not itself fire OnError;
// callers that initiate shutdown already know why.
func (s *Session) Close() error {
	var werr error
	s.mu.Lock()
	wire := s.wire
	alreadyClosed := s.state&Closed != 0
	s.mu.Unlock()
	if !alreadyClosed && wire != nil {
		_, werr = wire.Write([]byte(`</stream:stream>`))
	}
	s.shutdown(ErrDisconnected)
	return werr
}

// fatal marks the session closed, tears down the wire, wakes every
// blocking IQ waiter, and fires OnError exactly once. It is the path a
// reader- or dispatcher-loop failure takes, as opposed to a caller-driven
// Close.
func (s *Session) fatal(err error) {
	newlyClosed := s.shutdown(err)
	if newlyClosed {
		s.emitError(err)
	}
}

// shutdown performs the one-time teardown shared by Close and fatal:
// marking the session closed, closing the wire, waking pending-IQ
// waiters, and stopping the dispatcher loop. It reports whether this call
// performed the teardown (true) or it had already happened (false).
func (s *Session) shutdown(err error) bool {
	newlyClosed := false
	s.closeOnce.Do(func() {
		newlyClosed = true
		s.mu.Lock()
		s.state |= Closed
		wire := s.wire
		s.mu.Unlock()
		if wire != nil {
			wire.Close()
		}
		s.pending.failAll(err)
		close(s.dispClose)
		<-s.dispDone
	})
	return newlyClosed
}

// Authenticate tears down the current connection, reconnects with the
// given credentials, and re-runs the full handshake (spec.md §4.4.1). It
// is the only way to change a session's identity after New: the wire,
// parser, reader/dispatcher loops, and pending-IQ table are all replaced,
// exactly as New builds them the first time. If the handshake fails, the
// session is left closed, matching a failed New.
func (s *Session) Authenticate(ctx context.Context, username, password string) error {
	s.shutdown(ErrDisconnected)
	<-s.readerDone

	s.mu.Lock()
	s.config.Username = username
	s.config.Password = password
	s.state = 0
	s.wire = nil
	s.parser = nil
	s.mu.Unlock()

	s.pending = newPendingTable()
	s.stanzas = make(chan interface{}, s.config.queueCapacity())
	s.dispClose = make(chan struct{})
	s.dispDone = make(chan struct{})
	s.readerDone = make(chan struct{})
	s.closeOnce = sync.Once{}

	if err := s.connect(ctx); err != nil {
		// Neither loop was started, so mark both done before tearing down.
		close(s.dispDone)
		close(s.readerDone)
		s.shutdown(err)
		return err
	}

	go s.dispatchLoop()
	go s.readLoop()

	return nil
}

func (s *Session) emitError(err error) {
	if h := s.config.Handlers.OnError; h != nil {
		s.safeCall(func() { h(err) })
	}
}

func (s *Session) safeCall(f func()) {
	defer func() {
		if r := recover(); r != nil {
			s.config.logger().Printf("session: recovered from panic in event handler: %v", r)
		}
	}()
	f()
}

// writeStanza marshals v (a stanza.Message, stanza.Presence, or stanza.IQ)
// and writes it to the wire under the single exclusive write section
// transport.Wire already serializes (spec.md §5). It refuses once the
// session is closed or the wire has failed.
func (s *Session) writeStanza(v interface{}) error {
	if !s.connected() {
		return ErrClosed
	}
	b, err := xml.Marshal(v)
	if err != nil {
		return err
	}
	if s.config.DebugStanzas {
		s.config.logger().Printf("session: sent: %s", b)
	}
	_, err = s.wire.Write(b)
	return err
}

func domainJID(domain string) jid.JID {
	j, err := jid.New("", domain, "")
	if err != nil {
		return jid.JID{}
	}
	return j
}
