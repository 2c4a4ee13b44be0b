// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package session

import (
	"gosxmpp.im/xmpp/stanza"
)

// readLoop is the C4 reader loop (spec.md §4.4.3): it pulls one top-level
// stanza at a time off the stream parser, routes IQ responses directly to
// their blocking/async waiter, and otherwise enqueues the stanza for the
// dispatcher loop. A parse or protocol error is fatal and cancels the
// session.
func (s *Session) readLoop() {
	defer close(s.readerDone)
	for {
		start, d, err := s.parser.Next("iq", "message", "presence")
		if err != nil {
			s.fatal(err)
			return
		}
		switch start.Name.Local {
		case "iq":
			var iq stanza.IQ
			if err := d.DecodeElement(&iq, &start); err != nil {
				s.fatal(ErrProtocolViolation)
				return
			}
			if s.config.DebugStanzas {
				s.config.logger().Printf("session: received: %+v", iq)
			}
			if iq.IsResponse() {
				if !s.pending.deliver(iq) {
					s.config.logger().Printf("session: orphaned iq response id=%s", iq.ID)
				}
				continue
			}
			if !s.enqueue(iq) {
				return
			}
		case "message":
			var msg stanza.Message
			if err := d.DecodeElement(&msg, &start); err != nil {
				s.fatal(ErrProtocolViolation)
				return
			}
			if s.config.DebugStanzas {
				s.config.logger().Printf("session: received: %+v", msg)
			}
			if !s.enqueue(msg) {
				return
			}
		case "presence":
			var pres stanza.Presence
			if err := d.DecodeElement(&pres, &start); err != nil {
				s.fatal(ErrProtocolViolation)
				return
			}
			if s.config.DebugStanzas {
				s.config.logger().Printf("session: received: %+v", pres)
			}
			if !s.enqueue(pres) {
				return
			}
		}
	}
}

// enqueue pushes a decoded stanza onto the bounded stanza queue (spec.md
// §5's backpressure mechanism), blocking the reader loop if the
// dispatcher has fallen behind. It reports false if the session closed
// first.
func (s *Session) enqueue(v interface{}) bool {
	select {
	case s.stanzas <- v:
		return true
	case <-s.dispClose:
		return false
	}
}

// dispatchLoop is the C4 dispatcher loop (spec.md §4.4.3): it drains the
// stanza queue and synchronously invokes the matching Handlers callback.
// A panicking handler is recovered, logged, and does not stop the loop.
func (s *Session) dispatchLoop() {
	defer close(s.dispDone)
	for {
		select {
		case v := <-s.stanzas:
			s.dispatch(v)
		case <-s.dispClose:
			s.drain()
			return
		}
	}
}

// drain dispatches any stanzas already queued before returning, so that a
// Close racing with in-flight deliveries doesn't silently drop them.
func (s *Session) drain() {
	for {
		select {
		case v := <-s.stanzas:
			s.dispatch(v)
		default:
			return
		}
	}
}

func (s *Session) dispatch(v interface{}) {
	switch stz := v.(type) {
	case stanza.IQ:
		if h := s.config.Handlers.OnIQ; h != nil {
			s.safeCall(func() { h(stz) })
		}
	case stanza.Message:
		if h := s.config.Handlers.OnMessage; h != nil {
			s.safeCall(func() { h(stz) })
		}
	case stanza.Presence:
		if h := s.config.Handlers.OnPresence; h != nil {
			s.safeCall(func() { h(stz) })
		}
	}
}
