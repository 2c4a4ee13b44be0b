// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package session

import (
	"bytes"
	"encoding/xml"
	"sync"
	"time"

	"gosxmpp.im/xmpp/internal/ns"
	"gosxmpp.im/xmpp/stanza"
)

// pendingTable is the concurrent-safe waiter table described in spec.md
// §4.4.4: a request is inserted by the caller before the request is
// written, and removed either by the reader loop (on a matching response)
// or by whichever caller gives up first (timeout, cancellation).
type pendingTable struct {
	mu      sync.Mutex
	waiters map[string]chan stanza.IQ
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[string]chan stanza.IQ)}
}

func (t *pendingTable) register(id string) chan stanza.IQ {
	ch := make(chan stanza.IQ, 1)
	t.mu.Lock()
	t.waiters[id] = ch
	t.mu.Unlock()
	return ch
}

func (t *pendingTable) forget(id string) {
	t.mu.Lock()
	delete(t.waiters, id)
	t.mu.Unlock()
}

// deliver routes a response to its waiter, reporting whether one was
// found. An id with no registered waiter is an orphaned response (spec.md
// §4.4.4): the reader loop logs it rather than treating it as an error.
func (t *pendingTable) deliver(resp stanza.IQ) bool {
	t.mu.Lock()
	ch, ok := t.waiters[resp.ID]
	if ok {
		delete(t.waiters, resp.ID)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- resp
	return true
}

// failAll wakes every blocked waiter by closing its channel, so that
// IQRequestBlocking callers don't hang forever past a fatal disconnect
// (spec.md §5's cancellation ordering); a closed channel reads as the zero
// IQ with ok=false, which IQRequestBlocking turns into ErrDisconnected.
func (t *pendingTable) failAll(err error) {
	t.mu.Lock()
	waiters := t.waiters
	t.waiters = make(map[string]chan stanza.IQ)
	t.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}

// SendMessage writes a message stanza to the wire (spec.md §6).
func (s *Session) SendMessage(msg stanza.Message) error {
	return s.writeStanza(msg)
}

// SendPresence writes a presence stanza to the wire (spec.md §6).
func (s *Session) SendPresence(pres stanza.Presence) error {
	return s.writeStanza(pres)
}

// SendIQResponse replies to a previously received request IQ; the caller
// builds the response payload (spec.md §6's iq_response operation, with
// the convenience constructors in the stanza package covering the common
// error case).
func (s *Session) SendIQResponse(resp stanza.IQ) error {
	if !resp.IsResponse() {
		return ErrProtocolViolation
	}
	return s.writeStanza(resp)
}

// IQRequestBlocking sends req and waits up to timeout for a matching
// result or error response, per spec.md §4.4.4 and §5. timeout == 0 asks
// for the session-configured default (s.config.DefaultIQTimeout, itself
// infinite if <= 0); timeout == -1 waits indefinitely; any other negative
// value is rejected with ErrNegativeTimeout. If the LivenessProbe fires on
// timeout, the session is marked disconnected and ErrDisconnected is
// returned instead of ErrTimeout.
func (s *Session) IQRequestBlocking(req stanza.IQ, timeout time.Duration) (stanza.IQ, error) {
	if timeout < 0 && timeout != -1 {
		return stanza.IQ{}, ErrNegativeTimeout
	}
	if timeout == 0 {
		if s.config.DefaultIQTimeout <= 0 {
			timeout = -1
		} else {
			timeout = s.config.DefaultIQTimeout
		}
	}
	if req.ID == "" {
		req.ID = s.ids.next()
	}
	if !req.IsRequest() {
		return stanza.IQ{}, ErrProtocolViolation
	}

	ch := s.pending.register(req.ID)
	if err := s.writeStanza(req); err != nil {
		s.pending.forget(req.ID)
		return stanza.IQ{}, err
	}

	if timeout == -1 {
		resp, ok := <-ch
		if !ok {
			return stanza.IQ{}, ErrDisconnected
		}
		return resp, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case resp, ok := <-ch:
		if !ok {
			return stanza.IQ{}, ErrDisconnected
		}
		return resp, nil
	case <-timer.C:
		s.pending.forget(req.ID)
		probe := s.config.LivenessProbe
		if probe == nil {
			probe = DefaultLivenessProbe(s.config.Hostname)
		}
		if probe(req) {
			s.fatal(ErrDisconnected)
			return stanza.IQ{}, ErrDisconnected
		}
		return stanza.IQ{}, ErrTimeout
	}
}

// IQRequestAsync sends req and invokes cb on a goroutine of its own (not
// the reader or dispatcher loop) when a matching response arrives, or with an IQ carrying no payload and
// ok=false if the session disconnects before one does (spec.md §4.4.4's
// async variant).
func (s *Session) IQRequestAsync(req stanza.IQ, cb func(resp stanza.IQ, ok bool)) error {
	if req.ID == "" {
		req.ID = s.ids.next()
	}
	if !req.IsRequest() {
		return ErrProtocolViolation
	}
	ch := s.pending.register(req.ID)
	if err := s.writeStanza(req); err != nil {
		s.pending.forget(req.ID)
		return err
	}
	go func() {
		resp, ok := <-ch
		s.safeCall(func() { cb(resp, ok) })
	}()
	return nil
}

// isPing reports whether an IQ's innerxml payload is a bare ping element
// (urn:xmpp:ping), per spec.md §4.4.4's liveness heuristic.
func isPing(payload []byte) bool {
	d := xml.NewDecoder(bytes.NewReader(payload))
	for {
		tok, err := d.Token()
		if err != nil {
			return false
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local == "ping" && start.Name.Space == ns.Ping
		}
	}
}
