// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package bytestream

import (
	"context"
	"encoding/xml"
	"fmt"
	"sync"

	"gosxmpp.im/xmpp/internal/ns"
	"gosxmpp.im/xmpp/stanza"
)

// Manager tracks open SI sessions by sid so that an incoming bytestreams
// query (spec.md §4.5.4) can be validated against one opened out-of-band
// by the higher-level SI negotiation layer (spec.md §2's non-goal; this
// package only consumes sessions it's handed, it doesn't negotiate them).
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs an empty session table.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Open registers sess under its SID, making it a valid target for a
// subsequent incoming bytestreams query.
func (m *Manager) Open(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.SID] = sess
}

// Close removes and returns the session for sid, if any.
func (m *Manager) Close(sid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sid]
	delete(m.sessions, sid)
	return sess, ok
}

func (m *Manager) lookup(sid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sid]
	return sess, ok
}

// HandleQuery answers an incoming IQ set carrying a bytestreams query, per
// spec.md §4.5.4: validate the sid against an open session with this
// peer, reject udp mode, then try each advertised streamhost in order,
// replying with streamhost-used on first success or ItemNotFound if none
// connect. It returns the IQ response the caller should send back to the
// peer (via Session.SendIQResponse or equivalent).
func (m *Manager) HandleQuery(ctx context.Context, req stanza.IQ) stanza.IQ {
	sid, mode, hosts, err := parseStreamhostsQuery(req.Payload)
	if err != nil {
		return errorResponse(req, stanza.BadRequest, "malformed bytestreams query")
	}

	sess, ok := m.lookup(sid)
	if !ok || req.From == nil || !sess.Initiator.Equal(*req.From) {
		return errorResponse(req, stanza.NotAcceptable, "no open stream-initiation session for this sid")
	}
	if mode == "udp" {
		return stanza.IQ{
			ID: req.ID, To: req.From, Type: stanza.ErrorIQ,
			Payload: marshalErr(stanza.NewError(stanza.Cancel, stanza.FeatureNotImplemented, "udp mode not supported")),
		}
	}

	dest := DestinationHash(sid, sess.Initiator, sess.Target)
	for _, host := range hosts {
		conn, dialErr := dialSocks5(ctx, host.Addr(), dest)
		if dialErr != nil {
			continue
		}
		go func() {
			defer conn.Close()
			_ = sess.stream(sess.Payload, conn)
		}()
		return stanza.IQ{
			ID: req.ID, To: req.From, Type: stanza.ResultIQ,
			Payload: []byte(fmt.Sprintf(`<query xmlns='%s'><streamhost-used jid='%s'/></query>`, ns.Bytestreams, host.JID.String())),
		}
	}
	return errorResponse(req, stanza.ItemNotFound, "no advertised streamhost could be reached")
}

func errorResponse(req stanza.IQ, cond stanza.Condition, text string) stanza.IQ {
	return stanza.IQ{
		ID: req.ID, To: req.From, Type: stanza.ErrorIQ,
		Payload: marshalErr(stanza.NewError(stanza.Cancel, cond, text)),
	}
}

func marshalErr(e stanza.Error) []byte {
	b, err := xml.Marshal(e)
	if err != nil {
		return nil
	}
	return b
}
