// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package session implements the XMPP Core (spec.md §4.4): the handshake
// that brings up a client-to-server stream, the reader and dispatcher
// loops that drive stanza exchange, and the blocking/async/response IQ
// API built on top of them.
package session // import "gosxmpp.im/xmpp/session"

import (
	"log"
	"time"

	"gosxmpp.im/xmpp/stanza"
	"gosxmpp.im/xmpp/transport"
)

// TLSMode selects how the connection is protected, per spec.md §6.
type TLSMode int

const (
	// None sends everything in the clear and never upgrades.
	None TLSMode = iota
	// StartTLS begins in the clear and upgrades on the server's
	// <starttls/> offer (or fails if the server requires it and this mode
	// isn't selected).
	StartTLS
	// TLSSocket wraps the TCP connection in TLS immediately.
	TLSSocket
)

// Config collects the handshake and runtime parameters enumerated in
// spec.md §6.
type Config struct {
	// Hostname is the peer domain to connect to and authenticate against.
	Hostname string
	// Port is the literal port to use when SRV resolution is skipped or
	// yields nothing; defaults to 5222.
	Port int

	// Username and Password are optional; if Username is empty the
	// handshake stops before SASL (anonymous/deferred-auth mode).
	Username, Password string
	// Resource is the preferred resource name; the server may ignore it.
	Resource string

	// TLS selects the connection's TLS mode. The zero value is None;
	// callers that want the spec's documented default of StartTLS must
	// set it explicitly, since Go's zero value can't distinguish "unset"
	// from "None".
	TLS TLSMode
	// CertValidator is consulted during every TLS handshake; a nil value
	// rejects every certificate (transport.CertValidator's default).
	CertValidator transport.CertValidator

	// DefaultIQTimeout bounds iq_request_blocking calls that don't specify
	// their own timeout. A value <= 0 means infinite.
	DefaultIQTimeout time.Duration

	// DebugStanzas, when set, causes the session to log every stanza sent
	// and received through Logger.
	DebugStanzas bool
	// Logger receives diagnostics the reader/dispatcher loop can't
	// propagate to a caller: orphaned IQ responses, handler panics, and
	// (if DebugStanzas is set) every stanza sent and received. A nil
	// Logger defaults to log.Default().
	Logger *log.Logger

	// StanzaQueueCapacity bounds the dispatcher's inbound stanza queue
	// (spec.md §5's suggested backpressure high-water mark). A value <= 0
	// uses the default of 64.
	StanzaQueueCapacity int

	// LivenessProbe inspects an IQ request immediately before a blocking
	// call on it times out. If it returns true, the session is marked
	// disconnected and OnError fires instead of the call returning
	// Timeout (spec.md §4.4.4, §9's "ping-timeout implies disconnect"
	// heuristic, made configurable per SPEC_FULL.md). The default
	// (DefaultLivenessProbe) reproduces the heuristic verbatim.
	LivenessProbe func(req stanza.IQ) bool

	// Lang is the default xml:lang advertised on the outgoing stream.
	Lang string

	// Handlers receives the session's observable events (spec.md §6).
	Handlers Handlers
}

// Handlers collects the session's observable event callbacks (spec.md §6).
// Any field left nil is simply not invoked. Handlers run on the dispatcher
// loop (or, for OnError, from whichever loop detected the failure); a
// panicking handler is caught, logged, and does not kill the loop (spec.md
// §4.4.3).
type Handlers struct {
	// OnError fires when the session detects a fatal condition such as
	// ErrDisconnected.
	OnError func(err error)
	// OnIQ fires for an inbound IQ request (type get or set).
	OnIQ func(req stanza.IQ)
	// OnMessage fires for an inbound message stanza.
	OnMessage func(msg stanza.Message)
	// OnPresence fires for an inbound presence stanza.
	OnPresence func(pres stanza.Presence)
}

const defaultStanzaQueueCapacity = 64

func (c *Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

func (c *Config) queueCapacity() int {
	if c.StanzaQueueCapacity > 0 {
		return c.StanzaQueueCapacity
	}
	return defaultStanzaQueueCapacity
}

func (c *Config) port() int {
	if c.Port > 0 {
		return c.Port
	}
	return 5222
}

// DefaultLivenessProbe reproduces the heuristic preserved from the source
// (spec.md §4.4.4, §9): a timed-out ping addressed to the session's own
// domain, with no node part, is treated as proof the connection is dead
// rather than merely slow.
func DefaultLivenessProbe(domain string) func(stanza.IQ) bool {
	return func(req stanza.IQ) bool {
		if req.To == nil || req.To.Domainpart() != domain || req.To.Localpart() != "" {
			return false
		}
		return isPing(req.Payload)
	}
}
