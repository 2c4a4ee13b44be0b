// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package ns provides namespace constants used by the xmpp package and its
// subpackages.
package ns // import "gosxmpp.im/xmpp/internal/ns"

// List of namespaces used by the transport core, per spec.md §6.
const (
	Client   = "jabber:client"
	Server   = "jabber:server"
	Stream   = "http://etherx.jabber.org/streams"
	Bind     = "urn:ietf:params:xml:ns:xmpp-bind"
	SASL     = "urn:ietf:params:xml:ns:xmpp-sasl"
	StartTLS = "urn:ietf:params:xml:ns:xmpp-tls"
	XML      = "http://www.w3.org/XML/1998/namespace"

	Ping        = "urn:xmpp:ping"
	Bytestreams = "http://jabber.org/protocol/bytestreams"
	DiscoItems  = "http://jabber.org/protocol/disco#items"
	Stanza      = "urn:ietf:params:xml:ns:xmpp-stanzas"
)
