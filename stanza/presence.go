// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stanza

import (
	"encoding/xml"

	"golang.org/x/text/language"

	"gosxmpp.im/xmpp/jid"
)

// PresenceType is the type of a presence stanza.
type PresenceType string

// Presence types defined by RFC 6120 §4.7.1.
const (
	ErrorPresence        PresenceType = "error"
	ProbePresence        PresenceType = "probe"
	SubscribePresence    PresenceType = "subscribe"
	SubscribedPresence   PresenceType = "subscribed"
	UnavailablePresence  PresenceType = "unavailable"
	UnsubscribePresence  PresenceType = "unsubscribe"
	UnsubscribedPresence PresenceType = "unsubscribed"
)

// Presence advertises availability for communication, per spec.md §3: to,
// from, id, and language are optional, and it may carry zero or more child
// elements (a <show/>, a <status/>, a <priority/>, or extensions).
type Presence struct {
	XMLName xml.Name     `xml:"presence"`
	ID      string       `xml:"id,attr,omitempty"`
	To      *jid.JID     `xml:"to,attr"`
	From    *jid.JID     `xml:"from,attr"`
	Lang    string       `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Type    PresenceType `xml:"type,attr,omitempty"`
	Payload []byte       `xml:",innerxml"`
}

// Language returns the stanza's xml:lang as a parsed language.Tag.
func (p Presence) Language() language.Tag { return parseLang(p.Lang) }

// StartElement returns the xml.StartElement this presence would marshal to,
// without its payload, for use with xmlstream.Wrap (see WrapPresence).
func (p Presence) StartElement() xml.StartElement {
	start := xml.StartElement{Name: xml.Name{Local: "presence"}}
	if p.ID != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: p.ID})
	}
	if p.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "type"}, Value: string(p.Type)})
	}
	if a, ok := addrAttr("to", p.To); ok {
		start.Attr = append(start.Attr, a)
	}
	if a, ok := addrAttr("from", p.From); ok {
		start.Attr = append(start.Attr, a)
	}
	if a, ok := langAttr(p.Lang); ok {
		start.Attr = append(start.Attr, a)
	}
	return start
}
