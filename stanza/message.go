// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stanza

import (
	"encoding/xml"

	"golang.org/x/text/language"

	"gosxmpp.im/xmpp/jid"
)

// MessageType is the type of a message stanza.
type MessageType string

// Message types defined by RFC 6120 §5.2.2.
const (
	NormalMessage  MessageType = "normal"
	ChatMessage    MessageType = "chat"
	GroupChat      MessageType = "groupchat"
	HeadlineMsg    MessageType = "headline"
	ErrorMessage   MessageType = "error"
)

// Message is a "push" stanza used to deliver information between entities in
// near-real time, per spec.md §3: to, from, id, language are all optional,
// and it carries a single opaque child element.
type Message struct {
	XMLName xml.Name    `xml:"message"`
	ID      string      `xml:"id,attr,omitempty"`
	To      *jid.JID    `xml:"to,attr"`
	From    *jid.JID    `xml:"from,attr"`
	Lang    string      `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Type    MessageType `xml:"type,attr,omitempty"`
	Payload []byte      `xml:",innerxml"`
}

// Language returns the stanza's xml:lang as a parsed language.Tag.
func (m Message) Language() language.Tag { return parseLang(m.Lang) }

// StartElement returns the xml.StartElement this message would marshal to,
// without its payload, for use with xmlstream.Wrap (see WrapMessage).
func (m Message) StartElement() xml.StartElement {
	start := xml.StartElement{Name: xml.Name{Local: "message"}}
	if m.ID != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: m.ID})
	}
	if m.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "type"}, Value: string(m.Type)})
	}
	if a, ok := addrAttr("to", m.To); ok {
		start.Attr = append(start.Attr, a)
	}
	if a, ok := addrAttr("from", m.From); ok {
		start.Attr = append(start.Attr, a)
	}
	if a, ok := langAttr(m.Lang); ok {
		start.Attr = append(start.Attr, a)
	}
	return start
}
