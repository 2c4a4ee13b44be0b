// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stanza

import (
	"encoding/xml"

	"golang.org/x/text/language"
	"mellium.im/xmlstream"

	"gosxmpp.im/xmpp/internal/ns"
	"gosxmpp.im/xmpp/jid"
)

// Kind identifies which of the three stanza variants a value represents.
type Kind int

// The three top-level stanza kinds a stream may exchange, per spec.md §3.
const (
	KindMessage Kind = iota
	KindPresence
	KindIQ
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindPresence:
		return "presence"
	case KindIQ:
		return "iq"
	default:
		return "unknown"
	}
}

// WrapIQ wraps a payload in an iq stanza start/end pair.
func WrapIQ(iq IQ, payload xml.TokenReader) xml.TokenReader {
	return xmlstream.Wrap(payload, iq.StartElement())
}

// WrapMessage wraps a payload in a message stanza start/end pair.
func WrapMessage(msg Message, payload xml.TokenReader) xml.TokenReader {
	return xmlstream.Wrap(payload, msg.StartElement())
}

// WrapPresence wraps a payload in a presence stanza start/end pair.
func WrapPresence(pres Presence, payload xml.TokenReader) xml.TokenReader {
	return xmlstream.Wrap(payload, pres.StartElement())
}

func addrAttr(local string, j *jid.JID) (xml.Attr, bool) {
	if j == nil || j.IsZero() {
		return xml.Attr{}, false
	}
	return xml.Attr{Name: xml.Name{Local: local}, Value: j.String()}, true
}

func langAttr(lang string) (xml.Attr, bool) {
	if lang == "" {
		return xml.Attr{}, false
	}
	return xml.Attr{Name: xml.Name{Space: ns.XML, Local: "lang"}, Value: lang}, true
}

// parseLang parses a raw xml:lang attribute value into a language.Tag,
// degrading to language.Und on a malformed tag rather than failing the
// stanza, per SPEC_FULL.md's ambient-stack note on language handling.
func parseLang(lang string) language.Tag {
	if lang == "" {
		return language.Und
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und
	}
	return tag
}
