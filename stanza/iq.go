// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"errors"

	"golang.org/x/text/language"

	"gosxmpp.im/xmpp/jid"
)

// ErrEmptyIQType is returned when marshaling an IQ stanza with no type set.
var ErrEmptyIQType = errors.New("stanza: empty IQ type")

// ErrEmptyIQID reports an IQ stanza with no id set. Per spec.md §3, every
// Iq requires a server-unique id. Marshaling an IQ does not check the id
// and does not return this error: an IQ with an empty id marshals with an
// empty id attribute.
var ErrEmptyIQID = errors.New("stanza: IQ requires a non-empty id")

// IQType is the type of an IQ stanza.
type IQType string

// The four IQ types defined by RFC 6120 §8.2.3.
const (
	GetIQ    IQType = "get"
	SetIQ    IQType = "set"
	ResultIQ IQType = "result"
	ErrorIQ  IQType = "error"
)

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (t IQType) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	if t == "" {
		return xml.Attr{}, ErrEmptyIQType
	}
	return xml.Attr{Name: name, Value: string(t)}, nil
}

// IQ ("Information Query") is a request/response stanza: get and set
// semantics, always answered by a result or an error carrying the same id.
type IQ struct {
	XMLName xml.Name `xml:"iq"`
	ID      string   `xml:"id,attr"`
	To      *jid.JID `xml:"to,attr"`
	From    *jid.JID `xml:"from,attr"`
	Lang    string   `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Type    IQType   `xml:"type,attr"`

	// Payload is the single required child element, captured verbatim so
	// that callers (and the out-of-scope higher IM layers named in
	// spec.md §1) can decode it into whatever extension type applies.
	Payload []byte `xml:",innerxml"`
}

// IsRequest reports whether the IQ is a request (type get or set), per
// spec.md §3.
func (iq IQ) IsRequest() bool {
	return iq.Type == GetIQ || iq.Type == SetIQ
}

// IsResponse reports whether the IQ is a response (type result or error).
func (iq IQ) IsResponse() bool {
	return iq.Type == ResultIQ || iq.Type == ErrorIQ
}

// Language returns the stanza's xml:lang as a parsed language.Tag,
// degrading to language.Und if unset or malformed.
func (iq IQ) Language() language.Tag { return parseLang(iq.Lang) }

// StartElement returns the xml.StartElement this IQ would marshal to,
// without its payload, for use with xmlstream.Wrap (see WrapIQ).
func (iq IQ) StartElement() xml.StartElement {
	start := xml.StartElement{Name: xml.Name{Local: "iq"}}
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: iq.ID})
	if iq.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "type"}, Value: string(iq.Type)})
	}
	if a, ok := addrAttr("to", iq.To); ok {
		start.Attr = append(start.Attr, a)
	}
	if a, ok := addrAttr("from", iq.From); ok {
		start.Attr = append(start.Attr, a)
	}
	if a, ok := langAttr(iq.Lang); ok {
		start.Attr = append(start.Attr, a)
	}
	return start
}
