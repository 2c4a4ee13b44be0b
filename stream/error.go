// Copyright 2015 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stream

import (
	"encoding/xml"
	"io"
	"net"

	"mellium.im/xmlstream"

	"gosxmpp.im/xmpp/internal/ns"
)

// Stream-level error conditions defined in RFC 6120 §4.9.3. spec.md §7
// classifies several of these (BadFormat, InvalidNamespace,
// UnsupportedVersion, RestrictedXML) as concrete instances of
// XmlMalformed/ProtocolViolation.
var (
	BadFormat              = Error{Err: "bad-format"}
	BadNamespacePrefix     = Error{Err: "bad-namespace-prefix"}
	Conflict               = Error{Err: "conflict"}
	ConnectionTimeout      = Error{Err: "connection-timeout"}
	HostGone               = Error{Err: "host-gone"}
	HostUnknown            = Error{Err: "host-unknown"}
	ImproperAddressing     = Error{Err: "improper-addressing"}
	InternalServerError    = Error{Err: "internal-server-error"}
	InvalidFrom            = Error{Err: "invalid-from"}
	InvalidNamespace       = Error{Err: "invalid-namespace"}
	InvalidXML             = Error{Err: "invalid-xml"}
	NotAuthorized          = Error{Err: "not-authorized"}
	NotWellFormed          = Error{Err: "not-well-formed"}
	PolicyViolation        = Error{Err: "policy-violation"}
	RemoteConnectionFailed = Error{Err: "remote-connection-failed"}
	Reset                  = Error{Err: "reset"}
	ResourceConstraint     = Error{Err: "resource-constraint"}
	RestrictedXML          = Error{Err: "restricted-xml"}
	SystemShutdown         = Error{Err: "system-shutdown"}
	UndefinedCondition     = Error{Err: "undefined-condition"}
	UnsupportedEncoding    = Error{Err: "unsupported-encoding"}
	UnsupportedFeature     = Error{Err: "unsupported-feature"}
	UnsupportedStanzaType  = Error{Err: "unsupported-stanza-type"}
	UnsupportedVersion     = Error{Err: "unsupported-version"}
)

// SeeOtherHostError returns a new see-other-host error redirecting to addr.
func SeeOtherHostError(addr net.Addr) Error {
	s := addr.String()
	if ip := net.ParseIP(s); ip != nil && ip.To4() == nil && ip.To16() != nil {
		s = "[" + s + "]"
	}
	return Error{Err: "see-other-host", text: s}
}

// Error represents an unrecoverable stream-level error (RFC 6120 §4.9). It
// is the concrete type behind spec.md §7's XmlMalformed and
// ProtocolViolation error kinds both when the peer reports the condition
// on the wire and when the stream Parser detects it locally (BadFormat,
// NotWellFormed, RestrictedXML).
type Error struct {
	Err  string
	text string
}

// Error satisfies the builtin error interface, returning the condition name.
func (s Error) Error() string {
	return s.Err
}

// UnmarshalXML satisfies xml.Unmarshaler.
func (s *Error) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	se := struct {
		XMLName xml.Name
		Cond    struct {
			XMLName xml.Name
		} `xml:",any"`
		Text string `xml:"urn:ietf:params:xml:ns:xmpp-streams text"`
	}{}
	if err := d.DecodeElement(&se, &start); err != nil {
		return err
	}
	s.Err = se.Cond.XMLName.Local
	s.text = se.Text
	return nil
}

// MarshalXML satisfies xml.Marshaler.
func (s Error) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return s.WriteXML(e, xml.StartElement{})
}

// WriteXML satisfies the xmlstream marshaling convention used by C6's
// element builder: it writes tokens to w instead of building a document.
func (s Error) WriteXML(w xmlstream.TokenWriter, _ xml.StartElement) error {
	_, err := xmlstream.Copy(w, s.TokenReader())
	if err != nil {
		return err
	}
	return w.Flush()
}

// TokenReader returns a pull-style reader over the wire encoding of the
// error, suitable for writing directly onto the wire transport (C1).
func (s Error) TokenReader() xmlstream.TokenReader {
	var inner xmlstream.TokenReader
	if s.text != "" {
		inner = xmlstream.Wrap(
			xmlstream.ReaderFunc(func() (xml.Token, error) {
				return xml.CharData(s.text), io.EOF
			}),
			xml.StartElement{Name: xml.Name{Local: "text", Space: "urn:ietf:params:xml:ns:xmpp-streams"}},
		)
	}
	cond := xmlstream.Wrap(nil, xml.StartElement{Name: xml.Name{Local: s.Err, Space: "urn:ietf:params:xml:ns:xmpp-streams"}})
	if inner != nil {
		cond = xmlstream.MultiReader(cond, inner)
	}
	return xmlstream.Wrap(cond, xml.StartElement{Name: xml.Name{Local: "error", Space: ns.Stream}})
}
