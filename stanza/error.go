// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"strings"

	"golang.org/x/text/language"

	"gosxmpp.im/xmpp/internal/ns"
	"gosxmpp.im/xmpp/jid"
)

// ErrorType classifies how the sender of a stanza error recommends the
// recipient react, per RFC 6120 §8.3.2.
type ErrorType int

// Stanza error types defined by RFC 6120 §8.3.2.
const (
	Cancel ErrorType = iota
	Auth
	Continue
	Modify
	Wait
)

func (t ErrorType) String() string {
	switch t {
	case Auth:
		return "Auth"
	case Continue:
		return "Continue"
	case Modify:
		return "Modify"
	case Wait:
		return "Wait"
	default:
		return "Cancel"
	}
}

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (t ErrorType) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{Name: name, Value: strings.ToLower(t.String())}, nil
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (t *ErrorType) UnmarshalXMLAttr(attr xml.Attr) error {
	switch attr.Value {
	case "auth":
		*t = Auth
	case "continue":
		*t = Continue
	case "modify":
		*t = Modify
	case "wait":
		*t = Wait
	default:
		*t = Cancel
	}
	return nil
}

// Condition represents a stanza error condition that can be encapsulated by
// an <error/> element.
type Condition string

// Stanza error conditions defined by RFC 6120 §8.3.3. The SOCKS5 bytestream
// responder emits four of them: NotAcceptable, FeatureNotImplemented and
// ItemNotFound (spec.md §4.5.4), plus BadRequest for a malformed query.
const (
	BadRequest            Condition = "bad-request"
	Conflict              Condition = "conflict"
	FeatureNotImplemented Condition = "feature-not-implemented"
	Forbidden             Condition = "forbidden"
	Gone                  Condition = "gone"
	InternalServerError   Condition = "internal-server-error"
	ItemNotFound          Condition = "item-not-found"
	JIDMalformed          Condition = "jid-malformed"
	NotAcceptable         Condition = "not-acceptable"
	NotAllowed            Condition = "not-allowed"
	NotAuthorized         Condition = "not-authorized"
	PolicyViolation       Condition = "policy-violation"
	RecipientUnavailable  Condition = "recipient-unavailable"
	Redirect              Condition = "redirect"
	RegistrationRequired  Condition = "registration-required"
	RemoteServerNotFound  Condition = "remote-server-not-found"
	RemoteServerTimeout   Condition = "remote-server-timeout"
	ResourceConstraint    Condition = "resource-constraint"
	ServiceUnavailable    Condition = "service-unavailable"
	SubscriptionRequired  Condition = "subscription-required"
	UndefinedCondition    Condition = "undefined-condition"
	UnexpectedRequest     Condition = "unexpected-request"
)

var conditionNames = map[string]Condition{
	string(BadRequest): BadRequest, string(Conflict): Conflict,
	string(FeatureNotImplemented): FeatureNotImplemented, string(Forbidden): Forbidden,
	string(Gone): Gone, string(InternalServerError): InternalServerError,
	string(ItemNotFound): ItemNotFound, string(JIDMalformed): JIDMalformed,
	string(NotAcceptable): NotAcceptable, string(NotAllowed): NotAllowed,
	string(NotAuthorized): NotAuthorized, string(PolicyViolation): PolicyViolation,
	string(RecipientUnavailable): RecipientUnavailable, string(Redirect): Redirect,
	string(RegistrationRequired): RegistrationRequired, string(RemoteServerNotFound): RemoteServerNotFound,
	string(RemoteServerTimeout): RemoteServerTimeout, string(ResourceConstraint): ResourceConstraint,
	string(ServiceUnavailable): ServiceUnavailable, string(SubscriptionRequired): SubscriptionRequired,
	string(UndefinedCondition): UndefinedCondition, string(UnexpectedRequest): UnexpectedRequest,
}

// Error is a stanza-level <error/> payload, marshalable and unmarshalable
// as XML, that answers an IQ request with type='error' (spec.md §3).
type Error struct {
	XMLName   xml.Name
	By        *jid.JID
	Type      ErrorType
	Condition Condition
	Lang      language.Tag
	Text      string
}

// Error satisfies the error interface.
func (se Error) Error() string {
	if se.Text != "" {
		return se.Text
	}
	return string(se.Condition)
}

// NewError constructs a stanza error of the given type and condition,
// matching the constructors spec.md §4.5.4 needs for NotAcceptable,
// ItemNotFound, and FeatureNotImplemented responses.
func NewError(typ ErrorType, cond Condition, text string) Error {
	return Error{Type: typ, Condition: cond, Text: text}
}

// MarshalXML satisfies xml.Marshaler.
func (se Error) MarshalXML(e *xml.Encoder, _ xml.StartElement) (err error) {
	start := xml.StartElement{Name: xml.Name{Local: "error"}}
	typAttr, _ := se.Type.MarshalXMLAttr(xml.Name{Local: "type"})
	start.Attr = append(start.Attr, typAttr)
	if se.By != nil {
		a, _ := se.By.MarshalXMLAttr(xml.Name{Local: "by"})
		start.Attr = append(start.Attr, a)
	}
	if err = e.EncodeToken(start); err != nil {
		return err
	}
	cond := xml.StartElement{Name: xml.Name{Space: ns.Stanza, Local: string(se.Condition)}}
	if err = e.EncodeToken(cond); err != nil {
		return err
	}
	if err = e.EncodeToken(cond.End()); err != nil {
		return err
	}
	if se.Text != "" {
		text := xml.StartElement{
			Name: xml.Name{Space: ns.Stanza, Local: "text"},
			Attr: []xml.Attr{{Name: xml.Name{Space: ns.XML, Local: "lang"}, Value: se.Lang.String()}},
		}
		if err = e.EncodeToken(text); err != nil {
			return err
		}
		if err = e.EncodeToken(xml.CharData(se.Text)); err != nil {
			return err
		}
		if err = e.EncodeToken(text.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML satisfies xml.Unmarshaler.
func (se *Error) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	decoded := struct {
		Condition struct {
			XMLName xml.Name
		} `xml:",any"`
		Type ErrorType `xml:"type,attr"`
		By   *jid.JID  `xml:"by,attr"`
		Text []struct {
			Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
			Data string `xml:",chardata"`
		} `xml:"urn:ietf:params:xml:ns:xmpp-stanzas text"`
	}{}
	if err := d.DecodeElement(&decoded, &start); err != nil {
		return err
	}
	se.Type = decoded.Type
	se.By = decoded.By
	if c, ok := conditionNames[decoded.Condition.XMLName.Local]; ok {
		se.Condition = c
	} else if decoded.Condition.XMLName.Space == ns.Stanza {
		se.Condition = Condition(decoded.Condition.XMLName.Local)
	}

	tags := make([]language.Tag, 0, len(decoded.Text))
	data := make(map[language.Tag]string)
	for _, text := range decoded.Text {
		tag, err := language.Parse(text.Lang)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		data[tag] = text.Data
	}
	tag, _, _ := language.NewMatcher(tags).Match(se.Lang)
	se.Lang = tag
	se.Text = data[tag]
	return nil
}
