// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

import (
	"encoding/xml"

	"golang.org/x/text/language"

	"gosxmpp.im/xmpp/internal/ns"
)

// Condition is a SASL error condition carried by a <failure/> element, per
// RFC 6120 §6.5.
type Condition string

// Standard SASL error conditions.
const (
	Aborted              Condition = "aborted"
	AccountDisabled      Condition = "account-disabled"
	CredentialsExpired   Condition = "credentials-expired"
	EncryptionRequired   Condition = "encryption-required"
	IncorrectEncoding    Condition = "incorrect-encoding"
	InvalidAuthzID       Condition = "invalid-authzid"
	InvalidMechanism     Condition = "invalid-mechanism"
	MalformedRequest     Condition = "malformed-request"
	MechanismTooWeak     Condition = "mechanism-too-weak"
	NotAuthorized        Condition = "not-authorized"
	TemporaryAuthFailure Condition = "temporary-auth-failure"
)

// Failure represents a SASL <failure/>, marshalable to and from XML.
type Failure struct {
	Condition Condition
	Lang      language.Tag
	Text      string
}

// Error satisfies the error interface, returning Text if set and Condition
// otherwise.
func (f Failure) Error() string {
	if f.Text != "" {
		return f.Text
	}
	return string(f.Condition)
}

// MarshalXML satisfies xml.Marshaler.
func (f Failure) MarshalXML(e *xml.Encoder, start xml.StartElement) (err error) {
	failure := xml.StartElement{Name: xml.Name{Space: ns.SASL, Local: "failure"}}
	if err = e.EncodeToken(failure); err != nil {
		return
	}
	condition := xml.StartElement{Name: xml.Name{Local: string(f.Condition)}}
	if err = e.EncodeToken(condition); err != nil {
		return
	}
	if err = e.EncodeToken(condition.End()); err != nil {
		return
	}
	if f.Text != "" {
		text := xml.StartElement{
			Name: xml.Name{Local: "text"},
			Attr: []xml.Attr{{Name: xml.Name{Space: ns.XML, Local: "lang"}, Value: f.Lang.String()}},
		}
		if err = e.EncodeToken(text); err != nil {
			return
		}
		if err = e.EncodeToken(xml.CharData(f.Text)); err != nil {
			return
		}
		if err = e.EncodeToken(text.End()); err != nil {
			return
		}
	}
	return e.EncodeToken(failure.End())
}

var conditionNames = map[string]Condition{
	"not-authorized":         NotAuthorized,
	"aborted":                Aborted,
	"account-disabled":       AccountDisabled,
	"credentials-expired":    CredentialsExpired,
	"encryption-required":    EncryptionRequired,
	"incorrect-encoding":     IncorrectEncoding,
	"invalid-authzid":        InvalidAuthzID,
	"invalid-mechanism":      InvalidMechanism,
	"malformed-request":      MalformedRequest,
	"mechanism-too-weak":     MechanismTooWeak,
	"temporary-auth-failure": TemporaryAuthFailure,
}

// UnmarshalXML satisfies xml.Unmarshaler. When multiple text elements are
// present, it selects the one whose xml:lang best matches f.Lang.
func (f *Failure) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	decoded := struct {
		Condition struct {
			XMLName xml.Name
		} `xml:",any"`
		Text []struct {
			Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
			Data string `xml:",chardata"`
		} `xml:"text"`
	}{}
	if err := d.DecodeElement(&decoded, &start); err != nil {
		return err
	}
	if cond, ok := conditionNames[decoded.Condition.XMLName.Local]; ok {
		f.Condition = cond
	} else {
		f.Condition = Condition(decoded.Condition.XMLName.Local)
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
	tag, _, _ := language.NewMatcher(tags).Match(f.Lang)
	f.Lang = tag
	f.Text = data[tag]
	return nil
}
