// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stream

import (
	"encoding/xml"
	"strings"
)

// Features is the ephemeral descriptor built from a peer's
// <stream:features/> advertisement, per spec.md §3: whether <starttls/> is
// offered and whether it is required, the advertised SASL mechanism set,
// and whether <bind/> is offered.
type Features struct {
	StartTLS         bool
	StartTLSRequired bool
	Mechanisms       []string
	Bind             bool
}

type streamFeatures struct {
	XMLName   xml.Name `xml:"http://etherx.jabber.org/streams features"`
	StartTLS  *struct {
		Required *struct{} `xml:"required"`
	} `xml:"urn:ietf:params:xml:ns:xmpp-tls starttls"`
	Mechanisms *struct {
		List []string `xml:"urn:ietf:params:xml:ns:xmpp-sasl mechanism"`
	} `xml:"urn:ietf:params:xml:ns:xmpp-sasl mechanisms"`
	Bind *struct{} `xml:"urn:ietf:params:xml:ns:xmpp-bind bind"`
}

// ParseFeatures decodes a <stream:features/> element (already consumed as
// start by the stream parser, C2) into a Features value.
func ParseFeatures(d *xml.Decoder, start xml.StartElement) (Features, error) {
	var parsed streamFeatures
	if err := d.DecodeElement(&parsed, &start); err != nil {
		return Features{}, err
	}
	f := Features{}
	if parsed.StartTLS != nil {
		f.StartTLS = true
		f.StartTLSRequired = parsed.StartTLS.Required != nil
	}
	if parsed.Mechanisms != nil {
		f.Mechanisms = parsed.Mechanisms.List
	}
	f.Bind = parsed.Bind != nil
	return f, nil
}

// Supports reports whether the given SASL mechanism name was advertised,
// matched case-insensitively (spec.md §4.3).
func (f Features) Supports(mechanism string) bool {
	for _, m := range f.Mechanisms {
		if strings.EqualFold(m, mechanism) {
			return true
		}
	}
	return false
}
