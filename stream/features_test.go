// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stream

import (
	"encoding/xml"
	"strings"
	"testing"
)

func decodeFeatures(t *testing.T, raw string) Features {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(raw))
	tok, err := d.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		t.Fatalf("expected start element, got %T", tok)
	}
	f, err := ParseFeatures(d, start)
	if err != nil {
		t.Fatalf("ParseFeatures: %v", err)
	}
	return f
}

func TestParseFeaturesStartTLSRequired(t *testing.T) {
	const raw = `<stream:features xmlns:stream='http://etherx.jabber.org/streams'><starttls xmlns='urn:ietf:params:xml:ns:xmpp-tls'><required/></starttls></stream:features>`
	f := decodeFeatures(t, raw)
	if !f.StartTLS || !f.StartTLSRequired {
		t.Errorf("got %+v, want StartTLS required", f)
	}
	if f.Bind {
		t.Errorf("did not expect bind feature")
	}
}

func TestParseFeaturesMechanisms(t *testing.T) {
	const raw = `<stream:features xmlns:stream='http://etherx.jabber.org/streams'><mechanisms xmlns='urn:ietf:params:xml:ns:xmpp-sasl'><mechanism>PLAIN</mechanism><mechanism>SCRAM-SHA-1</mechanism></mechanisms></stream:features>`
	f := decodeFeatures(t, raw)
	if !f.Supports("SCRAM-SHA-1") || !f.Supports("PLAIN") {
		t.Errorf("got mechanisms %v", f.Mechanisms)
	}
	if f.Supports("DIGEST-MD5") {
		t.Errorf("did not expect DIGEST-MD5 to be supported")
	}
}

func TestParseFeaturesBind(t *testing.T) {
	const raw = `<stream:features xmlns:stream='http://etherx.jabber.org/streams'><bind xmlns='urn:ietf:params:xml:ns:xmpp-bind'/></stream:features>`
	f := decodeFeatures(t, raw)
	if !f.Bind {
		t.Errorf("expected bind feature")
	}
}
