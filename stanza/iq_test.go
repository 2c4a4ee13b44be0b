// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"testing"

	"gosxmpp.im/xmpp/jid"
)

func TestIQRequestResponse(t *testing.T) {
	for _, tc := range []struct {
		typ        IQType
		isRequest  bool
		isResponse bool
	}{
		{GetIQ, true, false},
		{SetIQ, true, false},
		{ResultIQ, false, true},
		{ErrorIQ, false, true},
	} {
		iq := IQ{Type: tc.typ}
		if got := iq.IsRequest(); got != tc.isRequest {
			t.Errorf("IQ{Type:%v}.IsRequest() = %v, want %v", tc.typ, got, tc.isRequest)
		}
		if got := iq.IsResponse(); got != tc.isResponse {
			t.Errorf("IQ{Type:%v}.IsResponse() = %v, want %v", tc.typ, got, tc.isResponse)
		}
	}
}

func TestIQTypeMarshalEmpty(t *testing.T) {
	var typ IQType
	if _, err := typ.MarshalXMLAttr(xml.Name{Local: "type"}); err != ErrEmptyIQType {
		t.Errorf("expected ErrEmptyIQType, got %v", err)
	}
}

func TestIQUnmarshal(t *testing.T) {
	const raw = `<iq id='bind-0' type='result' to='juliet@example.com/balcony'><bind xmlns='urn:ietf:params:xml:ns:xmpp-bind'><jid>juliet@example.com/balcony</jid></bind></iq>`
	var iq IQ
	if err := xml.Unmarshal([]byte(raw), &iq); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if iq.ID != "bind-0" || iq.Type != ResultIQ {
		t.Errorf("got id=%q type=%q", iq.ID, iq.Type)
	}
	want := jid.MustParse("juliet@example.com/balcony")
	if iq.To == nil || !iq.To.Equal(want) {
		t.Errorf("got to=%v, want %v", iq.To, want)
	}
}
