// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stream

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestErrorUnmarshal(t *testing.T) {
	const raw = `<stream:error xmlns:stream='http://etherx.jabber.org/streams'><restricted-xml xmlns='urn:ietf:params:xml:ns:xmpp-streams'/></stream:error>`
	var se Error
	if err := xml.Unmarshal([]byte(raw), &se); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if se.Error() != "restricted-xml" {
		t.Errorf("got %q, want %q", se.Error(), "restricted-xml")
	}
}

func TestErrorWriteXMLEncodesCondition(t *testing.T) {
	var sb strings.Builder
	enc := xml.NewEncoder(&sb)
	if err := BadFormat.WriteXML(enc, xml.StartElement{}); err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	if !strings.Contains(sb.String(), "bad-format") {
		t.Errorf("encoded output missing condition: %s", sb.String())
	}
}
