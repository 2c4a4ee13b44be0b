// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"testing"
)

func TestMessageUnmarshal(t *testing.T) {
	const raw = `<message id='abc' type='chat' to='romeo@example.net' from='juliet@example.net/balcony' xml:lang='en'><body>Wherefore art thou?</body></message>`
	var msg Message
	if err := xml.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.ID != "abc" || msg.Type != ChatMessage {
		t.Errorf("got id=%q type=%q", msg.ID, msg.Type)
	}
	if msg.Language().String() != "en" {
		t.Errorf("got language %v, want en", msg.Language())
	}
}

func TestPresenceStartElement(t *testing.T) {
	p := Presence{ID: "p1", Type: UnavailablePresence}
	start := p.StartElement()
	found := false
	for _, a := range start.Attr {
		if a.Name.Local == "type" && a.Value == "unavailable" {
			found = true
		}
	}
	if !found {
		t.Errorf("StartElement() missing type=unavailable attr: %+v", start.Attr)
	}
}
