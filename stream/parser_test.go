// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stream

import (
	"strings"
	"testing"
)

func TestOpenDefaultsLang(t *testing.T) {
	r := strings.NewReader(`<?xml version="1.0"?><stream:stream xmlns:stream="http://etherx.jabber.org/streams" xmlns="jabber:client" from="example.net" id="abc" version="1.0"><stream:features/></stream:stream>`)
	p, info, err := Open(r)
	if err != nil {
		t.Fatal(err)
	}
	if info.Lang != DefaultLang {
		t.Errorf("got lang %q, want default %q", info.Lang, DefaultLang)
	}
	if info.From != "example.net" || info.ID != "abc" {
		t.Errorf("got info %+v", info)
	}

	start, _, err := p.Next("features")
	if err != nil {
		t.Fatal(err)
	}
	if start.Name.Local != "features" {
		t.Errorf("got element %v, want features", start.Name)
	}
}

func TestOpenHonorsExplicitLang(t *testing.T) {
	r := strings.NewReader(`<stream:stream xmlns:stream="http://etherx.jabber.org/streams" xmlns="jabber:client" version="1.0" xml:lang="fr"></stream:stream>`)
	_, info, err := Open(r)
	if err != nil {
		t.Fatal(err)
	}
	if info.Lang != "fr" {
		t.Errorf("got lang %q, want fr", info.Lang)
	}
}

func TestNextRejectsDisallowedElement(t *testing.T) {
	r := strings.NewReader(`<stream:stream xmlns:stream="http://etherx.jabber.org/streams" xmlns="jabber:client" version="1.0"><presence/></stream:stream>`)
	p, _, err := Open(r)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.Next("iq", "message"); err == nil {
		t.Error("expected an element outside the allowed set to be rejected")
	}
}

func TestNextToleratesWhitespace(t *testing.T) {
	r := strings.NewReader("<stream:stream xmlns:stream=\"http://etherx.jabber.org/streams\" xmlns=\"jabber:client\" version=\"1.0\">\n  <iq id='1' type='get'/></stream:stream>")
	p, _, err := Open(r)
	if err != nil {
		t.Fatal(err)
	}
	start, _, err := p.Next("iq")
	if err != nil {
		t.Fatal(err)
	}
	if start.Name.Local != "iq" {
		t.Errorf("got %v, want iq", start.Name)
	}
}

func TestNextReportsStreamError(t *testing.T) {
	r := strings.NewReader(`<stream:stream xmlns:stream="http://etherx.jabber.org/streams" xmlns="jabber:client" version="1.0"><stream:error><conflict xmlns="urn:ietf:params:xml:ns:xmpp-streams"/></stream:error></stream:stream>`)
	p, _, err := Open(r)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.Next(); err != Conflict {
		t.Errorf("got error %v, want Conflict", err)
	}
}

func TestOpenRejectsNonStreamRoot(t *testing.T) {
	r := strings.NewReader(`<notastream/>`)
	if _, _, err := Open(r); err != BadFormat {
		t.Errorf("got error %v, want BadFormat", err)
	}
}
