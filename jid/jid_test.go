// Copyright 2015 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package jid

import (
	"encoding/xml"
	"fmt"
	"testing"
)

var _ fmt.Stringer = JID{}
var _ xml.MarshalerAttr = JID{}
var _ xml.UnmarshalerAttr = (*JID)(nil)

func TestValidJIDs(t *testing.T) {
	for _, tc := range []struct {
		jid, lp, dp, rp string
	}{
		{"example.net", "", "example.net", ""},
		{"example.net/rp", "", "example.net", "rp"},
		{"mercutio@example.net", "mercutio", "example.net", ""},
		{"mercutio@example.net/rp", "mercutio", "example.net", "rp"},
		{"mercutio@example.net/rp@rp", "mercutio", "example.net", "rp@rp"},
		{"mercutio@example.net/rp@rp/rp", "mercutio", "example.net", "rp@rp/rp"},
		{"[::1]", "", "[::1]", ""},
	} {
		j, err := Parse(tc.jid)
		switch {
		case err != nil:
			t.Errorf("Parse(%q): unexpected error: %v", tc.jid, err)
		case j.Domainpart() != tc.dp:
			t.Errorf("Parse(%q): got domainpart %q, want %q", tc.jid, j.Domainpart(), tc.dp)
		case j.Localpart() != tc.lp:
			t.Errorf("Parse(%q): got localpart %q, want %q", tc.jid, j.Localpart(), tc.lp)
		case j.Resourcepart() != tc.rp:
			t.Errorf("Parse(%q): got resourcepart %q, want %q", tc.jid, j.Resourcepart(), tc.rp)
		}
	}
}

func TestInvalidParseJIDs(t *testing.T) {
	for _, s := range []string{
		"test@/test",
		"@test",
		"test@test/",
		"",
		"/test",
	} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error, got none", s)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"juliet@example.com",
		"juliet@example.com/balcony",
		"example.com",
	} {
		j, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := j.String(); got != s {
			t.Errorf("round trip: got %q, want %q", got, s)
		}
	}
}

func TestEqual(t *testing.T) {
	a := MustParse("Juliet@Example.COM/Balcony")
	b := MustParse("juliet@example.com/Balcony")
	if !a.Equal(b) {
		t.Errorf("expected %v to equal %v (case-insensitive node/domain)", a, b)
	}
	c := MustParse("juliet@example.com/balcony")
	if a.Equal(c) {
		t.Errorf("expected %v to NOT equal %v (case-sensitive resource)", a, c)
	}
}

func TestBare(t *testing.T) {
	j := MustParse("juliet@example.com/balcony")
	bare := j.Bare()
	if bare.Resourcepart() != "" {
		t.Errorf("Bare(): expected empty resourcepart, got %q", bare.Resourcepart())
	}
	if bare.String() != "juliet@example.com" {
		t.Errorf("Bare(): got %q, want %q", bare.String(), "juliet@example.com")
	}
}

func TestWithResource(t *testing.T) {
	j := MustParse("juliet@example.com")
	full, err := j.WithResource("balcony")
	if err != nil {
		t.Fatalf("WithResource: %v", err)
	}
	if full.String() != "juliet@example.com/balcony" {
		t.Errorf("WithResource: got %q", full.String())
	}
}

func TestMarshalXMLAttr(t *testing.T) {
	j := MustParse("juliet@example.com/balcony")
	attr, err := j.MarshalXMLAttr(xml.Name{Local: "to"})
	if err != nil {
		t.Fatalf("MarshalXMLAttr: %v", err)
	}
	if attr.Value != j.String() {
		t.Errorf("MarshalXMLAttr: got %q, want %q", attr.Value, j.String())
	}

	var out JID
	if err := out.UnmarshalXMLAttr(attr); err != nil {
		t.Fatalf("UnmarshalXMLAttr: %v", err)
	}
	if !out.Equal(j) {
		t.Errorf("UnmarshalXMLAttr: got %v, want %v", out, j)
	}
}
