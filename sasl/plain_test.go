// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

import (
	"bytes"
	"testing"
)

func TestPlainResponse(t *testing.T) {
	m := NewPlain("user", "pass")
	if !m.HasInitialResponse() {
		t.Fatal("PLAIN must have an initial response")
	}
	resp, err := m.Response(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte("\x00user\x00pass")
	if !bytes.Equal(resp, want) {
		t.Errorf("got %q, want %q", resp, want)
	}
	if !m.IsCompleted() {
		t.Error("expected PLAIN to be completed after a single response")
	}
	if _, err := m.Response(nil); err != ErrMechanismCompleted {
		t.Errorf("got error %v, want ErrMechanismCompleted", err)
	}
}

func TestSelectPrefersStrongest(t *testing.T) {
	m, err := Select([]string{"PLAIN", "SCRAM-SHA-1", "DIGEST-MD5"}, "user", "pass")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name() != "SCRAM-SHA-1" {
		t.Errorf("got mechanism %s, want SCRAM-SHA-1 regardless of advertised order", m.Name())
	}
}

func TestSelectFallsBackToPlain(t *testing.T) {
	m, err := Select([]string{"PLAIN"}, "user", "pass")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name() != "PLAIN" {
		t.Errorf("got mechanism %s, want PLAIN", m.Name())
	}
}

func TestSelectNoSupportedMechanism(t *testing.T) {
	_, err := Select([]string{"GSSAPI"}, "user", "pass")
	if err != ErrNoSupportedMechanism {
		t.Errorf("got error %v, want ErrNoSupportedMechanism", err)
	}
}
