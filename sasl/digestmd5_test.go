// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

import (
	"fmt"
	"strings"
	"testing"
)

func TestDigestMD5Handshake(t *testing.T) {
	m := NewDigestMD5("user", "pass")
	if m.HasInitialResponse() {
		t.Fatal("DIGEST-MD5 must not have an initial response")
	}

	challenge := []byte(`realm="example.com",nonce="abcdefg",qop="auth",charset=utf-8,algorithm=md5-sess`)
	resp, err := m.Response(challenge)
	if err != nil {
		t.Fatal(err)
	}
	respStr := string(resp)
	for _, want := range []string{`username="user"`, `realm="example.com"`, `nonce="abcdefg"`, `digest-uri="xmpp/example.com"`} {
		if !strings.Contains(respStr, want) {
			t.Errorf("response %q missing %q", respStr, want)
		}
	}
	if m.IsCompleted() {
		t.Error("should not be completed after first response")
	}

	dm := m.(*digestMD5)
	finalChallenge := []byte(fmt.Sprintf(`rspauth=%s`, dm.rspauth))
	if _, err := m.Response(finalChallenge); err != nil {
		t.Fatal(err)
	}
	if !m.IsCompleted() {
		t.Error("expected DIGEST-MD5 to be completed after rspauth verification")
	}
}

func TestDigestMD5RejectsBadRspauth(t *testing.T) {
	m := NewDigestMD5("user", "pass")
	if _, err := m.Response([]byte(`realm="example.com",nonce="n",qop="auth"`)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Response([]byte(`rspauth=bogus`)); err == nil {
		t.Error("expected rspauth mismatch to be rejected")
	}
}

func TestParseDigestParams(t *testing.T) {
	got := parseDigestParams([]byte(`realm="example.com",nonce="abc",qop=auth`))
	want := map[string]string{"realm": "example.com", "nonce": "abc", "qop": "auth"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("param %s: got %q, want %q", k, got[k], v)
		}
	}
}
