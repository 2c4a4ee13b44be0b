// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

import (
	"encoding/xml"
	"testing"

	"golang.org/x/text/language"
)

var (
	_ error           = Failure{}
	_ error           = (*Failure)(nil)
	_ xml.Marshaler   = Failure{}
	_ xml.Marshaler   = (*Failure)(nil)
	_ xml.Unmarshaler = (*Failure)(nil)
)

func TestFailureErrorTextOrCondition(t *testing.T) {
	f := Failure{Condition: MechanismTooWeak, Text: "Test", Lang: language.CanadianFrench}
	if f.Error() != f.Text {
		t.Error("expected Error() to return Text when set")
	}
	f = Failure{Condition: MechanismTooWeak}
	if f.Error() != string(f.Condition) {
		t.Error("expected Error() to return Condition when Text is empty")
	}
}

func TestFailureMarshal(t *testing.T) {
	for _, test := range []struct {
		failure Failure
		want    string
	}{
		{
			Failure{Condition: MechanismTooWeak, Text: "Test", Lang: language.BrazilianPortuguese},
			`<failure xmlns="urn:ietf:params:xml:ns:xmpp-sasl"><mechanism-too-weak></mechanism-too-weak><text xml:lang="pt-BR">Test</text></failure>`,
		},
		{
			Failure{Condition: IncorrectEncoding},
			`<failure xmlns="urn:ietf:params:xml:ns:xmpp-sasl"><incorrect-encoding></incorrect-encoding></failure>`,
		},
	} {
		b, err := xml.Marshal(test.failure)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != test.want {
			t.Errorf("got %s, want %s", b, test.want)
		}
	}
}

func TestFailureUnmarshal(t *testing.T) {
	for _, test := range []struct {
		xmlIn string
		want  Failure
	}{
		{
			`<failure xmlns="urn:ietf:params:xml:ns:xmpp-sasl"><temporary-auth-failure></temporary-auth-failure></failure>`,
			Failure{Condition: TemporaryAuthFailure},
		},
		{
			`<failure xmlns="urn:ietf:params:xml:ns:xmpp-sasl"><mechanism-too-weak></mechanism-too-weak><text xml:lang="pt-BR">Test</text></failure>`,
			Failure{Lang: language.BrazilianPortuguese, Text: "Test", Condition: MechanismTooWeak},
		},
		{
			`<failure xmlns="urn:ietf:params:xml:ns:xmpp-sasl"><wat></wat></failure>`,
			Failure{Condition: Condition("wat")},
		},
	} {
		var got Failure
		if err := xml.Unmarshal([]byte(test.xmlIn), &got); err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("got %#v, want %#v", got, test.want)
		}
	}
}
