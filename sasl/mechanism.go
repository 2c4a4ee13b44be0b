// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

import (
	"errors"
	"strings"
)

// Mechanism is a SASL client state machine, per spec.md §4.3: a small
// machine exposing whether it offers an initial response, whether it has
// completed, and a function from a server challenge to a client response.
type Mechanism interface {
	// Name is the mechanism's IANA-registered name, eg. "PLAIN".
	Name() string

	// HasInitialResponse reports whether the mechanism can produce a
	// response before receiving any server challenge.
	HasInitialResponse() bool

	// IsCompleted reports whether the mechanism considers the exchange
	// finished from the client's perspective.
	IsCompleted() bool

	// Response computes the client response to a server challenge. Call
	// with a nil challenge to request the initial response.
	Response(challenge []byte) (response []byte, err error)
}

// ErrNoSupportedMechanism is returned by Select when none of the
// server-advertised mechanisms match any entry in Preference.
var ErrNoSupportedMechanism = errors.New("sasl: no supported mechanism advertised by server")

// ErrMechanismCompleted is returned when Response is called again after the
// mechanism has already reported completion.
var ErrMechanismCompleted = errors.New("sasl: mechanism has already completed")

// Preference is the mechanism selection order mandated by spec.md §4.3:
// strongest first, regardless of the order the server advertises them in.
var Preference = []string{"SCRAM-SHA-1", "DIGEST-MD5", "PLAIN"}

// Select picks the first entry of Preference that the server advertised in
// advertisedMechanisms, and constructs it with the given credentials.
func Select(advertisedMechanisms []string, username, password string) (Mechanism, error) {
	for _, name := range Preference {
		if !contains(advertisedMechanisms, name) {
			continue
		}
		switch name {
		case "SCRAM-SHA-1":
			return NewScramSHA1(username, password), nil
		case "DIGEST-MD5":
			return NewDigestMD5(username, password), nil
		case "PLAIN":
			return NewPlain(username, password), nil
		}
	}
	return nil, ErrNoSupportedMechanism
}

// contains reports whether s appears in list, matched case-insensitively:
// servers are inconsistent about casing mechanism names (spec.md §4.3).
func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
