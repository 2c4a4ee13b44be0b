// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

// plain implements the PLAIN mechanism (RFC 4616): a single initial
// response of the form "\0username\0password", UTF-8 encoded.
type plain struct {
	username, password string
	done               bool
}

// NewPlain constructs a PLAIN SASL mechanism.
func NewPlain(username, password string) Mechanism {
	return &plain{username: username, password: password}
}

func (m *plain) Name() string             { return "PLAIN" }
func (m *plain) HasInitialResponse() bool { return true }
func (m *plain) IsCompleted() bool        { return m.done }

func (m *plain) Response(challenge []byte) ([]byte, error) {
	if m.done {
		return nil, ErrMechanismCompleted
	}
	m.done = true
	resp := make([]byte, 0, len(m.username)+len(m.password)+2)
	resp = append(resp, 0)
	resp = append(resp, m.username...)
	resp = append(resp, 0)
	resp = append(resp, m.password...)
	return resp, nil
}
