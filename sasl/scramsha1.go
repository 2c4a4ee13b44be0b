// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// scramSHA1 implements SCRAM-SHA-1 (RFC 5802), per spec.md §4.3: a 24-byte
// random client nonce, PBKDF2-HMAC-SHA1 salted-password derivation, and a
// verified server signature on the final challenge.
type scramSHA1 struct {
	username, password string

	step int

	clientNonce     string
	clientFirstBare string
	authMessage     string
	saltedPassword  []byte
	completed       bool
}

// NewScramSHA1 constructs a SCRAM-SHA-1 SASL mechanism.
func NewScramSHA1(username, password string) Mechanism {
	return &scramSHA1{username: username, password: password}
}

func (m *scramSHA1) Name() string             { return "SCRAM-SHA-1" }
func (m *scramSHA1) HasInitialResponse() bool { return true }
func (m *scramSHA1) IsCompleted() bool        { return m.completed }

func (m *scramSHA1) Response(challenge []byte) ([]byte, error) {
	switch m.step {
	case 0:
		resp, err := m.clientFirst()
		m.step++
		return resp, err
	case 1:
		resp, err := m.clientFinal(challenge)
		m.step++
		return resp, err
	case 2:
		if err := m.verifyServerFinal(challenge); err != nil {
			return nil, err
		}
		m.step++
		m.completed = true
		return []byte{}, nil
	default:
		return nil, ErrMechanismCompleted
	}
}

func (m *scramSHA1) clientFirst() ([]byte, error) {
	nonce := make([]byte, 24)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	m.clientNonce = base64.StdEncoding.EncodeToString(nonce)
	m.clientFirstBare = "n=" + scramEscape(m.username) + ",r=" + m.clientNonce
	return []byte("n,," + m.clientFirstBare), nil
}

func (m *scramSHA1) clientFinal(challenge []byte) ([]byte, error) {
	params := parseScramParams(string(challenge))
	serverNonce := params["r"]
	salt64 := params["s"]
	iterStr := params["i"]
	if serverNonce == "" || salt64 == "" || iterStr == "" {
		return nil, errors.New("sasl: malformed SCRAM-SHA-1 server-first message")
	}
	if !strings.HasPrefix(serverNonce, m.clientNonce) {
		return nil, errors.New("sasl: SCRAM-SHA-1 server nonce does not extend client nonce")
	}
	salt, err := base64.StdEncoding.DecodeString(salt64)
	if err != nil {
		return nil, err
	}
	iterations, err := strconv.Atoi(iterStr)
	if err != nil || iterations <= 0 {
		return nil, errors.New("sasl: malformed SCRAM-SHA-1 iteration count")
	}

	const channelBinding = "biws" // base64("n,,")
	clientFinalNoProof := "c=" + channelBinding + ",r=" + serverNonce

	m.saltedPassword = pbkdf2.Key([]byte(m.password), salt, iterations, sha1.Size, sha1.New)
	clientKey := hmacSHA1(m.saltedPassword, "Client Key")
	storedKey := sha1.Sum(clientKey)

	m.authMessage = m.clientFirstBare + "," + string(challenge) + "," + clientFinalNoProof
	clientSignature := hmacSHA1(storedKey[:], m.authMessage)

	clientProof := make([]byte, len(clientKey))
	for i := range clientKey {
		clientProof[i] = clientKey[i] ^ clientSignature[i]
	}

	resp := clientFinalNoProof + ",p=" + base64.StdEncoding.EncodeToString(clientProof)
	return []byte(resp), nil
}

func (m *scramSHA1) verifyServerFinal(challenge []byte) error {
	params := parseScramParams(string(challenge))
	sig64 := params["v"]
	if sig64 == "" {
		return errors.New("sasl: SCRAM-SHA-1 server-final missing signature")
	}
	serverKey := hmacSHA1(m.saltedPassword, "Server Key")
	expected := hmacSHA1(serverKey, m.authMessage)
	got, err := base64.StdEncoding.DecodeString(sig64)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, got) {
		return errors.New("sasl: SCRAM-SHA-1 server signature mismatch")
	}
	return nil
}

func hmacSHA1(key []byte, data string) []byte {
	h := hmac.New(sha1.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

func scramEscape(s string) string {
	s = strings.ReplaceAll(s, "=", "=3D")
	s = strings.ReplaceAll(s, ",", "=2C")
	return s
}

func parseScramParams(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		if len(part) < 2 || part[1] != '=' {
			continue
		}
		out[part[:1]] = part[2:]
	}
	return out
}
