// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// digestMD5 implements the DIGEST-MD5 mechanism (RFC 2831): the response
// hash is computed per RFC 2831 §2.1.2.1 with digestUri = "xmpp/" + realm,
// per spec.md §4.3.
type digestMD5 struct {
	username, password string

	step      int
	cnonce    string
	rspauth   string // expected server rspauth, computed when step 1 response is built
	completed bool
}

// NewDigestMD5 constructs a DIGEST-MD5 SASL mechanism.
func NewDigestMD5(username, password string) Mechanism {
	return &digestMD5{username: username, password: password}
}

func (m *digestMD5) Name() string             { return "DIGEST-MD5" }
func (m *digestMD5) HasInitialResponse() bool { return false }
func (m *digestMD5) IsCompleted() bool        { return m.completed }

func (m *digestMD5) Response(challenge []byte) ([]byte, error) {
	switch m.step {
	case 0:
		resp, err := m.firstResponse(challenge)
		m.step++
		return resp, err
	case 1:
		if err := m.verifyFinal(challenge); err != nil {
			return nil, err
		}
		m.step++
		m.completed = true
		return []byte{}, nil
	default:
		return nil, ErrMechanismCompleted
	}
}

func (m *digestMD5) firstResponse(challenge []byte) ([]byte, error) {
	params := parseDigestParams(challenge)
	realm := params["realm"]
	nonce := params["nonce"]
	if nonce == "" {
		return nil, errors.New("sasl: DIGEST-MD5 challenge missing nonce")
	}
	qop := params["qop"]
	if qop == "" {
		qop = "auth"
	}

	cnonceBytes := make([]byte, 16)
	if _, err := rand.Read(cnonceBytes); err != nil {
		return nil, err
	}
	m.cnonce = hex.EncodeToString(cnonceBytes)

	digestURI := "xmpp/" + realm
	const nc = "00000001"

	response := digestResponse(m.username, realm, m.password, nonce, m.cnonce, nc, qop, digestURI, "AUTHENTICATE:"+digestURI)
	m.rspauth = digestResponse(m.username, realm, m.password, nonce, m.cnonce, nc, qop, digestURI, ":"+digestURI)

	var b strings.Builder
	fmt.Fprintf(&b, `username="%s",realm="%s",nonce="%s",cnonce="%s",nc=%s,qop=%s,digest-uri="%s",response=%s,charset=utf-8`,
		escapeQuoted(m.username), escapeQuoted(realm), nonce, m.cnonce, nc, qop, digestURI, response)
	return []byte(b.String()), nil
}

func (m *digestMD5) verifyFinal(challenge []byte) error {
	params := parseDigestParams(challenge)
	if params["rspauth"] != m.rspauth {
		return errors.New("sasl: DIGEST-MD5 rspauth verification failed")
	}
	return nil
}

// digestResponse computes HEX(KD(HEX(H(A1)), nonce:nc:cnonce:qop:HEX(H(A2))))
// per RFC 2831 §2.1.2.1. a2 is "AUTHENTICATE:"+digestURI for the
// client's own response, or ":"+digestURI for the expected rspauth.
func digestResponse(username, realm, password, nonce, cnonce, nc, qop, digestURI, a2 string) string {
	h := func(s string) []byte {
		sum := md5.Sum([]byte(s))
		return sum[:]
	}
	a1 := string(h(username+":"+realm+":"+password)) + ":" + nonce + ":" + cnonce
	ha1 := hex.EncodeToString(h(a1))
	ha2 := hex.EncodeToString(h(a2))
	kd := ha1 + ":" + nonce + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2
	return hex.EncodeToString(h(kd))
}

// parseDigestParams parses a RFC 2831 challenge/response of comma separated
// name=value or name="value" pairs.
func parseDigestParams(raw []byte) map[string]string {
	out := make(map[string]string)
	s := string(raw)
	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(s[:eq])
		s = s[eq+1:]
		var val string
		if len(s) > 0 && s[0] == '"' {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				val = s[1:]
				s = ""
			} else {
				val = s[1 : 1+end]
				s = s[1+end+1:]
				if len(s) > 0 && s[0] == ',' {
					s = s[1:]
				}
			}
		} else {
			comma := strings.IndexByte(s, ',')
			if comma < 0 {
				val = s
				s = ""
			} else {
				val = s[:comma]
				s = s[comma+1:]
			}
		}
		out[key] = val
	}
	return out
}

func escapeQuoted(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
