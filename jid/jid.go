// Copyright 2014 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package jid

import (
	"encoding/xml"
	"errors"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// JID represents an XMPP address ("Jabber ID") of the form
// localpart@domainpart/resourcepart. It is a plain comparable value type;
// unlike the teacher's Safe/Unsafe split this package exposes a single
// representation, since the spec this module implements draws no
// distinction between the two.
type JID struct {
	localpart    string
	domainpart   string
	resourcepart string
}

// Parse constructs a JID from its string representation.
func Parse(s string) (JID, error) {
	localpart, domainpart, resourcepart, err := SplitString(s)
	if err != nil {
		return JID{}, err
	}
	return New(localpart, domainpart, resourcepart)
}

// MustParse is like Parse but panics on error. It is intended for use in
// tests and package-level variable initializers.
func MustParse(s string) JID {
	j, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return j
}

// New constructs a JID from its three constituent parts. domainpart is
// required; localpart and resourcepart may be empty.
func New(localpart, domainpart, resourcepart string) (JID, error) {
	if !utf8.ValidString(localpart) || !utf8.ValidString(resourcepart) {
		return JID{}, errors.New("jid: address contains invalid UTF-8")
	}

	// RFC 7622 §3.2.1: domainpart A-labels are converted to U-labels before
	// the domain is stored, the same normalization the teacher's
	// UnsafeFromParts performs.
	domainpart, err := idna.ToUnicode(domainpart)
	if err != nil {
		return JID{}, err
	}
	if !utf8.ValidString(domainpart) {
		return JID{}, errors.New("jid: domainpart contains invalid UTF-8")
	}

	if err := commonChecks(localpart, domainpart, resourcepart); err != nil {
		return JID{}, err
	}

	return JID{
		localpart:    localpart,
		domainpart:   domainpart,
		resourcepart: resourcepart,
	}, nil
}

// SplitString splits out the localpart, domainpart, and resourcepart from a
// string representation of a JID. Parts are not guaranteed to be valid;
// ported from the teacher's jid.SplitString.
func SplitString(s string) (localpart, domainpart, resourcepart string, err error) {
	parts := strings.SplitAfterN(s, "/", 2)

	if strings.HasSuffix(parts[0], "/") {
		if len(parts) == 2 && parts[1] != "" {
			resourcepart = parts[1]
		} else {
			return "", "", "", errors.New("jid: resourcepart must be larger than 0 bytes")
		}
	}

	norp := strings.TrimSuffix(parts[0], "/")
	nolp := strings.SplitAfterN(norp, "@", 2)

	if nolp[0] == "@" {
		return "", "", "", errors.New("jid: localpart must be larger than 0 bytes")
	}

	switch len(nolp) {
	case 1:
		domainpart = nolp[0]
	case 2:
		domainpart = nolp[1]
		localpart = strings.TrimSuffix(nolp[0], "@")
	}

	// Trailing dots on domainparts are ignored per RFC 7622 §3.2.
	domainpart = strings.TrimSuffix(domainpart, ".")

	if domainpart == "" {
		return "", "", "", errors.New("jid: domainpart must not be empty")
	}

	return localpart, domainpart, resourcepart, nil
}

func commonChecks(localpart, domainpart, resourcepart string) error {
	if len(localpart) > 1023 {
		return errors.New("jid: localpart must be smaller than 1024 bytes")
	}
	// RFC 7622 §3.3.1: characters disallowed even under UsernameCaseMapped.
	if strings.ContainsAny(localpart, "\"&'/:<>@") {
		return errors.New("jid: localpart contains forbidden characters")
	}
	if len(resourcepart) > 1023 {
		return errors.New("jid: resourcepart must be smaller than 1024 bytes")
	}
	l := len(domainpart)
	if l < 1 || l > 1023 {
		return errors.New("jid: domainpart must be between 1 and 1023 bytes")
	}
	if l > 2 && strings.HasPrefix(domainpart, "[") && strings.HasSuffix(domainpart, "]") {
		if ip := net.ParseIP(domainpart[1 : l-1]); ip == nil || ip.To4() != nil {
			return errors.New("jid: domainpart is not a valid IPv6 address literal")
		}
	}
	return nil
}

// Localpart returns the node part of the JID (eg. "juliet").
func (j JID) Localpart() string { return j.localpart }

// Domainpart returns the domain part of the JID (eg. "example.com").
func (j JID) Domainpart() string { return j.domainpart }

// Resourcepart returns the resource part of the JID (eg. "balcony").
func (j JID) Resourcepart() string { return j.resourcepart }

// Bare returns a copy of the JID with the resourcepart removed.
func (j JID) Bare() JID {
	j.resourcepart = ""
	return j
}

// WithResource returns a copy of the JID with the resourcepart replaced.
func (j JID) WithResource(resourcepart string) (JID, error) {
	return New(j.localpart, j.domainpart, resourcepart)
}

// IsZero reports whether j is the zero-value JID (no domain).
func (j JID) IsZero() bool { return j.domainpart == "" }

// Equal reports whether j and other name the same address. Per spec,
// comparison is case-insensitive on localpart and domainpart, and
// case-sensitive on resourcepart.
func (j JID) Equal(other JID) bool {
	return strings.EqualFold(j.localpart, other.localpart) &&
		strings.EqualFold(j.domainpart, other.domainpart) &&
		j.resourcepart == other.resourcepart
}

// String returns the string representation of the JID.
func (j JID) String() string {
	s := j.domainpart
	if j.localpart != "" {
		s = j.localpart + "@" + s
	}
	if j.resourcepart != "" {
		s = s + "/" + j.resourcepart
	}
	return s
}

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (j JID) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	if j.IsZero() {
		return xml.Attr{}, nil
	}
	return xml.Attr{Name: name, Value: j.String()}, nil
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (j *JID) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, err := Parse(attr.Value)
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}
