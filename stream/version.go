// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stream

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultVersion is the only stream version this core negotiates, per
// spec.md §4.4.2 step 3.
var DefaultVersion = Version{Major: 1, Minor: 0}

// Version is a version of XMPP, in the Major.Minor form used by the
// 'version' attribute of a stream header.
type Version struct {
	Major uint8
	Minor uint8
}

// ParseVersion parses a string of the form "Major.Minor" into a Version.
func ParseVersion(s string) (Version, error) {
	var v Version
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return v, errors.New("stream: version must have a single '.' separator")
	}
	major, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return v, err
	}
	minor, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return v, err
	}
	v.Major = uint8(major)
	v.Minor = uint8(minor)
	return v, nil
}

// String returns the "Major.Minor" representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (v Version) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{Name: name, Value: v.String()}, nil
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (v *Version) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, err := ParseVersion(attr.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
