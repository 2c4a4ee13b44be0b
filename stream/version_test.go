// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stream

import "testing"

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.0")
	if err != nil {
		t.Fatalf("ParseVersion: %v", err)
	}
	if v != DefaultVersion {
		t.Errorf("got %v, want %v", v, DefaultVersion)
	}
	if v.String() != "1.0" {
		t.Errorf("String() = %q, want %q", v.String(), "1.0")
	}
}

func TestParseVersionInvalid(t *testing.T) {
	for _, s := range []string{"1", "1.0.0", "a.b", ""} {
		if _, err := ParseVersion(s); err == nil {
			t.Errorf("ParseVersion(%q): expected error", s)
		}
	}
}
