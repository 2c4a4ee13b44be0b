// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package discover

import "testing"

func TestCursorOrderAndExhaustion(t *testing.T) {
	hosts := []Host{
		{Target: "b.example.net", Port: 5222, Priority: 10, Weight: 5},
		{Target: "a.example.net", Port: 5222, Priority: 10, Weight: 1},
		{Target: "c.example.net", Port: 5222, Priority: 5, Weight: 100},
	}
	c := NewCursor(hosts)

	h, ok := c.Next()
	if !ok || h.Target != "c.example.net" {
		t.Fatalf("got %+v, want c.example.net first (lowest priority)", h)
	}
	h, ok = c.Next()
	if !ok || h.Target != "a.example.net" {
		t.Fatalf("got %+v, want a.example.net second (equal priority, lower weight)", h)
	}
	h, ok = c.Next()
	if !ok || h.Target != "b.example.net" {
		t.Fatalf("got %+v, want b.example.net third", h)
	}
	if _, ok := c.Next(); ok {
		t.Error("expected cursor to be exhausted")
	}
}

func TestCursorEmptyFallsBack(t *testing.T) {
	c := NewCursor(nil)
	if _, ok := c.Next(); ok {
		t.Error("expected an empty host list to report no entries")
	}
	if c.Len() != 0 {
		t.Errorf("got Len() = %d, want 0", c.Len())
	}
}

func TestCursorReset(t *testing.T) {
	c := NewCursor([]Host{{Target: "a", Priority: 1}, {Target: "b", Priority: 2}})
	c.Next()
	c.Next()
	if _, ok := c.Next(); ok {
		t.Fatal("expected cursor to be exhausted before reset")
	}
	c.Reset()
	h, ok := c.Next()
	if !ok || h.Target != "a" {
		t.Errorf("after reset, got %+v, want a first", h)
	}
}
