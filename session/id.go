// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"sync/atomic"

	"gosxmpp.im/xmpp/internal/attr"
)

// idGenerator produces ids per spec.md §4.4.1: a monotonically increasing
// process-local counter rendered as decimal, combined with session salt so
// that uniqueness only needs to hold within one session, not across them.
type idGenerator struct {
	salt    string
	counter uint64
}

func newIDGenerator() *idGenerator {
	return &idGenerator{salt: attr.RandomLen(8)}
}

func (g *idGenerator) next() string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-%d", g.salt, n)
}
