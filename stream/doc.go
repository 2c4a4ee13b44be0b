// Copyright 2015 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package stream contains XMPP stream-level errors as defined by RFC 6120
// §4.9, the stream version token, and the StreamFeatures descriptor built
// from a peer's <stream:features/> advertisement (spec.md §3, §4.4.2).
package stream // import "gosxmpp.im/xmpp/stream"
