// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package sasl implements the client side of the Simple Authentication and
// Security Layer (RFC 4422) challenge/response state machines this core's
// handshake negotiates: PLAIN, DIGEST-MD5, and SCRAM-SHA-1 (spec.md §4.3).
//
// Unlike the teacher repository, which delegates to the separate
// mellium.im/sasl module, the mechanisms here are implemented directly: the
// mechanism internals are the deliverable spec.md §4.3 describes, not an
// implementation detail to hide behind an external dependency. See
// DESIGN.md for the full rationale.
package sasl // import "gosxmpp.im/xmpp/sasl"
