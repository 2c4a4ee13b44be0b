// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package stanza contains the three XMPP stanza types (message, presence,
// and iq) described in RFC 6120 §8, and the stanza-level <error/> payload
// defined in RFC 6120 §8.3.3.
package stanza // import "gosxmpp.im/xmpp/stanza"
