// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package transport owns the byte-oriented XMPP connection: a TCP socket
// optionally wrapped in TLS, with framed, mutex-serialized writes. It is the
// wire transport layer (spec.md §4.1); the stream package built on top of it
// supplies the pull-style XML element reader.
package transport // import "gosxmpp.im/xmpp/transport"
