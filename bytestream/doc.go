// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package bytestream implements the SOCKS5 bytestream data-transfer
// subsystem (XEP-0065, spec.md §4.5): mediated transfer through an
// advertised proxy, direct peer-to-peer transfer with this process acting
// as the SOCKS5 server, and the incoming-transfer responder that tries a
// peer's advertised streamhosts in order. TCP mode only; UDP mode is
// rejected per spec.md's non-goals.
package bytestream // import "gosxmpp.im/xmpp/bytestream"
