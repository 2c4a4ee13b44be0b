// Copyright 2014 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package jid implements the XMPP address format described in RFC 7622.
//
// A JID is a triple of (localpart, domainpart, resourcepart) serialized as
// localpart@domainpart/resourcepart. Only the domainpart is required.
// Equality is case-insensitive on the localpart and domainpart and
// case-sensitive on the resourcepart.
package jid // import "gosxmpp.im/xmpp/jid"
