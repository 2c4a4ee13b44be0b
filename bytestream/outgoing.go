// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package bytestream

import (
	"context"
	"fmt"
	"time"

	"gosxmpp.im/xmpp/jid"
)

// ExternalAddressDiscoverer reports an address this process is reachable at
// from outside its local network, if any. Implementations correspond to
// spec.md §4.5.1 step 1's address-discovery chain: an IP-check extension
// query, a UPnP port mapping, or a STUN binding request. This package only
// defines the collaborator interface; none of those protocols are
// implemented here (spec.md non-goals).
type ExternalAddressDiscoverer interface {
	DiscoverExternalAddress(ctx context.Context) (host string, ok bool)
}

// ProxyLister supplies the ordered list of mediated-transfer proxies to
// offer a peer, per spec.md §4.5.1 step 1's fallback: a user-configured
// list first, else proxies found via service discovery (also a non-goal
// here; a ProxyLister backed by disco is left to the caller).
type ProxyLister interface {
	ListProxies(ctx context.Context) ([]Streamhost, error)
}

// Config holds the SOCKS5 bytestream settings a client exposes, per
// spec.md §6.
type Config struct {
	// ProxyAllowed permits falling back to a mediated transfer through a
	// proxy when direct transfer isn't viable. The zero value is false,
	// which disallows the mediated fallback; callers must set it to true
	// to enable it.
	ProxyAllowed bool
	// UserProxies is a fixed set of proxy streamhosts to try, consulted
	// before any discovered ones.
	UserProxies []Streamhost
	// ServerPortFrom/ServerPortTo bound the local listener range tried for
	// direct transfer.
	ServerPortFrom, ServerPortTo uint16
	// ExternalAddress discovers this process's externally-visible
	// address, if reachable that way. May be nil.
	ExternalAddress ExternalAddressDiscoverer
	// Proxies supplies additional proxies beyond UserProxies, e.g. via
	// service discovery. May be nil.
	Proxies ProxyLister
}

func (c Config) proxyAllowed() bool {
	return c.ProxyAllowed
}

// proxies returns the full, ordered proxy candidate list: user-configured
// entries first, then anything the configured ProxyLister supplies.
func (c Config) proxies(ctx context.Context) ([]Streamhost, error) {
	hosts := append([]Streamhost(nil), c.UserProxies...)
	if c.Proxies != nil {
		discovered, err := c.Proxies.ListProxies(ctx)
		if err != nil {
			return hosts, nil
		}
		hosts = append(hosts, discovered...)
	}
	return hosts, nil
}

// Send drives an outgoing transfer end to end, per spec.md §4.5.1: bind a
// local listener and try direct transfer first; if no listener can be
// bound, no streamhost can be advertised, or the peer does not accept the
// direct offer, fall back to a mediated transfer through the proxy the
// peer selects. No NAT check is made beyond what Config.ExternalAddress
// supplies. Once the peer accepts the direct offer, the result of
// Listener.Accept is returned as is: a peer that never connects within
// DirectAcceptTimeout ends the transfer without a mediated fallback. A
// failure is not retried.
func Send(ctx context.Context, sender IQSender, cfg Config, sess *Session, self jid.JID, offerTimeout time.Duration) error {
	if cfg.ServerPortFrom != 0 {
		ln, err := Listen(cfg.ServerPortFrom, cfg.ServerPortTo)
		if err == nil {
			var external []string
			if cfg.ExternalAddress != nil {
				if addr, ok := cfg.ExternalAddress.DiscoverExternalAddress(ctx); ok {
					external = append(external, addr)
				}
			}
			hosts, hostErr := ln.Streamhosts(self, external)
			if hostErr == nil && len(hosts) > 0 {
				if err := offerDirect(ctx, sender, sess, hosts, offerTimeout); err == nil {
					return ln.Accept(sess, DestinationHash(sess.SID, sess.Initiator, sess.Target), true)
				}
			}
			ln.Close()
		}
	}

	if !cfg.proxyAllowed() {
		sess.fail()
		return fmt.Errorf("%w: direct transfer failed and proxies are disallowed", ErrTransferAborted)
	}
	proxies, err := cfg.proxies(ctx)
	if err != nil || len(proxies) == 0 {
		sess.fail()
		return fmt.Errorf("%w: no proxy available after direct transfer failed", ErrTransferAborted)
	}
	return SendMediated(ctx, sender, sess, proxies, offerTimeout)
}

// offerDirect sends the bytestreams offer carrying hosts and waits for the
// peer's streamhost-used reply, without itself performing the SOCKS5
// handshake — that happens in the subsequent Listener.Accept call, racing
// against the peer's connection attempt.
func offerDirect(ctx context.Context, sender IQSender, sess *Session, hosts []Streamhost, timeout time.Duration) error {
	_, err := offerStreamhosts(sender, sess, hosts, timeout)
	return err
}
