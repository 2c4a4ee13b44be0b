// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package discover resolves the DNS SRV records used to locate an XMPP
// server, per spec.md §4.4.2 step 1 and §6. The resolver itself is an
// external collaborator (spec.md §1 lists it as replaceable); this package
// is one concrete implementation plus the cursor spec.md §9 asks be
// exposed rather than hidden behind an automatic failover policy.
package discover // import "gosxmpp.im/xmpp/internal/discover"

import (
	"context"
	"errors"
	"net"
	"sort"
)

// ErrNoServiceAtAddress is returned when a single SRV record with Target
// "." is returned, meaning the service is decidedly not available (RFC
// 6230 §3.2.1).
var ErrNoServiceAtAddress = errors.New("discover: no xmpp service at this address")

// Host is one resolved SRV answer: a target host, port, priority, and
// weight, per spec.md §6's resolve_srv collaborator API.
type Host struct {
	Target   string
	Port     uint16
	Priority uint16
	Weight   uint16
}

// LookupClient resolves _xmpp-client._tcp.<domain> and returns the answers
// sorted by priority ascending, then weight ascending, per spec.md §6.
func LookupClient(ctx context.Context, resolver *net.Resolver, domain string) ([]Host, error) {
	return lookupService(ctx, resolver, "xmpp-client", domain)
}

func lookupService(ctx context.Context, resolver *net.Resolver, service, domain string) ([]Host, error) {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	_, srvs, err := resolver.LookupSRV(ctx, service, "tcp", domain)
	if err != nil {
		if dnsErr, ok := err.(*net.DNSError); !ok || !isNotFound(dnsErr) {
			return nil, err
		}
	}

	if len(srvs) == 1 && srvs[0].Target == "." {
		return nil, ErrNoServiceAtAddress
	}

	hosts := make([]Host, len(srvs))
	for i, s := range srvs {
		hosts[i] = Host{Target: s.Target, Port: s.Port, Priority: s.Priority, Weight: s.Weight}
	}
	sortHosts(hosts)
	return hosts, nil
}

// sortHosts orders by priority ascending, then weight ascending, per
// spec.md §6.
func sortHosts(hosts []Host) {
	sort.SliceStable(hosts, func(i, j int) bool {
		if hosts[i].Priority != hosts[j].Priority {
			return hosts[i].Priority < hosts[j].Priority
		}
		return hosts[i].Weight < hosts[j].Weight
	})
}

// Cursor walks a sorted Host list, remembering position across repeated
// connect attempts. Per spec.md §9, SRV failover policy (retrying the next
// entry after a failed connect) is left to the caller; the cursor is
// exposed rather than hidden behind automatic retry.
type Cursor struct {
	hosts []Host
	pos   int
}

// NewCursor sorts hosts by priority ascending, then weight ascending, and
// wraps the result. An empty list is valid; Next always reports ok=false
// for it, and the caller is expected to fall back to the literal domain
// and a default port.
func NewCursor(hosts []Host) *Cursor {
	sorted := make([]Host, len(hosts))
	copy(sorted, hosts)
	sortHosts(sorted)
	return &Cursor{hosts: sorted}
}

// Next returns the next host in priority/weight order and advances the
// cursor, or ok=false once the list is exhausted.
func (c *Cursor) Next() (host Host, ok bool) {
	if c.pos >= len(c.hosts) {
		return Host{}, false
	}
	host = c.hosts[c.pos]
	c.pos++
	return host, true
}

// Reset rewinds the cursor to the first host.
func (c *Cursor) Reset() {
	c.pos = 0
}

// Len reports the number of hosts remaining (not yet returned by Next).
func (c *Cursor) Len() int {
	return len(c.hosts) - c.pos
}
