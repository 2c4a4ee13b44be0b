// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package bytestream

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"gosxmpp.im/xmpp/jid"
)

// DirectAcceptTimeout is the constant accept deadline for a direct
// transfer's listener, per spec.md §5.
const DirectAcceptTimeout = 3 * time.Minute

// Listener binds the first free port in [from, to] and waits for exactly
// one SOCKS5 client (spec.md §4.5.3). Advertise its Streamhosts to the
// peer before calling Accept, since the peer may connect before the offer
// IQ's response arrives.
type Listener struct {
	ln   net.Listener
	port uint16
}

// Listen binds the first free TCP port in [from, to].
func Listen(from, to uint16) (*Listener, error) {
	if from == 0 || to < from {
		return nil, fmt.Errorf("bytestream: invalid port range [%d, %d]", from, to)
	}
	for port := from; port <= to; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(int(port))))
		if err == nil {
			return &Listener{ln: ln, port: port}, nil
		}
		if port == to {
			return nil, err
		}
	}
	panic("unreachable")
}

// Close closes the underlying listener.
func (l *Listener) Close() error { return l.ln.Close() }

// Streamhosts builds the streamhost list to advertise to the peer: every
// non-loopback, operationally-up local IPv4 address, plus any externally
// known addresses, each pointing at the bound port (spec.md §4.5.3).
func (l *Listener) Streamhosts(self jid.JID, external []string) ([]Streamhost, error) {
	ifaces, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	var hosts []Streamhost
	for _, addr := range ifaces {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			continue
		}
		hosts = append(hosts, Streamhost{JID: self, Host: ip4.String(), Port: l.port})
	}
	for _, ext := range external {
		hosts = append(hosts, Streamhost{JID: self, Host: ext, Port: l.port})
	}
	return hosts, nil
}

// Accept waits up to DirectAcceptTimeout for one client, negotiates SOCKS5
// against it, and streams sess's payload to completion, per spec.md
// §4.5.3. sending indicates which direction the payload moves: true if
// this process is the sender (writes Payload to the socket), false if it
// is the receiver (reads from the socket into Payload).
func (l *Listener) Accept(sess *Session, wantDest string, sending bool) error {
	defer l.ln.Close()
	type result struct {
		conn net.Conn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		conn, err := l.ln.Accept()
		accepted <- result{conn, err}
	}()

	select {
	case r := <-accepted:
		if r.err != nil {
			sess.fail()
			return r.err
		}
		defer r.conn.Close()
		if err := negotiateSocks5Server(r.conn, wantDest); err != nil {
			sess.fail()
			return err
		}
		if sending {
			return sess.stream(r.conn, sess.Payload)
		}
		return sess.stream(sess.Payload, r.conn)
	case <-time.After(DirectAcceptTimeout):
		sess.fail()
		return fmt.Errorf("bytestream: %w: no client connected within %s", ErrTransferAborted, DirectAcceptTimeout)
	case <-sess.canceledChan():
		sess.fail()
		return ErrTransferAborted
	}
}
