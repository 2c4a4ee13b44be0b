// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package bytestream

import (
	"context"
	"fmt"
	"io"
	"net"

	"golang.org/x/net/proxy"
)

// SOCKS5 constants used by both the hand-rolled server negotiation (direct
// transfer, spec.md §4.5.3) and sanity checks on the client leg, per RFC
// 1928.
const (
	socks5Version   = 0x05
	methodNoAuth    = 0x00
	methodNoneAcc   = 0xff
	cmdConnect      = 0x01
	atypDomainName  = 0x03
	repSucceeded    = 0x00
	repGeneralError = 0x01
)

// dialSocks5 connects to a SOCKS5 endpoint at addr and issues a CONNECT to
// the domain-name destination dest on port 0 — the sid-hash destination
// used by both mediated transfer (spec.md §4.5.2) and the incoming
// transfer's streamhost iteration (spec.md §4.5.4). Only the no-auth
// method (0x00) is offered, per spec.md §6.
func dialSocks5(ctx context.Context, addr, dest string) (net.Conn, error) {
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}
	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		conn, dialErr := dialer.Dial("tcp", net.JoinHostPort(dest, "0"))
		return conn, dialErr
	}
	return contextDialer.DialContext(ctx, "tcp", net.JoinHostPort(dest, "0"))
}

// negotiateSocks5Server reads a client's method negotiation and CONNECT
// request, verifying the destination matches wantDest, and writes the
// appropriate reply. It implements the server half of spec.md §4.5.3,
// which golang.org/x/net/proxy does not provide.
func negotiateSocks5Server(conn net.Conn, wantDest string) error {
	if err := readMethodRequest(conn); err != nil {
		writeMethodSelect(conn, methodNoneAcc)
		return err
	}
	if err := writeMethodSelect(conn, methodNoAuth); err != nil {
		return err
	}

	dest, err := readConnect(conn)
	if err != nil {
		writeConnectReply(conn, repGeneralError, "", 0)
		return err
	}
	if dest != wantDest {
		writeConnectReply(conn, repGeneralError, "", 0)
		return fmt.Errorf("%w: destination hash mismatch", ErrSocks5)
	}
	return writeConnectReply(conn, repSucceeded, dest, 0)
}

func readMethodRequest(conn net.Conn) error {
	hdr := make([]byte, 2)
	if _, err := io.ReadFull(conn, hdr); err != nil {
		return err
	}
	if hdr[0] != socks5Version {
		return fmt.Errorf("%w: unsupported socks version %d", ErrSocks5, hdr[0])
	}
	n := int(hdr[1])
	methods := make([]byte, n)
	if _, err := io.ReadFull(conn, methods); err != nil {
		return err
	}
	for _, m := range methods {
		if m == methodNoAuth {
			return nil
		}
	}
	return fmt.Errorf("%w: client did not offer no-auth", ErrSocks5)
}

func writeMethodSelect(conn net.Conn, method byte) error {
	_, err := conn.Write([]byte{socks5Version, method})
	return err
}

// readConnect reads a CONNECT request restricted to ATYP domain-name, per
// spec.md §4.5.3, and returns the requested destination hostname.
func readConnect(conn net.Conn) (string, error) {
	hdr := make([]byte, 4)
	if _, err := io.ReadFull(conn, hdr); err != nil {
		return "", err
	}
	if hdr[0] != socks5Version || hdr[1] != cmdConnect {
		return "", fmt.Errorf("%w: expected a CONNECT request", ErrSocks5)
	}
	if hdr[3] != atypDomainName {
		return "", fmt.Errorf("%w: expected ATYP domain-name", ErrSocks5)
	}
	lenBuf := make([]byte, 1)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return "", err
	}
	host := make([]byte, lenBuf[0])
	if _, err := io.ReadFull(conn, host); err != nil {
		return "", err
	}
	portBuf := make([]byte, 2)
	if _, err := io.ReadFull(conn, portBuf); err != nil {
		return "", err
	}
	return string(host), nil
}

func writeConnectReply(conn net.Conn, rep byte, host string, port uint16) error {
	reply := []byte{socks5Version, rep, 0x00, atypDomainName, byte(len(host))}
	reply = append(reply, host...)
	reply = append(reply, byte(port>>8), byte(port))
	_, err := conn.Write(reply)
	return err
}
