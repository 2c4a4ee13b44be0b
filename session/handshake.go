// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"net"
	"strconv"

	"gosxmpp.im/xmpp/internal/discover"
	"gosxmpp.im/xmpp/internal/ns"
	"gosxmpp.im/xmpp/jid"
	"gosxmpp.im/xmpp/sasl"
	"gosxmpp.im/xmpp/stream"
	"gosxmpp.im/xmpp/transport"
)

// connect drives the handshake described in spec.md §4.4.2: resolve an
// address, open the TCP/TLS wire, open the stream, negotiate STARTTLS if
// requested, authenticate over SASL, restart the stream, and bind a
// resource.
func (s *Session) connect(ctx context.Context) error {
	hosts, err := s.resolveHosts(ctx)
	if err != nil {
		return err
	}
	cursor := discover.NewCursor(hosts)

	mode := transport.ModeNone
	if s.config.TLS == TLSSocket {
		mode = transport.ModeTLSSocket
	}

	var wire *transport.Wire
	var lastErr error
	for {
		host, ok := cursor.Next()
		if !ok {
			break
		}
		addr := net.JoinHostPort(host.Target, strconv.Itoa(int(host.Port)))
		w, dialErr := transport.Connect(ctx, "tcp", addr, mode, s.config.Hostname, s.config.CertValidator)
		if dialErr == nil {
			wire = w
			break
		}
		lastErr = dialErr
	}
	if wire == nil {
		if lastErr == nil {
			lastErr = ErrDisconnected
		}
		return lastErr
	}
	s.wire = wire
	s.setState(Connected)
	if mode == transport.ModeTLSSocket {
		s.setState(Secure)
	}

	features, err := s.openStream(ctx)
	if err != nil {
		return err
	}

	if features.StartTLSRequired && s.config.TLS == None {
		return authErr("peer requires starttls", nil)
	}
	if s.config.TLS == StartTLS && features.StartTLS {
		features, err = s.negotiateStartTLS(ctx)
		if err != nil {
			return err
		}
	}

	j := domainJID(s.config.Hostname)
	if s.config.Username != "" {
		if err := s.negotiateSASL(features); err != nil {
			return err
		}
		s.setState(Authenticated)

		features, err = s.openStream(ctx)
		if err != nil {
			return err
		}
		j, err = jid.New(s.config.Username, s.config.Hostname, "")
		if err != nil {
			return authErr("invalid username", err)
		}
	}
	s.mu.Lock()
	s.jid = j
	s.mu.Unlock()

	if s.config.Username != "" && features.Bind {
		if err := s.bindResource(); err != nil {
			return err
		}
		s.setState(Bound)
	}

	return nil
}

// resolveHosts resolves _xmpp-client._tcp.<hostname> (spec.md §4.4.2 step
// 1) and appends the literal hostname/port as a last-priority fallback, per
// SPEC_FULL.md's "SRV cursor exposure + literal fallback" supplement. A
// failed or empty lookup yields just the fallback.
func (s *Session) resolveHosts(ctx context.Context) ([]discover.Host, error) {
	fallback := discover.Host{
		Target:   s.config.Hostname,
		Port:     uint16(s.config.port()),
		Priority: 0xffff,
		Weight:   0,
	}
	hosts, err := discover.LookupClient(ctx, nil, s.config.Hostname)
	if err != nil || len(hosts) == 0 {
		return []discover.Host{fallback}, nil
	}
	return append(hosts, fallback), nil
}

// openStream writes the opening stream header, opens a fresh parser over
// the wire, and reads the following <stream:features/>. It must be called
// once for the initial stream and again after every restart (STARTTLS
// upgrade, successful SASL), since a Parser's state does not survive a
// restart (spec.md §4.2).
func (s *Session) openStream(ctx context.Context) (stream.Features, error) {
	if err := stream.WriteHeader(s.wire, s.config.Hostname, "", s.config.Lang, stream.DefaultVersion); err != nil {
		return stream.Features{}, err
	}
	p, _, err := stream.Open(s.wire)
	if err != nil {
		return stream.Features{}, err
	}
	s.parser = p
	start, d, err := p.Next("features")
	if err != nil {
		return stream.Features{}, err
	}
	return stream.ParseFeatures(d, start)
}

// negotiateStartTLS requests <starttls/>, upgrades the wire on <proceed/>,
// and restarts the stream, per spec.md §4.4.2 step 4.
func (s *Session) negotiateStartTLS(ctx context.Context) (stream.Features, error) {
	if _, err := fmt.Fprintf(s.wire, `<starttls xmlns='%s'/>`, ns.StartTLS); err != nil {
		return stream.Features{}, err
	}
	start, _, err := s.parser.Next("proceed", "failure")
	if err != nil {
		return stream.Features{}, err
	}
	if start.Name.Local == "failure" {
		return stream.Features{}, authErr("peer refused starttls", nil)
	}
	if err := s.wire.UpgradeToTLS(ctx, s.config.Hostname); err != nil {
		return stream.Features{}, authErr("tls handshake failed", err)
	}
	s.setState(Secure)
	return s.openStream(ctx)
}

// saslText unmarshals the base64 text content common to <challenge/>,
// <response/>, and <success/>.
type saslText struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

func decodeSASLPayload(d *xml.Decoder, start xml.StartElement) ([]byte, error) {
	var t saslText
	if err := d.DecodeElement(&t, &start); err != nil {
		return nil, err
	}
	if t.Text == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(t.Text)
}

// negotiateSASL runs the challenge/response loop described in spec.md
// §4.3, preferring the strongest mechanism the peer advertised.
func (s *Session) negotiateSASL(features stream.Features) error {
	mech, err := sasl.Select(features.Mechanisms, s.config.Username, s.config.Password)
	if err != nil {
		return authErr("mechanism selection", err)
	}

	var initial []byte
	if mech.HasInitialResponse() {
		initial, err = mech.Response(nil)
		if err != nil {
			return authErr("initial response", err)
		}
	}
	if err := s.writeAuth(mech.Name(), initial); err != nil {
		return err
	}

	for {
		start, d, err := s.parser.Next("challenge", "success", "failure")
		if err != nil {
			return authErr("sasl exchange", err)
		}
		switch start.Name.Local {
		case "failure":
			var f sasl.Failure
			if decErr := d.DecodeElement(&f, &start); decErr != nil {
				return authErr("sasl failure", decErr)
			}
			return authErr("sasl", f)
		case "success":
			payload, decErr := decodeSASLPayload(d, start)
			if decErr != nil {
				return authErr("sasl success payload", decErr)
			}
			if len(payload) > 0 {
				if _, respErr := mech.Response(payload); respErr != nil {
					return authErr("sasl success verification", respErr)
				}
			}
			if !mech.IsCompleted() {
				return authErr("sasl", ErrProtocolViolation)
			}
			return nil
		case "challenge":
			payload, decErr := decodeSASLPayload(d, start)
			if decErr != nil {
				return authErr("sasl challenge payload", decErr)
			}
			resp, respErr := mech.Response(payload)
			if respErr != nil {
				return authErr("sasl challenge response", respErr)
			}
			if err := s.writeResponse(resp); err != nil {
				return err
			}
		}
	}
}

func (s *Session) writeAuth(mechanism string, initial []byte) error {
	if initial == nil {
		_, err := fmt.Fprintf(s.wire, `<auth xmlns='%s' mechanism='%s'/>`, ns.SASL, mechanism)
		return err
	}
	_, err := fmt.Fprintf(s.wire, `<auth xmlns='%s' mechanism='%s'>%s</auth>`,
		ns.SASL, mechanism, base64.StdEncoding.EncodeToString(initial))
	return err
}

func (s *Session) writeResponse(payload []byte) error {
	_, err := fmt.Fprintf(s.wire, `<response xmlns='%s'>%s</response>`,
		ns.SASL, base64.StdEncoding.EncodeToString(payload))
	return err
}

// bindResource sends the resource-bind IQ (spec.md §4.4.2 step 7) and
// parses the server's assigned full JID from the result.
func (s *Session) bindResource() error {
	id := "bind-0"
	var payload string
	if s.config.Resource != "" {
		payload = fmt.Sprintf(`<bind xmlns='%s'><resource>%s</resource></bind>`, ns.Bind, xmlEscape(s.config.Resource))
	} else {
		payload = fmt.Sprintf(`<bind xmlns='%s'/>`, ns.Bind)
	}
	if _, err := fmt.Fprintf(s.wire, `<iq id='%s' type='set'>%s</iq>`, id, payload); err != nil {
		return err
	}

	start, d, err := s.parser.Next("iq")
	if err != nil {
		return err
	}
	var resp struct {
		ID   string `xml:"id,attr"`
		Type string `xml:"type,attr"`
		Bind struct {
			JID string `xml:"urn:ietf:params:xml:ns:xmpp-bind jid"`
		} `xml:"urn:ietf:params:xml:ns:xmpp-bind bind"`
	}
	if err := d.DecodeElement(&resp, &start); err != nil {
		return err
	}
	if resp.ID != id {
		return ErrProtocolViolation
	}
	if resp.Type == "error" {
		return authErr("resource bind rejected", ErrProtocolViolation)
	}
	if resp.Bind.JID == "" {
		return authErr("resource bind returned no jid", ErrProtocolViolation)
	}
	full, err := jid.Parse(resp.Bind.JID)
	if err != nil {
		return authErr("resource bind returned malformed jid", err)
	}
	s.mu.Lock()
	s.jid = full
	s.mu.Unlock()
	return nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
