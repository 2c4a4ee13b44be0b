// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package bytestream

import (
	"context"
	"fmt"
	"time"

	"gosxmpp.im/xmpp/internal/ns"
	"gosxmpp.im/xmpp/jid"
	"gosxmpp.im/xmpp/stanza"
)

// IQSender is the subset of (*session.Session) this package needs to drive
// the bytestreams query/response exchange: send a request IQ and block for
// its reply. Depending on it rather than the concrete session type keeps
// this package usable against a fake in tests.
type IQSender interface {
	IQRequestBlocking(req stanza.IQ, timeout time.Duration) (stanza.IQ, error)
}

// SendMediated offers proxies to the peer, connects to whichever one it
// selects, activates the stream, and transfers sess's payload, per spec.md
// §4.5.2.
func SendMediated(ctx context.Context, sender IQSender, sess *Session, proxies []Streamhost, timeout time.Duration) error {
	chosen, err := offerStreamhosts(sender, sess, proxies, timeout)
	if err != nil {
		sess.fail()
		return err
	}

	dest := DestinationHash(sess.SID, sess.Initiator, sess.Target)
	conn, err := dialSocks5(ctx, chosen.Addr(), dest)
	if err != nil {
		sess.fail()
		return fmt.Errorf("%w: %v", ErrSocks5, err)
	}
	defer conn.Close()

	if err := sendActivate(sender, chosen.JID, sess.SID, sess.Target, timeout); err != nil {
		sess.fail()
		return err
	}

	return sess.stream(conn, sess.Payload)
}

// offerStreamhosts sends the bytestreams offer carrying hosts and resolves
// the peer's streamhost-used reply against the offered list. It's shared
// by the mediated-transfer path (SendMediated) and the direct-transfer
// path's offer step (outgoing.go), which differ only in what happens
// after the peer picks a streamhost. A failure here is not necessarily
// terminal for the overall transfer — outgoing.go's Send falls back to
// SendMediated after a direct-offer failure — so this helper never raises
// OnTransferAborted itself (spec.md §4.5.5); callers that treat its error
// as terminal are responsible for calling sess.fail().
func offerStreamhosts(sender IQSender, sess *Session, hosts []Streamhost, timeout time.Duration) (Streamhost, error) {
	offer := fmt.Sprintf(`<query xmlns='%s' sid='%s'>`, ns.Bytestreams, sess.SID)
	for _, h := range hosts {
		offer += fmt.Sprintf(`<streamhost jid='%s' host='%s' port='%d'/>`, h.JID.String(), h.Host, h.Port)
	}
	offer += `</query>`

	req := stanza.IQ{To: &sess.Target, Type: stanza.SetIQ, Payload: []byte(offer)}
	resp, err := sender.IQRequestBlocking(req, timeout)
	if err != nil {
		return Streamhost{}, err
	}
	if resp.Type == stanza.ErrorIQ {
		return Streamhost{}, fmt.Errorf("%w: peer rejected bytestreams offer", ErrTransferAborted)
	}

	used, err := parseStreamhostUsed(resp.Payload)
	if err != nil {
		return Streamhost{}, err
	}
	chosen, ok := findStreamhost(hosts, used)
	if !ok {
		return Streamhost{}, fmt.Errorf("%w: peer selected an unoffered streamhost", ErrTransferAborted)
	}
	return chosen, nil
}

func sendActivate(sender IQSender, proxy jid.JID, sid string, target jid.JID, timeout time.Duration) error {
	payload := fmt.Sprintf(`<query xmlns='%s' sid='%s'><activate>%s</activate></query>`, ns.Bytestreams, sid, target.String())
	req := stanza.IQ{To: &proxy, Type: stanza.SetIQ, Payload: []byte(payload)}
	resp, err := sender.IQRequestBlocking(req, timeout)
	if err != nil {
		return err
	}
	if resp.Type == stanza.ErrorIQ {
		return fmt.Errorf("%w: proxy refused activation", ErrTransferAborted)
	}
	return nil
}
