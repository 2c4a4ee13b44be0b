// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package session

import (
	"testing"
	"time"

	"gosxmpp.im/xmpp/jid"
	"gosxmpp.im/xmpp/stanza"
)

func TestPendingTableDeliversToWaiter(t *testing.T) {
	p := newPendingTable()
	ch := p.register("abc")
	if !p.deliver(stanza.IQ{ID: "abc", Type: stanza.ResultIQ}) {
		t.Fatal("expected deliver to find the registered waiter")
	}
	select {
	case resp := <-ch:
		if resp.ID != "abc" {
			t.Errorf("got id %q, want abc", resp.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestPendingTableReportsOrphan(t *testing.T) {
	p := newPendingTable()
	if p.deliver(stanza.IQ{ID: "nobody-waiting"}) {
		t.Error("expected deliver to report no waiter found")
	}
}

func TestPendingTableFailAllWakesEveryWaiter(t *testing.T) {
	p := newPendingTable()
	var chans []chan stanza.IQ
	for _, id := range []string{"a", "b", "c"} {
		chans = append(chans, p.register(id))
	}
	p.failAll(ErrDisconnected)
	for _, ch := range chans {
		select {
		case _, ok := <-ch:
			if ok {
				t.Error("expected a closed channel, got a value")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for failAll to wake a waiter")
		}
	}
}

func TestPendingTableForgetRemovesWaiter(t *testing.T) {
	p := newPendingTable()
	p.register("x")
	p.forget("x")
	if p.deliver(stanza.IQ{ID: "x"}) {
		t.Error("expected forget to have removed the waiter")
	}
}

func TestIsPingDetectsPingPayload(t *testing.T) {
	if !isPing([]byte(`<ping xmlns="urn:xmpp:ping"/>`)) {
		t.Error("expected a ping payload to be detected")
	}
	if isPing([]byte(`<query xmlns="jabber:iq:version"/>`)) {
		t.Error("expected a non-ping payload to be rejected")
	}
	if isPing(nil) {
		t.Error("expected an empty payload to be rejected")
	}
}

func TestDefaultLivenessProbeMatchesBareDomainPing(t *testing.T) {
	probe := DefaultLivenessProbe("example.net")
	j, err := jid.Parse("example.net")
	if err != nil {
		t.Fatal(err)
	}
	req := stanza.IQ{To: &j, Type: stanza.GetIQ, Payload: []byte(`<ping xmlns="urn:xmpp:ping"/>`)}
	if !probe(req) {
		t.Error("expected the default liveness probe to match a bare-domain ping")
	}

	j2, err := jid.Parse("someone@example.net")
	if err != nil {
		t.Fatal(err)
	}
	req.To = &j2
	if probe(req) {
		t.Error("expected the default liveness probe to reject a non-bare target")
	}
}
