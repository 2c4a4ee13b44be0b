// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package bytestream

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"net"
	"strconv"

	"gosxmpp.im/xmpp/jid"
)

func portString(port uint16) string {
	return strconv.Itoa(int(port))
}

// Streamhost is a (jid, host, port) triple advertising a SOCKS5 endpoint,
// per spec.md §3's Streamhost type: either a mediating proxy or a direct
// peer listener.
type Streamhost struct {
	JID  jid.JID
	Host string
	Port uint16
}

// Addr renders the streamhost's host:port for net.Dial.
func (s Streamhost) Addr() string {
	return net.JoinHostPort(s.Host, portString(s.Port))
}

// Error kinds raised by this package, per spec.md §7.
var (
	// ErrSocks5 reports a SOCKS5 negotiation failure local to one attempt.
	ErrSocks5 = errors.New("bytestream: socks5 negotiation failed")
	// ErrTransferAborted reports that a transfer ended before completion
	// or was explicitly canceled.
	ErrTransferAborted = errors.New("bytestream: transfer aborted")
	// ErrNoStreamhost reports that every candidate streamhost in an
	// incoming transfer failed to connect.
	ErrNoStreamhost = errors.New("bytestream: no streamhost could be reached")
	// ErrUDPMode reports a bytestreams query advertising mode="udp",
	// which this package does not implement (spec.md §2 non-goals).
	ErrUDPMode = errors.New("bytestream: udp mode not implemented")
)

// bytestreamsQuery decodes the <query xmlns='...bytestreams' .../> payload
// shared by the offer, streamhost-used response, and incoming-transfer
// request, per spec.md §6.
type bytestreamsQuery struct {
	XMLName     xml.Name    `xml:"http://jabber.org/protocol/bytestreams query"`
	SID         string      `xml:"sid,attr"`
	Mode        string      `xml:"mode,attr"`
	Streamhosts []queryHost `xml:"streamhost"`
	Used        *queryUsed  `xml:"streamhost-used"`
}

type queryHost struct {
	JID  string `xml:"jid,attr"`
	Host string `xml:"host,attr"`
	Port uint16 `xml:"port,attr"`
}

type queryUsed struct {
	JID string `xml:"jid,attr"`
}

// parseStreamhostUsed extracts the jid from a peer's <streamhost-used/>
// response to a bytestreams offer.
func parseStreamhostUsed(payload []byte) (string, error) {
	var q bytestreamsQuery
	if err := xml.Unmarshal(payload, &q); err != nil {
		return "", err
	}
	if q.Used == nil || q.Used.JID == "" {
		return "", errors.New("bytestream: response carried no streamhost-used")
	}
	return q.Used.JID, nil
}

// parseStreamhostsQuery decodes an incoming bytestreams query's sid, mode,
// and candidate streamhost list, per spec.md §4.5.4.
func parseStreamhostsQuery(payload []byte) (sid, mode string, hosts []Streamhost, err error) {
	var q bytestreamsQuery
	if err = xml.Unmarshal(payload, &q); err != nil {
		return "", "", nil, err
	}
	hosts = make([]Streamhost, 0, len(q.Streamhosts))
	for _, h := range q.Streamhosts {
		j, perr := jid.Parse(h.JID)
		if perr != nil {
			continue
		}
		hosts = append(hosts, Streamhost{JID: j, Host: h.Host, Port: h.Port})
	}
	return q.SID, q.Mode, hosts, nil
}

func findStreamhost(candidates []Streamhost, byJID string) (Streamhost, bool) {
	for _, c := range candidates {
		if c.JID.String() == byJID {
			return c, true
		}
	}
	return Streamhost{}, false
}

// DestinationHash computes the SOCKS5 domain-name ATYP destination used by
// both transfer directions, per spec.md §4.5.2/§4.5.3:
// SHA1(sid ‖ initiator_full_jid ‖ target_full_jid), hex-lowercase.
func DestinationHash(sid string, initiator, target jid.JID) string {
	h := sha1.New()
	h.Write([]byte(sid))
	h.Write([]byte(initiator.String()))
	h.Write([]byte(target.String()))
	return hex.EncodeToString(h.Sum(nil))
}
