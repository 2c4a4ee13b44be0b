// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package stream

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"gosxmpp.im/xmpp/internal/decl"
	"gosxmpp.im/xmpp/internal/ns"
)

// DefaultLang is the xml:lang assumed for a stream whose opening tag omits
// the attribute, per spec.md §4.2.
const DefaultLang = "en"

// ErrDisconnected reports that the underlying byte source hit EOF or an I/O
// error while a top-level element was expected; it is the stream parser's
// concrete instance of spec.md §7's Disconnected condition.
var ErrDisconnected = errors.New("stream: disconnected")

// ErrUnexpectedElement reports that next_element received a child whose
// local name was not in the caller's allowed set (spec.md §4.2). The
// element's namespace is not checked.
type ErrUnexpectedElement struct {
	Name xml.Name
}

func (e ErrUnexpectedElement) Error() string {
	return fmt.Sprintf("stream: unexpected element %v", e.Name)
}

// Info is the metadata extracted from a peer's opening <stream:stream> tag.
type Info struct {
	To      string
	From    string
	ID      string
	Version Version
	Lang    string
}

// Parser implements the C2 stream parser contract (spec.md §4.2): given a
// byte source, it yields XML elements that are direct children of the
// outer <stream:stream> document, one at a time, without materializing the
// whole document. A new Parser must be constructed every time the stream
// restarts (after STARTTLS, after successful SASL); this one's state is
// simply discarded.
type Parser struct {
	d *xml.Decoder
}

// Open reads a peer's opening <stream:stream> tag (skipping any leading
// XML declaration) and returns the stream metadata along with a Parser
// positioned to read the stream's top-level children.
func Open(r io.Reader) (*Parser, Info, error) {
	d := xml.NewDecoder(r)
	tr := decl.Skip(d)

	tok, err := tr.Token()
	if err != nil {
		return nil, Info{}, ErrDisconnected
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return nil, Info{}, BadFormat
	}
	if start.Name.Local != "stream" || start.Name.Space != ns.Stream {
		return nil, Info{}, BadFormat
	}

	info := Info{Lang: DefaultLang, Version: DefaultVersion}
	for _, attr := range start.Attr {
		switch attr.Name {
		case xml.Name{Local: "to"}:
			info.To = attr.Value
		case xml.Name{Local: "from"}:
			info.From = attr.Value
		case xml.Name{Local: "id"}:
			info.ID = attr.Value
		case xml.Name{Local: "version"}:
			v, err := ParseVersion(attr.Value)
			if err != nil {
				return nil, Info{}, BadFormat
			}
			info.Version = v
		case xml.Name{Space: ns.XML, Local: "lang"}:
			info.Lang = attr.Value
		}
	}
	return &Parser{d: d}, info, nil
}

// Next blocks until the next top-level child element is complete and
// returns it as a start token plus the shared decoder positioned to decode
// its subtree (via d.DecodeElement(&v, &start)). If allowed is non-empty,
// an element whose local name is not in the set yields
// ErrUnexpectedElement; the namespace is not compared. Whitespace between top-level children is
// tolerated; anything else at the top level is a protocol error.
func (p *Parser) Next(allowed ...string) (xml.StartElement, *xml.Decoder, error) {
	for {
		tok, err := p.d.Token()
		if err != nil {
			var synErr *xml.SyntaxError
			if errors.As(err, &synErr) {
				return xml.StartElement{}, nil, NotWellFormed
			}
			return xml.StartElement{}, nil, ErrDisconnected
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimLeft(t, " \t\r\n")) != 0 {
				return xml.StartElement{}, nil, NotWellFormed
			}
		case xml.StartElement:
			if t.Name.Space == ns.Stream && t.Name.Local == "error" {
				var e Error
				if decErr := p.d.DecodeElement(&e, &t); decErr != nil {
					return xml.StartElement{}, nil, decErr
				}
				return xml.StartElement{}, nil, e
			}
			if len(allowed) > 0 && !nameAllowed(t.Name.Local, allowed) {
				return xml.StartElement{}, nil, ErrUnexpectedElement{Name: t.Name}
			}
			return t, p.d, nil
		case xml.EndElement:
			if t.Name.Space == ns.Stream && t.Name.Local == "stream" {
				return xml.StartElement{}, nil, ErrDisconnected
			}
			return xml.StartElement{}, nil, BadFormat
		case xml.ProcInst, xml.Comment, xml.Directive:
			return xml.StartElement{}, nil, RestrictedXML
		}
	}
}

func nameAllowed(local string, allowed []string) bool {
	for _, a := range allowed {
		if a == local {
			return true
		}
	}
	return false
}

// WriteHeader writes the XML prolog and an opening <stream:stream> tag to
// w, per spec.md §6: "the opening stream declaration includes the XML
// prolog, subsequent stanzas do not." lang may be empty to omit xml:lang.
func WriteHeader(w io.Writer, to, from, lang string, version Version) error {
	_, err := fmt.Fprintf(w, decl.XMLHeader+`<stream:stream to='%s' from='%s' version='%s'`,
		xmlEscapeAttr(to), xmlEscapeAttr(from), version)
	if err != nil {
		return err
	}
	if lang != "" {
		if _, err := fmt.Fprintf(w, ` xml:lang='%s'`, xmlEscapeAttr(lang)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, ` xmlns='%s' xmlns:stream='%s'>`, ns.Client, ns.Stream)
	return err
}

func xmlEscapeAttr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
