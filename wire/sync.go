package wire

import (
	"bytes"
	"encoding/xml"

	"github.com/pkg/errors"
)

// SyncBegin is the "sync-begin num-messages=<n>" envelope opening an
// outbound synchronization (§4.I, §6).
type SyncBegin struct {
	XMLName     xml.Name `xml:"sync-begin"`
	NumMessages int      `xml:"num-messages,attr"`
}

// SyncEnd is the empty "sync-end" envelope closing a synchronization.
type SyncEnd struct {
	XMLName xml.Name `xml:"sync-end"`
}

// SyncAck acknowledges a completed synchronization.
type SyncAck struct {
	XMLName xml.Name `xml:"sync-ack"`
}

// SyncCancel aborts an in-progress synchronization from either side.
type SyncCancel struct {
	XMLName xml.Name `xml:"sync-cancel"`
}

// SyncError ("sync-error" / "stream:error") carries one of §7's error
// conditions (bad-format, conflict, not-authorized, ...) and optional
// free-text detail. Following the XMPP-stanza-error style this envelope
// is modeled on, the condition is the name of a child element
// (<sync-error><conflict/></sync-error>), not text content, so SyncError
// marshals and unmarshals through its own methods rather than struct
// tags.
type SyncError struct {
	Condition string
	Text      string
}

// MarshalXML writes <sync-error><condition-name/>[<text>...</text>]</sync-error>.
func (e SyncError) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "sync-error"}
	if err := enc.EncodeToken(start); err != nil {
		return errors.Wrap(err, "wire: encode sync-error")
	}
	cond := xml.StartElement{Name: xml.Name{Local: e.Condition}}
	if err := enc.EncodeToken(cond); err != nil {
		return errors.Wrap(err, "wire: encode sync-error condition")
	}
	if err := enc.EncodeToken(cond.End()); err != nil {
		return errors.Wrap(err, "wire: encode sync-error condition")
	}
	if e.Text != "" {
		text := xml.StartElement{Name: xml.Name{Local: "text"}}
		if err := enc.EncodeToken(text); err != nil {
			return errors.Wrap(err, "wire: encode sync-error text")
		}
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return errors.Wrap(err, "wire: encode sync-error text")
		}
		if err := enc.EncodeToken(text.End()); err != nil {
			return errors.Wrap(err, "wire: encode sync-error text")
		}
	}
	return errors.Wrap(enc.EncodeToken(start.End()), "wire: encode sync-error")
}

// Marshal encodes any of the envelope types above via encoding/xml.
// Requests are encoded with EncodeRequest, not Marshal.
func Marshal(v interface{}) ([]byte, error) {
	data, err := xml.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "wire: marshal")
	}
	return data, nil
}

// UnmarshalSyncBegin decodes a sync-begin envelope.
func UnmarshalSyncBegin(data []byte) (SyncBegin, error) {
	var v SyncBegin
	err := xml.Unmarshal(data, &v)
	return v, errors.Wrap(err, "wire: unmarshal sync-begin")
}

// UnmarshalSyncError decodes a sync-error envelope, reading its
// condition from the local name of its single child element rather
// than from character data.
func UnmarshalSyncError(data []byte) (SyncError, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	outer, err := nextStart(dec)
	if err != nil {
		return SyncError{}, errors.Wrap(err, "wire: unmarshal sync-error")
	}
	if outer.Name.Local != "sync-error" {
		return SyncError{}, errors.Errorf("wire: unmarshal sync-error: unexpected root element %q", outer.Name.Local)
	}

	var v SyncError
	for {
		tok, err := dec.Token()
		if err != nil {
			return SyncError{}, errors.Wrap(err, "wire: unmarshal sync-error")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "text" {
				text, err := readCharData(dec, t.Name)
				if err != nil {
					return SyncError{}, err
				}
				v.Text = text
				continue
			}
			v.Condition = t.Name.Local
			if err := skipTo(dec, t.Name); err != nil {
				return SyncError{}, err
			}
		case xml.EndElement:
			if t.Name != outer.Name {
				return SyncError{}, errors.Errorf("wire: unmarshal sync-error: unexpected end element %q", t.Name.Local)
			}
			return v, nil
		}
	}
}

// PeekElementName returns the local name of the root element in data,
// without fully decoding it, so a transport can route the envelope to the
// right decoder (DecodeRequest, UnmarshalSyncBegin, ...).
func PeekElementName(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	start, err := nextStart(dec)
	if err != nil {
		return "", errors.Wrap(err, "wire: peek element name")
	}
	return start.Name.Local, nil
}
