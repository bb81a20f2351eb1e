// Package wire implements the canonical bit-exact encodings from spec §6:
// requests and chunks as the XML vocabulary the transport carries, and the
// session-control envelopes (sync-begin/sync-end/sync-error/...) that frame
// them. It depends on encoding/xml rather than a pack library because none
// of the example repos or original_source/libinfinity's dependencies pull
// in an XML toolkit beyond the standard library's own (see DESIGN.md).
package wire

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/sfurman3/inftext/chunk"
	"github.com/sfurman3/inftext/operation"
	"github.com/sfurman3/inftext/request"
	"github.com/sfurman3/inftext/vector"
)

// EncodeRequest serializes r as a <request> element, with its origin
// vector diffed against base (the recipient's last known vector for r's
// user) per §6's diff-against-base wire form.
func EncodeRequest(r *request.Request, base *vector.Vector) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	start := xml.StartElement{
		Name: xml.Name{Local: "request"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "user"}, Value: strconv.FormatUint(uint64(r.UserID()), 10)},
			{Name: xml.Name{Local: "time"}, Value: r.Vector().EncodeDiff(base)},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return nil, errors.Wrap(err, "wire: encode request")
	}
	if err := encodeBody(enc, r); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, errors.Wrap(err, "wire: encode request")
	}
	if err := enc.Flush(); err != nil {
		return nil, errors.Wrap(err, "wire: encode request")
	}
	return buf.Bytes(), nil
}

func encodeBody(enc *xml.Encoder, r *request.Request) error {
	switch r.Type() {
	case request.Do:
		return encodeOperation(enc, r.Operation())
	case request.Undo:
		return writeEmpty(enc, "undo")
	case request.Redo:
		return writeEmpty(enc, "redo")
	default:
		return errors.Errorf("wire: encode request: unknown type %v", r.Type())
	}
}

func writeEmpty(enc *xml.Encoder, name string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return errors.Wrapf(err, "wire: encode %s", name)
	}
	return errors.Wrapf(enc.EncodeToken(start.End()), "wire: encode %s", name)
}

func encodeOperation(enc *xml.Encoder, op *operation.Operation) error {
	switch op.Kind() {
	case operation.Insert:
		start := xml.StartElement{
			Name: xml.Name{Local: "insert"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "pos"}, Value: strconv.Itoa(op.Pos())}},
		}
		if err := enc.EncodeToken(start); err != nil {
			return errors.Wrap(err, "wire: encode insert")
		}
		if err := encodeChunk(enc, op.Chunk()); err != nil {
			return err
		}
		return errors.Wrap(enc.EncodeToken(start.End()), "wire: encode insert")
	case operation.Delete:
		start := xml.StartElement{
			Name: xml.Name{Local: "delete"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "pos"}, Value: strconv.Itoa(op.Pos())},
				{Name: xml.Name{Local: "len"}, Value: strconv.Itoa(op.Length())},
			},
		}
		if err := enc.EncodeToken(start); err != nil {
			return errors.Wrap(err, "wire: encode delete")
		}
		return errors.Wrap(enc.EncodeToken(start.End()), "wire: encode delete")
	case operation.Move:
		start := xml.StartElement{
			Name: xml.Name{Local: "move"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "pos"}, Value: strconv.Itoa(op.Pos())},
				{Name: xml.Name{Local: "sel"}, Value: strconv.Itoa(op.Length())},
			},
		}
		if err := enc.EncodeToken(start); err != nil {
			return errors.Wrap(err, "wire: encode move")
		}
		return errors.Wrap(enc.EncodeToken(start.End()), "wire: encode move")
	case operation.NoOp:
		return writeEmpty(enc, "no-op")
	case operation.Split:
		start := xml.StartElement{Name: xml.Name{Local: "split"}}
		if err := enc.EncodeToken(start); err != nil {
			return errors.Wrap(err, "wire: encode split")
		}
		if err := encodeOperation(enc, op.First()); err != nil {
			return err
		}
		if err := encodeOperation(enc, op.Second()); err != nil {
			return err
		}
		return errors.Wrap(enc.EncodeToken(start.End()), "wire: encode split")
	default:
		return errors.Errorf("wire: encode operation: unknown kind %v", op.Kind())
	}
}

// encodeChunk writes c as a sequence of sibling <segment author=..> text
// elements; chunk.Chunk already merges adjacent same-author runs, so no
// further merging is needed here.
func encodeChunk(enc *xml.Encoder, c *chunk.Chunk) error {
	for _, seg := range c.Segments() {
		start := xml.StartElement{
			Name: xml.Name{Local: "segment"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "author"}, Value: strconv.FormatUint(uint64(seg.Author), 10)}},
		}
		if err := enc.EncodeToken(start); err != nil {
			return errors.Wrap(err, "wire: encode segment")
		}
		if err := enc.EncodeToken(xml.CharData(seg.Text)); err != nil {
			return errors.Wrap(err, "wire: encode segment")
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return errors.Wrap(err, "wire: encode segment")
		}
	}
	return nil
}

// DecodeRequest parses a <request> element produced by EncodeRequest,
// resolving its diffed origin vector against base.
func DecodeRequest(data []byte, base *vector.Vector) (*request.Request, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	start, err := nextStart(dec)
	if err != nil {
		return nil, errors.Wrap(err, "wire: decode request")
	}
	if start.Name.Local != "request" {
		return nil, errors.Errorf("wire: decode request: unexpected root element %q", start.Name.Local)
	}

	var userAttr, timeAttr string
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "user":
			userAttr = a.Value
		case "time":
			timeAttr = a.Value
		}
	}
	userID, err := strconv.ParseUint(userAttr, 10, 32)
	if err != nil {
		return nil, errors.Wrap(err, "wire: decode request: user attribute")
	}
	v, err := vector.DecodeDiff(base, timeAttr)
	if err != nil {
		return nil, errors.Wrap(err, "wire: decode request: time attribute")
	}

	child, err := nextStart(dec)
	if err != nil {
		return nil, errors.Wrap(err, "wire: decode request: body")
	}

	switch child.Name.Local {
	case "undo":
		if err := skipTo(dec, child.Name); err != nil {
			return nil, err
		}
		return request.NewUndo(v, uint32(userID), 0), nil
	case "redo":
		if err := skipTo(dec, child.Name); err != nil {
			return nil, err
		}
		return request.NewRedo(v, uint32(userID), 0), nil
	default:
		op, err := decodeOperation(dec, child)
		if err != nil {
			return nil, err
		}
		return request.NewDo(v, uint32(userID), op, 0), nil
	}
}

func decodeOperation(dec *xml.Decoder, start xml.StartElement) (*operation.Operation, error) {
	switch start.Name.Local {
	case "insert":
		pos, err := intAttr(start, "pos")
		if err != nil {
			return nil, err
		}
		c, err := decodeChunk(dec, start.Name)
		if err != nil {
			return nil, err
		}
		return operation.NewInsert(pos, c), nil
	case "delete":
		pos, err := intAttr(start, "pos")
		if err != nil {
			return nil, err
		}
		length, err := intAttr(start, "len")
		if err != nil {
			return nil, err
		}
		if err := skipTo(dec, start.Name); err != nil {
			return nil, err
		}
		return operation.NewDelete(pos, length), nil
	case "move":
		pos, err := intAttr(start, "pos")
		if err != nil {
			return nil, err
		}
		sel, err := intAttr(start, "sel")
		if err != nil {
			return nil, err
		}
		if err := skipTo(dec, start.Name); err != nil {
			return nil, err
		}
		return operation.NewMove(pos, sel), nil
	case "no-op":
		if err := skipTo(dec, start.Name); err != nil {
			return nil, err
		}
		return operation.NewNoOp(), nil
	case "split":
		firstStart, err := nextStart(dec)
		if err != nil {
			return nil, errors.Wrap(err, "wire: decode split: first operand")
		}
		first, err := decodeOperation(dec, firstStart)
		if err != nil {
			return nil, err
		}
		secondStart, err := nextStart(dec)
		if err != nil {
			return nil, errors.Wrap(err, "wire: decode split: second operand")
		}
		second, err := decodeOperation(dec, secondStart)
		if err != nil {
			return nil, err
		}
		if err := consumeEnd(dec, start.Name); err != nil {
			return nil, err
		}
		return operation.NewSplit(first, second), nil
	default:
		return nil, errors.Errorf("wire: decode operation: unknown element %q", start.Name.Local)
	}
}

// decodeChunk reads sibling <segment> elements until parent's end element.
func decodeChunk(dec *xml.Decoder, parent xml.Name) (*chunk.Chunk, error) {
	c := chunk.Empty()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "wire: decode chunk")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "segment" {
				return nil, errors.Errorf("wire: decode chunk: unexpected element %q", t.Name.Local)
			}
			authorAttr, err := strAttr(t, "author")
			if err != nil {
				return nil, err
			}
			author, err := strconv.ParseUint(authorAttr, 10, 32)
			if err != nil {
				return nil, errors.Wrap(err, "wire: decode segment: author attribute")
			}
			text, err := readCharData(dec, t.Name)
			if err != nil {
				return nil, err
			}
			merged, err := c.Insert(c.Len(), chunk.FromString(uint32(author), text))
			if err != nil {
				return nil, errors.Wrap(err, "wire: decode chunk: append segment")
			}
			c = merged
		case xml.EndElement:
			if t.Name != parent {
				return nil, errors.Errorf("wire: decode chunk: unexpected end element %q", t.Name.Local)
			}
			return c, nil
		}
	}
}

func readCharData(dec *xml.Decoder, parent xml.Name) (string, error) {
	var b bytes.Buffer
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", errors.Wrap(err, "wire: decode segment text")
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if t.Name != parent {
				return "", errors.Errorf("wire: decode segment text: unexpected end element %q", t.Name.Local)
			}
			return b.String(), nil
		}
	}
}

// skipTo consumes tokens up to and including the matching end element for
// name, for elements with no meaningful children (empty or self-closing).
func skipTo(dec *xml.Decoder, name xml.Name) error {
	return consumeEnd(dec, name)
}

func consumeEnd(dec *xml.Decoder, name xml.Name) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return errors.Errorf("wire: unexpected eof before </%s>", name.Local)
			}
			return errors.Wrap(err, "wire: consume element")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name == name {
				depth++
			}
		case xml.EndElement:
			if t.Name == name {
				if depth == 0 {
					return nil
				}
				depth--
			}
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func intAttr(start xml.StartElement, name string) (int, error) {
	s, err := strAttr(start, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "wire: decode %s: %s attribute", start.Name.Local, name)
	}
	return n, nil
}

func strAttr(start xml.StartElement, name string) (string, error) {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value, nil
		}
	}
	return "", errors.Errorf("wire: decode %s: missing %s attribute", start.Name.Local, name)
}
