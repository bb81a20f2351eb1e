// Package chunk implements Chunk, an ordered sequence of author-tagged text
// runs used by the operation algebra and the buffer contract.
package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// NoAuthor is the author id used for text whose authorship is unknown or
// irrelevant (e.g. text synthesized for testing).
const NoAuthor uint32 = 0

// Segment is a maximal run of text contributed by a single author.
type Segment struct {
	Author uint32
	Text   string // UTF-8
}

// CharLen returns the number of runes in the segment.
func (s Segment) CharLen() int {
	return utf8.RuneCountInString(s.Text)
}

// ByteLen returns the number of bytes in the segment.
func (s Segment) ByteLen() int {
	return len(s.Text)
}

// Chunk is an ordered sequence of (author, text) segments in the session's
// UTF-8 encoding. Adjacent segments are never left with the same author;
// Insert and the constructors merge runs eagerly.
type Chunk struct {
	segments []Segment
}

// Empty returns a new, empty Chunk.
func Empty() *Chunk {
	return &Chunk{}
}

// FromString returns a Chunk holding a single segment of text attributed to
// author.
func FromString(author uint32, text string) *Chunk {
	c := Empty()
	if text != "" {
		c.segments = append(c.segments, Segment{Author: author, Text: text})
	}
	return c
}

// Len returns the number of characters (runes) in the chunk.
func (c *Chunk) Len() int {
	n := 0
	for _, s := range c.segments {
		n += s.CharLen()
	}
	return n
}

// ByteLen returns the number of bytes in the chunk.
func (c *Chunk) ByteLen() int {
	n := 0
	for _, s := range c.segments {
		n += s.ByteLen()
	}
	return n
}

// IsEmpty reports whether the chunk holds no characters.
func (c *Chunk) IsEmpty() bool {
	return len(c.segments) == 0
}

// String returns the concatenated text of the chunk, discarding authorship.
func (c *Chunk) String() string {
	var b strings.Builder
	for _, s := range c.segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Segments returns a copy of the chunk's underlying segment list.
func (c *Chunk) Segments() []Segment {
	out := make([]Segment, len(c.segments))
	copy(out, c.segments)
	return out
}

// Clone returns a deep copy of c.
func (c *Chunk) Clone() *Chunk {
	return &Chunk{segments: c.Segments()}
}

// runeOffset returns the byte offset in s of rune index runeIdx (len(s) if
// runeIdx is at or past the end).
func runeOffset(s string, runeIdx int) int {
	if runeIdx <= 0 {
		return 0
	}
	i := 0
	for byteIdx := range s {
		if i == runeIdx {
			return byteIdx
		}
		i++
	}
	return len(s)
}

// splitSegmentAt splits segment s at character offset pos (0 <= pos <=
// CharLen), returning the left and right halves. Either half may be empty.
func splitSegmentAt(s Segment, pos int) (left, right Segment) {
	b := runeOffset(s.Text, pos)
	return Segment{Author: s.Author, Text: s.Text[:b]},
		Segment{Author: s.Author, Text: s.Text[b:]}
}

// locate finds the segment index containing character position pos and the
// in-segment character offset. A position on a segment boundary resolves to
// the end of the earlier segment, so pos == c.Len() on a non-empty chunk
// returns the last segment with offset equal to its length; only an empty
// chunk yields an index one past the last segment.
func (c *Chunk) locate(pos int) (segIdx, offset int) {
	remaining := pos
	for i, s := range c.segments {
		n := s.CharLen()
		if remaining <= n {
			return i, remaining
		}
		remaining -= n
	}
	return len(c.segments), remaining
}

// Slice returns a new Chunk holding the length characters starting at pos.
func (c *Chunk) Slice(pos, length int) (*Chunk, error) {
	if pos < 0 || length < 0 || pos+length > c.Len() {
		return nil, errors.Errorf(
			"chunk: slice(%d, %d) out of range (len=%d)", pos, length, c.Len())
	}
	if length == 0 {
		return Empty(), nil
	}

	startSeg, startOff := c.locate(pos)
	out := Empty()
	remaining := length
	for i := startSeg; i < len(c.segments) && remaining > 0; i++ {
		s := c.segments[i]
		off := 0
		if i == startSeg {
			off = startOff
		}
		avail := s.CharLen() - off
		take := avail
		if take > remaining {
			take = remaining
		}
		_, rest := splitSegmentAt(s, off)
		piece, _ := splitSegmentAt(rest, take)
		out.appendSegment(piece)
		remaining -= take
	}
	return out, nil
}

// appendSegment appends s to c, merging with the trailing segment when the
// authors match.
func (c *Chunk) appendSegment(s Segment) {
	if s.Text == "" {
		return
	}
	if n := len(c.segments); n > 0 && c.segments[n-1].Author == s.Author {
		c.segments[n-1].Text += s.Text
		return
	}
	c.segments = append(c.segments, s)
}

// Insert returns a new Chunk equal to c with other inserted at character
// position pos.
func (c *Chunk) Insert(pos int, other *Chunk) (*Chunk, error) {
	if pos < 0 || pos > c.Len() {
		return nil, errors.Errorf(
			"chunk: insert at %d out of range (len=%d)", pos, c.Len())
	}
	if other.IsEmpty() {
		return c.Clone(), nil
	}

	segIdx, offset := c.locate(pos)
	out := Empty()
	for i := 0; i < segIdx; i++ {
		out.appendSegment(c.segments[i])
	}
	if segIdx < len(c.segments) {
		left, right := splitSegmentAt(c.segments[segIdx], offset)
		out.appendSegment(left)
		for _, s := range other.segments {
			out.appendSegment(s)
		}
		out.appendSegment(right)
		for i := segIdx + 1; i < len(c.segments); i++ {
			out.appendSegment(c.segments[i])
		}
	} else {
		for _, s := range other.segments {
			out.appendSegment(s)
		}
	}
	return out, nil
}

// Erase returns a new Chunk equal to c with the length characters starting
// at pos removed.
func (c *Chunk) Erase(pos, length int) (*Chunk, error) {
	if pos < 0 || length < 0 || pos+length > c.Len() {
		return nil, errors.Errorf(
			"chunk: erase(%d, %d) out of range (len=%d)", pos, length, c.Len())
	}
	if length == 0 {
		return c.Clone(), nil
	}

	before, err := c.Slice(0, pos)
	if err != nil {
		return nil, err
	}
	after, err := c.Slice(pos+length, c.Len()-pos-length)
	if err != nil {
		return nil, err
	}
	return before.Insert(before.Len(), after)
}

// Iterator returns a cursor over c's segments, starting before the first
// segment. Call Next to advance onto the first segment.
func (c *Chunk) Iterator() *Iterator {
	return &Iterator{chunk: c, index: -1}
}

// Iterator is a bidirectional cursor over a Chunk's author runs.
type Iterator struct {
	chunk *Chunk
	index int
}

// Next advances the iterator to the next segment, returning false if there
// is none.
func (it *Iterator) Next() bool {
	if it.index+1 >= len(it.chunk.segments) {
		it.index = len(it.chunk.segments)
		return false
	}
	it.index++
	return true
}

// Prev moves the iterator to the previous segment, returning false if there
// is none.
func (it *Iterator) Prev() bool {
	if it.index <= 0 {
		it.index = -1
		return false
	}
	it.index--
	return true
}

// Valid reports whether the iterator currently rests on a segment.
func (it *Iterator) Valid() bool {
	return it.index >= 0 && it.index < len(it.chunk.segments)
}

// Segment returns the segment the iterator currently rests on. Panics if
// !Valid().
func (it *Iterator) Segment() Segment {
	return it.chunk.segments[it.index]
}

// Author returns the current segment's author.
func (it *Iterator) Author() uint32 {
	return it.Segment().Author
}

// CharLen returns the current segment's character length.
func (it *Iterator) CharLen() int {
	return it.Segment().CharLen()
}

// ByteLen returns the current segment's byte length.
func (it *Iterator) ByteLen() int {
	return it.Segment().ByteLen()
}
