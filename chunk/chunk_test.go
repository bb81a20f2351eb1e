package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStringAndLen(t *testing.T) {
	c := FromString(1, "hello")
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, "hello", c.String())
}

func TestInsertMergesSameAuthor(t *testing.T) {
	c := FromString(1, "ac")
	out, err := c.Insert(1, FromString(1, "b"))
	require.NoError(t, err)
	assert.Equal(t, "abc", out.String())
	assert.Len(t, out.Segments(), 1)
}

func TestInsertKeepsDistinctAuthors(t *testing.T) {
	c := FromString(1, "ac")
	out, err := c.Insert(1, FromString(2, "b"))
	require.NoError(t, err)
	assert.Equal(t, "abc", out.String())
	require.Len(t, out.Segments(), 3)
	assert.Equal(t, uint32(1), out.Segments()[0].Author)
	assert.Equal(t, uint32(2), out.Segments()[1].Author)
	assert.Equal(t, uint32(1), out.Segments()[2].Author)
}

func TestEraseAcrossSegments(t *testing.T) {
	c, err := FromString(1, "ab").Insert(2, FromString(2, "cd"))
	require.NoError(t, err)
	out, err := c.Erase(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "ad", out.String())
}

func TestSliceOutOfRange(t *testing.T) {
	c := FromString(1, "abc")
	_, err := c.Slice(1, 10)
	assert.Error(t, err)
}

func TestIteratorWalksRuns(t *testing.T) {
	c, err := FromString(1, "ab").Insert(2, FromString(2, "cd"))
	require.NoError(t, err)

	it := c.Iterator()
	var authors []uint32
	for it.Next() {
		authors = append(authors, it.Author())
	}
	assert.Equal(t, []uint32{1, 2}, authors)

	for it.Prev() {
	}
	assert.False(t, it.Valid())
}

func TestUnicodeCharLenVsByteLen(t *testing.T) {
	c := FromString(1, "héllo")
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, len("héllo"), c.ByteLen())
}
