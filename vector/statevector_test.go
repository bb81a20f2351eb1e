package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetAdd(t *testing.T) {
	v := New()
	assert.Equal(t, uint64(0), v.Get(1))

	v.Set(1, 5)
	assert.Equal(t, uint64(5), v.Get(1))

	v.Add(1, 3)
	assert.Equal(t, uint64(8), v.Get(1))

	v.Add(2, 1)
	assert.Equal(t, uint64(1), v.Get(2))
}

func TestEqualIgnoresAbsentVsExplicitZero(t *testing.T) {
	a := New()
	b := New()
	b.Set(3, 0)
	assert.True(t, a.Equal(b))
}

func TestCausallyBefore(t *testing.T) {
	a := New()
	a.Set(1, 1)
	b := New()
	b.Set(1, 1)
	b.Set(2, 1)

	assert.True(t, a.CausallyBefore(b))
	assert.False(t, b.CausallyBefore(a))
	assert.True(t, a.CausallyBefore(a))
}

func TestCausallyBeforeInc(t *testing.T) {
	a := New()
	a.Set(1, 1)
	b := New()
	b.Set(1, 2)

	assert.True(t, a.CausallyBeforeInc(b, 1))
	assert.True(t, a.CausallyBefore(b.Copy().Copy())) // sanity: a copy of b orders like b
}

func TestConcurrent(t *testing.T) {
	a := New()
	a.Set(1, 1)
	b := New()
	b.Set(2, 1)
	assert.True(t, a.Concurrent(b))
	assert.False(t, a.Concurrent(a))
}

func TestVDiff(t *testing.T) {
	a := New()
	a.Set(1, 5)
	a.Set(2, 2)
	b := New()
	b.Set(1, 3)
	b.Set(3, 4)

	assert.Equal(t, uint64(2+2+4), VDiff(a, b))
}

func TestLCSLCP(t *testing.T) {
	a := New()
	a.Set(1, 5)
	a.Set(2, 1)
	b := New()
	b.Set(1, 2)
	b.Set(2, 7)

	lcs := LCS(a, b)
	assert.Equal(t, uint64(5), lcs.Get(1))
	assert.Equal(t, uint64(7), lcs.Get(2))

	lcp := LCP(a, b)
	assert.Equal(t, uint64(2), lcp.Get(1))
	assert.Equal(t, uint64(1), lcp.Get(2))
}

func TestStringRoundTrip(t *testing.T) {
	v := New()
	v.Set(2, 3)
	v.Set(1, 7)
	s := v.String()
	assert.Equal(t, "1:7;2:3", s)

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.True(t, v.Equal(parsed))
}

func TestStringZeroVector(t *testing.T) {
	v := New()
	assert.Equal(t, "", v.String())

	parsed, err := Parse("")
	require.NoError(t, err)
	assert.True(t, v.Equal(parsed))
}

func TestEncodeDecodeDiff(t *testing.T) {
	base := New()
	base.Set(1, 5)
	base.Set(2, 2)

	target := New()
	target.Set(1, 6) // +1 relative
	target.Set(2, 2) // unchanged, omitted
	target.Set(3, 9) // new participant, +9 relative to base's implicit zero

	diff := target.EncodeDiff(base)

	decoded, err := DecodeDiff(base, diff)
	require.NoError(t, err)
	assert.True(t, target.Equal(decoded))
}

func TestParseMalformedToken(t *testing.T) {
	_, err := Parse("garbage")
	assert.Error(t, err)
}
