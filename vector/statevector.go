package vector

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sfurman3/inftext/logical"
)

// Vector is a state vector: a sparse mapping from participant id to a
// non-negative operation count. A missing key denotes zero.
//
// The zero value is the zero vector, ready to use.
type Vector struct {
	counts map[uint32]*logical.Clock
}

// New returns a new, empty (all-zero) Vector.
func New() *Vector {
	return &Vector{counts: make(map[uint32]*logical.Clock)}
}

func (v *Vector) ensure() {
	if v.counts == nil {
		v.counts = make(map[uint32]*logical.Clock)
	}
}

// Get returns the count for participant id (zero if absent).
func (v *Vector) Get(id uint32) uint64 {
	if v.counts == nil {
		return 0
	}
	if c, ok := v.counts[id]; ok {
		return c.Uint64()
	}
	return 0
}

// Set sets the count for participant id to n.
func (v *Vector) Set(id uint32, n uint64) {
	v.ensure()
	v.counts[id] = logical.New(n)
}

// Add increments the count for participant id by k, creating the entry if
// absent.
func (v *Vector) Add(id uint32, k uint64) {
	v.ensure()
	c, ok := v.counts[id]
	if !ok {
		c = logical.New(0)
		v.counts[id] = c
	}
	c.Add(k)
}

// Ids returns the participant ids with a non-absent entry, in ascending
// order. A participant with an explicit zero entry is included.
func (v *Vector) Ids() []uint32 {
	ids := make([]uint32, 0, len(v.counts))
	for id := range v.counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// unionIds returns the sorted union of the explicit keys of a and b.
func unionIds(a, b *Vector) []uint32 {
	seen := make(map[uint32]struct{}, len(a.counts)+len(b.counts))
	for id := range a.counts {
		seen[id] = struct{}{}
	}
	for id := range b.counts {
		seen[id] = struct{}{}
	}
	ids := make([]uint32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Copy returns a deep copy of v.
func (v *Vector) Copy() *Vector {
	out := New()
	for id, c := range v.counts {
		out.counts[id] = logical.New(c.Uint64())
	}
	return out
}

// Equal reports whether v and other agree on every participant (absent
// entries compare equal to explicit zero entries).
func (v *Vector) Equal(other *Vector) bool {
	for _, id := range unionIds(v, other) {
		if v.Get(id) != other.Get(id) {
			return false
		}
	}
	return true
}

// CausallyBefore reports whether v <= other, i.e. every component of v is
// less than or equal to the corresponding component of other.
func (v *Vector) CausallyBefore(other *Vector) bool {
	for _, id := range unionIds(v, other) {
		if v.Get(id) > other.Get(id) {
			return false
		}
	}
	return true
}

// CausallyBeforeInc reports whether v <= other, treating v's component for
// id as if it had already been incremented by one.
func (v *Vector) CausallyBeforeInc(other *Vector, id uint32) bool {
	for _, pid := range unionIds(v, other) {
		got := v.Get(pid)
		if pid == id {
			got++
		}
		if got > other.Get(pid) {
			return false
		}
	}
	return true
}

// Concurrent reports whether v and other are incomparable under
// CausallyBefore.
func (v *Vector) Concurrent(other *Vector) bool {
	return !v.CausallyBefore(other) && !other.CausallyBefore(v)
}

// VDiff returns the L1 distance between a and b: the sum of the absolute
// differences of their components. VDiff does not require a and b to be
// causally comparable.
func VDiff(a, b *Vector) uint64 {
	var sum uint64
	for _, id := range unionIds(a, b) {
		av, bv := a.Get(id), b.Get(id)
		if av > bv {
			sum += av - bv
		} else {
			sum += bv - av
		}
	}
	return sum
}

// LCS returns the least common successor of a and b: the component-wise
// maximum, i.e. the smallest vector causally after both.
func LCS(a, b *Vector) *Vector {
	out := New()
	for _, id := range unionIds(a, b) {
		av, bv := a.Get(id), b.Get(id)
		if av > bv {
			out.Set(id, av)
		} else {
			out.Set(id, bv)
		}
	}
	return out
}

// LCP returns the least common predecessor of a and b: the component-wise
// minimum, i.e. the largest vector causally before both.
func LCP(a, b *Vector) *Vector {
	out := New()
	for _, id := range unionIds(a, b) {
		av, bv := a.Get(id), b.Get(id)
		if av < bv {
			out.Set(id, av)
		} else {
			out.Set(id, bv)
		}
	}
	return out
}

// String returns the canonical serialization of v: decimal "id:count" pairs
// separated by ';', sorted by id, with zero-valued entries omitted. The
// empty string denotes the zero vector.
func (v *Vector) String() string {
	var b strings.Builder
	first := true
	for _, id := range v.Ids() {
		n := v.Get(id)
		if n == 0 {
			continue
		}
		if !first {
			b.WriteByte(';')
		}
		first = false
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(n, 10))
	}
	return b.String()
}

// Parse decodes the canonical "id:count;..." form produced by String.
func Parse(s string) (*Vector, error) {
	v := New()
	if s == "" {
		return v, nil
	}
	for _, tok := range strings.Split(s, ";") {
		id, n, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		v.Set(id, n)
	}
	return v, nil
}

func parseToken(tok string) (id uint32, n uint64, err error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("vector: malformed token %q", tok)
	}
	idv, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "vector: bad participant id in %q", tok)
	}
	nv, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "vector: bad count in %q", tok)
	}
	return uint32(idv), nv, nil
}

// EncodeDiff serializes v against a base vector using the diff-against-base
// wire form from the external request encoding: each token is either
// "id:+delta" (relative increment) when v's component is greater than
// base's, or "id:count" (absolute override) when it is smaller. Components
// equal to base are omitted.
func (v *Vector) EncodeDiff(base *Vector) string {
	var b strings.Builder
	first := true
	for _, id := range unionIds(v, base) {
		vv, bv := v.Get(id), base.Get(id)
		if vv == bv {
			continue
		}
		if !first {
			b.WriteByte(';')
		}
		first = false
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte(':')
		if vv > bv {
			b.WriteByte('+')
			b.WriteString(strconv.FormatUint(vv-bv, 10))
		} else {
			b.WriteString(strconv.FormatUint(vv, 10))
		}
	}
	return b.String()
}

// DecodeDiff parses the diff-against-base wire form produced by EncodeDiff,
// applying it on top of base. base is not modified.
func DecodeDiff(base *Vector, s string) (*Vector, error) {
	out := base.Copy()
	if s == "" {
		return out, nil
	}
	for _, tok := range strings.Split(s, ";") {
		parts := strings.SplitN(tok, ":", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("vector: malformed diff token %q", tok)
		}
		idv, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "vector: bad participant id in %q", tok)
		}
		id := uint32(idv)
		val := parts[1]
		if strings.HasPrefix(val, "+") {
			delta, err := strconv.ParseUint(val[1:], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "vector: bad delta in %q", tok)
			}
			out.Set(id, base.Get(id)+delta)
		} else {
			n, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "vector: bad absolute count in %q", tok)
			}
			out.Set(id, n)
		}
	}
	return out, nil
}
