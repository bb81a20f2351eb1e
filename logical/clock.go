// Package logical implements a single per-participant counter used as the
// building block for state-vector components.
package logical

import "math/big"

var zero = new(big.Int)
var one = big.NewInt(1)

// A Clock is a single monotonically non-decreasing counter.
//
// The zero value for Clock is a zeroed counter ready to use.
type Clock struct {
	counter *big.Int
}

// New returns a Clock initialized to n.
func New(n uint64) *Clock {
	clk := new(Clock)
	clk.counter = new(big.Int).SetUint64(n)
	return clk
}

// Text returns a text representation of the clock value in the given base.
func (clk *Clock) Text(base int) string {
	if clk.counter == nil {
		clk.counter = new(big.Int)
	}
	return clk.counter.Text(base)
}

// String returns a base 10 string representation of the clock's value.
func (clk *Clock) String() string {
	if clk.counter == nil {
		clk.counter = new(big.Int)
	}
	return clk.counter.String()
}

// Uint64 returns the clock's value as a uint64. Values that overflow
// uint64 saturate at the maximum representable value.
func (clk *Clock) Uint64() uint64 {
	if clk.counter == nil {
		return 0
	}
	if clk.counter.IsUint64() {
		return clk.counter.Uint64()
	}
	return ^uint64(0)
}

// Tick increments the Clock by 1.
func (clk *Clock) Tick() {
	if clk.counter == nil {
		clk.counter = new(big.Int)
	}
	clk.counter.Add(clk.counter, one)
}

// Add increments the Clock by k.
func (clk *Clock) Add(k uint64) {
	if clk.counter == nil {
		clk.counter = new(big.Int)
	}
	clk.counter.Add(clk.counter, new(big.Int).SetUint64(k))
}

// Cmp compares clk to other.
//
// The result is:
//
//	-1 if clk < other
//	 0 if clk == other
//	 1 if clk > other
func (clk *Clock) Cmp(other *Clock) int {
	if clk.counter == nil {
		clk.counter = new(big.Int)
	}
	if other.counter == nil {
		other.counter = new(big.Int)
	}
	return clk.counter.Cmp(other.counter)
}

// SetString sets the clock to the value specified in the given base, which
// must be a natural number (i.e. n >= 0), returning the clock and a boolean
// indicating success.
//
// If the operation fails, the clock value is unchanged.
func (clk *Clock) SetString(value string, base int) (*Clock, bool) {
	newValue, succ := new(big.Int).SetString(value, base)
	if succ && newValue.Cmp(zero) != -1 {
		clk.counter = newValue
		return clk, true
	}
	return clk, false
}

// Set sets clk to other's value and returns clk.
func (clk *Clock) Set(other *Clock) *Clock {
	if other.counter == nil {
		other.counter = new(big.Int)
	}
	if clk.counter == nil {
		clk.counter = new(big.Int)
	}
	clk.counter.Set(other.counter)
	return clk
}

// Max sets clk to the maximum of clk or other and returns clk.
func (clk *Clock) Max(other *Clock) *Clock {
	if clk.Cmp(other) < 0 {
		clk.Set(other)
	}
	return clk
}

// Min sets clk to the minimum of clk or other and returns clk.
func (clk *Clock) Min(other *Clock) *Clock {
	if clk.Cmp(other) > 0 {
		clk.Set(other)
	}
	return clk
}

// TickReceive sets the Clock to max{clk, other} + 1.
func (clk *Clock) TickReceive(other *Clock) {
	clk.Max(other).Tick()
}

// AbsDiff returns |clk - other| as a uint64, saturating on overflow.
func (clk *Clock) AbsDiff(other *Clock) uint64 {
	if clk.counter == nil {
		clk.counter = new(big.Int)
	}
	if other.counter == nil {
		other.counter = new(big.Int)
	}
	d := new(big.Int).Sub(clk.counter, other.counter)
	d.Abs(d)
	if d.IsUint64() {
		return d.Uint64()
	}
	return ^uint64(0)
}
