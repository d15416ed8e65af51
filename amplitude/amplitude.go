// Package amplitude provides an exact dyadic-rational accumulator that sums
// terms of the form sigma * 2^p, sigma in {-1, +1}, so that the outer sum
// over Clifford slices never loses precision to floating point rounding.
// The accumulated total is a dyadic rational m / 2^p whose numerator m is
// in general not +-1.
package amplitude

import "math/big"

// Term is a single signed power-of-two contribution sigma * 2^pow2,
// pow2 <= 0, as returned by the Clifford kernel (possibly further scaled
// by an outer sign from the red-qubit overlap and an extra 2^-numNodes
// factor from the outer sum).
type Term struct {
	Sign int // +1 or -1
	Pow2 int // may be positive or negative; the represented value is Sign * 2^Pow2
}

// Rat returns the exact big.Rat value of t.
func (t Term) Rat() *big.Rat {
	r := new(big.Rat)
	if t.Pow2 >= 0 {
		num := new(big.Int).Lsh(big.NewInt(int64(t.Sign)), uint(t.Pow2))
		r.SetInt(num)
	} else {
		denom := new(big.Int).Lsh(big.NewInt(1), uint(-t.Pow2))
		r.SetFrac(big.NewInt(int64(t.Sign)), denom)
	}
	return r
}

// Sum is an exact running total of Terms.
type Sum struct {
	total *big.Rat
}

// NewSum returns a zero-valued accumulator.
func NewSum() *Sum {
	return &Sum{total: new(big.Rat)}
}

// Add folds t into the running total.
func (s *Sum) Add(t Term) {
	s.total.Add(s.total, t.Rat())
}

// AddRat folds an already-computed rational into the running total, used
// when reducing partial sums from parallel workers.
func (s *Sum) AddRat(r *big.Rat) {
	s.total.Add(s.total, r)
}

// Rat returns the exact rational value accumulated so far. The returned
// value aliases the accumulator's internal state and must not be mutated.
func (s *Sum) Rat() *big.Rat {
	return s.total
}

// Normalize reports whether r is exactly representable as sign * 2^-p for
// some sign in {-1, 0, +1} and p >= 0, i.e. whether r is zero or a reduced
// fraction with numerator +-1 and a power-of-two denominator. It returns
// ok == false for any other rational, including dyadic ones such as -3/256
// or 7/8192, which full-circuit amplitudes summed over many slices can be.
func Normalize(r *big.Rat) (sign int, p int, ok bool) {
	if r.Sign() == 0 {
		return 0, 0, true
	}
	num := r.Num()
	den := r.Denom()
	absNum := new(big.Int).Abs(num)
	if absNum.CmpAbs(big.NewInt(1)) != 0 {
		return 0, 0, false
	}
	if !isPowerOfTwo(den) {
		return 0, 0, false
	}
	sign = 1
	if num.Sign() < 0 {
		sign = -1
	}
	return sign, den.BitLen() - 1, true
}

func isPowerOfTwo(n *big.Int) bool {
	if n.Sign() <= 0 {
		return false
	}
	if n.BitLen() == 1 {
		return true
	}
	var t big.Int
	t.Sub(n, big.NewInt(1))
	t.And(&t, n)
	return t.Sign() == 0
}
