// Package outersum implements the Gray-code outer-sum driver over the
// red-qubit assignments of a sliced QuEra-Harvard circuit, and the
// parallel dispatcher that partitions the sum into independent,
// Gray-code-prefix-seeded ranges.
package outersum

import (
	"math/bits"
	"sync"

	"queraharvard/amplitude"
	"queraharvard/clifford"
	"queraharvard/slice"
)

// grayStepper produces the sequence of (flippedBit, grayWord) pairs for
// x = start, start+1, ..., end-1 of the Gray code g(x) = x xor (x >> 1),
// exposed as an explicit stepper rather than a generator so callers can
// fold updates in a plain for loop.
type grayStepper struct {
	x    uint64
	end  uint64
	prev uint64 // gray(x-1); starts as gray(start-1)
}

func newGrayStepper(start, end uint64) *grayStepper {
	prev := (start - 1) ^ ((start - 1) >> 1)
	return &grayStepper{x: start, end: end, prev: prev}
}

// next returns the next (bit, gray) pair and true, or (0, 0, false) once
// the range is exhausted.
func (g *grayStepper) next() (bit uint, gray uint64, ok bool) {
	if g.x >= g.end {
		return 0, 0, false
	}
	y := g.x ^ (g.x >> 1)
	u := bits.TrailingZeros64(y ^ g.prev)
	g.prev = y
	g.x++
	return uint(u), y, true
}

// foldSlice evaluates the kernel on the current circuit c for the given Gray
// word y and red projection sR, accumulating into sum if the cheap parity
// filter does not prove the amplitude is zero.
func foldSlice(c clifford.Circuit, y, sR uint64, numNodes int, sum *amplitude.Sum) {
	// y spans only numNodes bits, so y & c.L already isolates C.L's low
	// half; the high half is brought down by the shift before masking.
	lowEven := bits.OnesCount64(y&c.L)%2 == 0
	highEven := bits.OnesCount64(y&(c.L>>uint(numNodes)))%2 == 0
	if !lowEven || !highEven {
		return
	}
	sign, pow2, ok := clifford.ExponentialSumReal(c)
	if !ok {
		return
	}
	overlap := bits.OnesCount64(sR&y) % 2
	outSign := sign
	if overlap == 1 {
		outSign = -outSign
	}
	sum.Add(amplitude.Term{Sign: outSign, Pow2: pow2 - numNodes})
}

// seed folds every P1[r]/P2[r][.] update whose bit r is set in gray into
// c, reproducing the state a serial walk would have reached after
// applying exactly those red-bit updates, in any order (they commute
// under XOR).
func seed(c *clifford.Circuit, gray uint64, t *slice.Tables, numQubitsBG int) {
	for r := 0; r < len(t.P1); r++ {
		if (gray>>uint(r))&1 == 0 {
			continue
		}
		for q := 0; q < numQubitsBG; q++ {
			c.M[q] ^= t.P2[r][q]
		}
		c.L ^= t.P1[r]
	}
}

// Serial evaluates the full outer sum over red assignments x in
// [0, 2^numNodes) against the given slice tables, handling the x = 0 term
// once before walking the Gray code for x in [1, N).
func Serial(t *slice.Tables, sR uint64, numNodes int) *amplitude.Sum {
	numQubitsBG := 2 * numNodes
	sum := amplitude.NewSum()

	if sign, pow2, ok := clifford.ExponentialSumReal(t.C0); ok {
		sum.Add(amplitude.Term{Sign: sign, Pow2: pow2 - numNodes})
	}

	n := uint64(1) << uint(numNodes)
	c := t.C0
	g := newGrayStepper(1, n)
	for {
		u, y, ok := g.next()
		if !ok {
			break
		}
		for q := 0; q < numQubitsBG; q++ {
			c.M[q] ^= t.P2[u][q]
		}
		c.L ^= t.P1[u]
		foldSlice(c, y, sR, numNodes, sum)
	}
	return sum
}

// Parallel evaluates the outer sum over T = min(N/4, 128) ranges, one
// goroutine per range, with at most workers of them running at once. Each
// range is seeded from a Gray-code prefix so it can start mid-range without
// replaying the prefix. workers <= 1 delegates to Serial; so does N < 8
// (k = 0 or k = 1, N = 2 or 4), where T would be 0 or 1 and the
// fixed-range-count partition below would degenerate.
func Parallel(t *slice.Tables, sR uint64, numNodes int, workers int) *amplitude.Sum {
	n := uint64(1) << uint(numNodes)
	if workers <= 1 || n < 8 {
		return Serial(t, sR, numNodes)
	}

	taskCount := n / 4
	if taskCount > 128 {
		taskCount = 128
	}

	numQubitsBG := 2 * numNodes
	partials := make([]*amplitude.Sum, taskCount)

	// T divides N by construction (both are powers of two): each range
	// spans exactly N/T elements, except the first, which starts at 1
	// instead of 0 so that x = 0 is handled separately exactly once.
	perRange := n / taskCount
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := uint64(0); i < taskCount; i++ {
		start := i * perRange
		if i == 0 {
			start = 1
		}
		end := perRange * (i + 1)
		wg.Add(1)
		go func(idx, start, end uint64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			partials[idx] = runRange(t, sR, numNodes, numQubitsBG, start, end)
		}(i, start, end)
	}
	wg.Wait()

	total := amplitude.NewSum()
	if sign, pow2, ok := clifford.ExponentialSumReal(t.C0); ok {
		total.Add(amplitude.Term{Sign: sign, Pow2: pow2 - numNodes})
	}
	for i := uint64(0); i < taskCount; i++ {
		total.AddRat(partials[i].Rat())
	}
	return total
}

// runRange computes the partial outer sum over x in [start, end), seeding
// its private circuit from Gray(start-1) before walking the range.
func runRange(t *slice.Tables, sR uint64, numNodes, numQubitsBG int, start, end uint64) *amplitude.Sum {
	sum := amplitude.NewSum()
	c := t.C0
	if start != 1 {
		seed(&c, gray(start-1), t, numQubitsBG)
	}
	g := newGrayStepper(start, end)
	for {
		u, y, ok := g.next()
		if !ok {
			break
		}
		for q := 0; q < numQubitsBG; q++ {
			c.M[q] ^= t.P2[u][q]
		}
		c.L ^= t.P1[u]
		foldSlice(c, y, sR, numNodes, sum)
	}
	return sum
}

func gray(x uint64) uint64 {
	return x ^ (x >> 1)
}
