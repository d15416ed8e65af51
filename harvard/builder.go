// Package harvard builds the QuEra-Harvard phase polynomial: alternating
// layers of CCZ/CZ "rectangles" and Hadamard-conjugated CNOT mixing, laid
// out on a k-dimensional hypercube of red/blue/green qubit triples.
package harvard

import (
	"fmt"
	"math/bits"

	"queraharvard/phasepoly"
)

// MaxK is the largest hypercube dimension the Clifford kernel downstream
// can evaluate: the per-slice residual circuit has 2*2^k qubits, and the
// kernel caps n at 64.
const MaxK = 5

// ErrDimensionOutOfRange is returned by Build when k is negative or
// exceeds MaxK.
var ErrDimensionOutOfRange = fmt.Errorf("harvard: k must be in [0, %d]", MaxK)

// Layout describes the qubit index assignment for a given k: n = 3*2^k
// qubits total, NumNodes = 2^k nodes per color. Qubit 3*i is the red
// qubit of node i, 3*i+1 is blue, 3*i+2 is green.
type Layout struct {
	K        int
	NumNodes int
	NumQubit int
}

// NewLayout validates k and returns the corresponding Layout.
func NewLayout(k int) (Layout, error) {
	if k < 0 || k > MaxK {
		return Layout{}, ErrDimensionOutOfRange
	}
	numNodes := 1 << uint(k)
	return Layout{K: k, NumNodes: numNodes, NumQubit: 3 * numNodes}, nil
}

// Red, Blue, Green return the global qubit index of the given color at
// node i.
func (l Layout) Red(i int) int   { return 3 * i }
func (l Layout) Blue(i int) int  { return 3*i + 1 }
func (l Layout) Green(i int) int { return 3*i + 2 }

// Build constructs the phase polynomial of the QuEra-Harvard circuit on
// 3*2^k qubits, deterministically, with no randomness.
func Build(k int) (*phasepoly.Polynomial, Layout, error) {
	layout, err := NewLayout(k)
	if err != nil {
		return nil, Layout{}, err
	}

	p := phasepoly.New()

	// Initial A-layer: one rectangle per node. Pauli Z contributions are
	// absorbed into the Pauli frame and omitted.
	for i := 0; i < layout.NumNodes; i++ {
		r, b, g := layout.Red(i), layout.Blue(i), layout.Green(i)
		p.ApplyCCZ(r, b, g)
		p.ApplyCZ(r, b)
		p.ApplyCZ(b, g)
		p.ApplyCZ(r, g)
	}

	for direction := 0; direction < k; direction++ {
		for x := 0; x < layout.NumNodes; x++ {
			if bits.OnesCount(uint(x))%2 == 0 {
				y := x ^ (1 << uint(direction))
				if err := p.ApplyCNOT(layout.Red(x), layout.Red(y)); err != nil {
					return nil, Layout{}, fmt.Errorf("harvard: building direction %d, node %d: %w", direction, x, err)
				}
				if err := p.ApplyCNOT(layout.Blue(x), layout.Blue(y)); err != nil {
					return nil, Layout{}, fmt.Errorf("harvard: building direction %d, node %d: %w", direction, x, err)
				}
				if err := p.ApplyCNOT(layout.Green(x), layout.Green(y)); err != nil {
					return nil, Layout{}, fmt.Errorf("harvard: building direction %d, node %d: %w", direction, x, err)
				}
			}
		}

		for i := 0; i < layout.NumNodes; i++ {
			r, b, g := layout.Red(i), layout.Blue(i), layout.Green(i)
			p.ApplyCCZ(r, b, g)
			p.ApplyCZ(r, b)
			p.ApplyCZ(b, g)
			// Alternating A/B layer pattern, preserved verbatim: some
			// A/B rectangles on even-parity nodes would otherwise cancel.
			if direction%2 == 1 {
				p.ApplyCZ(r, g)
			}
		}
	}

	return p, layout, nil
}
