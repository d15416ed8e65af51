// Package slice repackages a fully-assembled phase polynomial into the
// slice-indexed tables consumed by the outer-sum driver: a base Clifford
// circuit C0 on blue+green qubits, and per-red-index update tables P1
// (linear) and P2 (quadratic).
package slice

import (
	"fmt"

	"queraharvard/clifford"
	"queraharvard/harvard"
	"queraharvard/phasepoly"
)

// ErrUnexpectedMonomial is returned when a monomial's color signature is
// not one of the four the QuEra builder is guaranteed to produce
// (red+blue+green, blue+green, red+green, red+blue): any other signature
// indicates a defect in the circuit builder, not a valid input.
var ErrUnexpectedMonomial = fmt.Errorf("slice: monomial has an unexpected color signature")

// Tables holds the repackaged, slice-indexed view of a phase polynomial.
type Tables struct {
	C0 clifford.Circuit // residual circuit on blue+green qubits when all red bits are 0
	P1 []uint64         // P1[r]: L-update to fold in when red bit r is set
	P2 [][]uint64       // P2[r][q]: M[q]-update to fold in when red bit r is set
}

// colorIndex returns the intra-color index of qubit q and its color class
// (0 = red, 1 = blue, 2 = green). Qubits are laid out in node-major triples
// (red, blue, green), so color is q%3 and the intra-color index is q/3.
func colorIndex(q int) (idx int, color int) {
	return q / 3, q % 3
}

// Build projects the target bitstring s onto red/blue/green qubits and
// repackages p into Tables, given the layout used to build p. numQubitsBG
// is the blue+green qubit count 2*numNodes, and green qubits are indexed
// starting at numNodes within that space.
func Build(p *phasepoly.Polynomial, layout harvard.Layout, s uint64) (*Tables, uint64, error) {
	numNodes := layout.NumNodes
	numQubitsBG := 2 * numNodes

	var sR, sB, sG uint64
	for i := 0; i < numNodes; i++ {
		sR ^= ((s >> uint(layout.Red(i))) & 1) << uint(i)
		sB ^= ((s >> uint(layout.Blue(i))) & 1) << uint(i)
		sG ^= ((s >> uint(layout.Green(i))) & 1) << uint(i)
	}

	c0, err := clifford.New(numQubitsBG)
	if err != nil {
		return nil, 0, fmt.Errorf("slice: %w", err)
	}
	c0.L = sB ^ (sG << uint(numNodes))

	p1 := make([]uint64, numNodes)
	p2 := make([][]uint64, numNodes)
	for r := range p2 {
		p2[r] = make([]uint64, numQubitsBG)
	}

	for _, m := range p.Monomials() {
		var red, blue, green int
		var hasRed, hasBlue, hasGreen bool
		for i := 0; i < m.Size; i++ {
			idx, color := colorIndex(m.Vars[i])
			switch color {
			case 0:
				red, hasRed = idx, true
			case 1:
				blue, hasBlue = idx, true
			case 2:
				green, hasGreen = idx, true
			}
		}

		switch {
		case hasRed && hasBlue && hasGreen:
			p2[red][blue] ^= 1 << uint(numNodes+green)
		case !hasRed && hasBlue && hasGreen:
			c0.M[blue] ^= 1 << uint(numNodes+green)
		case hasRed && !hasBlue && hasGreen:
			p1[red] ^= 1 << uint(numNodes+green)
		case hasRed && hasBlue && !hasGreen:
			p1[red] ^= 1 << uint(blue)
		default:
			return nil, 0, fmt.Errorf("%w: %+v", ErrUnexpectedMonomial, m)
		}
	}

	return &Tables{C0: c0, P1: p1, P2: p2}, sR, nil
}
