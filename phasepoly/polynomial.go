// Package phasepoly implements a ℤ2-valued phase polynomial over binary
// variables of degree <= 3: a set of monomials, present if and only if
// their coefficient is 1, supporting the CCZ/CZ/Z toggle operations and
// the CNOT substitution rewrite used by the QuEra-Harvard circuit builder.
package phasepoly

import (
	"fmt"
	"sort"
)

// absent marks an unused slot in a packed monomial key.
const absent = 0x3FF // 10 bits, all set

// ErrControlEqualsTarget is returned by ApplyCNOT when con == tar.
var ErrControlEqualsTarget = fmt.Errorf("phasepoly: CNOT control equals target")

// ErrOverlappingControlTarget is returned by ApplyCNOT when a monomial
// already contains both the control and the target qubit: the QuEra
// builder never produces such a configuration, so encountering one is a
// logic error in the caller.
var ErrOverlappingControlTarget = fmt.Errorf("phasepoly: monomial contains both control and target")

// Monomial is an unordered set of 1 to 3 distinct qubit indices.
type Monomial struct {
	Vars [3]int
	Size int
}

// key canonicalizes a monomial (sorted ascending) into a packed uint32:
// three 10-bit fields, most-significant slots filled with absent when the
// monomial has fewer than 3 variables. Variables must fit in 10 bits
// (< 1024 qubits), far beyond the n <= 64 the kernel supports.
func key(vars ...int) uint32 {
	v := append([]int(nil), vars...)
	sort.Ints(v)
	a, b, c := absent, absent, absent
	switch len(v) {
	case 1:
		a = v[0]
	case 2:
		a, b = v[0], v[1]
	case 3:
		a, b, c = v[0], v[1], v[2]
	}
	return uint32(a) | uint32(b)<<10 | uint32(c)<<20
}

func unpackKey(k uint32) Monomial {
	a := int(k & absent)
	b := int((k >> 10) & absent)
	c := int((k >> 20) & absent)
	m := Monomial{}
	if a != absent {
		m.Vars[m.Size] = a
		m.Size++
	}
	if b != absent {
		m.Vars[m.Size] = b
		m.Size++
	}
	if c != absent {
		m.Vars[m.Size] = c
		m.Size++
	}
	return m
}

// Polynomial is a set of monomials with implicit binary coefficient 1;
// absence means coefficient 0.
type Polynomial struct {
	terms map[uint32]struct{}
}

// New returns the zero polynomial.
func New() *Polynomial {
	return &Polynomial{terms: make(map[uint32]struct{})}
}

// Len returns the number of present monomials.
func (p *Polynomial) Len() int {
	return len(p.terms)
}

// toggle flips the presence of the monomial with the given key.
func (p *Polynomial) toggle(k uint32) {
	if _, ok := p.terms[k]; ok {
		delete(p.terms, k)
	} else {
		p.terms[k] = struct{}{}
	}
}

// ApplyCCZ toggles the monomial {a, b, c}.
func (p *Polynomial) ApplyCCZ(a, b, c int) {
	p.toggle(key(a, b, c))
}

// ApplyCZ toggles the monomial {a, b}.
func (p *Polynomial) ApplyCZ(a, b int) {
	p.toggle(key(a, b))
}

// ApplyZ toggles the monomial {a}.
func (p *Polynomial) ApplyZ(a int) {
	p.toggle(key(a))
}

// ApplyCNOT rewrites every monomial containing tar by substituting
// x_tar <- x_tar xor x_con: the original monomial is left in place, and
// the monomial with tar replaced by con is toggled on (which may
// re-toggle an existing term, since XOR is its own fold), matching
// sim.cpp::apply_cnot's snapshot-then-rewrite structure. It iterates a
// snapshot of the key set so that toggles made during the sweep do not
// affect which monomials are visited.
func (p *Polynomial) ApplyCNOT(con, tar int) error {
	if con == tar {
		return ErrControlEqualsTarget
	}
	snapshot := make([]uint32, 0, len(p.terms))
	for k := range p.terms {
		snapshot = append(snapshot, k)
	}
	for _, k := range snapshot {
		m := unpackKey(k)
		idx, hasCon := -1, false
		for i := 0; i < m.Size; i++ {
			if m.Vars[i] == tar {
				idx = i
			}
			if m.Vars[i] == con {
				hasCon = true
			}
		}
		if idx < 0 {
			continue
		}
		if hasCon {
			return ErrOverlappingControlTarget
		}
		rewritten := make([]int, 0, m.Size)
		for i := 0; i < m.Size; i++ {
			if i == idx {
				rewritten = append(rewritten, con)
			} else {
				rewritten = append(rewritten, m.Vars[i])
			}
		}
		p.toggle(key(rewritten...))
	}
	return nil
}

// Monomials returns the present monomials in an arbitrary but stable
// (ascending key) order, suitable for deterministic iteration by the
// slicer.
func (p *Polynomial) Monomials() []Monomial {
	keys := make([]uint32, 0, len(p.terms))
	for k := range p.terms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]Monomial, len(keys))
	for i, k := range keys {
		out[i] = unpackKey(k)
	}
	return out
}
