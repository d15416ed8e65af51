// Package symmetry provides a dedup helper for 64-bit query bitstrings:
// it tracks the orbit of each bitstring under a small commuting
// permutation group and reports whether a query is new. It is an
// ancillary, external collaborator used only to deduplicate experiment
// queries; it is never on the amplitude computation path.
package symmetry

// nybbleReverse reverses the bit order within each group of 4 consecutive
// bits: bit i maps to bit 4*(i/4) + (3 - i%4).
func nybbleReverse(b uint64) uint64 {
	var out uint64
	for i := 0; i < 64; i++ {
		if b&(uint64(1)<<uint(i)) == 0 {
			continue
		}
		target := 4*(i/4) + (3 - i%4)
		out |= uint64(1) << uint(target)
	}
	return out
}

// byteHalfSwap swaps the two nybbles within each byte, and the two
// bit-pairs within each nybble.
func byteHalfSwap(b uint64) uint64 {
	var out uint64
	const bytesInWord = 8
	const nybblesInByte = 2
	const pairsInNybble = 2
	for byteIdx := 0; byteIdx < bytesInWord; byteIdx++ {
		byteOffset := byteIdx * 8
		for nybbleIdx := 0; nybbleIdx < nybblesInByte; nybbleIdx++ {
			srcNybbleOffset := byteOffset + nybbleIdx*4
			dstNybbleOffset := byteOffset + (1-nybbleIdx)*4
			for pairIdx := 0; pairIdx < pairsInNybble; pairIdx++ {
				srcOffset := srcNybbleOffset + pairIdx*2
				dstOffset := dstNybbleOffset + pairIdx*2
				b0 := b & (uint64(1) << uint(srcOffset))
				b1 := b & (uint64(1) << uint(srcOffset+1))
				if b0 != 0 {
					out |= uint64(1) << uint(dstOffset+1)
				}
				if b1 != 0 {
					out |= uint64(1) << uint(dstOffset)
				}
			}
		}
	}
	return out
}

// GenerateSymmetries returns the orbit of bitstring under the group
// generated by nybbleReverse and byteHalfSwap: size 1, 2, or 4. The
// identity is always first; duplicates arising from fixed points of
// either generator are omitted.
func GenerateSymmetries(bitstring uint64) []uint64 {
	out := make([]uint64, 0, 4)
	out = append(out, bitstring)

	inverted := nybbleReverse(bitstring)
	if inverted != bitstring {
		out = append(out, inverted)
	}

	swapped := byteHalfSwap(bitstring)
	if swapped != bitstring && swapped != inverted {
		out = append(out, swapped)
	}

	// inverted * swapped is a distinct fourth element only when neither
	// generator alone was the identity on this bitstring.
	if len(out) == 3 {
		out = append(out, nybbleReverse(swapped))
	}
	return out
}

// Tracker deduplicates bitstring queries by orbit. Its state persists for
// the object's lifetime and is not safe for concurrent use.
type Tracker struct {
	seen map[uint64]struct{}
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[uint64]struct{})}
}

// Observe returns 0 if bitstring's orbit was already observed, or the
// orbit size (1, 2, or 4) just inserted if this is the first time any
// member of the orbit has been seen.
func (t *Tracker) Observe(bitstring uint64) int {
	if _, ok := t.seen[bitstring]; ok {
		return 0
	}
	orbit := GenerateSymmetries(bitstring)
	for _, member := range orbit {
		t.seen[member] = struct{}{}
	}
	return len(orbit)
}
