package clifford

// ExponentialSumReal evaluates the zero-zero amplitude <0^n|C|0^n> of the
// H-CZ-Z-H circuit c, where n = c.N <= MaxQubits.
//
// It returns ok == false when the sum cancels (the amplitude is exactly
// zero). Otherwise it returns sign in {-1, +1} and pow2 <= 0 such that the
// amplitude equals sign * 2^pow2. A circuit with c.N > MaxQubits (which
// New never returns) also yields ok == false; no error is reported.
//
// This is the real-amplitude specialization of the symmetric bilinear
// form reduction on page 25-26 of https://arxiv.org/pdf/1808.00128.pdf:
// repeatedly pick the lowest-indexed active variable, find a partner that
// makes the form asymmetric, and either fold a linear residual (doubling
// or cancelling the sum) or eliminate a pair of variables via a rank-1
// update. c is passed by value; the caller's circuit is never mutated.
func ExponentialSumReal(c Circuit) (sign int, pow2 int, ok bool) {
	n := c.N
	if n > MaxQubits {
		return 0, 0, false
	}

	M := c.M
	L := c.L

	var active [MaxQubits]bool
	for i := 0; i < n; i++ {
		active[i] = true
	}
	nActive := n

	pow2Count := 0
	sigma := false

	for nActive >= 1 {
		var i1 int
		for i1 = 0; i1 < n; i1++ {
			if active[i1] {
				break
			}
		}

		i2 := -1
		for j := 0; j < n; j++ {
			if ((M[i1]>>uint(j))&1) != ((M[j]>>uint(i1))&1) {
				i2 = j
				break
			}
		}

		l1 := ((L>>uint(i1))&1)^((M[i1]>>uint(i1))&1) == 1

		if i2 < 0 {
			// Linear in x_{i1}: the sum over x_{i1} either cancels or doubles.
			if l1 {
				return 0, 0, false
			}
			pow2Count++
			nActive--
			M[i1] = 0
			mask := ^(uint64(1) << uint(i1))
			for j := 0; j < n; j++ {
				M[j] &= mask
			}
			L &= mask
			active[i1] = false
			continue
		}

		l2 := ((L>>uint(i2))&1)^((M[i2]>>uint(i2))&1) == 1

		clearMask := ^(uint64(1) << uint(i1))
		clearMask &= ^(uint64(1) << uint(i2))
		L &= clearMask

		var m1, m2 uint64
		for j := 0; j < n; j++ {
			m1 ^= ((M[j] >> uint(i1)) & 1) << uint(j)
			m2 ^= ((M[j] >> uint(i2)) & 1) << uint(j)
		}
		m1 ^= M[i1]
		m2 ^= M[i2]
		m1 &= clearMask
		m2 &= clearMask

		M[i1] = 0
		M[i2] = 0
		for j := 0; j < n; j++ {
			M[j] &= clearMask
		}

		if l1 {
			L ^= m2
		}
		if l2 {
			L ^= m1
		}
		for j := 0; j < n; j++ {
			if (m2>>uint(j))&1 == 1 {
				M[j] ^= m1
			}
		}

		pow2Count++
		sigma = sigma != (l1 && l2)
		active[i1] = false
		active[i2] = false
		nActive -= 2
	}

	out := 1
	if sigma {
		out = -1
	}
	return out, pow2Count - n, true
}
