// Package runid renders a short content fingerprint for a computed
// amplitude run, so that repeated experiments over the same (k, s,
// slice tables) can be correlated across log lines. It hashes the
// circuit's parameters with SHAKE-256 and truncates the digest to a
// short hex string.
package runid

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Fingerprint hashes k, s, and every word of the slice tables' P1/P2
// entries in table order, zero words included (C0 is implied by s, since
// it is derived deterministically from s and the layout), into a stable
// 8-byte tag, rendered as hex.
func Fingerprint(k int, s uint64, p1 []uint64, p2 [][]uint64) string {
	h := sha3.NewShake256()

	var hdr [16]byte
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(k))
	binary.LittleEndian.PutUint64(hdr[8:16], s)
	h.Write(hdr[:])

	var word [8]byte
	for _, v := range p1 {
		binary.LittleEndian.PutUint64(word[:], v)
		h.Write(word[:])
	}
	for _, row := range p2 {
		for _, v := range row {
			binary.LittleEndian.PutUint64(word[:], v)
			h.Write(word[:])
		}
	}

	var digest [8]byte
	h.Read(digest[:])
	return hex.EncodeToString(digest[:])
}
