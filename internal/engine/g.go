// This file holds the BlaMka round underlying the permutation P.
//
// Reference: RFC 9106 section 3.6.
package engine

import "math/bits"

// fBlaMka is the multiply-hardened addition used in place of Blake2b's
// plain addition: x + y + 2*lo32(x)*lo32(y).
//
// The 32x32 multiply adds latency that GPUs and ASICs cannot shortcut. All
// arithmetic is modulo 2^64.
func fBlaMka(x, y uint64) uint64 {
	return x + y + 2*uint64(uint32(x))*uint64(uint32(y))
}

// gb is the Blake2b quarter-round with fBlaMka and rotations 32, 24, 16, 63.
// Unlike Blake2b's G it mixes in no message words.
func gb(a, b, c, d uint64) (uint64, uint64, uint64, uint64) {
	a = fBlaMka(a, b)
	d = bits.RotateLeft64(d^a, -32)
	c = fBlaMka(c, d)
	b = bits.RotateLeft64(b^c, -24)

	a = fBlaMka(a, b)
	d = bits.RotateLeft64(d^a, -16)
	c = fBlaMka(c, d)
	b = bits.RotateLeft64(b^c, -63)

	return a, b, c, d
}

// blamkaRound applies one message-less Blake2b round: G over the four
// columns of the 4x4 word matrix, then over the four diagonals.
//
//	v0  v1  v2  v3
//	v4  v5  v6  v7
//	v8  v9  v10 v11
//	v12 v13 v14 v15
func blamkaRound(v *[16]uint64) {
	v[0], v[4], v[8], v[12] = gb(v[0], v[4], v[8], v[12])
	v[1], v[5], v[9], v[13] = gb(v[1], v[5], v[9], v[13])
	v[2], v[6], v[10], v[14] = gb(v[2], v[6], v[10], v[14])
	v[3], v[7], v[11], v[15] = gb(v[3], v[7], v[11], v[15])

	// Diagonals.
	v[0], v[5], v[10], v[15] = gb(v[0], v[5], v[10], v[15])
	v[1], v[6], v[11], v[12] = gb(v[1], v[6], v[11], v[12])
	v[2], v[7], v[8], v[13] = gb(v[2], v[7], v[8], v[13])
	v[3], v[4], v[9], v[14] = gb(v[3], v[4], v[9], v[14])
}
