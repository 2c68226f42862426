// This file implements the compression function G and the permutation P.
//
// Reference: RFC 9106 sections 3.5 and 3.6.
package engine

// The 1024-byte block is viewed as an 8x8 matrix of 16-byte registers
// (pairs of words). rowIndex[r] lists the words of register row r;
// columnIndex[c] lists the words of register column c.
var rowIndex, columnIndex [8][16]uint8

// For register row r the words are 16r .. 16r+15. For register column c
// they are the pairs (2c, 2c+1), (2c+16, 2c+17), ... (2c+112, 2c+113).
// Precomputing both lets permute walk rows and columns with one loop.
func init() {
	for r := range rowIndex {
		for k := range rowIndex[r] {
			rowIndex[r][k] = uint8(16*r + k)
		}
	}
	for c := range columnIndex {
		for k := 0; k < 8; k++ {
			columnIndex[c][2*k] = uint8(2*c + 16*k)
			columnIndex[c][2*k+1] = uint8(2*c + 16*k + 1)
		}
	}
}

// permute applies blamkaRound to the sixteen words of b selected by idx.
// The words are gathered into a local array so the round works on
// registers rather than through the index table.
func permute(b *Block, idx *[16]uint8) {
	var v [16]uint64
	for k, i := range idx {
		v[k] = b[i]
	}
	blamkaRound(&v)
	for k, i := range idx {
		b[i] = v[k]
	}
}

// fillBlock computes the compression function G(prev, ref) into next.
//
//	R = prev XOR ref
//	Q = P(R) with P applied to every row, then to every column
//	next = R XOR Q                      (withXOR == false)
//	next = next XOR R XOR Q             (withXOR == true)
//
// next may alias ref.
//
// withXOR is set on passes after the first at version 0x13, where the new
// block is folded into the one it replaces. Version 0x10 always overwrites.
func fillBlock(prev, ref, next *Block, withXOR bool) {
	var r, tmp Block

	// R = X XOR Y. tmp keeps R (and the old block) for the final XOR,
	// while r is permuted in place.
	r = *ref
	r.XOR(prev)
	tmp = r
	if withXOR {
		tmp.XOR(next)
	}

	// Q = P applied to the eight register rows, then the eight register
	// columns of the rows' output.
	for i := range rowIndex {
		permute(&r, &rowIndex[i])
	}
	for i := range columnIndex {
		permute(&r, &columnIndex[i])
	}

	// Z = Q XOR R, written last so next may alias ref.
	tmp.XOR(&r)
	*next = tmp
}
