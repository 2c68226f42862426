// This file defines the memory block and its byte conversions.
//
// Reference: RFC 9106 section 3.2, where blocks are read and written as
// little-endian 64-bit words.
package engine

import (
	"encoding/binary"
	"fmt"
)

const (
	// BlockSize is the size of a memory block in bytes.
	BlockSize = 1024

	// BlockWords is the number of 64-bit words in a block.
	BlockWords = BlockSize / 8
)

// Block is one 1024-byte unit of the memory matrix, held as 128
// little-endian words.
//
// Blocks contain no pointers, so a matrix of them can live in a region the
// garbage collector treats as raw bytes (see securemem.Buffer).
type Block [BlockWords]uint64

// XOR sets b = b XOR other. fillBlock calls it up to three times per
// block, so it stays a plain loop the compiler can inline.
func (b *Block) XOR(other *Block) {
	for i := range b {
		b[i] ^= other[i]
	}
}

// Zero clears the block.
func (b *Block) Zero() {
	clear(b[:])
}

// FromBytes loads the block from exactly BlockSize little-endian bytes.
// Seeding uses it to turn the 1024-byte H' output into a block.
func (b *Block) FromBytes(data []byte) error {
	if len(data) != BlockSize {
		return &InvalidBlockSizeError{Got: len(data)}
	}
	for i := range b {
		b[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	return nil
}

// PutBytes stores the block into data, which must hold BlockSize bytes.
// Finalization uses it to feed the XOR of the last column to H'.
func (b *Block) PutBytes(data []byte) error {
	if len(data) < BlockSize {
		return &InvalidBlockSizeError{Got: len(data)}
	}
	for i, v := range b {
		binary.LittleEndian.PutUint64(data[i*8:], v)
	}
	return nil
}

// InvalidBlockSizeError is returned when a byte slice of the wrong length is
// converted to or from a Block.
type InvalidBlockSizeError struct {
	Got int
}

func (e *InvalidBlockSizeError) Error() string {
	return fmt.Sprintf("engine: invalid block size: got %d bytes, want %d", e.Got, BlockSize)
}
