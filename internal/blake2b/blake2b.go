// Package blake2b implements the BLAKE2b hash function (RFC 7693) with
// keying, salting, personalization and tree-mode parameters.
//
// A Digest is a single-use state machine:
//
//	uninitialized --Initialize--> initialized --Finalize--> finalized
//
// Write and Finalize fail with ErrInvalidState outside the initialized state.
//
// The package exists for the Argon2 engine, which needs digests of every
// size from 1 to 64 bytes and the incremental interface for H0 and H'.
package blake2b

import (
	"encoding/binary"
	"errors"
	"math/bits"
)

const (
	// Size is the maximum digest size in bytes.
	Size = 64

	// BlockSize is the compression block size in bytes.
	BlockSize = 128

	// MaxKeySize is the largest key that fits the single key block.
	MaxKeySize = 128

	// SaltSize and PersonalSize are the sizes of the salt and
	// personalization fields of the parameter block.
	SaltSize     = 16
	PersonalSize = 16

	rounds = 12
)

// iv is the SHA-512 initial hash value.
var iv = [8]uint64{
	0x6a09e667f3bcc908, 0xbb67ae8584caa73b,
	0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
	0x510e527fade682d1, 0x9b05688c2b3e6c1f,
	0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
}

// sigma is the message word schedule. Rounds 10 and 11 reuse rows 0 and 1.
var sigma = [rounds][16]uint8{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
}

var (
	// ErrInvalidState is returned by Write and Finalize when the digest has
	// not been initialized or has already been finalized.
	ErrInvalidState = errors.New("blake2b: invalid state")

	ErrInvalidSize     = errors.New("blake2b: digest size must be between 1 and 64")
	ErrKeyTooLong      = errors.New("blake2b: key too long")
	ErrSaltTooLong     = errors.New("blake2b: salt too long")
	ErrPersonalTooLong = errors.New("blake2b: personalization too long")
)

type state uint8

const (
	uninitialized state = iota
	initialized
	finalized
)

// Digest is the incremental hashing state.
type Digest struct {
	h [8]uint64 // chaining value
	t [2]uint64 // 128-bit byte counter, low word first
	f [2]uint64 // last-block and last-node flags

	// buf holds up to one block of input not yet compressed; n is its fill.
	buf [BlockSize]byte
	n   int

	size  int
	state state
}

// New returns an initialized digest for cfg. A keyed digest has already
// absorbed its padded key block.
func New(cfg *Config) (*Digest, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	d := new(Digest)
	d.Initialize(params)
	if len(cfg.Key) > 0 {
		var block [BlockSize]byte
		copy(block[:], cfg.Key)
		d.Write(block[:])
		clear(block[:])
	}
	return d, nil
}

// Initialize sets the chaining value to IV XOR params and resets counters,
// flags and buffered input. The digest size is read from the low byte of
// params[0].
func (d *Digest) Initialize(params [8]uint64) {
	for i := range d.h {
		d.h[i] = iv[i] ^ params[i]
	}
	d.t = [2]uint64{}
	d.f = [2]uint64{}
	clear(d.buf[:])
	d.n = 0
	d.size = int(params[0] & 0xff)
	d.state = initialized
}

// Size returns the digest size in bytes.
func (d *Digest) Size() int { return d.size }

// BlockSize returns the compression block size.
func (d *Digest) BlockSize() int { return BlockSize }

// Write absorbs p. The final block is kept buffered until Finalize.
//
// A full buffer is only compressed once more input arrives, because the
// last block must be compressed with the final flag and the counter must
// not include padding.
func (d *Digest) Write(p []byte) (int, error) {
	if d.state != initialized {
		return 0, ErrInvalidState
	}
	written := len(p)
	for len(p) > 0 {
		if d.n == BlockSize {
			d.increment(BlockSize)
			d.compress()
			d.n = 0
		}
		c := copy(d.buf[d.n:], p)
		d.n += c
		p = p[c:]
	}
	return written, nil
}

// Finalize pads and compresses the buffered block with the last-block flag
// set, and also the last-node flag when lastNode is true. It appends the
// digest to out and wipes the state.
func (d *Digest) Finalize(lastNode bool, out []byte) ([]byte, error) {
	if d.state != initialized {
		return out, ErrInvalidState
	}
	clear(d.buf[d.n:])
	d.increment(uint64(d.n))
	d.f[0] = ^uint64(0)
	if lastNode {
		d.f[1] = ^uint64(0)
	}
	d.compress()

	var sum [Size]byte
	for i, v := range d.h {
		binary.LittleEndian.PutUint64(sum[i*8:], v)
	}
	out = append(out, sum[:d.size]...)

	clear(sum[:])
	d.wipe()
	d.state = finalized
	return out, nil
}

// wipe clears everything derived from the input or key.
func (d *Digest) wipe() {
	d.h = [8]uint64{}
	d.t = [2]uint64{}
	d.f = [2]uint64{}
	clear(d.buf[:])
	d.n = 0
}

// increment adds n to the byte counter with carry into the high word.
func (d *Digest) increment(n uint64) {
	var carry uint64
	d.t[0], carry = bits.Add64(d.t[0], n, 0)
	d.t[1] += carry
}

// compress is the function F of RFC 7693 section 3.2 applied to buf.
//
//	v[0..7]  = h
//	v[8..15] = IV, with t mixed into v12, v13 and f into v14, v15
//	12 rounds of G over columns then diagonals
//	h ^= v[0..7] ^ v[8..15]
func (d *Digest) compress() {
	var m [16]uint64
	for i := range m {
		m[i] = binary.LittleEndian.Uint64(d.buf[i*8:])
	}

	v := [16]uint64{
		d.h[0], d.h[1], d.h[2], d.h[3], d.h[4], d.h[5], d.h[6], d.h[7],
		iv[0], iv[1], iv[2], iv[3],
		iv[4] ^ d.t[0], iv[5] ^ d.t[1], iv[6] ^ d.f[0], iv[7] ^ d.f[1],
	}

	for r := 0; r < rounds; r++ {
		s := &sigma[r]
		mix(&v, 0, 4, 8, 12, m[s[0]], m[s[1]])
		mix(&v, 1, 5, 9, 13, m[s[2]], m[s[3]])
		mix(&v, 2, 6, 10, 14, m[s[4]], m[s[5]])
		mix(&v, 3, 7, 11, 15, m[s[6]], m[s[7]])
		// Diagonals.
		mix(&v, 0, 5, 10, 15, m[s[8]], m[s[9]])
		mix(&v, 1, 6, 11, 12, m[s[10]], m[s[11]])
		mix(&v, 2, 7, 8, 13, m[s[12]], m[s[13]])
		mix(&v, 3, 4, 9, 14, m[s[14]], m[s[15]])
	}

	for i := range d.h {
		d.h[i] ^= v[i] ^ v[i+8]
	}
	clear(m[:])
}

// mix is G of RFC 7693 section 3.1 with rotations 32, 24, 16, 63.
func mix(v *[16]uint64, a, b, c, d int, x, y uint64) {
	v[a] += v[b] + x
	v[d] = bits.RotateLeft64(v[d]^v[a], -32)
	v[c] += v[d]
	v[b] = bits.RotateLeft64(v[b]^v[c], -24)
	v[a] += v[b] + y
	v[d] = bits.RotateLeft64(v[d]^v[a], -16)
	v[c] += v[d]
	v[b] = bits.RotateLeft64(v[b]^v[c], -63)
}

// Sum returns the size-byte unkeyed digest of data.
func Sum(size int, data ...[]byte) ([]byte, error) {
	if size < 1 || size > Size {
		return nil, ErrInvalidSize
	}
	d, err := New(&Config{Size: uint8(size)})
	if err != nil {
		return nil, err
	}
	for _, p := range data {
		d.Write(p)
	}
	return d.Finalize(false, make([]byte, 0, size))
}

// Sum512 returns the 64-byte unkeyed digest of data.
func Sum512(data []byte) [Size]byte {
	var out [Size]byte
	d, _ := New(&Config{Size: Size})
	d.Write(data)
	d.Finalize(false, out[:0])
	return out
}
