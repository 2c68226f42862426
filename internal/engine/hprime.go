// This file implements H', the variable-length hash built on Blake2b.
//
// Reference: RFC 9106 section 3.3.
package engine

import (
	"encoding/binary"
	"errors"

	"github.com/opd-ai/go-argon2/internal/blake2b"
)

// ErrEmptyOutput is returned by Blake2bLong for a zero-length output.
var ErrEmptyOutput = errors.New("engine: H' output must not be empty")

// Blake2bLong fills out with H'(len(out) || in...), Argon2's variable-length
// hash.
//
// Up to 64 bytes are a single Blake2b digest of that size. Longer outputs
// chain 64-byte digests, each rehashing the previous full digest and
// contributing its first 32 bytes, while more than 64 bytes remain; the
// final digest is sized to the remainder and contributes all of it.
//
// For an output of T > 64 bytes and r = ceil(T/32) - 2:
//
//	V1   = H^64(LE32(T) || in)
//	Vi   = H^64(V(i-1))            for 2 <= i <= r
//	Vr+1 = H^(T-32r)(Vr)
//	out  = first32(V1) || ... || first32(Vr) || Vr+1
//
// Argon2 uses it to seed each lane (1024 bytes) and to produce the tag.
func Blake2bLong(out []byte, in ...[]byte) error {
	if len(out) == 0 {
		return ErrEmptyOutput
	}
	// The requested length is always hashed first, so outputs of
	// different sizes are unrelated.
	var outlen [4]byte
	binary.LittleEndian.PutUint32(outlen[:], uint32(len(out)))

	// Short outputs are a single Blake2b digest of that size.
	if len(out) <= blake2b.Size {
		d, err := blake2b.New(&blake2b.Config{Size: uint8(len(out))})
		if err != nil {
			return err
		}
		d.Write(outlen[:])
		for _, p := range in {
			d.Write(p)
		}
		_, err = d.Finalize(false, out[:0])
		return err
	}

	// v holds the running 64-byte digest and is wiped on return.
	var v [blake2b.Size]byte
	defer clear(v[:])

	// V1.
	d, err := blake2b.New(&blake2b.Config{Size: blake2b.Size})
	if err != nil {
		return err
	}
	d.Write(outlen[:])
	for _, p := range in {
		d.Write(p)
	}
	if _, err := d.Finalize(false, v[:0]); err != nil {
		return err
	}
	n := copy(out, v[:blake2b.Size/2])

	// V2..Vr. Each keeps 32 bytes while more than one full digest remains.
	for len(out)-n > blake2b.Size {
		d, err = blake2b.New(&blake2b.Config{Size: blake2b.Size})
		if err != nil {
			return err
		}
		d.Write(v[:])
		if _, err := d.Finalize(false, v[:0]); err != nil {
			return err
		}
		n += copy(out[n:], v[:blake2b.Size/2])
	}

	// Vr+1 is sized to the remaining 33 to 64 bytes.
	d, err = blake2b.New(&blake2b.Config{Size: uint8(len(out) - n)})
	if err != nil {
		return err
	}
	d.Write(v[:])
	_, err = d.Finalize(false, out[n:n])
	return err
}
