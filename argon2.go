// Package argon2 implements the Argon2 memory-hard password hashing
// function (RFC 9106) in its Argon2d, Argon2i and Argon2id variants, on top
// of its own BLAKE2b.
//
// The memory matrix is allocated page-aligned, locked into RAM where the
// platform allows it, and zeroed before Hash returns on every path.
//
// Example usage:
//
//	p := argon2.DefaultParams(argon2.Argon2id)
//	p.Password = []byte("hunter2")
//	p.Salt = salt // at least 8 random bytes
//	tag, err := argon2.Hash(p)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	encoded := argon2.Encode(tag, p)
//
//	ok, err := argon2.Verify(encoded, []byte("hunter2"), nil)
package argon2

import (
	"errors"

	"github.com/opd-ai/go-argon2/internal/engine"
	"github.com/opd-ai/go-argon2/internal/securemem"
)

// Type selects the addressing variant.
type Type = engine.Type

const (
	// Argon2d uses data-dependent addressing. It is the fastest variant and
	// the most resistant to GPU cracking, but leaks timing information.
	Argon2d = engine.Argon2d

	// Argon2i uses data-independent addressing.
	Argon2i = engine.Argon2i

	// Argon2id uses Argon2i addressing for the first half of the first pass
	// and Argon2d addressing afterwards. It is the recommended variant.
	Argon2id = engine.Argon2id
)

const (
	// Version10 is the original algorithm, which overwrites blocks on every
	// pass.
	Version10 = engine.Version10

	// Version13 XORs later passes into existing blocks. It is the current
	// version.
	Version13 = engine.Version13
)

// Policy controls locking of the memory matrix.
type Policy = securemem.Policy

const (
	// PolicyBestEffort locks when possible and continues unlocked
	// otherwise. It is the zero value.
	PolicyBestEffort = securemem.PolicyBestEffort

	// PolicyNone never locks.
	PolicyNone = securemem.PolicyNone

	// PolicyEnforce fails with *LockError when locking is refused.
	PolicyEnforce = securemem.PolicyEnforce
)

// Locker pins, unpins and zeroes memory. Params.Locker replaces the
// platform implementation.
type Locker = securemem.Locker

// NopLocker is a Locker that never calls the operating system.
type NopLocker = securemem.NopLocker

// Hash validates p and returns the raw tag.
//
// Errors are *ConfigError for rejected parameters, *AllocationError or
// *LockError when the memory matrix cannot be provided, and
// *InternalError for invariant violations.
func Hash(p *Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tag, err := engine.Derive(p.engineConfig())
	if errors.Is(err, engine.ErrInvariant) {
		return nil, &InternalError{Err: err}
	}
	return tag, err
}

// Key derives an Argon2i key at version 0x13 with one thread per lane.
func Key(password, salt []byte, time, memory, lanes, keyLen uint32) ([]byte, error) {
	return deriveKey(Argon2i, password, salt, time, memory, lanes, keyLen)
}

// IDKey derives an Argon2id key at version 0x13 with one thread per lane.
func IDKey(password, salt []byte, time, memory, lanes, keyLen uint32) ([]byte, error) {
	return deriveKey(Argon2id, password, salt, time, memory, lanes, keyLen)
}

// DKey derives an Argon2d key at version 0x13 with one thread per lane.
func DKey(password, salt []byte, time, memory, lanes, keyLen uint32) ([]byte, error) {
	return deriveKey(Argon2d, password, salt, time, memory, lanes, keyLen)
}

func deriveKey(t Type, password, salt []byte, time, memory, lanes, keyLen uint32) ([]byte, error) {
	return Hash(&Params{
		Type:      t,
		Version:   Version13,
		Time:      time,
		Memory:    memory,
		Lanes:     lanes,
		Threads:   lanes,
		TagLength: keyLen,
		Password:  password,
		Salt:      salt,
	})
}
