package argon2

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xargon2 "golang.org/x/crypto/argon2"
)

func testParams(t Type) *Params {
	return &Params{
		Type:           t,
		Version:        Version13,
		Time:           2,
		Memory:         64,
		Lanes:          2,
		Threads:        2,
		TagLength:      32,
		Password:       []byte("password"),
		Salt:           []byte("somesalt"),
		Secret:         []byte("pepper"),
		AssociatedData: []byte("context"),
		Locker:         NopLocker{},
	}
}

func TestHash_Deterministic(t *testing.T) {
	for _, typ := range []Type{Argon2d, Argon2i, Argon2id} {
		t.Run(typ.String(), func(t *testing.T) {
			a, err := Hash(testParams(typ))
			require.NoError(t, err)
			b, err := Hash(testParams(typ))
			require.NoError(t, err)
			assert.Equal(t, a, b)
			assert.Len(t, a, 32)
		})
	}
}

func TestHash_TypesDiffer(t *testing.T) {
	d, _ := Hash(testParams(Argon2d))
	i, _ := Hash(testParams(Argon2i))
	id, _ := Hash(testParams(Argon2id))
	assert.NotEqual(t, d, i)
	assert.NotEqual(t, d, id)
	assert.NotEqual(t, i, id)
}

func TestHash_ThreadInvariance(t *testing.T) {
	p := testParams(Argon2id)
	p.Lanes = 4
	p.Memory = 128

	var tags [][]byte
	for threads := uint32(1); threads <= p.Lanes; threads++ {
		p.Threads = threads
		tag, err := Hash(p)
		require.NoError(t, err)
		tags = append(tags, tag)
	}
	for i := 1; i < len(tags); i++ {
		assert.Equal(t, tags[0], tags[i], "threads=%d", i+1)
	}
}

// TestHash_Avalanche flips one byte of each input and changes each cost
// parameter in turn; every change must alter the tag.
func TestHash_Avalanche(t *testing.T) {
	base, err := Hash(testParams(Argon2id))
	require.NoError(t, err)

	flip := func(b []byte, i int) []byte {
		c := bytes.Clone(b)
		c[i] ^= 0x01
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"password_first", func(p *Params) { p.Password = flip(p.Password, 0) }},
		{"password_last", func(p *Params) { p.Password = flip(p.Password, len(p.Password)-1) }},
		{"salt", func(p *Params) { p.Salt = flip(p.Salt, 3) }},
		{"secret", func(p *Params) { p.Secret = flip(p.Secret, 0) }},
		{"data", func(p *Params) { p.AssociatedData = flip(p.AssociatedData, 6) }},
		{"time", func(p *Params) { p.Time++ }},
		{"memory", func(p *Params) { p.Memory += 8 }},
		{"memory_unaligned", func(p *Params) { p.Memory++ }},
		{"lanes", func(p *Params) { p.Lanes, p.Threads = 1, 1 }},
		{"tag_length", func(p *Params) { p.TagLength = 33 }},
		{"version", func(p *Params) { p.Version = Version10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(Argon2id)
			tt.mutate(p)
			tag, err := Hash(p)
			require.NoError(t, err)
			assert.NotEqual(t, base[:32], tag[:32])
		})
	}
}

func TestHash_KeyIDNotHashed(t *testing.T) {
	a, err := Hash(testParams(Argon2id))
	require.NoError(t, err)

	p := testParams(Argon2id)
	p.KeyID = []byte("key-1")
	b, err := Hash(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKeyHelpers_MatchXCrypto(t *testing.T) {
	password, salt := []byte("password"), []byte("somesalt")

	got, err := Key(password, salt, 3, 256, 2, 32)
	require.NoError(t, err)
	assert.Equal(t, xargon2.Key(password, salt, 3, 256, 2, 32), got)

	got, err = IDKey(password, salt, 1, 1024, 4, 64)
	require.NoError(t, err)
	assert.Equal(t, xargon2.IDKey(password, salt, 1, 1024, 4, 64), got)

	d, err := DKey(password, salt, 3, 256, 2, 32)
	require.NoError(t, err)
	assert.Len(t, d, 32)
	assert.NotEqual(t, got[:32], d)
}

func TestHash_MemoryRounding(t *testing.T) {
	// 70 KiB over 2 lanes rounds down to 64 blocks, but the requested value
	// is part of H0, so the tag still differs from m=64.
	p := testParams(Argon2id)
	p.Memory = 70
	assert.Equal(t, uint32(64), p.MemoryBlocks())
	assert.Equal(t, uint32(32), p.LaneLength())
	assert.Equal(t, uint32(8), p.SegmentLength())

	rounded, err := Hash(p)
	require.NoError(t, err)
	exact, err := Hash(testParams(Argon2id))
	require.NoError(t, err)
	assert.NotEqual(t, exact, rounded)

	// The matrix is the same size in both cases.
	for _, m := range []uint32{64, 70} {
		p.Memory = m
		p.MaxMemory = 64 * 1024
		_, err := Hash(p)
		assert.NoError(t, err, "m=%d", m)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
		err    error
	}{
		{"type", func(p *Params) { p.Type = 3 }, "type", ErrInvalidType},
		{"version", func(p *Params) { p.Version = 0 }, "version", ErrInvalidVersion},
		{"no_lanes", func(p *Params) { p.Lanes = 0 }, "lanes", ErrLanes},
		{"too_many_lanes", func(p *Params) { p.Lanes, p.Threads = MaxLanes+1, 1 }, "lanes", ErrLanes},
		{"no_threads", func(p *Params) { p.Threads = 0 }, "threads", ErrThreads},
		{"threads_over_lanes", func(p *Params) { p.Threads = 3 }, "threads", ErrThreads},
		{"time", func(p *Params) { p.Time = 0 }, "time", ErrTime},
		{"memory", func(p *Params) { p.Memory = 15 }, "memory", ErrMemory},
		{"salt_short", func(p *Params) { p.Salt = []byte("1234567") }, "salt", ErrSaltTooShort},
		{"tag_short", func(p *Params) { p.TagLength = 3 }, "tag", ErrTagTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(Argon2id)
			tt.mutate(p)

			err := p.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.ErrorIs(t, err, tt.err)

			tag, err := Hash(p)
			assert.Nil(t, tag)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestValidate_Boundaries(t *testing.T) {
	p := testParams(Argon2i)
	p.Salt = []byte("12345678")
	p.TagLength = MinTagLength
	p.Memory = 8 * p.Lanes
	p.Time = 1
	require.NoError(t, p.Validate())

	tag, err := Hash(p)
	require.NoError(t, err)
	assert.Len(t, tag, MinTagLength)

	p.Threads = p.Lanes
	assert.NoError(t, p.Validate())
	p.Password, p.Secret, p.AssociatedData = nil, nil, nil
	assert.NoError(t, p.Validate())
}

func TestValidate_Policy(t *testing.T) {
	p := testParams(Argon2id)
	p.MemoryPolicy = Policy(7)
	var cfgErr *ConfigError
	require.ErrorAs(t, p.Validate(), &cfgErr)
	assert.Equal(t, "policy", cfgErr.Field)
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams(Argon2id)
	assert.Equal(t, Version13, p.Version)
	assert.Equal(t, uint32(64*1024), p.Memory)
	assert.ErrorIs(t, p.Validate(), ErrSaltTooShort)

	p.Salt = make([]byte, 16)
	assert.NoError(t, p.Validate())
}

func TestHash_AllocationError(t *testing.T) {
	p := testParams(Argon2id)
	p.MaxMemory = 1024

	_, err := Hash(p)
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, uint64(1024), allocErr.Limit)
}

type refusingLocker struct{ NopLocker }

var errRefused = errors.New("lock refused")

func (refusingLocker) Lock([]byte) error { return errRefused }

func TestHash_LockPolicy(t *testing.T) {
	p := testParams(Argon2id)
	p.Locker = refusingLocker{}

	want, err := Hash(testParams(Argon2id))
	require.NoError(t, err)

	got, err := Hash(p)
	require.NoError(t, err, "best effort continues unlocked")
	assert.Equal(t, want, got)

	p.MemoryPolicy = PolicyEnforce
	_, err = Hash(p)
	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr)
	assert.ErrorIs(t, err, errRefused)

	p.MemoryPolicy = PolicyNone
	_, err = Hash(p)
	assert.NoError(t, err)
}

type stuckLocker struct{ NopLocker }

var errStuck = errors.New("munlock: EINVAL")

func (stuckLocker) Unlock([]byte) error { return errStuck }

func TestHash_UnlockFailure(t *testing.T) {
	want, err := Hash(testParams(Argon2id))
	require.NoError(t, err)

	p := testParams(Argon2id)
	p.Locker = stuckLocker{}
	got, err := Hash(p)
	require.NoError(t, err, "best effort keeps the tag")
	assert.Equal(t, want, got)

	p.MemoryPolicy = PolicyEnforce
	got, err = Hash(p)
	assert.Nil(t, got)
	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr)
	assert.True(t, lockErr.Unlock)
	assert.ErrorIs(t, err, errStuck)
}

func TestErrors_Messages(t *testing.T) {
	cfgErr := &ConfigError{Field: "salt", Err: ErrSaltTooShort, Value: 4}
	assert.Equal(t, "argon2: salt too short (salt=4)", cfgErr.Error())

	decErr := &DecodeError{Reason: "tag", Err: errors.New("bad")}
	assert.Equal(t, "argon2: invalid encoded hash: tag: bad", decErr.Error())
	assert.Equal(t, "argon2: invalid encoded hash: x", (&DecodeError{Reason: "x"}).Error())

	inner := errors.New("boom")
	intErr := &InternalError{Err: inner}
	assert.ErrorIs(t, intErr, inner)
	assert.Equal(t, "argon2: internal error: boom", intErr.Error())
}
