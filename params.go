package argon2

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/go-argon2/internal/engine"
	"github.com/opd-ai/go-argon2/internal/securemem"
)

const (
	// MinSaltLength is the shortest accepted salt.
	MinSaltLength = 8

	// MinTagLength is the shortest accepted tag.
	MinTagLength = 4

	// MaxLanes is the largest lane count, bounded by the 24-bit lane field
	// of the reference format.
	MaxLanes = 1<<24 - 1
)

// Params describes one Argon2 invocation.
type Params struct {
	Type    Type
	Version uint32

	// Time is the number of passes over memory.
	Time uint32

	// Memory is the memory cost in KiB. It is rounded down to a multiple
	// of 4*Lanes before use; the unrounded value is hashed into H0.
	Memory uint32

	// Lanes is the degree of parallelism and changes the tag.
	Lanes uint32

	// Threads bounds the number of lanes filled concurrently. It never
	// changes the tag and must be between 1 and Lanes.
	Threads uint32

	TagLength uint32

	Password       []byte
	Salt           []byte
	Secret         []byte
	AssociatedData []byte

	// KeyID identifies Secret in the encoded form. It is not hashed.
	KeyID []byte

	// MemoryPolicy selects how the memory matrix is locked into RAM.
	MemoryPolicy Policy

	// Locker overrides the platform memory locker.
	Locker Locker

	// MaxMemory bounds the matrix allocation in bytes. Zero means the
	// host's physical memory.
	MaxMemory uint64

	Logger logrus.FieldLogger
}

// DefaultParams returns the second recommended option of RFC 9106
// (3 passes, 64 MiB, 4 lanes, 32-byte tag) for t. The caller supplies
// password and salt.
func DefaultParams(t Type) *Params {
	return &Params{
		Type:      t,
		Version:   Version13,
		Time:      3,
		Memory:    64 * 1024,
		Lanes:     4,
		Threads:   4,
		TagLength: 32,
	}
}

// MemoryBlocks returns the number of 1 KiB blocks actually filled.
func (p *Params) MemoryBlocks() uint32 {
	return engine.MemoryBlocks(p.Memory, p.Lanes)
}

// LaneLength returns the number of blocks per lane.
func (p *Params) LaneLength() uint32 {
	if p.Lanes == 0 {
		return 0
	}
	return p.MemoryBlocks() / p.Lanes
}

// SegmentLength returns the number of blocks per lane per slice.
func (p *Params) SegmentLength() uint32 {
	return p.LaneLength() / engine.SyncPoints
}

// Validate checks p without allocating. Failures are *ConfigError values
// wrapping one of the Err* sentinels.
func (p *Params) Validate() error {
	switch {
	case !p.Type.Valid():
		return &ConfigError{Field: "type", Err: ErrInvalidType, Value: uint64(p.Type)}
	case p.Version != Version10 && p.Version != Version13:
		return &ConfigError{Field: "version", Err: ErrInvalidVersion, Value: uint64(p.Version)}
	case p.Lanes < 1 || p.Lanes > MaxLanes:
		return &ConfigError{Field: "lanes", Err: ErrLanes, Value: uint64(p.Lanes)}
	case p.Threads < 1 || p.Threads > p.Lanes:
		return &ConfigError{Field: "threads", Err: ErrThreads, Value: uint64(p.Threads)}
	case p.Time < 1:
		return &ConfigError{Field: "time", Err: ErrTime, Value: uint64(p.Time)}
	case uint64(p.Memory) < 2*engine.SyncPoints*uint64(p.Lanes):
		return &ConfigError{Field: "memory", Err: ErrMemory, Value: uint64(p.Memory)}
	case len(p.Salt) < MinSaltLength:
		return &ConfigError{Field: "salt", Err: ErrSaltTooShort, Value: uint64(len(p.Salt))}
	case p.TagLength < MinTagLength:
		return &ConfigError{Field: "tag", Err: ErrTagTooShort, Value: uint64(p.TagLength)}
	}

	for _, f := range []struct {
		name string
		data []byte
		err  error
	}{
		{"password", p.Password, ErrPasswordTooLong},
		{"salt", p.Salt, ErrSaltTooLong},
		{"secret", p.Secret, ErrSecretTooLong},
		{"data", p.AssociatedData, ErrDataTooLong},
	} {
		if uint64(len(f.data)) > math.MaxUint32 {
			return &ConfigError{Field: f.name, Err: f.err, Value: uint64(len(f.data))}
		}
	}

	if !p.MemoryPolicy.Valid() {
		return &ConfigError{Field: "policy", Err: securemem.ErrUnknownPolicy, Value: uint64(p.MemoryPolicy)}
	}
	return nil
}

func (p *Params) engineConfig() *engine.Config {
	return &engine.Config{
		Type:      p.Type,
		Version:   p.Version,
		Passes:    p.Time,
		MemoryKiB: p.Memory,
		Lanes:     p.Lanes,
		Threads:   p.Threads,
		TagLength: p.TagLength,
		Password:  p.Password,
		Salt:      p.Salt,
		Secret:    p.Secret,
		Data:      p.AssociatedData,
		Memory: securemem.Options{
			Policy:   p.MemoryPolicy,
			MaxBytes: p.MaxMemory,
			Locker:   p.Locker,
			Logger:   p.Logger,
		},
		Logger: p.Logger,
	}
}
