// Package engine implements the Argon2 memory-filling core: the initial
// digest H0, lane seeding, the pass/slice/lane fill with data-dependent,
// data-independent or hybrid addressing, and tag extraction.
//
// The memory matrix lives in a securemem.Buffer and is zeroed before
// Derive returns, whether or not the derivation succeeded.
//
// Derive trusts its caller to have validated the parameters; violations of
// the structural invariants are reported as ErrInvariant.
package engine

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/go-argon2/internal/blake2b"
	"github.com/opd-ai/go-argon2/internal/securemem"
	"github.com/opd-ai/go-argon2/internal/trace"
)

// Type selects the addressing mode.
type Type uint32

const (
	// Argon2d reads reference indices from the previous block.
	Argon2d Type = 0

	// Argon2i derives reference indices from a counter-driven stream.
	Argon2i Type = 1

	// Argon2id uses Argon2i addressing for the first half of the first pass
	// and Argon2d addressing afterwards.
	Argon2id Type = 2
)

// String returns the algorithm identifier used in encoded hashes.
func (t Type) String() string {
	switch t {
	case Argon2d:
		return "argon2d"
	case Argon2i:
		return "argon2i"
	case Argon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("Type(%d)", uint32(t))
	}
}

// Valid reports whether t is a defined type.
func (t Type) Valid() bool {
	return t <= Argon2id
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("engine: unknown type %d", uint32(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the
// encoded identifiers and the short forms "d", "i" and "id".
func (t *Type) UnmarshalText(text []byte) error {
	switch string(text) {
	case "argon2d", "d":
		*t = Argon2d
	case "argon2i", "i":
		*t = Argon2i
	case "argon2id", "id":
		*t = Argon2id
	default:
		return fmt.Errorf("engine: unknown type %q", text)
	}
	return nil
}

const (
	// Version10 overwrites blocks on every pass.
	Version10 uint32 = 0x10

	// Version13 XORs each pass into the previous contents.
	Version13 uint32 = 0x13
)

// ErrInvariant reports parameters that validation should have rejected.
var ErrInvariant = errors.New("engine: invariant violated")

// Config carries validated Argon2 inputs.
type Config struct {
	Type      Type
	Version   uint32
	Passes    uint32
	MemoryKiB uint32
	Lanes     uint32
	Threads   uint32
	TagLength uint32

	Password []byte
	Salt     []byte
	Secret   []byte
	Data     []byte

	Memory securemem.Options
	Logger logrus.FieldLogger
}

// MemoryBlocks returns the effective block count: MemoryKiB rounded down to
// a multiple of 4*Lanes.
func MemoryBlocks(memoryKiB, lanes uint32) uint32 {
	if lanes == 0 {
		return 0
	}
	unit := SyncPoints * lanes
	return memoryKiB / unit * unit
}

func (c *Config) check() error {
	switch {
	case !c.Type.Valid():
		return fmt.Errorf("%w: type %d", ErrInvariant, uint32(c.Type))
	case c.Version != Version10 && c.Version != Version13:
		return fmt.Errorf("%w: version %#x", ErrInvariant, c.Version)
	case c.Lanes == 0 || c.Lanes > 1<<24-1:
		return fmt.Errorf("%w: lanes %d", ErrInvariant, c.Lanes)
	case c.Threads == 0 || c.Threads > c.Lanes:
		return fmt.Errorf("%w: threads %d for %d lanes", ErrInvariant, c.Threads, c.Lanes)
	case c.Passes == 0:
		return fmt.Errorf("%w: zero passes", ErrInvariant)
	case MemoryBlocks(c.MemoryKiB, c.Lanes) < 2*SyncPoints*c.Lanes:
		return fmt.Errorf("%w: %d KiB for %d lanes", ErrInvariant, c.MemoryKiB, c.Lanes)
	case c.TagLength == 0:
		return fmt.Errorf("%w: empty tag", ErrInvariant)
	}
	return nil
}

// instance is the state of one derivation.
type instance struct {
	memory []Block

	typ           Type
	version       uint32
	passes        uint32
	lanes         uint32
	threads       uint32
	memoryBlocks  uint32
	laneLength    uint32
	segmentLength uint32

	log logrus.FieldLogger
}

// Derive computes the Argon2 tag for cfg.
//
// Steps (RFC 9106 section 3.2):
//  1. H0 over parameters and inputs
//  2. allocate memoryBlocks blocks as lanes rows of laneLength
//  3. seed columns 0 and 1 of every lane from H0
//  4. fill the remaining blocks, passes times
//  5. tag = H'(XOR of the last column)
//
// The returned tag is owned by the caller. On error no tag is returned and
// the partial output is cleared.
func Derive(cfg *Config) ([]byte, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}

	inst := &instance{
		typ:          cfg.Type,
		version:      cfg.Version,
		passes:       cfg.Passes,
		lanes:        cfg.Lanes,
		threads:      cfg.Threads,
		memoryBlocks: MemoryBlocks(cfg.MemoryKiB, cfg.Lanes),
		log:          trace.Or(cfg.Logger),
	}
	// check guarantees memoryBlocks >= 8*lanes, so every segment holds at
	// least two blocks.
	inst.laneLength = inst.memoryBlocks / inst.lanes
	inst.segmentLength = inst.laneLength / SyncPoints

	inst.log.WithFields(logrus.Fields{
		"type":    cfg.Type,
		"version": cfg.Version,
		"passes":  inst.passes,
		"blocks":  inst.memoryBlocks,
		"lanes":   inst.lanes,
		"threads": inst.threads,
	}).Debug("argon2: derive")

	h0, err := initialHash(cfg)
	defer clear(h0[:])
	if err != nil {
		return nil, err
	}

	memOpts := cfg.Memory
	if memOpts.Logger == nil {
		memOpts.Logger = inst.log
	}

	tag := make([]byte, cfg.TagLength)
	err = securemem.With[Block](int(inst.memoryBlocks), memOpts, func(memory []Block) error {
		inst.memory = memory
		defer func() { inst.memory = nil }()

		if err := inst.initializeMemory(&h0); err != nil {
			return err
		}
		inst.fillMemory()
		return inst.finalize(tag)
	})
	if err != nil {
		clear(tag)
		return nil, err
	}
	return tag, nil
}

// initialHash computes H0 over the parameters and length-prefixed inputs.
// The 8 spare bytes at the end hold the block and lane indices used when
// seeding.
//
//	H0 = Blake2b-512(LE32(p) || LE32(T) || LE32(m) || LE32(t) || LE32(v) ||
//	                 LE32(y) || LE32(|P|) || P || LE32(|S|) || S ||
//	                 LE32(|K|) || K || LE32(|X|) || X)
//
// m is the memory size as requested, not the rounded block count, so two
// requests that round to the same matrix still produce different tags.
//
// Reference: RFC 9106 section 3.2, step 1.
func initialHash(cfg *Config) ([blake2b.Size + 8]byte, error) {
	var h0 [blake2b.Size + 8]byte

	d, err := blake2b.New(&blake2b.Config{Size: blake2b.Size})
	if err != nil {
		return h0, err
	}

	var params [24]byte
	binary.LittleEndian.PutUint32(params[0:], cfg.Lanes)
	binary.LittleEndian.PutUint32(params[4:], cfg.TagLength)
	binary.LittleEndian.PutUint32(params[8:], cfg.MemoryKiB)
	binary.LittleEndian.PutUint32(params[12:], cfg.Passes)
	binary.LittleEndian.PutUint32(params[16:], cfg.Version)
	binary.LittleEndian.PutUint32(params[20:], uint32(cfg.Type))
	d.Write(params[:])

	// Absent inputs are hashed as a zero length with no bytes.
	var length [4]byte
	for _, field := range [][]byte{cfg.Password, cfg.Salt, cfg.Secret, cfg.Data} {
		binary.LittleEndian.PutUint32(length[:], uint32(len(field)))
		d.Write(length[:])
		d.Write(field)
	}

	_, err = d.Finalize(false, h0[:0])
	return h0, err
}

// initializeMemory seeds blocks 0 and 1 of every lane:
//
//	B[i][0] = H'(H0 || LE32(0) || LE32(i))
//	B[i][1] = H'(H0 || LE32(1) || LE32(i))
//
// h0 is the H0 digest followed by 8 spare bytes that are overwritten here
// with the column and lane index before each H' call.
func (inst *instance) initializeMemory(h0 *[blake2b.Size + 8]byte) error {
	var buf [BlockSize]byte
	defer clear(buf[:])

	for lane := uint32(0); lane < inst.lanes; lane++ {
		binary.LittleEndian.PutUint32(h0[blake2b.Size+4:], lane)
		for j := uint32(0); j < 2; j++ {
			binary.LittleEndian.PutUint32(h0[blake2b.Size:], j)
			if err := Blake2bLong(buf[:], h0[:]); err != nil {
				return err
			}
			if err := inst.memory[lane*inst.laneLength+j].FromBytes(buf[:]); err != nil {
				return fmt.Errorf("%w: %v", ErrInvariant, err)
			}
		}
	}
	return nil
}

// finalize XORs the last block of every lane and writes H' of the result
// into tag.
//
//	C   = B[0][q-1] XOR B[1][q-1] XOR ... XOR B[p-1][q-1]
//	tag = H'^T(C)
//
// Reference: RFC 9106 section 3.2, step 7.
func (inst *instance) finalize(tag []byte) error {
	var c Block
	defer c.Zero()

	c = inst.memory[inst.laneLength-1]
	for lane := uint32(1); lane < inst.lanes; lane++ {
		c.XOR(&inst.memory[lane*inst.laneLength+inst.laneLength-1])
	}

	var buf [BlockSize]byte
	defer clear(buf[:])
	if err := c.PutBytes(buf[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	return Blake2bLong(tag, buf[:])
}
