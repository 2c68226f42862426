// This file encodes the BLAKE2b parameter block.
//
// Reference: RFC 7693 section 2.5 and the BLAKE2 paper, section 2.8.
package blake2b

import (
	"encoding/binary"
)

// Config selects the digest parameters. A nil Tree means sequential mode
// (fanout 1, depth 1).
type Config struct {
	Size     uint8
	Key      []byte
	Salt     []byte
	Personal []byte
	Tree     *Tree
}

// Tree holds the tree-hashing fields of the parameter block.
type Tree struct {
	Fanout     uint8
	MaxDepth   uint8
	LeafSize   uint32
	NodeOffset uint64
	NodeDepth  uint8
	InnerSize  uint8
}

// Params encodes cfg as the eight parameter words XORed into the IV.
//
// Byte layout of the 64-byte block:
//
//	 0  digest length       1  key length
//	 2  fanout              3  depth
//	 4  leaf length (LE32)  8  node offset (LE64)
//	16  node depth         17  inner length
//	18  reserved (zero)    32  salt
//	48  personalization
//
// Salt and personalization shorter than 16 bytes are zero-padded.
func (cfg *Config) Params() ([8]uint64, error) {
	var words [8]uint64
	if cfg.Size < 1 || cfg.Size > Size {
		return words, ErrInvalidSize
	}
	if len(cfg.Key) > MaxKeySize {
		return words, ErrKeyTooLong
	}
	if len(cfg.Salt) > SaltSize {
		return words, ErrSaltTooLong
	}
	if len(cfg.Personal) > PersonalSize {
		return words, ErrPersonalTooLong
	}

	var p [64]byte
	p[0] = cfg.Size
	p[1] = uint8(len(cfg.Key))
	// Sequential mode is a tree of fanout 1 and depth 1.
	p[2], p[3] = 1, 1
	if t := cfg.Tree; t != nil {
		p[2] = t.Fanout
		p[3] = t.MaxDepth
		binary.LittleEndian.PutUint32(p[4:], t.LeafSize)
		binary.LittleEndian.PutUint64(p[8:], t.NodeOffset)
		p[16] = t.NodeDepth
		p[17] = t.InnerSize
	}
	copy(p[32:], cfg.Salt)
	copy(p[48:], cfg.Personal)

	for i := range words {
		words[i] = binary.LittleEndian.Uint64(p[i*8:])
	}
	return words, nil
}
