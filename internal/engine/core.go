// This file drives the memory fill: passes, slices, segments and the
// data-independent address stream.
//
// Reference: RFC 9106 sections 3.2 (steps 5 and 6), 3.4.1 and 3.4.
package engine

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// fillMemory runs every pass over the matrix. Lanes of one slice are
// filled by at most inst.threads workers; the errgroup Wait is the barrier
// that keeps slice s+1 from reading blocks of slice s still being written.
//
// Order of work:
//
//	for each pass
//	    for each slice s = 0..3
//	        fill segment (lane, s) for every lane, in parallel
//	        wait for all lanes
//
// The tag does not depend on inst.threads; only wall-clock time does.
func (inst *instance) fillMemory() {
	for pass := uint32(0); pass < inst.passes; pass++ {
		start := time.Now()
		for slice := uint32(0); slice < SyncPoints; slice++ {
			// One thread runs inline and skips goroutine startup.
			if inst.threads == 1 {
				for lane := uint32(0); lane < inst.lanes; lane++ {
					inst.fillSegment(Position{Pass: pass, Lane: lane, Slice: slice})
				}
				continue
			}

			var g errgroup.Group
			g.SetLimit(int(inst.threads))
			for lane := uint32(0); lane < inst.lanes; lane++ {
				pos := Position{Pass: pass, Lane: lane, Slice: slice}
				g.Go(func() error {
					inst.fillSegment(pos)
					return nil
				})
			}
			// fillSegment cannot fail; Wait is only the barrier.
			_ = g.Wait()
		}
		inst.log.WithFields(logrus.Fields{
			"pass":    pass,
			"elapsed": time.Since(start),
		}).Debug("argon2: pass complete")
	}
}

// fillSegment fills the positions of one lane within one slice. Blocks are
// filled strictly in order; each depends on its predecessor.
//
// For every block B[lane][j]:
//  1. take a 64-bit pseudo-random word, either from the address stream
//     (data-independent) or from the first word of B[lane][j-1]
//     (data-dependent)
//  2. its high 32 bits (J2) pick the reference lane, its low 32 bits (J1)
//     pick the block within it through indexAlpha
//  3. B[lane][j] = G(B[lane][j-1], B[refLane][refIndex])
//
// Concurrent calls for different lanes of the same slice only read blocks
// outside every segment being written, so they never race.
func (inst *instance) fillSegment(pos Position) {
	independent := inst.dataIndependent(pos)

	var addr *addressGenerator
	if independent {
		addr = newAddressGenerator(inst, pos)
		defer addr.wipe()
	}

	start := uint32(0)
	if pos.Pass == 0 && pos.Slice == 0 {
		// Blocks 0 and 1 were seeded from H0.
		start = 2
		if independent {
			addr.next()
		}
	}

	// curr and prev are absolute matrix indices. The predecessor of the
	// first block of a lane is the last block of the same lane, which only
	// happens on passes after the first.
	curr := pos.Lane*inst.laneLength + pos.Slice*inst.segmentLength + start
	prev := curr - 1
	if curr%inst.laneLength == 0 {
		prev = curr + inst.laneLength - 1
	}

	for i := start; i < inst.segmentLength; i, curr, prev = i+1, curr+1, prev+1 {
		// prev wrapped to the lane end for column 0; step back into place.
		if curr%inst.laneLength == 1 {
			prev = curr - 1
		}

		// Step 1. One address block yields BlockWords words.
		var pseudoRand uint64
		if independent {
			if i%BlockWords == 0 {
				addr.next()
			}
			pseudoRand = addr.address[i%BlockWords]
		} else {
			pseudoRand = inst.memory[prev][0]
		}

		// Step 2. Nothing outside this lane is written before the first
		// barrier, so slice 0 of pass 0 always references its own lane.
		refLane := uint32(pseudoRand>>32) % inst.lanes
		if pos.Pass == 0 && pos.Slice == 0 {
			refLane = pos.Lane
		}
		pos.Index = i
		refIndex := indexAlpha(&pos, uint32(pseudoRand), refLane == pos.Lane, inst.segmentLength, inst.laneLength)

		// Step 3.
		ref := &inst.memory[refLane*inst.laneLength+refIndex]
		withXOR := inst.version != Version10 && pos.Pass != 0
		fillBlock(&inst.memory[prev], ref, &inst.memory[curr], withXOR)
	}
}

// dataIndependent reports whether pos draws its pseudo-random words from
// the address stream rather than from the previous block.
//
//	Argon2d   never
//	Argon2i   always
//	Argon2id  first half of the first pass (slices 0 and 1)
//
// Reference: RFC 9106 section 3.4.1.
func (inst *instance) dataIndependent(pos Position) bool {
	switch inst.typ {
	case Argon2i:
		return true
	case Argon2id:
		return pos.Pass == 0 && pos.Slice < SyncPoints/2
	default:
		return false
	}
}

// addressGenerator produces the data-independent pseudo-random stream for
// one segment: address = G(0, G(0, input)) with input[6] counting blocks.
//
// The input block holds, as 64-bit words:
//
//	0 pass, 1 lane, 2 slice, 3 total blocks, 4 passes, 5 type, 6 counter
//
// followed by zeros. Everything in it is public, so the stream reveals
// nothing about the password.
type addressGenerator struct {
	input, address, zero Block
}

func newAddressGenerator(inst *instance, pos Position) *addressGenerator {
	g := new(addressGenerator)
	g.input[0] = uint64(pos.Pass)
	g.input[1] = uint64(pos.Lane)
	g.input[2] = uint64(pos.Slice)
	g.input[3] = uint64(inst.memoryBlocks)
	g.input[4] = uint64(inst.passes)
	g.input[5] = uint64(inst.typ)
	return g
}

// next advances the counter and recomputes the 128 address words.
func (g *addressGenerator) next() {
	g.input[6]++
	fillBlock(&g.zero, &g.input, &g.address, false)
	fillBlock(&g.zero, &g.address, &g.address, false)
}

func (g *addressGenerator) wipe() {
	g.input.Zero()
	g.address.Zero()
}
