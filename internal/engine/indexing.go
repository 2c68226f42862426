// This file maps pseudo-random words to reference block indices.
//
// Reference: RFC 9106 section 3.4.2.
package engine

// SyncPoints is the number of slices per lane. All lanes finish slice s
// before any lane starts slice s+1.
//
// A segment is the intersection of one slice and one lane, so a lane holds
// SyncPoints segments of segmentLength blocks each.
const SyncPoints = 4

// Position locates the block being filled:
//   - Pass: iteration over memory, 0 to passes-1
//   - Lane: row of the matrix, 0 to lanes-1
//   - Slice: vertical quarter of the matrix, 0 to SyncPoints-1
//   - Index: block offset within the segment
type Position struct {
	Pass  uint32
	Lane  uint32
	Slice uint32
	Index uint32 // within the segment
}

// indexAlpha maps the low 32 bits of a pseudo-random word to a block index
// in the reference lane.
//
// The reference area is every block already finished and not being
// written concurrently: earlier slices of this pass (all slices but the
// current one on later passes), plus the blocks written so far in this
// segment when the reference lane is the current lane. The block
// immediately preceding the current one is always excluded. The mapping
// x -> area - 1 - area*(x*x>>32)>>32 biases the choice towards recently
// written blocks.
//
// Parameters:
//   - pos: block being filled; Index is relative to the segment
//   - pseudoRand: J1, the low 32 bits of the pseudo-random word
//   - sameLane: whether the reference lane (from J2) is pos.Lane
//   - segmentLength, laneLength: matrix geometry in blocks
//
// The caller has already excluded the first two blocks of each lane on pass
// 0, so every area computed below is at least 1.
func indexAlpha(pos *Position, pseudoRand uint32, sameLane bool, segmentLength, laneLength uint32) uint32 {
	// Step 1: size of the reference area.
	//
	// Other lanes only expose whole finished segments, since their current
	// segment is being written in parallel. When pos.Index is 0 the last
	// block of those finished segments is the one preceding the current
	// block in column order, so it is dropped as well.
	var area uint32
	switch {
	case pos.Pass == 0 && pos.Slice == 0:
		// Only this segment exists; the reference lane is forced to be ours.
		area = pos.Index - 1
	case pos.Pass == 0 && sameLane:
		area = pos.Slice*segmentLength + pos.Index - 1
	case pos.Pass == 0:
		area = pos.Slice * segmentLength
		if pos.Index == 0 {
			area--
		}
	case sameLane:
		// Later passes see the whole lane minus the segment being rewritten.
		area = laneLength - segmentLength + pos.Index - 1
	default:
		area = laneLength - segmentLength
		if pos.Index == 0 {
			area--
		}
	}

	// Step 2: non-uniform map of J1 onto [0, area).
	//
	//	x = J1*J1 / 2^32
	//	y = area*x / 2^32
	//	rel = area - 1 - y
	//
	// rel counts back from the newest block in the area. All products fit
	// in 64 bits because every factor is below 2^32.
	rel := uint64(pseudoRand)
	rel = rel * rel >> 32
	rel = uint64(area) - 1 - (uint64(area) * rel >> 32)

	// Step 3: the area starts right after the segment being written, which
	// on pass 0 is always block 0 and afterwards wraps around the lane.
	var start uint32
	if pos.Pass != 0 && pos.Slice != SyncPoints-1 {
		start = (pos.Slice + 1) * segmentLength
	}

	return uint32((uint64(start) + rel) % uint64(laneLength))
}
