package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexAlpha_Extremes(t *testing.T) {
	const seg, lane = 8, 32

	tests := []struct {
		name     string
		pos      Position
		sameLane bool
		rand     uint32
		want     uint32
	}{
		{"first_slice_newest", Position{0, 0, 0, 5}, true, 0, 3},
		{"first_slice_oldest", Position{0, 0, 0, 5}, true, 0xffffffff, 0},
		{"first_pass_same_lane_newest", Position{0, 1, 2, 3}, true, 0, 17},
		{"first_pass_other_lane_newest", Position{0, 1, 2, 3}, false, 0, 15},
		{"first_pass_other_lane_segment_start", Position{0, 1, 2, 0}, false, 0, 14},
		{"later_pass_same_lane_newest", Position{1, 0, 0, 5}, true, 0, 3},
		{"later_pass_same_lane_oldest", Position{1, 0, 0, 5}, true, 0xffffffff, 8},
		{"later_pass_other_lane_last_slice", Position{2, 0, 3, 0}, false, 0, 22},
		{"later_pass_other_lane_last_slice_oldest", Position{2, 0, 3, 4}, false, 0xffffffff, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := tt.pos
			got := indexAlpha(&pos, tt.rand, tt.sameLane, seg, lane)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestIndexAlpha_NeverTouchesUnfinishedBlocks checks, for random inputs,
// that the reference is never the block being written, its predecessor, a
// block not yet written in this pass, or a block another lane may be
// writing concurrently.
func TestIndexAlpha_NeverTouchesUnfinishedBlocks(t *testing.T) {
	const seg, lane = 16, 64
	rng := rand.New(rand.NewSource(1))

	for pass := uint32(0); pass < 2; pass++ {
		for slice := uint32(0); slice < SyncPoints; slice++ {
			for index := uint32(0); index < seg; index++ {
				if pass == 0 && slice == 0 && index < 2 {
					continue
				}
				for _, same := range []bool{true, false} {
					if pass == 0 && slice == 0 && !same {
						continue
					}
					for n := 0; n < 50; n++ {
						pos := Position{Pass: pass, Slice: slice, Index: index}
						ref := indexAlpha(&pos, rng.Uint32(), same, seg, lane)

						segStart := slice * seg
						curr := segStart + index
						if !assert.Less(t, ref, uint32(lane)) {
							return
						}
						if pass == 0 {
							assert.Less(t, ref, curr, "pass 0 references an unwritten block")
						}
						if same {
							assert.NotEqual(t, curr, ref)
							assert.NotEqual(t, (curr+lane-1)%lane, ref, "references its own predecessor")
							if ref >= segStart && ref < segStart+seg {
								assert.Less(t, ref, curr)
							}
						} else {
							inSegment := ref >= segStart && ref < segStart+seg
							assert.False(t, inSegment, "references a concurrently written segment")
							if index == 0 {
								assert.NotEqual(t, (segStart+lane-1)%lane, ref)
							}
						}
					}
				}
			}
		}
	}
}
