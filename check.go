package dmerkle

import (
	"bytes"

	"github.com/bits-and-blooms/bitset"
)

// Check verifies blocks[i] against leaf i for every i,
// and returns the set of positions that matched.
// The returned set has length t.LeafCount(),
// so positions beyond len(blocks) are always clear.
//
// Check panics with [PositionOutOfRangeError]
// if blocks has more entries than the tree has leaves.
// Like [*Tree.Verify], it must not be called concurrently on one Tree.
func Check[B Block](t *Tree, blocks []B) *bitset.BitSet {
	if len(blocks) > t.nLeaves {
		panic(PositionOutOfRangeError{Position: len(blocks) - 1, LeafCount: t.nLeaves})
	}

	matched := bitset.MustNew(uint(t.nLeaves))
	for i, b := range blocks {
		t.scratch = hashBlock(t.e, b, t.scratch[:0])
		if bytes.Equal(t.scratch, t.nodes[t.leafStart+i]) {
			matched.Set(uint(i))
		}
	}
	return matched
}
