package dmerkle

import (
	"bytes"
	"encoding/hex"
	"math/bits"

	"github.com/gordian-engine/dmerkle/dhash"
)

// Tree is a complete binary Merkle tree over a fixed sequence of blocks.
//
// Nodes are addressed as in a binary heap:
// the root is slot 0 and the children of slot i are 2i+1 and 2i+2.
// For n leaves and P = next_power_of_two(n),
// the first P-1 slots are internal nodes and leaf j lives at slot P-1+j.
//
// Whenever a level has an odd count greater than one,
// the slot after its last node aliases that node's digest,
// so every level but the root has an even width.
// Slots to the right of a level's padded width are nil.
//
// A Tree is immutable after construction,
// except for its bound [*dhash.Engine] which [*Tree.Verify] reuses.
// Therefore Verify and [Check] must not be called concurrently
// on the same Tree, but the other methods may.
type Tree struct {
	// Views into a single backing slice.
	// Padding slots share the view of the node they duplicate.
	nodes [][]byte

	nLeaves int

	// Index of leaf zero within nodes,
	// which is also the number of internal slots.
	leafStart int

	e *dhash.Engine

	// Reused output buffer for verification.
	scratch []byte
}

// newTree allocates a tree shaped for nLeaves
// with every slot's view assigned but no hashes computed.
func newTree(nLeaves int, e *dhash.Engine) *Tree {
	if nLeaves < 2 {
		panic(InsufficientInputError{Count: nLeaves})
	}

	hashSize := e.Size()
	width := nextPowerOfTwo(nLeaves)
	leafStart := width - 1

	// First pass: count distinct digests over all levels,
	// so the whole tree is backed by one allocation.
	nDistinct := 0
	for w := nLeaves; ; w = (w + 1) / 2 {
		nDistinct += w
		if w == 1 {
			break
		}
	}

	mem := make([]byte, nDistinct*hashSize)
	nodes := make([][]byte, 2*width-1)

	// Second pass: hand out views level by level, bottom up.
	// Slicing with a capped capacity lets hashers append in place
	// without spilling into a neighbor.
	memIdx := 0
	levelStart := leafStart
	for w := nLeaves; ; w = (w + 1) / 2 {
		for i := range w {
			end := memIdx + hashSize
			nodes[levelStart+i] = mem[memIdx:end:end]
			memIdx = end
		}

		if w == 1 {
			break
		}

		if w&1 == 1 {
			nodes[levelStart+w] = nodes[levelStart+w-1]
		}

		levelStart = (levelStart - 1) / 2
	}

	return &Tree{
		nodes: nodes,

		nLeaves:   nLeaves,
		leafStart: leafStart,

		e:       e,
		scratch: make([]byte, 0, hashSize),
	}
}

// levels calls fn for every internal level from the bottom up,
// passing the slot index of the level's first node,
// the number of distinct nodes in that level,
// and the slot index and distinct node count of the child level.
func (t *Tree) levels(fn func(start, count, childStart, childCount int)) {
	childStart := t.leafStart
	childCount := t.nLeaves
	for childCount > 1 {
		start := (childStart - 1) / 2
		count := (childCount + 1) / 2

		fn(start, count, childStart, childCount)

		childStart = start
		childCount = count
	}
}

// hashParents computes the parents at slots [start+lo, start+hi)
// from the child level of childCount distinct nodes beginning at childStart.
func (t *Tree) hashParents(e *dhash.Engine, start, lo, hi, childStart, childCount int) {
	for i := lo; i < hi; i++ {
		left := t.nodes[childStart+2*i]
		dst := t.nodes[start+i][:0]

		if 2*i+1 == childCount {
			// Odd remainder: the right slot is padding.
			e.InternalOneChild(dst, left)
			continue
		}
		e.Internal(dst, left, t.nodes[childStart+2*i+1])
	}
}

// Root returns a copy of the root digest.
func (t *Tree) Root() []byte {
	return bytes.Clone(t.nodes[0])
}

// RootHex returns the lower-case hexadecimal encoding of the root digest.
func (t *Tree) RootHex() string {
	return hex.EncodeToString(t.nodes[0])
}

// LeafCount is the number of blocks the tree was built from.
func (t *Tree) LeafCount() int {
	return t.nLeaves
}

// Height is the number of edges from the root to any leaf.
func (t *Tree) Height() int {
	return bits.Len(uint(t.leafStart))
}

// HashSize is the size in bytes of every digest in the tree.
func (t *Tree) HashSize() int {
	return len(t.nodes[0])
}

// Leaf returns a copy of the digest stored for the leaf at pos.
func (t *Tree) Leaf(pos int) []byte {
	t.checkPosition(pos)
	return bytes.Clone(t.nodes[t.leafStart+pos])
}

// Verify reports whether value hashes to the leaf digest stored at pos.
// This compares against the locally held tree;
// it does not construct or check a Merkle path.
//
// Verify panics with [PositionOutOfRangeError]
// if pos is not in [0, LeafCount).
func (t *Tree) Verify(pos int, value []byte) bool {
	t.checkPosition(pos)
	t.scratch = t.e.Leaf(t.scratch[:0], value)
	return bytes.Equal(t.scratch, t.nodes[t.leafStart+pos])
}

// VerifyString is like [*Tree.Verify] for a string value.
func (t *Tree) VerifyString(pos int, value string) bool {
	t.checkPosition(pos)
	t.scratch = t.e.LeafString(t.scratch[:0], value)
	return bytes.Equal(t.scratch, t.nodes[t.leafStart+pos])
}

func (t *Tree) checkPosition(pos int) {
	if pos < 0 || pos >= t.nLeaves {
		panic(PositionOutOfRangeError{Position: pos, LeafCount: t.nLeaves})
	}
}

// nextPowerOfTwo returns the smallest power of two not less than n,
// for n >= 1.
func nextPowerOfTwo(n int) int {
	return 1 << bits.Len(uint(n-1))
}
