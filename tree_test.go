package dmerkle_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/gordian-engine/dmerkle"
	"github.com/gordian-engine/dmerkle/dhash"
	"github.com/gordian-engine/dmerkle/dhash/dblake3"
	"github.com/gordian-engine/dmerkle/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestBuild_2_leaves(t *testing.T) {
	t.Parallel()

	tree := dmerkle.Build([]string{"hello", "world"}, dmerkle.BuildConfig{})

	e := dhash.NewDefault()
	expLeaf0 := e.LeafString(nil, "hello")
	expLeaf1 := e.LeafString(nil, "world")

	require.Equal(t, expLeaf0, tree.Leaf(0))
	require.Equal(t, expLeaf1, tree.Leaf(1))

	expRoot := e.Internal(nil, expLeaf0, expLeaf1)
	require.Equal(t, expRoot, tree.Root())

	require.Equal(t, 2, tree.LeafCount())
	require.Equal(t, 1, tree.Height())
	require.Equal(t, 32, tree.HashSize())
}

func TestBuild_2_identical_leaves_fixedRoot(t *testing.T) {
	t.Parallel()

	blocks := []string{"Hello World", "Hello World"}

	const expRootHex = "c9978dc3e2d729207ca4c012de993423f19e7bf02161f7f95cdbf28d1b57b88a"

	tree := dmerkle.Build(blocks, dmerkle.BuildConfig{})
	require.Equal(t, expRootHex, tree.RootHex())

	again := dmerkle.Build(blocks, dmerkle.BuildConfig{})
	require.Equal(t, tree.RootHex(), again.RootHex())
}

func TestBuild_3_leaves(t *testing.T) {
	t.Parallel()

	blocks := []string{"Hello World", "Hello World", "Hello World"}

	/* Tree structure:

	(01)(22)
	01 22
	0 1 2 [2]

	*/

	tree := dmerkle.Build(blocks, dmerkle.BuildConfig{})

	e := dhash.NewDefault()
	leaf := e.LeafString(nil, "Hello World")

	expNode01 := e.Internal(nil, leaf, leaf)
	expNode22 := e.InternalOneChild(nil, leaf)
	expRoot := e.Internal(nil, expNode01, expNode22)

	require.Equal(t, expRoot, tree.Root())
	require.Equal(t,
		"8255a25e9ac6638c78898378fee2946f6a0e3c3cc3d360fe1e1997f3d4a6ed49",
		tree.RootHex(),
	)
	require.Equal(t, 2, tree.Height())
}

func TestBuild_4_leaves(t *testing.T) {
	t.Parallel()

	tree := dmerkle.Build([]string{"zero", "one", "two", "three"}, dmerkle.BuildConfig{})

	e := dhash.NewDefault()
	expNode01 := e.Internal(nil, e.LeafString(nil, "zero"), e.LeafString(nil, "one"))
	expNode23 := e.Internal(nil, e.LeafString(nil, "two"), e.LeafString(nil, "three"))

	require.Equal(t, e.Internal(nil, expNode01, expNode23), tree.Root())
}

func TestBuild_5_leaves(t *testing.T) {
	t.Parallel()

	tree := dmerkle.Build([]string{"zero", "one", "two", "three", "four"}, dmerkle.BuildConfig{})

	/* Tree structure:

	(0123)(4444)
	(01)(23) (44)[(44)]
	01 23 4 [4]

	*/

	e := dhash.NewDefault()
	expNode01 := e.Internal(nil, e.LeafString(nil, "zero"), e.LeafString(nil, "one"))
	expNode23 := e.Internal(nil, e.LeafString(nil, "two"), e.LeafString(nil, "three"))
	expNode44 := e.InternalOneChild(nil, e.LeafString(nil, "four"))

	expNode0123 := e.Internal(nil, expNode01, expNode23)
	expNode4444 := e.InternalOneChild(nil, expNode44)

	require.Equal(t, e.Internal(nil, expNode0123, expNode4444), tree.Root())
	require.Equal(t, 3, tree.Height())
}

func TestBuild_6_leaves(t *testing.T) {
	t.Parallel()

	tree := dmerkle.Build([]string{"a", "b", "c", "d", "e", "f"}, dmerkle.BuildConfig{})

	// The leaf level is even, but the level above it has three nodes,
	// so padding happens one level up.
	e := dhash.NewDefault()
	expNodeAB := e.Internal(nil, e.LeafString(nil, "a"), e.LeafString(nil, "b"))
	expNodeCD := e.Internal(nil, e.LeafString(nil, "c"), e.LeafString(nil, "d"))
	expNodeEF := e.Internal(nil, e.LeafString(nil, "e"), e.LeafString(nil, "f"))

	expRoot := e.Internal(nil,
		e.Internal(nil, expNodeAB, expNodeCD),
		e.Internal(nil, expNodeEF, expNodeEF),
	)
	require.Equal(t, expRoot, tree.Root())
}

func TestBuild_matchesReference(t *testing.T) {
	t.Parallel()

	for n := 2; n <= 40; n++ {
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			t.Parallel()

			blocks := dtest.RandomBlocksForTest(t, n, 16)

			tree := dmerkle.Build(blocks, dmerkle.BuildConfig{})
			require.Equal(t, referenceRoot(dhash.NewDefault(), blocks), tree.Root())
		})
	}
}

func TestBuild_parallelMatchesSequential(t *testing.T) {
	t.Parallel()

	for _, n := range []int{2, 127, 128, 129, 1000, 1024, 1025, 4099} {
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			t.Parallel()

			blocks := dtest.RandomBlocksForTest(t, n, 24)

			seq := dmerkle.Build(blocks, dmerkle.BuildConfig{})
			par := dmerkle.Build(blocks, dmerkle.BuildConfig{Workers: 8})

			require.Equal(t, seq.Root(), par.Root())
			for i := range n {
				require.Equal(t, seq.Leaf(i), par.Leaf(i))
			}
		})
	}
}

func TestBuild_deterministic(t *testing.T) {
	t.Parallel()

	blocks := dtest.RandomBlocksForTest(t, 37, 100)

	a := dmerkle.Build(blocks, dmerkle.BuildConfig{})
	b := dmerkle.Build(blocks, dmerkle.BuildConfig{})
	require.Equal(t, a.Root(), b.Root())
}

func TestBuild_sensitivity(t *testing.T) {
	t.Parallel()

	blocks := dtest.RandomBlocksForTest(t, 7, 32)
	orig := dmerkle.Build(blocks, dmerkle.BuildConfig{}).Root()

	for i := range blocks {
		changed := make([][]byte, len(blocks))
		copy(changed, blocks)
		changed[i] = bytes.Clone(blocks[i])
		changed[i][0] ^= 0xff

		root := dmerkle.Build(changed, dmerkle.BuildConfig{}).Root()
		require.NotEqualf(t, orig, root, "changing block %d did not change the root", i)
	}
}

func TestBuild_orderMatters(t *testing.T) {
	t.Parallel()

	a := dmerkle.Build([]string{"a", "b"}, dmerkle.BuildConfig{})
	b := dmerkle.Build([]string{"b", "a"}, dmerkle.BuildConfig{})
	require.NotEqual(t, a.Root(), b.Root())
}

func TestBuild_insufficientInput(t *testing.T) {
	t.Parallel()

	require.PanicsWithValue(t, dmerkle.InsufficientInputError{Count: 0}, func() {
		_ = dmerkle.Build([]string{}, dmerkle.BuildConfig{})
	})

	require.PanicsWithValue(t, dmerkle.InsufficientInputError{Count: 0}, func() {
		_ = dmerkle.Build[[]byte](nil, dmerkle.BuildConfig{})
	})

	require.PanicsWithValue(t, dmerkle.InsufficientInputError{Count: 1}, func() {
		_ = dmerkle.Build([]string{"only"}, dmerkle.BuildConfig{})
	})

	require.PanicsWithError(t, "BUG: a tree requires at least 2 blocks (got 1)", func() {
		_ = dmerkle.Build([][]byte{[]byte("only")}, dmerkle.BuildConfig{})
	})
}

func TestBuild_negativeWorkers(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = dmerkle.Build([]string{"a", "b"}, dmerkle.BuildConfig{Workers: -1})
	})
}

func TestBuild_inputTypes(t *testing.T) {
	t.Parallel()

	exp := dmerkle.Build([]string{"alpha", "beta", "gamma"}, dmerkle.BuildConfig{}).Root()

	t.Run("byte slices", func(t *testing.T) {
		t.Parallel()

		tree := dmerkle.Build([][]byte{
			[]byte("alpha"), []byte("beta"), []byte("gamma"),
		}, dmerkle.BuildConfig{})
		require.Equal(t, exp, tree.Root())
	})

	t.Run("named string type", func(t *testing.T) {
		t.Parallel()

		type label string
		tree := dmerkle.Build([]label{"alpha", "beta", "gamma"}, dmerkle.BuildConfig{})
		require.Equal(t, exp, tree.Root())
	})

	t.Run("named byte slice type", func(t *testing.T) {
		t.Parallel()

		type raw []byte
		tree := dmerkle.Build([]raw{
			raw("alpha"), raw("beta"), raw("gamma"),
		}, dmerkle.BuildConfig{})
		require.Equal(t, exp, tree.Root())
	})

	t.Run("bytes buffers", func(t *testing.T) {
		t.Parallel()

		tree := dmerkle.BuildBytesers([]*bytes.Buffer{
			bytes.NewBufferString("alpha"),
			bytes.NewBufferString("beta"),
			bytes.NewBufferString("gamma"),
		}, dmerkle.BuildConfig{})
		require.Equal(t, exp, tree.Root())
	})
}

func TestBuild_customEngine(t *testing.T) {
	t.Parallel()

	blocks := []string{"Hello World", "Hello World"}

	def := dmerkle.Build(blocks, dmerkle.BuildConfig{})
	b3 := dmerkle.Build(blocks, dmerkle.BuildConfig{Engine: dhash.New(dblake3.New)})

	require.NotEqual(t, def.Root(), b3.Root())
	require.True(t, b3.VerifyString(1, "Hello World"))
}

func TestTree_Root_isCopy(t *testing.T) {
	t.Parallel()

	tree := dmerkle.Build([]string{"a", "b"}, dmerkle.BuildConfig{})

	root := tree.Root()
	root[0] ^= 0xff
	require.NotEqual(t, root, tree.Root())

	leaf := tree.Leaf(0)
	leaf[0] ^= 0xff
	require.True(t, tree.VerifyString(0, "a"))
}

func TestTree_Verify(t *testing.T) {
	t.Parallel()

	a := []byte("block A")
	b := []byte("block B")
	tree := dmerkle.Build([][]byte{a, b}, dmerkle.BuildConfig{})

	require.True(t, tree.Verify(0, a))
	require.False(t, tree.Verify(0, b))
	require.True(t, tree.Verify(1, b))
	require.False(t, tree.Verify(1, a))

	// Repeated and out-of-order calls are fine.
	require.True(t, tree.Verify(1, b))
	require.True(t, tree.Verify(0, a))

	require.True(t, tree.VerifyString(0, "block A"))
	require.False(t, tree.VerifyString(1, "block A"))
}

func TestTree_Verify_allPositions(t *testing.T) {
	t.Parallel()

	blocks := dtest.RandomBlocksForTest(t, 13, 40)
	tree := dmerkle.Build(blocks, dmerkle.BuildConfig{})
	root := tree.Root()

	for i, b := range blocks {
		require.Truef(t, tree.Verify(i, b), "block %d failed verification", i)

		other := blocks[(i+1)%len(blocks)]
		require.Falsef(t, tree.Verify(i, other), "block %d accepted the wrong value", i)
	}

	// Verification never touches stored digests.
	require.Equal(t, root, tree.Root())
}

func TestTree_Verify_leafIsNotInternal(t *testing.T) {
	t.Parallel()

	e := dhash.NewDefault()
	l := e.LeafString(nil, "left")
	r := e.LeafString(nil, "right")

	tree := dmerkle.Build([]string{"left", "right"}, dmerkle.BuildConfig{})

	// A second tree whose single-leaf content is the concatenated children
	// must not share the first tree's root.
	forged := dmerkle.Build([][]byte{append(bytes.Clone(l), r...), {}}, dmerkle.BuildConfig{})
	require.NotEqual(t, tree.Root(), forged.Leaf(0))
	require.NotEqual(t, tree.Root(), forged.Root())
}

func TestTree_Verify_outOfRange(t *testing.T) {
	t.Parallel()

	tree := dmerkle.Build([]string{"a", "b"}, dmerkle.BuildConfig{})

	require.PanicsWithValue(t, dmerkle.PositionOutOfRangeError{Position: 5, LeafCount: 2}, func() {
		_ = tree.VerifyString(5, "x")
	})

	require.PanicsWithValue(t, dmerkle.PositionOutOfRangeError{Position: 2, LeafCount: 2}, func() {
		_ = tree.Verify(2, []byte("x"))
	})

	require.PanicsWithValue(t, dmerkle.PositionOutOfRangeError{Position: -1, LeafCount: 2}, func() {
		_ = tree.Leaf(-1)
	})

	require.PanicsWithError(t, "BUG: leaf position 5 out of range [0, 2)", func() {
		_ = tree.Verify(5, nil)
	})
}

// referenceRoot computes a root by literally duplicating
// the last node of every odd level, one level at a time.
// It shares nothing with the flat-array implementation.
func referenceRoot(e *dhash.Engine, blocks [][]byte) []byte {
	level := make([][]byte, len(blocks))
	for i, b := range blocks {
		level[i] = e.Leaf(nil, b)
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}

		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, e.Internal(nil, level[i], level[i+1]))
		}
		level = next
	}

	return level[0]
}
