package dmerkle

import (
	"fmt"

	"github.com/gordian-engine/dmerkle/dhash"
	"golang.org/x/sync/errgroup"
)

// Block is any value that can be hashed directly as a leaf.
type Block interface {
	~[]byte | ~string
}

// Byteser is any value exposing a byte view of itself,
// such as [*bytes.Buffer].
type Byteser interface {
	Bytes() []byte
}

// BuildConfig is the configuration for [Build] and [BuildBytesers].
type BuildConfig struct {
	// Engine is bound to the resulting tree
	// and used by [*Tree.Verify].
	// If nil, [dhash.NewDefault] is used.
	//
	// The engine must not be used elsewhere concurrently
	// while the build is running or while the tree is being verified.
	Engine *dhash.Engine

	// Workers controls parallel hashing.
	// Zero or one builds on the calling goroutine.
	// Larger values split the leaf level and each internal level
	// across up to that many goroutines,
	// each with its own engine forked from Engine.
	// The root hash does not depend on this value.
	Workers int
}

// minChunk is the smallest number of hashes handed to one worker.
// Levels narrower than two chunks are hashed on the calling goroutine.
const minChunk = 64

// Build hashes blocks into a new [Tree].
// Leaf i of the tree corresponds to blocks[i].
//
// Build panics with [InsufficientInputError] if len(blocks) < 2.
func Build[B Block](blocks []B, cfg BuildConfig) *Tree {
	return build(len(blocks), func(e *dhash.Engine, i int, dst []byte) {
		hashBlock(e, blocks[i], dst)
	}, cfg)
}

// BuildBytesers is like [Build] for values that expose a Bytes method.
func BuildBytesers[T Byteser](values []T, cfg BuildConfig) *Tree {
	return build(len(values), func(e *dhash.Engine, i int, dst []byte) {
		e.Leaf(dst, values[i].Bytes())
	}, cfg)
}

func hashBlock[B Block](e *dhash.Engine, b B, dst []byte) []byte {
	switch v := any(b).(type) {
	case []byte:
		return e.Leaf(dst, v)
	case string:
		return e.LeafString(dst, v)
	default:
		// Named types with a byte slice or string underlying type.
		return e.LeafString(dst, string(b))
	}
}

func build(
	nLeaves int,
	hashLeaf func(e *dhash.Engine, i int, dst []byte),
	cfg BuildConfig,
) *Tree {
	if cfg.Workers < 0 {
		panic(fmt.Errorf(
			"BUG: BuildConfig.Workers must be non-negative (got %d)", cfg.Workers,
		))
	}

	e := cfg.Engine
	if e == nil {
		e = dhash.NewDefault()
	}

	t := newTree(nLeaves, e)

	if cfg.Workers <= 1 || nLeaves < 2*minChunk {
		for i := range nLeaves {
			hashLeaf(e, i, t.nodes[t.leafStart+i][:0])
		}
		t.levels(func(start, count, childStart, childCount int) {
			t.hashParents(e, start, 0, count, childStart, childCount)
		})
		return t
	}

	p := newParallelHasher(e, cfg.Workers)

	p.run(nLeaves, func(e *dhash.Engine, lo, hi int) {
		for i := lo; i < hi; i++ {
			hashLeaf(e, i, t.nodes[t.leafStart+i][:0])
		}
	})

	// Every parent on a level depends only on the level below,
	// so run returning is the only synchronization needed.
	t.levels(func(start, count, childStart, childCount int) {
		p.run(count, func(e *dhash.Engine, lo, hi int) {
			t.hashParents(e, start, lo, hi, childStart, childCount)
		})
	})

	return t
}

// parallelHasher splits ranges of independent hashes across goroutines.
// Each goroutine owns one engine for the whole build.
type parallelHasher struct {
	engines []*dhash.Engine
}

func newParallelHasher(e *dhash.Engine, workers int) *parallelHasher {
	engines := make([]*dhash.Engine, workers)
	engines[0] = e
	for i := 1; i < workers; i++ {
		engines[i] = e.Fork()
	}
	return &parallelHasher{engines: engines}
}

// run calls fn over [0, n) in contiguous chunks
// and returns once every chunk is complete.
func (p *parallelHasher) run(n int, fn func(e *dhash.Engine, lo, hi int)) {
	nChunks := min(len(p.engines), n/minChunk)
	if nChunks <= 1 {
		fn(p.engines[0], 0, n)
		return
	}

	chunkSize := (n + nChunks - 1) / nChunks

	var g errgroup.Group
	for c := range nChunks {
		lo := c * chunkSize
		hi := min(lo+chunkSize, n)
		e := p.engines[c]
		g.Go(func() error {
			fn(e, lo, hi)
			return nil
		})
	}

	// Hashing cannot fail, so there is no error to inspect.
	_ = g.Wait()
}
