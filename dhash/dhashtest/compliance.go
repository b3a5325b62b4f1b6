// Package dhashtest contains a compliance suite
// for digest primitives used with [dhash.Engine].
package dhashtest

import (
	"bytes"
	"testing"

	"github.com/gordian-engine/dmerkle/dhash"
	"github.com/stretchr/testify/require"
)

// TestFactoryCompliance runs the compliance suite against f.
// wantSize is the expected digest size in bytes.
func TestFactoryCompliance(t *testing.T, f dhash.Factory, wantSize int) {
	t.Run("size is reported consistently", func(t *testing.T) {
		t.Parallel()

		e := dhash.New(f)
		require.Equal(t, wantSize, e.Size())
		require.Equal(t, 8*wantSize, e.SizeBits())
		require.Positive(t, e.BlockSize())

		require.Len(t, e.Leaf(nil, []byte("x")), wantSize)
		require.Len(t, e.Internal(nil, []byte("l"), []byte("r")), wantSize)
	})

	t.Run("leaf is deterministic", func(t *testing.T) {
		t.Parallel()

		e1 := dhash.New(f)
		e2 := dhash.New(f)

		require.Equal(t,
			e1.Leaf(nil, []byte("deterministic_data")),
			e2.Leaf(nil, []byte("deterministic_data")),
		)
	})

	t.Run("engine resets between calls", func(t *testing.T) {
		t.Parallel()

		e := dhash.New(f)
		first := e.Leaf(nil, []byte("hello"))

		// Feed unrelated input through the same engine.
		_ = e.Internal(nil, []byte("left"), []byte("right"))
		_ = e.Leaf(nil, []byte("something else entirely"))

		require.Equal(t, first, e.Leaf(nil, []byte("hello")))
		require.Equal(t, first, e.Fork().Leaf(nil, []byte("hello")))
	})

	t.Run("leaf string matches leaf bytes", func(t *testing.T) {
		t.Parallel()

		e := dhash.New(f)
		require.Equal(t,
			e.Leaf(nil, []byte("Hello World")),
			e.LeafString(nil, "Hello World"),
		)
	})

	t.Run("leaf and internal domains are disjoint", func(t *testing.T) {
		t.Parallel()

		e := dhash.New(f)
		l := e.Leaf(nil, []byte("left"))
		r := e.Leaf(nil, []byte("right"))

		internal := e.Internal(nil, l, r)

		// Presenting the concatenated children as a single leaf
		// must not reproduce the internal digest.
		forged := e.Leaf(nil, append(append([]byte(nil), l...), r...))
		require.NotEqual(t, internal, forged)
	})

	t.Run("internal respects child order", func(t *testing.T) {
		t.Parallel()

		e := dhash.New(f)
		l := e.Leaf(nil, []byte("a"))
		r := e.Leaf(nil, []byte("b"))

		require.NotEqual(t, e.Internal(nil, l, r), e.Internal(nil, r, l))
	})

	t.Run("one child is the child paired with itself", func(t *testing.T) {
		t.Parallel()

		e := dhash.New(f)
		c := e.Leaf(nil, []byte("only child"))

		require.Equal(t, e.Internal(nil, c, c), e.InternalOneChild(nil, c))
	})

	t.Run("output is appended to dst", func(t *testing.T) {
		t.Parallel()

		e := dhash.New(f)
		want := e.Leaf(nil, []byte("payload"))

		prefix := []byte("prefix")
		got := e.Leaf(bytes.Clone(prefix), []byte("payload"))

		require.Equal(t, prefix, got[:len(prefix)])
		require.Equal(t, want, got[len(prefix):])
	})
}
