package dkeccak_test

import (
	"testing"

	"github.com/gordian-engine/dmerkle/dhash"
	"github.com/gordian-engine/dmerkle/dhash/dhashtest"
	"github.com/gordian-engine/dmerkle/dhash/dkeccak"
	"github.com/stretchr/testify/require"
)

func TestCompliance(t *testing.T) {
	t.Parallel()

	t.Run("legacy keccak", func(t *testing.T) {
		t.Parallel()
		dhashtest.TestFactoryCompliance(t, dkeccak.NewLegacyKeccak256, dkeccak.HashSize)
	})

	t.Run("sha3", func(t *testing.T) {
		t.Parallel()
		dhashtest.TestFactoryCompliance(t, dkeccak.NewSHA3, dkeccak.HashSize)
	})
}

func TestVariantsDiffer(t *testing.T) {
	t.Parallel()

	k := dhash.New(dkeccak.NewLegacyKeccak256)
	s := dhash.New(dkeccak.NewSHA3)

	require.NotEqual(t, k.LeafString(nil, "Hello World"), s.LeafString(nil, "Hello World"))
}
