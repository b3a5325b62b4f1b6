package dtest

import (
	"crypto/sha256"
	"math/rand/v2"
	"testing"
)

// RandomDataForTest returns a byte slice of size sz
// containing pseudorandom data, derived from a seed based on the test name.
func RandomDataForTest(t testing.TB, sz int) []byte {
	// Sha256 happens to be the right size for the chacha8 seed,
	// and this fits well anyway since that means
	// we are not limited by the length of any particular test name.
	seed := sha256.Sum256([]byte(t.Name()))
	chacha := rand.NewChaCha8(seed)

	out := make([]byte, sz)

	if _, err := chacha.Read(out); err != nil {
		panic(err)
	}

	return out
}

// RandomBlocksForTest returns n blocks of blockSize bytes each,
// backed by one allocation from [RandomDataForTest].
func RandomBlocksForTest(t testing.TB, n, blockSize int) [][]byte {
	data := RandomDataForTest(t, n*blockSize)

	blocks := make([][]byte, n)
	for i := range blocks {
		start := i * blockSize
		end := start + blockSize
		blocks[i] = data[start:end:end]
	}
	return blocks
}
