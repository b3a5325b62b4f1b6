// Package dblake3 provides a BLAKE3 primitive for [dhash.Engine].
package dblake3

import (
	"hash"

	"github.com/zeebo/blake3"
)

// HashSize is the BLAKE3 output size in bytes used here.
const HashSize = 32

// New returns an unkeyed BLAKE3 hash with a 256-bit output.
func New() hash.Hash {
	return blake3.New()
}
