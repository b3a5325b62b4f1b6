// Package dsha256 provides SHA-256 primitives for [dhash.Engine].
package dsha256

import (
	"crypto/sha256"
	"hash"

	sha256simd "github.com/minio/sha256-simd"
)

// HashSize is the SHA-256 output size in bytes.
const HashSize = sha256.Size

// New returns a standard library SHA-256 hash.
// This is the primitive used by [dhash.NewDefault].
func New() hash.Hash {
	return sha256.New()
}

// NewSIMD returns a SHA-256 hash that uses SHA-NI, AVX-512 or ARM SHA
// extensions when the CPU supports them.
// Its output is identical to [New].
func NewSIMD() hash.Hash {
	return sha256simd.New()
}
