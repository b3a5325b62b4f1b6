// Package dkeccak provides Keccak-family primitives for [dhash.Engine].
package dkeccak

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// HashSize is the output size in bytes of both Keccak-256 variants.
const HashSize = 32

// NewLegacyKeccak256 returns the original Keccak-256,
// as used by Ethereum, which predates the final SHA-3 padding.
func NewLegacyKeccak256() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// NewSHA3 returns the standardized SHA3-256.
func NewSHA3() hash.Hash {
	return sha3.New256()
}
