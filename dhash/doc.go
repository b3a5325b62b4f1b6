// Package dhash contains the hash engine used to build dmerkle trees.
//
// The [Engine] owns the domain separation between leaves and internal nodes.
// The actual digest function is pluggable through a [Factory];
// SHA-256 is the default.
// The subpackages provide alternative primitives
// (SIMD SHA-256, Keccak, BLAKE3, and a double-application wrapper),
// and [github.com/gordian-engine/dmerkle/dhash/dhashtest]
// contains a compliance suite for any primitive.
package dhash
