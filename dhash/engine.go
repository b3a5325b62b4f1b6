package dhash

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
)

// Domain separation tags.
// Every leaf digest is computed over LeafTag followed by the leaf bytes,
// and every internal digest over InternalTag followed by both children,
// so a leaf pre-image can never be reinterpreted as an internal node.
const (
	LeafTag     = 0x00
	InternalTag = 0x01
)

// Factory creates a fresh digest primitive.
// Any [hash.Hash] satisfies the primitive contract:
// Reset, Write, Sum, Size and BlockSize.
type Factory func() hash.Hash

// Engine computes domain-separated leaf and internal digests
// over a single primitive created from a [Factory].
//
// The primitive is reset at the start of every method call,
// so an Engine may be reused indefinitely,
// but it is not safe for concurrent use.
// Use [*Engine.Fork] to get an independent Engine for another goroutine.
type Engine struct {
	f Factory
	h hash.Hash

	tag [1]byte
}

// New returns an Engine backed by a primitive created from f.
// New panics if the primitive's Sum output does not match its Size.
func New(f Factory) *Engine {
	if f == nil {
		panic(fmt.Errorf("BUG: dhash.New requires a non-nil Factory"))
	}

	h := f()
	if h.Size() <= 0 {
		panic(fmt.Errorf(
			"BUG: hash primitive must have a positive output size (got %d)", h.Size(),
		))
	}

	// Trees hash in place into slots of exactly Size bytes.
	if n := len(h.Sum(nil)); n != h.Size() {
		panic(fmt.Errorf(
			"BUG: hash primitive reports size %d but Sum produces %d bytes",
			h.Size(), n,
		))
	}
	h.Reset()

	return &Engine{f: f, h: h}
}

// NewDefault returns an Engine backed by SHA-256.
func NewDefault() *Engine {
	return New(sha256.New)
}

// Fork returns a new Engine with its own primitive
// created from the same Factory as e.
func (e *Engine) Fork() *Engine {
	return New(e.f)
}

// Size is the digest size in bytes.
func (e *Engine) Size() int {
	return e.h.Size()
}

// SizeBits is the digest size in bits.
func (e *Engine) SizeBits() int {
	return 8 * e.h.Size()
}

// BlockSize is the underlying primitive's block size in bytes.
func (e *Engine) BlockSize() int {
	return e.h.BlockSize()
}

// Leaf appends the digest of LeafTag || in to dst
// and returns the extended slice.
func (e *Engine) Leaf(dst, in []byte) []byte {
	e.begin(LeafTag)
	_, _ = e.h.Write(in)
	return e.h.Sum(dst)
}

// LeafString is like [*Engine.Leaf] but accepts a string,
// avoiding a conversion to a byte slice where the primitive
// implements [io.StringWriter].
func (e *Engine) LeafString(dst []byte, in string) []byte {
	e.begin(LeafTag)
	_, _ = io.WriteString(e.h, in)
	return e.h.Sum(dst)
}

// Internal appends the digest of InternalTag || left || right to dst
// and returns the extended slice.
func (e *Engine) Internal(dst, left, right []byte) []byte {
	e.begin(InternalTag)
	_, _ = e.h.Write(left)
	_, _ = e.h.Write(right)
	return e.h.Sum(dst)
}

// InternalOneChild appends the digest of a node whose only child is left.
// The child is paired with itself, so the result is exactly
// Internal(dst, left, left).
func (e *Engine) InternalOneChild(dst, left []byte) []byte {
	return e.Internal(dst, left, left)
}

func (e *Engine) begin(tag byte) {
	e.h.Reset()
	e.tag[0] = tag
	_, _ = e.h.Write(e.tag[:])
}
