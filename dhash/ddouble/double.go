// Package ddouble wraps a digest primitive so that every digest
// is the primitive applied twice, H(H(x)),
// as Bitcoin does with SHA-256.
// The outer application hides the inner state,
// which defeats length extension on Merkle-Damgard primitives.
package ddouble

import (
	"hash"

	"github.com/gordian-engine/dmerkle/dhash"
)

// Wrap returns a Factory whose hashes apply f's primitive twice.
func Wrap(f dhash.Factory) dhash.Factory {
	return func() hash.Hash {
		inner := f()
		return &doubleHash{
			inner: inner,
			outer: f(),
			buf:   make([]byte, 0, inner.Size()),
		}
	}
}

type doubleHash struct {
	inner, outer hash.Hash

	buf []byte
}

func (d *doubleHash) Write(p []byte) (int, error) {
	return d.inner.Write(p)
}

// Sum leaves the inner state untouched, per the [hash.Hash] contract,
// so further writes continue the first application.
func (d *doubleHash) Sum(b []byte) []byte {
	d.buf = d.inner.Sum(d.buf[:0])

	d.outer.Reset()
	_, _ = d.outer.Write(d.buf)
	return d.outer.Sum(b)
}

func (d *doubleHash) Reset() {
	d.inner.Reset()
}

func (d *doubleHash) Size() int {
	return d.outer.Size()
}

func (d *doubleHash) BlockSize() int {
	return d.inner.BlockSize()
}
