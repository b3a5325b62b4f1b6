// Package dblock commits a payload to a dmerkle tree as a set of blocks
// and reassembles the payload from blocks received over an untrusted path.
//
// The producer calls [Split], publishes the tree root through a trusted
// channel, and sends the blocks.
// The consumer, holding the same tree and [Layout],
// calls [Repair] with whatever blocks arrived.
// Optional Reed-Solomon parity blocks allow recovery
// when some blocks are lost or corrupted in transit.
package dblock
