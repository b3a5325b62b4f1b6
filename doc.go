// Package dmerkle builds Merkle hash trees over an ordered sequence of blocks.
//
// A producer calls [Build] over two or more blocks
// and publishes the resulting [*Tree.Root] through a trusted channel.
// While the tree is held in memory,
// any single block can be checked with [*Tree.Verify].
//
// Leaves and internal nodes are hashed with distinct prefix bytes
// (see [github.com/gordian-engine/dmerkle/dhash]),
// so a leaf pre-image can never be passed off as an internal node.
// Whenever a level of the tree has an odd number of nodes,
// its last node is paired with itself;
// this applies to the leaf level and to every internal level alike.
//
// The tree is stored as a flat array in breadth-first order,
// with one contiguous allocation backing every distinct digest.
package dmerkle
