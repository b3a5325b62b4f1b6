package dblock

import (
	"fmt"
	"log/slog"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/dmerkle"
)

// TooFewBlocksError is returned from [Repair]
// when too few received blocks survive verification
// to reconstruct the data.
type TooFewBlocksError struct {
	Intact, Needed int
}

func (e TooFewBlocksError) Error() string {
	return fmt.Sprintf(
		"too few intact blocks to reassemble data: have %d, need %d",
		e.Intact, e.Needed,
	)
}

// Repair reassembles the original data from received blocks.
//
// The received slice is aligned with the tree's leaves:
// data blocks first, then parity blocks.
// A nil entry is a block that never arrived.
// Every non-nil block is checked against the tree;
// blocks that fail verification are discarded.
// If any data block is missing or discarded,
// it is reconstructed from the remaining data and parity blocks,
// and the reconstruction is itself checked against the tree.
//
// Neither received nor its blocks are modified.
func Repair(
	log *slog.Logger,
	tree *dmerkle.Tree,
	layout Layout,
	received [][]byte,
) ([]byte, error) {
	nBlocks := layout.NumData + layout.NumParity
	if nBlocks != tree.LeafCount() {
		panic(fmt.Errorf(
			"BUG: layout has %d blocks but tree has %d leaves",
			nBlocks, tree.LeafCount(),
		))
	}
	if len(received) != nBlocks {
		panic(fmt.Errorf(
			"BUG: expected %d received block slots, got %d",
			nBlocks, len(received),
		))
	}

	shards := make([][]byte, nBlocks)
	intact := bitset.MustNew(uint(nBlocks))
	for i, b := range received {
		if b == nil {
			continue
		}

		if !tree.Verify(i, b) {
			log.Debug("Dropping block that failed verification", "idx", i)
			continue
		}

		shards[i] = b
		intact.Set(uint(i))
	}

	var missingData []uint
	for u, ok := intact.NextClear(0); ok && u < uint(layout.NumData); u, ok = intact.NextClear(u + 1) {
		missingData = append(missingData, u)
	}

	if len(missingData) > 0 {
		if intact.Count() < uint(layout.NumData) {
			return nil, TooFewBlocksError{
				Intact: int(intact.Count()),
				Needed: layout.NumData,
			}
		}

		if err := reconstruct(tree, layout, shards, missingData); err != nil {
			return nil, err
		}

		log.Debug(
			"Reconstructed missing data blocks",
			"n_missing", len(missingData),
			"n_intact", intact.Count(),
		)
	}

	out := make([]byte, 0, layout.DataSize)
	for _, s := range shards[:layout.NumData] {
		out = append(out, s...)
	}

	if len(out) < layout.DataSize {
		return nil, fmt.Errorf(
			"data blocks hold %d bytes, fewer than the expected %d",
			len(out), layout.DataSize,
		)
	}

	// Parity encoding zero-pads the final data block.
	return out[:layout.DataSize], nil
}

func reconstruct(
	tree *dmerkle.Tree,
	layout Layout,
	shards [][]byte,
	missingData []uint,
) error {
	var blockSize int
	for _, s := range shards {
		if s != nil {
			blockSize = len(s)
			break
		}
	}

	enc, err := newEncoder(layout.NumData, layout.NumParity, blockSize)
	if err != nil {
		return err
	}

	if err := enc.ReconstructData(shards); err != nil {
		return fmt.Errorf("failed to reconstruct data blocks: %w", err)
	}

	for _, u := range missingData {
		if !tree.Verify(int(u), shards[u]) {
			return fmt.Errorf(
				"reconstructed block %d does not match the tree", u,
			)
		}
	}

	return nil
}
