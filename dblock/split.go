package dblock

import (
	"fmt"
	"log/slog"

	"github.com/gordian-engine/dmerkle"
	"github.com/klauspost/reedsolomon"
)

// maxGF8Shards is the most shards the 8-bit Reed-Solomon field supports.
// Beyond this, the encoder switches to a 16-bit field
// that requires block sizes to be a multiple of 64.
const maxGF8Shards = 256

// SplitConfig is the configuration for [Split].
type SplitConfig struct {
	// BlockSize is the size of every block in bytes.
	// Without parity, the final data block may be shorter.
	// With parity, the final data block is zero-padded to BlockSize.
	BlockSize int

	// ParityRatio is the desired ratio of parity blocks to data blocks.
	// For example, ParityRatio=0.25 means there will be
	// one parity block for every four data blocks.
	// The parity count is rounded down
	// if the ratio does not result in a whole number.
	ParityRatio float32

	// Build controls how the tree over all blocks is built.
	Build dmerkle.BuildConfig
}

// Layout is the shape of a committed block set.
// A consumer needs the Layout alongside the tree
// in order to reassemble the original data.
type Layout struct {
	// The number of data and parity blocks.
	NumData, NumParity int

	// Length of the original data, excluding any padding.
	DataSize int
}

// Set is the producer's view of a split payload:
// the blocks, their layout, and the tree committing to them.
type Set struct {
	Layout

	// Data blocks followed by parity blocks.
	// The data blocks reference the input to [Split]
	// when no padding or parity was required.
	Blocks [][]byte

	Tree *dmerkle.Tree
}

// Split cuts data into blocks of cfg.BlockSize,
// adds Reed-Solomon parity blocks according to cfg.ParityRatio,
// and builds a tree over data and parity blocks together.
//
// Split returns an error if the data and parity together
// would be fewer than the two blocks a tree requires,
// or if the requested shape is not encodable.
func Split(log *slog.Logger, data []byte, cfg SplitConfig) (*Set, error) {
	if cfg.BlockSize <= 0 {
		panic(fmt.Errorf(
			"BUG: BlockSize must be positive (got %d)", cfg.BlockSize,
		))
	}
	if cfg.ParityRatio < 0 {
		panic(fmt.Errorf(
			"BUG: ParityRatio must be non-negative (got %g)", cfg.ParityRatio,
		))
	}

	nData := len(data) / cfg.BlockSize
	if len(data)%cfg.BlockSize > 0 {
		nData++
	}
	nParity := int(cfg.ParityRatio * float32(nData))

	if nData+nParity < 2 {
		return nil, fmt.Errorf(
			"data of %d bytes with block size %d yields %d data and %d parity blocks; need at least 2 in total",
			len(data), cfg.BlockSize, nData, nParity,
		)
	}

	s := &Set{
		Layout: Layout{
			NumData:   nData,
			NumParity: nParity,
			DataSize:  len(data),
		},
	}

	if nParity == 0 {
		s.Blocks = make([][]byte, nData)
		for i := range nData {
			start := i * cfg.BlockSize
			end := min(start+cfg.BlockSize, len(data))
			s.Blocks[i] = data[start:end:end]
		}
	} else {
		blocks, err := encode(data, nData, nParity, cfg.BlockSize)
		if err != nil {
			return nil, err
		}
		s.Blocks = blocks
	}

	s.Tree = dmerkle.Build(s.Blocks, cfg.Build)

	log.Debug(
		"Split data into blocks",
		"data_size", len(data),
		"block_size", cfg.BlockSize,
		"n_data", nData,
		"n_parity", nParity,
		"root", s.Tree.RootHex(),
	)

	return s, nil
}

func encode(data []byte, nData, nParity, blockSize int) ([][]byte, error) {
	if nData+nParity > maxGF8Shards && blockSize%64 != 0 {
		return nil, fmt.Errorf(
			"block size %d must be a multiple of 64 for %d total blocks",
			blockSize, nData+nParity,
		)
	}

	enc, err := newEncoder(nData, nParity, blockSize)
	if err != nil {
		return nil, err
	}

	// Lay out every block in one allocation, sized exactly,
	// so the encoder never needs to reallocate.
	// The encoder's own Split sizes shards from the data length alone,
	// which can be smaller than blockSize.
	mem := make([]byte, (nData+nParity)*blockSize)
	copy(mem, data)

	blocks := make([][]byte, nData+nParity)
	for i := range blocks {
		start := i * blockSize
		end := start + blockSize
		blocks[i] = mem[start:end:end]
	}

	if err := enc.Encode(blocks); err != nil {
		return nil, fmt.Errorf("failed to erasure-code data: %w", err)
	}

	return blocks, nil
}

func newEncoder(nData, nParity, blockSize int) (reedsolomon.Encoder, error) {
	enc, err := reedsolomon.New(
		nData, nParity,
		reedsolomon.WithAutoGoroutines(blockSize),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to build Reed-Solomon encoder for %d data and %d parity blocks: %w",
			nData, nParity, err,
		)
	}
	return enc, nil
}
