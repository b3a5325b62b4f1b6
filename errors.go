package dmerkle

import "fmt"

// InsufficientInputError is the panic value from [Build]
// and the other build functions when given fewer than two blocks.
// A tree over zero or one blocks cannot prove membership of anything,
// so this always indicates a caller bug.
type InsufficientInputError struct {
	Count int
}

func (e InsufficientInputError) Error() string {
	return fmt.Sprintf("BUG: a tree requires at least 2 blocks (got %d)", e.Count)
}

// PositionOutOfRangeError is the panic value from [*Tree.Verify],
// [*Tree.Leaf] and [Check] when a leaf position
// is outside [0, LeafCount).
type PositionOutOfRangeError struct {
	Position  int
	LeafCount int
}

func (e PositionOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"BUG: leaf position %d out of range [0, %d)", e.Position, e.LeafCount,
	)
}
