package tree

import (
	"errors"
	"fmt"
)

var (
	ErrZeroCapacity         = errors.New("tree: capacity must be greater than zero")
	ErrCapacityExhausted    = errors.New("tree: no free sibling group left")
	ErrNotLeaf              = errors.New("tree: node is not a leaf")
	ErrMaxLevel             = errors.New("tree: node is at the deepest level a location can hold")
	ErrLeaf                 = errors.New("tree: node is a leaf")
	ErrNonLeafChild         = errors.New("tree: node has a child that is not a leaf")
	ErrFreeNode             = errors.New("tree: node is not in use")
	ErrOutOfBounds          = errors.New("tree: index out of bounds")
	ErrDimensionMismatch    = errors.New("tree: spatial dimension mismatch")
	ErrInsufficientCapacity = errors.New("tree: capacity smaller than stored node count")
	ErrCorrupt              = errors.New("tree: stored arrays are inconsistent")
)

// InvariantError is what the tree panics with when a caller breaks a
// precondition.  The arena can't be trusted after that so there is nothing
// to return to; recover it only to report it.
type InvariantError struct {
	Op   string
	Node NodeIdx
	Err  error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s(%s): %s", e.Op, e.Node, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

// fatal logs the violation and panics
func fatal(op string, n NodeIdx, err error) {
	e := &InvariantError{Op: op, Node: n, Err: err}
	log.Criticalf("%v", e)
	panic(e)
}

func errDimensionMismatch(file, memory int64) error {
	return fmt.Errorf("%w (file dim: %d, memory dim: %d)",
		ErrDimensionMismatch, file, memory)
}

func errInsufficientCapacity(nodes int64, capacity uint) error {
	return fmt.Errorf("%w (no_nodes: %d, capacity: %d)",
		ErrInsufficientCapacity, nodes, capacity)
}

func errCorrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
