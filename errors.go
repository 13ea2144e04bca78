package sg

import (
	"errors"
	"fmt"
)

// Sentinel errors carried by ContractError.
var (
	// ErrUnbalancedPop indicates Pop was called at depth 0.
	ErrUnbalancedPop = errors.New("sg: pop without matching push")

	// ErrCacheBoundary indicates Pop would cross the depth at which an
	// open cache recording began.
	ErrCacheBoundary = errors.New("sg: pop through open cache recording")

	// ErrRecordingMismatch indicates a cache recording was closed out of
	// order or at a different depth than it was opened.
	ErrRecordingMismatch = errors.New("sg: cache recording closed out of order")

	// ErrStateLeak indicates a traversal finished with pushed levels or
	// open cache recordings left behind.
	ErrStateLeak = errors.New("sg: traversal state not idle")

	// ErrUnknownKind indicates an element kind outside the registry.
	ErrUnknownKind = errors.New("sg: unknown element kind")

	// ErrReentrantApply indicates an action was applied from inside its
	// own traversal.
	ErrReentrantApply = errors.New("sg: action applied while already applying")
)

// ContractError reports a misuse of the traversal protocol by a node or
// action implementation. It is raised with panic, never returned: the
// state it guards is no longer trustworthy once the contract is broken.
type ContractError struct {
	Op    string
	Depth int
	Err   error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s at depth %d: %v", e.Op, e.Depth, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

func contractViolation(op string, depth int, err error) {
	Logger().Error("sg: traversal contract violated", "op", op, "depth", depth, "err", err)
	panic(&ContractError{Op: op, Depth: depth, Err: err})
}
