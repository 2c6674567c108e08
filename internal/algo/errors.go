package algo

import (
	"errors"
	"fmt"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrUnsolvableCycle: a blocking cycle admits no rotation.
	ErrUnsolvableCycle = errors.New("algo: unsolvable cycle")

	// ErrResidualUnsolved: robots left off-goal after the final advance.
	ErrResidualUnsolved = errors.New("algo: residual unresolved robots")

	// ErrInvariant: the solver caught itself breaking a solve invariant.
	ErrInvariant = errors.New("algo: invariant violation")
)

// CycleReason tags why a cycle could not be resolved.
type CycleReason string

const (
	ReasonNoGap             CycleReason = "no-gap"
	ReasonFullyContracted   CycleReason = "fully-contracted"
	ReasonContractionBudget CycleReason = "contraction-budget-exceeded"
)

// UnsolvableCycleError carries the ids of the failing cycle in cycle order.
type UnsolvableCycleError struct {
	Robots []core.RobotID
	Reason CycleReason
}

func (e *UnsolvableCycleError) Error() string {
	return fmt.Sprintf("algo: unsolvable cycle %v: %s", e.Robots, e.Reason)
}

func (e *UnsolvableCycleError) Is(target error) bool {
	return target == ErrUnsolvableCycle
}

// ResidualUnsolvedError lists robots that never reached their goal.
type ResidualUnsolvedError struct {
	Robots []core.RobotID
}

func (e *ResidualUnsolvedError) Error() string {
	return fmt.Sprintf("algo: robots %v failed to reach their goal", e.Robots)
}

func (e *ResidualUnsolvedError) Is(target error) bool {
	return target == ErrResidualUnsolved
}

// InvariantError reports a broken solver invariant.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("algo: %s: %s", e.Op, e.Detail)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func invariantf(op, format string, args ...any) error {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
