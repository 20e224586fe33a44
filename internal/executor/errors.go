package executor

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridetl/internal/runctx"
	"github.com/specialistvlad/gridetl/internal/task"
)

// Error kinds reported for a failed run.
const (
	KindDuplicateKey = "DuplicateKeyError"
	KindMissingKey   = "MissingKeyError"
	KindExecution    = "ExecutionError"
	KindOther        = "Error"
)

// NodeError is the terminal error of a failed run. It names the node whose
// task failed and unwraps to the task's error.
type NodeError struct {
	NodeID string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node '%s' failed (%s): %v", e.NodeID, Kind(e.Err), e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Kind classifies err into one of the reported error kinds.
func Kind(err error) string {
	var execErr *task.ExecutionError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, runctx.ErrDuplicateKey):
		return KindDuplicateKey
	case errors.Is(err, runctx.ErrMissingKey):
		return KindMissingKey
	case errors.As(err, &execErr):
		return KindExecution
	default:
		return KindOther
	}
}
