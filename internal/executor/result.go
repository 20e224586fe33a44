package executor

import (
	"time"

	"github.com/specialistvlad/gridetl/internal/node"
)

// RunStatus is the global state of a run.
type RunStatus int

const (
	RunPending RunStatus = iota
	RunRunning
	RunSucceeded
	RunFailed
)

func (s RunStatus) String() string {
	switch s {
	case RunPending:
		return "pending"
	case RunRunning:
		return "running"
	case RunSucceeded:
		return "succeeded"
	case RunFailed:
		return "failed"
	}
	return "unknown"
}

// NodeResult is the final state of one node.
type NodeResult struct {
	ID       string
	Status   node.Status
	Err      error
	Started  time.Time
	Finished time.Time
}

// Result summarizes a finished run.
type Result struct {
	RunID  string
	Status RunStatus
	// Nodes are in topological order.
	Nodes []NodeResult
	// FailedNode is the ID of the node that failed the run, if any.
	FailedNode string
	// Err is the terminal *NodeError of a failed run.
	Err error
}

// Node returns the result of the node with the given ID.
func (r *Result) Node(id string) (NodeResult, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeResult{}, false
}

// ErrorKind returns the kind of the terminal error, or "" on success.
func (r *Result) ErrorKind() string {
	return Kind(r.Err)
}
