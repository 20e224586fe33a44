// Package node defines a vertex of the task graph and its execution status.
package node

import (
	"fmt"

	"github.com/specialistvlad/gridetl/internal/task"
)

// Node is a single vertex in the execution graph, representing one step of a
// run. Nodes carry configuration only; their execution state lives in the
// node state store.
type Node struct {
	// ID is the unique identifier of the node within its graph.
	// Example: "clean_process_date"
	ID string
	// Task is the handler executed when the node runs.
	Task task.Task
	// DependsOn lists the IDs of the upstream nodes, in declaration order.
	DependsOn []string
}

// New creates a node that runs t after every node in dependsOn.
func New(id string, t task.Task, dependsOn ...string) *Node {
	return &Node{ID: id, Task: t, DependsOn: dependsOn}
}

// Status represents the execution state of a node.
type Status int32

const (
	// StatusPending indicates the node is waiting for its dependencies.
	StatusPending Status = iota
	// StatusRunning indicates the node's task is executing.
	StatusRunning
	// StatusSucceeded indicates the task returned without error.
	StatusSucceeded
	// StatusFailed indicates the task returned an error.
	StatusFailed
	// StatusSkipped indicates the node never ran because the run had already failed.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusSkipped
}

// CanTransition reports whether the state machine allows from → to.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning || to == StatusSkipped
	case StatusRunning:
		return to == StatusSucceeded || to == StatusFailed
	}
	return false
}
