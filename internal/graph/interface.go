// Package graph provides a unified interface to the task graph of one run,
// combining the static topology (nodes and edges) with the mutable node state
// (status, errors, timings).
//
// The scheduler and executor talk only to Graph; they never touch the
// topology or state stores directly.
package graph

import (
	"context"
	"time"

	"github.com/specialistvlad/gridetl/internal/node"
)

// Graph is the execution view of a built task graph.
//
// Implementations MUST be thread-safe: independent branches execute in
// parallel and update the graph concurrently.
type Graph interface {
	// Node retrieves a node's configuration by its ID.
	Node(ctx context.Context, id string) (*node.Node, bool)

	// AllNodes returns all nodes in topological order.
	AllNodes(ctx context.Context) []*node.Node

	// DependenciesOf retrieves all nodes the given node directly depends on.
	DependenciesOf(ctx context.Context, id string) ([]*node.Node, error)

	// NodeStatus retrieves the current execution status of a node.
	NodeStatus(ctx context.Context, id string) node.Status

	// NodeError retrieves the recorded failure of a node, or nil.
	NodeError(ctx context.Context, id string) error

	// NodeTiming returns when a node started and finished.
	NodeTiming(ctx context.Context, id string) (started, finished time.Time)

	// MarkRunning transitions a node Pending → Running.
	MarkRunning(ctx context.Context, id string) error

	// MarkSucceeded transitions a node Running → Succeeded.
	MarkSucceeded(ctx context.Context, id string) error

	// MarkFailed transitions a node Running → Failed and records the error.
	MarkFailed(ctx context.Context, id string, nodeErr error) error

	// MarkSkipped transitions a node Pending → Skipped.
	MarkSkipped(ctx context.Context, id string) error
}
