// Package scheduler decides which nodes of a graph may run next.
//
// The scheduler is pure decision logic. It reads node status and dependencies
// from the graph and never changes them; the executor owns every transition.
package scheduler

import (
	"context"

	"github.com/specialistvlad/gridetl/internal/node"
)

// Scheduler analyzes the graph and reports which nodes are ready.
type Scheduler interface {
	// Ready returns, in topological order, every Pending node whose
	// dependencies have all Succeeded.
	Ready(ctx context.Context) ([]*node.Node, error)

	// Pending returns every node that is still Pending, in topological order.
	Pending(ctx context.Context) []*node.Node
}
