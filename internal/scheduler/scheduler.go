package scheduler

import (
	"context"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/graph"
	"github.com/specialistvlad/gridetl/internal/node"
)

// DefaultScheduler is the reference implementation of Scheduler.
type DefaultScheduler struct {
	g graph.Graph
}

// New creates a new default scheduler for the graph it will be analyzing.
func New(g graph.Graph) Scheduler {
	return &DefaultScheduler{g: g}
}

// Ready implements the Scheduler interface.
func (s *DefaultScheduler) Ready(ctx context.Context) ([]*node.Node, error) {
	logger := ctxlog.FromContext(ctx)
	var ready []*node.Node

	for _, n := range s.g.AllNodes(ctx) {
		if s.g.NodeStatus(ctx, n.ID) != node.StatusPending {
			continue
		}
		deps, err := s.g.DependenciesOf(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		satisfied := true
		for _, dep := range deps {
			if s.g.NodeStatus(ctx, dep.ID) != node.StatusSucceeded {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, n)
		}
	}

	logger.Debug("Scheduler found ready nodes.", "count", len(ready))
	return ready, nil
}

// Pending implements the Scheduler interface.
func (s *DefaultScheduler) Pending(ctx context.Context) []*node.Node {
	var pending []*node.Node
	for _, n := range s.g.AllNodes(ctx) {
		if s.g.NodeStatus(ctx, n.ID) == node.StatusPending {
			pending = append(pending, n)
		}
	}
	return pending
}
