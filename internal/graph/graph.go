package graph

import (
	"context"
	"time"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/node"
	"github.com/specialistvlad/gridetl/internal/nodestate"
	"github.com/specialistvlad/gridetl/internal/topology"
)

// Manager composes a sealed topology with a per-run state store.
type Manager struct {
	topology *topology.Store
	state    *nodestate.Store
	order    []*node.Node
}

var _ Graph = (*Manager)(nil)

func (m *Manager) Node(ctx context.Context, id string) (*node.Node, bool) {
	return m.topology.Node(id)
}

func (m *Manager) AllNodes(ctx context.Context) []*node.Node {
	return append([]*node.Node{}, m.order...)
}

func (m *Manager) DependenciesOf(ctx context.Context, id string) ([]*node.Node, error) {
	ids, err := m.topology.DependenciesOf(id)
	if err != nil {
		return nil, err
	}
	deps := make([]*node.Node, 0, len(ids))
	for _, depID := range ids {
		n, _ := m.topology.Node(depID)
		deps = append(deps, n)
	}
	return deps, nil
}

func (m *Manager) NodeStatus(ctx context.Context, id string) node.Status {
	return m.state.Status(id)
}

func (m *Manager) NodeError(ctx context.Context, id string) error {
	return m.state.Error(id)
}

func (m *Manager) NodeTiming(ctx context.Context, id string) (time.Time, time.Time) {
	return m.state.Timing(id)
}

func (m *Manager) MarkRunning(ctx context.Context, id string) error {
	return m.state.Transition(ctx, id, node.StatusRunning)
}

func (m *Manager) MarkSucceeded(ctx context.Context, id string) error {
	return m.state.Transition(ctx, id, node.StatusSucceeded)
}

func (m *Manager) MarkFailed(ctx context.Context, id string, nodeErr error) error {
	m.state.SetError(id, nodeErr)
	if err := m.state.Transition(ctx, id, node.StatusFailed); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Node failure recorded.", "node_id", id, "error", nodeErr)
	return nil
}

func (m *Manager) MarkSkipped(ctx context.Context, id string) error {
	return m.state.Transition(ctx, id, node.StatusSkipped)
}
