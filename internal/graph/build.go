package graph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/node"
	"github.com/specialistvlad/gridetl/internal/nodestate"
	"github.com/specialistvlad/gridetl/internal/task"
	"github.com/specialistvlad/gridetl/internal/topology"
)

// Build constructs a complete, validated graph from nodes. Each node's
// DependsOn list becomes its incoming edges. The result is sealed: its
// structure cannot change afterwards.
func Build(ctx context.Context, nodes ...*node.Node) (*Manager, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "node_count", len(nodes))
	topo := topology.New()

	// First pass: register every node.
	for _, n := range nodes {
		if err := topo.AddNode(n); err != nil {
			return nil, fmt.Errorf("failed to add node: %w", err)
		}
	}

	// Second pass: link dependencies.
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if _, ok := topo.Node(dep); !ok {
				return nil, fmt.Errorf("node '%s' depends on non-existent node '%s'", n.ID, dep)
			}
			logger.Debug("Linking dependency.", "from", dep, "to", n.ID)
			if err := topo.AddDependency(dep, n.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := topo.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	if err := validateSlots(topo); err != nil {
		return nil, fmt.Errorf("error validating context contracts: %w", err)
	}

	ids, err := topo.Order()
	if err != nil {
		return nil, err
	}
	order := make([]*node.Node, 0, len(ids))
	for _, id := range ids {
		n, _ := topo.Node(id)
		order = append(order, n)
	}
	topo.Seal()

	logger.Debug("Build: Graph construction successful.")
	return &Manager{topology: topo, state: nodestate.New(), order: order}, nil
}

// validateSlots checks that every context key a task consumes is produced by
// exactly one node, and that the producer is upstream of the consumer.
func validateSlots(topo *topology.Store) error {
	producers := make(map[string]string)
	for _, n := range topo.AllNodes() {
		for _, key := range task.ProducedKeys(n.Task) {
			if other, ok := producers[key]; ok {
				return fmt.Errorf("context key %q is produced by both '%s' and '%s'", key, other, n.ID)
			}
			producers[key] = n.ID
		}
	}

	for _, n := range topo.AllNodes() {
		consumed := task.ConsumedKeys(n.Task)
		if len(consumed) == 0 {
			continue
		}
		ancestors, err := topo.Ancestors(n.ID)
		if err != nil {
			return err
		}
		for _, key := range consumed {
			producer, ok := producers[key]
			if !ok {
				return fmt.Errorf("node '%s' consumes context key %q, which no node produces", n.ID, key)
			}
			if _, upstream := ancestors[producer]; !upstream {
				return fmt.Errorf("node '%s' consumes context key %q, but its producer '%s' is not upstream", n.ID, key, producer)
			}
		}
	}
	return nil
}
