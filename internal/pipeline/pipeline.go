package pipeline

import (
	"context"
	"errors"

	"github.com/specialistvlad/gridetl/internal/compute"
	"github.com/specialistvlad/gridetl/internal/graph"
	"github.com/specialistvlad/gridetl/internal/node"
	"github.com/specialistvlad/gridetl/internal/warehouse"
)

// Node identifiers of the fixed tasks. The transform node is named after the
// configured transform.
const (
	ResolveNodeID = "get_process_date"
	SchemaNodeID  = "create_table"
	ResetNodeID   = "clean_process_date"
)

// Warehouse is the storage boundary the pipeline needs.
type Warehouse interface {
	SchemaEnsurer
	PartitionDeleter
}

// Definition is the static shape of one pipeline.
type Definition struct {
	ID        string
	Table     warehouse.Table
	Transform Transform
}

// Transform is the compute step of a pipeline.
type Transform struct {
	Name        string
	Application string
	Conf        map[string]string
}

// Deps are the runtime collaborators of a pipeline run.
type Deps struct {
	Warehouse Warehouse
	Submitter compute.Submitter
	Clock     Clock
}

func (d Definition) Validate() error {
	if d.Transform.Name == "" {
		return errors.New("transform name is required")
	}
	switch d.Transform.Name {
	case ResolveNodeID, SchemaNodeID, ResetNodeID:
		return errors.New("transform name collides with a built-in task")
	}
	if d.Transform.Application == "" {
		return errors.New("transform application is required")
	}
	return d.Table.Validate()
}

// Nodes returns the four-node chain for one run with the given override conf.
func Nodes(def Definition, conf map[string]any, deps Deps) []*node.Node {
	return []*node.Node{
		node.New(ResolveNodeID, &Resolve{Conf: conf, Clock: deps.Clock}),
		node.New(SchemaNodeID, &EnsureSchema{Warehouse: deps.Warehouse, Table: def.Table}, ResolveNodeID),
		node.New(ResetNodeID, &ResetPartition{Warehouse: deps.Warehouse, Table: def.Table}, SchemaNodeID),
		node.New(def.Transform.Name, &SubmitCompute{
			Submitter:   deps.Submitter,
			JobName:     def.Transform.Name,
			Application: def.Transform.Application,
			Conf:        def.Transform.Conf,
		}, ResetNodeID),
	}
}

// Build validates def and returns the run's task graph.
func Build(ctx context.Context, def Definition, conf map[string]any, deps Deps) (*graph.Manager, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if deps.Warehouse == nil {
		return nil, errors.New("pipeline warehouse is not configured")
	}
	if deps.Submitter == nil {
		return nil, errors.New("pipeline submitter is not configured")
	}
	return graph.Build(ctx, Nodes(def, conf, deps)...)
}
