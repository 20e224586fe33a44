package pipeline

import (
	"context"

	"github.com/specialistvlad/gridetl/internal/runctx"
	"github.com/specialistvlad/gridetl/internal/warehouse"
)

// SchemaEnsurer creates a table when it does not exist yet.
type SchemaEnsurer interface {
	EnsureTable(ctx context.Context, t warehouse.Table) error
}

// EnsureSchema makes sure the target table exists. It reads nothing from the
// run context and never alters an existing table.
type EnsureSchema struct {
	Warehouse SchemaEnsurer
	Table     warehouse.Table
}

func (e *EnsureSchema) Run(ctx context.Context, _ *runctx.Context) error {
	return e.Warehouse.EnsureTable(ctx, e.Table)
}
