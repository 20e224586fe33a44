package pipeline

import (
	"context"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/runctx"
	"github.com/specialistvlad/gridetl/internal/warehouse"
)

// PartitionDeleter removes one partition's rows and reports how many.
type PartitionDeleter interface {
	DeletePartition(ctx context.Context, t warehouse.Table, key string) (int64, error)
}

// ResetPartition deletes every row of the run's partition so the compute job
// can reload it from scratch.
type ResetPartition struct {
	Warehouse PartitionDeleter
	Table     warehouse.Table
}

func (r *ResetPartition) Consumes() []string { return []string{ProcessDate.Key()} }

func (r *ResetPartition) Run(ctx context.Context, rc *runctx.Context) error {
	key, err := ProcessDate.Pull(rc)
	if err != nil {
		return err
	}

	rows, err := r.Warehouse.DeletePartition(ctx, r.Table, string(key))
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Partition reset.", "table", r.Table.Name, "process_date", string(key), "rows_deleted", rows)
	return nil
}
