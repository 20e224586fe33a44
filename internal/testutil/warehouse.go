package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/gridetl/internal/task"
	"github.com/specialistvlad/gridetl/internal/warehouse"
)

// FakeWarehouse is an in-memory warehouse. Each table holds a row count per
// partition key.
type FakeWarehouse struct {
	mu     sync.Mutex
	tables map[string]map[string]int

	// EnsureErr and DeleteErr, when set, are returned wrapped as an
	// ExecutionError.
	EnsureErr error
	DeleteErr error

	EnsureCalls int
	DeleteCalls []string
}

func NewFakeWarehouse() *FakeWarehouse {
	return &FakeWarehouse{tables: make(map[string]map[string]int)}
}

func (w *FakeWarehouse) EnsureTable(ctx context.Context, t warehouse.Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.EnsureCalls++
	if w.EnsureErr != nil {
		return task.Execution("warehouse", "create table "+t.Name, w.EnsureErr)
	}
	if _, ok := w.tables[t.Name]; !ok {
		w.tables[t.Name] = make(map[string]int)
	}
	return nil
}

func (w *FakeWarehouse) DeletePartition(ctx context.Context, t warehouse.Table, key string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.DeleteCalls = append(w.DeleteCalls, key)
	if w.DeleteErr != nil {
		return 0, task.Execution("warehouse", "delete partition "+key, w.DeleteErr)
	}
	partitions, ok := w.tables[t.Name]
	if !ok {
		return 0, task.Execution("warehouse", "delete partition "+key, errTableMissing(t.Name))
	}
	n := partitions[key]
	delete(partitions, key)
	return int64(n), nil
}

// Insert appends n rows to the partition. It reports false if the table does
// not exist.
func (w *FakeWarehouse) Insert(table, key string, n int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	partitions, ok := w.tables[table]
	if !ok {
		return false
	}
	partitions[key] += n
	return true
}

// Rows returns the row count of one partition.
func (w *FakeWarehouse) Rows(table, key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tables[table][key]
}

// Partitions returns a copy of every partition's row count in table.
func (w *FakeWarehouse) Partitions(table string) map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.tables[table]))
	for k, v := range w.tables[table] {
		out[k] = v
	}
	return out
}

// HasTable reports whether EnsureTable created table.
func (w *FakeWarehouse) HasTable(table string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.tables[table]
	return ok
}

type errTableMissing string

func (e errTableMissing) Error() string { return "relation \"" + string(e) + "\" does not exist" }
