package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/gridetl/internal/compute"
	"github.com/specialistvlad/gridetl/internal/task"
)

// FakeSubmitter records submitted jobs. When Warehouse is set, every
// successful submission loads RowsPerRun rows into the partition named by the
// job's --process-date argument.
type FakeSubmitter struct {
	Warehouse  *FakeWarehouse
	Table      string
	RowsPerRun int
	Err        error

	mu   sync.Mutex
	jobs []compute.Job
}

func (s *FakeSubmitter) Submit(ctx context.Context, job compute.Job) error {
	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()

	if s.Err != nil {
		return task.Execution("spark", "submit "+job.Name, s.Err)
	}
	if s.Warehouse == nil {
		return nil
	}

	key, ok := argValue(job.Args, "--process-date")
	if !ok {
		return task.Execution("spark", "submit "+job.Name, errors.New("missing --process-date"))
	}
	if !s.Warehouse.Insert(s.Table, key, s.RowsPerRun) {
		return task.Execution("spark", "submit "+job.Name, errTableMissing(s.Table))
	}
	return nil
}

// Jobs returns the submitted jobs in order.
func (s *FakeSubmitter) Jobs() []compute.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]compute.Job(nil), s.jobs...)
}

func argValue(args []string, flag string) (string, bool) {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1], true
		}
	}
	return "", false
}
