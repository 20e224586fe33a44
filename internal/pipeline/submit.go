package pipeline

import (
	"context"
	"maps"

	"github.com/specialistvlad/gridetl/internal/compute"
	"github.com/specialistvlad/gridetl/internal/runctx"
)

// ProcessDateFlag is the job argument carrying the partition key.
const ProcessDateFlag = "--process-date"

// SubmitCompute submits the transformation job for the run's partition and
// waits for the engine to report completion.
type SubmitCompute struct {
	Submitter   compute.Submitter
	JobName     string
	Application string
	Conf        map[string]string
}

func (s *SubmitCompute) Consumes() []string { return []string{ProcessDate.Key()} }

// Job returns the submission for key.
func (s *SubmitCompute) Job(key PartitionKey) compute.Job {
	return compute.Job{
		Name:        s.JobName,
		Application: s.Application,
		Args:        []string{ProcessDateFlag, string(key)},
		Conf:        maps.Clone(s.Conf),
	}
}

func (s *SubmitCompute) Run(ctx context.Context, rc *runctx.Context) error {
	key, err := ProcessDate.Pull(rc)
	if err != nil {
		return err
	}
	return s.Submitter.Submit(ctx, s.Job(key))
}
