package compute

import (
	"context"
	"errors"
)

// Job is one transformation job submission.
type Job struct {
	// Name is shown by the cluster manager.
	Name string
	// Application is the path to the job script or jar.
	Application string
	// Args are appended after the application path.
	Args []string
	// Conf is passed as engine configuration (spark --conf / Livy conf).
	Conf map[string]string
}

func (j Job) Validate() error {
	if j.Name == "" {
		return errors.New("job name is required")
	}
	if j.Application == "" {
		return errors.New("job application is required")
	}
	return nil
}

// Submitter runs a job to completion. A nil error means the engine reported
// success.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}
