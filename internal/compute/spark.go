package compute

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/task"
)

// SparkConfig describes how to reach a Spark cluster through spark-submit.
type SparkConfig struct {
	// Binary defaults to "spark-submit".
	Binary          string
	Master          string
	DeployMode      string
	DriverClassPath string
	// Conf is merged under the job's own conf.
	Conf map[string]string
}

func (c SparkConfig) Validate() error {
	if c.Master == "" {
		return errors.New("spark master is required")
	}
	switch c.DeployMode {
	case "", "client", "cluster":
	default:
		return fmt.Errorf("invalid spark deploy mode %q", c.DeployMode)
	}
	return nil
}

// SparkSubmitter runs jobs with spark-submit.
type SparkSubmitter struct {
	cfg    SparkConfig
	runner CommandRunner
}

// NewSparkSubmitter returns a submitter using runner to start the process.
func NewSparkSubmitter(cfg SparkConfig, runner CommandRunner) (*SparkSubmitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Binary == "" {
		cfg.Binary = "spark-submit"
	}
	if runner == nil {
		runner = ExecRunner{TailLines: 20}
	}
	return &SparkSubmitter{cfg: cfg, runner: runner}, nil
}

// Args builds the spark-submit argument list, without the binary itself.
// Conf entries are emitted in key order.
func (s *SparkSubmitter) Args(job Job) []string {
	args := []string{"--master", s.cfg.Master, "--name", job.Name}
	if s.cfg.DeployMode != "" {
		args = append(args, "--deploy-mode", s.cfg.DeployMode)
	}
	if s.cfg.DriverClassPath != "" {
		args = append(args, "--driver-class-path", s.cfg.DriverClassPath)
	}

	conf := make(map[string]string, len(s.cfg.Conf)+len(job.Conf))
	maps.Copy(conf, s.cfg.Conf)
	maps.Copy(conf, job.Conf)
	for _, k := range slices.Sorted(maps.Keys(conf)) {
		args = append(args, "--conf", k+"="+conf[k])
	}

	args = append(args, job.Application)
	return append(args, job.Args...)
}

// Submit runs spark-submit and blocks until the process exits.
func (s *SparkSubmitter) Submit(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	args := s.Args(job)
	logger.Info("🚀 Submitting spark job.", "job", job.Name, "master", s.cfg.Master)
	logger.Debug("spark-submit argv.", "binary", s.cfg.Binary, "args", args)

	if err := s.runner.Run(ctx, s.cfg.Binary, args...); err != nil {
		return task.Execution("spark", "submit "+job.Name, err)
	}
	logger.Info("✅ Spark job finished.", "job", job.Name)
	return nil
}
