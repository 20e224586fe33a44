package compute

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"resty.dev/v3"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/task"
)

// Livy batch states, see the Livy REST API.
const (
	livyStateSuccess = "success"
	livyStateDead    = "dead"
	livyStateKilled  = "killed"
	livyStateError   = "error"
)

// LivyConfig describes a Livy server.
type LivyConfig struct {
	URL             string
	PollInterval    time.Duration
	RequestTimeout  time.Duration
	DriverClassPath string
	Conf            map[string]string
}

func (c LivyConfig) Validate() error {
	if c.URL == "" {
		return errors.New("livy url is required")
	}
	if c.PollInterval <= 0 {
		return errors.New("livy poll interval must be positive")
	}
	return nil
}

type livyBatchRequest struct {
	File string            `json:"file"`
	Name string            `json:"name,omitempty"`
	Args []string          `json:"args,omitempty"`
	Conf map[string]string `json:"conf,omitempty"`
}

type livyBatch struct {
	ID    int    `json:"id"`
	State string `json:"state"`
}

// LivySubmitter runs jobs as Livy batches and polls them until they reach a
// terminal state.
type LivySubmitter struct {
	cfg    LivyConfig
	client *resty.Client
}

func NewLivySubmitter(cfg LivyConfig) (*LivySubmitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetHeader("Content-Type", "application/json")
	if cfg.RequestTimeout > 0 {
		client.SetTimeout(cfg.RequestTimeout)
	}
	return &LivySubmitter{cfg: cfg, client: client}, nil
}

// Close releases the HTTP client.
func (l *LivySubmitter) Close() error {
	return l.client.Close()
}

func (l *LivySubmitter) Submit(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	conf := make(map[string]string, len(l.cfg.Conf)+len(job.Conf)+1)
	maps.Copy(conf, l.cfg.Conf)
	if l.cfg.DriverClassPath != "" {
		conf["spark.driver.extraClassPath"] = l.cfg.DriverClassPath
	}
	maps.Copy(conf, job.Conf)

	var batch livyBatch
	resp, err := l.client.R().
		SetContext(ctx).
		SetBody(livyBatchRequest{File: job.Application, Name: job.Name, Args: job.Args, Conf: conf}).
		SetResult(&batch).
		Post("/batches")
	if err != nil {
		return task.Execution("livy", "create batch", err)
	}
	if resp.IsError() {
		return task.Execution("livy", "create batch", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	logger.Info("🚀 Livy batch created.", "job", job.Name, "batch_id", batch.ID, "state", batch.State)

	return l.wait(ctx, job, batch.ID)
}

func (l *LivySubmitter) wait(ctx context.Context, job Job, id int) error {
	logger := ctxlog.FromContext(ctx).With("batch_id", id)
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	last := ""
	for {
		state, err := l.state(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				l.kill(id)
			}
			return task.Execution("livy", fmt.Sprintf("poll batch %d", id), err)
		}
		if state != last {
			logger.Debug("Livy batch state changed.", "state", state)
			last = state
		}

		switch state {
		case livyStateSuccess:
			logger.Info("✅ Livy batch finished.", "job", job.Name)
			return nil
		case livyStateDead, livyStateKilled, livyStateError:
			return task.Execution("livy", fmt.Sprintf("batch %d", id), fmt.Errorf("batch ended in state %q", state))
		}

		select {
		case <-ctx.Done():
			l.kill(id)
			return task.Execution("livy", fmt.Sprintf("batch %d", id), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *LivySubmitter) state(ctx context.Context, id int) (string, error) {
	var batch livyBatch
	resp, err := l.client.R().
		SetContext(ctx).
		SetResult(&batch).
		Get(fmt.Sprintf("/batches/%d/state", id))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}
	return batch.State, nil
}

// kill deletes the batch after cancellation. Failures are ignored.
func (l *LivySubmitter) kill(id int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = l.client.R().SetContext(ctx).Delete(fmt.Sprintf("/batches/%d", id))
}
