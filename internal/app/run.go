package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/executor"
	"github.com/specialistvlad/gridetl/internal/pipeline"
	"github.com/specialistvlad/gridetl/internal/schedule"
	"github.com/specialistvlad/gridetl/internal/session"
)

const shutdownTimeout = 30 * time.Second

// Run executes the pipeline. In one-shot mode it runs once and returns the
// run's result; a failed run is reported through the error. In serve mode it
// blocks until ctx is cancelled and returns a nil result.
func (a *App) Run(ctx context.Context) (*executor.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "serve", a.config.Serve)
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("Failed to release resources.", "error", err)
		}
	}()

	if err := a.healthCheckServer(); err != nil {
		return nil, err
	}
	if err := a.connect(ctx); err != nil {
		return nil, err
	}

	factory := session.NewFactory(a.def, pipeline.Deps{
		Warehouse: a.warehouse,
		Submitter: a.submitter,
		Clock:     a.clock,
	}, session.WithWorkers(a.workers()))

	if a.config.Serve {
		return nil, a.serve(ctx, factory)
	}

	a.logger.Info("🚀 Triggering pipeline run.", "pipeline", a.def.ID)
	result, err := factory.Run(ctx, session.Trigger{
		Time:   a.clock.Now(),
		Conf:   a.config.Conf,
		Source: "manual",
	})
	if err != nil {
		return result, fmt.Errorf("run failed: %w", err)
	}
	a.logger.Info("🏁 Pipeline run finished.", "pipeline", a.def.ID, "run_id", result.RunID)
	return result, nil
}

// serve triggers a run on every scheduled tick until ctx is done.
func (a *App) serve(ctx context.Context, factory *session.Factory) error {
	p := a.model.Pipeline
	sched, err := schedule.New(p.Schedule, func(ctx context.Context, tickAt time.Time) error {
		_, err := factory.Run(ctx, session.Trigger{Time: tickAt, Source: "schedule"})
		return err
	},
		schedule.WithStartDate(p.StartDate),
		schedule.WithClock(a.clock.Now),
	)
	if err != nil {
		return err
	}

	// Runs in flight are not cancelled on shutdown; Stop waits for them.
	if err := sched.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	<-ctx.Done()
	a.logger.Info("Shutdown requested.")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}
