// Package session drives a single pipeline run: it assigns the run ID,
// creates the run's private context, builds the task graph and executes it.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/executor"
	"github.com/specialistvlad/gridetl/internal/pipeline"
	"github.com/specialistvlad/gridetl/internal/runctx"
)

// Trigger describes what started a run.
type Trigger struct {
	// Time is when the run was requested.
	Time time.Time
	// Conf holds the override parameters. Values may be nil.
	Conf map[string]any
	// Source is "manual" or "schedule".
	Source string
}

// Factory creates sessions for one pipeline definition.
type Factory struct {
	def     pipeline.Definition
	deps    pipeline.Deps
	workers int
	newID   func() string
}

// Option configures a Factory.
type Option func(*Factory)

// WithWorkers sets the executor's concurrency limit.
func WithWorkers(n int) Option {
	return func(f *Factory) { f.workers = n }
}

// WithIDGenerator replaces the UUID run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(f *Factory) { f.newID = fn }
}

// NewFactory returns a factory for def. Every session shares deps.
func NewFactory(def pipeline.Definition, deps pipeline.Deps, opts ...Option) *Factory {
	f := &Factory{
		def:     def,
		deps:    deps,
		workers: 1,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Session is one run of the pipeline.
type Session struct {
	ID      string
	Trigger Trigger

	rc   *runctx.Context
	exec *executor.Executor
}

// NewSession builds the graph for a new run. Each session gets a fresh run
// context, so no value leaks between runs.
func (f *Factory) NewSession(ctx context.Context, trig Trigger) (*Session, error) {
	id := f.newID()
	ctx = ctxlog.With(ctx, "run_id", id)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Creating session.", "pipeline", f.def.ID, "source", trig.Source, "trigger_time", trig.Time)

	g, err := pipeline.Build(ctx, f.def, trig.Conf, f.deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build task graph: %w", err)
	}

	rc := runctx.New(id)
	return &Session{
		ID:      id,
		Trigger: trig,
		rc:      rc,
		exec:    executor.New(g, rc, executor.WithWorkers(f.workers)),
	}, nil
}

// Context returns the session's run context.
func (s *Session) Context() *runctx.Context {
	return s.rc
}

// Run executes the graph and logs one summary line per node.
func (s *Session) Run(ctx context.Context) (*executor.Result, error) {
	result, err := s.exec.Execute(ctx)
	if result == nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx).With("run_id", s.ID)
	for _, n := range result.Nodes {
		attrs := []any{"node_id", n.ID, "status", n.Status.String()}
		if !n.Started.IsZero() && !n.Finished.IsZero() {
			attrs = append(attrs, "duration", n.Finished.Sub(n.Started).String())
		}
		if n.Err != nil {
			attrs = append(attrs, "error_kind", executor.Kind(n.Err), "error", n.Err.Error())
		}
		logger.Info("Node summary.", attrs...)
	}
	logger.Info("Run summary.", "status", result.Status.String(), "context", s.rc.Snapshot())
	return result, err
}

// Run creates a session for trig and executes it.
func (f *Factory) Run(ctx context.Context, trig Trigger) (*executor.Result, error) {
	s, err := f.NewSession(ctx, trig)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
