// Package executor runs a task graph to completion or to its first failure.
//
// Nodes run in waves: each wave is the set of nodes the scheduler reports as
// ready. With one worker (the default) the nodes of a wave run in order, one
// at a time. With more workers independent nodes of a wave run concurrently,
// and a fan-in node waits for the next wave. Once any node fails no further
// node is started, every node still Pending is marked Skipped, and the run is
// Failed. Tasks that are already running are allowed to finish. There are no
// retries.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/graph"
	"github.com/specialistvlad/gridetl/internal/node"
	"github.com/specialistvlad/gridetl/internal/runctx"
	"github.com/specialistvlad/gridetl/internal/scheduler"
)

const tracerName = "github.com/specialistvlad/gridetl/internal/executor"

// Executor drives one graph against one run context.
type Executor struct {
	g       graph.Graph
	sched   scheduler.Scheduler
	rc      *runctx.Context
	workers int
	tracer  trace.Tracer

	mu      sync.Mutex
	failure *NodeError
}

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers sets how many ready nodes may run at the same time.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithTracer overrides the tracer used for per-node spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) { e.tracer = t }
}

// New creates an executor for g. Tasks read and write rc.
func New(g graph.Graph, rc *runctx.Context, opts ...Option) *Executor {
	e := &Executor{
		g:       g,
		sched:   scheduler.New(g),
		rc:      rc,
		workers: 1,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the graph. It always returns a Result; the error is the
// result's terminal *NodeError when the run failed.
func (e *Executor) Execute(ctx context.Context) (*Result, error) {
	ctx = ctxlog.With(ctx, "run_id", e.rc.RunID())
	logger := ctxlog.FromContext(ctx)
	ctx, span := e.tracer.Start(ctx, "run", trace.WithAttributes(attribute.String("run.id", e.rc.RunID())))
	defer span.End()

	logger.Info("🚀 Starting run.", "workers", e.workers)
	for {
		ready, err := e.sched.Ready(ctx)
		if err != nil {
			return nil, fmt.Errorf("scheduling failed: %w", err)
		}
		if len(ready) == 0 {
			break
		}
		e.runWave(ctx, ready)
		if e.failed() != nil {
			break
		}
	}

	if pending := e.sched.Pending(ctx); len(pending) > 0 {
		for _, n := range pending {
			logger.Warn("Skipping node due to run failure.", "node_id", n.ID)
			if err := e.g.MarkSkipped(ctx, n.ID); err != nil {
				return nil, err
			}
		}
		if e.failed() == nil {
			// Unreachable for an acyclic graph; kept so a broken graph cannot report success.
			e.recordFailure(&NodeError{NodeID: pending[0].ID, Err: fmt.Errorf("node '%s' was never ready", pending[0].ID)})
		}
	}

	result := e.result(ctx)
	if result.Err != nil {
		span.SetStatus(codes.Error, result.Err.Error())
		logger.Error("❌ Run failed.", "node_id", result.FailedNode, "error_kind", result.ErrorKind(), "error", result.Err)
		return result, result.Err
	}
	logger.Info("🏁 Run finished.")
	return result, nil
}

// runWave executes the nodes of one wave.
func (e *Executor) runWave(ctx context.Context, ready []*node.Node) {
	if e.workers == 1 || len(ready) == 1 {
		for _, n := range ready {
			if e.failed() != nil {
				return
			}
			e.runNode(ctx, n)
		}
		return
	}

	var eg errgroup.Group
	eg.SetLimit(e.workers)
	for _, n := range ready {
		n := n
		eg.Go(func() error {
			if e.failed() != nil {
				return nil
			}
			e.runNode(ctx, n)
			return nil
		})
	}
	_ = eg.Wait()
}

// runNode executes a single node and records its outcome.
func (e *Executor) runNode(ctx context.Context, n *node.Node) {
	ctx = ctxlog.With(ctx, "node_id", n.ID)
	logger := ctxlog.FromContext(ctx)
	ctx, span := e.tracer.Start(ctx, "task "+n.ID, trace.WithAttributes(
		attribute.String("run.id", e.rc.RunID()),
		attribute.String("node.id", n.ID),
	))
	defer span.End()

	if err := e.g.MarkRunning(ctx, n.ID); err != nil {
		e.recordFailure(&NodeError{NodeID: n.ID, Err: err})
		return
	}

	logger.Info("▶️ Starting task")
	start := time.Now()
	err := e.call(ctx, n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("Task failed.", "error_kind", Kind(err), "error", err)
		if markErr := e.g.MarkFailed(ctx, n.ID, err); markErr != nil {
			logger.Error("Failed to record node failure.", "error", markErr)
		}
		e.recordFailure(&NodeError{NodeID: n.ID, Err: err})
		return
	}

	if err := e.g.MarkSucceeded(ctx, n.ID); err != nil {
		e.recordFailure(&NodeError{NodeID: n.ID, Err: err})
		return
	}
	logger.Info("✅ Finished task", "duration", time.Since(start).String())
}

// call invokes the node's task, converting a panic into an error. A node
// without a task is a pure synchronization point and always succeeds.
func (e *Executor) call(ctx context.Context, n *node.Node) (err error) {
	if n.Task == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return n.Task.Run(ctx, e.rc)
}

func (e *Executor) recordFailure(nodeErr *NodeError) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failure == nil {
		e.failure = nodeErr
	}
}

func (e *Executor) failed() *NodeError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failure
}

func (e *Executor) result(ctx context.Context) *Result {
	r := &Result{RunID: e.rc.RunID(), Status: RunSucceeded}
	for _, n := range e.g.AllNodes(ctx) {
		started, finished := e.g.NodeTiming(ctx, n.ID)
		r.Nodes = append(r.Nodes, NodeResult{
			ID:       n.ID,
			Status:   e.g.NodeStatus(ctx, n.ID),
			Err:      e.g.NodeError(ctx, n.ID),
			Started:  started,
			Finished: finished,
		})
	}
	if f := e.failed(); f != nil {
		r.Status = RunFailed
		r.FailedNode = f.NodeID
		r.Err = f
	}
	return r
}
