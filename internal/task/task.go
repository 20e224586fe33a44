// Package task defines the unit of work executed by a graph node.
package task

import (
	"context"

	"github.com/specialistvlad/gridetl/internal/runctx"
)

// Task is the handler a node runs. It reads its inputs from the run context,
// performs its effect and may push outputs back. A non-nil error fails the
// node and, with it, the run.
type Task interface {
	Run(ctx context.Context, rc *runctx.Context) error
}

// Func adapts a plain function to the Task interface.
type Func func(ctx context.Context, rc *runctx.Context) error

// Run implements Task.
func (f Func) Run(ctx context.Context, rc *runctx.Context) error {
	return f(ctx, rc)
}

// Producer is implemented by tasks that push context keys.
type Producer interface {
	Produces() []string
}

// Consumer is implemented by tasks that pull context keys.
type Consumer interface {
	Consumes() []string
}

// ProducedKeys returns the keys t declares it pushes, if any.
func ProducedKeys(t Task) []string {
	if p, ok := t.(Producer); ok {
		return p.Produces()
	}
	return nil
}

// ConsumedKeys returns the keys t declares it pulls, if any.
func ConsumedKeys(t Task) []string {
	if c, ok := t.(Consumer); ok {
		return c.Consumes()
	}
	return nil
}
