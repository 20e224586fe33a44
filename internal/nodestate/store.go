// Package nodestate holds the mutable execution state of the nodes of one run:
// status, failure cause, and timings.
//
// It is created fresh for each run and discarded with it. Status changes go
// through Transition, which enforces the node state machine
// (Pending → Running → Succeeded | Failed, Pending → Skipped).
package nodestate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/node"
)

// Store is an in-memory state store backed by sync.Map. Each node's state is
// independent, so concurrent branches update different keys without
// contending on a global lock.
type Store struct {
	now      func() time.Time
	states   sync.Map // Key: node ID, Value: node.Status
	errors   sync.Map // Key: node ID, Value: error
	started  sync.Map // Key: node ID, Value: time.Time
	finished sync.Map // Key: node ID, Value: time.Time
}

// New creates a new, empty state store.
func New() *Store {
	return &Store{now: time.Now}
}

// Status retrieves the execution status of a node. Nodes without a recorded
// status are Pending.
func (s *Store) Status(id string) node.Status {
	status, ok := s.states.Load(id)
	if !ok {
		return node.StatusPending
	}
	return status.(node.Status)
}

// Transition moves a node to a new status. It fails if the state machine does
// not allow the move from the node's current status.
func (s *Store) Transition(ctx context.Context, id string, to node.Status) error {
	for {
		from := s.Status(id)
		if !node.CanTransition(from, to) {
			return fmt.Errorf("node '%s': invalid transition %s -> %s", id, from, to)
		}

		var swapped bool
		if _, loaded := s.states.Load(id); !loaded {
			_, loaded = s.states.LoadOrStore(id, to)
			swapped = !loaded
		} else {
			swapped = s.states.CompareAndSwap(id, from, to)
		}
		if !swapped {
			continue // lost a race, re-evaluate against the new status
		}

		switch to {
		case node.StatusRunning:
			s.started.Store(id, s.now())
		case node.StatusSucceeded, node.StatusFailed, node.StatusSkipped:
			s.finished.Store(id, s.now())
		}
		ctxlog.FromContext(ctx).Debug("Node status changed.", "node_id", id, "from", from.String(), "to", to.String())
		return nil
	}
}

// SetError records the failure cause of a node.
func (s *Store) SetError(id string, nodeErr error) {
	s.errors.Store(id, nodeErr)
}

// Error retrieves the recorded failure cause of a node, or nil.
func (s *Store) Error(id string) error {
	err, ok := s.errors.Load(id)
	if !ok {
		return nil
	}
	return err.(error)
}

// Timing returns when the node started and finished. Zero values mean the
// event has not happened.
func (s *Store) Timing(id string) (started, finished time.Time) {
	if v, ok := s.started.Load(id); ok {
		started = v.(time.Time)
	}
	if v, ok := s.finished.Load(id); ok {
		finished = v.(time.Time)
	}
	return started, finished
}
