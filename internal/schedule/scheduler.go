package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
)

// RunFunc starts one run. tickAt is the time the tick fired.
type RunFunc func(ctx context.Context, tickAt time.Time) error

// cronParser supports standard 5-field cron and descriptors like "@daily".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	return cronParser.Parse(expr)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithStartDate ignores ticks before t.
func WithStartDate(t time.Time) Option {
	return func(s *Scheduler) { s.startDate = t }
}

// WithLocation evaluates the schedule in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler triggers a RunFunc on a cron schedule.
type Scheduler struct {
	expr      string
	run       RunFunc
	startDate time.Time
	loc       *time.Location
	now       func() time.Time

	mu   sync.Mutex
	cron *cronlib.Cron
	ctx  context.Context
}

// New validates expr and returns a stopped scheduler.
func New(expr string, run RunFunc, opts ...Option) (*Scheduler, error) {
	if run == nil {
		return nil, errors.New("schedule run func is required")
	}
	if _, err := ParseSchedule(expr); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	s := &Scheduler{
		expr: expr,
		run:  run,
		loc:  time.Local,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next returns the first tick after t that is not before the start date.
func (s *Scheduler) Next(t time.Time) time.Time {
	sched, _ := ParseSchedule(s.expr)
	next := sched.Next(t.In(s.loc))
	for !s.startDate.IsZero() && next.Before(s.startDate) {
		next = sched.Next(next)
	}
	return next
}

// Start begins firing ticks. ctx is handed to every run and carries the logger.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	logger := cronLogger{logger: ctxlog.FromContext(ctx)}
	c := cronlib.New(
		cronlib.WithParser(cronParser),
		cronlib.WithLocation(s.loc),
		cronlib.WithLogger(logger),
		cronlib.WithChain(cronlib.Recover(logger), cronlib.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(s.expr, func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.expr, err)
	}

	s.cron = c
	s.ctx = ctx
	c.Start()
	ctxlog.FromContext(ctx).Info("⏰ Scheduler started.", "schedule", s.expr, "next", s.Next(s.now()))
	return nil
}

// Stop stops firing ticks and waits for a running tick to finish, or for ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	done := c.Stop()
	select {
	case <-done.Done():
		ctxlog.FromContext(ctx).Info("Scheduler stopped.")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// Tick performs one scheduled firing. It is called by the cron loop and
// exposed for tests.
func (s *Scheduler) Tick(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	tickAt := s.now()

	if !s.startDate.IsZero() && tickAt.Before(s.startDate) {
		logger.Info("Tick before start date ignored.", "tick", tickAt, "start_date", s.startDate)
		return
	}

	logger.Info("⏰ Scheduled run triggered.", "tick", tickAt)
	if err := s.run(ctx, tickAt); err != nil {
		logger.Error("Scheduled run failed.", "error", err)
	}
}
