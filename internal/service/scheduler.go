package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
)

// SchedulerState is the lifecycle state of a Scheduler.
type SchedulerState int

const (
	StateIdle SchedulerState = iota
	StateScheduled
	StateStopped
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var (
	ErrSchedulerRunning    = errors.New("scheduler already running")
	ErrSchedulerNotRunning = errors.New("scheduler not running")
	ErrInvalidInterval     = errors.New("log interval must be positive")
)

// TickFunc does the work of one tick. now is the ticker's fire time.
type TickFunc func(ctx context.Context, now time.Time) error

// Scheduler fires TickFunc on a single ticker owned by one loop goroutine.
// Ticks never overlap: the next fire is only read after the previous tick
// returned, and a reschedule is applied between ticks.
type Scheduler struct {
	tick TickFunc
	log  *logger.Logger
	base time.Duration // length of one second, shortened in tests

	mu      sync.Mutex
	state   SchedulerState
	period  time.Duration
	resched chan time.Duration
	cancel  context.CancelFunc
	done    chan struct{}
}

type SchedulerOption func(*Scheduler)

// WithTimeBase scales the length of one second.
func WithTimeBase(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.base = d }
}

func NewScheduler(tick TickFunc, log *logger.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		tick: tick,
		log:  log.Component("scheduler"),
		base: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PeriodFor converts an interval in unit into a wall-clock period.
func (s *Scheduler) PeriodFor(interval int, unit models.FrequencyUnit) (time.Duration, error) {
	if interval <= 0 {
		return 0, ErrInvalidInterval
	}
	if !unit.Valid() {
		return 0, ErrInvalidFrequencyUnit
	}
	return time.Duration(float64(interval) * unit.TimeFactor() * float64(s.base)), nil
}

// Start launches the loop. The first tick fires one period from now.
func (s *Scheduler) Start(ctx context.Context, interval int, unit models.FrequencyUnit) error {
	period, err := s.PeriodFor(interval, unit)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateScheduled {
		return ErrSchedulerRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.resched = make(chan time.Duration)
	s.period = period
	s.state = StateScheduled

	go s.run(loopCtx, period, s.resched, s.done)

	s.log.Infow("scheduler_started", "period", period)
	return nil
}

// Reschedule switches to a new period. A tick in progress finishes first and
// the next fire happens one new period after the switch.
func (s *Scheduler) Reschedule(interval int, unit models.FrequencyUnit) error {
	period, err := s.PeriodFor(interval, unit)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state != StateScheduled {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	resched, done := s.resched, s.done
	s.period = period
	s.mu.Unlock()

	select {
	case resched <- period:
		s.log.Infow("scheduler_rescheduled", "period", period)
		return nil
	case <-done:
		return ErrSchedulerNotRunning
	}
}

// Stop cancels the loop and waits for an in-flight tick to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != StateScheduled {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.state = StateStopped
	s.mu.Unlock()

	cancel()
	<-done
	s.log.Infow("scheduler_stopped")
}

// State reports the current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Period reports the active period, zero before Start.
func (s *Scheduler) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

func (s *Scheduler) run(ctx context.Context, period time.Duration, resched <-chan time.Duration, done chan<- struct{}) {
	defer close(done)

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case p := <-resched:
			t.Reset(p)
		case now := <-t.C:
			if ctx.Err() != nil {
				return
			}
			if err := s.tick(ctx, now); err != nil {
				s.log.Warnw("tick_failed", "err", err)
			}
		}
	}
}
