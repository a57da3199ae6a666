// Package scheduler drives the sync engine on a recurring timer. The
// scheduler has exactly two states, stopped and running; callback failures
// are logged and never stop the timer.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard 5-field cron expressions (minute, hour, dom,
// month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler invokes a callback once per interval while running. Start and
// Stop are idempotent; stopping only prevents the next tick, it does not
// cancel an in-flight callback.
type Scheduler struct {
	fn       func(context.Context) error
	interval time.Duration
	schedule cron.Schedule // set when built from a cron expression

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a fixed-interval scheduler.
func New(fn func(context.Context) error, interval time.Duration) *Scheduler {
	return &Scheduler{fn: fn, interval: interval}
}

// NewCron builds a scheduler from a 5-field cron expression.
func NewCron(fn func(context.Context) error, expr string) (*Scheduler, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse cron %q: %w", expr, err)
	}
	return &Scheduler{fn: fn, schedule: schedule}, nil
}

// Start launches the timer loop. Calling Start while running has no effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
}

// Stop cancels the recurring timer and waits for the loop goroutine to exit.
// Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// IsRunning reports whether the timer loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		timer := time.NewTimer(s.nextDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := s.fn(ctx); err != nil {
			log.Printf("scheduler: sync error: %v", err)
		}
	}
}

// nextDelay returns the wait before the next tick.
func (s *Scheduler) nextDelay() time.Duration {
	if s.schedule != nil {
		d := time.Until(s.schedule.Next(time.Now()))
		if d < 0 {
			d = 0
		}
		return d
	}
	return s.interval
}
