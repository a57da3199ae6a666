package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartStop_Idempotent(t *testing.T) {
	s := New(func(context.Context) error { return nil }, time.Hour)

	if s.IsRunning() {
		t.Fatal("new scheduler should be stopped")
	}

	s.Start()
	s.Start() // second start is a no-op
	if !s.IsRunning() {
		t.Fatal("scheduler should be running after Start")
	}

	s.Stop()
	s.Stop() // second stop is a no-op
	if s.IsRunning() {
		t.Fatal("scheduler should be stopped after Stop")
	}
}

func TestTicksInvokeCallback(t *testing.T) {
	var calls atomic.Int32
	s := New(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 10*time.Millisecond)

	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() < 2 {
		t.Fatalf("expected at least 2 ticks, got %d", calls.Load())
	}
}

func TestCallbackErrorDoesNotStopTimer(t *testing.T) {
	var calls atomic.Int32
	s := New(func(context.Context) error {
		calls.Add(1)
		return errors.New("sync failed")
	}, 10*time.Millisecond)

	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("timer should keep ticking past errors, got %d calls", calls.Load())
	}
	if !s.IsRunning() {
		t.Error("scheduler should still be running")
	}
}

func TestStop_PreventsFurtherTicks(t *testing.T) {
	var calls atomic.Int32
	s := New(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 10*time.Millisecond)

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != settled {
		t.Errorf("ticks continued after Stop: %d -> %d", settled, calls.Load())
	}
}

func TestRestartAfterStop(t *testing.T) {
	var calls atomic.Int32
	s := New(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 10*time.Millisecond)

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	s.Start()
	if !s.IsRunning() {
		t.Fatal("scheduler should run again after restart")
	}
	s.Stop()
}

func TestNewCron_RejectsBadExpression(t *testing.T) {
	if _, err := NewCron(func(context.Context) error { return nil }, "not a cron"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewCron_Valid(t *testing.T) {
	s, err := NewCron(func(context.Context) error { return nil }, "*/5 * * * *")
	if err != nil {
		t.Fatalf("NewCron: %v", err)
	}
	if d := s.nextDelay(); d <= 0 || d > 5*time.Minute {
		t.Errorf("nextDelay = %v, want within (0, 5m]", d)
	}
}
