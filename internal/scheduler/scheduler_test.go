package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/lock"
	"github.com/smallbiznis/stockroom/internal/stock"
	"go.uber.org/zap/zaptest"
)

type fakeReconciler struct {
	runs   atomic.Int32
	report stock.Report
	err    error
}

func (f *fakeReconciler) Run(context.Context) (stock.Report, error) {
	f.runs.Add(1)
	return f.report, f.err
}

func newTestScheduler(t *testing.T, r Reconciler, locker lock.Locker, interval time.Duration) *Scheduler {
	t.Helper()

	inv := config.DefaultInventoryConfig()
	inv.ReconcileInterval = interval
	sched, err := New(Params{
		Log:        zaptest.NewLogger(t),
		Clock:      clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		Reconciler: r,
		Locker:     locker,
		Inventory:  config.NewStaticInventoryConfigHolder(inv),
		Config:     Config{IdlePoll: 10 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched
}

func TestRunOnceRunsReconciler(t *testing.T) {
	r := &fakeReconciler{report: stock.Report{ProductsChecked: 2, ProductsFixed: 1}}
	sched := newTestScheduler(t, r, lock.NewLocal(), time.Minute)

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got := r.runs.Load(); got != 1 {
		t.Fatalf("expected 1 run, got %d", got)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	locker := lock.NewLocal()
	if _, ok, _ := locker.TryLock(context.Background(), reconcileLockKey, time.Minute); !ok {
		t.Fatalf("expected to take the lock")
	}

	r := &fakeReconciler{}
	sched := newTestScheduler(t, r, locker, time.Minute)

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got := r.runs.Load(); got != 0 {
		t.Fatalf("expected reconciler to be skipped, got %d runs", got)
	}
}

func TestRunOnceReleasesLockOnFailure(t *testing.T) {
	locker := lock.NewLocal()
	r := &fakeReconciler{err: errors.New("db down")}
	sched := newTestScheduler(t, r, locker, time.Minute)

	if err := sched.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok, _ := locker.TryLock(context.Background(), reconcileLockKey, time.Minute); !ok {
		t.Fatalf("expected lock to be released after a failed run")
	}
}

func TestRunForeverIdlesWhenDisabled(t *testing.T) {
	r := &fakeReconciler{}
	sched := newTestScheduler(t, r, lock.NewLocal(), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	sched.RunForever(ctx)

	if got := r.runs.Load(); got != 0 {
		t.Fatalf("expected no runs while disabled, got %d", got)
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	if _, err := New(Params{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
