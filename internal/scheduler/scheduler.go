package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/lock"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"github.com/smallbiznis/stockroom/internal/stock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobStockReconcile = "stock_reconcile"

	reconcileLockKey = "stockroom:lock:stock_reconcile"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

// Reconciler is the part of stock.Reconciler the scheduler drives.
type Reconciler interface {
	Run(ctx context.Context) (stock.Report, error)
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Reconciler Reconciler
	Locker     lock.Locker
	Inventory  *config.InventoryConfigHolder
	Metrics    *metrics.JobMetrics `optional:"true"`
	Config     Config              `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	reconciler Reconciler
	locker     lock.Locker
	inventory  *config.InventoryConfigHolder
	metrics    *metrics.JobMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Reconciler == nil || p.Locker == nil || p.Inventory == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		reconciler: p.Reconciler,
		locker:     p.Locker,
		inventory:  p.Inventory,
		metrics:    p.Metrics,
	}, nil
}

// RunForever reconciles on the configured interval until ctx is done. The
// interval is re-read every cycle so a config reload takes effect without a
// restart; zero disables the job.
func (s *Scheduler) RunForever(ctx context.Context) {
	for {
		wait := s.inventory.Get().ReconcileInterval
		if wait > 0 {
			if err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Warn("scheduler run failed", zap.Error(err))
			}
		} else {
			wait = s.cfg.IdlePoll
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunOnce runs the reconcile job if no other instance holds its lock.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.runJob(ctx, JobStockReconcile, reconcileLockKey, func(ctx context.Context) error {
		report, err := s.reconciler.Run(ctx)
		if err != nil {
			return err
		}
		s.metrics.AddFixed(JobStockReconcile, "product", report.ProductsFixed)
		s.metrics.AddFixed(JobStockReconcile, "category", report.CategoriesFixed)
		s.log.Info("stock reconciled",
			zap.Int("products_checked", report.ProductsChecked),
			zap.Int("products_fixed", report.ProductsFixed),
			zap.Int("categories_checked", report.CategoriesChecked),
			zap.Int("categories_fixed", report.CategoriesFixed),
		)
		return nil
	})
}

func (s *Scheduler) runJob(parent context.Context, name, lockKey string, fn func(ctx context.Context) error) error {
	log := s.log.With(zap.String("job", name))

	ttl := s.inventory.Get().ReconcileLockTTL
	token, ok, err := s.locker.TryLock(parent, lockKey, ttl)
	if err != nil {
		s.metrics.ObserveRun(name, metrics.JobOutcomeError, 0)
		return err
	}
	if !ok {
		log.Debug("job skipped, lock held elsewhere")
		s.metrics.ObserveRun(name, metrics.JobOutcomeSkipped, 0)
		return nil
	}
	defer func() {
		if err := s.locker.Release(context.Background(), lockKey, token); err != nil {
			log.Warn("lock release failed", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	start := s.clock.Now()
	err = fn(ctx)
	elapsed := s.clock.Now().Sub(start)
	if err != nil {
		s.metrics.ObserveRun(name, metrics.JobOutcomeError, elapsed)
		return err
	}
	s.metrics.ObserveRun(name, metrics.JobOutcomeSuccess, elapsed)
	return nil
}
