package stock

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/cache"
	categorydomain "github.com/smallbiznis/stockroom/internal/category/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	movementdomain "github.com/smallbiznis/stockroom/internal/movement/domain"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Report summarises one reconciliation pass.
type Report struct {
	ProductsChecked   int     `json:"products_checked"`
	ProductsFixed     int     `json:"products_fixed"`
	CategoriesChecked int     `json:"categories_checked"`
	CategoriesFixed   int     `json:"categories_fixed"`
	FixedProductIDs   []int64 `json:"-"`
}

type ReconcilerParams struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Engine     *Engine
	Products   productdomain.Repository
	Categories categorydomain.Repository
	Variants   variantdomain.Repository
	Metrics    *metrics.Metrics   `optional:"true"`
	Cache      cache.ProductCache `optional:"true"`
}

// Reconciler recomputes every aggregate from the variant rows and repairs
// drift. It is the recovery path for writes made outside the orchestrators.
type Reconciler struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	engine     *Engine
	products   productdomain.Repository
	categories categorydomain.Repository
	variants   variantdomain.Repository
	metrics    *metrics.Metrics
	cache      cache.ProductCache
}

func NewReconciler(p ReconcilerParams) *Reconciler {
	return &Reconciler{
		db:         p.DB,
		log:        p.Log.Named("stock.reconciler"),
		clock:      p.Clock,
		engine:     p.Engine,
		products:   p.Products,
		categories: p.Categories,
		variants:   p.Variants,
		metrics:    p.Metrics,
		cache:      p.Cache,
	}
}

func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	ctx, span := otel.Tracer("stockroom/stock").Start(ctx, "stock.Reconciler.Run")
	defer span.End()

	var report Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report = Report{}
		now := r.clock.Now()

		sums, err := r.variants.SumQuantityByProduct(ctx, tx)
		if err != nil {
			return err
		}
		products, err := r.products.ListAll(ctx, tx)
		if err != nil {
			return err
		}

		for _, p := range products {
			report.ProductsChecked++
			want := sums[p.ID]
			if p.Total == want {
				continue
			}
			if err := r.products.SetTotal(ctx, tx, p.ID, want, now); err != nil {
				return err
			}
			if err := r.engine.journal(ctx, tx, p.ID, p.CategoryID, nil, want-p.Total, movementdomain.ReasonReconcile); err != nil {
				return err
			}
			report.ProductsFixed++
			report.FixedProductIDs = append(report.FixedProductIDs, p.ID)
			r.log.Warn("product total drift repaired",
				zap.Int64("product_id", p.ID),
				zap.Int64("stored", p.Total),
				zap.Int64("expected", want),
			)
		}

		totals, err := r.products.SumTotalByCategory(ctx, tx)
		if err != nil {
			return err
		}
		categories, err := r.categories.ListAll(ctx, tx)
		if err != nil {
			return err
		}

		for _, c := range categories {
			report.CategoriesChecked++
			want := totals[c.ID]
			if c.Stock == want {
				continue
			}
			if err := r.categories.SetStock(ctx, tx, c.ID, want, now); err != nil {
				return err
			}
			report.CategoriesFixed++
			r.log.Warn("category stock drift repaired",
				zap.Int64("category_id", c.ID),
				zap.Int64("stored", c.Stock),
				zap.Int64("expected", want),
			)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconcile failed")
		return Report{}, err
	}

	span.SetAttributes(
		attribute.Int("stock.products_fixed", report.ProductsFixed),
		attribute.Int("stock.categories_fixed", report.CategoriesFixed),
	)
	if r.cache != nil && len(report.FixedProductIDs) > 0 {
		if err := r.cache.Invalidate(ctx, report.FixedProductIDs...); err != nil {
			r.log.Warn("product cache invalidation failed", zap.Error(err))
		}
	}
	r.metrics.RecordReconcileFix(ctx, "product", report.ProductsFixed)
	r.metrics.RecordReconcileFix(ctx, "category", report.CategoriesFixed)
	return report, nil
}
