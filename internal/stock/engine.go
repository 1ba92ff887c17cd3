package stock

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/smallbiznis/stockroom/internal/category/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	movementdomain "github.com/smallbiznis/stockroom/internal/movement/domain"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Change is a batch of adjustments caused by a single variant mutation.
type Change struct {
	Reason      string
	VariantID   *int64
	Adjustments []Adjustment
}

type EngineParams struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Products   productdomain.Repository
	Categories categorydomain.Repository
	Movements  movementdomain.Repository
	Metrics    *metrics.Metrics `optional:"true"`
}

// Engine keeps Product.total and Category.stock in step with variant
// quantities. Every method runs on the caller's transaction and never commits.
type Engine struct {
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	products   productdomain.Repository
	categories categorydomain.Repository
	movements  movementdomain.Repository
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

func NewEngine(p EngineParams) *Engine {
	return &Engine{
		log:        p.Log.Named("stock.engine"),
		clock:      p.Clock,
		genID:      p.GenID,
		products:   p.Products,
		categories: p.Categories,
		movements:  p.Movements,
		metrics:    p.Metrics,
		tracer:     otel.Tracer("stockroom/stock"),
	}
}

// Apply adds every adjustment to its product's total and to that product's
// category stock, journaling each one.
func (e *Engine) Apply(ctx context.Context, tx *gorm.DB, change Change) (err error) {
	if len(change.Adjustments) == 0 {
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "stock.Engine.Apply", trace.WithAttributes(
		attribute.String("stock.reason", change.Reason),
		attribute.Int("stock.adjustments", len(change.Adjustments)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "apply failed")
		}
		span.End()
	}()

	now := e.clock.Now()
	for _, adj := range change.Adjustments {
		if adj.Delta == 0 {
			continue
		}

		product, err := e.products.FindByID(ctx, tx, adj.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return productdomain.ErrNotFound
		}

		if err := e.products.AdjustTotal(ctx, tx, product.ID, adj.Delta, now); err != nil {
			return fmt.Errorf("adjust product %d total: %w", product.ID, err)
		}
		if err := e.categories.AdjustStock(ctx, tx, product.CategoryID, adj.Delta, now); err != nil {
			return fmt.Errorf("adjust category %d stock: %w", product.CategoryID, err)
		}
		if err := e.journal(ctx, tx, product.ID, product.CategoryID, change.VariantID, adj.Delta, change.Reason); err != nil {
			return err
		}
	}

	for _, adj := range change.Adjustments {
		e.metrics.RecordStockAdjustment(ctx, change.Reason, adj.Delta)
	}
	return nil
}

// MoveProduct transfers product's current total from its category to
// toCategoryID. The product row itself is not modified.
func (e *Engine) MoveProduct(ctx context.Context, tx *gorm.DB, product *productdomain.Product, toCategoryID int64) error {
	if product == nil {
		return productdomain.ErrNotFound
	}
	if product.CategoryID == toCategoryID || product.Total == 0 {
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "stock.Engine.MoveProduct")
	defer span.End()

	now := e.clock.Now()
	if err := e.categories.AdjustStock(ctx, tx, product.CategoryID, -product.Total, now); err != nil {
		return fmt.Errorf("adjust category %d stock: %w", product.CategoryID, err)
	}
	if err := e.categories.AdjustStock(ctx, tx, toCategoryID, product.Total, now); err != nil {
		return fmt.Errorf("adjust category %d stock: %w", toCategoryID, err)
	}
	if err := e.journal(ctx, tx, product.ID, product.CategoryID, nil, -product.Total, movementdomain.ReasonProductMoved); err != nil {
		return err
	}
	if err := e.journal(ctx, tx, product.ID, toCategoryID, nil, product.Total, movementdomain.ReasonProductMoved); err != nil {
		return err
	}

	e.metrics.RecordStockAdjustment(ctx, movementdomain.ReasonProductMoved, product.Total)
	return nil
}

// RemoveProduct subtracts a product's total from its category ahead of the
// product being deleted.
func (e *Engine) RemoveProduct(ctx context.Context, tx *gorm.DB, product *productdomain.Product) error {
	if product == nil {
		return productdomain.ErrNotFound
	}
	if product.Total == 0 {
		return nil
	}

	if err := e.categories.AdjustStock(ctx, tx, product.CategoryID, -product.Total, e.clock.Now()); err != nil {
		return fmt.Errorf("adjust category %d stock: %w", product.CategoryID, err)
	}
	if err := e.journal(ctx, tx, product.ID, product.CategoryID, nil, -product.Total, movementdomain.ReasonProductDeleted); err != nil {
		return err
	}

	e.metrics.RecordStockAdjustment(ctx, movementdomain.ReasonProductDeleted, -product.Total)
	return nil
}

func (e *Engine) journal(ctx context.Context, tx *gorm.DB, productID, categoryID int64, variantID *int64, delta int64, reason string) error {
	m := &movementdomain.Movement{
		ID:         e.genID.Generate().Int64(),
		ProductID:  productID,
		CategoryID: categoryID,
		VariantID:  variantID,
		Delta:      delta,
		Reason:     reason,
		CreatedAt:  e.clock.Now(),
	}
	if err := e.movements.Create(ctx, tx, m); err != nil {
		return fmt.Errorf("record stock movement: %w", err)
	}
	return nil
}
