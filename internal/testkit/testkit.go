// Package testkit wires an in-memory sqlite database with the full schema and
// the shared collaborators used by service tests.
package testkit

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	categorydomain "github.com/smallbiznis/stockroom/internal/category/domain"
	categoryrepo "github.com/smallbiznis/stockroom/internal/category/repository"
	"github.com/smallbiznis/stockroom/internal/clock"
	colordomain "github.com/smallbiznis/stockroom/internal/color/domain"
	colorrepo "github.com/smallbiznis/stockroom/internal/color/repository"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/migration"
	movementdomain "github.com/smallbiznis/stockroom/internal/movement/domain"
	movementrepo "github.com/smallbiznis/stockroom/internal/movement/repository"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	productrepo "github.com/smallbiznis/stockroom/internal/product/repository"
	sizedomain "github.com/smallbiznis/stockroom/internal/size/domain"
	sizerepo "github.com/smallbiznis/stockroom/internal/size/repository"
	"github.com/smallbiznis/stockroom/internal/stock"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	variantrepo "github.com/smallbiznis/stockroom/internal/variant/repository"
	"github.com/smallbiznis/stockroom/pkg/db"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type Env struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Node      *snowflake.Node
	Clock     *clock.FakeClock
	Inventory *config.InventoryConfigHolder

	Categories categorydomain.Repository
	Products   productdomain.Repository
	Colors     colordomain.Repository
	Sizes      sizedomain.Repository
	Variants   variantdomain.Repository
	Movements  movementdomain.Repository

	Engine     *stock.Engine
	Reconciler *stock.Reconciler
}

func New(t *testing.T) *Env {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	env := &Env{
		DB:         conn,
		Log:        zaptest.NewLogger(t),
		Node:       node,
		Clock:      clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Inventory:  config.NewStaticInventoryConfigHolder(config.DefaultInventoryConfig()),
		Categories: categoryrepo.Provide(),
		Products:   productrepo.Provide(),
		Colors:     colorrepo.Provide(),
		Sizes:      sizerepo.Provide(),
		Variants:   variantrepo.Provide(),
		Movements:  movementrepo.Provide(),
	}
	env.Engine = stock.NewEngine(stock.EngineParams{
		Log:        env.Log,
		Clock:      env.Clock,
		GenID:      env.Node,
		Products:   env.Products,
		Categories: env.Categories,
		Movements:  env.Movements,
	})
	env.Reconciler = stock.NewReconciler(stock.ReconcilerParams{
		DB:         env.DB,
		Log:        env.Log,
		Clock:      env.Clock,
		Engine:     env.Engine,
		Products:   env.Products,
		Categories: env.Categories,
		Variants:   env.Variants,
	})
	return env
}

func (e *Env) CreateCategory(t *testing.T, name string) *categorydomain.Category {
	t.Helper()
	now := e.Clock.Now()
	c := &categorydomain.Category{ID: e.Node.Generate().Int64(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := e.DB.Create(c).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func (e *Env) CreateProduct(t *testing.T, categoryID int64, name string) *productdomain.Product {
	t.Helper()
	now := e.Clock.Now()
	p := &productdomain.Product{
		ID:         e.Node.Generate().Int64(),
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.RequireFromString("19.90"),
		Enable:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.DB.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (e *Env) CreateColor(t *testing.T, name, code string) *colordomain.Color {
	t.Helper()
	now := e.Clock.Now()
	c := &colordomain.Color{ID: e.Node.Generate().Int64(), Name: name, Code: code, CreatedAt: now, UpdatedAt: now}
	if err := e.DB.Create(c).Error; err != nil {
		t.Fatalf("create color: %v", err)
	}
	return c
}

func (e *Env) CreateSize(t *testing.T, name string) *sizedomain.Size {
	t.Helper()
	now := e.Clock.Now()
	s := &sizedomain.Size{
		ID: e.Node.Generate().Int64(), Name: name,
		MinHeight: 160, MaxHeight: 175, MinWeight: 55, MaxWeight: 70,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := e.DB.Create(s).Error; err != nil {
		t.Fatalf("create size: %v", err)
	}
	return s
}

func (e *Env) Product(t *testing.T, id int64) productdomain.Product {
	t.Helper()
	var p productdomain.Product
	if err := e.DB.Where("id = ?", id).Take(&p).Error; err != nil {
		t.Fatalf("load product %d: %v", id, err)
	}
	return p
}

func (e *Env) Category(t *testing.T, id int64) categorydomain.Category {
	t.Helper()
	var c categorydomain.Category
	if err := e.DB.Where("id = ?", id).Take(&c).Error; err != nil {
		t.Fatalf("load category %d: %v", id, err)
	}
	return c
}

// AssertConsistent fails unless every product total equals the sum of its
// variants and every category stock equals the sum of its product totals.
func (e *Env) AssertConsistent(t *testing.T) {
	t.Helper()

	sums, err := e.Variants.SumQuantityByProduct(t.Context(), e.DB)
	if err != nil {
		t.Fatalf("sum variants: %v", err)
	}
	products, err := e.Products.ListAll(t.Context(), e.DB)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	for _, p := range products {
		if p.Total != sums[p.ID] {
			t.Fatalf("product %s total %d, variants sum %d", p.Name, p.Total, sums[p.ID])
		}
		if p.InStock != (p.Total > 0) {
			t.Fatalf("product %s in_stock=%v with total %d", p.Name, p.InStock, p.Total)
		}
	}

	totals, err := e.Products.SumTotalByCategory(t.Context(), e.DB)
	if err != nil {
		t.Fatalf("sum products: %v", err)
	}
	categories, err := e.Categories.ListAll(t.Context(), e.DB)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	for _, c := range categories {
		if c.Stock != totals[c.ID] {
			t.Fatalf("category %s stock %d, products sum %d", c.Name, c.Stock, totals[c.ID])
		}
	}
}
