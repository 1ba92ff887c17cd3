package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Name       string
	CategoryID *int64
	Enable     *bool
	InStock    *bool
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	OrderBy    string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	ExistsByName(ctx context.Context, db *gorm.DB, name string) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Product, int64, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	CountByCategory(ctx context.Context, db *gorm.DB, categoryID int64) (int64, error)

	// AdjustTotal adds delta to the stored total and refreshes in_stock.
	AdjustTotal(ctx context.Context, db *gorm.DB, id int64, delta int64, at time.Time) error
	SetTotal(ctx context.Context, db *gorm.DB, id int64, total int64, at time.Time) error
	SumTotalByCategory(ctx context.Context, db *gorm.DB) (map[int64]int64, error)
}
