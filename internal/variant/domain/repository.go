package domain

import (
	"context"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	ProductID *int64
	ColorID   *int64
	SizeID    *int64
	SortBy    string
	OrderBy   string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, variant *Variant) error
	BatchCreate(ctx context.Context, db *gorm.DB, variants []Variant) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Variant, error)
	ExistsByKey(ctx context.Context, db *gorm.DB, key Key) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Variant, int64, error)
	Update(ctx context.Context, db *gorm.DB, variant *Variant) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error

	CountByColor(ctx context.Context, db *gorm.DB, colorID int64) (int64, error)
	CountBySize(ctx context.Context, db *gorm.DB, sizeID int64) (int64, error)
	DeleteByProduct(ctx context.Context, db *gorm.DB, productID int64) (int64, error)
	SumQuantityByProduct(ctx context.Context, db *gorm.DB) (map[int64]int64, error)
}
