package domain

import (
	"context"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Name    string
	SortBy  string
	OrderBy string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, color *Color) error
	BatchCreate(ctx context.Context, db *gorm.DB, colors []Color) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Color, error)
	ExistsByName(ctx context.Context, db *gorm.DB, name string) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Color, int64, error)
	Update(ctx context.Context, db *gorm.DB, color *Color) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
