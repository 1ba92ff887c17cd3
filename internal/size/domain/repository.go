package domain

import (
	"context"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Name    string
	// Height and Weight select sizes whose range contains the value.
	Height  *int
	Weight  *int
	SortBy  string
	OrderBy string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, size *Size) error
	BatchCreate(ctx context.Context, db *gorm.DB, sizes []Size) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Size, error)
	ExistsByName(ctx context.Context, db *gorm.DB, name string) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Size, int64, error)
	Update(ctx context.Context, db *gorm.DB, size *Size) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
