package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Name    string
	SortBy  string
	OrderBy string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, category *Category) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Category, error)
	ExistsByName(ctx context.Context, db *gorm.DB, name string) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Category, int64, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]Category, error)
	Update(ctx context.Context, db *gorm.DB, category *Category) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error

	// AdjustStock adds delta to the stored stock in a single statement.
	AdjustStock(ctx context.Context, db *gorm.DB, id int64, delta int64, at time.Time) error
	SetStock(ctx context.Context, db *gorm.DB, id int64, stock int64, at time.Time) error
}
