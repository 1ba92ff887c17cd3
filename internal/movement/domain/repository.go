package domain

import (
	"context"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	ProductID  *int64
	CategoryID *int64
	Reason     string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, movement *Movement) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Movement, int64, error)
}
