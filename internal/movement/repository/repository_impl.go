package repository

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/movement/domain"
	"github.com/smallbiznis/stockroom/pkg/db/option"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, movement *domain.Movement) error {
	return db.WithContext(ctx).Create(movement).Error
}

// List returns the newest movements first.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Page) ([]domain.Movement, int64, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		if filter.ProductID != nil {
			tx = tx.Where("product_id = ?", *filter.ProductID)
		}
		if filter.CategoryID != nil {
			tx = tx.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.Reason != "" {
			tx = tx.Where("reason = ?", filter.Reason)
		}
		return tx
	}

	var total int64
	if err := db.WithContext(ctx).Model(&domain.Movement{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Movement
	stmt := option.Apply(db.WithContext(ctx).Model(&domain.Movement{}).Scopes(scope),
		option.WithSortBy(option.SortBy{Field: "id", Desc: true}),
		option.WithPage(page),
	)
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
