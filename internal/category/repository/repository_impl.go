package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/stockroom/internal/category/domain"
	"github.com/smallbiznis/stockroom/pkg/db/option"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

var sortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"stock":      true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Create(category).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) ExistsByName(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Category{}).Where("name = ?", name).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Page) ([]domain.Category, int64, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		if name := strings.TrimSpace(filter.Name); name != "" {
			tx = tx.Where("name LIKE ?", "%"+name+"%")
		}
		return tx
	}

	var total int64
	if err := db.WithContext(ctx).Model(&domain.Category{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Category
	stmt := option.Apply(db.WithContext(ctx).Model(&domain.Category{}).Scopes(scope),
		option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, sortable)),
		option.WithPage(page),
	)
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var items []domain.Category
	if err := db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	if category == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name":        category.Name,
			"description": category.Description,
			"updated_at":  category.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) AdjustStock(ctx context.Context, db *gorm.DB, id int64, delta int64, at time.Time) error {
	res := db.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) SetStock(ctx context.Context, db *gorm.DB, id int64, stock int64, at time.Time) error {
	res := db.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"stock": stock, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
