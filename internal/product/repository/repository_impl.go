package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/pkg/db/option"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

var sortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"price":      true,
	"total":      true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) ExistsByName(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Product{}).Where("name = ?", name).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Page) ([]domain.Product, int64, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		if name := strings.TrimSpace(filter.Name); name != "" {
			tx = tx.Where("name LIKE ?", "%"+name+"%")
		}
		if filter.CategoryID != nil {
			tx = tx.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.Enable != nil {
			tx = tx.Where("enable = ?", *filter.Enable)
		}
		if filter.InStock != nil {
			tx = tx.Where("in_stock = ?", *filter.InStock)
		}
		if filter.MinPrice != nil {
			tx = tx.Where("price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			tx = tx.Where("price <= ?", *filter.MaxPrice)
		}
		return tx
	}

	var total int64
	if err := db.WithContext(ctx).Model(&domain.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Product
	stmt := option.Apply(db.WithContext(ctx).Model(&domain.Product{}).Scopes(scope),
		option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, sortable)),
		option.WithPage(page),
	)
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var items []domain.Product
	if err := db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update writes the editable columns. Total and in_stock are owned by the
// stock engine and never written here.
func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"category_id": product.CategoryID,
			"enable":      product.Enable,
			"updated_at":  product.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) CountByCategory(ctx context.Context, db *gorm.DB, categoryID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *repo) AdjustTotal(ctx context.Context, db *gorm.DB, id int64, delta int64, at time.Time) error {
	res := db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"total":      gorm.Expr("total + ?", delta),
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return refreshInStock(ctx, db, id)
}

func (r *repo) SetTotal(ctx context.Context, db *gorm.DB, id int64, total int64, at time.Time) error {
	res := db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"total": total, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return refreshInStock(ctx, db, id)
}

func (r *repo) SumTotalByCategory(ctx context.Context, db *gorm.DB) (map[int64]int64, error) {
	var rows []struct {
		CategoryID int64
		Total      int64
	}
	err := db.WithContext(ctx).Model(&domain.Product{}).
		Select("category_id, COALESCE(SUM(total), 0) AS total").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.CategoryID] = row.Total
	}
	return out, nil
}

// in_stock is derived in its own statement: postgres and sqlite evaluate SET
// expressions against the row as it was before the update.
func refreshInStock(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("in_stock", gorm.Expr("total > ?", 0)).Error
}
