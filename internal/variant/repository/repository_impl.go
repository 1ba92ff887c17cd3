package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/stockroom/internal/variant/domain"
	"github.com/smallbiznis/stockroom/pkg/db/option"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

var sortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"quantity":   true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, variant *domain.Variant) error {
	return db.WithContext(ctx).Create(variant).Error
}

func (r *repo) BatchCreate(ctx context.Context, db *gorm.DB, variants []domain.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(variants, 100).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Variant, error) {
	var v domain.Variant
	err := db.WithContext(ctx).Where("id = ?", id).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repo) ExistsByKey(ctx context.Context, db *gorm.DB, key domain.Key) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Variant{}).
		Where("product_id = ? AND color_id = ? AND size_id = ?", key.ProductID, key.ColorID, key.SizeID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Page) ([]domain.Variant, int64, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		if filter.ProductID != nil {
			tx = tx.Where("product_id = ?", *filter.ProductID)
		}
		if filter.ColorID != nil {
			tx = tx.Where("color_id = ?", *filter.ColorID)
		}
		if filter.SizeID != nil {
			tx = tx.Where("size_id = ?", *filter.SizeID)
		}
		return tx
	}

	var total int64
	if err := db.WithContext(ctx).Model(&domain.Variant{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Variant
	stmt := option.Apply(db.WithContext(ctx).Model(&domain.Variant{}).Scopes(scope),
		option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, sortable)),
		option.WithPage(page),
	)
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, variant *domain.Variant) error {
	if variant == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Variant{}).
		Where("id = ?", variant.ID).
		Updates(map[string]any{
			"product_id": variant.ProductID,
			"color_id":   variant.ColorID,
			"size_id":    variant.SizeID,
			"quantity":   variant.Quantity,
			"updated_at": variant.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Variant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) CountByColor(ctx context.Context, db *gorm.DB, colorID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Variant{}).Where("color_id = ?", colorID).Count(&count).Error
	return count, err
}

func (r *repo) CountBySize(ctx context.Context, db *gorm.DB, sizeID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Variant{}).Where("size_id = ?", sizeID).Count(&count).Error
	return count, err
}

func (r *repo) DeleteByProduct(ctx context.Context, db *gorm.DB, productID int64) (int64, error) {
	res := db.WithContext(ctx).Where("product_id = ?", productID).Delete(&domain.Variant{})
	return res.RowsAffected, res.Error
}

func (r *repo) SumQuantityByProduct(ctx context.Context, db *gorm.DB) (map[int64]int64, error) {
	var rows []struct {
		ProductID int64
		Quantity  int64
	}
	err := db.WithContext(ctx).Model(&domain.Variant{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS quantity").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Quantity
	}
	return out, nil
}
