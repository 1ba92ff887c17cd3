package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/stockroom/internal/size/domain"
	"github.com/smallbiznis/stockroom/pkg/db/option"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

var sortable = map[string]bool{
	"created_at": true,
	"name":       true,
	"min_height": true,
	"min_weight": true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, size *domain.Size) error {
	return db.WithContext(ctx).Create(size).Error
}

func (r *repo) BatchCreate(ctx context.Context, db *gorm.DB, sizes []domain.Size) error {
	if len(sizes) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(sizes, 100).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Size, error) {
	var s domain.Size
	err := db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) ExistsByName(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Size{}).Where("name = ?", name).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Page) ([]domain.Size, int64, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		if name := strings.TrimSpace(filter.Name); name != "" {
			tx = tx.Where("name LIKE ?", "%"+name+"%")
		}
		if filter.Height != nil {
			tx = tx.Where("min_height <= ? AND max_height >= ?", *filter.Height, *filter.Height)
		}
		if filter.Weight != nil {
			tx = tx.Where("min_weight <= ? AND max_weight >= ?", *filter.Weight, *filter.Weight)
		}
		return tx
	}

	var total int64
	if err := db.WithContext(ctx).Model(&domain.Size{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Size
	stmt := option.Apply(db.WithContext(ctx).Model(&domain.Size{}).Scopes(scope),
		option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, sortable)),
		option.WithPage(page),
	)
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, size *domain.Size) error {
	if size == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Size{}).
		Where("id = ?", size.ID).
		Updates(map[string]any{
			"name":       size.Name,
			"min_height": size.MinHeight,
			"max_height": size.MaxHeight,
			"min_weight": size.MinWeight,
			"max_weight": size.MaxWeight,
			"updated_at": size.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Size{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
