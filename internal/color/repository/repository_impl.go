package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/stockroom/internal/color/domain"
	"github.com/smallbiznis/stockroom/pkg/db/option"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

var sortable = map[string]bool{
	"created_at": true,
	"name":       true,
	"code":       true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, color *domain.Color) error {
	return db.WithContext(ctx).Create(color).Error
}

func (r *repo) BatchCreate(ctx context.Context, db *gorm.DB, colors []domain.Color) error {
	if len(colors) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(colors, 100).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Color, error) {
	var c domain.Color
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
	err := db.WithContext(ctx).Model(&domain.Color{}).Where("name = ?", name).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Page) ([]domain.Color, int64, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		if name := strings.TrimSpace(filter.Name); name != "" {
			tx = tx.Where("name LIKE ?", "%"+name+"%")
		}
		return tx
	}

	var total int64
	if err := db.WithContext(ctx).Model(&domain.Color{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Color
	stmt := option.Apply(db.WithContext(ctx).Model(&domain.Color{}).Scopes(scope),
		option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, sortable)),
		option.WithPage(page),
	)
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, color *domain.Color) error {
	if color == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Color{}).
		Where("id = ?", color.ID).
		Updates(map[string]any{
			"name":       color.Name,
			"code":       color.Code,
			"updated_at": color.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Color{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
